package sales

import (
	"context"
	"fmt"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/repository"
)

// PDFUseCase genera la nota de entrega (PDF) de una venta.
type PDFUseCase struct {
	repos     repository.Repos
	generator SaleNotePDFGenerator
}

// NewPDFUseCase construye el caso de uso.
func NewPDFUseCase(repos repository.Repos, generator SaleNotePDFGenerator) *PDFUseCase {
	return &PDFUseCase{repos: repos, generator: generator}
}

// DownloadSaleNote arma la nota de entrega de la venta.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la venta o su lote no existen.
//   - domain.ErrAlreadyCancelled si la venta está cancelada.
func (uc *PDFUseCase) DownloadSaleNote(ctx context.Context, saleID string) (pdfBytes []byte, filename string, err error) {
	// ── 1. Venta ──────────────────────────────────────────────────────────────
	sale, err := uc.repos.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener venta: %w", err)
	}
	if sale == nil {
		return nil, "", domain.ErrNotFound
	}
	if sale.IsCancelled() {
		return nil, "", domain.NewStateError("venta", sale.ID, sale.PaymentStatus, domain.ErrAlreadyCancelled)
	}

	// ── 2. Lote, bodega y plantilla ───────────────────────────────────────────
	lot, err := uc.repos.OnHand.GetByID(ctx, sale.LotID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener lote: %w", err)
	}
	if lot == nil {
		return nil, "", domain.ErrNotFound
	}
	note := SaleNote{Sale: sale, Lot: lot}
	if wh, wErr := uc.repos.Warehouses.GetByID(ctx, sale.WarehouseID); wErr == nil {
		note.Warehouse = wh
	}
	if tpl, tErr := uc.repos.Templates.GetByID(ctx, lot.TemplateID); tErr == nil {
		note.Template = tpl
	}

	// ── 3. Generar ────────────────────────────────────────────────────────────
	pdfBytes, err = uc.generator.GenerateSaleNote(ctx, note)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	short := sale.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return pdfBytes, fmt.Sprintf("nota_entrega_%s.pdf", short), nil
}
