package sales

import (
	"context"

	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// SaleNote datos que necesita la nota de entrega en PDF.
type SaleNote struct {
	Sale      *entity.Sale
	Lot       *entity.LotOnHand
	Warehouse *entity.Warehouse       // puede ser nil si la bodega fue eliminada
	Template  *entity.ProductTemplate // puede ser nil
}

// SaleNotePDFGenerator puerto de salida para generar la nota de entrega de una venta.
type SaleNotePDFGenerator interface {
	GenerateSaleNote(ctx context.Context, note SaleNote) ([]byte, error)
}
