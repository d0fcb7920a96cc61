package inventory

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// CanBeSold el lote está activo y tiene al menos qty unidades.
func CanBeSold(lot *entity.LotOnHand, qty int64) bool {
	return lot.IsActive && lot.Quantity >= qty
}

// CheckSellable igual que CanBeSold pero con el error que corresponde.
func CheckSellable(lot *entity.LotOnHand, qty int64) error {
	if !lot.IsActive {
		return domain.NewStateError("lote en bodega", lot.ID, "inactivo", domain.ErrInactiveLot)
	}
	if lot.Quantity < qty {
		return domain.NewStateError("lote en bodega", lot.ID, "cantidad "+strconv.FormatInt(lot.Quantity, 10), domain.ErrInsufficientStock)
	}
	return nil
}

// NewSale arma una venta pendiente contra el lote, validando cantidad y precios.
func NewSale(lot *entity.LotOnHand, sale *entity.Sale, now time.Time) error {
	if sale.Quantity <= 0 || sale.UnitPrice.IsNegative() || sale.VATRate.IsNegative() {
		return domain.ErrInvalidInput
	}
	if err := CheckSellable(lot, sale.Quantity); err != nil {
		return err
	}
	sale.LotID = lot.ID
	sale.WarehouseID = lot.WarehouseID
	sale.PaymentStatus = entity.PaymentStatusPending
	sale.DeliveryStatus = entity.DeliveryStatusPending
	sale.StockApplied = false
	if sale.SaleDate.IsZero() {
		sale.SaleDate = now
	}
	sale.CreatedAt = now
	sale.UpdatedAt = now
	ComputePrices(sale)
	return nil
}

// ProcessSale descuenta la venta del lote y la marca pagada y entregada.
// La cantidad se vuelve a comprobar aquí: el caller debe tener el lote bloqueado.
func ProcessSale(lot *entity.LotOnHand, sale *entity.Sale, actorID string, now time.Time) error {
	if sale.IsCancelled() {
		return domain.NewStateError("venta", sale.ID, sale.PaymentStatus, domain.ErrAlreadyCancelled)
	}
	if sale.StockApplied {
		return domain.NewStateError("venta", sale.ID, sale.PaymentStatus, domain.ErrAlreadyProcessed)
	}
	if err := CheckSellable(lot, sale.Quantity); err != nil {
		return err
	}
	lot.Quantity -= sale.Quantity
	lot.UpdatedAt = now

	sale.PaymentStatus = entity.PaymentStatusPaid
	sale.DeliveryStatus = entity.DeliveryStatusDelivered
	sale.DeliveryDate = &now
	sale.StockApplied = true
	sale.ProcessedBy = actorID
	sale.UpdatedAt = now
	return nil
}

// CancelSale anula la venta. Si la cantidad ya se había descontado, se devuelve al lote
// (lot no puede ser nil en ese caso). Devuelve las unidades acreditadas.
func CancelSale(lot *entity.LotOnHand, sale *entity.Sale, actorID string, now time.Time) (int64, error) {
	if sale.IsCancelled() {
		return 0, domain.NewStateError("venta", sale.ID, sale.PaymentStatus, domain.ErrAlreadyCancelled)
	}
	var credited int64
	if sale.StockApplied {
		if lot == nil {
			return 0, domain.ErrNotFound
		}
		lot.Quantity += sale.Quantity
		lot.UpdatedAt = now
		credited = sale.Quantity
		sale.StockApplied = false
	}
	sale.PaymentStatus = entity.PaymentStatusCancelled
	sale.DeliveryStatus = entity.DeliveryStatusCancelled
	sale.CancelledAt = &now
	sale.CancelledBy = actorID
	sale.UpdatedAt = now
	return credited, nil
}

// UpdatePendingSale cambia cantidad, precio o IVA de una venta aún pendiente y recalcula totales.
// La nueva cantidad se valida contra el lote como en la creación.
func UpdatePendingSale(lot *entity.LotOnHand, sale *entity.Sale, qty *int64, unitPrice, vatRate *decimal.Decimal, now time.Time) error {
	if sale.IsCancelled() {
		return domain.NewStateError("venta", sale.ID, sale.PaymentStatus, domain.ErrAlreadyCancelled)
	}
	if sale.StockApplied || sale.PaymentStatus != entity.PaymentStatusPending {
		return domain.NewStateError("venta", sale.ID, sale.PaymentStatus, domain.ErrAlreadyProcessed)
	}
	if qty != nil {
		if *qty <= 0 {
			return domain.ErrInvalidInput
		}
		if err := CheckSellable(lot, *qty); err != nil {
			return err
		}
		sale.Quantity = *qty
	}
	if unitPrice != nil {
		if unitPrice.IsNegative() {
			return domain.ErrInvalidInput
		}
		sale.UnitPrice = *unitPrice
	}
	if vatRate != nil {
		if vatRate.IsNegative() {
			return domain.ErrInvalidInput
		}
		sale.VATRate = *vatRate
	}
	ComputePrices(sale)
	sale.UpdatedAt = now
	return nil
}

// SetPaymentStatus solo permite pending <-> partially_paid; paid y cancelled tienen su propia operación.
func SetPaymentStatus(sale *entity.Sale, status string, now time.Time) error {
	if sale.IsCancelled() {
		return domain.NewStateError("venta", sale.ID, sale.PaymentStatus, domain.ErrAlreadyCancelled)
	}
	if sale.StockApplied {
		return domain.NewStateError("venta", sale.ID, sale.PaymentStatus, domain.ErrAlreadyProcessed)
	}
	if status != entity.PaymentStatusPending && status != entity.PaymentStatusPartiallyPaid {
		return domain.ErrInvalidInput
	}
	sale.PaymentStatus = status
	sale.UpdatedAt = now
	return nil
}

// SetDeliveryStatus solo permite pending <-> in_progress; delivered lo marca ProcessSale.
func SetDeliveryStatus(sale *entity.Sale, status string, now time.Time) error {
	if sale.IsCancelled() {
		return domain.NewStateError("venta", sale.ID, sale.DeliveryStatus, domain.ErrAlreadyCancelled)
	}
	if sale.StockApplied {
		return domain.NewStateError("venta", sale.ID, sale.DeliveryStatus, domain.ErrAlreadyProcessed)
	}
	if status != entity.DeliveryStatusPending && status != entity.DeliveryStatusInProgress {
		return domain.ErrInvalidInput
	}
	sale.DeliveryStatus = status
	sale.UpdatedAt = now
	return nil
}
