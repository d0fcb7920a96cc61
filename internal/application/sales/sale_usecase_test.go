package sales_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/retry"
	"github.com/jhoicas/Inventario-lotes/internal/application/sales"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-lotes/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixtures
// ──────────────────────────────────────────────────────────────────────────────

const seller = "user-ventas"

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store *memory.Store
	uc    *sales.SaleUseCase
}

func newFixture(t *testing.T, lotQty int64) *fixture {
	t.Helper()
	store := memory.NewStore()
	require.NoError(t, store.Repos().OnHand.Create(context.Background(), &entity.LotOnHand{
		ID: "lot-1", TemplateID: "tpl", WarehouseID: "wh-1", Producer: "Aserrío Norte", Name: "Boards Pino 2x3x4",
		Quantity: lotQty, IsActive: true, Version: 1, CreatedAt: time.Now(),
	}))
	policy := retry.Policy{Attempts: 3, Backoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}
	return &fixture{
		store: store,
		uc:    sales.NewSaleUseCase(store, store.Repos(), memory.NewLotLocker(2*time.Second), policy, logger.Nop()),
	}
}

func (f *fixture) lotQuantity(t *testing.T) int64 {
	t.Helper()
	lot, err := f.store.Repos().OnHand.GetByID(context.Background(), "lot-1")
	require.NoError(t, err)
	require.NotNil(t, lot)
	return lot.Quantity
}

func (f *fixture) newSale(t *testing.T, qty int64) *dto.SaleResponse {
	t.Helper()
	s, err := f.uc.Create(context.Background(), seller, dto.CreateSaleRequest{
		LotID: "lot-1", CustomerName: "Ferretería El Roble", Quantity: qty,
		UnitPrice: dec("1000"), VATRate: dec("19"),
	})
	require.NoError(t, err)
	return s
}

// ──────────────────────────────────────────────────────────────────────────────
// Creación y precios
// ──────────────────────────────────────────────────────────────────────────────

func TestCreate_PendienteConPrecios(t *testing.T) {
	f := newFixture(t, 10)
	s := f.newSale(t, 3)

	assert.Equal(t, entity.PaymentStatusPending, s.PaymentStatus)
	assert.Equal(t, entity.DeliveryStatusPending, s.DeliveryStatus)
	assert.False(t, s.StockApplied)
	assert.True(t, dec("3000").Equal(s.PriceWithoutVAT))
	assert.True(t, dec("570").Equal(s.VATAmount))
	assert.True(t, dec("3570").Equal(s.TotalPrice))
	assert.Equal(t, "wh-1", s.WarehouseID)
	assert.Equal(t, int64(10), f.lotQuantity(t), "crear no descuenta stock")
}

func TestCreate_CantidadMayorAlLote(t *testing.T) {
	f := newFixture(t, 2)
	_, err := f.uc.Create(context.Background(), seller, dto.CreateSaleRequest{LotID: "lot-1", Quantity: 3, UnitPrice: dec("1")})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.uc.Create(context.Background(), seller, dto.CreateSaleRequest{LotID: "otro", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_RecalculaPrecios(t *testing.T) {
	f := newFixture(t, 10)
	s := f.newSale(t, 3)

	qty := int64(4)
	price := dec("250.50")
	got, err := f.uc.Update(context.Background(), seller, s.ID, dto.UpdateSaleRequest{Quantity: &qty, UnitPrice: &price})
	require.NoError(t, err)
	assert.True(t, dec("1002").Equal(got.PriceWithoutVAT))
	assert.True(t, dec("190.38").Equal(got.VATAmount))
	assert.True(t, dec("1192.38").Equal(got.TotalPrice))

	_, err = f.uc.Process(context.Background(), seller, s.ID)
	require.NoError(t, err)
	_, err = f.uc.Update(context.Background(), seller, s.ID, dto.UpdateSaleRequest{Quantity: &qty})
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}

// ──────────────────────────────────────────────────────────────────────────────
// Procesar y cancelar
// ──────────────────────────────────────────────────────────────────────────────

func TestProcess_DescuentaDelLote(t *testing.T) {
	f := newFixture(t, 10)
	s := f.newSale(t, 4)

	got, err := f.uc.Process(context.Background(), seller, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, got.PaymentStatus)
	assert.Equal(t, entity.DeliveryStatusDelivered, got.DeliveryStatus)
	assert.True(t, got.StockApplied)
	assert.NotNil(t, got.DeliveryDate)
	assert.Equal(t, seller, got.ProcessedBy)
	assert.Equal(t, int64(6), f.lotQuantity(t))

	_, err = f.uc.Process(context.Background(), seller, s.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
	assert.Equal(t, int64(6), f.lotQuantity(t))
}

func TestProcess_StockInsuficienteSinEfecto(t *testing.T) {
	f := newFixture(t, 10)
	a := f.newSale(t, 8)
	b := f.newSale(t, 5)

	_, err := f.uc.Process(context.Background(), seller, a.ID)
	require.NoError(t, err)
	_, err = f.uc.Process(context.Background(), seller, b.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.uc.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPending, got.PaymentStatus)
	assert.False(t, got.StockApplied)
	assert.Equal(t, int64(2), f.lotQuantity(t))
}

func TestCancel_Idempotente(t *testing.T) {
	f := newFixture(t, 10)
	s := f.newSale(t, 4)
	_, err := f.uc.Process(context.Background(), seller, s.ID)
	require.NoError(t, err)

	got, err := f.uc.Cancel(context.Background(), seller, s.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCancelled, got.PaymentStatus)
	assert.Equal(t, entity.DeliveryStatusCancelled, got.DeliveryStatus)
	assert.Equal(t, seller, got.CancelledBy)
	assert.Equal(t, int64(10), f.lotQuantity(t))

	_, err = f.uc.Cancel(context.Background(), seller, s.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	assert.Equal(t, int64(10), f.lotQuantity(t), "la segunda cancelación no acredita")
}

func TestCancel_PendienteNoAcredita(t *testing.T) {
	f := newFixture(t, 10)
	s := f.newSale(t, 4)

	_, err := f.uc.Cancel(context.Background(), seller, s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), f.lotQuantity(t))

	_, err = f.uc.Process(context.Background(), seller, s.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
}

func TestConservacion(t *testing.T) {
	f := newFixture(t, 20)
	ctx := context.Background()
	a := f.newSale(t, 5)
	b := f.newSale(t, 7)
	c := f.newSale(t, 3)

	_, err := f.uc.Process(ctx, seller, a.ID)
	require.NoError(t, err)
	_, err = f.uc.Process(ctx, seller, b.ID)
	require.NoError(t, err)
	_, err = f.uc.Cancel(ctx, seller, a.ID)
	require.NoError(t, err)
	_, err = f.uc.Cancel(ctx, seller, c.ID)
	require.NoError(t, err)
	_, err = f.uc.Cancel(ctx, seller, a.ID)
	require.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	// cantidad final = inicial − procesadas y no canceladas
	assert.Equal(t, int64(20-7), f.lotQuantity(t))
}

func TestProcess_ConcurrenteSoloUnaGana(t *testing.T) {
	f := newFixture(t, 8)
	a := f.newSale(t, 5)
	b := f.newSale(t, 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = f.uc.Process(context.Background(), seller, id)
		}(i, id)
	}
	wg.Wait()

	var ok, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(3), f.lotQuantity(t))
}

func TestProcess_LoteOcupadoDevuelveBusy(t *testing.T) {
	store := memory.NewStore()
	require.NoError(t, store.Repos().OnHand.Create(context.Background(), &entity.LotOnHand{
		ID: "lot-1", WarehouseID: "wh-1", Quantity: 10, IsActive: true, Version: 1,
	}))
	locker := memory.NewLotLocker(10 * time.Millisecond)
	uc := sales.NewSaleUseCase(store, store.Repos(), locker, retry.NoRetry, logger.Nop())
	s, err := uc.Create(context.Background(), seller, dto.CreateSaleRequest{LotID: "lot-1", Quantity: 1})
	require.NoError(t, err)

	unlock, err := locker.Lock(context.Background(), "lot-1")
	require.NoError(t, err)
	defer unlock()

	_, err = uc.Process(context.Background(), seller, s.ID)
	assert.ErrorIs(t, err, domain.ErrBusy)
}

// ──────────────────────────────────────────────────────────────────────────────
// Estados de pago y entrega
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdatePaymentAndDeliveryStatus(t *testing.T) {
	f := newFixture(t, 10)
	s := f.newSale(t, 1)
	ctx := context.Background()

	got, err := f.uc.UpdatePaymentStatus(ctx, seller, s.ID, entity.PaymentStatusPartiallyPaid)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPartiallyPaid, got.PaymentStatus)

	got, err = f.uc.UpdateDeliveryStatus(ctx, seller, s.ID, entity.DeliveryStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, entity.DeliveryStatusInProgress, got.DeliveryStatus)

	_, err = f.uc.UpdatePaymentStatus(ctx, seller, s.ID, entity.PaymentStatusPaid)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := f.uc.List(ctx, dto.SaleFilterRequest{PaymentStatus: entity.PaymentStatusPartiallyPaid}, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}
