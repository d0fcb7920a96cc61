package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-lotes/internal/application/dto"
	"github.com/jhoicas/Inventario-lotes/internal/application/usecase"
	"github.com/jhoicas/Inventario-lotes/internal/domain"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/Inventario-lotes/internal/infrastructure/memory"
)

func TestWarehouse_CrudSobreMemoria(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewWarehouseUseCase(store.Repos().Warehouses)
	ctx := context.Background()

	created, err := uc.Create(ctx, dto.CreateWarehouseRequest{Name: "Bodega Norte", Address: "Km 3"})
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	updated, err := uc.Update(ctx, created.ID, dto.UpdateWarehouseRequest{Name: ptr("Bodega Sur"), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "Bodega Sur", updated.Name)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "Km 3", updated.Address)

	list, err := uc.List(ctx, 20, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)

	missing, err := uc.GetByID(ctx, "no-existe")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, uc.Delete(ctx, created.ID))
	assert.ErrorIs(t, uc.Delete(ctx, created.ID), domain.ErrNotFound)
}

func TestWarehouse_NoSeBorraConLotes(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewWarehouseUseCase(store.Repos().Warehouses)
	ctx := context.Background()

	wh, err := uc.Create(ctx, dto.CreateWarehouseRequest{Name: "Bodega"})
	require.NoError(t, err)
	require.NoError(t, store.Repos().OnHand.Create(ctx, &entity.LotOnHand{ID: "l1", WarehouseID: wh.ID, Quantity: 1, IsActive: true, Version: 1}))

	assert.ErrorIs(t, uc.Delete(ctx, wh.ID), domain.ErrConflict)
}
