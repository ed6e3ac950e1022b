package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/application/inventory"
	"github.com/jhoicas/hub-inventory/internal/application/usecase"
	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/infrastructure/memory"
)

type env struct {
	repos     *memory.Repositories
	hubs      *usecase.HubUseCase
	skus      *usecase.SKUUseCase
	shipments *usecase.ShipmentUseCase
}

func newEnv() *env {
	repos := memory.NewRepositories(memory.NewStore(), 0)
	return &env{
		repos:     repos,
		hubs:      usecase.NewHubUseCase(repos.Hubs),
		skus:      usecase.NewSKUUseCase(repos.SKUs, repos.Hubs, repos.HubSKUs),
		shipments: usecase.NewShipmentUseCase(repos.Shipments, repos.Hubs, repos.SKUs),
	}
}

func ptr[T any](v T) *T { return &v }

func TestHubUseCase_CrearRenombrarListar(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	norte, err := e.hubs.Create(ctx, dto.CreateHubRequest{Name: " Norte ", City: "Bogotá"})
	require.NoError(t, err)
	assert.Equal(t, "Norte", norte.Name)

	_, err = e.hubs.Create(ctx, dto.CreateHubRequest{Name: "Norte"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = e.hubs.Create(ctx, dto.CreateHubRequest{Name: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	sur, err := e.hubs.Create(ctx, dto.CreateHubRequest{Name: "Sur"})
	require.NoError(t, err)
	renamed, err := e.hubs.Update(ctx, sur.ID, dto.UpdateHubRequest{Name: ptr("Austral")})
	require.NoError(t, err)
	assert.Equal(t, "Austral", renamed.Name)

	all, err := e.hubs.List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Austral", all[0].Name)

	scoped, err := e.hubs.List(ctx, []string{norte.ID})
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, norte.ID, scoped[0].ID)

	_, err = e.hubs.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHubUseCase_GetOrCreate(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	h, created, err := e.hubs.GetOrCreate(ctx, "Centro")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := e.hubs.GetOrCreate(ctx, "Centro")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, h.ID, again.ID)
}

func TestSKUUseCase_CrearYActualizar(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	sku, err := e.skus.Create(ctx, dto.CreateSKURequest{Code: "SOCK-RED", Name: "Calcetín rojo"})
	require.NoError(t, err)
	assert.Equal(t, 5, sku.LowStockThreshold)

	_, err = e.skus.Create(ctx, dto.CreateSKURequest{Code: "SOCK-RED", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = e.skus.Create(ctx, dto.CreateSKURequest{Code: "X", Name: "Y", LowStockThreshold: ptr(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	updated, err := e.skus.Update(ctx, sku.ID, dto.UpdateSKURequest{Name: ptr("Rojo"), LowStockThreshold: ptr(12)})
	require.NoError(t, err)
	assert.Equal(t, "Rojo", updated.Name)
	assert.Equal(t, 12, updated.LowStockThreshold)

	page, err := e.skus.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 100, page.Page.Limit)
}

func TestSKUUseCase_SetHubs(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	a, _ := e.hubs.Create(ctx, dto.CreateHubRequest{Name: "A"})
	b, _ := e.hubs.Create(ctx, dto.CreateHubRequest{Name: "B"})
	sku, _ := e.skus.Create(ctx, dto.CreateSKURequest{Code: "S1", Name: "Uno"})

	_, err := e.skus.SetHubs(ctx, sku.ID, []string{a.ID, b.ID})
	require.NoError(t, err)
	inA, _ := e.skus.ListByHub(ctx, a.ID)
	assert.Len(t, inA, 1)

	links, err := e.skus.SetHubs(ctx, sku.ID, []string{b.ID})
	require.NoError(t, err)
	require.Len(t, links, 2)
	for _, l := range links {
		assert.Equal(t, l.HubID == b.ID, l.Active)
	}
	inA, _ = e.skus.ListByHub(ctx, a.ID)
	assert.Empty(t, inA)

	_, err = e.skus.SetHubs(ctx, sku.ID, []string{"nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestShipmentUseCase_LineasYEstado(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	hub, _ := e.hubs.Create(ctx, dto.CreateHubRequest{Name: "B"})
	s1, _ := e.skus.Create(ctx, dto.CreateSKURequest{Code: "S1", Name: "Uno"})
	_, _ = e.skus.Create(ctx, dto.CreateSKURequest{Code: "S2", Name: "Dos"})

	sh, err := e.shipments.Create(ctx, "supplier-1", dto.CreateShipmentRequest{DestHubID: hub.ID})
	require.NoError(t, err)
	assert.Equal(t, "PENDING", sh.Status)
	assert.Equal(t, "B", sh.DestHubName)

	_, err = e.shipments.AddLine(ctx, sh.ID, dto.AddShipmentLineRequest{SKUID: s1.ID, Quantity: 20})
	require.NoError(t, err)
	got, err := e.shipments.AddLine(ctx, sh.ID, dto.AddShipmentLineRequest{SKUCode: "S2", Quantity: 5})
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "S1", got.Lines[0].SKUCode)
	assert.Equal(t, 2, got.Lines[1].Position)

	_, err = e.shipments.AddLine(ctx, sh.ID, dto.AddShipmentLineRequest{SKUID: s1.ID, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.shipments.AddLine(ctx, sh.ID, dto.AddShipmentLineRequest{SKUCode: "NOPE", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	adjust := inventory.NewAdjustStockUseCase(e.repos.Transactor, e.repos.Hubs, e.repos.SKUs, nil)
	receive := inventory.NewReceiveShipmentUseCase(e.repos.Transactor, adjust)
	require.NoError(t, receive.Receive(ctx, "", sh.ID))

	_, err = e.shipments.AddLine(ctx, sh.ID, dto.AddShipmentLineRequest{SKUID: s1.ID, Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrConflict)

	list, err := e.shipments.List(ctx, []string{hub.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "RECEIVED", list[0].Status)

	none, err := e.shipments.List(ctx, []string{})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = e.shipments.Create(ctx, "", dto.CreateShipmentRequest{DestHubID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
