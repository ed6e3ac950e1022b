package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hub-inventory/internal/application/inventory"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/infrastructure/memory"
)

type fixture struct {
	repos    *memory.Repositories
	adjust   *inventory.AdjustStockUseCase
	receive  *inventory.ReceiveShipmentUseCase
	recorder *recordingObserver
}

func newFixture(t *testing.T, lockTimeout time.Duration, observers ...inventory.StockObserver) *fixture {
	t.Helper()
	repos := memory.NewRepositories(memory.NewStore(), lockTimeout)
	rec := &recordingObserver{}
	observers = append([]inventory.StockObserver{rec}, observers...)
	adjust := inventory.NewAdjustStockUseCase(repos.Transactor, repos.Hubs, repos.SKUs, nil, observers...)
	return &fixture{
		repos:    repos,
		adjust:   adjust,
		receive:  inventory.NewReceiveShipmentUseCase(repos.Transactor, adjust),
		recorder: rec,
	}
}

func (f *fixture) hub(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, f.repos.Hubs.Create(context.Background(), &entity.Hub{ID: id, Name: name}))
}

func (f *fixture) sku(t *testing.T, id, code string) {
	t.Helper()
	require.NoError(t, f.repos.SKUs.Create(context.Background(), &entity.SKU{ID: id, Code: code, Name: code}))
}

func (f *fixture) shipment(t *testing.T, id, hubID string, lines ...entity.ShipmentLine) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.repos.Shipments.Create(ctx, &entity.Shipment{
		ID: id, DestHubID: hubID, Status: entity.ShipmentStatusPending, CreatedAt: time.Now(),
	}))
	for i := range lines {
		l := lines[i]
		l.ID = id + "-" + l.SKUID
		l.ShipmentID = id
		require.NoError(t, f.repos.Shipments.AddLine(ctx, &l))
	}
}

func (f *fixture) quantity(t *testing.T, hubID, skuID string) int64 {
	t.Helper()
	lvl, err := f.repos.Stock.Get(context.Background(), hubID, skuID)
	require.NoError(t, err)
	return lvl.Quantity
}

func (f *fixture) entries(t *testing.T, hubID, skuID string) (int64, int) {
	t.Helper()
	sum, count, err := f.repos.Ledger.SumByPair(context.Background(), hubID, skuID)
	require.NoError(t, err)
	return sum, count
}

type recordingObserver struct {
	mu      sync.Mutex
	changes []inventory.StockChange
}

func (r *recordingObserver) StockChanged(_ context.Context, changes []inventory.StockChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, changes...)
	return nil
}

func (r *recordingObserver) all() []inventory.StockChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]inventory.StockChange(nil), r.changes...)
}

type failingObserver struct{}

func (failingObserver) StockChanged(context.Context, []inventory.StockChange) error {
	return errors.New("broker caído")
}
