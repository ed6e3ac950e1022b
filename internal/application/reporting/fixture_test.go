package reporting_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhoicas/hub-inventory/internal/application/inventory"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/infrastructure/memory"
)

// mapCache caché en memoria que cuenta aciertos.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	hits int
}

func newMapCache() *mapCache { return &mapCache{data: map[string][]byte{}} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *mapCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}

type fixture struct {
	repos  *memory.Repositories
	adjust *inventory.AdjustStockUseCase
}

// newFixture siembra dos hubs y tres SKUs:
// Hub A: S1=5, S2=50; Hub B: S1=3, S3=2 (en ese orden).
func newFixture(t *testing.T, observers ...inventory.StockObserver) *fixture {
	t.Helper()
	ctx := context.Background()
	repos := memory.NewRepositories(memory.NewStore(), time.Second)
	f := &fixture{
		repos:  repos,
		adjust: inventory.NewAdjustStockUseCase(repos.Transactor, repos.Hubs, repos.SKUs, nil, observers...),
	}
	require.NoError(t, repos.Hubs.Create(ctx, &entity.Hub{ID: "hub-a", Name: "Hub A"}))
	require.NoError(t, repos.Hubs.Create(ctx, &entity.Hub{ID: "hub-b", Name: "Hub B"}))
	for _, sku := range []*entity.SKU{
		{ID: "s1", Code: "S1", Name: "Uno", LowStockThreshold: 10},
		{ID: "s2", Code: "S2", Name: "Dos", LowStockThreshold: 10},
		{ID: "s3", Code: "S3", Name: "Tres", LowStockThreshold: 1},
	} {
		require.NoError(t, repos.SKUs.Create(ctx, sku))
	}
	require.NoError(t, repos.Users.Create(ctx, &entity.User{ID: "u1", Username: "alice", Role: entity.RoleAdmin}))

	f.add(t, "hub-a", "s1", 5)
	f.add(t, "hub-a", "s2", 50)
	f.add(t, "hub-b", "s1", 3)
	f.add(t, "hub-b", "s3", 2)
	return f
}

func (f *fixture) add(t *testing.T, hubID, skuID string, delta int64) {
	t.Helper()
	_, err := f.adjust.Adjust(context.Background(), inventory.AdjustInput{
		ActorID: "u1", HubID: hubID, SKUID: skuID, Delta: delta, Note: "seed",
	})
	require.NoError(t, err)
	// created_at distintos para el orden del ledger
	time.Sleep(2 * time.Millisecond)
}

func newAdjustWithObserver(f *fixture, observers ...inventory.StockObserver) *inventory.AdjustStockUseCase {
	return inventory.NewAdjustStockUseCase(f.repos.Transactor, f.repos.Hubs, f.repos.SKUs, nil, observers...)
}
