package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

var (
	_ repository.HubRepository         = (*HubRepository)(nil)
	_ repository.SKURepository         = (*SKURepository)(nil)
	_ repository.HubSKURepository      = (*HubSKURepository)(nil)
	_ repository.StockQueryRepository  = (*StockQueryRepository)(nil)
	_ repository.LedgerQueryRepository = (*LedgerQueryRepository)(nil)
	_ repository.ShipmentRepository    = (*ShipmentRepository)(nil)
	_ repository.UserRepository        = (*UserRepository)(nil)

	_ repository.StockLevelRepository      = (*tx)(nil)
	_ repository.LedgerEntryRepository     = (*tx)(nil)
	_ repository.ShipmentReceiptRepository = (*tx)(nil)
)

// HubRepository implementa repository.HubRepository.
type HubRepository struct{ s *Store }

func (r *HubRepository) Create(_ context.Context, hub *entity.Hub) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.hubs[hub.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, h := range r.s.hubs {
		if h.Name == hub.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *hub
	r.s.hubs[hub.ID] = &cp
	return nil
}

func (r *HubRepository) GetByID(_ context.Context, id string) (*entity.Hub, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	h, ok := r.s.hubs[id]
	if !ok {
		return nil, nil
	}
	cp := *h
	return &cp, nil
}

func (r *HubRepository) GetByName(_ context.Context, name string) (*entity.Hub, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, h := range r.s.hubs {
		if h.Name == name {
			cp := *h
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *HubRepository) Update(_ context.Context, hub *entity.Hub) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.hubs[hub.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, h := range r.s.hubs {
		if id != hub.ID && h.Name == hub.Name {
			return domain.ErrDuplicate
		}
	}
	cp := *hub
	r.s.hubs[hub.ID] = &cp
	return nil
}

func (r *HubRepository) List(_ context.Context) ([]*entity.Hub, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Hub, 0, len(r.s.hubs))
	for _, h := range r.s.hubs {
		cp := *h
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SKURepository implementa repository.SKURepository.
type SKURepository struct{ s *Store }

func (r *SKURepository) Create(_ context.Context, sku *entity.SKU) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.skus[sku.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, existing := range r.s.skus {
		if existing.Code == sku.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *sku
	r.s.skus[sku.ID] = &cp
	return nil
}

func (r *SKURepository) GetByID(_ context.Context, id string) (*entity.SKU, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sku, ok := r.s.skus[id]
	if !ok {
		return nil, nil
	}
	cp := *sku
	return &cp, nil
}

func (r *SKURepository) GetByCode(_ context.Context, code string) (*entity.SKU, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, sku := range r.s.skus {
		if sku.Code == code {
			cp := *sku
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *SKURepository) Update(_ context.Context, sku *entity.SKU) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.skus[sku.ID]; !ok {
		return domain.ErrNotFound
	}
	for id, existing := range r.s.skus {
		if id != sku.ID && existing.Code == sku.Code {
			return domain.ErrDuplicate
		}
	}
	cp := *sku
	r.s.skus[sku.ID] = &cp
	return nil
}

func (r *SKURepository) List(_ context.Context, limit, offset int) ([]*entity.SKU, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]*entity.SKU, 0, len(r.s.skus))
	for _, sku := range r.s.skus {
		cp := *sku
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// HubSKURepository implementa repository.HubSKURepository.
type HubSKURepository struct{ s *Store }

func (r *HubSKURepository) Upsert(_ context.Context, link *entity.HubSKU) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.hubs[link.HubID]; !ok {
		return false, domain.ErrNotFound
	}
	if _, ok := r.s.skus[link.SKUID]; !ok {
		return false, domain.ErrNotFound
	}
	k := pairKey{hubID: link.HubID, skuID: link.SKUID}
	_, existed := r.s.hubSKUs[k]
	cp := *link
	r.s.hubSKUs[k] = &cp
	return !existed, nil
}

func (r *HubSKURepository) ListBySKU(_ context.Context, skuID string) ([]*entity.HubSKU, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.HubSKU
	for k, l := range r.s.hubSKUs {
		if k.skuID == skuID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HubID < out[j].HubID })
	return out, nil
}

func (r *HubSKURepository) ListSKUsByHub(_ context.Context, hubID string) ([]*entity.SKU, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.SKU
	for k, l := range r.s.hubSKUs {
		if k.hubID != hubID || !l.Active {
			continue
		}
		if sku, ok := r.s.skus[k.skuID]; ok {
			cp := *sku
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (r *HubSKURepository) DeleteBySKU(_ context.Context, skuID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k := range r.s.hubSKUs {
		if k.skuID == skuID {
			delete(r.s.hubSKUs, k)
		}
	}
	return nil
}

// StockQueryRepository implementa repository.StockQueryRepository.
type StockQueryRepository struct{ s *Store }

func (r *StockQueryRepository) Get(_ context.Context, hubID, skuID string) (*entity.StockLevel, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if lvl, ok := r.s.levels[pairKey{hubID: hubID, skuID: skuID}]; ok {
		cp := *lvl
		return &cp, nil
	}
	return &entity.StockLevel{HubID: hubID, SKUID: skuID}, nil
}

func (r *StockQueryRepository) ListByHubs(_ context.Context, hubIDs []string) ([]repository.StockRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	allowed := hubSet(hubIDs)
	var out []repository.StockRow
	for k, lvl := range r.s.levels {
		if allowed != nil && !allowed[k.hubID] {
			continue
		}
		hub, sku := r.s.hubs[k.hubID], r.s.skus[k.skuID]
		if hub == nil || sku == nil {
			continue
		}
		threshold := sku.LowStockThreshold
		if link := r.s.hubSKUs[k]; link != nil && link.ReorderPoint != nil {
			threshold = *link.ReorderPoint
		}
		out = append(out, repository.StockRow{
			HubID:             hub.ID,
			HubName:           hub.Name,
			SKUID:             sku.ID,
			SKUCode:           sku.Code,
			SKUName:           sku.Name,
			Quantity:          lvl.Quantity,
			LowStockThreshold: threshold,
			UpdatedAt:         lvl.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HubName != out[j].HubName {
			return out[i].HubName < out[j].HubName
		}
		return out[i].SKUCode < out[j].SKUCode
	})
	return out, nil
}

// hubSet nil = sin filtro.
func hubSet(ids []string) map[string]bool {
	if ids == nil {
		return nil
	}
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// LedgerQueryRepository implementa repository.LedgerQueryRepository.
type LedgerQueryRepository struct{ s *Store }

func (r *LedgerQueryRepository) List(_ context.Context, f repository.LedgerFilter) ([]repository.LedgerRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	allowed := hubSet(f.HubIDs)
	var out []repository.LedgerRow
	// entries se agrega en orden de commit; se recorre al revés para tener los más recientes primero
	for i := len(r.s.entries) - 1; i >= 0; i-- {
		e := r.s.entries[i]
		if allowed != nil && !allowed[e.HubID] {
			continue
		}
		if f.SKUID != "" && e.SKUID != f.SKUID {
			continue
		}
		if f.From != nil && e.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !e.CreatedAt.Before(*f.To) {
			continue
		}
		row := repository.LedgerRow{LedgerEntry: *e}
		if u, ok := r.s.users[e.ActorID]; ok {
			row.ActorName = u.Username
		}
		if h, ok := r.s.hubs[e.HubID]; ok {
			row.HubName = h.Name
		}
		if sku, ok := r.s.skus[e.SKUID]; ok {
			row.SKUCode = sku.Code
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *LedgerQueryRepository) SumByPair(_ context.Context, hubID, skuID string) (int64, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var sum int64
	var count int
	for _, e := range r.s.entries {
		if e.HubID == hubID && e.SKUID == skuID {
			sum += e.Delta
			count++
		}
	}
	return sum, count, nil
}

// ShipmentRepository implementa repository.ShipmentRepository.
type ShipmentRepository struct {
	s           *Store
	lockTimeout time.Duration
}

func (r *ShipmentRepository) Create(_ context.Context, shipment *entity.Shipment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.shipments[shipment.ID]; ok {
		return domain.ErrDuplicate
	}
	if _, ok := r.s.hubs[shipment.DestHubID]; !ok {
		return domain.ErrNotFound
	}
	cp := *shipment
	cp.Lines = nil
	r.s.shipments[shipment.ID] = &cp
	return nil
}

// AddLine toma el lock del envío que usa la recepción: espera a que una recepción en curso termine
// y entonces ve el estado ya confirmado.
func (r *ShipmentRepository) AddLine(ctx context.Context, line *entity.ShipmentLine) error {
	key := shipmentLockKey(line.ShipmentID)
	if err := r.s.lockKey(ctx, key, r.lockTimeout); err != nil {
		return err
	}
	defer r.s.locks.Unlock(key)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sh, ok := r.s.shipments[line.ShipmentID]
	if !ok {
		return domain.ErrNotFound
	}
	if sh.Status != entity.ShipmentStatusPending {
		return domain.ErrConflict
	}
	if _, ok := r.s.skus[line.SKUID]; !ok {
		return domain.ErrNotFound
	}
	line.Position = len(r.s.lines[line.ShipmentID]) + 1
	r.s.lines[line.ShipmentID] = append(r.s.lines[line.ShipmentID], *line)
	return nil
}

func (r *ShipmentRepository) GetByID(_ context.Context, id string) (*entity.Shipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.shipmentCopy(id), nil
}

func (r *ShipmentRepository) ListByHubs(_ context.Context, hubIDs []string, limit int) ([]*entity.Shipment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	allowed := hubSet(hubIDs)
	var out []*entity.Shipment
	for id, sh := range r.s.shipments {
		if allowed != nil && !allowed[sh.DestHubID] {
			continue
		}
		out = append(out, r.s.shipmentCopy(id))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return page(out, limit, 0), nil
}

// UserRepository implementa repository.UserRepository.
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; ok {
		return domain.ErrDuplicate
	}
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return domain.ErrDuplicate
		}
	}
	cp := *user
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UserRepository) Update(_ context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *user
	cp.UpdatedAt = time.Now().UTC()
	r.s.users[user.ID] = &cp
	return nil
}

func (r *UserRepository) List(_ context.Context) ([]*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
