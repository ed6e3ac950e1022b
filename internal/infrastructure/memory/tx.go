package memory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

// TxRunner implementa inventory.TxRunner sobre el Store. Las escrituras quedan en buffer
// y se aplican juntas en el commit; los locks de fila se sueltan después del commit o rollback.
type TxRunner struct {
	s           *Store
	lockTimeout time.Duration
}

// NewTxRunner crea el runner. lockTimeout acota cada espera de lock (0 = solo el contexto).
func NewTxRunner(s *Store, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{s: s, lockTimeout: lockTimeout}
}

// Run ejecuta fn en una unidad de trabajo.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockLevelRepository,
	entryRepo repository.LedgerEntryRepository,
	receiptRepo repository.ShipmentReceiptRepository,
) error) error {
	t := &tx{
		s:           r.s,
		lockTimeout: r.lockTimeout,
		held:        make(map[string]bool),
		levels:      make(map[pairKey]*entity.StockLevel),
		received:    make(map[string]time.Time),
	}
	defer t.release()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(t, t, t); err != nil {
		return err
	}
	// Un caller que abandonó la operación no debe ver efectos
	if err := ctx.Err(); err != nil {
		return err
	}
	t.commit()
	return nil
}

type tx struct {
	s           *Store
	lockTimeout time.Duration

	held  map[string]bool
	order []string

	levels   map[pairKey]*entity.StockLevel
	entries  []*entity.LedgerEntry
	received map[string]time.Time
}

func stockLockKey(k pairKey) string    { return "stock:" + k.hubID + ":" + k.skuID }
func shipmentLockKey(id string) string { return "shipment:" + id }

// lockKey toma la clave en el locker del store. Agotar timeout es un conflicto de concurrencia.
func (s *Store) lockKey(ctx context.Context, key string, timeout time.Duration) error {
	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.locks.Lock(waitCtx, key); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: espera de lock %s: %w", domain.ErrConcurrencyConflict, key, err)
		}
		return err
	}
	return nil
}

func (t *tx) lock(ctx context.Context, key string) error {
	if t.held[key] {
		return nil
	}
	if err := t.s.lockKey(ctx, key, t.lockTimeout); err != nil {
		return err
	}
	t.held[key] = true
	t.order = append(t.order, key)
	return nil
}

func (t *tx) release() {
	for i := len(t.order) - 1; i >= 0; i-- {
		t.s.locks.Unlock(t.order[i])
	}
	t.order = nil
	t.held = map[string]bool{}
}

func (t *tx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	for k, lvl := range t.levels {
		cp := *lvl
		t.s.levels[k] = &cp
	}
	t.s.entries = append(t.s.entries, t.entries...)
	for id, at := range t.received {
		if sh, ok := t.s.shipments[id]; ok {
			sh.Status = entity.ShipmentStatusReceived
			sh.ReceivedAt = &at
		}
	}
}

// LockOrCreate implementa repository.StockLevelRepository.
func (t *tx) LockOrCreate(ctx context.Context, hubID, skuID string) (*entity.StockLevel, error) {
	t.s.mu.RLock()
	_, hubOK := t.s.hubs[hubID]
	_, skuOK := t.s.skus[skuID]
	t.s.mu.RUnlock()
	if !hubOK || !skuOK {
		return nil, domain.ErrNotFound
	}

	k := pairKey{hubID: hubID, skuID: skuID}
	if err := t.lock(ctx, stockLockKey(k)); err != nil {
		return nil, err
	}

	if lvl, ok := t.levels[k]; ok {
		cp := *lvl
		return &cp, nil
	}

	t.s.mu.RLock()
	stored, ok := t.s.levels[k]
	var lvl entity.StockLevel
	if ok {
		lvl = *stored
	}
	t.s.mu.RUnlock()
	if !ok {
		lvl = entity.StockLevel{HubID: hubID, SKUID: skuID, UpdatedAt: time.Now().UTC()}
	}
	t.levels[k] = &lvl
	cp := lvl
	return &cp, nil
}

// Update implementa repository.StockLevelRepository. La fila debe estar bloqueada por esta transacción.
func (t *tx) Update(_ context.Context, level *entity.StockLevel) error {
	k := pairKey{hubID: level.HubID, skuID: level.SKUID}
	if !t.held[stockLockKey(k)] {
		return fmt.Errorf("%w: stock %s/%s sin bloquear", domain.ErrPersistence, level.HubID, level.SKUID)
	}
	if level.Quantity < 0 {
		return fmt.Errorf("%w: cantidad negativa", domain.ErrPersistence)
	}
	cp := *level
	t.levels[k] = &cp
	return nil
}

// Append implementa repository.LedgerEntryRepository.
func (t *tx) Append(_ context.Context, entry *entity.LedgerEntry) error {
	if entry.ID == "" {
		return domain.ErrInvalidInput
	}
	cp := *entry
	t.entries = append(t.entries, &cp)
	return nil
}

// GetForUpdate implementa repository.ShipmentReceiptRepository.
func (t *tx) GetForUpdate(ctx context.Context, id string) (*entity.Shipment, error) {
	if err := t.lock(ctx, shipmentLockKey(id)); err != nil {
		return nil, err
	}
	t.s.mu.RLock()
	sh := t.s.shipmentCopy(id)
	t.s.mu.RUnlock()
	if sh == nil {
		return nil, nil
	}
	if at, ok := t.received[id]; ok {
		sh.Status = entity.ShipmentStatusReceived
		sh.ReceivedAt = &at
	}
	return sh, nil
}

// MarkReceived implementa repository.ShipmentReceiptRepository.
func (t *tx) MarkReceived(_ context.Context, id string, at time.Time) error {
	if !t.held[shipmentLockKey(id)] {
		return fmt.Errorf("%w: envío %s sin bloquear", domain.ErrPersistence, id)
	}
	t.received[id] = at
	return nil
}
