// Package memory implementa los repositorios y el TxRunner sobre un store en proceso.
// Se usa con DB_DRIVER=memory y en los tests de los casos de uso.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/hub-inventory/internal/domain/entity"
)

type pairKey struct {
	hubID string
	skuID string
}

// Store guarda todas las tablas en mapas protegidos por mu. Los locks de fila
// del ledger viven aparte, en locks, y se mantienen hasta el fin de la transacción.
type Store struct {
	mu        sync.RWMutex
	hubs      map[string]*entity.Hub
	skus      map[string]*entity.SKU
	hubSKUs   map[pairKey]*entity.HubSKU
	levels    map[pairKey]*entity.StockLevel
	entries   []*entity.LedgerEntry
	shipments map[string]*entity.Shipment
	lines     map[string][]entity.ShipmentLine
	users     map[string]*entity.User

	locks *KeyedLocker
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		hubs:      make(map[string]*entity.Hub),
		skus:      make(map[string]*entity.SKU),
		hubSKUs:   make(map[pairKey]*entity.HubSKU),
		levels:    make(map[pairKey]*entity.StockLevel),
		shipments: make(map[string]*entity.Shipment),
		lines:     make(map[string][]entity.ShipmentLine),
		users:     make(map[string]*entity.User),
		locks:     NewKeyedLocker(),
	}
}

// Repositories agrupa los repositorios de lectura/catálogo respaldados por el mismo store.
type Repositories struct {
	Hubs       *HubRepository
	SKUs       *SKURepository
	HubSKUs    *HubSKURepository
	Stock      *StockQueryRepository
	Ledger     *LedgerQueryRepository
	Shipments  *ShipmentRepository
	Users      *UserRepository
	Transactor *TxRunner
}

// NewRepositories construye todos los repositorios sobre s. lockTimeout 0 = sin límite.
func NewRepositories(s *Store, lockTimeout time.Duration) *Repositories {
	return &Repositories{
		Hubs:       &HubRepository{s: s},
		SKUs:       &SKURepository{s: s},
		HubSKUs:    &HubSKURepository{s: s},
		Stock:      &StockQueryRepository{s: s},
		Ledger:     &LedgerQueryRepository{s: s},
		Shipments:  &ShipmentRepository{s: s, lockTimeout: lockTimeout},
		Users:      &UserRepository{s: s},
		Transactor: NewTxRunner(s, lockTimeout),
	}
}

// linesOf devuelve una copia de las líneas del envío, ordenadas por Position y con el código de SKU.
// Requiere mu tomado (lectura).
func (s *Store) linesOf(shipmentID string) []entity.ShipmentLine {
	src := s.lines[shipmentID]
	out := make([]entity.ShipmentLine, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	for i := range out {
		if sku, ok := s.skus[out[i].SKUID]; ok {
			out[i].SKUCode = sku.Code
		}
	}
	return out
}

// shipmentCopy requiere mu tomado (lectura).
func (s *Store) shipmentCopy(id string) *entity.Shipment {
	sh, ok := s.shipments[id]
	if !ok {
		return nil
	}
	cp := *sh
	if sh.ReceivedAt != nil {
		at := *sh.ReceivedAt
		cp.ReceivedAt = &at
	}
	if hub, ok := s.hubs[sh.DestHubID]; ok {
		cp.DestHubName = hub.Name
	}
	cp.Lines = s.linesOf(id)
	return &cp
}
