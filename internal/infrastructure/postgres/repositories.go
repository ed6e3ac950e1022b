package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories agrupa los adaptadores sobre el pool (fuera de transacción) y el TxRunner del ledger.
type Repositories struct {
	Hubs       *HubRepo
	SKUs       *SKURepo
	HubSKUs    *HubSKURepo
	Stock      *StockLevelRepo
	Ledger     *LedgerEntryRepo
	Shipments  *ShipmentRepo
	Users      *UserRepo
	Transactor *TxRunner
}

// NewRepositories construye todos los repositorios sobre pool.
func NewRepositories(pool *pgxpool.Pool, lockTimeout time.Duration) *Repositories {
	shipments := NewShipmentRepository(pool)
	shipments.lockTimeout = lockTimeout
	return &Repositories{
		Hubs:       NewHubRepository(pool),
		SKUs:       NewSKURepository(pool),
		HubSKUs:    NewHubSKURepository(pool),
		Stock:      NewStockLevelRepository(pool),
		Ledger:     NewLedgerEntryRepository(pool),
		Shipments:  shipments,
		Users:      NewUserRepository(pool),
		Transactor: NewTxRunner(pool, lockTimeout),
	}
}
