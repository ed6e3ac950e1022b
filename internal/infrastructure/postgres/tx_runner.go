package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/hub-inventory/internal/application/inventory"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout acota la espera por locks de fila (0 = sin límite).
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockLevelRepository,
	entryRepo repository.LedgerEntryRepository,
	receiptRepo repository.ShipmentReceiptRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return classify("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := setLockTimeout(ctx, tx, r.lockTimeout); err != nil {
		return err
	}

	stockRepo := NewStockLevelRepository(tx)
	entryRepo := NewLedgerEntryRepository(tx)
	receiptRepo := NewShipmentReceiptRepository(tx)

	if err := fn(stockRepo, entryRepo, receiptRepo); err != nil {
		return classify("transaction", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return classify("commit transaction", err)
	}
	return nil
}

// txBeginner lo cumplen pgxpool.Pool y pgx.Tx (en una tx abre un savepoint).
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// setLockTimeout acota la espera por locks de fila hasta el fin de la tx (0 = sin límite).
func setLockTimeout(ctx context.Context, tx pgx.Tx, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	ms := strconv.FormatInt(d.Milliseconds(), 10) + "ms"
	if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, ms); err != nil {
		return classify("set lock_timeout", err)
	}
	return nil
}
