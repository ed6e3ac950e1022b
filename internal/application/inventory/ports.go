package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una unidad de trabajo, pasando repositorios atados a ella.
// Si fn devuelve error se hace Rollback; si no, Commit. Garantiza atomicidad para el ledger.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockLevelRepository,
		entryRepo repository.LedgerEntryRepository,
		receiptRepo repository.ShipmentReceiptRepository,
	) error) error
}

// StockChange describe un cambio de stock ya confirmado (post-commit).
type StockChange struct {
	EntryID  string
	ActorID  string
	HubID    string
	SKUID    string
	Delta    int64
	Quantity int64 // cantidad resultante
	Note     string
	At       time.Time
}

// StockObserver recibe los cambios confirmados. Un error del observer se registra en el log
// y nunca deshace el commit.
type StockObserver interface {
	StockChanged(ctx context.Context, changes []StockChange) error
}
