package repository

import (
	"context"
	"time"

	"github.com/jhoicas/hub-inventory/internal/domain/entity"
)

// StockLevelRepository puerto de escritura del saldo por (hub, sku).
// Solo se usa dentro de una transacción del ledger (ver inventory.TxRunner).
type StockLevelRepository interface {
	// LockOrCreate crea la fila con cantidad 0 si no existe y la bloquea hasta el fin de la transacción.
	LockOrCreate(ctx context.Context, hubID, skuID string) (*entity.StockLevel, error)
	Update(ctx context.Context, level *entity.StockLevel) error
}

// StockRow fila de lectura de stock con los nombres resueltos (hub, SKU).
type StockRow struct {
	HubID             string
	HubName           string
	SKUID             string
	SKUCode           string
	SKUName           string
	Quantity          int64
	LowStockThreshold int
	UpdatedAt         time.Time
}

// StockQueryRepository puerto de lectura de stock; no bloquea filas.
type StockQueryRepository interface {
	// Get devuelve el saldo del par; cantidad 0 si la fila aún no existe.
	Get(ctx context.Context, hubID, skuID string) (*entity.StockLevel, error)
	// ListByHubs lista el stock de los hubs indicados (nil = todos), ordenado por hub y código de SKU.
	ListByHubs(ctx context.Context, hubIDs []string) ([]StockRow, error)
}
