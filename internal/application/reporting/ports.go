// Package reporting contiene los casos de uso de solo lectura: listado de stock, logs del ledger,
// export CSV, hoja de stock en PDF y el dashboard inicial.
package reporting

import (
	"context"
	"time"

	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

// Cache puerto de caché clave/valor con TTL (Redis o memoria).
type Cache interface {
	// Get devuelve ok=false si la clave no existe o expiró.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// StockSheetGenerator define la generación del PDF de stock de un hub.
type StockSheetGenerator interface {
	GenerateStockSheet(hub *entity.Hub, rows []repository.StockRow, generatedAt time.Time) ([]byte, error)
}
