package repository

import (
	"context"
	"time"

	"github.com/jhoicas/hub-inventory/internal/domain/entity"
)

// LedgerEntryRepository puerto de escritura del ledger: solo agrega.
type LedgerEntryRepository interface {
	Append(ctx context.Context, entry *entity.LedgerEntry) error
}

// LedgerFilter filtro para listar entradas del ledger.
// HubIDs nil = todos los hubs; slice vacío = ninguno.
type LedgerFilter struct {
	HubIDs []string
	SKUID  string
	From   *time.Time
	To     *time.Time
	Limit  int // 0 = sin límite
}

// LedgerRow entrada del ledger con nombres resueltos para reportes.
type LedgerRow struct {
	entity.LedgerEntry
	ActorName string
	HubName   string
	SKUCode   string
}

// LedgerQueryRepository puerto de lectura del ledger (append-only, no requiere bloqueo).
type LedgerQueryRepository interface {
	// List devuelve las entradas más recientes primero.
	List(ctx context.Context, filter LedgerFilter) ([]LedgerRow, error)
	// SumByPair suma los deltas del par y cuenta las entradas.
	SumByPair(ctx context.Context, hubID, skuID string) (sum int64, count int, err error)
}
