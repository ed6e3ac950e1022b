package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

var (
	_ repository.LedgerEntryRepository = (*LedgerEntryRepo)(nil)
	_ repository.LedgerQueryRepository = (*LedgerEntryRepo)(nil)
)

// LedgerEntryRepo implementación del ledger sobre PostgreSQL. Solo INSERT y SELECT: las entradas no se modifican.
type LedgerEntryRepo struct {
	q Querier
}

// NewLedgerEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerEntryRepository(q Querier) *LedgerEntryRepo {
	return &LedgerEntryRepo{q: q}
}

// Append agrega una entrada.
func (r *LedgerEntryRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO ledger_entries (id, actor_id, hub_id, sku_id, delta, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, nullable(e.ActorID), e.HubID, e.SKUID, e.Delta, e.Note, e.CreatedAt)
	if err != nil {
		return classify("insert ledger entry", err)
	}
	return nil
}

// List devuelve las entradas más recientes primero, con usuario, hub y SKU resueltos.
func (r *LedgerEntryRepo) List(ctx context.Context, f repository.LedgerFilter) ([]repository.LedgerRow, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.HubIDs != nil {
		where = append(where, "e.hub_id::text = ANY("+arg(f.HubIDs)+")")
	}
	if f.SKUID != "" {
		where = append(where, "e.sku_id::text = "+arg(f.SKUID))
	}
	if f.From != nil {
		where = append(where, "e.created_at >= "+arg(*f.From))
	}
	if f.To != nil {
		where = append(where, "e.created_at < "+arg(*f.To))
	}

	query := `
		SELECT e.id, e.actor_id, e.hub_id, e.sku_id, e.delta, e.note, e.created_at,
		       COALESCE(u.username, ''), h.name, k.code
		FROM ledger_entries e
		JOIN hubs h ON h.id = e.hub_id
		JOIN skus k ON k.id = e.sku_id
		LEFT JOIN users u ON u.id = e.actor_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY e.created_at DESC, e.seq DESC"
	if f.Limit > 0 {
		query += " LIMIT " + arg(f.Limit)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list ledger", err)
	}
	defer rows.Close()

	var out []repository.LedgerRow
	for rows.Next() {
		var (
			row   repository.LedgerRow
			actor *string
		)
		if err := rows.Scan(&row.ID, &actor, &row.HubID, &row.SKUID, &row.Delta, &row.Note, &row.CreatedAt,
			&row.ActorName, &row.HubName, &row.SKUCode); err != nil {
			return nil, classify("scan ledger", err)
		}
		row.ActorID = deref(actor)
		out = append(out, row)
	}
	return out, classify("list ledger", rows.Err())
}

// SumByPair suma los deltas del par; con la invariante del ledger coincide con stock_levels.quantity.
func (r *LedgerEntryRepo) SumByPair(ctx context.Context, hubID, skuID string) (int64, int, error) {
	var (
		sum   int64
		count int
	)
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(delta), 0), COUNT(*)
		FROM ledger_entries WHERE hub_id = $1 AND sku_id = $2`, hubID, skuID).Scan(&sum, &count)
	if err != nil {
		if isInvalidID(err) {
			return 0, 0, nil
		}
		return 0, 0, classify("sum ledger", err)
	}
	return sum, count, nil
}
