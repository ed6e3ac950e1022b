package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

var (
	_ repository.StockLevelRepository = (*StockLevelRepo)(nil)
	_ repository.StockQueryRepository = (*StockLevelRepo)(nil)
)

// StockLevelRepo implementación de los puertos de stock sobre PostgreSQL (usable con pool o tx).
// LockOrCreate y Update solo tienen sentido con una tx.
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// LockOrCreate inserta la fila en 0 si no existe y luego la bloquea (SELECT FOR UPDATE).
// Un hub o SKU inexistente viola la FK y se reporta como ErrNotFound.
func (r *StockLevelRepo) LockOrCreate(ctx context.Context, hubID, skuID string) (*entity.StockLevel, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_levels (hub_id, sku_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (hub_id, sku_id) DO NOTHING`, hubID, skuID)
	if err != nil {
		return nil, classify("create stock level", err)
	}

	var s entity.StockLevel
	err = r.q.QueryRow(ctx, `
		SELECT hub_id, sku_id, quantity, updated_at
		FROM stock_levels WHERE hub_id = $1 AND sku_id = $2
		FOR UPDATE`, hubID, skuID).Scan(&s.HubID, &s.SKUID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		return nil, classify("lock stock level", err)
	}
	return &s, nil
}

// Update guarda la nueva cantidad. El CHECK (quantity >= 0) de la tabla respalda la validación del ledger.
func (r *StockLevelRepo) Update(ctx context.Context, level *entity.StockLevel) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_levels SET quantity = $3, updated_at = $4
		WHERE hub_id = $1 AND sku_id = $2`,
		level.HubID, level.SKUID, level.Quantity, level.UpdatedAt)
	if err != nil {
		return classify("update stock level", err)
	}
	if tag.RowsAffected() != 1 {
		return classify("update stock level", fmt.Errorf("fila %s/%s no encontrada", level.HubID, level.SKUID))
	}
	return nil
}

// Get obtiene el saldo sin bloquear; cantidad 0 si la fila no existe.
func (r *StockLevelRepo) Get(ctx context.Context, hubID, skuID string) (*entity.StockLevel, error) {
	var s entity.StockLevel
	err := r.q.QueryRow(ctx, `
		SELECT hub_id, sku_id, quantity, updated_at
		FROM stock_levels WHERE hub_id = $1 AND sku_id = $2`, hubID, skuID).Scan(
		&s.HubID, &s.SKUID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return &entity.StockLevel{HubID: hubID, SKUID: skuID}, nil
		}
		return nil, classify("get stock level", err)
	}
	return &s, nil
}

// ListByHubs lista el stock con nombres resueltos. hubIDs nil = todos.
// El punto de reorden del hub, si existe, reemplaza el umbral del SKU.
func (r *StockLevelRepo) ListByHubs(ctx context.Context, hubIDs []string) ([]repository.StockRow, error) {
	query := `
		SELECT h.id, h.name, k.id, k.code, k.name, s.quantity,
		       COALESCE(hs.reorder_point, k.low_stock_threshold), s.updated_at
		FROM stock_levels s
		JOIN hubs h ON h.id = s.hub_id
		JOIN skus k ON k.id = s.sku_id
		LEFT JOIN hub_skus hs ON hs.hub_id = s.hub_id AND hs.sku_id = s.sku_id`
	args := []any{}
	if hubIDs != nil {
		query += ` WHERE s.hub_id::text = ANY($1)`
		args = append(args, hubIDs)
	}
	query += ` ORDER BY h.name, k.code`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list stock", err)
	}
	defer rows.Close()

	var out []repository.StockRow
	for rows.Next() {
		var row repository.StockRow
		if err := rows.Scan(&row.HubID, &row.HubName, &row.SKUID, &row.SKUCode, &row.SKUName,
			&row.Quantity, &row.LowStockThreshold, &row.UpdatedAt); err != nil {
			return nil, classify("scan stock", err)
		}
		out = append(out, row)
	}
	return out, classify("list stock", rows.Err())
}
