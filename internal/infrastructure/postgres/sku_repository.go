package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

var (
	_ repository.SKURepository    = (*SKURepo)(nil)
	_ repository.HubSKURepository = (*HubSKURepo)(nil)
)

// SKURepo implementación del puerto SKURepository sobre PostgreSQL.
type SKURepo struct {
	q Querier
}

// NewSKURepository construye el adaptador del catálogo.
func NewSKURepository(q Querier) *SKURepo {
	return &SKURepo{q: q}
}

const skuColumns = `id, code, name, barcode, low_stock_threshold, created_at, updated_at`

func scanSKU(row pgx.Row) (*entity.SKU, error) {
	var s entity.SKU
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.Barcode, &s.LowStockThreshold, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

// Create persiste un SKU. Código repetido = ErrDuplicate.
func (r *SKURepo) Create(ctx context.Context, sku *entity.SKU) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO skus (`+skuColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sku.ID, sku.Code, sku.Name, sku.Barcode, sku.LowStockThreshold, sku.CreatedAt, sku.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return classify("insert sku", err)
	}
	return nil
}

// GetByID obtiene un SKU por ID.
func (r *SKURepo) GetByID(ctx context.Context, id string) (*entity.SKU, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByCode obtiene un SKU por código.
func (r *SKURepo) GetByCode(ctx context.Context, code string) (*entity.SKU, error) {
	return r.getOne(ctx, `WHERE code = $1`, code)
}

func (r *SKURepo) getOne(ctx context.Context, where string, arg any) (*entity.SKU, error) {
	s, err := scanSKU(r.q.QueryRow(ctx, `SELECT `+skuColumns+` FROM skus `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, classify("get sku", err)
	}
	return s, nil
}

// Update actualiza los datos del SKU.
func (r *SKURepo) Update(ctx context.Context, sku *entity.SKU) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE skus SET code = $2, name = $3, barcode = $4, low_stock_threshold = $5, updated_at = $6
		WHERE id = $1`,
		sku.ID, sku.Code, sku.Name, sku.Barcode, sku.LowStockThreshold, sku.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return classify("update sku", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista SKUs por código con paginación (limit <= 0 = sin límite).
func (r *SKURepo) List(ctx context.Context, limit, offset int) ([]*entity.SKU, error) {
	query := `SELECT ` + skuColumns + ` FROM skus ORDER BY code OFFSET $1`
	args := []any{max(offset, 0)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}
	return r.list(ctx, query, args...)
}

func (r *SKURepo) list(ctx context.Context, query string, args ...any) ([]*entity.SKU, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify("list skus", err)
	}
	defer rows.Close()

	var list []*entity.SKU
	for rows.Next() {
		s, err := scanSKU(rows)
		if err != nil {
			return nil, classify("scan sku", err)
		}
		list = append(list, s)
	}
	return list, classify("list skus", rows.Err())
}

// HubSKURepo implementación del puerto HubSKURepository sobre PostgreSQL.
type HubSKURepo struct {
	q Querier
}

// NewHubSKURepository construye el adaptador de asignaciones hub-SKU.
func NewHubSKURepository(q Querier) *HubSKURepo {
	return &HubSKURepo{q: q}
}

// Upsert crea o actualiza el vínculo; xmax = 0 distingue la inserción de la actualización.
func (r *HubSKURepo) Upsert(ctx context.Context, link *entity.HubSKU) (bool, error) {
	var created bool
	err := r.q.QueryRow(ctx, `
		INSERT INTO hub_skus (hub_id, sku_id, active, reorder_point)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (hub_id, sku_id)
		DO UPDATE SET active = EXCLUDED.active, reorder_point = EXCLUDED.reorder_point
		RETURNING (xmax = 0)`,
		link.HubID, link.SKUID, link.Active, link.ReorderPoint).Scan(&created)
	if err != nil {
		return false, classify("upsert hub sku", err)
	}
	return created, nil
}

// ListBySKU lista los vínculos de un SKU (activos e inactivos).
func (r *HubSKURepo) ListBySKU(ctx context.Context, skuID string) ([]*entity.HubSKU, error) {
	rows, err := r.q.Query(ctx, `
		SELECT hub_id, sku_id, active, reorder_point
		FROM hub_skus WHERE sku_id = $1 ORDER BY hub_id`, skuID)
	if err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, classify("list hub skus", err)
	}
	defer rows.Close()

	var list []*entity.HubSKU
	for rows.Next() {
		var l entity.HubSKU
		if err := rows.Scan(&l.HubID, &l.SKUID, &l.Active, &l.ReorderPoint); err != nil {
			return nil, classify("scan hub sku", err)
		}
		list = append(list, &l)
	}
	return list, classify("list hub skus", rows.Err())
}

// ListSKUsByHub devuelve los SKUs activos del hub ordenados por código.
func (r *HubSKURepo) ListSKUsByHub(ctx context.Context, hubID string) ([]*entity.SKU, error) {
	skus := &SKURepo{q: r.q}
	list, err := skus.list(ctx, `
		SELECT k.id, k.code, k.name, k.barcode, k.low_stock_threshold, k.created_at, k.updated_at
		FROM skus k JOIN hub_skus l ON l.sku_id = k.id
		WHERE l.hub_id = $1 AND l.active
		ORDER BY k.code`, hubID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return list, err
}

// DeleteBySKU elimina todos los vínculos del SKU.
func (r *HubSKURepo) DeleteBySKU(ctx context.Context, skuID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM hub_skus WHERE sku_id = $1`, skuID); err != nil {
		return classify("delete hub skus", err)
	}
	return nil
}
