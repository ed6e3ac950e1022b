package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

var _ repository.HubRepository = (*HubRepo)(nil)

// HubRepo implementación del puerto HubRepository sobre PostgreSQL.
type HubRepo struct {
	q Querier
}

// NewHubRepository construye el adaptador de persistencia para hubs.
func NewHubRepository(q Querier) *HubRepo {
	return &HubRepo{q: q}
}

// Create persiste un nuevo hub. Nombre repetido = ErrDuplicate.
func (r *HubRepo) Create(ctx context.Context, hub *entity.Hub) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO hubs (id, name, city, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		hub.ID, hub.Name, hub.City, hub.CreatedAt, hub.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return classify("insert hub", err)
	}
	return nil
}

// GetByID obtiene un hub por ID.
func (r *HubRepo) GetByID(ctx context.Context, id string) (*entity.Hub, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByName obtiene un hub por nombre exacto.
func (r *HubRepo) GetByName(ctx context.Context, name string) (*entity.Hub, error) {
	return r.getOne(ctx, `WHERE name = $1`, name)
}

func (r *HubRepo) getOne(ctx context.Context, where string, arg any) (*entity.Hub, error) {
	var h entity.Hub
	err := r.q.QueryRow(ctx, `
		SELECT id, name, city, created_at, updated_at FROM hubs `+where, arg).Scan(
		&h.ID, &h.Name, &h.City, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, classify("get hub", err)
	}
	return &h, nil
}

// Update actualiza nombre y ciudad.
func (r *HubRepo) Update(ctx context.Context, hub *entity.Hub) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE hubs SET name = $2, city = $3, updated_at = $4 WHERE id = $1`,
		hub.ID, hub.Name, hub.City, hub.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return classify("update hub", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista los hubs ordenados por nombre.
func (r *HubRepo) List(ctx context.Context) ([]*entity.Hub, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, name, city, created_at, updated_at FROM hubs ORDER BY name`)
	if err != nil {
		return nil, classify("list hubs", err)
	}
	defer rows.Close()

	var list []*entity.Hub
	for rows.Next() {
		var h entity.Hub
		if err := rows.Scan(&h.ID, &h.Name, &h.City, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, classify("scan hub", err)
		}
		list = append(list, &h)
	}
	return list, classify("list hubs", rows.Err())
}
