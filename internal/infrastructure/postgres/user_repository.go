package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, username, password_hash, role, hub_id, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u   entity.User
		hub *string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &hub, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.HubID = deref(hub)
	return &u, nil
}

// Create persiste un nuevo usuario. Username repetido (sin distinguir mayúsculas) = ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, user *entity.User) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Username, user.PasswordHash, user.Role, nullable(user.HubID),
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return classify("insert user", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

// GetByUsername obtiene un usuario por username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return r.getOne(ctx, `WHERE lower(username) = lower($1)`, username)
}

func (r *UserRepo) getOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, nil
		}
		return nil, classify("get user", err)
	}
	return u, nil
}

// Update actualiza un usuario.
func (r *UserRepo) Update(ctx context.Context, user *entity.User) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE users SET username = $2, password_hash = $3, role = $4, hub_id = $5, updated_at = now()
		WHERE id = $1`,
		user.ID, user.Username, user.PasswordHash, user.Role, nullable(user.HubID))
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return classify("update user", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista usuarios ordenados por username.
func (r *UserRepo) List(ctx context.Context) ([]*entity.User, error) {
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, classify("list users", err)
	}
	defer rows.Close()

	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, classify("scan user", err)
		}
		list = append(list, u)
	}
	return list, classify("list users", rows.Err())
}
