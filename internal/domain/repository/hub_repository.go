package repository

import (
	"context"

	"github.com/jhoicas/hub-inventory/internal/domain/entity"
)

// HubRepository define el puerto de persistencia para Hub (DIP).
type HubRepository interface {
	Create(ctx context.Context, hub *entity.Hub) error
	GetByID(ctx context.Context, id string) (*entity.Hub, error)
	GetByName(ctx context.Context, name string) (*entity.Hub, error)
	Update(ctx context.Context, hub *entity.Hub) error
	List(ctx context.Context) ([]*entity.Hub, error)
}
