package repository

import (
	"context"

	"github.com/jhoicas/hub-inventory/internal/domain/entity"
)

// SKURepository define el puerto de persistencia para el catálogo de SKUs.
type SKURepository interface {
	Create(ctx context.Context, sku *entity.SKU) error
	GetByID(ctx context.Context, id string) (*entity.SKU, error)
	GetByCode(ctx context.Context, code string) (*entity.SKU, error)
	Update(ctx context.Context, sku *entity.SKU) error
	List(ctx context.Context, limit, offset int) ([]*entity.SKU, error)
}

// HubSKURepository administra la asignación de SKUs a hubs. Nunca toca stock.
type HubSKURepository interface {
	// Upsert crea el vínculo o actualiza Active/ReorderPoint. Devuelve true si lo creó.
	Upsert(ctx context.Context, link *entity.HubSKU) (bool, error)
	ListBySKU(ctx context.Context, skuID string) ([]*entity.HubSKU, error)
	// ListSKUsByHub devuelve los SKUs con vínculo activo en el hub, ordenados por código.
	ListSKUsByHub(ctx context.Context, hubID string) ([]*entity.SKU, error)
	DeleteBySKU(ctx context.Context, skuID string) error
}
