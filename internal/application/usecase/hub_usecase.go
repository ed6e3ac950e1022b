package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

// HubUseCase casos de uso CRUD para hubs.
type HubUseCase struct {
	repo repository.HubRepository
}

// NewHubUseCase construye el caso de uso.
func NewHubUseCase(repo repository.HubRepository) *HubUseCase {
	return &HubUseCase{repo: repo}
}

// Create crea un nuevo hub.
func (uc *HubUseCase) Create(ctx context.Context, in dto.CreateHubRequest) (*dto.HubResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now().UTC()
	hub := &entity.Hub{
		ID:        uuid.New().String(),
		Name:      name,
		City:      strings.TrimSpace(in.City),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, hub); err != nil {
		return nil, err
	}
	return toHubResponse(hub), nil
}

// GetOrCreate devuelve el hub con ese nombre, creándolo si no existe. El bool indica si se creó.
func (uc *HubUseCase) GetOrCreate(ctx context.Context, name string) (*entity.Hub, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, domain.ErrInvalidInput
	}
	hub, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if hub != nil {
		return hub, false, nil
	}
	resp, err := uc.Create(ctx, dto.CreateHubRequest{Name: name})
	if err != nil {
		// Otro proceso lo creó entre la búsqueda y el insert
		if errors.Is(err, domain.ErrDuplicate) {
			hub, err = uc.repo.GetByName(ctx, name)
			if err == nil && hub != nil {
				return hub, false, nil
			}
		}
		return nil, false, err
	}
	return &entity.Hub{ID: resp.ID, Name: resp.Name, City: resp.City, CreatedAt: resp.CreatedAt, UpdatedAt: resp.UpdatedAt}, true, nil
}

// GetByID obtiene un hub por ID.
func (uc *HubUseCase) GetByID(ctx context.Context, id string) (*dto.HubResponse, error) {
	hub, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hub == nil {
		return nil, domain.ErrNotFound
	}
	return toHubResponse(hub), nil
}

// Update renombra un hub o cambia su ciudad.
func (uc *HubUseCase) Update(ctx context.Context, id string, in dto.UpdateHubRequest) (*dto.HubResponse, error) {
	hub, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if hub == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		hub.Name = name
	}
	if in.City != nil {
		hub.City = strings.TrimSpace(*in.City)
	}
	hub.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, hub); err != nil {
		return nil, err
	}
	return toHubResponse(hub), nil
}

// List lista los hubs visibles (hubIDs nil = todos).
func (uc *HubUseCase) List(ctx context.Context, hubIDs []string) ([]dto.HubResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	allowed := map[string]bool{}
	for _, id := range hubIDs {
		allowed[id] = true
	}
	items := make([]dto.HubResponse, 0, len(list))
	for _, h := range list {
		if hubIDs != nil && !allowed[h.ID] {
			continue
		}
		items = append(items, *toHubResponse(h))
	}
	return items, nil
}

func toHubResponse(h *entity.Hub) *dto.HubResponse {
	return &dto.HubResponse{
		ID:        h.ID,
		Name:      h.Name,
		City:      h.City,
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}
