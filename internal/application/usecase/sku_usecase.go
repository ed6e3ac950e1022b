package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/domain"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
	"github.com/jhoicas/hub-inventory/internal/domain/repository"
)

// SKUUseCase catálogo de SKUs y su asignación a hubs. No toca stock.
type SKUUseCase struct {
	repo    repository.SKURepository
	hubRepo repository.HubRepository
	links   repository.HubSKURepository
}

// NewSKUUseCase construye el caso de uso.
func NewSKUUseCase(repo repository.SKURepository, hubRepo repository.HubRepository, links repository.HubSKURepository) *SKUUseCase {
	return &SKUUseCase{repo: repo, hubRepo: hubRepo, links: links}
}

// Create crea un SKU. Código repetido = ErrDuplicate.
func (uc *SKUUseCase) Create(ctx context.Context, in dto.CreateSKURequest) (*dto.SKUResponse, error) {
	code := strings.TrimSpace(in.Code)
	name := strings.TrimSpace(in.Name)
	if code == "" || name == "" {
		return nil, domain.ErrInvalidInput
	}
	threshold := entity.DefaultLowStockThreshold
	if in.LowStockThreshold != nil {
		if *in.LowStockThreshold < 0 {
			return nil, domain.ErrInvalidInput
		}
		threshold = *in.LowStockThreshold
	}
	now := time.Now().UTC()
	sku := &entity.SKU{
		ID:                uuid.New().String(),
		Code:              code,
		Name:              name,
		Barcode:           strings.TrimSpace(in.Barcode),
		LowStockThreshold: threshold,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := uc.repo.Create(ctx, sku); err != nil {
		return nil, err
	}
	return toSKUResponse(sku), nil
}

// GetByID obtiene un SKU.
func (uc *SKUUseCase) GetByID(ctx context.Context, id string) (*dto.SKUResponse, error) {
	sku, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sku == nil {
		return nil, domain.ErrNotFound
	}
	return toSKUResponse(sku), nil
}

// Update actualiza los campos presentes.
func (uc *SKUUseCase) Update(ctx context.Context, id string, in dto.UpdateSKURequest) (*dto.SKUResponse, error) {
	sku, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sku == nil {
		return nil, domain.ErrNotFound
	}
	if in.Code != nil {
		if sku.Code = strings.TrimSpace(*in.Code); sku.Code == "" {
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Name != nil {
		if sku.Name = strings.TrimSpace(*in.Name); sku.Name == "" {
			return nil, domain.ErrInvalidInput
		}
	}
	if in.Barcode != nil {
		sku.Barcode = strings.TrimSpace(*in.Barcode)
	}
	if in.LowStockThreshold != nil {
		if *in.LowStockThreshold < 0 {
			return nil, domain.ErrInvalidInput
		}
		sku.LowStockThreshold = *in.LowStockThreshold
	}
	sku.UpdatedAt = time.Now().UTC()
	if err := uc.repo.Update(ctx, sku); err != nil {
		return nil, err
	}
	return toSKUResponse(sku), nil
}

// List lista SKUs por código con paginación.
func (uc *SKUUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.SKUListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SKUResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSKUResponse(s))
	}
	return &dto.SKUListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// SetHubs deja el SKU asignado exactamente a hubIDs: activa o crea esos vínculos y desactiva el resto.
func (uc *SKUUseCase) SetHubs(ctx context.Context, skuID string, hubIDs []string) ([]dto.HubAssignmentResponse, error) {
	sku, err := uc.repo.GetByID(ctx, skuID)
	if err != nil {
		return nil, err
	}
	if sku == nil {
		return nil, domain.ErrNotFound
	}
	selected := make(map[string]bool, len(hubIDs))
	for _, id := range hubIDs {
		hub, err := uc.hubRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if hub == nil {
			return nil, domain.ErrNotFound
		}
		selected[id] = true
	}

	current, err := uc.links.ListBySKU(ctx, skuID)
	if err != nil {
		return nil, err
	}
	for _, link := range current {
		if link.Active && !selected[link.HubID] {
			link.Active = false
			if _, err := uc.links.Upsert(ctx, link); err != nil {
				return nil, err
			}
		}
	}
	existing := make(map[string]*entity.HubSKU, len(current))
	for _, link := range current {
		existing[link.HubID] = link
	}
	for id := range selected {
		link := existing[id]
		if link == nil {
			link = &entity.HubSKU{HubID: id, SKUID: skuID}
		} else if link.Active {
			continue
		}
		link.Active = true
		if _, err := uc.links.Upsert(ctx, link); err != nil {
			return nil, err
		}
	}
	return uc.Assignments(ctx, skuID)
}

// Assignments lista los vínculos del SKU.
func (uc *SKUUseCase) Assignments(ctx context.Context, skuID string) ([]dto.HubAssignmentResponse, error) {
	links, err := uc.links.ListBySKU(ctx, skuID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.HubAssignmentResponse, 0, len(links))
	for _, l := range links {
		out = append(out, dto.HubAssignmentResponse{HubID: l.HubID, SKUID: l.SKUID, Active: l.Active, ReorderPoint: l.ReorderPoint})
	}
	return out, nil
}

// ListByHub lista los SKUs activos de un hub.
func (uc *SKUUseCase) ListByHub(ctx context.Context, hubID string) ([]dto.SKUResponse, error) {
	list, err := uc.links.ListSKUsByHub(ctx, hubID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SKUResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSKUResponse(s))
	}
	return items, nil
}

func toSKUResponse(s *entity.SKU) *dto.SKUResponse {
	return &dto.SKUResponse{
		ID:                s.ID,
		Code:              s.Code,
		Name:              s.Name,
		Barcode:           s.Barcode,
		LowStockThreshold: s.LowStockThreshold,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}
