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

// ShipmentListLimit máximo de envíos en un listado.
const ShipmentListLimit = 100

// ShipmentUseCase alta y consulta de envíos. La recepción vive en inventory.ReceiveShipmentUseCase.
type ShipmentUseCase struct {
	repo    repository.ShipmentRepository
	hubRepo repository.HubRepository
	skuRepo repository.SKURepository
}

// NewShipmentUseCase construye el caso de uso.
func NewShipmentUseCase(repo repository.ShipmentRepository, hubRepo repository.HubRepository, skuRepo repository.SKURepository) *ShipmentUseCase {
	return &ShipmentUseCase{repo: repo, hubRepo: hubRepo, skuRepo: skuRepo}
}

// Create crea un envío PENDING del proveedor supplierID hacia el hub destino.
func (uc *ShipmentUseCase) Create(ctx context.Context, supplierID string, in dto.CreateShipmentRequest) (*dto.ShipmentResponse, error) {
	if strings.TrimSpace(in.DestHubID) == "" {
		return nil, domain.ErrInvalidInput
	}
	hub, err := uc.hubRepo.GetByID(ctx, in.DestHubID)
	if err != nil {
		return nil, err
	}
	if hub == nil {
		return nil, domain.ErrNotFound
	}
	s := &entity.Shipment{
		ID:          uuid.New().String(),
		SupplierID:  supplierID,
		DestHubID:   hub.ID,
		DestHubName: hub.Name,
		Status:      entity.ShipmentStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return ToShipmentResponse(s), nil
}

// AddLine agrega un SKU al envío mientras siga PENDING. La cantidad no puede ser cero;
// una cantidad negativa representa una devolución.
func (uc *ShipmentUseCase) AddLine(ctx context.Context, shipmentID string, in dto.AddShipmentLineRequest) (*dto.ShipmentResponse, error) {
	if in.Quantity == 0 {
		return nil, domain.ErrInvalidInput
	}
	s, err := uc.repo.GetByID(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if s.IsReceived() {
		return nil, domain.ErrConflict
	}

	var sku *entity.SKU
	switch {
	case in.SKUID != "":
		sku, err = uc.skuRepo.GetByID(ctx, in.SKUID)
	case strings.TrimSpace(in.SKUCode) != "":
		sku, err = uc.skuRepo.GetByCode(ctx, strings.TrimSpace(in.SKUCode))
	default:
		return nil, domain.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}
	if sku == nil {
		return nil, domain.ErrNotFound
	}

	line := &entity.ShipmentLine{
		ID:         uuid.New().String(),
		ShipmentID: s.ID,
		SKUID:      sku.ID,
		SKUCode:    sku.Code,
		Quantity:   in.Quantity,
	}
	if err := uc.repo.AddLine(ctx, line); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, s.ID)
}

// GetByID obtiene un envío con sus líneas.
func (uc *ShipmentUseCase) GetByID(ctx context.Context, id string) (*dto.ShipmentResponse, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return ToShipmentResponse(s), nil
}

// Get devuelve la entidad (los handlers la usan para chequear el hub destino).
func (uc *ShipmentUseCase) Get(ctx context.Context, id string) (*entity.Shipment, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// List lista los envíos de los hubs visibles (nil = todos), más recientes primero.
func (uc *ShipmentUseCase) List(ctx context.Context, hubIDs []string) ([]dto.ShipmentResponse, error) {
	list, err := uc.repo.ListByHubs(ctx, hubIDs, ShipmentListLimit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ShipmentResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *ToShipmentResponse(s))
	}
	return out, nil
}

// ToShipmentResponse convierte la entidad en DTO.
func ToShipmentResponse(s *entity.Shipment) *dto.ShipmentResponse {
	lines := make([]dto.ShipmentLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, dto.ShipmentLineResponse{
			ID:       l.ID,
			SKUID:    l.SKUID,
			SKUCode:  l.SKUCode,
			Quantity: l.Quantity,
			Position: l.Position,
		})
	}
	return &dto.ShipmentResponse{
		ID:          s.ID,
		SupplierID:  s.SupplierID,
		DestHubID:   s.DestHubID,
		DestHubName: s.DestHubName,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		ReceivedAt:  s.ReceivedAt,
		Lines:       lines,
	}
}
