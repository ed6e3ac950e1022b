package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/application/usecase"
)

// HubHandler maneja las peticiones HTTP para hubs (protegido).
type HubHandler struct {
	uc              *usecase.HubUseCase
	skuUC           *usecase.SKUUseCase
	onCatalogChange func(*fiber.Ctx)
}

// NewHubHandler construye el handler. onCatalogChange (opcional) corre tras crear o renombrar un hub.
func NewHubHandler(uc *usecase.HubUseCase, skuUC *usecase.SKUUseCase, onCatalogChange func(*fiber.Ctx)) *HubHandler {
	return &HubHandler{uc: uc, skuUC: skuUC, onCatalogChange: onCatalogChange}
}

// List godoc
// @Summary      Listar hubs visibles
// @Tags         hubs
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.HubResponse
// @Router       /api/hubs [get]
func (h *HubHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), GetPrincipal(c).Scope().Filter())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear hub (admin)
// @Tags         hubs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateHubRequest  true  "name, city"
// @Success      201   {object}  dto.HubResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/hubs [post]
func (h *HubHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateHubRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	catalogChanged(c, h.onCatalogChange)
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener hub
// @Tags         hubs
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del hub"
// @Success      200  {object}  dto.HubResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/hubs/{id} [get]
func (h *HubHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if !GetPrincipal(c).Scope().Allows(id) {
		return forbidden(c, "no tiene acceso a este hub")
	}
	out, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Renombrar hub (admin)
// @Tags         hubs
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del hub"
// @Param        body  body  dto.UpdateHubRequest  true  "name, city"
// @Success      200   {object}  dto.HubResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/hubs/{id} [put]
func (h *HubHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateHubRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Update(c.Context(), c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	catalogChanged(c, h.onCatalogChange)
	return c.JSON(out)
}

// SKUs godoc
// @Summary      SKUs asignados al hub
// @Tags         hubs
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del hub"
// @Success      200  {array}   dto.SKUResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/hubs/{id}/skus [get]
func (h *HubHandler) SKUs(c *fiber.Ctx) error {
	id := c.Params("id")
	if !GetPrincipal(c).Scope().Allows(id) {
		return forbidden(c, "no tiene acceso a este hub")
	}
	out, err := h.skuUC.ListByHub(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// catalogChanged avisa de un cambio de hubs o SKUs ya guardado.
func catalogChanged(c *fiber.Ctx, hook func(*fiber.Ctx)) {
	if hook != nil {
		hook(c)
	}
}
