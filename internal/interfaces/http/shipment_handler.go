package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-inventory/internal/application/auth"
	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/application/inventory"
	"github.com/jhoicas/hub-inventory/internal/application/usecase"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
)

// ShipmentHandler maneja envíos entrantes y su recepción.
type ShipmentHandler struct {
	uc      *usecase.ShipmentUseCase
	receive *inventory.ReceiveShipmentUseCase
}

// NewShipmentHandler construye el handler.
func NewShipmentHandler(uc *usecase.ShipmentUseCase, receive *inventory.ReceiveShipmentUseCase) *ShipmentHandler {
	return &ShipmentHandler{uc: uc, receive: receive}
}

// canSee visible si el hub destino está en el alcance o si el caller es el proveedor.
func canSee(p auth.Principal, s *entity.Shipment) bool {
	return p.Scope().Allows(s.DestHubID) || (s.SupplierID != "" && s.SupplierID == p.UserID)
}

// List godoc
// @Summary      Envíos hacia los hubs visibles
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ShipmentResponse
// @Router       /api/shipments [get]
func (h *ShipmentHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.Context(), GetPrincipal(c).Scope().Filter())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear envío (proveedor)
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateShipmentRequest  true  "dest_hub_id"
// @Success      201   {object}  dto.ShipmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/shipments [post]
func (h *ShipmentHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateShipmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Create(c.Context(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// AddLine godoc
// @Summary      Agregar línea a un envío PENDING (proveedor)
// @Tags         shipments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID del envío"
// @Param        body  body  dto.AddShipmentLineRequest  true  "sku_id o sku_code, quantity != 0"
// @Success      201   {object}  dto.ShipmentResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/lines [post]
func (h *ShipmentHandler) AddLine(c *fiber.Ctx) error {
	var in dto.AddShipmentLineRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	p := GetPrincipal(c)
	s, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if !p.IsAdmin() && s.SupplierID != p.UserID {
		return forbidden(c, "solo el proveedor del envío puede agregar líneas")
	}
	out, err := h.uc.AddLine(c.Context(), s.ID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener envío con líneas
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del envío"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id} [get]
func (h *ShipmentHandler) GetByID(c *fiber.Ctx) error {
	s, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if !canSee(GetPrincipal(c), s) {
		return forbidden(c, "no tiene acceso a este envío")
	}
	return c.JSON(usecase.ToShipmentResponse(s))
}

// Receive godoc
// @Summary      Recibir envío
// @Description  Aplica todas las líneas al stock del hub destino en una sola unidad de trabajo.
//
//	Repetir sobre un envío ya recibido no tiene efecto.
//
// @Tags         shipments
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del envío"
// @Success      200  {object}  dto.ShipmentResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/shipments/{id}/receive [post]
func (h *ShipmentHandler) Receive(c *fiber.Ctx) error {
	p := GetPrincipal(c)
	s, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	if !p.Scope().Allows(s.DestHubID) {
		return forbidden(c, "no tiene acceso al hub destino")
	}
	if err := h.receive.Receive(c.Context(), p.UserID, s.ID); err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.GetByID(c.Context(), s.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
