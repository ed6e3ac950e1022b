package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/application/inventory"
	"github.com/jhoicas/hub-inventory/internal/application/reporting"
)

// InventoryHandler maneja stock, ajustes manuales y la hoja PDF (protegido).
type InventoryHandler struct {
	adjust  *inventory.AdjustStockUseCase
	reports *reporting.ReportUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(adjust *inventory.AdjustStockUseCase, reports *reporting.ReportUseCase) *InventoryHandler {
	return &InventoryHandler{adjust: adjust, reports: reports}
}

// List godoc
// @Summary      Stock de los hubs visibles
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryListResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	out, err := h.reports.ListStock(c.Context(), GetPrincipal(c).Scope())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  Suma delta (positivo o negativo) al par hub+SKU y registra la entrada en el ledger.
//
//	409 INSUFFICIENT_STOCK si la cantidad quedaría negativa; 409 CONCURRENCY_CONFLICT: reintentar.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "hub_id, sku_id, delta, note"
// @Success      200   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	p := GetPrincipal(c)
	if !p.Scope().Allows(in.HubID) {
		return forbidden(c, "no tiene acceso a este hub")
	}
	qty, err := h.adjust.Adjust(c.Context(), inventory.AdjustInput{
		ActorID: p.UserID,
		HubID:   in.HubID,
		SKUID:   in.SKUID,
		Delta:   in.Delta,
		Note:    in.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AdjustStockResponse{HubID: in.HubID, SKUID: in.SKUID, Quantity: qty})
}

// StockSheet godoc
// @Summary      Hoja de stock del hub en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del hub"
// @Success      200  {file}    binary
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/hubs/{id}/sheet.pdf [get]
func (h *InventoryHandler) StockSheet(c *fiber.Ctx) error {
	pdf, name, err := h.reports.StockSheet(c.Context(), GetPrincipal(c).Scope(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(pdf)
}
