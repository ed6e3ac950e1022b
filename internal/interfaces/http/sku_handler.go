package http

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-inventory/internal/application/dto"
	"github.com/jhoicas/hub-inventory/internal/application/importer"
	"github.com/jhoicas/hub-inventory/internal/application/usecase"
)

// SKUHandler maneja catálogo, asignaciones a hubs e importación CSV.
type SKUHandler struct {
	uc               *usecase.SKUUseCase
	importer         *importer.SKUImporter
	defaultThreshold int
	onCatalogChange  func(*fiber.Ctx)
}

// NewSKUHandler construye el handler. onCatalogChange (opcional) corre tras cada escritura de SKUs,
// incluida una importación que guardó al menos una fila.
func NewSKUHandler(uc *usecase.SKUUseCase, imp *importer.SKUImporter, defaultThreshold int, onCatalogChange func(*fiber.Ctx)) *SKUHandler {
	return &SKUHandler{uc: uc, importer: imp, defaultThreshold: defaultThreshold, onCatalogChange: onCatalogChange}
}

// List godoc
// @Summary      Listar SKUs
// @Tags         skus
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máx 500"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.SKUListResponse
// @Router       /api/skus [get]
func (h *SKUHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badBody(c)
	}
	out, err := h.uc.List(c.Context(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear SKU (admin)
// @Tags         skus
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSKURequest  true  "code, name, barcode, low_stock_threshold"
// @Success      201   {object}  dto.SKUResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/skus [post]
func (h *SKUHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSKURequest
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
// @Summary      Obtener SKU
// @Tags         skus
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del SKU"
// @Success      200  {object}  dto.SKUResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/skus/{id} [get]
func (h *SKUHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Update godoc
// @Summary      Actualizar SKU (admin)
// @Tags         skus
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID del SKU"
// @Param        body  body  dto.UpdateSKURequest  true  "campos a cambiar"
// @Success      200   {object}  dto.SKUResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/skus/{id} [put]
func (h *SKUHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateSKURequest
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

// Hubs godoc
// @Summary      Asignaciones hub-SKU
// @Tags         skus
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del SKU"
// @Success      200  {array}   dto.HubAssignmentResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/skus/{id}/hubs [get]
func (h *SKUHandler) Hubs(c *fiber.Ctx) error {
	out, err := h.uc.Assignments(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SetHubs godoc
// @Summary      Asignar SKU a hubs (admin)
// @Description  Activa los hubs indicados y desactiva el resto. Nunca modifica stock.
// @Tags         skus
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del SKU"
// @Param        body  body  dto.SetHubsRequest  true  "hub_ids"
// @Success      200   {array}   dto.HubAssignmentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/skus/{id}/hubs [put]
func (h *SKUHandler) SetHubs(c *fiber.Ctx) error {
	var in dto.SetHubsRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.SetHubs(c.Context(), c.Params("id"), in.HubIDs)
	if err != nil {
		return writeError(c, err)
	}
	catalogChanged(c, h.onCatalogChange)
	return c.JSON(out)
}

// Import godoc
// @Summary      Importar SKUs desde CSV (admin)
// @Description  Columnas: sku,name,barcode,low_stock_threshold,hubs. Crea o actualiza SKUs, hubs y asignaciones.
// @Tags         skus
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file                   formData  file    true   "CSV"
// @Param        clear_hub_assignments  formData  bool    false  "borrar asignaciones previas"
// @Param        default_threshold      formData  int     false  "umbral si falta en el CSV"
// @Success      200  {object}  dto.ImportResultResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/skus/import [post]
func (h *SKUHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "archivo CSV requerido en el campo file"})
	}
	f, err := fh.Open()
	if err != nil {
		return writeError(c, err)
	}
	defer f.Close()

	opts := importer.Options{
		ClearAssignments: formBool(c.FormValue("clear_hub_assignments")),
		DefaultThreshold: h.defaultThreshold,
	}
	if raw := strings.TrimSpace(c.FormValue("default_threshold")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_INPUT", Message: "default_threshold debe ser un entero >= 0"})
		}
		opts.DefaultThreshold = n
	}

	res, err := h.importer.Import(c.Context(), f, opts)
	if res != nil {
		catalogChanged(c, h.onCatalogChange)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(res.ToResponse())
}

func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
