package http

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-inventory/internal/application/reporting"
)

// LogsHandler expone el ledger: listado reciente y export CSV.
type LogsHandler struct {
	reports *reporting.ReportUseCase
}

// NewLogsHandler construye el handler.
func NewLogsHandler(reports *reporting.ReportUseCase) *LogsHandler {
	return &LogsHandler{reports: reports}
}

// List godoc
// @Summary      Entradas recientes del ledger
// @Tags         logs
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LedgerEntryResponse
// @Router       /api/logs [get]
func (h *LogsHandler) List(c *fiber.Ctx) error {
	out, err := h.reports.ListLogs(c.Context(), GetPrincipal(c).Scope())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Export godoc
// @Summary      Exportar ledger en CSV
// @Description  Columnas: created_at,user,hub,sku,change,note. Más recientes primero.
// @Tags         logs
// @Security     Bearer
// @Produce      text/csv
// @Success      200  {file}  binary
// @Router       /api/logs/export.csv [get]
func (h *LogsHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.reports.WriteLogsCSV(c.Context(), &buf, GetPrincipal(c).Scope()); err != nil {
		return writeError(c, err)
	}
	c.Attachment(h.reports.ExportFilename())
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}
