package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-inventory/internal/application/auth"
	"github.com/jhoicas/hub-inventory/internal/application/reporting"
)

// DashboardHandler expone el resumen de la pantalla inicial.
type DashboardHandler struct {
	uc     *reporting.DashboardUseCase
	authUC *auth.AuthUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *reporting.DashboardUseCase, authUC *auth.AuthUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc, authUC: authUC}
}

// Get godoc
// @Summary      Dashboard del usuario
// @Description  Bienvenida, hubs visibles, total de SKUs y unidades, stock bajo y últimas 3 entradas del ledger.
// @Tags         dashboard
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DashboardResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/dashboard [get]
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	p := GetPrincipal(c)
	// el token no trae el username
	me, err := h.authUC.Me(c.Context(), p.UserID)
	if err != nil {
		return writeError(c, err)
	}
	p.Username = me.Username

	out, err := h.uc.Get(c.Context(), p)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
