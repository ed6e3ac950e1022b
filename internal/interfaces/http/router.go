package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hub-inventory/internal/application/auth"
	"github.com/jhoicas/hub-inventory/internal/application/importer"
	"github.com/jhoicas/hub-inventory/internal/application/inventory"
	"github.com/jhoicas/hub-inventory/internal/application/reporting"
	"github.com/jhoicas/hub-inventory/internal/application/usecase"
	"github.com/jhoicas/hub-inventory/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC          *auth.AuthUseCase
	HubUC           *usecase.HubUseCase
	SKUUC           *usecase.SKUUseCase
	ShipmentUC      *usecase.ShipmentUseCase
	AdjustStock     *inventory.AdjustStockUseCase
	ReceiveShipment *inventory.ReceiveShipmentUseCase
	Importer        *importer.SKUImporter
	Reports         *reporting.ReportUseCase
	DashboardUC     *reporting.DashboardUseCase
	ImportThreshold int
	JWTSecret       string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	protected.Get("/auth/me", authHandler.Me)

	// Users (admin)
	users := protected.Group("/users", adminOnly)
	users.Get("/", authHandler.ListUsers)
	users.Post("/", authHandler.CreateUser)

	// Cambios de catálogo (hubs, SKUs, importación) invalidan el dashboard cacheado
	var onCatalogChange func(*fiber.Ctx)
	if deps.DashboardUC != nil {
		onCatalogChange = func(c *fiber.Ctx) { deps.DashboardUC.Invalidate(c.Context()) }
	}

	// Hubs
	hubs := protected.Group("/hubs")
	hubHandler := NewHubHandler(deps.HubUC, deps.SKUUC, onCatalogChange)
	hubs.Get("/", hubHandler.List)
	hubs.Post("/", adminOnly, hubHandler.Create)
	hubs.Get("/:id", hubHandler.GetByID)
	hubs.Put("/:id", adminOnly, hubHandler.Update)
	hubs.Get("/:id/skus", hubHandler.SKUs)

	// SKUs: lectura para todos, escritura e importación solo admin
	skus := protected.Group("/skus")
	skuHandler := NewSKUHandler(deps.SKUUC, deps.Importer, deps.ImportThreshold, onCatalogChange)
	skus.Get("/", skuHandler.List)
	skus.Post("/", adminOnly, skuHandler.Create)
	skus.Post("/import", adminOnly, skuHandler.Import)
	skus.Get("/:id", skuHandler.GetByID)
	skus.Put("/:id", adminOnly, skuHandler.Update)
	skus.Get("/:id/hubs", skuHandler.Hubs)
	skus.Put("/:id/hubs", adminOnly, skuHandler.SetHubs)

	// Inventory (alcance por hub en cada handler)
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.AdjustStock, deps.Reports)
	inv.Get("/", inventoryHandler.List)
	inv.Post("/adjust", inventoryHandler.Adjust)
	inv.Get("/hubs/:id/sheet.pdf", inventoryHandler.StockSheet)

	// Logs del ledger
	logs := protected.Group("/logs")
	logsHandler := NewLogsHandler(deps.Reports)
	logs.Get("/", logsHandler.List)
	logs.Get("/export.csv", logsHandler.Export)

	// Shipments
	shipments := protected.Group("/shipments")
	shipmentHandler := NewShipmentHandler(deps.ShipmentUC, deps.ReceiveShipment)
	shipments.Get("/", shipmentHandler.List)
	shipments.Post("/", RequireRole(entity.RoleSupplier), shipmentHandler.Create)
	shipments.Get("/:id", shipmentHandler.GetByID)
	shipments.Post("/:id/lines", RequireRole(entity.RoleSupplier), shipmentHandler.AddLine)
	shipments.Post("/:id/receive", shipmentHandler.Receive)

	// Dashboard
	dashboardHandler := NewDashboardHandler(deps.DashboardUC, deps.AuthUC)
	protected.Get("/dashboard", dashboardHandler.Get)
}
