package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Inventario-lotes/internal/application/auth"
	"github.com/jhoicas/Inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/Inventario-lotes/internal/application/sales"
	"github.com/jhoicas/Inventario-lotes/internal/application/usecase"
	"github.com/jhoicas/Inventario-lotes/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC      *auth.AuthUseCase
	UserUC      *usecase.UserUseCase
	TemplateUC  *usecase.TemplateUseCase
	WarehouseUC *usecase.WarehouseUseCase
	ShipmentUC  *inventory.ShipmentUseCase
	StockUC     *inventory.StockUseCase
	SaleUC      *sales.SaleUseCase
	SalePDF     *sales.PDFUseCase
	JWTSecret   string
}

const (
	admin     = entity.RoleAdmin
	bodeguero = entity.RoleBodeguero
	vendedor  = entity.RoleVendedor
)

// Router registra las rutas de la API.
// RequireRole deja pasar siempre a admin; los roles listados son los adicionales.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(admin, bodeguero, vendedor)
	adminOnly := RequireRole(admin)

	// Users
	users := protected.Group("/users")
	userHandler := NewUserHandler(deps.UserUC, deps.AuthUC)
	users.Get("/me", anyRole, userHandler.Me)
	users.Get("/", adminOnly, userHandler.List)
	users.Post("/", adminOnly, userHandler.Create)
	users.Get("/:id", adminOnly, userHandler.GetByID)

	// Templates
	templates := protected.Group("/templates")
	templateHandler := NewTemplateHandler(deps.TemplateUC)
	templates.Get("/", anyRole, templateHandler.List)
	templates.Get("/:id", anyRole, templateHandler.GetByID)
	templates.Post("/", adminOnly, templateHandler.Create)
	templates.Put("/:id", adminOnly, templateHandler.Update)
	templates.Post("/:id/test-formula", RequireRole(bodeguero), templateHandler.TestFormula)

	// Warehouses
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Get("/", anyRole, warehouseHandler.List)
	warehouses.Get("/:id", anyRole, warehouseHandler.GetByID)
	warehouses.Post("/", adminOnly, warehouseHandler.Create)
	warehouses.Put("/:id", adminOnly, warehouseHandler.Update)
	warehouses.Delete("/:id", adminOnly, warehouseHandler.Delete)

	// Shipments (lotes en tránsito)
	shipments := protected.Group("/shipments")
	shipmentHandler := NewShipmentHandler(deps.ShipmentUC)
	warehouseStaff := RequireRole(bodeguero)
	shipments.Get("/", anyRole, shipmentHandler.List)
	shipments.Get("/:id", anyRole, shipmentHandler.GetByID)
	shipments.Get("/:id/discrepancies", anyRole, shipmentHandler.ListDiscrepancies)
	shipments.Post("/", warehouseStaff, shipmentHandler.Create)
	shipments.Patch("/:id/status", warehouseStaff, shipmentHandler.UpdateStatus)
	shipments.Post("/:id/receive", warehouseStaff, shipmentHandler.Receive)
	shipments.Post("/:id/cancel", warehouseStaff, shipmentHandler.Cancel)
	shipments.Post("/:id/correct", warehouseStaff, shipmentHandler.Correct)

	protected.Post("/discrepancies", warehouseStaff, shipmentHandler.RecordDiscrepancy)

	// Lots en bodega y stock
	stockHandler := NewStockHandler(deps.StockUC)
	lots := protected.Group("/lots")
	lots.Get("/", anyRole, stockHandler.ListLots)
	lots.Get("/:id", anyRole, stockHandler.GetLot)
	lots.Patch("/:id/quantity", adminOnly, stockHandler.AdjustQuantity)
	lots.Post("/:id/activate", adminOnly, stockHandler.Activate)
	lots.Post("/:id/deactivate", adminOnly, stockHandler.Deactivate)

	stock := protected.Group("/stock")
	stock.Get("/", anyRole, stockHandler.QueryAvailableStock)
	stock.Get("/integrity", adminOnly, stockHandler.Integrity)
	stock.Get("/export", warehouseStaff, stockHandler.Export)

	// Sales
	salesGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, deps.SalePDF)
	sellers := RequireRole(vendedor)
	salesGroup.Get("/", anyRole, saleHandler.List)
	salesGroup.Get("/:id", anyRole, saleHandler.GetByID)
	salesGroup.Get("/:id/pdf", anyRole, saleHandler.DownloadNote)
	salesGroup.Post("/", sellers, saleHandler.Create)
	salesGroup.Put("/:id", sellers, saleHandler.Update)
	salesGroup.Post("/:id/process", sellers, saleHandler.Process)
	salesGroup.Post("/:id/cancel", sellers, saleHandler.Cancel)
	salesGroup.Patch("/:id/payment-status", sellers, saleHandler.UpdatePaymentStatus)
	salesGroup.Patch("/:id/delivery-status", sellers, saleHandler.UpdateDeliveryStatus)
}
