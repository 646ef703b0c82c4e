package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Manufactura-api/internal/application/inventory"
	"github.com/jhoicas/Manufactura-api/internal/application/manufacturing"
	"github.com/jhoicas/Manufactura-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ItemUC      *usecase.ItemUseCase
	CategoryUC  *usecase.CategoryUseCase
	WarehouseUC *usecase.WarehouseUseCase
	AdjustUC    *inventory.AdjustUseCase
	QueryUC     *inventory.QueryUseCase
	BOMUC       *manufacturing.BOMUseCase
	ProduceUC   *manufacturing.ProduceUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todo el catálogo y el motor van detrás
// del Bearer Token; las mutaciones de inventario y producción exigen además
// un rol operativo.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	mutating := RequireRole(RoleAdmin, RoleBodeguero, RoleOperario)

	// Categories
	categories := api.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Post("/", mutating, categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", mutating, categoryHandler.Update)
	categories.Delete("/:id", RequireRole(RoleAdmin), categoryHandler.Delete)

	// Items
	items := api.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC)
	items.Post("/", mutating, itemHandler.Create)
	items.Get("/", itemHandler.List)
	items.Get("/sku/:sku", itemHandler.GetBySKU)
	items.Get("/:id", itemHandler.GetByID)
	items.Put("/:id", mutating, itemHandler.Update)
	items.Delete("/:id", RequireRole(RoleAdmin), itemHandler.Delete)

	// Warehouses
	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", mutating, warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Put("/:id", mutating, warehouseHandler.Update)
	warehouses.Delete("/:id", RequireRole(RoleAdmin), warehouseHandler.Delete)

	// Inventory: ajustes, niveles, libro, conciliación
	inventoryHandler := NewInventoryHandler(deps.AdjustUC, deps.QueryUC)
	warehouses.Get("/:id/inventory", inventoryHandler.ListWarehouseInventory)

	invGroup := api.Group("/inventory")
	invGroup.Post("/adjustments", mutating, inventoryHandler.Adjust)
	invGroup.Get("/levels", inventoryHandler.GetLevel)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/reconcile", inventoryHandler.Reconcile)
	invGroup.Get("/low-stock", inventoryHandler.LowStock)

	// BOMs y producción
	boms := api.Group("/boms")
	bomHandler := NewBOMHandler(deps.BOMUC, deps.ProduceUC)
	boms.Post("/", mutating, bomHandler.Create)
	boms.Get("/", bomHandler.List)
	boms.Get("/:id", bomHandler.GetByID)
	boms.Put("/:id", mutating, bomHandler.Update)
	boms.Delete("/:id", RequireRole(RoleAdmin), bomHandler.Delete)
	boms.Post("/:id/components", mutating, bomHandler.AddComponent)
	boms.Put("/:id/components/:itemId", mutating, bomHandler.UpdateComponent)
	boms.Delete("/:id/components/:itemId", mutating, bomHandler.RemoveComponent)
	boms.Get("/:id/cost", bomHandler.CostBreakdown)
	boms.Post("/:id/check-availability", bomHandler.CheckAvailability)
	boms.Post("/:id/produce", RequireRole(RoleAdmin, RoleOperario), bomHandler.Produce)
}
