package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/costeo-api/internal/application/catalog"
	"github.com/jhoicas/costeo-api/internal/application/costing"
	"github.com/jhoicas/costeo-api/internal/application/inventory"
	"github.com/jhoicas/costeo-api/internal/application/purchasing"
	"github.com/jhoicas/costeo-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Purchases   *purchasing.PurchaseOrderUseCase
	PurchasePDF *purchasing.PDFUseCase
	Costing     *costing.CostingUseCase
	Catalog     *catalog.CatalogUseCase
	Adjustments *inventory.AdjustmentUseCase
	Log         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("http")

	api := app.Group("/api")

	purchaseHandler := NewPurchaseOrderHandler(deps.Purchases, deps.PurchasePDF, log)
	orders := api.Group("/purchase-orders")
	orders.Post("/", purchaseHandler.Create)
	orders.Get("/", purchaseHandler.List)
	orders.Get("/stats", purchaseHandler.Stats)
	orders.Get("/:id", purchaseHandler.GetByID)
	orders.Put("/:id", purchaseHandler.Update)
	orders.Delete("/:id", purchaseHandler.Delete)
	orders.Patch("/:id/state", purchaseHandler.ChangeState)
	orders.Get("/:id/pdf", purchaseHandler.PDF)

	catalogHandler := NewCatalogHandler(deps.Catalog, log)
	costingHandler := NewCostingHandler(deps.Costing, log)
	inventoryHandler := NewInventoryHandler(deps.Adjustments, log)

	materials := api.Group("/materials")
	materials.Post("/", catalogHandler.CreateMaterial)
	materials.Get("/:id", catalogHandler.GetMaterial)
	materials.Delete("/:id", catalogHandler.RetireMaterial)
	materials.Get("/:id/fifo-cost", costingHandler.FIFOCost)
	materials.Post("/:id/adjustments", inventoryHandler.Adjust)
	materials.Get("/:id/movements", inventoryHandler.Movements)
	materials.Get("/:id/audit", inventoryHandler.Audit)

	products := api.Group("/products")
	products.Post("/", catalogHandler.CreateProduct)
	products.Get("/:id/bom", catalogHandler.ListBOM)
	products.Post("/:id/bom", catalogHandler.AddBOMLine)
	products.Get("/:id/cost", costingHandler.ProductCost)
	products.Get("/:id/production-check", costingHandler.ProductionCheck)

	bomLines := api.Group("/bom-lines")
	bomLines.Put("/:id", catalogHandler.UpdateBOMLine)
	bomLines.Delete("/:id", catalogHandler.RemoveBOMLine)

	api.Get("/inventory/low-stock", inventoryHandler.LowStock)
}
