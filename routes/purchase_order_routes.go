package routes

import (
	"inventory-app/config"
	"inventory-app/controllers"
	"inventory-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupPurchaseOrderRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewPurchaseOrderController(db)
	api := app.Group(config.MAIN_ROUTES+"/purchase-orders", middleware.AuthMiddleware)

	api.Get("/", controller.GetAllPurchaseOrders)
	api.Get("/:id", controller.GetPurchaseOrderByID)
	api.Post("/", middleware.RequireRoles("ADMIN", "STAFF"), controller.CreatePurchaseOrder)
	api.Put("/:id", middleware.RequireRoles("ADMIN", "STAFF"), controller.UpdatePurchaseOrder)
	api.Patch("/:id/status", middleware.RequireRoles("ADMIN", "STAFF"), controller.UpdatePurchaseOrderStatus)
}
