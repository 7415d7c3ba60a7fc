package routes

import (
	"inventory-app/config"
	"inventory-app/controllers"
	"inventory-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupInventoryRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewInventoryController(db)
	api := app.Group(config.MAIN_ROUTES+"/inventories", middleware.AuthMiddleware)

	api.Get("/excel", controller.ExportExcel)
	api.Get("/lookup", controller.GetInventory)
	api.Get("/", controller.GetAllInventories)
}
