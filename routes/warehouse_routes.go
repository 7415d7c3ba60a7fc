package routes

import (
	"inventory-app/config"
	"inventory-app/controllers"
	"inventory-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupWarehouseRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewWarehouseController(db)
	api := app.Group(config.MAIN_ROUTES+"/warehouses", middleware.AuthMiddleware)

	api.Get("/", controller.GetAllWarehouses)
	api.Get("/:id", controller.GetWarehouseByID)
	api.Post("/", middleware.RequireRoles("ADMIN"), controller.CreateWarehouse)
	api.Put("/:id", middleware.RequireRoles("ADMIN"), controller.UpdateWarehouse)
	api.Delete("/:id", middleware.RequireRoles("ADMIN"), controller.DeleteWarehouse)
}
