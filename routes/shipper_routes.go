package routes

import (
	"inventory-app/config"
	"inventory-app/controllers"
	"inventory-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupShipperRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewShipperController(db)
	api := app.Group(config.MAIN_ROUTES+"/shippers", middleware.AuthMiddleware)

	api.Get("/", controller.GetAllShippers)
	api.Get("/:id", controller.GetShipperByID)
	api.Post("/", middleware.RequireRoles("ADMIN"), controller.CreateShipper)
	api.Put("/:id", middleware.RequireRoles("ADMIN"), controller.UpdateShipper)
	api.Patch("/:id/status", controller.UpdateShipperStatus)
	api.Patch("/:id/lock", middleware.RequireRoles("ADMIN"), controller.LockShipper)
}
