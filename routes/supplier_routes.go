package routes

import (
	"inventory-app/config"
	"inventory-app/controllers"
	"inventory-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupSupplierRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewSupplierController(db)
	api := app.Group(config.MAIN_ROUTES+"/suppliers", middleware.AuthMiddleware)

	api.Get("/", controller.GetAllSuppliers)
	api.Get("/:id", controller.GetSupplierByID)
	api.Post("/", middleware.RequireRoles("ADMIN"), controller.CreateSupplier)
	api.Put("/:id", middleware.RequireRoles("ADMIN"), controller.UpdateSupplier)
	api.Delete("/:id", middleware.RequireRoles("ADMIN"), controller.DeleteSupplier)
}
