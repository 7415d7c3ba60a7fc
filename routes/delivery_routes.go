package routes

import (
	"inventory-app/config"
	"inventory-app/controllers"
	"inventory-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupDeliveryRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewDeliveryController(db)
	api := app.Group(config.MAIN_ROUTES+"/deliveries", middleware.AuthMiddleware)

	api.Get("/", controller.GetAllDeliveries)
	api.Get("/:id", controller.GetDeliveryByID)
	api.Post("/assign", middleware.RequireRoles("ADMIN", "STAFF"), controller.AssignDeliveries)
	api.Post("/auto-assign", middleware.RequireRoles("ADMIN"), controller.TriggerAutoAssign)
	api.Patch("/:id/status", controller.UpdateDeliveryStatus)

	// Created by the order service once an order is paid and reserved.
	api.Post("/", controller.CreateDelivery)
}
