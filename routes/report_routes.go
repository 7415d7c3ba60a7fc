package routes

import (
	"inventory-app/config"
	"inventory-app/controllers"
	"inventory-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupReportRoutes(app *fiber.App, db *gorm.DB) {
	controller := controllers.NewReportController(db)
	api := app.Group(config.MAIN_ROUTES+"/reports", middleware.AuthMiddleware)

	api.Get("/stock-movements", controller.MovementSummary)
	api.Get("/stock-movements/daily", controller.DailyMovement)
}
