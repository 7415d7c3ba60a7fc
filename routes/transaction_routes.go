package routes

import (
	"inventory-app/config"
	"inventory-app/controllers"
	"inventory-app/middleware"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupTransactionRoutes(app *fiber.App, db *gorm.DB) {
	transactionController := controllers.NewTransactionController(db)
	reportController := controllers.NewReportController(db)
	api := app.Group(config.MAIN_ROUTES+"/inventory-transactions", middleware.AuthMiddleware)

	api.Get("/excel", reportController.ExportTransactions)
	api.Get("/", transactionController.GetAllTransactions)
	api.Get("/:id", transactionController.GetTransactionByID)
	api.Post("/", middleware.RequireRoles("ADMIN", "STAFF"), transactionController.CreateTransaction)
	api.Patch("/:id/status", middleware.RequireRoles("ADMIN", "STAFF"), transactionController.UpdateTransactionStatus)

	// Reservation contract, consumed by the order service.
	api.Post("/reserve", transactionController.ReserveOrder)
	api.Post("/release", transactionController.ReleaseOrder)
}
