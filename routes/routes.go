package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes registers every route group on the app.
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	SetupWarehouseRoutes(app, db)
	SetupSupplierRoutes(app, db)
	SetupInventoryRoutes(app, db)
	SetupTransactionRoutes(app, db)
	SetupPurchaseOrderRoutes(app, db)
	SetupDeliveryRoutes(app, db)
	SetupShipperRoutes(app, db)
	SetupReportRoutes(app, db)
}
