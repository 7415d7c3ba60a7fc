package migration

import (
	"inventory-app/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Warehouse{},
		&models.Supplier{},
		&models.Inventory{},
		&models.InventoryTransaction{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderItem{},
		&models.Delivery{},
		&models.DeliveryItem{},
		&models.Shipper{},
	)
}
