package models

import (
	"time"

	"inventory-app/controllers/idgen"
	"inventory-app/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseOrder struct {
	ID          types.SnowflakeID   `json:"id" gorm:"primaryKey"`
	Code        string              `json:"code" gorm:"uniqueIndex;not null"`
	SupplierID  types.SnowflakeID   `json:"supplier_id" gorm:"not null;index"`
	Supplier    *Supplier           `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
	WarehouseID types.SnowflakeID   `json:"warehouse_id" gorm:"not null;index"`
	Warehouse   *Warehouse          `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
	Status      string              `json:"status" gorm:"not null;index"`
	TotalAmount decimal.Decimal     `json:"total_amount" gorm:"type:decimal(20,4)"`
	Items       []PurchaseOrderItem `json:"items" gorm:"foreignKey:PurchaseOrderID"`
	CreatedBy   int64               `json:"created_by"`
	UpdatedBy   int64               `json:"updated_by"`
	CreatedAt   time.Time           `json:"created_at" gorm:"index"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func (p *PurchaseOrder) BeforeCreate(tx *gorm.DB) error {
	if p.ID == 0 {
		p.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

type PurchaseOrderItem struct {
	ID              types.SnowflakeID `json:"id" gorm:"primaryKey"`
	PurchaseOrderID types.SnowflakeID `json:"purchase_order_id" gorm:"not null;index"`
	VariantID       int64             `json:"variant_id" gorm:"not null"`
	Quantity        int               `json:"quantity" gorm:"not null"`
	ImportPrice     decimal.Decimal   `json:"import_price" gorm:"type:decimal(20,4)"`
	Subtotal        decimal.Decimal   `json:"subtotal" gorm:"type:decimal(20,4)"`
}

func (i *PurchaseOrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == 0 {
		i.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
