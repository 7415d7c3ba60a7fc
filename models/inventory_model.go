package models

import (
	"time"

	"inventory-app/controllers/idgen"
	"inventory-app/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transaction types. Quantity is a positive magnitude except for ADJUST,
// where it is a signed correction.
const (
	TransactionImport  = "IMPORT"
	TransactionExport  = "EXPORT"
	TransactionAdjust  = "ADJUST"
	TransactionReserve = "RESERVE"
	TransactionRelease = "RELEASE"
)

const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

const (
	ReferencePurchaseOrder = "PURCHASE_ORDER"
	ReferenceOrder         = "ORDER"
)

// Inventory is the per (warehouse, variant) stock record. Counters are only
// ever written by the ledger when a transaction completes.
type Inventory struct {
	ID               types.SnowflakeID `json:"id" gorm:"primaryKey"`
	WarehouseID      types.SnowflakeID `json:"warehouse_id" gorm:"not null;uniqueIndex:idx_inventory_whs_variant"`
	VariantID        int64             `json:"variant_id" gorm:"not null;uniqueIndex:idx_inventory_whs_variant"`
	Quantity         int               `json:"quantity" gorm:"not null;default:0"`
	ReservedQuantity int               `json:"reserved_quantity" gorm:"not null;default:0"`
	Warehouse        *Warehouse        `json:"warehouse,omitempty" gorm:"foreignKey:WarehouseID"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func (i *Inventory) Available() int {
	return i.Quantity - i.ReservedQuantity
}

func (i *Inventory) BeforeCreate(tx *gorm.DB) error {
	if i.ID == 0 {
		i.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

type InventoryTransaction struct {
	ID              types.SnowflakeID   `json:"id" gorm:"primaryKey"`
	Code            string              `json:"code" gorm:"uniqueIndex;not null"`
	InventoryID     types.SnowflakeID   `json:"inventory_id" gorm:"not null;index"`
	Inventory       *Inventory          `json:"inventory,omitempty" gorm:"foreignKey:InventoryID"`
	TransactionType string              `json:"transaction_type" gorm:"not null"`
	Quantity        int                 `json:"quantity" gorm:"not null"`
	PricePerItem    decimal.NullDecimal `json:"price_per_item" gorm:"type:decimal(20,4)"`
	Note            string              `json:"note"`
	ReferenceType   string              `json:"reference_type" gorm:"index:idx_txn_reference"`
	ReferenceCode   string              `json:"reference_code" gorm:"index:idx_txn_reference"`
	Status          string              `json:"status" gorm:"not null;index"`
	CreatedBy       int64               `json:"created_by"`
	UpdatedBy       int64               `json:"updated_by"`
	CreatedAt       time.Time           `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func (t *InventoryTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == 0 {
		t.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
