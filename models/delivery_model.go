package models

import (
	"time"

	"inventory-app/controllers/idgen"
	"inventory-app/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DeliveryPending   = "PENDING"
	DeliveryAssigned  = "ASSIGNED"
	DeliveryShipping  = "SHIPPING"
	DeliveryDelivered = "DELIVERED"
	DeliveryFailed    = "FAILED"
	DeliveryCancelled = "CANCELLED"
)

const (
	ShipperOffline  = "OFFLINE"
	ShipperOnline   = "ONLINE"
	ShipperShipping = "SHIPPING"
)

type Delivery struct {
	ID              types.SnowflakeID  `json:"id" gorm:"primaryKey"`
	DeliveryNumber  string             `json:"delivery_number" gorm:"uniqueIndex;not null"`
	OrderNumber     string             `json:"order_number" gorm:"not null;index"`
	WarehouseID     types.SnowflakeID  `json:"warehouse_id" gorm:"not null;index"`
	ShippingName    string             `json:"shipping_name"`
	ShippingAddress string             `json:"shipping_address"`
	ShippingPhone   string             `json:"shipping_phone"`
	CodAmount       decimal.Decimal    `json:"cod_amount" gorm:"type:decimal(20,4)"`
	Status          string             `json:"status" gorm:"not null;index"`
	AssignedShipper *types.SnowflakeID `json:"assigned_shipper_id" gorm:"column:assigned_shipper_id;index"`
	AssignedAt      *time.Time         `json:"assigned_at"`
	DeliveredAt     *time.Time         `json:"delivered_at"`
	FailedReason    string             `json:"failed_reason"`
	Items           []DeliveryItem     `json:"item_list" gorm:"foreignKey:DeliveryID"`
	CreatedAt       time.Time          `json:"created_at" gorm:"index"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func (d *Delivery) BeforeCreate(tx *gorm.DB) error {
	if d.ID == 0 {
		d.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

type DeliveryItem struct {
	ID          types.SnowflakeID `json:"id" gorm:"primaryKey"`
	DeliveryID  types.SnowflakeID `json:"delivery_id" gorm:"not null;index"`
	VariantID   int64             `json:"variant_id" gorm:"not null"`
	VariantName string            `json:"variant_name"`
	UnitPrice   decimal.Decimal   `json:"unit_price" gorm:"type:decimal(20,4)"`
	Quantity    int               `json:"quantity" gorm:"not null"`
}

func (i *DeliveryItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == 0 {
		i.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

type Shipper struct {
	ID          types.SnowflakeID `json:"id" gorm:"primaryKey"`
	FullName    string            `json:"full_name" gorm:"not null" validate:"required"`
	Phone       string            `json:"phone"`
	Email       string            `json:"email"`
	WarehouseID types.SnowflakeID `json:"warehouse_id" gorm:"not null;index"`
	Status      string            `json:"status" gorm:"not null;default:OFFLINE"`
	IsActive    bool              `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (s *Shipper) BeforeCreate(tx *gorm.DB) error {
	if s.ID == 0 {
		s.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
