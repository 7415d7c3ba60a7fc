package models

import (
	"time"

	"inventory-app/controllers/idgen"
	"inventory-app/types"

	"gorm.io/gorm"
)

type Warehouse struct {
	ID          types.SnowflakeID `json:"id" gorm:"primaryKey"`
	Code        string            `json:"code" gorm:"uniqueIndex;not null" validate:"required"`
	Name        string            `json:"name" gorm:"uniqueIndex;not null" validate:"required"`
	Address     string            `json:"address"`
	Description string            `json:"description"`
	CreatedBy   int64             `json:"created_by"`
	UpdatedBy   int64             `json:"updated_by"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (w *Warehouse) BeforeCreate(tx *gorm.DB) error {
	if w.ID == 0 {
		w.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
