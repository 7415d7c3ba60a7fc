package models

import (
	"time"

	"inventory-app/controllers/idgen"
	"inventory-app/types"

	"gorm.io/gorm"
)

type Supplier struct {
	ID        types.SnowflakeID `json:"id" gorm:"primaryKey"`
	Code      string            `json:"code" gorm:"uniqueIndex;not null" validate:"required"`
	Name      string            `json:"name" gorm:"not null" validate:"required"`
	Phone     string            `json:"phone"`
	Email     string            `json:"email"`
	Address   string            `json:"address"`
	CreatedBy int64             `json:"created_by"`
	UpdatedBy int64             `json:"updated_by"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (s *Supplier) BeforeCreate(tx *gorm.DB) error {
	if s.ID == 0 {
		s.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
