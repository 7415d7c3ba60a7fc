package repositories

import (
	"strings"

	"inventory-app/apperr"
	"inventory-app/models"
	"inventory-app/types"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type ShipperRepository struct {
	db *gorm.DB
}

func NewShipperRepository(db *gorm.DB) *ShipperRepository {
	return &ShipperRepository{db: db}
}

type ShipperInput struct {
	FullName    string            `json:"full_name" validate:"required"`
	Phone       string            `json:"phone"`
	Email       string            `json:"email" validate:"omitempty,email"`
	WarehouseID types.SnowflakeID `json:"warehouse_id" validate:"required"`
}

func (r *ShipperRepository) Create(input ShipperInput) (*models.Shipper, error) {
	if err := mustExist(r.db, &models.Warehouse{}, input.WarehouseID, "warehouse"); err != nil {
		return nil, err
	}
	shipper := &models.Shipper{
		FullName:    input.FullName,
		Phone:       input.Phone,
		Email:       input.Email,
		WarehouseID: input.WarehouseID,
		Status:      models.ShipperOffline,
		IsActive:    true,
	}
	if err := r.db.Create(shipper).Error; err != nil {
		return nil, err
	}
	return shipper, nil
}

func (r *ShipperRepository) Update(id types.SnowflakeID, input ShipperInput) (*models.Shipper, error) {
	shipper, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if err := mustExist(r.db, &models.Warehouse{}, input.WarehouseID, "warehouse"); err != nil {
		return nil, err
	}
	if input.WarehouseID != shipper.WarehouseID {
		var open int64
		if err := r.db.Model(&models.Delivery{}).
			Where("assigned_shipper_id = ? AND status IN ?", id, activeShipperStatuses).
			Count(&open).Error; err != nil {
			return nil, err
		}
		if open > 0 {
			return nil, apperr.Validationf("shipper %s still has open deliveries and cannot change warehouse", shipper.FullName)
		}
	}

	shipper.FullName = input.FullName
	shipper.Phone = input.Phone
	shipper.Email = input.Email
	shipper.WarehouseID = input.WarehouseID
	if err := r.db.Save(shipper).Error; err != nil {
		return nil, err
	}
	return shipper, nil
}

func (r *ShipperRepository) Get(id types.SnowflakeID) (*models.Shipper, error) {
	var shipper models.Shipper
	if err := r.db.First(&shipper, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFoundf("shipper %d", id)
		}
		return nil, err
	}
	return &shipper, nil
}

// ShipperDetail pairs a shipper with their current open deliveries.
type ShipperDetail struct {
	models.Shipper
	ActiveDeliveries []models.Delivery `json:"active_deliveries"`
	ActiveCount      int               `json:"active_count"`
}

func (r *ShipperRepository) GetDetail(id types.SnowflakeID) (*ShipperDetail, error) {
	shipper, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	var deliveries []models.Delivery
	if err := r.db.Where("assigned_shipper_id = ? AND status IN ?", id, activeShipperStatuses).
		Order("assigned_at ASC").Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return &ShipperDetail{
		Shipper:          *shipper,
		ActiveDeliveries: deliveries,
		ActiveCount:      len(deliveries),
	}, nil
}

// ListDetails is List with each shipper's open deliveries embedded, the
// shape the dispatch screen renders.
func (r *ShipperRepository) ListDetails(filter ShipperFilter, page, size int) ([]ShipperDetail, int64, error) {
	shippers, total, err := r.List(filter, page, size)
	if err != nil {
		return nil, 0, err
	}
	details := make([]ShipperDetail, 0, len(shippers))
	for _, shipper := range shippers {
		var deliveries []models.Delivery
		if err := r.db.Where("assigned_shipper_id = ? AND status IN ?", shipper.ID, activeShipperStatuses).
			Order("assigned_at ASC").Find(&deliveries).Error; err != nil {
			return nil, 0, err
		}
		details = append(details, ShipperDetail{
			Shipper:          shipper,
			ActiveDeliveries: deliveries,
			ActiveCount:      len(deliveries),
		})
	}
	return details, total, nil
}

type ShipperFilter struct {
	WarehouseID types.SnowflakeID
	Status      string
	Keyword     string
	ActiveOnly  bool
}

func (r *ShipperRepository) List(filter ShipperFilter, page, size int) ([]models.Shipper, int64, error) {
	q := r.db.Model(&models.Shipper{})
	if filter.WarehouseID != 0 {
		q = q.Where("warehouse_id = ?", filter.WarehouseID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.Keyword != "" {
		like := "%" + strings.ToLower(filter.Keyword) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR phone LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var shippers []models.Shipper
	err := q.Order("full_name ASC").Offset(page * size).Limit(size).Find(&shippers).Error
	if err != nil {
		return nil, 0, err
	}
	return shippers, total, nil
}

// SetStatus is the shipper going ONLINE or OFFLINE. SHIPPING is only ever
// set by the delivery workflow, and a shipper mid-trip cannot flip status
// by hand.
func (r *ShipperRepository) SetStatus(id types.SnowflakeID, status string) (*models.Shipper, error) {
	if !slices.Contains([]string{models.ShipperOnline, models.ShipperOffline}, status) {
		return nil, apperr.Validationf("shipper status must be ONLINE or OFFLINE")
	}
	shipper, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if !shipper.IsActive {
		return nil, apperr.Validationf("shipper %s is locked", shipper.FullName)
	}
	if shipper.Status == models.ShipperShipping {
		return nil, apperr.InvalidTransitionf("shipper %s is mid-delivery", shipper.FullName)
	}
	if err := r.db.Model(shipper).Update("status", status).Error; err != nil {
		return nil, err
	}
	shipper.Status = status
	return shipper, nil
}

// SetLock toggles the account. Locking requires the shipper to have no open
// deliveries; a locked shipper is forced OFFLINE and skipped by assignment.
func (r *ShipperRepository) SetLock(id types.SnowflakeID, locked bool) (*models.Shipper, error) {
	shipper, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if locked {
		var open int64
		if err := r.db.Model(&models.Delivery{}).
			Where("assigned_shipper_id = ? AND status IN ?", id, activeShipperStatuses).
			Count(&open).Error; err != nil {
			return nil, err
		}
		if open > 0 {
			return nil, apperr.Validationf("shipper %s still has open deliveries", shipper.FullName)
		}
		if err := r.db.Model(shipper).Updates(map[string]interface{}{
			"is_active": false,
			"status":    models.ShipperOffline,
		}).Error; err != nil {
			return nil, err
		}
		shipper.IsActive = false
		shipper.Status = models.ShipperOffline
		return shipper, nil
	}
	if err := r.db.Model(shipper).Update("is_active", true).Error; err != nil {
		return nil, err
	}
	shipper.IsActive = true
	return shipper, nil
}
