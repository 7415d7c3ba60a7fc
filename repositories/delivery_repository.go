package repositories

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"inventory-app/apperr"
	"inventory-app/models"
	"inventory-app/types"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

// maxActiveDeliveries caps how many open deliveries one shipper carries at
// once. ASSIGNED, SHIPPING and FAILED all count as open.
const maxActiveDeliveries = 10

// deliveryTransitions maps each status to the statuses it may move to.
// DELIVERED and CANCELLED are terminal.
var deliveryTransitions = map[string][]string{
	models.DeliveryPending:  {models.DeliveryAssigned, models.DeliveryCancelled},
	models.DeliveryAssigned: {models.DeliveryShipping, models.DeliveryCancelled},
	models.DeliveryShipping: {models.DeliveryDelivered, models.DeliveryFailed},
	models.DeliveryFailed:   {models.DeliveryAssigned, models.DeliveryCancelled},
}

// reassignableStatuses are the delivery statuses in which a shipper can be
// (re)assigned.
var reassignableStatuses = []string{
	models.DeliveryPending,
	models.DeliveryAssigned,
	models.DeliveryFailed,
}

var activeShipperStatuses = []string{
	models.DeliveryAssigned,
	models.DeliveryShipping,
	models.DeliveryFailed,
}

type DeliveryRepository struct {
	db     *gorm.DB
	ledger *LedgerRepository
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db, ledger: NewLedgerRepository(db)}
}

// deliveryLocks serializes status changes and assignments per delivery, so a
// ledger side effect and its status update cannot interleave with a
// concurrent transition on the same delivery.
var deliveryLocks sync.Map

func lockDelivery(id types.SnowflakeID) func() {
	mu, _ := deliveryLocks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

type DeliveryItemInput struct {
	VariantID   int64           `json:"variant_id" validate:"required"`
	VariantName string          `json:"variant_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
}

type CreateDeliveryInput struct {
	OrderNumber     string              `json:"order_number" validate:"required"`
	WarehouseID     types.SnowflakeID   `json:"warehouse_id" validate:"required"`
	ShippingName    string              `json:"shipping_name" validate:"required"`
	ShippingAddress string              `json:"shipping_address" validate:"required"`
	ShippingPhone   string              `json:"shipping_phone"`
	CodAmount       decimal.Decimal     `json:"cod_amount"`
	Items           []DeliveryItemInput `json:"items" validate:"required,min=1,dive"`
}

// Create registers a delivery in PENDING status. The order's stock must
// already be reserved; creation itself does not touch the ledger.
func (r *DeliveryRepository) Create(input CreateDeliveryInput) (*models.Delivery, error) {
	for _, it := range input.Items {
		if it.Quantity <= 0 {
			return nil, apperr.Validationf("variant %d: quantity must be positive", it.VariantID)
		}
	}
	if input.CodAmount.IsNegative() {
		return nil, apperr.Validationf("cod amount cannot be negative")
	}

	var delivery *models.Delivery
	err := withConflictRetry(func() error {
		return r.db.Transaction(func(tx *gorm.DB) error {
			if err := mustExist(tx, &models.Warehouse{}, input.WarehouseID, "warehouse"); err != nil {
				return err
			}
			var dup int64
			if err := tx.Model(&models.Delivery{}).
				Where("order_number = ? AND status NOT IN ?", input.OrderNumber,
					[]string{models.DeliveryCancelled, models.DeliveryFailed}).
				Count(&dup).Error; err != nil {
				return err
			}
			if dup > 0 {
				return apperr.Conflictf("order %s already has an open delivery", input.OrderNumber)
			}

			number, err := generateDeliveryNumber(tx)
			if err != nil {
				return err
			}
			delivery = &models.Delivery{
				DeliveryNumber:  number,
				OrderNumber:     input.OrderNumber,
				WarehouseID:     input.WarehouseID,
				ShippingName:    input.ShippingName,
				ShippingAddress: input.ShippingAddress,
				ShippingPhone:   input.ShippingPhone,
				CodAmount:       input.CodAmount,
				Status:          models.DeliveryPending,
			}
			if err := tx.Create(delivery).Error; err != nil {
				return err
			}
			items := make([]models.DeliveryItem, 0, len(input.Items))
			for _, it := range input.Items {
				items = append(items, models.DeliveryItem{
					DeliveryID:  delivery.ID,
					VariantID:   it.VariantID,
					VariantName: it.VariantName,
					UnitPrice:   it.UnitPrice,
					Quantity:    it.Quantity,
				})
			}
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
			delivery.Items = items
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return delivery, nil
}

func (r *DeliveryRepository) Get(id types.SnowflakeID) (*models.Delivery, error) {
	var delivery models.Delivery
	err := r.db.Preload("Items").First(&delivery, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFoundf("delivery %d", id)
		}
		return nil, err
	}
	return &delivery, nil
}

type DeliveryFilter struct {
	Status      string
	WarehouseID types.SnowflakeID
	ShipperID   types.SnowflakeID
	Keyword     string
}

func (r *DeliveryRepository) List(filter DeliveryFilter, page, size int) ([]models.Delivery, int64, error) {
	q := r.db.Model(&models.Delivery{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.WarehouseID != 0 {
		q = q.Where("warehouse_id = ?", filter.WarehouseID)
	}
	if filter.ShipperID != 0 {
		q = q.Where("assigned_shipper_id = ?", filter.ShipperID)
	}
	if filter.Keyword != "" {
		like := "%" + strings.ToLower(filter.Keyword) + "%"
		q = q.Where("LOWER(delivery_number) LIKE ? OR LOWER(order_number) LIKE ? OR LOWER(shipping_phone) LIKE ?",
			like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var deliveries []models.Delivery
	err := q.Order("created_at DESC").Offset(page * size).Limit(size).
		Preload("Items").Find(&deliveries).Error
	if err != nil {
		return nil, 0, err
	}
	return deliveries, total, nil
}

// AssignResult reports the outcome for one delivery in a batch assignment.
type AssignResult struct {
	DeliveryID types.SnowflakeID `json:"delivery_id"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
}

// Assign hands a batch of deliveries to one shipper. Shipper-level
// preconditions fail the whole call; per-delivery failures only mark that
// entry in the result, the rest of the batch still goes through.
func (r *DeliveryRepository) Assign(shipperID types.SnowflakeID, deliveryIDs []types.SnowflakeID, staffID int64) ([]AssignResult, error) {
	if len(deliveryIDs) == 0 {
		return nil, apperr.Validationf("no deliveries to assign")
	}

	var shipper models.Shipper
	if err := r.db.First(&shipper, "id = ?", shipperID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFoundf("shipper %d", shipperID)
		}
		return nil, err
	}
	if !shipper.IsActive {
		return nil, apperr.Validationf("shipper %s is locked", shipper.FullName)
	}
	if shipper.Status != models.ShipperOnline {
		return nil, apperr.Validationf("shipper %s is %s, must be ONLINE to take deliveries",
			shipper.FullName, shipper.Status)
	}
	active, err := r.countActiveDeliveries(shipperID)
	if err != nil {
		return nil, err
	}
	// A reassignment of a delivery this shipper already holds does not add to
	// their load, so it must not count against the cap twice.
	var alreadyHeld int64
	if err := r.db.Model(&models.Delivery{}).
		Where("id IN ? AND assigned_shipper_id = ? AND status IN ?",
			deliveryIDs, shipperID, activeShipperStatuses).
		Count(&alreadyHeld).Error; err != nil {
		return nil, err
	}
	if active+int64(len(deliveryIDs))-alreadyHeld > maxActiveDeliveries {
		return nil, apperr.Validationf("shipper %s has %d active deliveries, assigning %d would exceed the limit of %d",
			shipper.FullName, active, len(deliveryIDs), maxActiveDeliveries)
	}

	results := make([]AssignResult, 0, len(deliveryIDs))
	for _, id := range deliveryIDs {
		err := r.assignOne(&shipper, id)
		res := AssignResult{DeliveryID: id, Success: err == nil}
		if err != nil {
			res.Error = err.Error()
		}
		results = append(results, res)
	}
	return results, nil
}

func (r *DeliveryRepository) assignOne(shipper *models.Shipper, id types.SnowflakeID) error {
	unlock := lockDelivery(id)
	defer unlock()

	return r.db.Transaction(func(tx *gorm.DB) error {
		var delivery models.Delivery
		if err := forUpdate(tx).First(&delivery, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFoundf("delivery %d", id)
			}
			return err
		}
		if !slices.Contains(reassignableStatuses, delivery.Status) {
			return apperr.InvalidTransitionf("delivery %s is %s and cannot be assigned",
				delivery.DeliveryNumber, delivery.Status)
		}
		if delivery.WarehouseID != shipper.WarehouseID {
			return apperr.Validationf("delivery %s belongs to another warehouse", delivery.DeliveryNumber)
		}
		now := time.Now().UTC()
		return tx.Model(&models.Delivery{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":              models.DeliveryAssigned,
			"assigned_shipper_id": shipper.ID,
			"assigned_at":         now,
			"failed_reason":       "",
		}).Error
	})
}

type DeliveryStatusInput struct {
	Status       string `json:"status" validate:"required"`
	FailedReason string `json:"failed_reason"`
	Note         string `json:"note"`
}

// ChangeStatus moves a delivery through its lifecycle. Entering SHIPPING
// ships the order's reserved stock, cancelling before shipment releases the
// reservation, and cancelling after a failed attempt brings the stock back.
func (r *DeliveryRepository) ChangeStatus(id types.SnowflakeID, input DeliveryStatusInput, staffID int64) (*models.Delivery, error) {
	if _, known := deliveryTransitions[input.Status]; !known &&
		input.Status != models.DeliveryDelivered && input.Status != models.DeliveryCancelled {
		return nil, apperr.Validationf("unknown delivery status %q", input.Status)
	}
	if input.Status == models.DeliveryFailed && input.FailedReason == "" {
		return nil, apperr.Validationf("failed_reason is required when marking a delivery FAILED")
	}

	unlock := lockDelivery(id)
	defer unlock()

	var delivery models.Delivery
	if err := r.db.First(&delivery, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFoundf("delivery %d", id)
		}
		return nil, err
	}
	if !slices.Contains(deliveryTransitions[delivery.Status], input.Status) {
		return nil, apperr.InvalidTransitionf("delivery %s cannot move from %s to %s",
			delivery.DeliveryNumber, delivery.Status, input.Status)
	}
	fromStatus := delivery.Status

	// Ledger effects commit in the same DB transaction as the status change:
	// a stock failure leaves the delivery in its current status, and a status
	// failure rolls the stock movement back.
	var keys []invKey
	if input.Status == models.DeliveryShipping || input.Status == models.DeliveryCancelled {
		var kerr error
		keys, kerr = r.ledger.inventoriesForOrder(delivery.OrderNumber)
		if kerr != nil {
			return nil, kerr
		}
	}

	err := withConflictRetry(func() error {
		unlockKeys := lockKeys(keys)
		defer unlockKeys()

		return r.db.Transaction(func(tx *gorm.DB) error {
			updates := map[string]interface{}{"status": input.Status}
			switch input.Status {
			case models.DeliveryShipping:
				if err := r.shipOrderStock(tx, &delivery, staffID); err != nil {
					return err
				}
				if delivery.AssignedShipper != nil {
					if err := tx.Model(&models.Shipper{}).Where("id = ?", *delivery.AssignedShipper).
						Update("status", models.ShipperShipping).Error; err != nil {
						return err
					}
				}
			case models.DeliveryCancelled:
				switch fromStatus {
				case models.DeliveryPending, models.DeliveryAssigned:
					if err := r.ledger.resolveOrderReservationTx(tx, delivery.OrderNumber,
						fmt.Sprintf("delivery %s cancelled", delivery.DeliveryNumber), staffID, false); err != nil {
						return err
					}
				case models.DeliveryFailed:
					if err := r.ledger.returnOrderTx(tx, delivery.OrderNumber,
						fmt.Sprintf("delivery %s returned after failed attempt", delivery.DeliveryNumber), staffID); err != nil {
						return err
					}
				}
			case models.DeliveryDelivered:
				updates["delivered_at"] = time.Now().UTC()
				if err := r.settleShipper(tx, delivery, id); err != nil {
					return err
				}
			case models.DeliveryFailed:
				updates["failed_reason"] = input.FailedReason
				if err := r.settleShipper(tx, delivery, id); err != nil {
					return err
				}
			}
			return tx.Model(&models.Delivery{}).Where("id = ?", id).Updates(updates).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return r.Get(id)
}

// shipOrderStock converts the order's outstanding reservation into shipped
// stock. On a reshipment after a failed attempt the reservation was already
// consumed and the goods never came back, so the ledger is left alone.
func (r *DeliveryRepository) shipOrderStock(tx *gorm.DB, delivery *models.Delivery, staffID int64) error {
	outstanding, err := outstandingReserves(tx, delivery.OrderNumber)
	if err != nil {
		return err
	}
	if len(outstanding) == 0 {
		exported, err := outstandingExports(tx, delivery.OrderNumber)
		if err != nil {
			return err
		}
		if len(exported) == 0 {
			return apperr.NotFoundf("no outstanding reservation for order %s", delivery.OrderNumber)
		}
		return nil
	}
	return r.ledger.resolveOrderReservationTx(tx, delivery.OrderNumber,
		fmt.Sprintf("shipped via delivery %s", delivery.DeliveryNumber), staffID, true)
}

// settleShipper puts the shipper back ONLINE when the trip that just ended
// was their only one in flight.
func (r *DeliveryRepository) settleShipper(tx *gorm.DB, delivery models.Delivery, excludeID types.SnowflakeID) error {
	if delivery.AssignedShipper == nil {
		return nil
	}
	var stillShipping int64
	if err := tx.Model(&models.Delivery{}).
		Where("assigned_shipper_id = ? AND status = ? AND id <> ?",
			*delivery.AssignedShipper, models.DeliveryShipping, excludeID).
		Count(&stillShipping).Error; err != nil {
		return err
	}
	if stillShipping > 0 {
		return nil
	}
	return tx.Model(&models.Shipper{}).
		Where("id = ? AND status = ?", *delivery.AssignedShipper, models.ShipperShipping).
		Update("status", models.ShipperOnline).Error
}

func (r *DeliveryRepository) countActiveDeliveries(shipperID types.SnowflakeID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Delivery{}).
		Where("assigned_shipper_id = ? AND status IN ?", shipperID, activeShipperStatuses).
		Count(&count).Error
	return count, err
}

// AutoAssignPending sweeps PENDING deliveries and hands each to the least
// loaded ONLINE shipper of its warehouse. Warehouses with no eligible
// shipper are skipped until the next sweep.
func (r *DeliveryRepository) AutoAssignPending() (int, error) {
	var pending []models.Delivery
	if err := r.db.Where("status = ?", models.DeliveryPending).
		Order("created_at ASC").Find(&pending).Error; err != nil {
		return 0, err
	}

	assigned := 0
	for _, delivery := range pending {
		shipper, err := r.leastLoadedShipper(delivery.WarehouseID)
		if err != nil {
			return assigned, err
		}
		if shipper == nil {
			continue
		}
		if err := r.assignOne(shipper, delivery.ID); err != nil {
			logrus.WithFields(logrus.Fields{
				"delivery": delivery.DeliveryNumber,
				"shipper":  shipper.ID,
			}).WithError(err).Warn("auto-assign skipped delivery")
			continue
		}
		assigned++
	}
	return assigned, nil
}

func (r *DeliveryRepository) leastLoadedShipper(warehouseID types.SnowflakeID) (*models.Shipper, error) {
	var shippers []models.Shipper
	err := r.db.Where("warehouse_id = ? AND status = ? AND is_active = ?",
		warehouseID, models.ShipperOnline, true).Find(&shippers).Error
	if err != nil {
		return nil, err
	}

	var best *models.Shipper
	bestLoad := int64(maxActiveDeliveries)
	for i := range shippers {
		load, err := r.countActiveDeliveries(shippers[i].ID)
		if err != nil {
			return nil, err
		}
		if load < bestLoad {
			best = &shippers[i]
			bestLoad = load
		}
	}
	return best, nil
}

func generateDeliveryNumber(tx *gorm.DB) (string, error) {
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var countToday int64
	if err := tx.Model(&models.Delivery{}).
		Where("created_at >= ? AND created_at < ?", startOfDay, startOfDay.AddDate(0, 0, 1)).
		Count(&countToday).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("DL-%s-%d", now.Format("02012006"), countToday+1), nil
}
