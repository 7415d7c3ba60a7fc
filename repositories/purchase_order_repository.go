package repositories

import (
	"fmt"
	"strings"
	"time"

	"inventory-app/apperr"
	"inventory-app/models"
	"inventory-app/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseOrderRepository struct {
	db     *gorm.DB
	ledger *LedgerRepository
}

func NewPurchaseOrderRepository(db *gorm.DB) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{db: db, ledger: NewLedgerRepository(db)}
}

type PurchaseOrderItemInput struct {
	VariantID   int64           `json:"variant_id" validate:"required"`
	Quantity    int             `json:"quantity" validate:"required,gt=0"`
	ImportPrice decimal.Decimal `json:"import_price"`
}

type PurchaseOrderInput struct {
	SupplierID  types.SnowflakeID        `json:"supplier_id" validate:"required"`
	WarehouseID types.SnowflakeID        `json:"warehouse_id" validate:"required"`
	Items       []PurchaseOrderItemInput `json:"items" validate:"required,min=1,dive"`
}

func (input PurchaseOrderInput) validateItems() error {
	if len(input.Items) == 0 {
		return apperr.Validationf("purchase order has no items")
	}
	for _, it := range input.Items {
		if it.Quantity <= 0 {
			return apperr.Validationf("variant %d: quantity must be positive", it.VariantID)
		}
		if !it.ImportPrice.IsPositive() {
			return apperr.Validationf("variant %d: import price must be positive", it.VariantID)
		}
	}
	return nil
}

func buildItems(orderID types.SnowflakeID, inputs []PurchaseOrderItemInput) ([]models.PurchaseOrderItem, decimal.Decimal) {
	items := make([]models.PurchaseOrderItem, 0, len(inputs))
	total := decimal.Zero
	for _, it := range inputs {
		subtotal := it.ImportPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		items = append(items, models.PurchaseOrderItem{
			PurchaseOrderID: orderID,
			VariantID:       it.VariantID,
			Quantity:        it.Quantity,
			ImportPrice:     it.ImportPrice,
			Subtotal:        subtotal,
		})
		total = total.Add(subtotal)
	}
	return items, total
}

func (r *PurchaseOrderRepository) Create(input PurchaseOrderInput, staffID int64) (*models.PurchaseOrder, error) {
	if err := input.validateItems(); err != nil {
		return nil, err
	}

	var order *models.PurchaseOrder
	err := withConflictRetry(func() error {
		return r.db.Transaction(func(tx *gorm.DB) error {
			if err := mustExist(tx, &models.Supplier{}, input.SupplierID, "supplier"); err != nil {
				return err
			}
			if err := mustExist(tx, &models.Warehouse{}, input.WarehouseID, "warehouse"); err != nil {
				return err
			}

			code, err := generatePurchaseOrderCode(tx)
			if err != nil {
				return err
			}
			order = &models.PurchaseOrder{
				Code:        code,
				SupplierID:  input.SupplierID,
				WarehouseID: input.WarehouseID,
				Status:      models.StatusPending,
				CreatedBy:   staffID,
				UpdatedBy:   staffID,
			}
			if err := tx.Create(order).Error; err != nil {
				return err
			}
			items, total := buildItems(order.ID, input.Items)
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
			order.Items = items
			order.TotalAmount = total
			return tx.Model(order).Update("total_amount", total).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Update replaces the order's supplier, warehouse and items. Only PENDING
// orders are editable; once resolved the order is part of history.
func (r *PurchaseOrderRepository) Update(id types.SnowflakeID, input PurchaseOrderInput, staffID int64) (*models.PurchaseOrder, error) {
	if err := input.validateItems(); err != nil {
		return nil, err
	}

	var order models.PurchaseOrder
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&order, "id = ?", id).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return apperr.NotFoundf("purchase order %d", id)
			}
			return err
		}
		if order.Status != models.StatusPending {
			return apperr.InvalidTransitionf("purchase order %s is %s and can no longer be edited", order.Code, order.Status)
		}
		if err := mustExist(tx, &models.Supplier{}, input.SupplierID, "supplier"); err != nil {
			return err
		}
		if err := mustExist(tx, &models.Warehouse{}, input.WarehouseID, "warehouse"); err != nil {
			return err
		}

		if err := tx.Where("purchase_order_id = ?", order.ID).
			Delete(&models.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		items, total := buildItems(order.ID, input.Items)
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		order.SupplierID = input.SupplierID
		order.WarehouseID = input.WarehouseID
		order.TotalAmount = total
		order.UpdatedBy = staffID
		order.Items = items
		return tx.Model(&models.PurchaseOrder{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
			"supplier_id":  input.SupplierID,
			"warehouse_id": input.WarehouseID,
			"total_amount": total,
			"updated_by":   staffID,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ChangeStatus resolves a PENDING order. Completion emits one COMPLETED
// IMPORT transaction per item in the same DB transaction, so the stock
// arrival and the order resolution commit together.
func (r *PurchaseOrderRepository) ChangeStatus(id types.SnowflakeID, newStatus string, staffID int64) (*models.PurchaseOrder, error) {
	if newStatus != models.StatusCompleted && newStatus != models.StatusCancelled {
		return nil, apperr.Validationf("status must be COMPLETED or CANCELLED")
	}

	var peek models.PurchaseOrder
	if err := r.db.Preload("Items").First(&peek, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFoundf("purchase order %d", id)
		}
		return nil, err
	}

	keys := make([]invKey, 0, len(peek.Items))
	for _, it := range peek.Items {
		keys = append(keys, invKey{peek.WarehouseID, it.VariantID})
	}

	var order models.PurchaseOrder
	err := withConflictRetry(func() error {
		unlock := lockKeys(keys)
		defer unlock()

		return r.db.Transaction(func(tx *gorm.DB) error {
			if err := forUpdate(tx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
				return err
			}
			if order.Status != models.StatusPending {
				return apperr.InvalidTransitionf("purchase order %s is already %s", order.Code, order.Status)
			}

			if newStatus == models.StatusCompleted {
				for _, it := range order.Items {
					inv, err := findOrCreateInventory(tx, order.WarehouseID, it.VariantID)
					if err != nil {
						return err
					}
					if err := r.ledger.createCompleted(tx, inv, models.TransactionImport, it.Quantity,
						decimal.NullDecimal{Decimal: it.ImportPrice, Valid: true},
						"", models.ReferencePurchaseOrder, order.Code, staffID); err != nil {
						return err
					}
				}
			}

			order.Status = newStatus
			order.UpdatedBy = staffID
			return tx.Model(&models.PurchaseOrder{}).Where("id = ?", order.ID).Updates(map[string]interface{}{
				"status":     newStatus,
				"updated_by": staffID,
			}).Error
		})
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *PurchaseOrderRepository) Get(id types.SnowflakeID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := r.db.Preload("Items").Preload("Supplier").Preload("Warehouse").
		First(&order, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFoundf("purchase order %d", id)
		}
		return nil, err
	}
	return &order, nil
}

type PurchaseOrderFilter struct {
	Status      string
	Keyword     string
	WarehouseID types.SnowflakeID
	Start       *time.Time
	End         *time.Time
}

func (r *PurchaseOrderRepository) List(filter PurchaseOrderFilter, page, size int) ([]models.PurchaseOrder, int64, error) {
	q := r.db.Model(&models.PurchaseOrder{})

	if filter.Status != "" {
		q = q.Where("purchase_orders.status = ?", filter.Status)
	}
	if filter.WarehouseID != 0 {
		q = q.Where("purchase_orders.warehouse_id = ?", filter.WarehouseID)
	}
	if filter.Start != nil {
		q = q.Where("purchase_orders.created_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		q = q.Where("purchase_orders.created_at < ?", *filter.End)
	}
	if filter.Keyword != "" {
		like := "%" + strings.ToLower(filter.Keyword) + "%"
		q = q.Joins("JOIN suppliers ON suppliers.id = purchase_orders.supplier_id").
			Where("LOWER(purchase_orders.code) LIKE ? OR LOWER(suppliers.code) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.PurchaseOrder
	err := q.Order("purchase_orders.created_at DESC").
		Offset(page * size).Limit(size).
		Preload("Items").Preload("Supplier").Preload("Warehouse").
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func generatePurchaseOrderCode(tx *gorm.DB) (string, error) {
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var countToday int64
	if err := tx.Model(&models.PurchaseOrder{}).
		Where("created_at >= ? AND created_at < ?", startOfDay, startOfDay.AddDate(0, 0, 1)).
		Count(&countToday).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("PO-%s-%d", now.Format("02012006"), countToday+1), nil
}

func mustExist(tx *gorm.DB, model interface{}, id types.SnowflakeID, name string) error {
	var count int64
	if err := tx.Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NotFoundf("%s %d", name, id)
	}
	return nil
}
