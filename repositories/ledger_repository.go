package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"inventory-app/apperr"
	"inventory-app/models"
	"inventory-app/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository is the single writer of inventory counters. Stock only
// moves when a transaction transitions into COMPLETED, exactly once.
type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// ---------------------------------------------------------------------------
// per-key serialization

// Every read-check-write on an inventory record is serialized per
// (warehouse, variant) key: a process-level mutex plus a row lock inside the
// DB transaction. Multi-key flows lock keys in sorted order.
var recordLocks sync.Map

type invKey struct {
	WarehouseID types.SnowflakeID
	VariantID   int64
}

func (k invKey) String() string {
	return fmt.Sprintf("%d:%d", k.WarehouseID, k.VariantID)
}

func lockKeys(keys []invKey) func() {
	uniq := map[string]invKey{}
	for _, k := range keys {
		uniq[k.String()] = k
	}
	sorted := make([]invKey, 0, len(uniq))
	for _, k := range uniq {
		sorted = append(sorted, k)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	locked := make([]*sync.Mutex, 0, len(sorted))
	for _, k := range sorted {
		mu, _ := recordLocks.LoadOrStore(k.String(), &sync.Mutex{})
		m := mu.(*sync.Mutex)
		m.Lock()
		locked = append(locked, m)
	}
	return func() {
		for i := len(locked) - 1; i >= 0; i-- {
			locked[i].Unlock()
		}
	}
}

// forUpdate adds a row lock where the dialect supports one. The sqlite test
// database has no row locks; the key mutex serializes writers there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func isSerializationFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "40001") ||
		strings.Contains(msg, "database is locked")
}

// isCodeCollision matches unique-index violations on generated daily codes.
// Two writers on different inventory keys hold different mutexes, read the
// same daily count and produce the same code; after the winner commits, a
// retry recomputes the sequence and gets the next number.
func isCodeCollision(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique key constraint")
}

// withConflictRetry retries transient serialization failures and generated
// code collisions a bounded number of times before surfacing them as a
// conflict. Business failures (insufficient stock, invalid transitions) are
// never retried.
func withConflictRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = fn()
		if !isSerializationFailure(err) && !isCodeCollision(err) {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 10 * time.Millisecond)
	}
	return apperr.Conflictf("concurrent stock mutation: %v", err)
}

// ---------------------------------------------------------------------------
// transaction creation

type CreateTransactionInput struct {
	WarehouseID     types.SnowflakeID
	VariantID       int64
	TransactionType string
	Quantity        int
	PricePerItem    decimal.NullDecimal
	Note            string
	ReferenceType   string
	ReferenceCode   string
	CreatedBy       int64
}

var transactionPrefixes = map[string]string{
	models.TransactionImport:  "IMP",
	models.TransactionExport:  "EXP",
	models.TransactionAdjust:  "ADJ",
	models.TransactionReserve: "RES",
	models.TransactionRelease: "REL",
}

// CreateTransaction records a manual staff movement in PENDING status.
// EXPORT and RESERVE are validated against current availability up front;
// the check is repeated at completion because stock may move in between.
func (r *LedgerRepository) CreateTransaction(input CreateTransactionInput) (*models.InventoryTransaction, error) {
	if _, ok := transactionPrefixes[input.TransactionType]; !ok {
		return nil, apperr.Validationf("unknown transaction type %q", input.TransactionType)
	}
	if input.TransactionType == models.TransactionAdjust {
		if input.Quantity == 0 {
			return nil, apperr.Validationf("adjustment quantity must not be zero")
		}
	} else if input.Quantity <= 0 {
		return nil, apperr.Validationf("quantity must be positive")
	}
	if input.ReferenceType != "" && input.ReferenceCode == "" {
		return nil, apperr.Validationf("reference code is required when reference type is set")
	}

	var created *models.InventoryTransaction
	err := withConflictRetry(func() error {
		unlock := lockKeys([]invKey{{input.WarehouseID, input.VariantID}})
		defer unlock()

		return r.db.Transaction(func(tx *gorm.DB) error {
			inv, err := findOrCreateInventory(tx, input.WarehouseID, input.VariantID)
			if err != nil {
				return err
			}

			switch input.TransactionType {
			case models.TransactionExport, models.TransactionReserve:
				if inv.Available() < input.Quantity {
					return apperr.InsufficientStockf(
						"variant %d in warehouse %d has %d available, requested %d",
						input.VariantID, input.WarehouseID, inv.Available(), input.Quantity)
				}
			}

			code, err := generateTransactionCode(tx, input.TransactionType)
			if err != nil {
				return err
			}

			txn := &models.InventoryTransaction{
				Code:            code,
				InventoryID:     inv.ID,
				TransactionType: input.TransactionType,
				Quantity:        input.Quantity,
				PricePerItem:    input.PricePerItem,
				Note:            input.Note,
				ReferenceType:   input.ReferenceType,
				ReferenceCode:   input.ReferenceCode,
				Status:          models.StatusPending,
				CreatedBy:       input.CreatedBy,
				UpdatedBy:       input.CreatedBy,
			}
			if err := tx.Create(txn).Error; err != nil {
				return err
			}
			txn.Inventory = inv
			created = txn
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateStatus moves a PENDING transaction to COMPLETED or CANCELLED.
// The counter effect is applied atomically at the COMPLETED transition and
// never again; retrying on a resolved transaction is an explicit error.
func (r *LedgerRepository) UpdateStatus(id types.SnowflakeID, newStatus, note string, staffID int64) (*models.InventoryTransaction, error) {
	if newStatus != models.StatusCompleted && newStatus != models.StatusCancelled {
		return nil, apperr.Validationf("status must be COMPLETED or CANCELLED")
	}

	// Resolve the key outside the transaction so the mutex is taken before
	// any row is touched.
	var peek models.InventoryTransaction
	if err := r.db.Preload("Inventory").First(&peek, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFoundf("transaction %d", id)
		}
		return nil, err
	}

	var updated *models.InventoryTransaction
	err := withConflictRetry(func() error {
		unlock := lockKeys([]invKey{{peek.Inventory.WarehouseID, peek.Inventory.VariantID}})
		defer unlock()

		return r.db.Transaction(func(tx *gorm.DB) error {
			var txn models.InventoryTransaction
			if err := forUpdate(tx).First(&txn, "id = ?", id).Error; err != nil {
				return err
			}
			if txn.Status != models.StatusPending {
				return apperr.InvalidTransitionf("transaction %s is already %s", txn.Code, txn.Status)
			}

			if newStatus == models.StatusCompleted {
				inv, err := lockInventoryRow(tx, txn.InventoryID)
				if err != nil {
					return err
				}
				if err := applyCounterEffect(tx, inv, &txn); err != nil {
					return err
				}
			}

			updates := map[string]interface{}{
				"status":     newStatus,
				"updated_by": staffID,
			}
			if note != "" {
				updates["note"] = note
			}
			if err := tx.Model(&models.InventoryTransaction{}).Where("id = ?", txn.ID).
				Updates(updates).Error; err != nil {
				return err
			}

			txn.Status = newStatus
			txn.UpdatedBy = staffID
			if note != "" {
				txn.Note = note
			}
			updated = &txn
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// applyCounterEffect mutates the inventory counters for a completing
// transaction, enforcing quantity >= reserved >= 0.
func applyCounterEffect(tx *gorm.DB, inv *models.Inventory, txn *models.InventoryTransaction) error {
	switch txn.TransactionType {
	case models.TransactionImport:
		inv.Quantity += txn.Quantity
	case models.TransactionExport:
		if inv.Quantity-txn.Quantity < inv.ReservedQuantity {
			return apperr.InsufficientStockf("export of %d exceeds available stock %d", txn.Quantity, inv.Available())
		}
		inv.Quantity -= txn.Quantity
	case models.TransactionAdjust:
		newQty := inv.Quantity + txn.Quantity
		if newQty < 0 || newQty < inv.ReservedQuantity {
			return apperr.InsufficientStockf("adjustment of %d would drive stock below the reserved level", txn.Quantity)
		}
		inv.Quantity = newQty
	case models.TransactionReserve:
		if inv.Available() < txn.Quantity {
			return apperr.InsufficientStockf("reserve of %d exceeds available stock %d", txn.Quantity, inv.Available())
		}
		inv.ReservedQuantity += txn.Quantity
	case models.TransactionRelease:
		if inv.ReservedQuantity < txn.Quantity {
			return apperr.Validationf("release of %d exceeds reserved quantity %d", txn.Quantity, inv.ReservedQuantity)
		}
		inv.ReservedQuantity -= txn.Quantity
	default:
		return apperr.Validationf("unknown transaction type %q", txn.TransactionType)
	}

	return tx.Model(&models.Inventory{}).Where("id = ?", inv.ID).Updates(map[string]interface{}{
		"quantity":          inv.Quantity,
		"reserved_quantity": inv.ReservedQuantity,
	}).Error
}

func lockInventoryRow(tx *gorm.DB, id types.SnowflakeID) (*models.Inventory, error) {
	var inv models.Inventory
	if err := forUpdate(tx).First(&inv, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFoundf("inventory record %d", id)
		}
		return nil, err
	}
	return &inv, nil
}

// findOrCreateInventory creates the record lazily with zero counters on the
// first transaction against a (warehouse, variant) pair.
func findOrCreateInventory(tx *gorm.DB, warehouseID types.SnowflakeID, variantID int64) (*models.Inventory, error) {
	var exists int64
	if err := tx.Model(&models.Warehouse{}).Where("id = ?", warehouseID).Count(&exists).Error; err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, apperr.NotFoundf("warehouse %d", warehouseID)
	}

	inv := models.Inventory{WarehouseID: warehouseID, VariantID: variantID}
	if err := forUpdate(tx).
		Where("warehouse_id = ? AND variant_id = ?", warehouseID, variantID).
		FirstOrCreate(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func generateTransactionCode(tx *gorm.DB, transactionType string) (string, error) {
	prefix := transactionPrefixes[transactionType]
	now := time.Now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var countToday int64
	if err := tx.Model(&models.InventoryTransaction{}).
		Where("created_at >= ? AND created_at < ?", startOfDay, startOfDay.AddDate(0, 0, 1)).
		Count(&countToday).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%d", prefix, now.Format("02012006"), countToday+1), nil
}

// ---------------------------------------------------------------------------
// order flows (reservation contract)

type ReserveItem struct {
	WarehouseID types.SnowflakeID `json:"warehouse_id" validate:"required"`
	VariantID   int64             `json:"variant_id" validate:"required"`
	Quantity    int               `json:"quantity" validate:"required,gt=0"`
}

// ReserveOrder holds stock for an accepted order. The whole batch succeeds or
// nothing persists: one line item short on stock rolls every reservation back.
func (r *LedgerRepository) ReserveOrder(orderNumber string, items []ReserveItem, staffID int64) error {
	if orderNumber == "" {
		return apperr.Validationf("order number is required")
	}
	if len(items) == 0 {
		return apperr.Validationf("order has no items")
	}
	keys := make([]invKey, 0, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			return apperr.Validationf("variant %d: quantity must be positive", it.VariantID)
		}
		keys = append(keys, invKey{it.WarehouseID, it.VariantID})
	}

	return withConflictRetry(func() error {
		unlock := lockKeys(keys)
		defer unlock()

		return r.db.Transaction(func(tx *gorm.DB) error {
			for _, it := range items {
				inv, err := findOrCreateInventory(tx, it.WarehouseID, it.VariantID)
				if err != nil {
					return err
				}
				if inv.Available() < it.Quantity {
					return apperr.InsufficientStockf(
						"variant %d in warehouse %d has %d available, requested %d",
						it.VariantID, it.WarehouseID, inv.Available(), it.Quantity)
				}
				if err := r.createCompleted(tx, inv, models.TransactionReserve, it.Quantity,
					decimal.NullDecimal{}, "", models.ReferenceOrder, orderNumber, staffID); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// ReleaseOrder returns an order's outstanding reservation to the available
// pool. Used when the order is cancelled before fulfillment.
func (r *LedgerRepository) ReleaseOrder(orderNumber, reason string, staffID int64) error {
	return r.resolveOrderReservation(orderNumber, reason, staffID, false)
}

// FulfillOrder converts an order's outstanding reservation into shipped
// stock: a RELEASE plus EXPORT pair per record, all completed immediately.
func (r *LedgerRepository) FulfillOrder(orderNumber, note string, staffID int64) error {
	return r.resolveOrderReservation(orderNumber, note, staffID, true)
}

func (r *LedgerRepository) resolveOrderReservation(orderNumber, note string, staffID int64, export bool) error {
	if orderNumber == "" {
		return apperr.Validationf("order number is required")
	}

	recs, err := r.inventoriesForOrder(orderNumber)
	if err != nil {
		return err
	}

	return withConflictRetry(func() error {
		unlock := lockKeys(recs)
		defer unlock()

		return r.db.Transaction(func(tx *gorm.DB) error {
			return r.resolveOrderReservationTx(tx, orderNumber, note, staffID, export)
		})
	})
}

// resolveOrderReservationTx runs inside the caller's DB transaction so the
// ledger movement and the caller's own writes commit together. The caller
// must hold the order's record key locks.
func (r *LedgerRepository) resolveOrderReservationTx(tx *gorm.DB, orderNumber, note string, staffID int64, export bool) error {
	outstanding, err := outstandingReserves(tx, orderNumber)
	if err != nil {
		return err
	}
	if len(outstanding) == 0 {
		return apperr.NotFoundf("no outstanding reservation for order %s", orderNumber)
	}

	for invID, qty := range outstanding {
		inv, err := lockInventoryRow(tx, invID)
		if err != nil {
			return err
		}
		if err := r.createCompleted(tx, inv, models.TransactionRelease, qty,
			decimal.NullDecimal{}, note, models.ReferenceOrder, orderNumber, staffID); err != nil {
			return err
		}
		if export {
			if err := r.createCompleted(tx, inv, models.TransactionExport, qty,
				decimal.NullDecimal{}, note, models.ReferenceOrder, orderNumber, staffID); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReturnOrder compensates a cancelled delivery whose stock already left the
// warehouse: every completed EXPORT for the order gets a matching IMPORT.
func (r *LedgerRepository) ReturnOrder(orderNumber, note string, staffID int64) error {
	if orderNumber == "" {
		return apperr.Validationf("order number is required")
	}

	recs, err := r.inventoriesForOrder(orderNumber)
	if err != nil {
		return err
	}

	return withConflictRetry(func() error {
		unlock := lockKeys(recs)
		defer unlock()

		return r.db.Transaction(func(tx *gorm.DB) error {
			return r.returnOrderTx(tx, orderNumber, note, staffID)
		})
	})
}

// returnOrderTx is the in-transaction form of ReturnOrder. The caller must
// hold the order's record key locks.
func (r *LedgerRepository) returnOrderTx(tx *gorm.DB, orderNumber, note string, staffID int64) error {
	exported, err := outstandingExports(tx, orderNumber)
	if err != nil {
		return err
	}
	if len(exported) == 0 {
		return apperr.NotFoundf("no exported stock to return for order %s", orderNumber)
	}
	for invID, qty := range exported {
		inv, err := lockInventoryRow(tx, invID)
		if err != nil {
			return err
		}
		if err := r.createCompleted(tx, inv, models.TransactionImport, qty,
			decimal.NullDecimal{}, note, models.ReferenceOrder, orderNumber, staffID); err != nil {
			return err
		}
	}
	return nil
}

// createCompleted writes a transaction that is born resolved (auto-generated
// by a workflow) and applies its counter effect in the same DB transaction.
// Callers must hold the record's key lock.
func (r *LedgerRepository) createCompleted(tx *gorm.DB, inv *models.Inventory, transactionType string,
	quantity int, price decimal.NullDecimal, note, refType, refCode string, staffID int64) error {

	code, err := generateTransactionCode(tx, transactionType)
	if err != nil {
		return err
	}
	txn := &models.InventoryTransaction{
		Code:            code,
		InventoryID:     inv.ID,
		TransactionType: transactionType,
		Quantity:        quantity,
		PricePerItem:    price,
		Note:            note,
		ReferenceType:   refType,
		ReferenceCode:   refCode,
		Status:          models.StatusCompleted,
		CreatedBy:       staffID,
		UpdatedBy:       staffID,
	}
	if err := tx.Create(txn).Error; err != nil {
		return err
	}
	return applyCounterEffect(tx, inv, txn)
}

func (r *LedgerRepository) inventoriesForOrder(orderNumber string) ([]invKey, error) {
	var recs []models.Inventory
	err := r.db.
		Joins("JOIN inventory_transactions t ON t.inventory_id = inventories.id").
		Where("t.reference_type = ? AND t.reference_code = ?", models.ReferenceOrder, orderNumber).
		Distinct("inventories.*").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	keys := make([]invKey, 0, len(recs))
	for _, rec := range recs {
		keys = append(keys, invKey{rec.WarehouseID, rec.VariantID})
	}
	return keys, nil
}

// outstandingReserves: completed reserves minus completed releases per
// inventory record for the order.
func outstandingReserves(tx *gorm.DB, orderNumber string) (map[types.SnowflakeID]int, error) {
	return orderMovementBalance(tx, orderNumber, models.TransactionReserve, models.TransactionRelease)
}

// outstandingExports: completed exports minus completed return imports.
func outstandingExports(tx *gorm.DB, orderNumber string) (map[types.SnowflakeID]int, error) {
	return orderMovementBalance(tx, orderNumber, models.TransactionExport, models.TransactionImport)
}

func orderMovementBalance(tx *gorm.DB, orderNumber, plusType, minusType string) (map[types.SnowflakeID]int, error) {
	type row struct {
		InventoryID types.SnowflakeID
		Balance     int
	}
	var rows []row
	err := tx.Raw(`
		SELECT inventory_id,
		       SUM(CASE WHEN transaction_type = ? THEN quantity ELSE -quantity END) AS balance
		FROM inventory_transactions
		WHERE reference_type = ? AND reference_code = ? AND status = ?
		  AND transaction_type IN (?, ?)
		GROUP BY inventory_id`,
		plusType, models.ReferenceOrder, orderNumber, models.StatusCompleted, plusType, minusType).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := map[types.SnowflakeID]int{}
	for _, r := range rows {
		if r.Balance > 0 {
			out[r.InventoryID] = r.Balance
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// queries

type TransactionFilter struct {
	Status      string
	Type        string
	Keyword     string
	KeywordType string // code | warehouse_code | reference
	WarehouseID types.SnowflakeID
	VariantID   int64
	Start       *time.Time
	End         *time.Time
}

func (r *LedgerRepository) ListTransactions(filter TransactionFilter, page, size int) ([]models.InventoryTransaction, int64, error) {
	q := r.db.Model(&models.InventoryTransaction{}).
		Joins("JOIN inventories ON inventories.id = inventory_transactions.inventory_id")

	if filter.Status != "" {
		q = q.Where("inventory_transactions.status = ?", filter.Status)
	}
	if filter.Type != "" {
		q = q.Where("inventory_transactions.transaction_type = ?", filter.Type)
	}
	if filter.WarehouseID != 0 {
		q = q.Where("inventories.warehouse_id = ?", filter.WarehouseID)
	}
	if filter.VariantID != 0 {
		q = q.Where("inventories.variant_id = ?", filter.VariantID)
	}
	if filter.Start != nil {
		q = q.Where("inventory_transactions.created_at >= ?", *filter.Start)
	}
	if filter.End != nil {
		q = q.Where("inventory_transactions.created_at < ?", *filter.End)
	}
	if filter.Keyword != "" {
		like := "%" + strings.ToLower(filter.Keyword) + "%"
		switch filter.KeywordType {
		case "warehouse_code":
			q = q.Joins("JOIN warehouses ON warehouses.id = inventories.warehouse_id").
				Where("LOWER(warehouses.code) LIKE ?", like)
		case "reference":
			q = q.Where("LOWER(inventory_transactions.reference_code) LIKE ?", like)
		case "code":
			q = q.Where("LOWER(inventory_transactions.code) LIKE ?", like)
		default:
			q = q.Where("LOWER(inventory_transactions.code) LIKE ? OR LOWER(inventory_transactions.reference_code) LIKE ?", like, like)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txns []models.InventoryTransaction
	err := q.Order("inventory_transactions.created_at DESC").
		Offset(page * size).Limit(size).
		Preload("Inventory").Preload("Inventory.Warehouse").
		Find(&txns).Error
	if err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

func (r *LedgerRepository) GetTransaction(id types.SnowflakeID) (*models.InventoryTransaction, error) {
	var txn models.InventoryTransaction
	err := r.db.Preload("Inventory").Preload("Inventory.Warehouse").First(&txn, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFoundf("transaction %d", id)
		}
		return nil, err
	}
	return &txn, nil
}

type InventoryFilter struct {
	Keyword     string
	WarehouseID types.SnowflakeID
	VariantID   int64
}

func (r *LedgerRepository) ListInventories(filter InventoryFilter, page, size int) ([]models.Inventory, int64, error) {
	q := r.db.Model(&models.Inventory{}).
		Joins("JOIN warehouses ON warehouses.id = inventories.warehouse_id")

	if filter.WarehouseID != 0 {
		q = q.Where("inventories.warehouse_id = ?", filter.WarehouseID)
	}
	if filter.VariantID != 0 {
		q = q.Where("inventories.variant_id = ?", filter.VariantID)
	}
	if filter.Keyword != "" {
		like := "%" + strings.ToLower(filter.Keyword) + "%"
		q = q.Where("LOWER(warehouses.code) LIKE ? OR LOWER(warehouses.name) LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var recs []models.Inventory
	err := q.Order("inventories.created_at DESC").
		Offset(page * size).Limit(size).
		Preload("Warehouse").
		Find(&recs).Error
	if err != nil {
		return nil, 0, err
	}
	return recs, total, nil
}

func (r *LedgerRepository) GetInventory(warehouseID types.SnowflakeID, variantID int64) (*models.Inventory, error) {
	var inv models.Inventory
	err := r.db.Preload("Warehouse").
		Where("warehouse_id = ? AND variant_id = ?", warehouseID, variantID).
		First(&inv).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFoundf("inventory for variant %d in warehouse %d", variantID, warehouseID)
		}
		return nil, err
	}
	return &inv, nil
}
