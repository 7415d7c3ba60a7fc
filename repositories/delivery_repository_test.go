package repositories

import (
	"errors"
	"fmt"
	"testing"

	"inventory-app/apperr"
	"inventory-app/models"
	"inventory-app/types"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func createOnlineShipper(t *testing.T, db *gorm.DB, warehouse *models.Warehouse, name string) *models.Shipper {
	t.Helper()
	repo := NewShipperRepository(db)
	shipper, err := repo.Create(ShipperInput{FullName: name, WarehouseID: warehouse.ID})
	if err != nil {
		t.Fatalf("create shipper: %v", err)
	}
	shipper, err = repo.SetStatus(shipper.ID, models.ShipperOnline)
	if err != nil {
		t.Fatalf("set shipper online: %v", err)
	}
	return shipper
}

func createTestDelivery(t *testing.T, repo *DeliveryRepository, warehouse *models.Warehouse, orderNumber string) *models.Delivery {
	t.Helper()
	delivery, err := repo.Create(CreateDeliveryInput{
		OrderNumber:     orderNumber,
		WarehouseID:     warehouse.ID,
		ShippingName:    "Recipient",
		ShippingAddress: "1 Main St",
		CodAmount:       decimal.NewFromInt(150),
		Items: []DeliveryItemInput{
			{VariantID: 100, Quantity: 4, UnitPrice: decimal.NewFromInt(25)},
		},
	})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	return delivery
}

func TestDeliveryHappyPath(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeliveryRepository(db)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")
	shipper := createOnlineShipper(t, db, warehouse, "Alex Courier")

	seedStock(t, ledger, warehouse, 100, 10)
	if err := ledger.ReserveOrder("SO-1", []ReserveItem{
		{WarehouseID: warehouse.ID, VariantID: 100, Quantity: 4},
	}, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	delivery := createTestDelivery(t, repo, warehouse, "SO-1")
	if delivery.Status != models.DeliveryPending {
		t.Fatalf("status = %s, want PENDING", delivery.Status)
	}

	results, err := repo.Assign(shipper.ID, []types.SnowflakeID{delivery.ID}, 1)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !results[0].Success {
		t.Fatalf("assign failed: %s", results[0].Error)
	}

	delivery, err = repo.ChangeStatus(delivery.ID, DeliveryStatusInput{Status: models.DeliveryShipping}, 1)
	if err != nil {
		t.Fatalf("to shipping: %v", err)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 100), 6, 0)

	var loaded models.Shipper
	if err := db.First(&loaded, "id = ?", shipper.ID).Error; err != nil {
		t.Fatalf("load shipper: %v", err)
	}
	if loaded.Status != models.ShipperShipping {
		t.Fatalf("shipper status = %s, want SHIPPING", loaded.Status)
	}

	delivery, err = repo.ChangeStatus(delivery.ID, DeliveryStatusInput{Status: models.DeliveryDelivered}, 1)
	if err != nil {
		t.Fatalf("to delivered: %v", err)
	}
	if delivery.DeliveredAt == nil {
		t.Fatal("DeliveredAt not set")
	}
	if err := db.First(&loaded, "id = ?", shipper.ID).Error; err != nil {
		t.Fatalf("reload shipper: %v", err)
	}
	if loaded.Status != models.ShipperOnline {
		t.Fatalf("shipper status after delivery = %s, want ONLINE", loaded.Status)
	}
}

func TestDeliveryTransitionMap(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeliveryRepository(db)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")

	seedStock(t, ledger, warehouse, 100, 10)
	if err := ledger.ReserveOrder("SO-1", []ReserveItem{
		{WarehouseID: warehouse.ID, VariantID: 100, Quantity: 4},
	}, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	delivery := createTestDelivery(t, repo, warehouse, "SO-1")

	// PENDING cannot jump straight to SHIPPING or DELIVERED.
	for _, status := range []string{models.DeliveryShipping, models.DeliveryDelivered} {
		_, err := repo.ChangeStatus(delivery.ID, DeliveryStatusInput{Status: status}, 1)
		if !errors.Is(err, apperr.ErrInvalidTransition) {
			t.Fatalf("PENDING -> %s error = %v, want ErrInvalidTransition", status, err)
		}
	}

	// Terminal statuses accept nothing.
	if _, err := repo.ChangeStatus(delivery.ID, DeliveryStatusInput{Status: models.DeliveryCancelled}, 1); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := repo.ChangeStatus(delivery.ID, DeliveryStatusInput{Status: models.DeliveryAssigned}, 1)
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("CANCELLED -> ASSIGNED error = %v, want ErrInvalidTransition", err)
	}
}

func TestDeliveryCancelBeforeShipmentReleasesReservation(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeliveryRepository(db)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")

	seedStock(t, ledger, warehouse, 100, 10)
	if err := ledger.ReserveOrder("SO-1", []ReserveItem{
		{WarehouseID: warehouse.ID, VariantID: 100, Quantity: 4},
	}, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	delivery := createTestDelivery(t, repo, warehouse, "SO-1")
	wantCounters(t, mustInventory(t, ledger, warehouse, 100), 10, 4)

	if _, err := repo.ChangeStatus(delivery.ID, DeliveryStatusInput{Status: models.DeliveryCancelled}, 1); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 100), 10, 0)
}

func TestDeliveryCancelAfterFailureReturnsStock(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeliveryRepository(db)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")
	shipper := createOnlineShipper(t, db, warehouse, "Alex Courier")

	seedStock(t, ledger, warehouse, 100, 10)
	if err := ledger.ReserveOrder("SO-1", []ReserveItem{
		{WarehouseID: warehouse.ID, VariantID: 100, Quantity: 4},
	}, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	delivery := createTestDelivery(t, repo, warehouse, "SO-1")

	if _, err := repo.Assign(shipper.ID, []types.SnowflakeID{delivery.ID}, 1); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := repo.ChangeStatus(delivery.ID, DeliveryStatusInput{Status: models.DeliveryShipping}, 1); err != nil {
		t.Fatalf("to shipping: %v", err)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 100), 6, 0)

	if _, err := repo.ChangeStatus(delivery.ID, DeliveryStatusInput{
		Status: models.DeliveryFailed, FailedReason: "recipient unreachable",
	}, 1); err != nil {
		t.Fatalf("to failed: %v", err)
	}

	if _, err := repo.ChangeStatus(delivery.ID, DeliveryStatusInput{Status: models.DeliveryCancelled}, 1); err != nil {
		t.Fatalf("cancel after failure: %v", err)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 100), 10, 0)
}

func TestBatchAssignmentIsPerDelivery(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeliveryRepository(db)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")
	shipper := createOnlineShipper(t, db, warehouse, "Alex Courier")

	seedStock(t, ledger, warehouse, 100, 20)
	var ids []types.SnowflakeID
	for i := 0; i < 3; i++ {
		order := fmt.Sprintf("SO-%d", i+1)
		if err := ledger.ReserveOrder(order, []ReserveItem{
			{WarehouseID: warehouse.ID, VariantID: 100, Quantity: 4},
		}, 1); err != nil {
			t.Fatalf("reserve %s: %v", order, err)
		}
		ids = append(ids, createTestDelivery(t, repo, warehouse, order).ID)
	}

	// Put the middle delivery in SHIPPING so it cannot be reassigned.
	if _, err := repo.Assign(shipper.ID, []types.SnowflakeID{ids[1]}, 1); err != nil {
		t.Fatalf("pre-assign: %v", err)
	}
	if _, err := repo.ChangeStatus(ids[1], DeliveryStatusInput{Status: models.DeliveryShipping}, 1); err != nil {
		t.Fatalf("pre-ship: %v", err)
	}

	second := createOnlineShipper(t, db, warehouse, "Sam Courier")
	results, err := repo.Assign(second.ID, ids, 1)
	if err != nil {
		t.Fatalf("batch assign: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}
	if !results[0].Success || !results[2].Success {
		t.Fatalf("outer deliveries should assign: %+v", results)
	}
	if results[1].Success {
		t.Fatal("SHIPPING delivery must not be reassignable")
	}
}

func TestAssignmentShipperPreconditions(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeliveryRepository(db)
	ledger := NewLedgerRepository(db)
	shipperRepo := NewShipperRepository(db)
	warehouse := createWarehouse(t, db, "WH1")
	other := createWarehouse(t, db, "WH2")

	seedStock(t, ledger, warehouse, 100, 10)
	if err := ledger.ReserveOrder("SO-1", []ReserveItem{
		{WarehouseID: warehouse.ID, VariantID: 100, Quantity: 4},
	}, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	delivery := createTestDelivery(t, repo, warehouse, "SO-1")

	if _, err := repo.Assign(999, []types.SnowflakeID{delivery.ID}, 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown shipper error = %v, want ErrNotFound", err)
	}

	offline, err := shipperRepo.Create(ShipperInput{FullName: "Off Duty", WarehouseID: warehouse.ID})
	if err != nil {
		t.Fatalf("create shipper: %v", err)
	}
	if _, err := repo.Assign(offline.ID, []types.SnowflakeID{delivery.ID}, 1); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("offline shipper error = %v, want ErrValidation", err)
	}

	// Right status, wrong warehouse: the batch call survives, the entry fails.
	wrongSide := createOnlineShipper(t, db, other, "Wrong Side")
	results, err := repo.Assign(wrongSide.ID, []types.SnowflakeID{delivery.ID}, 1)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if results[0].Success {
		t.Fatal("cross-warehouse assignment must fail")
	}
}

func TestAssignmentCapacityLimit(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeliveryRepository(db)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")
	shipper := createOnlineShipper(t, db, warehouse, "Alex Courier")

	seedStock(t, ledger, warehouse, 100, 100)
	var ids []types.SnowflakeID
	for i := 0; i < maxActiveDeliveries+1; i++ {
		order := fmt.Sprintf("SO-%d", i+1)
		if err := ledger.ReserveOrder(order, []ReserveItem{
			{WarehouseID: warehouse.ID, VariantID: 100, Quantity: 1},
		}, 1); err != nil {
			t.Fatalf("reserve %s: %v", order, err)
		}
		ids = append(ids, createTestDelivery(t, repo, warehouse, order).ID)
	}

	_, err := repo.Assign(shipper.ID, ids, 1)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("over-capacity assign error = %v, want ErrValidation", err)
	}

	results, err := repo.Assign(shipper.ID, ids[:maxActiveDeliveries], 1)
	if err != nil {
		t.Fatalf("full-capacity assign: %v", err)
	}
	for _, res := range results {
		if !res.Success {
			t.Fatalf("assignment failed: %s", res.Error)
		}
	}

	_, err = repo.Assign(shipper.ID, ids[maxActiveDeliveries:], 1)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("assign past capacity error = %v, want ErrValidation", err)
	}
}

func TestAutoAssignPicksLeastLoadedShipper(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeliveryRepository(db)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")
	busy := createOnlineShipper(t, db, warehouse, "Busy Courier")
	idle := createOnlineShipper(t, db, warehouse, "Idle Courier")

	seedStock(t, ledger, warehouse, 100, 50)
	for i := 0; i < 3; i++ {
		order := fmt.Sprintf("SO-BUSY-%d", i+1)
		if err := ledger.ReserveOrder(order, []ReserveItem{
			{WarehouseID: warehouse.ID, VariantID: 100, Quantity: 1},
		}, 1); err != nil {
			t.Fatalf("reserve: %v", err)
		}
		d := createTestDelivery(t, repo, warehouse, order)
		if _, err := repo.Assign(busy.ID, []types.SnowflakeID{d.ID}, 1); err != nil {
			t.Fatalf("preload busy shipper: %v", err)
		}
	}

	if err := ledger.ReserveOrder("SO-NEW", []ReserveItem{
		{WarehouseID: warehouse.ID, VariantID: 100, Quantity: 1},
	}, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	pending := createTestDelivery(t, repo, warehouse, "SO-NEW")

	assigned, err := repo.AutoAssignPending()
	if err != nil {
		t.Fatalf("auto-assign: %v", err)
	}
	if assigned != 1 {
		t.Fatalf("assigned = %d, want 1", assigned)
	}

	loaded, err := repo.Get(pending.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.AssignedShipper == nil || *loaded.AssignedShipper != idle.ID {
		t.Fatalf("delivery went to %v, want the idle shipper", loaded.AssignedShipper)
	}
}

func TestReshipAfterFailedAttempt(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeliveryRepository(db)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")
	shipper := createOnlineShipper(t, db, warehouse, "Alex Courier")

	seedStock(t, ledger, warehouse, 100, 10)
	if err := ledger.ReserveOrder("SO-1", []ReserveItem{
		{WarehouseID: warehouse.ID, VariantID: 100, Quantity: 4},
	}, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	delivery := createTestDelivery(t, repo, warehouse, "SO-1")

	if _, err := repo.Assign(shipper.ID, []types.SnowflakeID{delivery.ID}, 1); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := repo.ChangeStatus(delivery.ID, DeliveryStatusInput{Status: models.DeliveryShipping}, 1); err != nil {
		t.Fatalf("first attempt: %v", err)
	}
	if _, err := repo.ChangeStatus(delivery.ID, DeliveryStatusInput{
		Status: models.DeliveryFailed, FailedReason: "recipient unreachable",
	}, 1); err != nil {
		t.Fatalf("to failed: %v", err)
	}

	// The reservation was consumed on the first attempt and the goods never
	// came back. Reassigning and shipping again must not touch the ledger.
	if _, err := repo.Assign(shipper.ID, []types.SnowflakeID{delivery.ID}, 1); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	delivery, err := repo.ChangeStatus(delivery.ID, DeliveryStatusInput{Status: models.DeliveryShipping}, 1)
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if delivery.Status != models.DeliveryShipping {
		t.Fatalf("status = %s, want SHIPPING", delivery.Status)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 100), 6, 0)

	if _, err := repo.ChangeStatus(delivery.ID, DeliveryStatusInput{Status: models.DeliveryDelivered}, 1); err != nil {
		t.Fatalf("to delivered: %v", err)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 100), 6, 0)
}

func TestShippingFailureLeavesDeliveryUnchanged(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeliveryRepository(db)
	warehouse := createWarehouse(t, db, "WH1")
	shipper := createOnlineShipper(t, db, warehouse, "Alex Courier")

	// No reservation exists for this order, so shipping must fail.
	delivery := createTestDelivery(t, repo, warehouse, "SO-GHOST")
	if _, err := repo.Assign(shipper.ID, []types.SnowflakeID{delivery.ID}, 1); err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err := repo.ChangeStatus(delivery.ID, DeliveryStatusInput{Status: models.DeliveryShipping}, 1)
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("shipping error = %v, want ErrNotFound", err)
	}

	// The failed attempt rolls back whole: status, shipper and ledger stay put.
	loaded, err := repo.Get(delivery.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Status != models.DeliveryAssigned {
		t.Fatalf("status after failed shipping = %s, want ASSIGNED", loaded.Status)
	}
	var loadedShipper models.Shipper
	if err := db.First(&loadedShipper, "id = ?", shipper.ID).Error; err != nil {
		t.Fatalf("load shipper: %v", err)
	}
	if loadedShipper.Status != models.ShipperOnline {
		t.Fatalf("shipper status = %s, want ONLINE", loadedShipper.Status)
	}
	var moves int64
	if err := db.Model(&models.InventoryTransaction{}).
		Where("reference_code = ?", "SO-GHOST").Count(&moves).Error; err != nil {
		t.Fatalf("count transactions: %v", err)
	}
	if moves != 0 {
		t.Fatalf("ledger rows for the order = %d, want 0", moves)
	}
}

func TestReassignFailedDeliveryAtCapacity(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeliveryRepository(db)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")
	shipper := createOnlineShipper(t, db, warehouse, "Alex Courier")

	seedStock(t, ledger, warehouse, 100, 100)
	var ids []types.SnowflakeID
	for i := 0; i < maxActiveDeliveries; i++ {
		order := fmt.Sprintf("SO-%d", i+1)
		if err := ledger.ReserveOrder(order, []ReserveItem{
			{WarehouseID: warehouse.ID, VariantID: 100, Quantity: 1},
		}, 1); err != nil {
			t.Fatalf("reserve %s: %v", order, err)
		}
		ids = append(ids, createTestDelivery(t, repo, warehouse, order).ID)
	}
	if _, err := repo.Assign(shipper.ID, ids, 1); err != nil {
		t.Fatalf("fill to capacity: %v", err)
	}

	if _, err := repo.ChangeStatus(ids[0], DeliveryStatusInput{Status: models.DeliveryShipping}, 1); err != nil {
		t.Fatalf("to shipping: %v", err)
	}
	if _, err := repo.ChangeStatus(ids[0], DeliveryStatusInput{
		Status: models.DeliveryFailed, FailedReason: "recipient unreachable",
	}, 1); err != nil {
		t.Fatalf("to failed: %v", err)
	}

	// The failed delivery already counts toward the shipper's load; handing it
	// back to the same courier does not add to it.
	results, err := repo.Assign(shipper.ID, []types.SnowflakeID{ids[0]}, 1)
	if err != nil {
		t.Fatalf("reassign at capacity: %v", err)
	}
	if !results[0].Success {
		t.Fatalf("reassign failed: %s", results[0].Error)
	}
}

func TestDuplicateOpenDeliveryRejected(t *testing.T) {
	db := newTestDB(t)
	repo := NewDeliveryRepository(db)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")

	seedStock(t, ledger, warehouse, 100, 10)
	if err := ledger.ReserveOrder("SO-1", []ReserveItem{
		{WarehouseID: warehouse.ID, VariantID: 100, Quantity: 4},
	}, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	createTestDelivery(t, repo, warehouse, "SO-1")

	_, err := repo.Create(CreateDeliveryInput{
		OrderNumber:     "SO-1",
		WarehouseID:     warehouse.ID,
		ShippingName:    "Recipient",
		ShippingAddress: "1 Main St",
		Items:           []DeliveryItemInput{{VariantID: 100, Quantity: 4}},
	})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("duplicate delivery error = %v, want ErrConflict", err)
	}
}
