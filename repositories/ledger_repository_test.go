package repositories

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"inventory-app/apperr"
	"inventory-app/models"
)

func TestReservationLifecycle(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")

	seedStock(t, ledger, warehouse, 100, 10)
	wantCounters(t, mustInventory(t, ledger, warehouse, 100), 10, 0)

	items := []ReserveItem{{WarehouseID: warehouse.ID, VariantID: 100, Quantity: 4}}
	if err := ledger.ReserveOrder("SO-1001", items, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 100), 10, 4)

	if err := ledger.FulfillOrder("SO-1001", "", 1); err != nil {
		t.Fatalf("fulfill: %v", err)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 100), 6, 0)

	adj, err := ledger.CreateTransaction(CreateTransactionInput{
		WarehouseID:     warehouse.ID,
		VariantID:       100,
		TransactionType: models.TransactionAdjust,
		Quantity:        -1,
		Note:            "cycle count correction",
		CreatedBy:       1,
	})
	if err != nil {
		t.Fatalf("create adjust: %v", err)
	}
	if _, err := ledger.UpdateStatus(adj.ID, models.StatusCompleted, "", 1); err != nil {
		t.Fatalf("complete adjust: %v", err)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 100), 5, 0)
}

func TestCompletionAppliedExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")

	txn, err := ledger.CreateTransaction(CreateTransactionInput{
		WarehouseID:     warehouse.ID,
		VariantID:       7,
		TransactionType: models.TransactionImport,
		Quantity:        5,
		CreatedBy:       1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := ledger.UpdateStatus(txn.ID, models.StatusCompleted, "", 1); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	_, err = ledger.UpdateStatus(txn.ID, models.StatusCompleted, "", 1)
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("second completion error = %v, want ErrInvalidTransition", err)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 7), 5, 0)

	_, err = ledger.UpdateStatus(txn.ID, models.StatusCancelled, "", 1)
	if !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("cancel after completion error = %v, want ErrInvalidTransition", err)
	}
}

func TestCancelledTransactionNeverTouchesCounters(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")
	seedStock(t, ledger, warehouse, 7, 10)

	txn, err := ledger.CreateTransaction(CreateTransactionInput{
		WarehouseID:     warehouse.ID,
		VariantID:       7,
		TransactionType: models.TransactionExport,
		Quantity:        3,
		CreatedBy:       1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ledger.UpdateStatus(txn.ID, models.StatusCancelled, "changed plans", 1); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 7), 10, 0)

	if _, err := ledger.UpdateStatus(txn.ID, models.StatusCompleted, "", 1); !errors.Is(err, apperr.ErrInvalidTransition) {
		t.Fatalf("complete after cancel error = %v, want ErrInvalidTransition", err)
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")

	seedStock(t, ledger, warehouse, 42, 7)

	exp, err := ledger.CreateTransaction(CreateTransactionInput{
		WarehouseID:     warehouse.ID,
		VariantID:       42,
		TransactionType: models.TransactionExport,
		Quantity:        7,
		CreatedBy:       1,
	})
	if err != nil {
		t.Fatalf("create export: %v", err)
	}
	if _, err := ledger.UpdateStatus(exp.ID, models.StatusCompleted, "", 1); err != nil {
		t.Fatalf("complete export: %v", err)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 42), 0, 0)

	_, err = ledger.CreateTransaction(CreateTransactionInput{
		WarehouseID:     warehouse.ID,
		VariantID:       42,
		TransactionType: models.TransactionExport,
		Quantity:        1,
		CreatedBy:       1,
	})
	if !errors.Is(err, apperr.ErrInsufficientStock) {
		t.Fatalf("export on empty stock error = %v, want ErrInsufficientStock", err)
	}
}

func TestConcurrentReservesNeverOversell(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")

	seedStock(t, ledger, warehouse, 9, 5)
	if err := ledger.ReserveOrder("SO-HELD", []ReserveItem{
		{WarehouseID: warehouse.ID, VariantID: 9, Quantity: 4},
	}, 1); err != nil {
		t.Fatalf("initial reserve: %v", err)
	}

	// One unit left. Of N concurrent reserves exactly one may win.
	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = ledger.ReserveOrder(
				"SO-RACE-"+strings.Repeat("X", i+1),
				[]ReserveItem{{WarehouseID: warehouse.ID, VariantID: 9, Quantity: 1}},
				1,
			)
		}(i)
	}
	wg.Wait()

	won := 0
	for i, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, apperr.ErrInsufficientStock):
		default:
			t.Fatalf("reserve %d: unexpected error %v", i, err)
		}
	}
	if won != 1 {
		t.Fatalf("winners = %d, want exactly 1", won)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 9), 5, 5)
}

func TestReserveOrderAllOrNothing(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")

	seedStock(t, ledger, warehouse, 1, 10)
	seedStock(t, ledger, warehouse, 2, 1)

	err := ledger.ReserveOrder("SO-2001", []ReserveItem{
		{WarehouseID: warehouse.ID, VariantID: 1, Quantity: 5},
		{WarehouseID: warehouse.ID, VariantID: 2, Quantity: 3},
	}, 1)
	if !errors.Is(err, apperr.ErrInsufficientStock) {
		t.Fatalf("reserve error = %v, want ErrInsufficientStock", err)
	}

	// The first line must have rolled back with the second.
	wantCounters(t, mustInventory(t, ledger, warehouse, 1), 10, 0)
	wantCounters(t, mustInventory(t, ledger, warehouse, 2), 1, 0)
}

func TestLazyInventoryRecordCreation(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")

	if _, err := ledger.GetInventory(warehouse.ID, 55); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("lookup before first movement error = %v, want ErrNotFound", err)
	}

	// A pending transaction creates the record but leaves counters at zero.
	if _, err := ledger.CreateTransaction(CreateTransactionInput{
		WarehouseID:     warehouse.ID,
		VariantID:       55,
		TransactionType: models.TransactionImport,
		Quantity:        3,
		CreatedBy:       1,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 55), 0, 0)
}

func TestTransactionsAgainstUnknownWarehouse(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)

	_, err := ledger.CreateTransaction(CreateTransactionInput{
		WarehouseID:     12345,
		VariantID:       1,
		TransactionType: models.TransactionImport,
		Quantity:        3,
		CreatedBy:       1,
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestAdjustCannotBreachReservedFloor(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")

	seedStock(t, ledger, warehouse, 3, 5)
	if err := ledger.ReserveOrder("SO-3001", []ReserveItem{
		{WarehouseID: warehouse.ID, VariantID: 3, Quantity: 4},
	}, 1); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	adj, err := ledger.CreateTransaction(CreateTransactionInput{
		WarehouseID:     warehouse.ID,
		VariantID:       3,
		TransactionType: models.TransactionAdjust,
		Quantity:        -2,
		CreatedBy:       1,
	})
	if err != nil {
		t.Fatalf("create adjust: %v", err)
	}
	_, err = ledger.UpdateStatus(adj.ID, models.StatusCompleted, "", 1)
	if !errors.Is(err, apperr.ErrInsufficientStock) {
		t.Fatalf("complete adjust error = %v, want ErrInsufficientStock", err)
	}
	wantCounters(t, mustInventory(t, ledger, warehouse, 3), 5, 4)
}

func TestZeroQuantityAdjustRejected(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")

	_, err := ledger.CreateTransaction(CreateTransactionInput{
		WarehouseID:     warehouse.ID,
		VariantID:       1,
		TransactionType: models.TransactionAdjust,
		Quantity:        0,
		CreatedBy:       1,
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
}

func TestReleaseWithoutReservationRejected(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")
	seedStock(t, ledger, warehouse, 4, 5)

	if err := ledger.ReleaseOrder("SO-NOPE", "", 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("release error = %v, want ErrNotFound", err)
	}

	rel, err := ledger.CreateTransaction(CreateTransactionInput{
		WarehouseID:     warehouse.ID,
		VariantID:       4,
		TransactionType: models.TransactionRelease,
		Quantity:        2,
		CreatedBy:       1,
	})
	if err != nil {
		t.Fatalf("create release: %v", err)
	}
	_, err = ledger.UpdateStatus(rel.ID, models.StatusCompleted, "", 1)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("complete release error = %v, want ErrValidation", err)
	}
}

func TestTransactionCodesFollowDailySequence(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")

	first, err := ledger.CreateTransaction(CreateTransactionInput{
		WarehouseID:     warehouse.ID,
		VariantID:       1,
		TransactionType: models.TransactionImport,
		Quantity:        1,
		CreatedBy:       1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(first.Code, "IMP-") || !strings.HasSuffix(first.Code, "-1") {
		t.Fatalf("first code = %q, want IMP-<date>-1", first.Code)
	}

	second, err := ledger.CreateTransaction(CreateTransactionInput{
		WarehouseID:     warehouse.ID,
		VariantID:       2,
		TransactionType: models.TransactionAdjust,
		Quantity:        2,
		CreatedBy:       1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(second.Code, "ADJ-") || !strings.HasSuffix(second.Code, "-2") {
		t.Fatalf("second code = %q, want ADJ-<date>-2", second.Code)
	}
}

func TestListTransactionsFilters(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedgerRepository(db)
	warehouse := createWarehouse(t, db, "WH1")
	other := createWarehouse(t, db, "WH2")

	seedStock(t, ledger, warehouse, 1, 5)
	seedStock(t, ledger, other, 1, 5)

	txns, total, err := ledger.ListTransactions(TransactionFilter{
		WarehouseID: warehouse.ID,
		Status:      models.StatusCompleted,
	}, 0, 20)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(txns) != 1 {
		t.Fatalf("total = %d, len = %d, want 1 transaction for WH1", total, len(txns))
	}

	txns, _, err = ledger.ListTransactions(TransactionFilter{
		Keyword:     "wh2",
		KeywordType: "warehouse_code",
	}, 0, 20)
	if err != nil {
		t.Fatalf("keyword list: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("keyword search returned %d rows, want 1", len(txns))
	}
}

func TestConflictRetryRecoversFromCodeCollision(t *testing.T) {
	// Two writers on different inventory keys can read the same daily count
	// and collide on the code unique index; the retry must recompute.
	collisions := []error{
		errors.New(`ERROR: duplicate key value violates unique constraint "idx_inventory_transactions_code" (SQLSTATE 23505)`),
		errors.New("Error 1062 (23000): Duplicate entry 'IMP-31082026-7' for key 'code'"),
		errors.New("UNIQUE constraint failed: inventory_transactions.code"),
	}
	for _, collision := range collisions {
		attempts := 0
		err := withConflictRetry(func() error {
			attempts++
			if attempts == 1 {
				return collision
			}
			return nil
		})
		if err != nil {
			t.Fatalf("retry of %q surfaced %v", collision, err)
		}
		if attempts != 2 {
			t.Fatalf("attempts = %d, want 2 for %q", attempts, collision)
		}
	}

	// Business failures are final and never retried.
	attempts := 0
	err := withConflictRetry(func() error {
		attempts++
		return apperr.InsufficientStockf("nothing left")
	})
	if !errors.Is(err, apperr.ErrInsufficientStock) {
		t.Fatalf("error = %v, want ErrInsufficientStock", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}

	// A persistent collision gives up as a conflict instead of a raw DB error.
	err = withConflictRetry(func() error { return collisions[0] })
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("exhausted retry error = %v, want ErrConflict", err)
	}
}
