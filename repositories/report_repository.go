package repositories

import (
	"time"

	"inventory-app/apperr"
	"inventory-app/models"
	"inventory-app/types"

	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// MovementSummary totals completed transaction quantities per type over a
// date range.
type MovementSummary struct {
	TransactionType string `json:"transaction_type"`
	TotalQuantity   int64  `json:"total_quantity"`
	Count           int64  `json:"count"`
}

func (r *ReportRepository) MovementSummary(from, to time.Time, warehouseID types.SnowflakeID) ([]MovementSummary, error) {
	if !to.After(from) {
		return nil, apperr.Validationf("report range end must be after start")
	}

	query := `
		SELECT t.transaction_type AS transaction_type,
		       SUM(t.quantity) AS total_quantity,
		       COUNT(*) AS count
		FROM inventory_transactions t
		JOIN inventories i ON i.id = t.inventory_id
		WHERE t.status = ? AND t.created_at >= ? AND t.created_at < ?`
	args := []interface{}{models.StatusCompleted, from, to}
	if warehouseID != 0 {
		query += ` AND i.warehouse_id = ?`
		args = append(args, warehouseID)
	}
	query += ` GROUP BY t.transaction_type ORDER BY t.transaction_type`

	var rows []MovementSummary
	if err := r.db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DailyMovement is one day of completed inbound and outbound quantities.
type DailyMovement struct {
	Day      string `json:"day"`
	Inbound  int64  `json:"inbound"`
	Outbound int64  `json:"outbound"`
}

func (r *ReportRepository) DailyMovement(from, to time.Time, warehouseID types.SnowflakeID) ([]DailyMovement, error) {
	if !to.After(from) {
		return nil, apperr.Validationf("report range end must be after start")
	}

	query := `
		SELECT ` + r.dayExpr("t.created_at") + ` AS day,
		       SUM(CASE WHEN t.transaction_type = ? THEN t.quantity ELSE 0 END) AS inbound,
		       SUM(CASE WHEN t.transaction_type = ? THEN t.quantity ELSE 0 END) AS outbound
		FROM inventory_transactions t
		JOIN inventories i ON i.id = t.inventory_id
		WHERE t.status = ? AND t.created_at >= ? AND t.created_at < ?`
	args := []interface{}{
		models.TransactionImport, models.TransactionExport,
		models.StatusCompleted, from, to,
	}
	if warehouseID != 0 {
		query += ` AND i.warehouse_id = ?`
		args = append(args, warehouseID)
	}
	query += ` GROUP BY day ORDER BY day`

	var rows []DailyMovement
	if err := r.db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// dayExpr truncates a timestamp to its calendar day in the dialect at hand.
func (r *ReportRepository) dayExpr(col string) string {
	switch r.db.Dialector.Name() {
	case "postgres":
		return "to_char(" + col + ", 'YYYY-MM-DD')"
	case "sqlserver":
		return "CONVERT(varchar(10), " + col + ", 23)"
	default: // mysql, sqlite
		return "DATE(" + col + ")"
	}
}

// StockSnapshot is the current position of one inventory record, flattened
// for listing and spreadsheet export.
type StockSnapshot struct {
	WarehouseCode    string `json:"warehouse_code"`
	WarehouseName    string `json:"warehouse_name"`
	VariantID        int64  `json:"variant_id"`
	Quantity         int    `json:"quantity"`
	ReservedQuantity int    `json:"reserved_quantity"`
	Available        int    `json:"available"`
}

func (r *ReportRepository) StockSnapshot(warehouseID types.SnowflakeID) ([]StockSnapshot, error) {
	query := `
		SELECT w.code AS warehouse_code,
		       w.name AS warehouse_name,
		       i.variant_id AS variant_id,
		       i.quantity AS quantity,
		       i.reserved_quantity AS reserved_quantity,
		       i.quantity - i.reserved_quantity AS available
		FROM inventories i
		JOIN warehouses w ON w.id = i.warehouse_id`
	args := []interface{}{}
	if warehouseID != 0 {
		query += ` WHERE i.warehouse_id = ?`
		args = append(args, warehouseID)
	}
	query += ` ORDER BY w.code, i.variant_id`

	var rows []StockSnapshot
	if err := r.db.Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
