package controllers

import (
	"fmt"
	"time"

	"inventory-app/repositories"
	"inventory-app/types"
	"inventory-app/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type ReportController struct {
	DB     *gorm.DB
	report *repositories.ReportRepository
	ledger *repositories.LedgerRepository
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{
		DB:     db,
		report: repositories.NewReportRepository(db),
		ledger: repositories.NewLedgerRepository(db),
	}
}

// parseRange reads start_date/end_date query params, defaulting to the last
// 30 days. The end date is inclusive.
func parseRange(ctx *fiber.Ctx) (time.Time, time.Time) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if s := ctx.Query("start_date"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			from = t
		}
	}
	if s := ctx.Query("end_date"); s != "" {
		if t, err := time.Parse("2006-01-02", s); err == nil {
			to = t.AddDate(0, 0, 1)
		}
	}
	return from, to
}

func (c *ReportController) MovementSummary(ctx *fiber.Ctx) error {
	from, to := parseRange(ctx)
	warehouseID := types.SnowflakeID(ctx.QueryInt("warehouse_id"))

	rows, err := c.report.MovementSummary(from, to, warehouseID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Movement summary", "data": rows})
}

func (c *ReportController) DailyMovement(ctx *fiber.Ctx) error {
	from, to := parseRange(ctx)
	warehouseID := types.SnowflakeID(ctx.QueryInt("warehouse_id"))

	rows, err := c.report.DailyMovement(from, to, warehouseID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Daily movement", "data": rows})
}

// ExportTransactions writes the filtered transaction history as a
// spreadsheet, one row per ledger entry.
func (c *ReportController) ExportTransactions(ctx *fiber.Ctx) error {
	from, to := parseRange(ctx)
	filter := repositories.TransactionFilter{
		Status:      ctx.Query("status"),
		Type:        ctx.Query("transaction_type"),
		WarehouseID: types.SnowflakeID(ctx.QueryInt("warehouse_id")),
		Start:       &from,
		End:         &to,
	}

	txns, _, err := c.ledger.ListTransactions(filter, 0, 10000)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Code")
	f.SetCellValue(sheet, "B1", "Type")
	f.SetCellValue(sheet, "C1", "Quantity")
	f.SetCellValue(sheet, "D1", "Status")
	f.SetCellValue(sheet, "E1", "Whs Code")
	f.SetCellValue(sheet, "F1", "Variant ID")
	f.SetCellValue(sheet, "G1", "Reference")
	f.SetCellValue(sheet, "H1", "Created At")

	for i, txn := range txns {
		whsCode := ""
		variantID := int64(0)
		if txn.Inventory != nil {
			variantID = txn.Inventory.VariantID
			if txn.Inventory.Warehouse != nil {
				whsCode = txn.Inventory.Warehouse.Code
			}
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), txn.Code)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), txn.TransactionType)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", i+2), txn.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", i+2), txn.Status)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", i+2), whsCode)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", i+2), variantID)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", i+2), txn.ReferenceCode)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", i+2), txn.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="transactions.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).SendString("Failed to generate Excel")
	}
	return nil
}
