package controllers

import (
	"fmt"

	"inventory-app/repositories"
	"inventory-app/types"
	"inventory-app/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type InventoryController struct {
	DB     *gorm.DB
	ledger *repositories.LedgerRepository
	report *repositories.ReportRepository
}

func NewInventoryController(db *gorm.DB) *InventoryController {
	return &InventoryController{
		DB:     db,
		ledger: repositories.NewLedgerRepository(db),
		report: repositories.NewReportRepository(db),
	}
}

func (c *InventoryController) GetAllInventories(ctx *fiber.Ctx) error {
	page, size := utils.ParsePage(ctx)
	filter := repositories.InventoryFilter{
		Keyword:     ctx.Query("keyword"),
		WarehouseID: types.SnowflakeID(ctx.QueryInt("warehouse_id")),
		VariantID:   int64(ctx.QueryInt("variant_id")),
	}

	records, total, err := c.ledger.ListInventories(filter, page, size)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(utils.PagedResponse(records, page, size, total))
}

// GetInventory looks one record up by warehouse and variant. A pair that has
// never moved returns 404, not an empty record.
func (c *InventoryController) GetInventory(ctx *fiber.Ctx) error {
	warehouseID := types.SnowflakeID(ctx.QueryInt("warehouse_id"))
	variantID := int64(ctx.QueryInt("variant_id"))
	if warehouseID == 0 || variantID == 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "warehouse_id and variant_id are required"})
	}

	inv, err := c.ledger.GetInventory(warehouseID, variantID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Inventory found", "data": inv})
}

func (c *InventoryController) ExportExcel(ctx *fiber.Ctx) error {
	warehouseID := types.SnowflakeID(ctx.QueryInt("warehouse_id"))

	rows, err := c.report.StockSnapshot(warehouseID)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Whs Code")
	f.SetCellValue(sheet, "B1", "Whs Name")
	f.SetCellValue(sheet, "C1", "Variant ID")
	f.SetCellValue(sheet, "D1", "Quantity")
	f.SetCellValue(sheet, "E1", "Reserved")
	f.SetCellValue(sheet, "F1", "Available")

	for i, row := range rows {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), row.WarehouseCode)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), row.WarehouseName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", i+2), row.VariantID)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", i+2), row.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", i+2), row.ReservedQuantity)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", i+2), row.Available)
	}

	ctx.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Set("Content-Disposition", `attachment; filename="stock_report.xlsx"`)

	if err := f.Write(ctx.Response().BodyWriter()); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).SendString("Failed to generate Excel")
	}
	return nil
}
