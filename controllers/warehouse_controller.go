package controllers

import (
	"errors"

	"inventory-app/middleware"
	"inventory-app/models"
	"inventory-app/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type WarehouseController struct {
	DB       *gorm.DB
	validate *validator.Validate
}

func NewWarehouseController(db *gorm.DB) *WarehouseController {
	return &WarehouseController{DB: db, validate: validator.New()}
}

type warehouseInput struct {
	Code        string `json:"code" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

func (c *WarehouseController) CreateWarehouse(ctx *fiber.Ctx) error {
	var input warehouseInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	warehouse := models.Warehouse{
		Code:        input.Code,
		Name:        input.Name,
		Address:     input.Address,
		Description: input.Description,
		CreatedBy:   middleware.UserID(ctx),
		UpdatedBy:   middleware.UserID(ctx),
	}
	if err := c.DB.Create(&warehouse).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Warehouse created successfully", "data": warehouse})
}

func (c *WarehouseController) GetAllWarehouses(ctx *fiber.Ctx) error {
	page, size := utils.ParsePage(ctx)
	q := c.DB.Model(&models.Warehouse{})
	if keyword := ctx.Query("keyword"); keyword != "" {
		like := "%" + keyword + "%"
		q = q.Where("code LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	var warehouses []models.Warehouse
	if err := q.Order("code ASC").Scopes(utils.Paginate(page, size)).Find(&warehouses).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(utils.PagedResponse(warehouses, page, size, total))
}

func (c *WarehouseController) GetWarehouseByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	var warehouse models.Warehouse
	if err := c.DB.First(&warehouse, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Warehouse not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Warehouse found", "data": warehouse})
}

// UpdateWarehouse edits the master record. The code is frozen once stock has
// moved through the warehouse, because ledger exports reference it.
func (c *WarehouseController) UpdateWarehouse(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}
	var input warehouseInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var warehouse models.Warehouse
	if err := c.DB.First(&warehouse, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Warehouse not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if input.Code != warehouse.Code {
		var stockCount int64
		if err := c.DB.Model(&models.Inventory{}).Where("warehouse_id = ?", warehouse.ID).Count(&stockCount).Error; err != nil {
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		if stockCount > 0 {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Warehouse code cannot change while inventory records exist"})
		}
	}

	warehouse.Code = input.Code
	warehouse.Name = input.Name
	warehouse.Address = input.Address
	warehouse.Description = input.Description
	warehouse.UpdatedBy = middleware.UserID(ctx)
	if err := c.DB.Save(&warehouse).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Warehouse updated successfully", "data": warehouse})
}

func (c *WarehouseController) DeleteWarehouse(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}

	var warehouse models.Warehouse
	if err := c.DB.First(&warehouse, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Warehouse not found"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var stockCount int64
	if err := c.DB.Model(&models.Inventory{}).Where("warehouse_id = ?", warehouse.ID).Count(&stockCount).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if stockCount > 0 {
		return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Warehouse still has inventory records"})
	}

	if err := c.DB.Delete(&warehouse).Error; err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Warehouse deleted successfully", "data": warehouse})
}
