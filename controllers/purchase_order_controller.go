package controllers

import (
	"time"

	"inventory-app/middleware"
	"inventory-app/repositories"
	"inventory-app/types"
	"inventory-app/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PurchaseOrderController struct {
	DB       *gorm.DB
	repo     *repositories.PurchaseOrderRepository
	validate *validator.Validate
}

func NewPurchaseOrderController(db *gorm.DB) *PurchaseOrderController {
	return &PurchaseOrderController{
		DB:       db,
		repo:     repositories.NewPurchaseOrderRepository(db),
		validate: validator.New(),
	}
}

func (c *PurchaseOrderController) CreatePurchaseOrder(ctx *fiber.Ctx) error {
	var input repositories.PurchaseOrderInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := c.repo.Create(input, middleware.UserID(ctx))
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Purchase order created successfully", "data": order})
}

func (c *PurchaseOrderController) UpdatePurchaseOrder(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}
	var input repositories.PurchaseOrderInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := c.repo.Update(types.SnowflakeID(id), input, middleware.UserID(ctx))
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Purchase order updated successfully", "data": order})
}

type purchaseOrderStatusInput struct {
	Status string `json:"status" validate:"required"`
}

func (c *PurchaseOrderController) UpdatePurchaseOrderStatus(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}
	var input purchaseOrderStatusInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	order, err := c.repo.ChangeStatus(types.SnowflakeID(id), input.Status, middleware.UserID(ctx))
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Purchase order status updated", "data": order})
}

func (c *PurchaseOrderController) GetAllPurchaseOrders(ctx *fiber.Ctx) error {
	page, size := utils.ParsePage(ctx)
	filter := repositories.PurchaseOrderFilter{
		Status:      ctx.Query("status"),
		Keyword:     ctx.Query("keyword"),
		WarehouseID: types.SnowflakeID(ctx.QueryInt("warehouse_id")),
	}
	if start := ctx.Query("start_date"); start != "" {
		if t, err := time.Parse("2006-01-02", start); err == nil {
			filter.Start = &t
		}
	}
	if end := ctx.Query("end_date"); end != "" {
		if t, err := time.Parse("2006-01-02", end); err == nil {
			e := t.AddDate(0, 0, 1)
			filter.End = &e
		}
	}

	orders, total, err := c.repo.List(filter, page, size)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(utils.PagedResponse(orders, page, size, total))
}

func (c *PurchaseOrderController) GetPurchaseOrderByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}
	order, err := c.repo.Get(types.SnowflakeID(id))
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Purchase order found", "data": order})
}
