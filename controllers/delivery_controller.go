package controllers

import (
	"inventory-app/middleware"
	"inventory-app/repositories"
	"inventory-app/types"
	"inventory-app/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type DeliveryController struct {
	DB       *gorm.DB
	repo     *repositories.DeliveryRepository
	validate *validator.Validate
}

func NewDeliveryController(db *gorm.DB) *DeliveryController {
	return &DeliveryController{
		DB:       db,
		repo:     repositories.NewDeliveryRepository(db),
		validate: validator.New(),
	}
}

func (c *DeliveryController) CreateDelivery(ctx *fiber.Ctx) error {
	var input repositories.CreateDeliveryInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	delivery, err := c.repo.Create(input)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Delivery created successfully", "data": delivery})
}

func (c *DeliveryController) GetAllDeliveries(ctx *fiber.Ctx) error {
	page, size := utils.ParsePage(ctx)
	filter := repositories.DeliveryFilter{
		Status:      ctx.Query("status"),
		WarehouseID: types.SnowflakeID(ctx.QueryInt("warehouse_id")),
		ShipperID:   types.SnowflakeID(ctx.QueryInt("shipper_id")),
		Keyword:     ctx.Query("keyword"),
	}

	deliveries, total, err := c.repo.List(filter, page, size)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(utils.PagedResponse(deliveries, page, size, total))
}

func (c *DeliveryController) GetDeliveryByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}
	delivery, err := c.repo.Get(types.SnowflakeID(id))
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Delivery found", "data": delivery})
}

type assignInput struct {
	ShipperID   types.SnowflakeID   `json:"shipper_id" validate:"required"`
	DeliveryIDs []types.SnowflakeID `json:"delivery_ids" validate:"required,min=1"`
}

// AssignDeliveries hands a batch to one shipper. The response carries one
// entry per delivery; a failed entry does not undo the others.
func (c *DeliveryController) AssignDeliveries(ctx *fiber.Ctx) error {
	var input assignInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	results, err := c.repo.Assign(input.ShipperID, input.DeliveryIDs, middleware.UserID(ctx))
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Assignment processed", "data": results})
}

func (c *DeliveryController) UpdateDeliveryStatus(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}
	var input repositories.DeliveryStatusInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	delivery, err := c.repo.ChangeStatus(types.SnowflakeID(id), input, middleware.UserID(ctx))
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Delivery status updated", "data": delivery})
}

// TriggerAutoAssign runs one dispatcher sweep on demand, the same routine
// the background ticker runs on its interval.
func (c *DeliveryController) TriggerAutoAssign(ctx *fiber.Ctx) error {
	assigned, err := c.repo.AutoAssignPending()
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Auto-assign completed", "data": fiber.Map{"assigned": assigned}})
}
