package controllers

import (
	"inventory-app/repositories"
	"inventory-app/types"
	"inventory-app/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ShipperController struct {
	DB       *gorm.DB
	repo     *repositories.ShipperRepository
	validate *validator.Validate
}

func NewShipperController(db *gorm.DB) *ShipperController {
	return &ShipperController{
		DB:       db,
		repo:     repositories.NewShipperRepository(db),
		validate: validator.New(),
	}
}

func (c *ShipperController) CreateShipper(ctx *fiber.Ctx) error {
	var input repositories.ShipperInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	shipper, err := c.repo.Create(input)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Shipper created successfully", "data": shipper})
}

func (c *ShipperController) UpdateShipper(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}
	var input repositories.ShipperInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	shipper, err := c.repo.Update(types.SnowflakeID(id), input)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Shipper updated successfully", "data": shipper})
}

func (c *ShipperController) GetAllShippers(ctx *fiber.Ctx) error {
	page, size := utils.ParsePage(ctx)
	filter := repositories.ShipperFilter{
		WarehouseID: types.SnowflakeID(ctx.QueryInt("warehouse_id")),
		Status:      ctx.Query("status"),
		Keyword:     ctx.Query("keyword"),
		ActiveOnly:  ctx.QueryBool("active_only"),
	}

	if ctx.QueryBool("with_deliveries") {
		details, total, err := c.repo.ListDetails(filter, page, size)
		if err != nil {
			return utils.ErrorJSON(ctx, err)
		}
		return ctx.Status(fiber.StatusOK).JSON(utils.PagedResponse(details, page, size, total))
	}

	shippers, total, err := c.repo.List(filter, page, size)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(utils.PagedResponse(shippers, page, size, total))
}

// GetShipperByID returns the shipper together with their open deliveries.
func (c *ShipperController) GetShipperByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}
	detail, err := c.repo.GetDetail(types.SnowflakeID(id))
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Shipper found", "data": detail})
}

type shipperStatusInput struct {
	Status string `json:"status" validate:"required"`
}

func (c *ShipperController) UpdateShipperStatus(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}
	var input shipperStatusInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	shipper, err := c.repo.SetStatus(types.SnowflakeID(id), input.Status)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Shipper status updated", "data": shipper})
}

type shipperLockInput struct {
	Locked bool `json:"locked"`
}

func (c *ShipperController) LockShipper(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}
	var input shipperLockInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	shipper, err := c.repo.SetLock(types.SnowflakeID(id), input.Locked)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Shipper lock updated", "data": shipper})
}
