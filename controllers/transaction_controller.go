package controllers

import (
	"time"

	"inventory-app/middleware"
	"inventory-app/repositories"
	"inventory-app/types"
	"inventory-app/utils"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TransactionController struct {
	DB       *gorm.DB
	ledger   *repositories.LedgerRepository
	validate *validator.Validate
}

func NewTransactionController(db *gorm.DB) *TransactionController {
	return &TransactionController{
		DB:       db,
		ledger:   repositories.NewLedgerRepository(db),
		validate: validator.New(),
	}
}

type createTransactionInput struct {
	WarehouseID     types.SnowflakeID   `json:"warehouse_id" validate:"required"`
	VariantID       int64               `json:"variant_id" validate:"required"`
	TransactionType string              `json:"transaction_type" validate:"required"`
	Quantity        int                 `json:"quantity" validate:"required"`
	PricePerItem    decimal.NullDecimal `json:"price_per_item"`
	Note            string              `json:"note"`
	ReferenceType   string              `json:"reference_type"`
	ReferenceCode   string              `json:"reference_code"`
}

func (c *TransactionController) CreateTransaction(ctx *fiber.Ctx) error {
	var input createTransactionInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	txn, err := c.ledger.CreateTransaction(repositories.CreateTransactionInput{
		WarehouseID:     input.WarehouseID,
		VariantID:       input.VariantID,
		TransactionType: input.TransactionType,
		Quantity:        input.Quantity,
		PricePerItem:    input.PricePerItem,
		Note:            input.Note,
		ReferenceType:   input.ReferenceType,
		ReferenceCode:   input.ReferenceCode,
		CreatedBy:       middleware.UserID(ctx),
	})
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Transaction created successfully", "data": txn})
}

type updateStatusInput struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

func (c *TransactionController) UpdateTransactionStatus(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}
	var input updateStatusInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	txn, err := c.ledger.UpdateStatus(types.SnowflakeID(id), input.Status, input.Note, middleware.UserID(ctx))
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Transaction status updated", "data": txn})
}

func (c *TransactionController) GetAllTransactions(ctx *fiber.Ctx) error {
	page, size := utils.ParsePage(ctx)
	filter := repositories.TransactionFilter{
		Status:      ctx.Query("status"),
		Type:        ctx.Query("transaction_type"),
		Keyword:     ctx.Query("keyword"),
		KeywordType: ctx.Query("keyword_type"),
		WarehouseID: types.SnowflakeID(ctx.QueryInt("warehouse_id")),
		VariantID:   int64(ctx.QueryInt("variant_id")),
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

	txns, total, err := c.ledger.ListTransactions(filter, page, size)
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(utils.PagedResponse(txns, page, size, total))
}

func (c *TransactionController) GetTransactionByID(ctx *fiber.Ctx) error {
	id, err := ctx.ParamsInt("id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid ID"})
	}
	txn, err := c.ledger.GetTransaction(types.SnowflakeID(id))
	if err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Transaction found", "data": txn})
}

// Reservation contract endpoints, called by the order service.

type reserveOrderInput struct {
	OrderNumber string                     `json:"order_number" validate:"required"`
	Items       []repositories.ReserveItem `json:"items" validate:"required,min=1,dive"`
}

func (c *TransactionController) ReserveOrder(ctx *fiber.Ctx) error {
	var input reserveOrderInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := c.ledger.ReserveOrder(input.OrderNumber, input.Items, middleware.UserID(ctx)); err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Stock reserved for order " + input.OrderNumber})
}

type releaseOrderInput struct {
	OrderNumber string `json:"order_number" validate:"required"`
	Reason      string `json:"reason"`
}

func (c *TransactionController) ReleaseOrder(ctx *fiber.Ctx) error {
	var input releaseOrderInput
	if err := ctx.BodyParser(&input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := c.validate.Struct(input); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := c.ledger.ReleaseOrder(input.OrderNumber, input.Reason, middleware.UserID(ctx)); err != nil {
		return utils.ErrorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "message": "Reservation released for order " + input.OrderNumber})
}
