package utils

import (
	"inventory-app/apperr"

	"github.com/gofiber/fiber/v2"
)

// ErrorJSON renders a workflow error with the status its category maps to.
func ErrorJSON(ctx *fiber.Ctx, err error) error {
	return ctx.Status(apperr.StatusCode(err)).JSON(fiber.Map{
		"success": false,
		"error":   err.Error(),
	})
}
