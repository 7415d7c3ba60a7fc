package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func RequestLogger(ctx *fiber.Ctx) error {
	start := time.Now()
	err := ctx.Next()

	entry := logrus.WithFields(logrus.Fields{
		"method":  ctx.Method(),
		"path":    ctx.Path(),
		"status":  ctx.Response().StatusCode(),
		"latency": time.Since(start).String(),
	})
	if err != nil {
		entry.WithError(err).Error("request failed")
		return err
	}
	entry.Info("request")
	return nil
}
