package utils

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const defaultPageSize = 20

// ParsePage reads page/size query params. Page is zero-based, matching the
// front end's table components.
func ParsePage(ctx *fiber.Ctx) (int, int) {
	page := ctx.QueryInt("page", 0)
	size := ctx.QueryInt("size", defaultPageSize)
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 200 {
		size = defaultPageSize
	}
	return page, size
}

func Paginate(page, size int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(page * size).Limit(size)
	}
}

func PagedResponse(data interface{}, page, size int, total int64) fiber.Map {
	totalPages := int64(0)
	if size > 0 {
		totalPages = (total + int64(size) - 1) / int64(size)
	}
	return fiber.Map{
		"success":     true,
		"data":        data,
		"page":        page,
		"size":        size,
		"total_rows":  total,
		"total_pages": totalPages,
	}
}
