package rest

import (
	"github.com/adlytic/meta-ads-mcp/config"
	"github.com/adlytic/meta-ads-mcp/core/database"
	"github.com/adlytic/meta-ads-mcp/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Health struct{}

func InitRestHealth(app fiber.Router) Health {
	handler := Health{}
	app.Get("/health", handler.GetStatus)

	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	dbStatus := "up"
	sqlDB, err := database.GetSQLDB()
	if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		dbStatus = "down"
	}

	status := 200
	code := "SUCCESS"
	if dbStatus != "up" {
		status = 503
		code = "SERVICE_UNAVAILABLE"
	}

	return c.Status(status).JSON(utils.ResponseData{
		Status:  status,
		Code:    code,
		Message: "Health status retrieved",
		Results: map[string]any{
			"version":  config.AppVersion,
			"database": dbStatus,
		},
	})
}
