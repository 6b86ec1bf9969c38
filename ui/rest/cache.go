package rest

import (
	domainMedia "github.com/adlytic/meta-ads-mcp/domains/media"
	"github.com/adlytic/meta-ads-mcp/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Cache struct {
	Service domainMedia.IMediaUsecase
}

func InitRestCache(app fiber.Router, service domainMedia.IMediaUsecase) Cache {
	rest := Cache{Service: service}
	app.Get("/cache/stats", rest.GetStats)
	app.Get("/cache/search", rest.Search)
	app.Post("/cache/cleanup", rest.Cleanup)

	return rest
}

func (handler *Cache) GetStats(c *fiber.Ctx) error {
	stats, err := handler.Service.Stats(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache stats retrieved",
		Results: stats,
	})
}

func (handler *Cache) Search(c *fiber.Ctx) error {
	filter := domainMedia.SearchFilter{
		Brand:   c.Query("brand_hint"),
		Kind:    domainMedia.Kind(c.Query("media_kind")),
		Keyword: c.Query("keyword"),
		Limit:   c.QueryInt("limit"),
	}

	entries, err := handler.Service.SearchCached(c.UserContext(), filter)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cached media retrieved",
		Results: entries,
	})
}

func (handler *Cache) Cleanup(c *fiber.Ctx) error {
	var body struct {
		MaxAgeDays int   `json:"max_age_days"`
		MaxSizeMB  int64 `json:"max_size_mb"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "BAD_REQUEST",
			Message: err.Error(),
		})
	}

	result, err := handler.Service.Cleanup(c.UserContext(), body.MaxAgeDays, body.MaxSizeMB)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Cache cleanup completed",
		Results: result,
	})
}
