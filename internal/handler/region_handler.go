package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"regionalgeo/internal/model"
)

type RegionStore interface {
	ByCountryCode(ctx context.Context, code string) (*model.Region, error)
	List(ctx context.Context) ([]model.Region, error)
	Save(ctx context.Context, region model.Region) error
	Delete(ctx context.Context, code string) (bool, error)
}

func (h *Handler) ListRegions(c *fiber.Ctx) error {
	regions, err := h.regions.List(c.Context())
	if err != nil {
		h.logger.Error("listing regions failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.Error{
			Message: "Failed to list regions",
		})
	}
	return c.JSON(regions)
}

func (h *Handler) GetRegion(c *fiber.Ctx) error {
	code := strings.ToUpper(c.Params("code"))
	region, err := h.regions.ByCountryCode(c.Context(), code)
	if err != nil {
		h.logger.Error("loading region failed", zap.String("country_code", code), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.Error{
			Message: "Failed to load region",
		})
	}
	if region == nil {
		return c.Status(fiber.StatusNotFound).JSON(model.Error{
			Message: "No region mapped for country " + code,
		})
	}
	return c.JSON(region)
}

func (h *Handler) SaveRegion(c *fiber.Ctx) error {
	code := strings.ToUpper(c.Params("code"))
	if len(code) != 2 {
		return c.Status(fiber.StatusBadRequest).JSON(model.Error{
			Message: "Country code must be two letters",
		})
	}

	var region model.Region
	if err := c.BodyParser(&region); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(model.Error{
			Message: "Invalid region body",
		})
	}
	region.CountryCode = code
	if region.Name == "" || region.RegionCode == "" || region.TimeZone == "" {
		return c.Status(fiber.StatusBadRequest).JSON(model.Error{
			Message: "name, region_code and time_zone are required",
		})
	}

	if err := h.regions.Save(c.Context(), region); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(model.Error{
			Message: "Failed to save region",
		})
	}
	return c.JSON(region)
}

func (h *Handler) DeleteRegion(c *fiber.Ctx) error {
	code := strings.ToUpper(c.Params("code"))
	removed, err := h.regions.Delete(c.Context(), code)
	if err != nil {
		h.logger.Error("deleting region failed", zap.String("country_code", code), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.Error{
			Message: "Failed to delete region",
		})
	}
	if !removed {
		return c.Status(fiber.StatusNotFound).JSON(model.Error{
			Message: "No region mapped for country " + code,
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
