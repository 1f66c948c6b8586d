package handler

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"regionalgeo/internal/geodb"
	"regionalgeo/internal/model"
	"regionalgeo/internal/status"
)

type GeoService interface {
	Lookup(ctx context.Context, ip string) (*model.Envelope, error)
	ClearCache(ctx context.Context, ip string) error
	Reject(ip string, c status.Code) *model.Envelope
	Statuses() map[status.Code]string
	StatusMessage(code string) (string, bool)
}

type Handler struct {
	service GeoService
	regions RegionStore
	domains []string
	logger  *zap.Logger
}

// NewHandler builds the HTTP API. regions may be nil when the region table is
// not writable. A non-empty domains list restricts lookups to requests whose
// Origin or Referer belongs to one of them.
func NewHandler(service GeoService, regions RegionStore, domains []string, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		regions: regions,
		domains: domains,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/v1/lookup/:ip?", h.LookupIP)
	app.Delete("/api/v1/lookup/:ip", h.ClearCache)
	app.Get("/api/v1/statuses", h.ListStatuses)
	app.Get("/api/v1/statuses/:code", h.GetStatus)
	app.Get("/api/v1/health", h.HealthCheck)

	if h.regions != nil {
		app.Get("/api/v1/regions", h.ListRegions)
		app.Get("/api/v1/regions/:code", h.GetRegion)
		app.Put("/api/v1/regions/:code", h.SaveRegion)
		app.Delete("/api/v1/regions/:code", h.DeleteRegion)
	}
}

func (h *Handler) LookupIP(c *fiber.Ctx) error {
	ip := addressParam(c)
	if ip == "" {
		return c.Status(fiber.StatusBadRequest).JSON(h.service.Reject(ip, status.IPAddressInvalid))
	}

	if !h.registered(c) {
		return c.Status(fiber.StatusForbidden).JSON(h.service.Reject(ip, status.DomainRegistrationRequired))
	}

	env, err := h.service.Lookup(c.Context(), ip)
	if err != nil {
		h.logger.Error("IP lookup failed",
			zap.String("ip", ip),
			zap.Error(err))

		if errors.Is(err, geodb.ErrMissing) {
			return c.Status(fiber.StatusInternalServerError).JSON(model.Error{
				Message: "Geo database is not available",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(model.Error{
			Message: "Failed to lookup IP address",
		})
	}

	return c.Status(httpStatus(env.Status.Code)).JSON(env)
}

func (h *Handler) ClearCache(c *fiber.Ctx) error {
	ip := addressParam(c)
	if err := h.service.ClearCache(c.Context(), ip); err != nil {
		h.logger.Error("clear cache failed",
			zap.String("ip", ip),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(model.Error{
			Message: "Failed to clear cache",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *Handler) ListStatuses(c *fiber.Ctx) error {
	return c.JSON(h.service.Statuses())
}

func (h *Handler) GetStatus(c *fiber.Ctx) error {
	code := c.Params("code")
	msg, ok := h.service.StatusMessage(code)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(model.Error{
			Message: "Unknown status code: " + code,
		})
	}
	return c.JSON(fiber.Map{
		"code":    strings.ToUpper(code),
		"message": msg,
	})
}

func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
	})
}

// registered reports whether the caller's site is allowed to use the API.
func (h *Handler) registered(c *fiber.Ctx) bool {
	if len(h.domains) == 0 {
		return true
	}

	ref := c.Get(fiber.HeaderOrigin)
	if ref == "" {
		ref = c.Get(fiber.HeaderReferer)
	}
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return false
	}

	for _, d := range h.domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func addressParam(c *fiber.Ctx) string {
	raw := c.Params("ip")
	if ip, err := url.PathUnescape(raw); err == nil {
		raw = ip
	}
	return strings.TrimSpace(raw)
}

func httpStatus(code string) int {
	switch status.Code(code) {
	case status.Success, status.SuccessCached:
		return fiber.StatusOK
	case status.IPAddressInvalid:
		return fiber.StatusBadRequest
	case status.IPAddressReserved:
		return fiber.StatusUnprocessableEntity
	case status.IPAddressNotFound:
		return fiber.StatusNotFound
	case status.DomainRegistrationRequired:
		return fiber.StatusForbidden
	case status.GeoIPMissing:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
