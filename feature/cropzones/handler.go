package cropzones

import (
	"errors"

	"catalog-sync/core/logger"
	"catalog-sync/core/snapshot"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for snapshots and their crop zones.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the snapshot routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/snapshots")
	group.Get("/", h.HandleListSnapshots)
	group.Get("/:name/cropzones", h.HandleGetCropZones)
}

// HandleListSnapshots returns the names of the available snapshots.
func (h *Handler) HandleListSnapshots(c *fiber.Ctx) error {
	names, err := h.service.Snapshots(c.Context())
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Listing snapshots failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"snapshots": names})
}

// HandleGetCropZones returns the crop zones of a snapshot grouped by grower and farm.
// Query parameters grower, farm, field and crop filter by reference id, season by
// crop season and where by expression.
func (h *Handler) HandleGetCropZones(c *fiber.Ctx) error {
	name := c.Params("name")
	l := logger.WithRayID(h.service.logger, c)

	f := Filter{
		GrowerID:   c.QueryInt("grower"),
		FarmID:     c.QueryInt("farm"),
		FieldID:    c.QueryInt("field"),
		CropID:     c.QueryInt("crop"),
		CropSeason: c.Query("season"),
		Where:      c.Query("where"),
	}

	groups, err := h.service.ActiveCropZones(c.Context(), name, f)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"snapshot": name, "groups": groups})
	case errors.Is(err, snapshot.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, ErrInvalidFilter):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Crop zone query failed", zap.String("snapshot", name), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
