package imports

import (
	"errors"

	"catalog-sync/core/logger"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/snapshot"
	"catalog-sync/core/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for imports and store maintenance.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the import routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/imports")
	group.Get("/", h.HandleListRuns)
	group.Post("/:name", h.HandleImport)

	app.Delete("/store/:kind", h.HandleClearKind)
}

// HandleImport reconciles the named snapshot.
// Query parameter scope selects cropzones (default) or catalog; reimport_zones=true
// clears management zones first.
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	name := c.Params("name")
	l := logger.WithRayID(h.service.logger, c)

	scope, err := reconcile.ParseScope(c.Query("scope"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var res *Result
	if c.QueryBool("reimport_zones") {
		res, err = h.service.ReimportZones(c.Context(), name)
	} else {
		res, err = h.service.Import(c.Context(), name, scope)
	}

	switch {
	case err == nil:
		l.Info("Import completed", zap.String("snapshot", name), zap.String("run", res.Run.ID.String()))
		return c.JSON(res)
	case errors.Is(err, snapshot.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		l.Error("Import failed", zap.String("snapshot", name), zap.Error(err))
		body := fiber.Map{"error": err.Error()}
		if res != nil {
			body["run"] = res.Run
			body["summary"] = res.Summary
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}

// HandleListRuns returns recent import runs. Query parameter limit defaults to 20.
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	runs, err := h.service.Runs(c.Context(), c.QueryInt("limit", 20))
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Listing import runs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"runs": runs})
}

// HandleClearKind deletes every local entity of a kind and its registry entries.
func (h *Handler) HandleClearKind(c *fiber.Ctx) error {
	kind, err := store.ParseKind(c.Params("kind"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.service.Clear(c.Context(), kind); err != nil {
		logger.WithRayID(h.service.logger, c).Error("Clear failed", zap.String("kind", string(kind)), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
