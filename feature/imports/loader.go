package imports

import (
	"catalog-sync/core/metrics"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/snapshot"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new imports feature.
func NewFeature(engine *reconcile.Engine, snapshots snapshot.Provider, m *metrics.Metrics, logger *zap.Logger) *Feature {
	svc := NewService(engine, snapshots, m, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Service returns the feature's import service.
func (f *Feature) Service() *Service {
	return f.service
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "imports"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
