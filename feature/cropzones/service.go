package cropzones

import (
	"context"

	"catalog-sync/core/snapshot"

	"go.uber.org/zap"
)

// Service answers crop zone queries over snapshots.
type Service struct {
	cache  *snapshot.Cache
	logger *zap.Logger
}

// NewService creates a new crop zone service.
func NewService(cache *snapshot.Cache, logger *zap.Logger) *Service {
	return &Service{cache: cache, logger: logger}
}

// Snapshots lists the available snapshot names.
func (s *Service) Snapshots(ctx context.Context) ([]string, error) {
	return s.cache.Provider().List(ctx)
}

// Rows returns the filtered rows of the named snapshot, in snapshot order.
func (s *Service) Rows(ctx context.Context, name string, f Filter) ([]Row, error) {
	idx, err := s.cache.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	return f.Apply(BuildTree(idx))
}

// ActiveCropZones returns the filtered rows of the named snapshot grouped by grower and farm.
func (s *Service) ActiveCropZones(ctx context.Context, name string, f Filter) ([]Group, error) {
	rows, err := s.Rows(ctx, name, f)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Crop zones resolved", zap.String("snapshot", name), zap.Int("rows", len(rows)))
	return GroupRows(rows), nil
}
