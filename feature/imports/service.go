package imports

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"catalog-sync/core/metrics"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/snapshot"
	"catalog-sync/core/store"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Result is a finished import run together with its summary.
type Result struct {
	Run     *store.ImportRun   `json:"run"`
	Summary *reconcile.Summary `json:"summary"`
}

// Service runs imports against one store. Runs are serialized.
type Service struct {
	mu        sync.Mutex
	engine    *reconcile.Engine
	snapshots snapshot.Provider
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewService creates a new import service. m may be nil.
func NewService(engine *reconcile.Engine, snapshots snapshot.Provider, m *metrics.Metrics, logger *zap.Logger) *Service {
	return &Service{engine: engine, snapshots: snapshots, metrics: m, logger: logger}
}

// Import loads the named snapshot and reconciles it with scope.
func (s *Service) Import(ctx context.Context, name string, scope reconcile.Scope) (*Result, error) {
	snap, err := s.snapshots.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.ImportSnapshot(ctx, name, snap, scope)
}

// ImportSnapshot reconciles snap and records the run. An aborted run is
// recorded too, and its partial result is returned with the error.
func (s *Service) ImportSnapshot(ctx context.Context, name string, snap *snapshot.Snapshot, scope reconcile.Scope) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.run(ctx, name, snap, scope)
}

// ReimportZones clears every management zone, then imports the named snapshot
// with crop zone scope. Parents already in the store are matched, not inserted.
func (s *Service) ReimportZones(ctx context.Context, name string) (*Result, error) {
	snap, err := s.snapshots.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Store().Clear(ctx, store.KindManagementZone); err != nil {
		return nil, err
	}
	s.logger.Info("Cleared management zones before re-import", zap.String("snapshot", name))
	return s.run(ctx, name, snap, reconcile.ScopeCropZones)
}

func (s *Service) run(ctx context.Context, name string, snap *snapshot.Snapshot, scope reconcile.Scope) (*Result, error) {
	started := time.Now()
	summary, runErr := s.engine.Import(ctx, snap, scope)
	finished := time.Now()

	if s.metrics != nil {
		s.metrics.ObserveImport(scope, runErr, finished.Sub(started))
	}
	if summary == nil {
		return nil, runErr
	}

	raw, err := json.Marshal(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode summary: %w", err)
	}
	inserted, matched, failed := summary.Totals()
	run := &store.ImportRun{
		Snapshot:   name,
		Scope:      string(scope),
		Inserted:   inserted,
		Matched:    matched,
		Failed:     failed,
		Summary:    datatypes.JSON(raw),
		StartedAt:  started,
		FinishedAt: finished,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}

	if err := s.engine.Store().Runs().Append(ctx, run); err != nil {
		s.logger.Error("Failed to record import run", zap.String("snapshot", name), zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}
	return &Result{Run: run, Summary: summary}, runErr
}

// Clear deletes every local entity of kind and its registry entries.
func (s *Service) Clear(ctx context.Context, kind store.Kind) error {
	if _, err := store.ParseKind(string(kind)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.Store().Clear(ctx, kind); err != nil {
		return err
	}
	s.logger.Info("Cleared kind", zap.String("kind", string(kind)))
	return nil
}

// Runs returns the most recent import runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]store.ImportRun, error) {
	return s.engine.Store().Runs().Recent(ctx, limit)
}
