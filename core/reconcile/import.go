package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"catalog-sync/core/snapshot"
	"catalog-sync/core/store"

	"go.uber.org/zap"
)

// Import resolves the entities selected by scope. Entities that fail with an
// isolated error (a malformed own-source identifier) are recorded in the summary
// and skipped; any other error stops the run and is returned with the partial summary.
func (e *Engine) Import(ctx context.Context, snap *snapshot.Snapshot, scope Scope) (*Summary, error) {
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	started := time.Now()
	sess := e.NewSession(snapshot.NewIndex(snap), scope)

	for _, target := range targets(snap, scope) {
		if err := ctx.Err(); err != nil {
			return sess.summary, err
		}
		ref := target.ref
		if _, err := sess.Resolve(ctx, target.kind, &ref); err != nil {
			if !isolated(err) {
				return sess.summary, fmt.Errorf("import aborted at %s #%d: %w", target.kind, ref, err)
			}
			sess.fail(target.kind, ref, err)
			e.logger.Warn("Skipped entity",
				zap.String("kind", string(target.kind)),
				zap.Int("ref", ref),
				zap.Error(err),
			)
		}
	}

	inserted, matched, failed := sess.summary.Totals()
	e.logger.Info("Import finished",
		zap.String("scope", string(scope)),
		zap.Int("inserted", inserted),
		zap.Int("matched", matched),
		zap.Int("failed", failed),
		zap.Duration("took", time.Since(started)),
	)
	return sess.summary, nil
}

// ImportCropZones resolves every crop zone of snap, inserting parents as needed.
func (e *Engine) ImportCropZones(ctx context.Context, snap *snapshot.Snapshot) (*Summary, error) {
	return e.Import(ctx, snap, ScopeCropZones)
}

// ImportCatalog resolves every entity of snap, parents first.
func (e *Engine) ImportCatalog(ctx context.Context, snap *snapshot.Snapshot) (*Summary, error) {
	return e.Import(ctx, snap, ScopeCatalog)
}

func isolated(err error) bool {
	return errors.Is(err, ErrMalformedIdentifier)
}

func (s *Session) fail(kind store.Kind, ref int, err error) {
	s.summary.count(kind, OutcomeFailed)
	s.summary.Failures = append(s.summary.Failures, Failure{Kind: kind, ReferenceID: ref, Error: err.Error()})
	if s.engine.observer != nil {
		s.engine.observer.Observe(kind, OutcomeFailed)
	}
}

type target struct {
	kind store.Kind
	ref  int
}

func targets(snap *snapshot.Snapshot, scope Scope) []target {
	var out []target
	add := func(kind store.Kind, ref int) { out = append(out, target{kind: kind, ref: ref}) }

	if scope == ScopeCatalog {
		for _, g := range snap.Growers {
			add(store.KindOperatingUnit, g.ID.ReferenceID)
		}
		for _, f := range snap.Farms {
			add(store.KindFarm, f.ID.ReferenceID)
		}
		for _, f := range snap.Fields {
			add(store.KindField, f.ID.ReferenceID)
		}
		for _, c := range snap.Crops {
			add(store.KindCrop, c.ID.ReferenceID)
		}
	}
	for _, z := range snap.CropZones {
		add(store.KindManagementZone, z.ID.ReferenceID)
	}
	return out
}
