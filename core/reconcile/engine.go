package reconcile

import (
	"context"
	"errors"
	"fmt"

	"catalog-sync/core/identifier"
	"catalog-sync/core/snapshot"
	"catalog-sync/core/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Observer is notified of every resolution outcome.
type Observer interface {
	Observe(kind store.Kind, outcome Outcome)
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers o to receive resolution outcomes.
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observer = o }
}

// WithAdapter replaces the adapter for a.Kind(), e.g. to use a different heuristic.
func WithAdapter(a Adapter) Option {
	return func(e *Engine) { e.adapters[a.Kind()] = a }
}

// Engine resolves snapshot entities to local ids against one store.
// It is not safe to run two imports against the same store concurrently;
// the lookup-then-insert sequence is check-then-act.
type Engine struct {
	store     store.Store
	ownSource string
	adapters  map[store.Kind]Adapter
	logger    *zap.Logger
	observer  Observer
}

// NewEngine creates an engine with the default adapters.
func NewEngine(st store.Store, cfg Config, logger *zap.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		store:     st,
		ownSource: cfg.OwnSource,
		adapters:  make(map[store.Kind]Adapter),
		logger:    logger,
	}
	for _, a := range DefaultAdapters() {
		e.adapters[a.Kind()] = a
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the store the engine writes to.
func (e *Engine) Store() store.Store { return e.store }

// OwnSource returns the configured own-source value.
func (e *Engine) OwnSource() string { return e.ownSource }

type sessionKey struct {
	kind store.Kind
	ref  int
}

// Session resolves entities of one snapshot. Within a session a snapshot entity
// always maps to the same local id.
type Session struct {
	engine   *Engine
	index    *snapshot.Index
	resolved map[sessionKey]uuid.UUID
	summary  *Summary
}

// NewSession starts resolving against idx.
func (e *Engine) NewSession(idx *snapshot.Index, scope Scope) *Session {
	return &Session{
		engine:   e,
		index:    idx,
		resolved: make(map[sessionKey]uuid.UUID),
		summary:  newSummary(scope),
	}
}

// Summary returns the running summary of the session.
func (s *Session) Summary() *Summary { return s.summary }

// Resolve returns the local id of the snapshot entity of kind with reference id ref,
// inserting it (and any missing parents) when no tier matches.
// A nil ref or a reference to an entity missing from the snapshot yields uuid.Nil.
func (s *Session) Resolve(ctx context.Context, kind store.Kind, ref *int) (uuid.UUID, error) {
	if ref == nil {
		return uuid.Nil, nil
	}
	adapter, ok := s.engine.adapters[kind]
	if !ok {
		return uuid.Nil, fmt.Errorf("%w: %s", ErrNoAdapter, kind)
	}

	key := sessionKey{kind: kind, ref: *ref}
	if id, ok := s.resolved[key]; ok {
		return id, nil
	}

	ent, ok := adapter.Lookup(s.index, ref)
	if !ok {
		s.engine.logger.Debug("Reference not in snapshot",
			zap.String("kind", string(kind)), zap.Int("ref", *ref))
		return uuid.Nil, nil
	}

	id, outcome, err := s.resolve(ctx, adapter, ent)
	if err != nil {
		var ee *EntityError
		if !errors.As(err, &ee) {
			err = &EntityError{Kind: kind, ReferenceID: *ref, Err: err}
		}
		return uuid.Nil, err
	}

	s.resolved[key] = id
	s.summary.count(kind, outcome)
	if s.engine.observer != nil {
		s.engine.observer.Observe(kind, outcome)
	}
	s.engine.logger.Debug("Resolved entity",
		zap.String("kind", string(kind)),
		zap.Int("ref", *ref),
		zap.String("outcome", string(outcome)),
		zap.String("local_id", id.String()),
	)
	return id, nil
}

func (s *Session) resolve(ctx context.Context, adapter Adapter, ent snapshot.Entity) (uuid.UUID, Outcome, error) {
	kind := adapter.Kind()
	st := s.engine.store
	ids := ent.Identity().UniqueIDs

	if own, ok := identifier.Own(ids, s.engine.ownSource); ok {
		localID, err := identifier.ParseLocalID(own)
		if err != nil {
			return uuid.Nil, "", err
		}
		found, err := st.FindByLocalID(ctx, kind, localID)
		if err != nil {
			return uuid.Nil, "", err
		}
		if found != nil {
			return localID, OutcomeMatchedOwn, nil
		}
		// An own id the store does not know falls through to insert. The new
		// row gets a fresh id, so later imports of the same snapshot insert again.
		s.engine.logger.Warn("Own-source id unknown to store",
			zap.String("kind", string(kind)),
			zap.String("local_id", localID.String()),
		)
	} else {
		if len(ids) > 0 {
			found, err := st.FindByExternalIdentifiers(ctx, kind, ids)
			if err != nil {
				return uuid.Nil, "", err
			}
			if found != nil {
				return found.LocalID(), OutcomeMatchedRegistry, nil
			}
		}
		found, err := adapter.Match(ctx, st, ent)
		if err != nil {
			return uuid.Nil, "", err
		}
		if found != nil {
			return found.LocalID(), OutcomeMatchedHeuristic, nil
		}
	}

	local, err := adapter.Build(ctx, s, ent)
	if err != nil {
		return uuid.Nil, "", err
	}
	id, err := st.Insert(ctx, local)
	if err != nil {
		return uuid.Nil, "", err
	}
	if foreign := identifier.Foreign(ids, s.engine.ownSource); len(foreign) > 0 {
		if _, err := st.Registry().Record(ctx, kind, id, foreign); err != nil {
			return uuid.Nil, "", err
		}
	}

	s.summary.Inserted = append(s.summary.Inserted, InsertedObject{
		Kind:        kind,
		LocalID:     id,
		Name:        local.DisplayName(),
		ReferenceID: ent.Identity().ReferenceID,
	})
	return id, OutcomeInserted, nil
}
