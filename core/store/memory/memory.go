package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"catalog-sync/core/identifier"
	"catalog-sync/core/store"

	"github.com/google/uuid"
)

type table struct {
	rows []store.Entity
	byID map[uuid.UUID]store.Entity
}

// Store is an in-memory store.Store. It is safe for concurrent use.
// Rows are copied on the way in and out, as a database would.
type Store struct {
	mu       sync.RWMutex
	tables   map[store.Kind]*table
	registry *Registry
	runs     *RunLog
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		tables:   make(map[store.Kind]*table),
		registry: NewRegistry(),
		runs:     &RunLog{},
	}
}

func (s *Store) table(kind store.Kind) *table {
	t, ok := s.tables[kind]
	if !ok {
		t = &table{byID: make(map[uuid.UUID]store.Entity)}
		s.tables[kind] = t
	}
	return t
}

func (s *Store) Insert(ctx context.Context, e store.Entity) (uuid.UUID, error) {
	if _, err := store.New(e.Kind()); err != nil {
		return uuid.Nil, err
	}
	id := uuid.New()
	e.SetLocalID(id)
	if b, ok := e.(interface{ SetCreatedAt(time.Time) }); ok {
		b.SetCreatedAt(time.Now())
	}
	store.PrepareInsert(e)
	row := store.Clone(e)

	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.table(e.Kind())
	t.rows = append(t.rows, row)
	t.byID[id] = row
	return id, nil
}

func (s *Store) FindByLocalID(ctx context.Context, kind store.Kind, id uuid.UUID) (store.Entity, error) {
	if _, err := store.New(kind); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[kind]
	if !ok {
		return nil, nil
	}
	e, ok := t.byID[id]
	if !ok {
		return nil, nil
	}
	return store.Clone(e), nil
}

func (s *Store) FindByExternalIdentifiers(ctx context.Context, kind store.Kind, ids []identifier.ExternalIdentifier) (store.Entity, error) {
	id, ok, err := s.registry.Lookup(ctx, kind, ids)
	if err != nil || !ok {
		return nil, err
	}
	return s.FindByLocalID(ctx, kind, id)
}

func (s *Store) FindByName(ctx context.Context, kind store.Kind, name string) (store.Entity, error) {
	if _, err := store.New(kind); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[kind]
	if !ok {
		return nil, nil
	}
	key := store.FoldName(name)
	for _, e := range t.rows {
		if store.FoldName(e.DisplayName()) == key {
			return store.Clone(e), nil
		}
	}
	return nil, nil
}

func (s *Store) List(ctx context.Context, kind store.Kind) ([]store.Entity, error) {
	if _, err := store.New(kind); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[kind]
	if !ok {
		return []store.Entity{}, nil
	}
	out := make([]store.Entity, len(t.rows))
	for i, e := range t.rows {
		out[i] = store.Clone(e)
	}
	return out, nil
}

func (s *Store) Clear(ctx context.Context, kind store.Kind) error {
	if _, err := store.New(kind); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.tables, kind)
	s.mu.Unlock()
	s.registry.clear(kind)
	return nil
}

func (s *Store) Registry() store.Registry { return s.registry }

func (s *Store) Runs() store.RunLog { return s.runs }

type kindRegistry struct {
	// order holds local ids by first registration.
	order   map[uuid.UUID]int
	entries map[uuid.UUID][]identifier.ExternalIdentifier
	owner   map[identifier.Key]uuid.UUID
}

// Registry is an in-memory store.Registry.
type Registry struct {
	mu    sync.RWMutex
	kinds map[store.Kind]*kindRegistry
	next  int
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[store.Kind]*kindRegistry)}
}

func (r *Registry) Record(ctx context.Context, kind store.Kind, localID uuid.UUID, ids []identifier.ExternalIdentifier) (int, error) {
	if _, err := store.New(kind); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	kr, ok := r.kinds[kind]
	if !ok {
		kr = &kindRegistry{
			order:   make(map[uuid.UUID]int),
			entries: make(map[uuid.UUID][]identifier.ExternalIdentifier),
			owner:   make(map[identifier.Key]uuid.UUID),
		}
		r.kinds[kind] = kr
	}

	added := 0
	for _, id := range ids {
		k := id.Key()
		if _, taken := kr.owner[k]; taken {
			continue
		}
		if _, seen := kr.order[localID]; !seen {
			kr.order[localID] = r.next
			r.next++
		}
		kr.owner[k] = localID
		kr.entries[localID] = append(kr.entries[localID], id)
		added++
	}
	return added, nil
}

func (r *Registry) Lookup(ctx context.Context, kind store.Kind, ids []identifier.ExternalIdentifier) (uuid.UUID, bool, error) {
	if _, err := store.New(kind); err != nil {
		return uuid.Nil, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	kr, ok := r.kinds[kind]
	if !ok {
		return uuid.Nil, false, nil
	}
	var (
		best  uuid.UUID
		found bool
	)
	for _, id := range ids {
		owner, ok := kr.owner[id.Key()]
		if !ok {
			continue
		}
		if !found || kr.order[owner] < kr.order[best] {
			best, found = owner, true
		}
	}
	return best, found, nil
}

func (r *Registry) Identifiers(ctx context.Context, kind store.Kind, localID uuid.UUID) ([]identifier.ExternalIdentifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kr, ok := r.kinds[kind]
	if !ok {
		return nil, nil
	}
	return append([]identifier.ExternalIdentifier(nil), kr.entries[localID]...), nil
}

func (r *Registry) clear(kind store.Kind) {
	r.mu.Lock()
	delete(r.kinds, kind)
	r.mu.Unlock()
}

// RunLog is an in-memory store.RunLog.
type RunLog struct {
	mu   sync.Mutex
	runs []store.ImportRun
}

func (l *RunLog) Append(ctx context.Context, run *store.ImportRun) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	l.mu.Lock()
	l.runs = append(l.runs, *run)
	l.mu.Unlock()
	return nil
}

func (l *RunLog) Recent(ctx context.Context, limit int) ([]store.ImportRun, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := append([]store.ImportRun(nil), l.runs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
