package reconcile

import (
	"context"

	"catalog-sync/core/snapshot"
	"catalog-sync/core/store"
	"catalog-sync/core/utils"
)

// Adapter holds the kind-specific half of a resolution.
// The engine owns the tier order; adapters only say how to find, match and build.
type Adapter interface {
	// Kind returns the local kind this adapter resolves.
	Kind() store.Kind

	// Lookup returns the snapshot entity with the given reference id.
	Lookup(idx *snapshot.Index, ref *int) (snapshot.Entity, bool)

	// Match is the heuristic tier. It only runs for entities without an own-source
	// identifier whose foreign identifiers are not registered. A nil entity is a miss.
	Match(ctx context.Context, st store.Store, e snapshot.Entity) (store.Entity, error)

	// Build maps e to a new, unsaved local entity. Parents are resolved through s,
	// which may insert them.
	Build(ctx context.Context, s *Session, e snapshot.Entity) (store.Entity, error)
}

// DefaultAdapters returns the adapters for every kind, matching by name.
func DefaultAdapters() []Adapter {
	return []Adapter{
		GrowerAdapter{},
		FarmAdapter{},
		FieldAdapter{},
		CropAdapter{},
		CropZoneAdapter{},
	}
}

// MatchByName finds the first local entity of kind whose name equals the entity label, ignoring case.
func MatchByName(ctx context.Context, st store.Store, kind store.Kind, e snapshot.Entity) (store.Entity, error) {
	return st.FindByName(ctx, kind, e.Label())
}

// GrowerAdapter resolves growers to operating units.
type GrowerAdapter struct{}

func (GrowerAdapter) Kind() store.Kind { return store.KindOperatingUnit }

func (GrowerAdapter) Lookup(idx *snapshot.Index, ref *int) (snapshot.Entity, bool) {
	g, ok := idx.Grower(ref)
	if !ok {
		return nil, false
	}
	return g, true
}

func (a GrowerAdapter) Match(ctx context.Context, st store.Store, e snapshot.Entity) (store.Entity, error) {
	return MatchByName(ctx, st, a.Kind(), e)
}

func (GrowerAdapter) Build(ctx context.Context, s *Session, e snapshot.Entity) (store.Entity, error) {
	g := e.(*snapshot.Grower)
	return &store.OperatingUnit{Name: g.Name}, nil
}

// FarmAdapter resolves farms.
type FarmAdapter struct{}

func (FarmAdapter) Kind() store.Kind { return store.KindFarm }

func (FarmAdapter) Lookup(idx *snapshot.Index, ref *int) (snapshot.Entity, bool) {
	f, ok := idx.Farm(ref)
	if !ok {
		return nil, false
	}
	return f, true
}

func (a FarmAdapter) Match(ctx context.Context, st store.Store, e snapshot.Entity) (store.Entity, error) {
	return MatchByName(ctx, st, a.Kind(), e)
}

func (FarmAdapter) Build(ctx context.Context, s *Session, e snapshot.Entity) (store.Entity, error) {
	f := e.(*snapshot.Farm)
	grower, err := s.Resolve(ctx, store.KindOperatingUnit, f.GrowerID)
	if err != nil {
		return nil, err
	}
	return &store.Farm{Name: f.Description, OperatingUnitID: grower}, nil
}

// FieldAdapter resolves fields.
type FieldAdapter struct{}

func (FieldAdapter) Kind() store.Kind { return store.KindField }

func (FieldAdapter) Lookup(idx *snapshot.Index, ref *int) (snapshot.Entity, bool) {
	f, ok := idx.Field(ref)
	if !ok {
		return nil, false
	}
	return f, true
}

func (a FieldAdapter) Match(ctx context.Context, st store.Store, e snapshot.Entity) (store.Entity, error) {
	return MatchByName(ctx, st, a.Kind(), e)
}

func (FieldAdapter) Build(ctx context.Context, s *Session, e snapshot.Entity) (store.Entity, error) {
	f := e.(*snapshot.Field)
	farm, err := s.Resolve(ctx, store.KindFarm, f.FarmID)
	if err != nil {
		return nil, err
	}
	return &store.Field{Name: f.Description, FarmID: farm, Acres: utils.Deref(f.Area)}, nil
}

// CropAdapter resolves crops.
type CropAdapter struct{}

func (CropAdapter) Kind() store.Kind { return store.KindCrop }

func (CropAdapter) Lookup(idx *snapshot.Index, ref *int) (snapshot.Entity, bool) {
	c, ok := idx.Crop(ref)
	if !ok {
		return nil, false
	}
	return c, true
}

func (a CropAdapter) Match(ctx context.Context, st store.Store, e snapshot.Entity) (store.Entity, error) {
	return MatchByName(ctx, st, a.Kind(), e)
}

func (CropAdapter) Build(ctx context.Context, s *Session, e snapshot.Entity) (store.Entity, error) {
	c := e.(*snapshot.Crop)
	return &store.Crop{Name: c.Name}, nil
}

// CropZoneAdapter resolves crop zones to management zones, matching on description.
type CropZoneAdapter struct{}

func (CropZoneAdapter) Kind() store.Kind { return store.KindManagementZone }

func (CropZoneAdapter) Lookup(idx *snapshot.Index, ref *int) (snapshot.Entity, bool) {
	z, ok := idx.CropZone(ref)
	if !ok {
		return nil, false
	}
	return z, true
}

func (a CropZoneAdapter) Match(ctx context.Context, st store.Store, e snapshot.Entity) (store.Entity, error) {
	return MatchByName(ctx, st, a.Kind(), e)
}

func (CropZoneAdapter) Build(ctx context.Context, s *Session, e snapshot.Entity) (store.Entity, error) {
	z := e.(*snapshot.CropZone)
	crop, err := s.Resolve(ctx, store.KindCrop, z.CropID)
	if err != nil {
		return nil, err
	}
	field, err := s.Resolve(ctx, store.KindField, z.FieldID)
	if err != nil {
		return nil, err
	}
	return &store.ManagementZone{
		Name:           z.Description,
		FieldID:        field,
		CropID:         crop,
		Acres:          utils.Deref(z.Area),
		ProductionYear: utils.SeasonYear(z.CropSeason),
	}, nil
}
