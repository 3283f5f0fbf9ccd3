package reconcile_test

import (
	"context"
	"errors"
	"testing"

	"catalog-sync/core/database"
	"catalog-sync/core/identifier"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/snapshot"
	"catalog-sync/core/store"
	"catalog-sync/core/store/memory"
	"catalog-sync/core/store/sqlstore"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const ownSource = "http://catalog-sync.local/source"

var cfg = reconcile.Config{OwnSource: ownSource}

func pub(id string) identifier.ExternalIdentifier {
	return identifier.ExternalIdentifier{ID: id, IDType: identifier.IDTypeString, Source: "pub.example", SourceType: identifier.SourceTypeURI}
}

func own(id string) identifier.ExternalIdentifier {
	return identifier.ExternalIdentifier{ID: id, IDType: identifier.IDTypeUUID, Source: ownSource, SourceType: identifier.SourceTypeURI}
}

func cid(ref int, ids ...identifier.ExternalIdentifier) snapshot.CompoundIdentifier {
	return snapshot.CompoundIdentifier{ReferenceID: ref, UniqueIDs: ids}
}

func area(v float64) *float64 { return &v }

// fullChain is one grower, farm, field, crop and crop zone, all linked.
func fullChain() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Growers: []snapshot.Grower{{ID: cid(1, pub("g-1")), Name: "Acme"}},
		Farms:   []snapshot.Farm{{ID: cid(2, pub("f-1")), Description: "North", GrowerID: snapshot.Ref(1)}},
		Fields:  []snapshot.Field{{ID: cid(3, pub("l-1")), Description: "Back 40", FarmID: snapshot.Ref(2), Area: area(40)}},
		Crops:   []snapshot.Crop{{ID: cid(4, pub("c-1")), Name: "Corn"}},
		CropZones: []snapshot.CropZone{{
			ID:          cid(5, pub("z-1")),
			Description: "Back 40 2024",
			FieldID:     snapshot.Ref(3),
			CropID:      snapshot.Ref(4),
			Area:        area(38.5),
			CropSeason:  "2024",
		}},
	}
}

func countAll(t *testing.T, st store.Store) map[store.Kind]int {
	out := make(map[store.Kind]int)
	for _, k := range store.Kinds {
		rows, err := st.List(context.Background(), k)
		require.NoError(t, err)
		out[k] = len(rows)
	}
	return out
}

func TestImportCropZones_FullChain(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	engine := reconcile.NewEngine(st, cfg, zap.NewNop())

	summary, err := engine.ImportCropZones(ctx, fullChain())
	require.NoError(t, err)

	require.Len(t, summary.Inserted, 5)
	inserted, matched, failed := summary.Totals()
	assert.Equal(t, 5, inserted)
	assert.Zero(t, matched)
	assert.Zero(t, failed)

	ids := make(map[store.Kind]uuid.UUID)
	for _, o := range summary.Inserted {
		ids[o.Kind] = o.LocalID
	}

	zone, err := st.FindByLocalID(ctx, store.KindManagementZone, ids[store.KindManagementZone])
	require.NoError(t, err)
	mz := zone.(*store.ManagementZone)
	assert.Equal(t, "Back 40 2024", mz.Name)
	assert.Equal(t, ids[store.KindField], mz.FieldID)
	assert.Equal(t, ids[store.KindCrop], mz.CropID)
	assert.Equal(t, 2024, mz.ProductionYear)
	assert.InDelta(t, 38.5, mz.Acres, 1e-9)

	field, err := st.FindByLocalID(ctx, store.KindField, ids[store.KindField])
	require.NoError(t, err)
	assert.Equal(t, ids[store.KindFarm], field.(*store.Field).FarmID)
	assert.InDelta(t, 40.0, field.(*store.Field).Acres, 1e-9)

	farm, err := st.FindByLocalID(ctx, store.KindFarm, ids[store.KindFarm])
	require.NoError(t, err)
	assert.Equal(t, ids[store.KindOperatingUnit], farm.(*store.Farm).OperatingUnitID)

	registered, err := st.Registry().Identifiers(ctx, store.KindField, ids[store.KindField])
	require.NoError(t, err)
	assert.Equal(t, []identifier.ExternalIdentifier{pub("l-1")}, registered)
}

func TestImport_Idempotent(t *testing.T) {
	for _, scope := range []reconcile.Scope{reconcile.ScopeCropZones, reconcile.ScopeCatalog} {
		t.Run(string(scope), func(t *testing.T) {
			ctx := context.Background()
			st := memory.New()
			engine := reconcile.NewEngine(st, cfg, zap.NewNop())
			snap := fullChain()

			_, err := engine.Import(ctx, snap, scope)
			require.NoError(t, err)
			before := countAll(t, st)

			second, err := engine.Import(ctx, snap, scope)
			require.NoError(t, err)
			assert.Equal(t, before, countAll(t, st))
			assert.Empty(t, second.Inserted)
			assert.Equal(t, 1, second.Kind(store.KindManagementZone).MatchedRegistry)
		})
	}
}

func TestImport_ReimportAfterClearingZones(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	engine := reconcile.NewEngine(st, cfg, zap.NewNop())

	_, err := engine.ImportCropZones(ctx, fullChain())
	require.NoError(t, err)
	require.NoError(t, st.Clear(ctx, store.KindManagementZone))

	summary, err := engine.ImportCropZones(ctx, fullChain())
	require.NoError(t, err)
	require.Len(t, summary.Inserted, 1)
	assert.Equal(t, store.KindManagementZone, summary.Inserted[0].Kind)
	assert.Equal(t, 1, summary.Kind(store.KindField).MatchedRegistry)
	assert.Equal(t, 1, summary.Kind(store.KindCrop).MatchedRegistry)
}

func TestImportCatalog_UnknownOwnIdentifierReinserts(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	core, logs := observer.New(zapcore.WarnLevel)
	engine := reconcile.NewEngine(st, cfg, zap.New(core))

	stale := uuid.New()
	snap := &snapshot.Snapshot{Crops: []snapshot.Crop{{ID: cid(1, own(stale.String())), Name: "Corn"}}}

	for i := 0; i < 2; i++ {
		summary, err := engine.ImportCatalog(ctx, snap)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.Kind(store.KindCrop).Inserted)
	}

	assert.Equal(t, 2, countAll(t, st)[store.KindCrop], "each import inserts a new row")

	warned := logs.FilterMessage("Own-source id unknown to store").All()
	require.Len(t, warned, 2)
	assert.Equal(t, stale.String(), warned[0].ContextMap()["local_id"])
	assert.Equal(t, string(store.KindCrop), warned[0].ContextMap()["kind"])
}

func TestResolve_TierPrecedence(t *testing.T) {
	ctx := context.Background()

	t.Run("OwnIdentifierWinsOverName", func(t *testing.T) {
		st := memory.New()
		existing, err := st.Insert(ctx, &store.Crop{Name: "Wheat"})
		require.NoError(t, err)
		engine := reconcile.NewEngine(st, cfg, zap.NewNop())

		snap := &snapshot.Snapshot{Crops: []snapshot.Crop{{ID: cid(1, own(existing.String()), pub("c-9")), Name: "Barley"}}}
		sess := engine.NewSession(snapshot.NewIndex(snap), reconcile.ScopeCatalog)
		id, err := sess.Resolve(ctx, store.KindCrop, snapshot.Ref(1))
		require.NoError(t, err)
		assert.Equal(t, existing, id)
		assert.Equal(t, 1, sess.Summary().Kind(store.KindCrop).MatchedOwn)
	})

	t.Run("OwnIdentifierWinsOverRegistry", func(t *testing.T) {
		st := memory.New()
		a, err := st.Insert(ctx, &store.Crop{Name: "Wheat"})
		require.NoError(t, err)
		b, err := st.Insert(ctx, &store.Crop{Name: "Barley"})
		require.NoError(t, err)
		_, err = st.Registry().Record(ctx, store.KindCrop, b, []identifier.ExternalIdentifier{pub("c-1")})
		require.NoError(t, err)
		engine := reconcile.NewEngine(st, cfg, zap.NewNop())

		snap := &snapshot.Snapshot{Crops: []snapshot.Crop{{ID: cid(1, own(a.String()), pub("c-1")), Name: "Barley"}}}
		sess := engine.NewSession(snapshot.NewIndex(snap), reconcile.ScopeCatalog)
		id, err := sess.Resolve(ctx, store.KindCrop, snapshot.Ref(1))
		require.NoError(t, err)
		assert.Equal(t, a, id)
		summary := sess.Summary().Kind(store.KindCrop)
		assert.Equal(t, 1, summary.MatchedOwn)
		assert.Zero(t, summary.MatchedRegistry)
	})

	t.Run("UnknownOwnIdentifierInsertsWithoutHeuristic", func(t *testing.T) {
		st := memory.New()
		existing, err := st.Insert(ctx, &store.Crop{Name: "Corn"})
		require.NoError(t, err)
		engine := reconcile.NewEngine(st, cfg, zap.NewNop())

		snap := &snapshot.Snapshot{Crops: []snapshot.Crop{{ID: cid(1, own(uuid.NewString()), pub("c-1")), Name: "Corn"}}}
		sess := engine.NewSession(snapshot.NewIndex(snap), reconcile.ScopeCatalog)
		id, err := sess.Resolve(ctx, store.KindCrop, snapshot.Ref(1))
		require.NoError(t, err)
		assert.NotEqual(t, existing, id)
		assert.Equal(t, 1, sess.Summary().Kind(store.KindCrop).Inserted)

		registered, err := st.Registry().Identifiers(ctx, store.KindCrop, id)
		require.NoError(t, err)
		assert.Equal(t, []identifier.ExternalIdentifier{pub("c-1")}, registered, "own-source ids are never registered")
	})

	t.Run("RegistryWinsOverName", func(t *testing.T) {
		st := memory.New()
		registered, err := st.Insert(ctx, &store.OperatingUnit{Name: "Acme"})
		require.NoError(t, err)
		_, err = st.Insert(ctx, &store.OperatingUnit{Name: "Beta"})
		require.NoError(t, err)
		_, err = st.Registry().Record(ctx, store.KindOperatingUnit, registered, []identifier.ExternalIdentifier{pub("g-1")})
		require.NoError(t, err)
		engine := reconcile.NewEngine(st, cfg, zap.NewNop())

		snap := &snapshot.Snapshot{Growers: []snapshot.Grower{{ID: cid(1, pub("g-1")), Name: "Beta"}}}
		sess := engine.NewSession(snapshot.NewIndex(snap), reconcile.ScopeCatalog)
		id, err := sess.Resolve(ctx, store.KindOperatingUnit, snapshot.Ref(1))
		require.NoError(t, err)
		assert.Equal(t, registered, id)
		assert.Equal(t, 1, sess.Summary().Kind(store.KindOperatingUnit).MatchedRegistry)
	})

	t.Run("NameIsCaseInsensitive", func(t *testing.T) {
		st := memory.New()
		existing, err := st.Insert(ctx, &store.Farm{Name: "North"})
		require.NoError(t, err)
		engine := reconcile.NewEngine(st, cfg, zap.NewNop())

		snap := &snapshot.Snapshot{Farms: []snapshot.Farm{{ID: cid(7, pub("f-7")), Description: "NORTH"}}}
		sess := engine.NewSession(snapshot.NewIndex(snap), reconcile.ScopeCatalog)
		id, err := sess.Resolve(ctx, store.KindFarm, snapshot.Ref(7))
		require.NoError(t, err)
		assert.Equal(t, existing, id)
		assert.Equal(t, 1, sess.Summary().Kind(store.KindFarm).MatchedHeuristic)
	})
}

func TestResolve_MissingReferences(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	engine := reconcile.NewEngine(st, cfg, zap.NewNop())

	snap := &snapshot.Snapshot{
		CropZones: []snapshot.CropZone{{ID: cid(1), Description: "Orphan", CropID: snapshot.Ref(99), CropSeason: "Spring"}},
	}
	sess := engine.NewSession(snapshot.NewIndex(snap), reconcile.ScopeCropZones)

	id, err := sess.Resolve(ctx, store.KindManagementZone, nil)
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, id)

	id, err = sess.Resolve(ctx, store.KindManagementZone, snapshot.Ref(1))
	require.NoError(t, err)
	zone, err := st.FindByLocalID(ctx, store.KindManagementZone, id)
	require.NoError(t, err)
	mz := zone.(*store.ManagementZone)
	assert.Equal(t, uuid.Nil, mz.FieldID)
	assert.Equal(t, uuid.Nil, mz.CropID)
	assert.Zero(t, mz.ProductionYear)
	assert.Zero(t, mz.Acres)
}

func TestResolve_SessionReusesResolvedParents(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	engine := reconcile.NewEngine(st, cfg, zap.NewNop())

	snap := &snapshot.Snapshot{
		Fields: []snapshot.Field{{ID: cid(1), Description: ""}},
		CropZones: []snapshot.CropZone{
			{ID: cid(2), Description: "a", FieldID: snapshot.Ref(1)},
			{ID: cid(3), Description: "b", FieldID: snapshot.Ref(1)},
		},
	}
	summary, err := engine.ImportCropZones(ctx, snap)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Kind(store.KindField).Inserted)
	assert.Equal(t, 2, summary.Kind(store.KindManagementZone).Inserted)
	assert.Equal(t, 1, countAll(t, st)[store.KindField])
}

func TestImport_MalformedIdentifierIsIsolated(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	engine := reconcile.NewEngine(st, cfg, zap.NewNop())

	snap := &snapshot.Snapshot{
		Fields: []snapshot.Field{{ID: cid(1, own("not-a-uuid")), Description: "Broken"}},
		CropZones: []snapshot.CropZone{
			{ID: cid(2, own("also-bad")), Description: "bad zone"},
			{ID: cid(3), Description: "bad parent", FieldID: snapshot.Ref(1)},
			{ID: cid(4, pub("z-4")), Description: "good zone"},
		},
	}
	summary, err := engine.ImportCropZones(ctx, snap)
	require.NoError(t, err)

	require.Len(t, summary.Failures, 2)
	assert.Equal(t, 2, summary.Failures[0].ReferenceID)
	assert.Equal(t, 3, summary.Failures[1].ReferenceID)
	assert.Contains(t, summary.Failures[1].Error, "field #1")
	assert.Equal(t, 2, summary.Kind(store.KindManagementZone).Failed)
	assert.Equal(t, 1, summary.Kind(store.KindManagementZone).Inserted)

	sess := engine.NewSession(snapshot.NewIndex(snap), reconcile.ScopeCropZones)
	_, err = sess.Resolve(ctx, store.KindField, snapshot.Ref(1))
	var ee *reconcile.EntityError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, store.KindField, ee.Kind)
	assert.True(t, errors.Is(err, reconcile.ErrMalformedIdentifier))
}

type failingStore struct {
	*memory.Store
}

func (failingStore) Insert(ctx context.Context, e store.Entity) (uuid.UUID, error) {
	return uuid.Nil, errors.New("disk full")
}

func TestImport_StoreErrorAborts(t *testing.T) {
	engine := reconcile.NewEngine(failingStore{memory.New()}, cfg, zap.NewNop())
	summary, err := engine.ImportCropZones(context.Background(), fullChain())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NotNil(t, summary)
	assert.Empty(t, summary.Failures)
}

func TestImport_NoSnapshot(t *testing.T) {
	engine := reconcile.NewEngine(memory.New(), cfg, nil)
	_, err := engine.ImportCatalog(context.Background(), nil)
	assert.ErrorIs(t, err, reconcile.ErrNoSnapshot)
}

func TestImport_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	engine := reconcile.NewEngine(memory.New(), cfg, zap.NewNop())
	_, err := engine.ImportCropZones(ctx, fullChain())
	assert.ErrorIs(t, err, context.Canceled)
}

type countingObserver map[reconcile.Outcome]int

func (c countingObserver) Observe(kind store.Kind, outcome reconcile.Outcome) { c[outcome]++ }

// noHeuristic disables name matching for crops.
type noHeuristic struct{ reconcile.CropAdapter }

func (noHeuristic) Match(ctx context.Context, st store.Store, e snapshot.Entity) (store.Entity, error) {
	return nil, nil
}

func TestEngineOptions(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	obs := countingObserver{}
	engine := reconcile.NewEngine(st, cfg, zap.NewNop(), reconcile.WithObserver(obs), reconcile.WithAdapter(noHeuristic{}))

	snap := &snapshot.Snapshot{Crops: []snapshot.Crop{{ID: cid(1), Name: "Corn"}}}
	_, err := engine.ImportCatalog(ctx, snap)
	require.NoError(t, err)
	_, err = engine.ImportCatalog(ctx, snap)
	require.NoError(t, err)

	assert.Equal(t, 2, obs[reconcile.OutcomeInserted])
	assert.Equal(t, 2, countAll(t, st)[store.KindCrop])
}

func TestImport_SQLStore(t *testing.T) {
	ctx := context.Background()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	st := sqlstore.New(db)
	require.NoError(t, st.Migrate(ctx))
	engine := reconcile.NewEngine(st, cfg, zap.NewNop())

	first, err := engine.ImportCropZones(ctx, fullChain())
	require.NoError(t, err)
	assert.Len(t, first.Inserted, 5)

	second, err := engine.ImportCropZones(ctx, fullChain())
	require.NoError(t, err)
	assert.Empty(t, second.Inserted)
	assert.Equal(t, map[store.Kind]int{
		store.KindOperatingUnit:  1,
		store.KindFarm:           1,
		store.KindField:          1,
		store.KindCrop:           1,
		store.KindManagementZone: 1,
	}, countAll(t, st))
}

func TestParseScope(t *testing.T) {
	s, err := reconcile.ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, reconcile.ScopeCropZones, s)
	s, err = reconcile.ParseScope("catalog")
	require.NoError(t, err)
	assert.Equal(t, reconcile.ScopeCatalog, s)
	_, err = reconcile.ParseScope("everything")
	assert.Error(t, err)
}

func TestImport_UnidentifiedChainIsStable(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	engine := reconcile.NewEngine(st, cfg, zap.NewNop())

	snap := &snapshot.Snapshot{
		Growers:   []snapshot.Grower{{ID: cid(1)}},
		Farms:     []snapshot.Farm{{ID: cid(10), GrowerID: snapshot.Ref(1)}},
		Fields:    []snapshot.Field{{ID: cid(100), FarmID: snapshot.Ref(10)}},
		Crops:     []snapshot.Crop{{ID: cid(5), Name: "Corn"}},
		CropZones: []snapshot.CropZone{{ID: cid(1000), FieldID: snapshot.Ref(100), CropID: snapshot.Ref(5), Area: area(80)}},
	}

	resolveAll := func() map[store.Kind]uuid.UUID {
		sess := engine.NewSession(snapshot.NewIndex(snap), reconcile.ScopeCatalog)
		out := make(map[store.Kind]uuid.UUID)
		for kind, ref := range map[store.Kind]int{
			store.KindManagementZone: 1000,
			store.KindField:          100,
			store.KindFarm:           10,
			store.KindOperatingUnit:  1,
			store.KindCrop:           5,
		} {
			id, err := sess.Resolve(ctx, kind, snapshot.Ref(ref))
			require.NoError(t, err)
			out[kind] = id
		}
		return out
	}

	first, err := engine.ImportCropZones(ctx, snap)
	require.NoError(t, err)
	assert.Len(t, first.Inserted, 5)
	firstIDs := make(map[store.Kind]uuid.UUID)
	for _, o := range first.Inserted {
		firstIDs[o.Kind] = o.LocalID
	}

	second, err := engine.ImportCropZones(ctx, snap)
	require.NoError(t, err)
	assert.Empty(t, second.Inserted)
	assert.Equal(t, 1, second.Kind(store.KindManagementZone).MatchedHeuristic)

	assert.Equal(t, firstIDs, resolveAll())
}
