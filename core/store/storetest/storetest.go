// Package storetest holds the behaviour every store.Store implementation must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"catalog-sync/core/identifier"
	"catalog-sync/core/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// Run executes the shared store tests. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("InsertAssignsFreshIDs", func(t *testing.T) { testInsert(t, newStore(t)) })
	t.Run("FindByName", func(t *testing.T) { testFindByName(t, newStore(t)) })
	t.Run("RowsAreIsolated", func(t *testing.T) { testRowsAreIsolated(t, newStore(t)) })
	t.Run("RegistryExclusivity", func(t *testing.T) { testRegistryExclusivity(t, newStore(t)) })
	t.Run("RegistryLookupOrder", func(t *testing.T) { testRegistryLookupOrder(t, newStore(t)) })
	t.Run("ClearPurgesRegistry", func(t *testing.T) { testClear(t, newStore(t)) })
	t.Run("UnknownKind", func(t *testing.T) { testUnknownKind(t, newStore(t)) })
	t.Run("RunLog", func(t *testing.T) { testRunLog(t, newStore(t)) })
}

func ext(id, source string) identifier.ExternalIdentifier {
	return identifier.ExternalIdentifier{ID: id, Source: source, IDType: identifier.IDTypeString, SourceType: identifier.SourceTypeURI}
}

func testInsert(t *testing.T, s store.Store) {
	ctx := context.Background()

	grower := &store.OperatingUnit{Name: "Acme"}
	growerID, err := s.Insert(ctx, grower)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, growerID)
	assert.Equal(t, growerID, grower.LocalID())

	farm := &store.Farm{Name: "North", OperatingUnitID: growerID}
	farmID, err := s.Insert(ctx, farm)
	require.NoError(t, err)
	assert.NotEqual(t, growerID, farmID)

	got, err := s.FindByLocalID(ctx, store.KindFarm, farmID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "North", got.DisplayName())
	assert.Equal(t, growerID, got.(*store.Farm).OperatingUnitID)

	miss, err := s.FindByLocalID(ctx, store.KindFarm, growerID)
	require.NoError(t, err)
	assert.Nil(t, miss, "local ids are scoped by kind")

	ids, err := s.Registry().Identifiers(ctx, store.KindFarm, farmID)
	require.NoError(t, err)
	assert.Empty(t, ids, "insert never writes the registry")

	zone := &store.ManagementZone{Name: "F1 2024", Acres: 12.5, ProductionYear: 2024}
	_, err = s.Insert(ctx, zone)
	require.NoError(t, err)

	zones, err := s.List(ctx, store.KindManagementZone)
	require.NoError(t, err)
	require.Len(t, zones, 1)
	mz := zones[0].(*store.ManagementZone)
	assert.Equal(t, uuid.Nil, mz.FieldID)
	assert.Equal(t, uuid.Nil, mz.CropID)
	assert.Equal(t, 2024, mz.ProductionYear)
	assert.InDelta(t, 12.5, mz.Acres, 1e-9)
}

func testFindByName(t *testing.T, s store.Store) {
	ctx := context.Background()

	first, err := s.Insert(ctx, &store.Crop{Name: "Corn"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, &store.Crop{Name: "CORN"})
	require.NoError(t, err)
	_, err = s.Insert(ctx, &store.Crop{Name: "Soybeans"})
	require.NoError(t, err)
	eclair, err := s.Insert(ctx, &store.Crop{Name: "Éclair Oats"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		query  string
		wantID uuid.UUID
		found  bool
	}{
		{"ExactFirstInsertionOrder", "Corn", first, true},
		{"CaseInsensitive", "cOrN", first, true},
		{"NonASCIILower", "éclair oats", eclair, true},
		{"NonASCIIUpper", "ÉCLAIR OATS", eclair, true},
		{"NoPartialMatch", "Cor", uuid.Nil, false},
		{"Miss", "Wheat", uuid.Nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindByName(ctx, store.KindCrop, tt.query)
			require.NoError(t, err)
			if !tt.found {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantID, got.LocalID())
		})
	}

	none, err := s.FindByName(ctx, store.KindFarm, "Corn")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func testRowsAreIsolated(t *testing.T, s store.Store) {
	ctx := context.Background()

	crop := &store.Crop{Name: "Barley"}
	id, err := s.Insert(ctx, crop)
	require.NoError(t, err)
	crop.Name = "Rye"

	got, err := s.FindByLocalID(ctx, store.KindCrop, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Barley", got.DisplayName(), "mutating the inserted value does not reach the store")

	got.(*store.Crop).Name = "Oats"
	got, err = s.FindByLocalID(ctx, store.KindCrop, id)
	require.NoError(t, err)
	assert.Equal(t, "Barley", got.DisplayName(), "mutating a returned row does not reach the store")

	listed, err := s.List(ctx, store.KindCrop)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].(*store.Crop).Name = "Millet"

	byName, err := s.FindByName(ctx, store.KindCrop, "barley")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, id, byName.LocalID())
}

func testRegistryExclusivity(t *testing.T, s store.Store) {
	ctx := context.Background()
	reg := s.Registry()

	a, err := s.Insert(ctx, &store.Field{Name: "A"})
	require.NoError(t, err)
	b, err := s.Insert(ctx, &store.Field{Name: "B"})
	require.NoError(t, err)

	n, err := reg.Record(ctx, store.KindField, a, []identifier.ExternalIdentifier{ext("1", "pub"), ext("1", "pub"), ext("2", "pub")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = reg.Record(ctx, store.KindField, a, []identifier.ExternalIdentifier{ext("1", "pub")})
	require.NoError(t, err)
	assert.Equal(t, 0, n, "recording is idempotent")

	n, err = reg.Record(ctx, store.KindField, b, []identifier.ExternalIdentifier{ext("2", "pub"), ext("3", "pub")})
	require.NoError(t, err)
	assert.Equal(t, 1, n, "a pair owned by another local id is skipped")

	owner, ok, err := reg.Lookup(ctx, store.KindField, []identifier.ExternalIdentifier{ext("2", "pub")})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, a, owner)

	_, err = reg.Record(ctx, store.KindCrop, b, []identifier.ExternalIdentifier{ext("1", "pub")})
	require.NoError(t, err)
	owner, ok, err = reg.Lookup(ctx, store.KindCrop, []identifier.ExternalIdentifier{ext("1", "pub")})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, b, owner, "pairs are scoped by kind")

	ids, err := reg.Identifiers(ctx, store.KindField, a)
	require.NoError(t, err)
	assert.Equal(t, []identifier.ExternalIdentifier{ext("1", "pub"), ext("2", "pub")}, ids)

	found, err := s.FindByExternalIdentifiers(ctx, store.KindField, []identifier.ExternalIdentifier{ext("3", "pub")})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "B", found.DisplayName())
}

func testRegistryLookupOrder(t *testing.T, s store.Store) {
	ctx := context.Background()
	reg := s.Registry()

	first, err := s.Insert(ctx, &store.Farm{Name: "first"})
	require.NoError(t, err)
	second, err := s.Insert(ctx, &store.Farm{Name: "second"})
	require.NoError(t, err)

	_, err = reg.Record(ctx, store.KindFarm, second, []identifier.ExternalIdentifier{ext("s", "pub")})
	require.NoError(t, err)
	_, err = reg.Record(ctx, store.KindFarm, first, []identifier.ExternalIdentifier{ext("f", "pub")})
	require.NoError(t, err)

	owner, ok, err := reg.Lookup(ctx, store.KindFarm, []identifier.ExternalIdentifier{ext("f", "pub"), ext("s", "pub")})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, second, owner, "first hit follows registry insertion order")

	_, ok, err = reg.Lookup(ctx, store.KindFarm, []identifier.ExternalIdentifier{ext("f", "other")})
	require.NoError(t, err)
	assert.False(t, ok, "identity is the (id, source) pair")

	_, ok, err = reg.Lookup(ctx, store.KindFarm, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testClear(t *testing.T, s store.Store) {
	ctx := context.Background()

	zone, err := s.Insert(ctx, &store.ManagementZone{Name: "Z"})
	require.NoError(t, err)
	crop, err := s.Insert(ctx, &store.Crop{Name: "Corn"})
	require.NoError(t, err)
	_, err = s.Registry().Record(ctx, store.KindManagementZone, zone, []identifier.ExternalIdentifier{ext("z", "pub")})
	require.NoError(t, err)
	_, err = s.Registry().Record(ctx, store.KindCrop, crop, []identifier.ExternalIdentifier{ext("c", "pub")})
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx, store.KindManagementZone))

	zones, err := s.List(ctx, store.KindManagementZone)
	require.NoError(t, err)
	assert.Empty(t, zones)

	_, ok, err := s.Registry().Lookup(ctx, store.KindManagementZone, []identifier.ExternalIdentifier{ext("z", "pub")})
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = s.Registry().Lookup(ctx, store.KindCrop, []identifier.ExternalIdentifier{ext("c", "pub")})
	require.NoError(t, err)
	assert.True(t, ok, "other kinds are untouched")

	crops, err := s.List(ctx, store.KindCrop)
	require.NoError(t, err)
	assert.Len(t, crops, 1)
}

func testUnknownKind(t *testing.T, s store.Store) {
	ctx := context.Background()
	_, err := s.FindByName(ctx, "tractor", "x")
	assert.ErrorIs(t, err, store.ErrUnknownKind)
	_, err = s.List(ctx, "tractor")
	assert.ErrorIs(t, err, store.ErrUnknownKind)
	assert.ErrorIs(t, s.Clear(ctx, "tractor"), store.ErrUnknownKind)
}

func testRunLog(t *testing.T, s store.Store) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, name := range []string{"old", "new"} {
		run := &store.ImportRun{
			Snapshot:   name,
			Scope:      "cropzones",
			Inserted:   i,
			Summary:    datatypes.JSON(`{"inserted":[]}`),
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Second),
		}
		require.NoError(t, s.Runs().Append(ctx, run))
		assert.NotEqual(t, uuid.Nil, run.ID)
	}

	runs, err := s.Runs().Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "new", runs[0].Snapshot)

	runs, err = s.Runs().Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}
