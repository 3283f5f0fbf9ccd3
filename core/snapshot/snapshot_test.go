package snapshot_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"catalog-sync/core/identifier"
	"catalog-sync/core/snapshot"
	"catalog-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sample() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Description: "sample",
		Growers:     []snapshot.Grower{{ID: snapshot.CompoundIdentifier{ReferenceID: 1}, Name: "Acme"}},
		Farms: []snapshot.Farm{
			{ID: snapshot.CompoundIdentifier{ReferenceID: 2}, Description: "North", GrowerID: snapshot.Ref(1)},
			{ID: snapshot.CompoundIdentifier{ReferenceID: 2}, Description: "Shadowed", GrowerID: snapshot.Ref(1)},
		},
		Fields: []snapshot.Field{{ID: snapshot.CompoundIdentifier{ReferenceID: 3}, Description: "F1", FarmID: snapshot.Ref(2)}},
		Crops:  []snapshot.Crop{{ID: snapshot.CompoundIdentifier{ReferenceID: 4}, Name: "Corn"}},
		CropZones: []snapshot.CropZone{{
			ID: snapshot.CompoundIdentifier{
				ReferenceID: 5,
				UniqueIDs:   []identifier.ExternalIdentifier{{ID: "z-1", Source: "pub", IDType: identifier.IDTypeString}},
			},
			Description: "F1 2024",
			FieldID:     snapshot.Ref(3),
			CropID:      snapshot.Ref(4),
			CropSeason:  "2024",
		}},
	}
}

func TestIndex(t *testing.T) {
	idx := snapshot.NewIndex(sample())

	farm, ok := idx.Farm(snapshot.Ref(2))
	require.True(t, ok)
	assert.Equal(t, "North", farm.Description, "first entity wins on a repeated reference id")

	_, ok = idx.Field(nil)
	assert.False(t, ok)
	_, ok = idx.Crop(snapshot.Ref(99))
	assert.False(t, ok)

	zone, ok := idx.CropZone(snapshot.Ref(5))
	require.True(t, ok)
	assert.Equal(t, "F1 2024", zone.Label())
	assert.Equal(t, "z-1", zone.Identity().UniqueIDs[0].ID)
}

func TestDirProvider(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	require.NoError(t, snapshot.Encode(&buf, sample()))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spring.json"), buf.Bytes(), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	p := &snapshot.DirProvider{Root: dir}

	names, err := p.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"spring"}, names)

	s, err := p.Load(context.Background(), "spring")
	require.NoError(t, err)
	assert.Equal(t, sample(), s)

	_, err = p.Load(context.Background(), "missing")
	assert.True(t, errors.Is(err, snapshot.ErrNotFound))

	_, err = p.Load(context.Background(), "../spring")
	assert.True(t, errors.Is(err, snapshot.ErrNotFound))
}

func TestStorageProvider(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, snapshot.Encode(&buf, sample()))

	client := new(mocks.Client)
	client.On("GetObject", mock.Anything, "catalog", "snapshots/spring.json", mock.Anything).
		Return(io.NopCloser(bytes.NewReader(buf.Bytes())), nil)
	client.On("ListObjects", mock.Anything, "catalog", mock.Anything).
		Return(func(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
			ch := make(chan minio.ObjectInfo, 3)
			ch <- minio.ObjectInfo{Key: opts.Prefix + "spring.json"}
			ch <- minio.ObjectInfo{Key: opts.Prefix + "readme.md"}
			ch <- minio.ObjectInfo{Key: opts.Prefix + "autumn.json"}
			close(ch)
			return ch
		})
	client.On("PutObject", mock.Anything, "catalog", "snapshots/copy.json", mock.Anything, int64(buf.Len()), mock.Anything).
		Return(minio.UploadInfo{}, nil)

	p := &snapshot.StorageProvider{Client: client, Bucket: "catalog", Prefix: "snapshots/"}

	names, err := p.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"autumn", "spring"}, names)

	s, err := p.Load(context.Background(), "spring")
	require.NoError(t, err)
	assert.Equal(t, "sample", s.Description)

	require.NoError(t, p.Put(context.Background(), "copy", s))
	client.AssertExpectations(t)
}

func TestNewProvider(t *testing.T) {
	p, err := snapshot.NewProvider(snapshot.Config{Source: snapshot.SourceDir, Dir: "x"}, nil, "")
	require.NoError(t, err)
	assert.IsType(t, &snapshot.DirProvider{}, p)

	_, err = snapshot.NewProvider(snapshot.Config{Source: snapshot.SourceStorage}, nil, "b")
	assert.Error(t, err)

	p, err = snapshot.NewProvider(snapshot.Config{Source: snapshot.SourceStorage}, new(mocks.Client), "b")
	require.NoError(t, err)
	assert.IsType(t, &snapshot.StorageProvider{}, p)

	_, err = snapshot.NewProvider(snapshot.Config{Source: "ftp"}, nil, "")
	assert.Error(t, err)
}

type countingProvider struct {
	loads atomic.Int32
}

func (p *countingProvider) List(ctx context.Context) ([]string, error) { return nil, nil }

func (p *countingProvider) Load(ctx context.Context, name string) (*snapshot.Snapshot, error) {
	p.loads.Add(1)
	if name == "missing" {
		return nil, snapshot.ErrNotFound
	}
	return sample(), nil
}

func TestCache(t *testing.T) {
	t.Run("ReusesWithinTTL", func(t *testing.T) {
		p := &countingProvider{}
		c := snapshot.NewCache(p, time.Minute)

		a, err := c.Get(context.Background(), "spring")
		require.NoError(t, err)
		b, err := c.Get(context.Background(), "spring")
		require.NoError(t, err)
		assert.Same(t, a, b)
		assert.Equal(t, int32(1), p.loads.Load())

		c.Invalidate("spring")
		_, err = c.Get(context.Background(), "spring")
		require.NoError(t, err)
		assert.Equal(t, int32(2), p.loads.Load())
	})

	t.Run("ZeroTTLDisablesCaching", func(t *testing.T) {
		p := &countingProvider{}
		c := snapshot.NewCache(p, 0)
		_, _ = c.Get(context.Background(), "spring")
		_, _ = c.Get(context.Background(), "spring")
		assert.Equal(t, int32(2), p.loads.Load())
	})

	t.Run("ErrorsAreNotCached", func(t *testing.T) {
		p := &countingProvider{}
		c := snapshot.NewCache(p, time.Minute)
		_, err := c.Get(context.Background(), "missing")
		assert.True(t, errors.Is(err, snapshot.ErrNotFound))
		_, err = c.Get(context.Background(), "missing")
		assert.Error(t, err)
		assert.Equal(t, int32(2), p.loads.Load())
	})
}
