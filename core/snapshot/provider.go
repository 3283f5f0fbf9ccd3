package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"catalog-sync/core/storage"

	"github.com/minio/minio-go/v7"
)

// Extension is the file extension of snapshot documents.
const Extension = ".json"

// ErrNotFound is returned when a named snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Provider lists and loads snapshots by name.
type Provider interface {
	// List returns the names of available snapshots, sorted.
	List(ctx context.Context) ([]string, error)
	// Load reads the named snapshot.
	Load(ctx context.Context, name string) (*Snapshot, error)
}

// NewProvider returns the provider selected by cfg.Source.
func NewProvider(cfg Config, client storage.Client, bucket string) (Provider, error) {
	switch cfg.Source {
	case SourceDir, "":
		return &DirProvider{Root: cfg.Dir}, nil
	case SourceStorage:
		if client == nil {
			return nil, fmt.Errorf("snapshot source %q requires a storage client", cfg.Source)
		}
		return &StorageProvider{Client: client, Bucket: bucket, Prefix: cfg.Prefix}, nil
	default:
		return nil, fmt.Errorf("unknown snapshot source %q", cfg.Source)
	}
}

// Decode reads a snapshot document.
func Decode(r io.Reader) (*Snapshot, error) {
	var s Snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &s, nil
}

// Encode writes s as an indented snapshot document.
func Encode(w io.Writer, s *Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

func objectName(name string) string {
	if strings.HasSuffix(name, Extension) {
		return name
	}
	return name + Extension
}

// DirProvider reads snapshot documents from a local directory.
type DirProvider struct {
	Root string
}

// List returns the base names of all snapshot documents in Root.
func (p *DirProvider) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(p.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot dir %s: %w", p.Root, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Extension {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), Extension))
	}
	sort.Strings(names)
	return names, nil
}

// Load reads Root/<name>.json.
func (p *DirProvider) Load(ctx context.Context, name string) (*Snapshot, error) {
	if name == "" || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%w: invalid name %q", ErrNotFound, name)
	}
	f, err := os.Open(filepath.Join(p.Root, objectName(name)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("failed to open snapshot %s: %w", name, err)
	}
	defer f.Close()
	return Decode(f)
}

// StorageProvider reads snapshot documents from an object storage bucket.
type StorageProvider struct {
	Client storage.Client
	Bucket string
	Prefix string
}

// List returns the names of all snapshot objects under Prefix.
func (p *StorageProvider) List(ctx context.Context) ([]string, error) {
	var names []string
	for obj := range p.Client.ListObjects(ctx, p.Bucket, minio.ListObjectsOptions{Prefix: p.Prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", obj.Err)
		}
		if !strings.HasSuffix(obj.Key, Extension) {
			continue
		}
		names = append(names, strings.TrimSuffix(strings.TrimPrefix(obj.Key, p.Prefix), Extension))
	}
	sort.Strings(names)
	return names, nil
}

// Load downloads Prefix<name>.json.
func (p *StorageProvider) Load(ctx context.Context, name string) (*Snapshot, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrNotFound)
	}
	key := p.Prefix + objectName(name)
	obj, err := p.Client.GetObject(ctx, p.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", key, err)
	}
	defer obj.Close()

	s, err := Decode(obj)
	if err != nil {
		if resp := minio.ToErrorResponse(errors.Unwrap(err)); resp.Code == "NoSuchKey" {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}
	return s, nil
}

// Put uploads s under Prefix<name>.json.
func (p *StorageProvider) Put(ctx context.Context, name string, s *Snapshot) error {
	var buf strings.Builder
	if err := Encode(&buf, s); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	key := p.Prefix + objectName(name)
	_, err := p.Client.PutObject(ctx, p.Bucket, key, strings.NewReader(buf.String()), int64(buf.Len()),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to put snapshot %s: %w", key, err)
	}
	return nil
}
