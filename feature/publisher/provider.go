package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"catalog-sync/core/snapshot"
)

// Decode reads one publisher file.
func Decode(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read publisher file %s: %w", path, err)
	}
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode publisher file %s: %w", path, err)
	}
	return &data, nil
}

// Files returns every publisher file under dir, recursively, sorted.
func Files(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == Extension {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Supported reports whether dir holds at least one publisher file.
func Supported(dir string) bool {
	files, err := Files(dir)
	return err == nil && len(files) > 0
}

func description(path string) string {
	return fmt.Sprintf("Publisher data %s %s", time.Now().Format("2006-01-02"), path)
}

// Convert maps every publisher file under dir into one snapshot.
func Convert(dir, source string) (*snapshot.Snapshot, error) {
	files, err := Files(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no %s files in %s", snapshot.ErrNotFound, Extension, dir)
	}

	m := NewMapper(source, description(dir))
	for _, f := range files {
		data, err := Decode(f)
		if err != nil {
			return nil, err
		}
		if err := m.Map(data); err != nil {
			return nil, fmt.Errorf("failed to map %s: %w", f, err)
		}
	}
	return m.Snapshot(), nil
}

// Provider serves every publisher file under Root as its own snapshot, named
// by its path relative to Root without the extension.
type Provider struct {
	Root   string
	Source string
}

// NewProvider creates a provider from cfg.
func NewProvider(cfg Config) *Provider {
	return &Provider{Root: cfg.Dir, Source: cfg.Source}
}

// List returns the snapshot names of all publisher files.
func (p *Provider) List(ctx context.Context) ([]string, error) {
	files, err := Files(p.Root)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(p.Root, f)
		if err != nil {
			return nil, err
		}
		names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), Extension))
	}
	return names, nil
}

// Load converts the named publisher file.
func (p *Provider) Load(ctx context.Context, name string) (*snapshot.Snapshot, error) {
	if name == "" || strings.Contains(name, "..") {
		return nil, fmt.Errorf("%w: invalid name %q", snapshot.ErrNotFound, name)
	}
	path := filepath.Join(p.Root, filepath.FromSlash(strings.TrimSuffix(name, Extension))+Extension)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", snapshot.ErrNotFound, name)
	}

	data, err := Decode(path)
	if err != nil {
		return nil, err
	}
	m := NewMapper(p.Source, description(path))
	if err := m.Map(data); err != nil {
		return nil, fmt.Errorf("failed to map %s: %w", path, err)
	}
	return m.Snapshot(), nil
}
