// Package snapshot defines the catalog snapshot data model and how snapshots are located.
//
// A Snapshot is one immutable delivery of growers, farms, fields, crops and crop zones.
// Entities reference their parents by ReferenceID, an integer that is only meaningful
// inside the snapshot that carries it. Index turns those references into lookups.
//
// # Providers
//
//   - DirProvider: reads <name>.json documents from a local directory.
//   - StorageProvider: reads and writes <prefix><name>.json objects in a bucket.
//
// Cache wraps a Provider for the HTTP server: loaded snapshots are kept for a TTL and
// concurrent misses for the same name are collapsed with singleflight.
//
// # Usage
//
//	p, err := snapshot.NewProvider(cfg.Snapshot, client, cfg.Storage.Bucket)
//	s, err := p.Load(ctx, "2024-spring")
//	idx := snapshot.NewIndex(s)
//	field, ok := idx.Field(zone.FieldID)
package snapshot
