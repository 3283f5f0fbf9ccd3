// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so snapshot documents can be kept in AWS S3 or a
// self-hosted MinIO instance. The Client interface is small on purpose so it can be
// mocked in tests (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: used by EnsureBucket and the check command.
//   - PutObject: uploads converted snapshots.
//   - GetObject: reads a snapshot document as a stream.
//   - ListObjects: lists snapshot documents under a prefix.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	ok, err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region, false)
package storage
