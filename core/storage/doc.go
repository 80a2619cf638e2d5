// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client. Audit reports are published to a bucket on
// either AWS S3 or a self-hosted MinIO instance.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it easier
// to mock storage interactions for unit testing (as seen in core/storage/mocks).
//
// # Operations
//
//   - EnsureBucket: creates the target bucket if needed.
//   - PutObject: uploads content (with size and options).
//   - GetObject: retrieves content as a stream.
//   - List: lists objects under a prefix, sorted by key.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	err = storage.EnsureBucket(ctx, client, config.Bucket, config.Region)
package storage
