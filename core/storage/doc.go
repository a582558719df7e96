// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client behind the Client interface, which is all the full
// pillar model and the report exporter need. This abstraction supports both AWS S3 and
// self-hosted MinIO instances, and the interface can be mocked for unit tests (see
// core/storage/mocks).
//
// # Operations
//
//   - BucketExists: Verifies access to the target bucket.
//   - MakeBucket: Creates a new bucket if needed.
//   - PutObject: Uploads content (with size and options).
//   - GetObject: Retrieves content as a stream.
//   - StatObject: Reads object metadata, used to detect missing files before streaming.
//   - ListObjects: Lists objects in a bucket (supports prefix/recursive).
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "integrity")
package storage
