package pillar

import (
	"context"
	"errors"
	"io"

	"integrity-service/core/model"
)

var (
	// ErrUnsupported is returned when a pillar variant cannot serve a request.
	ErrUnsupported = errors.New("request not supported by pillar")
	// ErrFileNotFound is returned when a pillar does not hold the requested file.
	ErrFileNotFound = errors.New("file not found at pillar")
)

// Model is the capability set shared by the pillar variants.
type Model interface {
	// ID returns the pillar id.
	ID() string
	// HasActualFile reports whether the pillar stores file content.
	HasActualFile() bool
	// DefaultSpec returns the checksum spec the pillar reports without being asked.
	DefaultSpec() model.ChecksumSpec
	// ListFiles returns every file the pillar holds.
	ListFiles(ctx context.Context) ([]model.FileIDsItem, error)
	// Checksums returns the checksum of every file under spec.
	Checksums(ctx context.Context, spec model.ChecksumSpec) ([]model.ChecksumDataItem, error)
	// ComputeChecksum returns the checksum of one file under spec.
	ComputeChecksum(ctx context.Context, fileID string, spec model.ChecksumSpec) (model.ChecksumDataItem, error)
	// FetchFile opens the content of one file.
	FetchFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}
