package store

import (
	"context"
	"time"

	"integrity-service/core/model"
)

// Store persists FileInfo records and runs the reconciliation primitives over them.
// Each call is atomic on its own; multi-step protocols such as the listing sweep are
// driven by the caller.
type Store interface {
	// AddCollection registers a collection with its fixed pillar set.
	AddCollection(ctx context.Context, collectionID string, pillarIDs []string) error
	// RemoveCollection deletes a collection with all its FileInfo rows and statistics.
	RemoveCollection(ctx context.Context, collectionID string) error
	// Collections returns every known collection, ordered by id.
	Collections(ctx context.Context) ([]model.CollectionConfig, error)
	// PillarsForCollection returns the pillar set of a collection.
	PillarsForCollection(ctx context.Context, collectionID string) ([]string, error)

	// UpdateFileIDs upserts the listed files as EXISTING at the pillar.
	UpdateFileIDs(ctx context.Context, collectionID, pillarID string, items []model.FileIDsItem) error
	// UpdateChecksumData upserts the reported checksums at the pillar.
	UpdateChecksumData(ctx context.Context, collectionID, pillarID string, items []model.ChecksumDataItem) error

	// SetFileMissing marks the file MISSING at the given pillars.
	SetFileMissing(ctx context.Context, collectionID, fileID string, pillarIDs []string) error
	// SetChecksumError marks the checksum of the file at the given pillars as ERROR.
	SetChecksumError(ctx context.Context, collectionID, fileID string, pillarIDs []string) error
	// SetChecksumValid marks the checksum of the file at the given pillars as VALID.
	SetChecksumValid(ctx context.Context, collectionID, fileID string, pillarIDs []string) error
	// RemoveFileID deletes every record of the file. Removing an unknown file is a no-op.
	RemoveFileID(ctx context.Context, collectionID, fileID string) error

	// GetFileInfosForFile returns the records of the file, ordered by pillar.
	GetFileInfosForFile(ctx context.Context, collectionID, fileID string) ([]model.FileInfo, error)
	// GetAllFileIDs iterates the distinct file ids of the collection in ascending order.
	GetAllFileIDs(ctx context.Context, collectionID string) (FileIDIterator, error)
	// GetNumberOfFilesInCollection counts the distinct file ids of the collection.
	GetNumberOfFilesInCollection(ctx context.Context, collectionID string) (int64, error)
	// GetFilesOnPillar pages through the files EXISTING at the pillar.
	GetFilesOnPillar(ctx context.Context, collectionID, pillarID string, offset, limit int) ([]string, error)
	// GetMissingFilesOnPillar pages through the files MISSING at the pillar.
	GetMissingFilesOnPillar(ctx context.Context, collectionID, pillarID string, offset, limit int) ([]string, error)
	// GetFilesWithChecksumErrorsOnPillar pages through the files with checksum ERROR at the pillar.
	GetFilesWithChecksumErrorsOnPillar(ctx context.Context, collectionID, pillarID string, offset, limit int) ([]string, error)
	// GetNumberOfExistingFilesForPillar counts the files EXISTING at the pillar.
	GetNumberOfExistingFilesForPillar(ctx context.Context, collectionID, pillarID string) (int64, error)
	// GetNumberOfMissingFilesForPillar counts the files MISSING at the pillar.
	GetNumberOfMissingFilesForPillar(ctx context.Context, collectionID, pillarID string) (int64, error)
	// GetNumberOfChecksumErrorsForPillar counts the files with checksum ERROR at the pillar.
	GetNumberOfChecksumErrorsForPillar(ctx context.Context, collectionID, pillarID string) (int64, error)

	// SetAllFileStatesToUnknown is the mark phase of a full listing sweep.
	SetAllFileStatesToUnknown(ctx context.Context, collectionID string) error
	// SetOldUnknownFilesToMissing condemns records still UNKNOWN whose last file check is
	// older than cutoff.
	SetOldUnknownFilesToMissing(ctx context.Context, collectionID string, cutoff time.Time) error
	// FindFilesWithInconsistentChecksums iterates the files whose non-missing records
	// checked at or after cutoff disagree on the checksum.
	FindFilesWithInconsistentChecksums(ctx context.Context, collectionID string, cutoff time.Time) (FileIDIterator, error)
	// SetFilesWithConsistentChecksumsToValid marks VALID every qualifying record of the
	// files whose qualifying records all agree.
	SetFilesWithConsistentChecksumsToValid(ctx context.Context, collectionID string, cutoff time.Time) error
	// FindMissingChecksums iterates the files EXISTING somewhere without any checksum there.
	FindMissingChecksums(ctx context.Context, collectionID string) (FileIDIterator, error)
	// FindMissingFiles iterates the files not EXISTING at every pillar of the collection.
	FindMissingFiles(ctx context.Context, collectionID string) (FileIDIterator, error)
	// FindFilesWithMissingCopies iterates the files EXISTING at fewer than
	// requiredPillarCount pillars whose size lies in [minSize, maxSize]. A maxSize of
	// zero or less means no upper bound.
	FindFilesWithMissingCopies(ctx context.Context, collectionID string, requiredPillarCount int, minSize, maxSize int64) (FileIDIterator, error)

	// RecordStatistics stores a statistics snapshot for the collection.
	RecordStatistics(ctx context.Context, stats model.CollectionStatistics) error
	// LatestStatistics returns the newest snapshot, or nil if none was recorded.
	LatestStatistics(ctx context.Context, collectionID string) (*model.CollectionStatistics, error)

	// Close releases the resources held by the store.
	Close() error
}
