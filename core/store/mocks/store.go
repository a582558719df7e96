package mocks

import (
	"context"
	"time"

	"integrity-service/core/model"
	"integrity-service/core/store"

	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of store.Store
type Store struct {
	mock.Mock
}

func (m *Store) iterator(args mock.Arguments) (store.FileIDIterator, error) {
	if it, ok := args.Get(0).(store.FileIDIterator); ok {
		return it, args.Error(1)
	}
	if ids, ok := args.Get(0).([]string); ok {
		return store.NewSliceIterator(ids), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) strings(args mock.Arguments) ([]string, error) {
	if ids, ok := args.Get(0).([]string); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) AddCollection(ctx context.Context, collectionID string, pillarIDs []string) error {
	return m.Called(ctx, collectionID, pillarIDs).Error(0)
}

func (m *Store) RemoveCollection(ctx context.Context, collectionID string) error {
	return m.Called(ctx, collectionID).Error(0)
}

func (m *Store) Collections(ctx context.Context) ([]model.CollectionConfig, error) {
	args := m.Called(ctx)
	if cols, ok := args.Get(0).([]model.CollectionConfig); ok {
		return cols, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) PillarsForCollection(ctx context.Context, collectionID string) ([]string, error) {
	return m.strings(m.Called(ctx, collectionID))
}

func (m *Store) UpdateFileIDs(ctx context.Context, collectionID, pillarID string, items []model.FileIDsItem) error {
	return m.Called(ctx, collectionID, pillarID, items).Error(0)
}

func (m *Store) UpdateChecksumData(ctx context.Context, collectionID, pillarID string, items []model.ChecksumDataItem) error {
	return m.Called(ctx, collectionID, pillarID, items).Error(0)
}

func (m *Store) SetFileMissing(ctx context.Context, collectionID, fileID string, pillarIDs []string) error {
	return m.Called(ctx, collectionID, fileID, pillarIDs).Error(0)
}

func (m *Store) SetChecksumError(ctx context.Context, collectionID, fileID string, pillarIDs []string) error {
	return m.Called(ctx, collectionID, fileID, pillarIDs).Error(0)
}

func (m *Store) SetChecksumValid(ctx context.Context, collectionID, fileID string, pillarIDs []string) error {
	return m.Called(ctx, collectionID, fileID, pillarIDs).Error(0)
}

func (m *Store) RemoveFileID(ctx context.Context, collectionID, fileID string) error {
	return m.Called(ctx, collectionID, fileID).Error(0)
}

func (m *Store) GetFileInfosForFile(ctx context.Context, collectionID, fileID string) ([]model.FileInfo, error) {
	args := m.Called(ctx, collectionID, fileID)
	if infos, ok := args.Get(0).([]model.FileInfo); ok {
		return infos, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) GetAllFileIDs(ctx context.Context, collectionID string) (store.FileIDIterator, error) {
	return m.iterator(m.Called(ctx, collectionID))
}

func (m *Store) GetNumberOfFilesInCollection(ctx context.Context, collectionID string) (int64, error) {
	args := m.Called(ctx, collectionID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) GetFilesOnPillar(ctx context.Context, collectionID, pillarID string, offset, limit int) ([]string, error) {
	return m.strings(m.Called(ctx, collectionID, pillarID, offset, limit))
}

func (m *Store) GetMissingFilesOnPillar(ctx context.Context, collectionID, pillarID string, offset, limit int) ([]string, error) {
	return m.strings(m.Called(ctx, collectionID, pillarID, offset, limit))
}

func (m *Store) GetFilesWithChecksumErrorsOnPillar(ctx context.Context, collectionID, pillarID string, offset, limit int) ([]string, error) {
	return m.strings(m.Called(ctx, collectionID, pillarID, offset, limit))
}

func (m *Store) GetNumberOfExistingFilesForPillar(ctx context.Context, collectionID, pillarID string) (int64, error) {
	args := m.Called(ctx, collectionID, pillarID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) GetNumberOfMissingFilesForPillar(ctx context.Context, collectionID, pillarID string) (int64, error) {
	args := m.Called(ctx, collectionID, pillarID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) GetNumberOfChecksumErrorsForPillar(ctx context.Context, collectionID, pillarID string) (int64, error) {
	args := m.Called(ctx, collectionID, pillarID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Store) SetAllFileStatesToUnknown(ctx context.Context, collectionID string) error {
	return m.Called(ctx, collectionID).Error(0)
}

func (m *Store) SetOldUnknownFilesToMissing(ctx context.Context, collectionID string, cutoff time.Time) error {
	return m.Called(ctx, collectionID, cutoff).Error(0)
}

func (m *Store) FindFilesWithInconsistentChecksums(ctx context.Context, collectionID string, cutoff time.Time) (store.FileIDIterator, error) {
	return m.iterator(m.Called(ctx, collectionID, cutoff))
}

func (m *Store) SetFilesWithConsistentChecksumsToValid(ctx context.Context, collectionID string, cutoff time.Time) error {
	return m.Called(ctx, collectionID, cutoff).Error(0)
}

func (m *Store) FindMissingChecksums(ctx context.Context, collectionID string) (store.FileIDIterator, error) {
	return m.iterator(m.Called(ctx, collectionID))
}

func (m *Store) FindMissingFiles(ctx context.Context, collectionID string) (store.FileIDIterator, error) {
	return m.iterator(m.Called(ctx, collectionID))
}

func (m *Store) FindFilesWithMissingCopies(ctx context.Context, collectionID string, requiredPillarCount int, minSize, maxSize int64) (store.FileIDIterator, error) {
	return m.iterator(m.Called(ctx, collectionID, requiredPillarCount, minSize, maxSize))
}

func (m *Store) RecordStatistics(ctx context.Context, stats model.CollectionStatistics) error {
	return m.Called(ctx, stats).Error(0)
}

func (m *Store) LatestStatistics(ctx context.Context, collectionID string) (*model.CollectionStatistics, error) {
	args := m.Called(ctx, collectionID)
	if stats, ok := args.Get(0).(*model.CollectionStatistics); ok {
		return stats, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) Close() error {
	return m.Called().Error(0)
}

var _ store.Store = (*Store)(nil)
