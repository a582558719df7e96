package gormstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"integrity-service/core/database"
	"integrity-service/core/model"
	"integrity-service/core/store"
	"integrity-service/core/store/storetest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

var dbSeq atomic.Int64

// setupSQLite opens a private shared-cache in-memory database.
func setupSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:gormstore_%d?mode=memory&cache=shared", dbSeq.Add(1))
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: name})
	require.NoError(t, err)
	return db
}

// setupMockDB creates a mock GORM DB for testing.
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return gormDB, mock
}

func TestStore_Behaviour(t *testing.T) {
	storetest.Run(t, func(t *testing.T, now func() time.Time) store.Store {
		s, err := New(setupSQLite(t), nil, WithClock(now), WithBatchSize(2))
		require.NoError(t, err)
		return s
	})
}

func TestNew_SeedsLookupTables(t *testing.T) {
	db := setupSQLite(t)
	_, err := New(db, nil)
	require.NoError(t, err)
	// A second migration over the same database is a no-op.
	_, err = New(db, nil)
	require.NoError(t, err)

	var states []fileStateRow
	require.NoError(t, db.Order("code").Find(&states).Error)
	require.Len(t, states, 3)
	assert.Equal(t, fileStateRow{Code: 2, Name: "MISSING"}, states[2])

	var checksumStates []checksumStateRow
	require.NoError(t, db.Order("code").Find(&checksumStates).Error)
	assert.Equal(t, checksumStateRow{Code: 1, Name: "VALID"}, checksumStates[1])
}

func TestNew_ValidatesConfiguredCollections(t *testing.T) {
	db := setupSQLite(t)
	cfg := []model.CollectionConfig{{ID: "books", PillarIDs: []string{"p1", "p2"}}}

	_, err := New(db, cfg)
	require.NoError(t, err)

	// Same set in another order is accepted.
	s, err := New(db, []model.CollectionConfig{{ID: "books", PillarIDs: []string{"p2", "p1"}}})
	require.NoError(t, err)
	cols, err := s.Collections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.CollectionConfig{{ID: "books", PillarIDs: []string{"p1", "p2"}}}, cols)

	_, err = New(db, []model.CollectionConfig{{ID: "books", PillarIDs: []string{"p1", "p3"}}})
	assert.ErrorIs(t, err, store.ErrConfigMismatch)
}

func TestStore_SeesCollectionsAddedElsewhere(t *testing.T) {
	db := setupSQLite(t)
	a, err := New(db, nil)
	require.NoError(t, err)
	b, err := New(db, nil, WithoutMigration())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, a.AddCollection(ctx, "c", []string{"p"}))
	require.NoError(t, b.UpdateFileIDs(ctx, "c", "p", []model.FileIDsItem{{FileID: "f"}}))
	assert.ErrorIs(t, b.AddCollection(ctx, "c", []string{"p"}), store.ErrCollectionExists)
}

func TestStore_ChecksumSpecIsNormalized(t *testing.T) {
	s, err := New(setupSQLite(t), []model.CollectionConfig{{ID: "c", PillarIDs: []string{"p"}}})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.UpdateChecksumData(ctx, "c", "p", []model.ChecksumDataItem{
		{FileID: "f", Checksum: "ab", Spec: model.ChecksumSpec{Algorithm: "sha256", Salt: "AB01"}},
	}))
	infos, err := s.GetFileInfosForFile(ctx, "c", "f")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, model.ChecksumSpec{Algorithm: "SHA256", Salt: "ab01"}, infos[0].ChecksumSpec)
}

func TestStore_DuplicateEntriesInOneBatch(t *testing.T) {
	s, err := New(setupSQLite(t), []model.CollectionConfig{{ID: "c", PillarIDs: []string{"p"}}})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.UpdateFileIDs(ctx, "c", "p", []model.FileIDsItem{
		{FileID: "f", FileSize: 1}, {FileID: "g", FileSize: 2}, {FileID: "f", FileSize: 3},
	}))
	infos, err := s.GetFileInfosForFile(ctx, "c", "f")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, int64(3), infos[0].FileSize)
}

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	db, mock := setupMockDB(t)
	s := &Store{
		db:        db,
		log:       zap.NewNop(),
		now:       time.Now,
		batchSize: defaultBatchSize,
		pillars:   map[string]map[string]struct{}{"c": {"p1": {}, "p2": {}}},
	}
	return s, mock
}

func TestStore_UpdateFileIDs_RollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `file_info`")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.UpdateFileIDs(context.Background(), "c", "p1", []model.FileIDsItem{{FileID: "f"}})
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RemoveCollection_UnknownRollsBack(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `collections`")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := s.RemoveCollection(context.Background(), "gone")
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RemoveCollection_DeletesDependentRows(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `collections`")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `file_info`")).WillReturnResult(sqlmock.NewResult(0, 4))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `collection_statistics`")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `collection_pillars`")).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, s.RemoveCollection(context.Background(), "c"))
	assert.NoError(t, mock.ExpectationsWereMet())
	_, ok := s.pillars["c"]
	assert.False(t, ok)
}

func TestStore_UpdateFileIDs_UpsertStatement(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE `file_size`=")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := s.UpdateFileIDs(context.Background(), "c", "p2", []model.FileIDsItem{{FileID: "f"}})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_FindInconsistent_QueryError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery("HAVING COUNT\\(DISTINCT checksum\\) > 1").WillReturnError(errors.New("gone away"))

	_, err := s.FindFilesWithInconsistentChecksums(context.Background(), "c", time.Time{})
	assert.ErrorContains(t, err, "gone away")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_Iterator_ReportsRowError(t *testing.T) {
	s, mock := newMockStore(t)

	rows := sqlmock.NewRows([]string{"file_id"}).AddRow("a").AddRow("b").RowError(1, errors.New("connection reset"))
	mock.ExpectQuery("SELECT DISTINCT file_id FROM file_info").WillReturnRows(rows)

	it, err := s.GetAllFileIDs(context.Background(), "c")
	require.NoError(t, err)
	ids, err := store.Drain(it, 0)
	assert.Equal(t, []string{"a"}, ids)
	assert.ErrorContains(t, err, "connection reset")
}

func TestStore_SetConsistentValid_UsesDerivedTable(t *testing.T) {
	s, mock := newMockStore(t)
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("AS consistent)")).
		WithArgs(1, "c", 2, cutoff, "c", 2, cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, s.SetFilesWithConsistentChecksumsToValid(context.Background(), "c", cutoff))
	assert.NoError(t, mock.ExpectationsWereMet())
}
