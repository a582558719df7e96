// Package storetest holds the behaviour suite every store.Store backend must pass.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"integrity-service/core/model"
	"integrity-service/core/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory builds an empty store whose notion of "now" is read from now.
type Factory func(t *testing.T, now func() time.Time) store.Store

// Clock is a settable clock shared between a test and the store under test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t.UTC()
	c.mu.Unlock()
}

func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

var (
	t0   = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	pABC = []string{"pA", "pB", "pC"}
)

type env struct {
	ctx   context.Context
	clock *Clock
	s     store.Store
}

func setup(t *testing.T, factory Factory) *env {
	t.Helper()
	clock := NewClock(t0)
	s := factory(t, clock.Now)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()
	require.NoError(t, s.AddCollection(ctx, "c1", pABC))
	return &env{ctx: ctx, clock: clock, s: s}
}

func (e *env) list(t *testing.T, pillar string, ids ...string) {
	t.Helper()
	items := make([]model.FileIDsItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, model.FileIDsItem{FileID: id, FileSize: 100, LastModified: t0})
	}
	require.NoError(t, e.s.UpdateFileIDs(e.ctx, "c1", pillar, items))
}

func (e *env) checksum(t *testing.T, pillar, fileID, sum string, at time.Time) {
	t.Helper()
	require.NoError(t, e.s.UpdateChecksumData(e.ctx, "c1", pillar, []model.ChecksumDataItem{
		{FileID: fileID, Checksum: sum, Spec: model.ChecksumSpec{Algorithm: "MD5"}, CalculatedAt: at},
	}))
}

func (e *env) info(t *testing.T, fileID, pillar string) model.FileInfo {
	t.Helper()
	infos, err := e.s.GetFileInfosForFile(e.ctx, "c1", fileID)
	require.NoError(t, err)
	for _, fi := range infos {
		if fi.PillarID == pillar {
			return fi
		}
	}
	t.Fatalf("no record for %s at %s", fileID, pillar)
	return model.FileInfo{}
}

// drain returns a func collecting every id of a query result, usable as
// drain(t)(s.FindMissingFiles(ctx, id)).
func drain(t *testing.T) func(store.FileIDIterator, error) []string {
	return func(it store.FileIDIterator, err error) []string {
		t.Helper()
		require.NoError(t, err)
		ids, err := store.Drain(it, 0)
		require.NoError(t, err)
		return ids
	}
}

func sameTime(t *testing.T, want, got time.Time) {
	t.Helper()
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
}

// Run executes the behaviour suite against the backend built by factory.
func Run(t *testing.T, factory Factory) {
	t.Run("collections", func(t *testing.T) { testCollections(t, factory) })
	t.Run("listing upsert", func(t *testing.T) { testListing(t, factory) })
	t.Run("checksum upsert", func(t *testing.T) { testChecksums(t, factory) })
	t.Run("unknown pillar and collection", func(t *testing.T) { testValidation(t, factory) })
	t.Run("state transitions", func(t *testing.T) { testTransitions(t, factory) })
	t.Run("listing sweep", func(t *testing.T) { testSweep(t, factory) })
	t.Run("checksum consistency", func(t *testing.T) { testConsistency(t, factory) })
	t.Run("missing files and copies", func(t *testing.T) { testMissing(t, factory) })
	t.Run("pillar pages and counts", func(t *testing.T) { testPillarQueries(t, factory) })
	t.Run("removal", func(t *testing.T) { testRemoval(t, factory) })
	t.Run("statistics", func(t *testing.T) { testStatistics(t, factory) })
}

func testCollections(t *testing.T, factory Factory) {
	e := setup(t, factory)

	err := e.s.AddCollection(e.ctx, "c1", []string{"pA"})
	assert.ErrorIs(t, err, store.ErrCollectionExists)
	assert.ErrorIs(t, e.s.AddCollection(e.ctx, "", []string{"pA"}), store.ErrInvalidArgument)
	assert.ErrorIs(t, e.s.AddCollection(e.ctx, "c0", nil), store.ErrInvalidArgument)

	require.NoError(t, e.s.AddCollection(e.ctx, "c0", []string{"pZ", "pY"}))
	cols, err := e.s.Collections(e.ctx)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "c0", cols[0].ID)
	assert.Equal(t, []string{"pY", "pZ"}, cols[0].PillarIDs)
	assert.Equal(t, "c1", cols[1].ID)

	pillars, err := e.s.PillarsForCollection(e.ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, pABC, pillars)

	_, err = e.s.PillarsForCollection(e.ctx, "nope")
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)
}

func testListing(t *testing.T, factory Factory) {
	e := setup(t, factory)
	e.list(t, "pA", "f1")

	fi := e.info(t, "f1", "pA")
	assert.Equal(t, model.FileStateExisting, fi.FileState)
	assert.Equal(t, model.ChecksumStateUnknown, fi.ChecksumState)
	assert.Equal(t, int64(100), fi.FileSize)
	assert.Nil(t, fi.Checksum)
	sameTime(t, t0, fi.LastFileCheck)
	sameTime(t, model.Epoch, fi.LastChecksumCheck)

	// Re-listing is idempotent apart from the check time.
	at := e.clock.Advance(time.Minute)
	e.list(t, "pA", "f1")
	fi = e.info(t, "f1", "pA")
	assert.Equal(t, model.FileStateExisting, fi.FileState)
	sameTime(t, at, fi.LastFileCheck)
	n, err := e.s.GetNumberOfFilesInCollection(e.ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// Records with an empty id are skipped.
	require.NoError(t, e.s.UpdateFileIDs(e.ctx, "c1", "pA", []model.FileIDsItem{{FileID: ""}, {FileID: "f2"}}))
	ids := drain(t)(e.s.GetAllFileIDs(e.ctx, "c1"))
	assert.Equal(t, []string{"f1", "f2"}, ids)

	require.NoError(t, e.s.UpdateFileIDs(e.ctx, "c1", "pA", nil))
}

func testChecksums(t *testing.T, factory Factory) {
	e := setup(t, factory)
	calc := t0.Add(-time.Hour)
	e.checksum(t, "pB", "f1", "aa", calc)

	fi := e.info(t, "f1", "pB")
	assert.Equal(t, model.FileStateUnknown, fi.FileState)
	assert.Equal(t, model.ChecksumStateUnknown, fi.ChecksumState)
	require.NotNil(t, fi.Checksum)
	assert.Equal(t, "aa", *fi.Checksum)
	assert.Equal(t, "MD5", fi.ChecksumSpec.Algorithm)
	sameTime(t, calc, fi.LastChecksumCheck)
	sameTime(t, model.Epoch, fi.LastFileCheck)

	// A later listing keeps the checksum.
	e.list(t, "pB", "f1")
	fi = e.info(t, "f1", "pB")
	assert.Equal(t, model.FileStateExisting, fi.FileState)
	require.NotNil(t, fi.Checksum)
	assert.Equal(t, "aa", *fi.Checksum)

	// A new checksum report resets the checksum state.
	require.NoError(t, e.s.SetChecksumValid(e.ctx, "c1", "f1", []string{"pB"}))
	e.checksum(t, "pB", "f1", "bb", time.Time{})
	fi = e.info(t, "f1", "pB")
	assert.Equal(t, model.ChecksumStateUnknown, fi.ChecksumState)
	assert.Equal(t, "bb", *fi.Checksum)
	sameTime(t, t0, fi.LastChecksumCheck)
}

func testValidation(t *testing.T, factory Factory) {
	e := setup(t, factory)
	item := []model.FileIDsItem{{FileID: "f1"}}

	assert.ErrorIs(t, e.s.UpdateFileIDs(e.ctx, "c1", "pX", item), store.ErrUnknownPillar)
	assert.ErrorIs(t, e.s.UpdateChecksumData(e.ctx, "c1", "pX", []model.ChecksumDataItem{{FileID: "f1"}}), store.ErrUnknownPillar)
	assert.ErrorIs(t, e.s.SetFileMissing(e.ctx, "c1", "f1", []string{"pA", "pX"}), store.ErrUnknownPillar)
	assert.ErrorIs(t, e.s.UpdateFileIDs(e.ctx, "nope", "pA", item), store.ErrCollectionNotFound)
	assert.ErrorIs(t, e.s.SetAllFileStatesToUnknown(e.ctx, "nope"), store.ErrCollectionNotFound)
	_, err := e.s.GetNumberOfExistingFilesForPillar(e.ctx, "c1", "pX")
	assert.ErrorIs(t, err, store.ErrUnknownPillar)

	// Rejected writes leave no trace.
	n, err := e.s.GetNumberOfFilesInCollection(e.ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testTransitions(t *testing.T, factory Factory) {
	e := setup(t, factory)
	e.list(t, "pA", "f1")
	e.list(t, "pB", "f1")
	e.checksum(t, "pA", "f1", "aa", t0)
	e.checksum(t, "pB", "f1", "aa", t0)

	require.NoError(t, e.s.SetChecksumValid(e.ctx, "c1", "f1", []string{"pA", "pB"}))
	assert.Equal(t, model.ChecksumStateValid, e.info(t, "f1", "pA").ChecksumState)

	require.NoError(t, e.s.SetFileMissing(e.ctx, "c1", "f1", []string{"pA"}))
	fi := e.info(t, "f1", "pA")
	assert.Equal(t, model.FileStateMissing, fi.FileState)
	assert.Equal(t, model.ChecksumStateUnknown, fi.ChecksumState)

	// VALID never lands on a MISSING record.
	require.NoError(t, e.s.SetChecksumValid(e.ctx, "c1", "f1", []string{"pA", "pB"}))
	assert.Equal(t, model.ChecksumStateUnknown, e.info(t, "f1", "pA").ChecksumState)
	assert.Equal(t, model.ChecksumStateValid, e.info(t, "f1", "pB").ChecksumState)

	require.NoError(t, e.s.SetChecksumError(e.ctx, "c1", "f1", []string{"pB"}))
	assert.Equal(t, model.ChecksumStateError, e.info(t, "f1", "pB").ChecksumState)
	assert.Equal(t, model.FileStateExisting, e.info(t, "f1", "pB").FileState)

	// Transitions never create records.
	require.NoError(t, e.s.SetFileMissing(e.ctx, "c1", "ghost", pABC))
	infos, err := e.s.GetFileInfosForFile(e.ctx, "c1", "ghost")
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func testSweep(t *testing.T, factory Factory) {
	e := setup(t, factory)
	for _, p := range pABC {
		e.list(t, p, "f1", "f2")
	}

	require.NoError(t, e.s.SetAllFileStatesToUnknown(e.ctx, "c1"))
	for _, p := range pABC {
		assert.Equal(t, model.FileStateUnknown, e.info(t, "f1", p).FileState)
	}

	cutoff := e.clock.Advance(time.Hour)
	e.clock.Advance(time.Second)
	for _, p := range pABC {
		e.list(t, p, "f1")
	}
	e.list(t, "pA", "f2")

	require.NoError(t, e.s.SetOldUnknownFilesToMissing(e.ctx, "c1", cutoff))
	assert.Equal(t, model.FileStateExisting, e.info(t, "f1", "pC").FileState)
	assert.Equal(t, model.FileStateExisting, e.info(t, "f2", "pA").FileState)
	assert.Equal(t, model.FileStateMissing, e.info(t, "f2", "pB").FileState)
	assert.Equal(t, model.FileStateMissing, e.info(t, "f2", "pC").FileState)

	missing := drain(t)(e.s.FindMissingFiles(e.ctx, "c1"))
	assert.Equal(t, []string{"f2"}, missing)
}

func testConsistency(t *testing.T, factory Factory) {
	e := setup(t, factory)
	old := t0.Add(-48 * time.Hour)
	for _, p := range pABC {
		e.list(t, p, "agree", "differ", "stale", "gone")
	}
	for _, p := range pABC {
		e.checksum(t, p, "agree", "aa", t0)
		e.checksum(t, p, "gone", "aa", t0)
	}
	e.checksum(t, "pA", "differ", "aa", t0)
	e.checksum(t, "pB", "differ", "bb", t0)
	e.checksum(t, "pA", "stale", "aa", t0)
	e.checksum(t, "pB", "stale", "zz", old)
	e.checksum(t, "pC", "gone", "zz", t0)
	require.NoError(t, e.s.SetFileMissing(e.ctx, "c1", "gone", []string{"pC"}))

	cutoff := t0.Add(-24 * time.Hour)
	bad := drain(t)(e.s.FindFilesWithInconsistentChecksums(e.ctx, "c1", cutoff))
	assert.Equal(t, []string{"differ"}, bad)

	// Without a cutoff the stale report counts too.
	bad = drain(t)(e.s.FindFilesWithInconsistentChecksums(e.ctx, "c1", time.Time{}))
	assert.Equal(t, []string{"differ", "stale"}, bad)

	require.NoError(t, e.s.SetFilesWithConsistentChecksumsToValid(e.ctx, "c1", cutoff))
	for _, p := range pABC {
		assert.Equal(t, model.ChecksumStateValid, e.info(t, "agree", p).ChecksumState)
	}
	assert.Equal(t, model.ChecksumStateValid, e.info(t, "gone", "pA").ChecksumState)
	assert.Equal(t, model.ChecksumStateUnknown, e.info(t, "gone", "pC").ChecksumState)
	assert.Equal(t, model.ChecksumStateUnknown, e.info(t, "differ", "pA").ChecksumState)
	assert.Equal(t, model.ChecksumStateValid, e.info(t, "stale", "pA").ChecksumState)
	assert.Equal(t, model.ChecksumStateUnknown, e.info(t, "stale", "pB").ChecksumState)

	noSum := drain(t)(e.s.FindMissingChecksums(e.ctx, "c1"))
	assert.Equal(t, []string{"differ", "stale"}, noSum)
}

func testMissing(t *testing.T, factory Factory) {
	e := setup(t, factory)
	e.list(t, "pA", "f1", "f2", "f3")
	e.list(t, "pB", "f1", "f2")
	e.list(t, "pC", "f1")
	require.NoError(t, e.s.UpdateFileIDs(e.ctx, "c1", "pA", []model.FileIDsItem{{FileID: "big", FileSize: 5000}}))

	missing := drain(t)(e.s.FindMissingFiles(e.ctx, "c1"))
	assert.Equal(t, []string{"big", "f2", "f3"}, missing)

	copies := drain(t)(e.s.FindFilesWithMissingCopies(e.ctx, "c1", 2, 0, 0))
	assert.Equal(t, []string{"big", "f3"}, copies)

	copies = drain(t)(e.s.FindFilesWithMissingCopies(e.ctx, "c1", 2, 0, 1000))
	assert.Equal(t, []string{"f3"}, copies)

	copies = drain(t)(e.s.FindFilesWithMissingCopies(e.ctx, "c1", 3, 1000, 0))
	assert.Equal(t, []string{"big"}, copies)

	// Closing early leaves the store usable.
	it, err := e.s.FindMissingFiles(e.ctx, "c1")
	require.NoError(t, err)
	require.True(t, it.Next())
	require.NoError(t, it.Close())
	e.list(t, "pB", "f3")

	_, err = e.s.FindFilesWithMissingCopies(e.ctx, "c1", 2, 10, 5)
	assert.ErrorIs(t, err, store.ErrInvalidArgument)
}

func testPillarQueries(t *testing.T, factory Factory) {
	e := setup(t, factory)
	e.list(t, "pA", "f4", "f2", "f3", "f1")
	require.NoError(t, e.s.SetFileMissing(e.ctx, "c1", "f3", []string{"pA"}))
	require.NoError(t, e.s.SetChecksumError(e.ctx, "c1", "f4", []string{"pA"}))

	page, err := e.s.GetFilesOnPillar(e.ctx, "c1", "pA", 0, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"f1", "f2"}, page)
	page, err = e.s.GetFilesOnPillar(e.ctx, "c1", "pA", 2, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"f4"}, page)

	page, err = e.s.GetMissingFilesOnPillar(e.ctx, "c1", "pA", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"f3"}, page)
	page, err = e.s.GetFilesWithChecksumErrorsOnPillar(e.ctx, "c1", "pA", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"f4"}, page)
	page, err = e.s.GetFilesOnPillar(e.ctx, "c1", "pB", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, page)

	existing, err := e.s.GetNumberOfExistingFilesForPillar(e.ctx, "c1", "pA")
	require.NoError(t, err)
	assert.Equal(t, int64(3), existing)
	missing, err := e.s.GetNumberOfMissingFilesForPillar(e.ctx, "c1", "pA")
	require.NoError(t, err)
	assert.Equal(t, int64(1), missing)
	errs, err := e.s.GetNumberOfChecksumErrorsForPillar(e.ctx, "c1", "pA")
	require.NoError(t, err)
	assert.Equal(t, int64(1), errs)

	_, err = e.s.GetFilesOnPillar(e.ctx, "c1", "pA", -1, 10)
	assert.ErrorIs(t, err, store.ErrInvalidArgument)
}

func testRemoval(t *testing.T, factory Factory) {
	e := setup(t, factory)
	e.list(t, "pA", "f1", "f2")
	e.list(t, "pB", "f1")

	require.NoError(t, e.s.RemoveFileID(e.ctx, "c1", "f1"))
	require.NoError(t, e.s.RemoveFileID(e.ctx, "c1", "f1"))
	infos, err := e.s.GetFileInfosForFile(e.ctx, "c1", "f1")
	require.NoError(t, err)
	assert.Empty(t, infos)

	require.NoError(t, e.s.AddCollection(e.ctx, "c2", []string{"pA", "pZ"}))
	require.NoError(t, e.s.UpdateFileIDs(e.ctx, "c2", "pA", []model.FileIDsItem{{FileID: "f2", FileSize: 7}, {FileID: "g1", FileSize: 8}}))
	require.NoError(t, e.s.UpdateFileIDs(e.ctx, "c2", "pZ", []model.FileIDsItem{{FileID: "f2", FileSize: 7}}))
	require.NoError(t, e.s.RecordStatistics(e.ctx, model.CollectionStatistics{CollectionID: "c2", RecordedAt: t0, FileCount: 2}))

	require.NoError(t, e.s.RecordStatistics(e.ctx, model.CollectionStatistics{CollectionID: "c1", RecordedAt: t0, FileCount: 1}))
	require.NoError(t, e.s.RemoveCollection(e.ctx, "c1"))
	assert.ErrorIs(t, e.s.RemoveCollection(e.ctx, "c1"), store.ErrCollectionNotFound)
	assert.ErrorIs(t, e.s.RemoveCollection(e.ctx, "nope"), store.ErrCollectionNotFound)

	// Other collections keep their records, including ones sharing a file id.
	n2, err := e.s.GetNumberOfFilesInCollection(e.ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n2)
	infos, err = e.s.GetFileInfosForFile(e.ctx, "c2", "f2")
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "c2", infos[0].CollectionID)
	assert.Equal(t, int64(7), infos[0].FileSize)
	existing, err := e.s.GetNumberOfExistingFilesForPillar(e.ctx, "c2", "pA")
	require.NoError(t, err)
	assert.Equal(t, int64(2), existing)
	stats2, err := e.s.LatestStatistics(e.ctx, "c2")
	require.NoError(t, err)
	require.NotNil(t, stats2)
	assert.Equal(t, int64(2), stats2.FileCount)
	cols, err := e.s.Collections(e.ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.CollectionConfig{{ID: "c2", PillarIDs: []string{"pA", "pZ"}}}, cols)

	n, err := e.s.GetNumberOfFilesInCollection(e.ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, n)
	ids := drain(t)(e.s.GetAllFileIDs(e.ctx, "c1"))
	assert.Empty(t, ids)
	stats, err := e.s.LatestStatistics(e.ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, stats)

	// The id can be reused with a different pillar set.
	require.NoError(t, e.s.AddCollection(e.ctx, "c1", []string{"pQ"}))
	n, err = e.s.GetNumberOfFilesInCollection(e.ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testStatistics(t *testing.T, factory Factory) {
	e := setup(t, factory)

	stats, err := e.s.LatestStatistics(e.ctx, "c1")
	require.NoError(t, err)
	assert.Nil(t, stats)

	first := model.CollectionStatistics{CollectionID: "c1", RecordedAt: t0, FileCount: 3, MissingFiles: 1}
	second := model.CollectionStatistics{
		CollectionID: "c1", RecordedAt: t0.Add(time.Hour), FileCount: 4, InconsistentChecksums: 2,
		Pillars: []model.PillarCollectionMetrics{{CollectionID: "c1", PillarID: "pA", Files: 4}},
	}
	require.NoError(t, e.s.RecordStatistics(e.ctx, first))
	require.NoError(t, e.s.RecordStatistics(e.ctx, second))

	stats, err = e.s.LatestStatistics(e.ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(4), stats.FileCount)
	assert.Equal(t, int64(2), stats.InconsistentChecksums)
	sameTime(t, second.RecordedAt, stats.RecordedAt)
	require.Len(t, stats.Pillars, 1)
	assert.Equal(t, int64(4), stats.Pillars[0].Files)

	assert.ErrorIs(t, e.s.RecordStatistics(e.ctx, model.CollectionStatistics{CollectionID: "nope"}), store.ErrCollectionNotFound)
}
