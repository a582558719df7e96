package integrity

import (
	"context"
	"errors"
	"testing"
	"time"

	"integrity-service/core/cache"
	"integrity-service/core/model"
	"integrity-service/core/reconcile"
	"integrity-service/core/storage/mocks"
	"integrity-service/core/store"
	"integrity-service/core/store/memory"
	"integrity-service/core/store/storetest"
	"integrity-service/feature/pillar"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

type fixture struct {
	ctx   context.Context
	clock *storetest.Clock
	svc   *Service
}

func setupService(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	clock := storetest.NewClock(t0)
	mem, err := memory.New([]model.CollectionConfig{{ID: "c1", PillarIDs: []string{"p1", "p2"}}}, memory.WithClock(clock.Now))
	require.NoError(t, err)
	cached := cache.New(mem, cache.WithClock(clock.Now), cache.WithRefreshPeriod(0))
	engine := reconcile.NewEngine(cached, zap.NewNop(), reconcile.Options{MaxListedIssues: 10}).WithClock(clock.Now)
	return &fixture{ctx: context.Background(), clock: clock, svc: NewService(engine, zap.NewNop(), opts...)}
}

func (f *fixture) list(t *testing.T, pillarID string, ids ...string) {
	t.Helper()
	items := make([]model.FileIDsItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, model.FileIDsItem{FileID: id, FileSize: 10, LastModified: t0})
	}
	require.NoError(t, f.svc.IngestFileListing(f.ctx, "c1", pillarID, items))
}

func (f *fixture) checksum(t *testing.T, pillarID, fileID, sum string) {
	t.Helper()
	require.NoError(t, f.svc.IngestChecksums(f.ctx, "c1", pillarID, []model.ChecksumDataItem{
		{FileID: fileID, Checksum: sum, Spec: pillar.DefaultSpec, CalculatedAt: f.clock.Now()},
	}))
}

func TestServiceQueries(t *testing.T) {
	f := setupService(t)
	f.list(t, "p1", "a", "b")
	f.list(t, "p2", "a")
	f.checksum(t, "p1", "a", "aa")
	f.checksum(t, "p2", "a", "bb")

	n, err := f.svc.CountFiles(f.ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := f.svc.GetAllFileIDs(f.ctx, "c1", 1)
	require.NoError(t, err)
	assert.Equal(t, reconcile.IssueList{Count: 2, FileIDs: []string{"a"}, Truncated: true}, all)

	missing, err := f.svc.FindMissingFiles(f.ctx, "c1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, missing.FileIDs)
	assert.False(t, missing.Truncated)

	noSum, err := f.svc.FindMissingChecksums(f.ctx, "c1", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, noSum.FileIDs)

	bad, err := f.svc.FindFilesWithInconsistentChecksums(f.ctx, "c1", time.Time{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, bad.FileIDs)

	copies, err := f.svc.FindFilesWithMissingCopies(f.ctx, "c1", 0, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, copies.FileIDs)

	infos, err := f.svc.GetFileInfos(f.ctx, "c1", "a")
	require.NoError(t, err)
	assert.Len(t, infos, 2)
}

func TestServiceUnknownCollectionQueriesAreEmpty(t *testing.T) {
	f := setupService(t)

	res, err := f.svc.FindMissingFiles(f.ctx, "nope", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Count)
	assert.Empty(t, res.FileIDs)

	_, err = f.svc.Pillars(f.ctx, "nope")
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)
}

func TestServiceAdministration(t *testing.T) {
	f := setupService(t)

	err := f.svc.AddCollection(f.ctx, model.CollectionConfig{ID: " "})
	assert.ErrorIs(t, err, store.ErrInvalidArgument)

	require.NoError(t, f.svc.AddCollection(f.ctx, model.CollectionConfig{ID: "c2", PillarIDs: []string{"p3"}}))
	err = f.svc.AddCollection(f.ctx, model.CollectionConfig{ID: "c2", PillarIDs: []string{"p3"}})
	assert.ErrorIs(t, err, store.ErrCollectionExists)

	cols, err := f.svc.Collections(f.ctx)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "c2", cols[1].ID)

	require.NoError(t, f.svc.RemoveCollection(f.ctx, "c2"))
	assert.ErrorIs(t, f.svc.RemoveCollection(f.ctx, "c2"), store.ErrCollectionNotFound)

	f.list(t, "p1", "a")
	assert.ErrorIs(t, f.svc.RemoveFile(f.ctx, "c1", ""), store.ErrInvalidArgument)
	require.NoError(t, f.svc.RemoveFile(f.ctx, "c1", "a"))
	n, err := f.svc.CountFiles(f.ctx, "c1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestServiceIngestUnknownPillar(t *testing.T) {
	f := setupService(t)
	err := f.svc.IngestFileListing(f.ctx, "c1", "p9", []model.FileIDsItem{{FileID: "a"}})
	assert.ErrorIs(t, err, store.ErrUnknownPillar)
}

func TestServicePillarFiles(t *testing.T) {
	f := setupService(t)
	f.list(t, "p1", "a", "b", "c")
	f.list(t, "p2", "a", "b", "c")
	f.clock.Advance(time.Minute)

	cutoff, err := f.svc.BeginFullListingSweep(f.ctx, "c1")
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	f.list(t, "p1", "a", "b", "c")
	f.list(t, "p2", "a")
	sweep, err := f.svc.ConcludeSweep(f.ctx, "c1", cutoff)
	require.NoError(t, err)
	require.Len(t, sweep.Pillars, 2)
	assert.Equal(t, int64(2), sweep.Pillars[1].Missing)

	page, err := f.svc.PillarFiles(f.ctx, "c1", "p1", StateExisting, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, page)

	page, err = f.svc.PillarFiles(f.ctx, "c1", "p2", StateMissing, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, page)

	page, err = f.svc.PillarFiles(f.ctx, "c1", "p2", StateChecksumError, 0, 5)
	require.NoError(t, err)
	assert.Empty(t, page)

	_, err = f.svc.PillarFiles(f.ctx, "c1", "p1", "broken", 0, 5)
	assert.ErrorIs(t, err, store.ErrInvalidArgument)

	m, err := f.svc.GetPillarCollectionMetrics(f.ctx, "c1", "p2")
	require.NoError(t, err)
	assert.Equal(t, model.PillarCollectionMetrics{CollectionID: "c1", PillarID: "p2", Files: 1, MissingFiles: 2}, m)

	all, err := f.svc.AllMetrics(f.ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestServiceAuditRecordsStatistics(t *testing.T) {
	f := setupService(t)
	f.list(t, "p1", "a")
	f.list(t, "p2", "a")
	f.checksum(t, "p1", "a", "aa")
	f.checksum(t, "p2", "a", "aa")

	res, err := f.svc.ReconcileChecksums(f.ctx, "c1", time.Time{})
	require.NoError(t, err)
	assert.Zero(t, res.InconsistentCount)

	report, err := f.svc.Audit(f.ctx, "c1", time.Time{})
	require.NoError(t, err)
	assert.True(t, report.Healthy())

	stats, err := f.svc.LatestStatistics(f.ctx, "c1")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.FileCount)
}

func TestServiceVoteRequiresConfirmation(t *testing.T) {
	f := setupService(t)
	f.list(t, "p1", "a")
	f.list(t, "p2", "a")
	f.checksum(t, "p1", "a", "aa")
	f.checksum(t, "p2", "a", "bb")

	plan, executed, err := f.svc.Vote(f.ctx, "c1", time.Time{}, reconcile.ApplyOptions{})
	require.NoError(t, err)
	require.NotNil(t, plan)
	assert.Zero(t, executed)

	m, err := f.svc.GetPillarCollectionMetrics(f.ctx, "c1", "p1")
	require.NoError(t, err)
	assert.Zero(t, m.ChecksumErrors)
}

func TestServiceNotConfigured(t *testing.T) {
	f := setupService(t)

	_, err := f.svc.Collect(f.ctx, "c1")
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = f.svc.CheckSchema()
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, _, err = f.svc.CheckStorage(f.ctx, false)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = f.svc.ExportReport(f.ctx, &reconcile.Report{CollectionID: "c1"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestServiceExportReport(t *testing.T) {
	client := new(mocks.Client)
	f := setupService(t, WithStorage(client, "bucket", "reports/"))
	report := &reconcile.Report{CollectionID: "c1", GeneratedAt: t0}

	client.On("PutObject", mock.Anything, "bucket", "reports/c1/20260102T030405Z.json", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, nil).Once()
	name, err := f.svc.ExportReport(f.ctx, report)
	require.NoError(t, err)
	assert.Equal(t, "reports/c1/20260102T030405Z.json", name)

	client.On("PutObject", mock.Anything, "bucket", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("denied")).Once()
	_, err = f.svc.ExportReport(f.ctx, report)
	assert.ErrorContains(t, err, "failed to upload report")
	client.AssertExpectations(t)
}

func TestServiceCheckStorageFix(t *testing.T) {
	client := new(mocks.Client)
	defs := []pillar.Definition{{ID: "p1", Kind: pillar.KindFull, Location: "p1/"}}
	f := setupService(t, WithStorage(client, "bucket", "reports/"), WithPillars(defs, nil, 1))

	client.On("BucketExists", mock.Anything, "bucket").Return(false, nil)
	client.On("MakeBucket", mock.Anything, "bucket", mock.Anything).Return(nil)
	client.On("PutObject", mock.Anything, "bucket", "p1/.keep", mock.Anything, int64(0), mock.Anything).
		Return(minio.UploadInfo{}, nil)

	report, unfixed, err := f.svc.CheckStorage(f.ctx, true)
	require.NoError(t, err)
	assert.False(t, report.BucketExists)
	assert.Empty(t, unfixed)
	client.AssertExpectations(t)
}
