package pillar

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"integrity-service/core/model"
	"integrity-service/core/reconcile"
	"integrity-service/core/store"
	"integrity-service/core/store/memory"
	"integrity-service/core/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePillar serves fixed reports.
type fakePillar struct {
	id    string
	files map[string]string
	err   error
}

func (f *fakePillar) ID() string { return f.id }
func (f *fakePillar) HasActualFile() bool { return true }
func (f *fakePillar) DefaultSpec() model.ChecksumSpec { return DefaultSpec }

func (f *fakePillar) ListFiles(context.Context) ([]model.FileIDsItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	var items []model.FileIDsItem
	for id := range f.files {
		items = append(items, model.FileIDsItem{FileID: id, FileSize: 1})
	}
	return items, nil
}

func (f *fakePillar) Checksums(context.Context, model.ChecksumSpec) ([]model.ChecksumDataItem, error) {
	var items []model.ChecksumDataItem
	for id, sum := range f.files {
		items = append(items, model.ChecksumDataItem{FileID: id, Checksum: sum, Spec: DefaultSpec})
	}
	return items, nil
}

func (f *fakePillar) ComputeChecksum(context.Context, string, model.ChecksumSpec) (model.ChecksumDataItem, error) {
	return model.ChecksumDataItem{}, ErrUnsupported
}

func (f *fakePillar) FetchFile(context.Context, string) (io.ReadCloser, error) {
	return nil, ErrUnsupported
}

// storeIngester feeds reports straight into a store.
type storeIngester struct{ s store.Store }

func (i storeIngester) IngestFileListing(ctx context.Context, collectionID, pillarID string, items []model.FileIDsItem) error {
	return i.s.UpdateFileIDs(ctx, collectionID, pillarID, items)
}

func (i storeIngester) IngestChecksums(ctx context.Context, collectionID, pillarID string, items []model.ChecksumDataItem) error {
	return i.s.UpdateChecksumData(ctx, collectionID, pillarID, items)
}

type cycleFixture struct {
	clock  *storetest.Clock
	store  *memory.Store
	engine *reconcile.Engine
	p1, p2 *fakePillar
	col    *Collector
}

func newCycleFixture(t *testing.T) *cycleFixture {
	t.Helper()
	clock := storetest.NewClock(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	s, err := memory.New([]model.CollectionConfig{{ID: "c", PillarIDs: []string{"p1", "p2"}}}, memory.WithClock(clock.Now))
	require.NoError(t, err)
	f := &cycleFixture{
		clock:  clock,
		store:  s,
		engine: reconcile.NewEngine(s, zap.NewNop(), reconcile.Options{}).WithClock(clock.Now),
		p1:     &fakePillar{id: "p1", files: map[string]string{"a": md5Hello, "b": md5World}},
		p2:     &fakePillar{id: "p2", files: map[string]string{"a": md5Hello, "b": md5World}},
	}
	f.col = NewCollector(storeIngester{s}, zap.NewNop(), f.p1, f.p2).WithConcurrency(2)
	return f
}

func (f *cycleFixture) info(t *testing.T, fileID, pillarID string) model.FileInfo {
	t.Helper()
	infos, err := f.store.GetFileInfosForFile(context.Background(), "c", fileID)
	require.NoError(t, err)
	for _, fi := range infos {
		if fi.PillarID == pillarID {
			return fi
		}
	}
	t.Fatalf("no record for %s at %s", fileID, pillarID)
	return model.FileInfo{}
}

func TestCollect_IngestsEveryPillar(t *testing.T) {
	f := newCycleFixture(t)
	reports, err := f.col.Collect(context.Background(), "c", []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Equal(t, []PillarReport{
		{PillarID: "p1", Files: 2, Checksums: 2},
		{PillarID: "p2", Files: 2, Checksums: 2},
	}, reports)
	assert.Equal(t, model.FileStateExisting, f.info(t, "b", "p2").FileState)
	assert.Equal(t, md5World, *f.info(t, "b", "p2").Checksum)
	assert.Equal(t, []string{"p1", "p2"}, f.col.PillarIDs())
}

func TestCollect_UnconfiguredPillar(t *testing.T) {
	f := newCycleFixture(t)
	reports, err := f.col.Collect(context.Background(), "c", []string{"p1", "p9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p9")
	assert.Empty(t, reports[0].Error)
	assert.NotEmpty(t, reports[1].Error)
}

func TestRunCycle(t *testing.T) {
	f := newCycleFixture(t)
	ctx := context.Background()

	res, err := f.col.RunCycle(ctx, f.engine, "c")
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.Sweep.Pillars[0].Missing)
	assert.Equal(t, int64(0), res.Checksums.InconsistentCount)
	assert.Equal(t, model.ChecksumStateValid, f.info(t, "a", "p1").ChecksumState)

	// p2 lost b and reports a different checksum for a.
	f.clock.Advance(time.Hour)
	f.p2.files = map[string]string{"a": md5World}
	res, err = f.col.RunCycle(ctx, f.engine, "c")
	require.NoError(t, err)
	assert.Equal(t, []reconcile.PillarSweep{{PillarID: "p1", Missing: 0}, {PillarID: "p2", Missing: 1}}, res.Sweep.Pillars)
	assert.Equal(t, model.FileStateMissing, f.info(t, "b", "p2").FileState)
	assert.Equal(t, int64(1), res.Checksums.InconsistentCount)
	assert.Equal(t, []string{"a"}, res.Checksums.Inconsistent)
}

func TestRunCycle_FailedCollectionLeavesSweepOpen(t *testing.T) {
	f := newCycleFixture(t)
	ctx := context.Background()
	_, err := f.col.RunCycle(ctx, f.engine, "c")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	f.p2.err = errors.New("pillar offline")
	res, err := f.col.RunCycle(ctx, f.engine, "c")
	require.Error(t, err)
	assert.Nil(t, res.Sweep)
	assert.Equal(t, model.FileStateUnknown, f.info(t, "a", "p2").FileState)
	assert.Equal(t, model.FileStateExisting, f.info(t, "a", "p1").FileState)
}

func TestRunCycle_UnknownCollection(t *testing.T) {
	f := newCycleFixture(t)
	_, err := f.col.RunCycle(context.Background(), f.engine, "nope")
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)
}
