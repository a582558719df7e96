// Package memory is a map-backed store.Store.
//
// Records are sharded by file id, each shard behind its own RWMutex, so ingestion of
// different files does not serialise. A collection gate orders batches against
// whole-collection operations: ingest batches and per-file transitions share it, while
// the mark and reconcile walks hold it exclusively, so a walk never observes or
// interleaves with half of a batch.
package memory

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"sync"
	"time"

	"integrity-service/core/model"
	"integrity-service/core/store"

	"go.uber.org/zap"
)

const shardCount = 16

type shard struct {
	mu    sync.RWMutex
	files map[string]map[string]*model.FileInfo // file id -> pillar id -> record
}

type collection struct {
	id      string
	pillars []string
	set     map[string]struct{}
	shards  [shardCount]*shard

	// gate is held shared by batches and reads, exclusively by whole-collection writes.
	gate sync.RWMutex

	statsMu sync.Mutex
	stats   []model.CollectionStatistics
}

func newCollection(id string, pillars []string) *collection {
	c := &collection{id: id, pillars: pillars, set: make(map[string]struct{}, len(pillars))}
	for _, p := range pillars {
		c.set[p] = struct{}{}
	}
	for i := range c.shards {
		c.shards[i] = &shard{files: make(map[string]map[string]*model.FileInfo)}
	}
	return c
}

func (c *collection) shardFor(fileID string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fileID))
	return c.shards[h.Sum32()%shardCount]
}

func (c *collection) checkPillars(pillarIDs ...string) error {
	for _, p := range pillarIDs {
		if _, ok := c.set[p]; !ok {
			return fmt.Errorf("%w: %q in %q", store.ErrUnknownPillar, p, c.id)
		}
	}
	return nil
}

// each visits every record under the shard read locks, in no particular order.
func (c *collection) each(fn func(fileID string, byPillar map[string]*model.FileInfo)) {
	c.gate.RLock()
	defer c.gate.RUnlock()
	for _, sh := range c.shards {
		sh.mu.RLock()
		for id, byPillar := range sh.files {
			fn(id, byPillar)
		}
		sh.mu.RUnlock()
	}
}

// mutate is each with the gate held exclusively and shard write locks.
func (c *collection) mutate(fn func(fileID string, byPillar map[string]*model.FileInfo)) {
	c.gate.Lock()
	defer c.gate.Unlock()
	for _, sh := range c.shards {
		sh.mu.Lock()
		for id, byPillar := range sh.files {
			fn(id, byPillar)
		}
		sh.mu.Unlock()
	}
}

// Store keeps every collection in process memory.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
	now         func() time.Time
	log         *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for arrival times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for skipped entries.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New returns an empty store with the given collections registered.
func New(collections []model.CollectionConfig, opts ...Option) (*Store, error) {
	s := &Store{
		collections: make(map[string]*collection),
		now:         time.Now,
		log:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, cfg := range collections {
		if err := s.AddCollection(context.Background(), cfg.ID, cfg.PillarIDs); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) clock() time.Time { return s.now().UTC() }

func (s *Store) lookup(collectionID string) *collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collections[collectionID]
}

func (s *Store) mustLookup(collectionID string) (*collection, error) {
	c := s.lookup(collectionID)
	if c == nil {
		return nil, fmt.Errorf("%w: %q", store.ErrCollectionNotFound, collectionID)
	}
	return c, nil
}

func normalizePillars(pillarIDs []string) ([]string, error) {
	seen := make(map[string]struct{}, len(pillarIDs))
	out := make([]string, 0, len(pillarIDs))
	for _, p := range pillarIDs {
		if p == "" {
			return nil, fmt.Errorf("%w: empty pillar id", store.ErrInvalidArgument)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: collection needs at least one pillar", store.ErrInvalidArgument)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) AddCollection(_ context.Context, collectionID string, pillarIDs []string) error {
	if collectionID == "" {
		return fmt.Errorf("%w: empty collection id", store.ErrInvalidArgument)
	}
	pillars, err := normalizePillars(pillarIDs)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collectionID]; ok {
		return fmt.Errorf("%w: %q", store.ErrCollectionExists, collectionID)
	}
	s.collections[collectionID] = newCollection(collectionID, pillars)
	return nil
}

func (s *Store) RemoveCollection(_ context.Context, collectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collectionID]; !ok {
		return fmt.Errorf("%w: %q", store.ErrCollectionNotFound, collectionID)
	}
	delete(s.collections, collectionID)
	return nil
}

func (s *Store) Collections(_ context.Context) ([]model.CollectionConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CollectionConfig, 0, len(s.collections))
	for id, c := range s.collections {
		out = append(out, model.CollectionConfig{ID: id, PillarIDs: append([]string(nil), c.pillars...)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) PillarsForCollection(_ context.Context, collectionID string) ([]string, error) {
	c, err := s.mustLookup(collectionID)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), c.pillars...), nil
}

func (s *Store) UpdateFileIDs(_ context.Context, collectionID, pillarID string, items []model.FileIDsItem) error {
	c, err := s.mustLookup(collectionID)
	if err != nil {
		return err
	}
	if err := c.checkPillars(pillarID); err != nil {
		return err
	}
	now := s.clock()
	c.gate.RLock()
	defer c.gate.RUnlock()
	for _, item := range items {
		if item.FileID == "" {
			s.log.Warn("Skipping file listing entry without file id",
				zap.String("collection", collectionID), zap.String("pillar", pillarID))
			continue
		}
		sh := c.shardFor(item.FileID)
		sh.mu.Lock()
		fi := sh.record(item.FileID, pillarID)
		if fi == nil {
			fi = sh.insert(&model.FileInfo{
				FileID: item.FileID, PillarID: pillarID, CollectionID: collectionID,
				LastChecksumCheck: model.Epoch, ChecksumState: model.ChecksumStateUnknown,
			})
		}
		fi.FileState = model.FileStateExisting
		fi.FileSize = item.FileSize
		fi.LastFileCheck = now
		sh.mu.Unlock()
	}
	return nil
}

func (s *Store) UpdateChecksumData(_ context.Context, collectionID, pillarID string, items []model.ChecksumDataItem) error {
	c, err := s.mustLookup(collectionID)
	if err != nil {
		return err
	}
	if err := c.checkPillars(pillarID); err != nil {
		return err
	}
	now := s.clock()
	c.gate.RLock()
	defer c.gate.RUnlock()
	for _, item := range items {
		if item.FileID == "" {
			s.log.Warn("Skipping checksum entry without file id",
				zap.String("collection", collectionID), zap.String("pillar", pillarID))
			continue
		}
		calculated := now
		if !item.CalculatedAt.IsZero() {
			calculated = item.CalculatedAt.UTC()
		}
		var sum *string
		if item.Checksum != "" {
			v := item.Checksum
			sum = &v
		}
		sh := c.shardFor(item.FileID)
		sh.mu.Lock()
		fi := sh.record(item.FileID, pillarID)
		if fi == nil {
			fi = sh.insert(&model.FileInfo{
				FileID: item.FileID, PillarID: pillarID, CollectionID: collectionID,
				LastFileCheck: model.Epoch, FileState: model.FileStateUnknown,
			})
		}
		fi.Checksum = sum
		fi.ChecksumSpec = item.Spec.Normalized()
		fi.LastChecksumCheck = calculated
		fi.ChecksumState = model.ChecksumStateUnknown
		sh.mu.Unlock()
	}
	return nil
}

func (sh *shard) record(fileID, pillarID string) *model.FileInfo {
	return sh.files[fileID][pillarID]
}

func (sh *shard) insert(fi *model.FileInfo) *model.FileInfo {
	byPillar, ok := sh.files[fi.FileID]
	if !ok {
		byPillar = make(map[string]*model.FileInfo)
		sh.files[fi.FileID] = byPillar
	}
	byPillar[fi.PillarID] = fi
	return fi
}

// transition applies fn to the existing records of fileID at pillarIDs.
func (s *Store) transition(collectionID, fileID string, pillarIDs []string, fn func(*model.FileInfo)) error {
	c, err := s.mustLookup(collectionID)
	if err != nil {
		return err
	}
	if err := c.checkPillars(pillarIDs...); err != nil {
		return err
	}
	c.gate.RLock()
	defer c.gate.RUnlock()
	sh := c.shardFor(fileID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	for _, p := range pillarIDs {
		if fi := sh.files[fileID][p]; fi != nil {
			fn(fi)
		}
	}
	return nil
}

func (s *Store) SetFileMissing(_ context.Context, collectionID, fileID string, pillarIDs []string) error {
	return s.transition(collectionID, fileID, pillarIDs, func(fi *model.FileInfo) {
		fi.FileState = model.FileStateMissing
		fi.ChecksumState = model.ChecksumStateUnknown
	})
}

func (s *Store) SetChecksumError(_ context.Context, collectionID, fileID string, pillarIDs []string) error {
	return s.transition(collectionID, fileID, pillarIDs, func(fi *model.FileInfo) {
		fi.ChecksumState = model.ChecksumStateError
	})
}

func (s *Store) SetChecksumValid(_ context.Context, collectionID, fileID string, pillarIDs []string) error {
	return s.transition(collectionID, fileID, pillarIDs, func(fi *model.FileInfo) {
		if fi.FileState != model.FileStateMissing {
			fi.ChecksumState = model.ChecksumStateValid
		}
	})
}

func (s *Store) RemoveFileID(_ context.Context, collectionID, fileID string) error {
	c, err := s.mustLookup(collectionID)
	if err != nil {
		return err
	}
	c.gate.RLock()
	defer c.gate.RUnlock()
	sh := c.shardFor(fileID)
	sh.mu.Lock()
	delete(sh.files, fileID)
	sh.mu.Unlock()
	return nil
}

func (s *Store) GetFileInfosForFile(_ context.Context, collectionID, fileID string) ([]model.FileInfo, error) {
	c := s.lookup(collectionID)
	if c == nil {
		return []model.FileInfo{}, nil
	}
	sh := c.shardFor(fileID)
	sh.mu.RLock()
	out := make([]model.FileInfo, 0, len(sh.files[fileID]))
	for _, fi := range sh.files[fileID] {
		out = append(out, *fi)
	}
	sh.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].PillarID < out[j].PillarID })
	return out, nil
}

// collect snapshots the file ids accepted by keep, sorted ascending.
func (c *collection) collect(keep func(byPillar map[string]*model.FileInfo) bool) []string {
	ids := []string{}
	c.each(func(id string, byPillar map[string]*model.FileInfo) {
		if keep(byPillar) {
			ids = append(ids, id)
		}
	})
	sort.Strings(ids)
	return ids
}

func (s *Store) GetAllFileIDs(_ context.Context, collectionID string) (store.FileIDIterator, error) {
	c := s.lookup(collectionID)
	if c == nil {
		return store.NewSliceIterator(nil), nil
	}
	return store.NewSliceIterator(c.collect(func(m map[string]*model.FileInfo) bool { return len(m) > 0 })), nil
}

func (s *Store) GetNumberOfFilesInCollection(_ context.Context, collectionID string) (int64, error) {
	c := s.lookup(collectionID)
	if c == nil {
		return 0, nil
	}
	var n int64
	c.each(func(_ string, m map[string]*model.FileInfo) {
		if len(m) > 0 {
			n++
		}
	})
	return n, nil
}

func (s *Store) pillarQuery(collectionID, pillarID string, match func(*model.FileInfo) bool) ([]string, error) {
	c := s.lookup(collectionID)
	if c == nil {
		return []string{}, nil
	}
	if err := c.checkPillars(pillarID); err != nil {
		return nil, err
	}
	return c.collect(func(m map[string]*model.FileInfo) bool {
		fi := m[pillarID]
		return fi != nil && match(fi)
	}), nil
}

func page(ids []string, offset, limit int) ([]string, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: offset %d, limit %d", store.ErrInvalidArgument, offset, limit)
	}
	if offset >= len(ids) {
		return []string{}, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

func isExisting(fi *model.FileInfo) bool { return fi.FileState == model.FileStateExisting }
func isMissing(fi *model.FileInfo) bool  { return fi.FileState == model.FileStateMissing }
func isError(fi *model.FileInfo) bool    { return fi.ChecksumState == model.ChecksumStateError }

func (s *Store) pillarPage(collectionID, pillarID string, offset, limit int, match func(*model.FileInfo) bool) ([]string, error) {
	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("%w: offset %d, limit %d", store.ErrInvalidArgument, offset, limit)
	}
	ids, err := s.pillarQuery(collectionID, pillarID, match)
	if err != nil {
		return nil, err
	}
	return page(ids, offset, limit)
}

func (s *Store) pillarCount(collectionID, pillarID string, match func(*model.FileInfo) bool) (int64, error) {
	ids, err := s.pillarQuery(collectionID, pillarID, match)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (s *Store) GetFilesOnPillar(_ context.Context, collectionID, pillarID string, offset, limit int) ([]string, error) {
	return s.pillarPage(collectionID, pillarID, offset, limit, isExisting)
}

func (s *Store) GetMissingFilesOnPillar(_ context.Context, collectionID, pillarID string, offset, limit int) ([]string, error) {
	return s.pillarPage(collectionID, pillarID, offset, limit, isMissing)
}

func (s *Store) GetFilesWithChecksumErrorsOnPillar(_ context.Context, collectionID, pillarID string, offset, limit int) ([]string, error) {
	return s.pillarPage(collectionID, pillarID, offset, limit, isError)
}

func (s *Store) GetNumberOfExistingFilesForPillar(_ context.Context, collectionID, pillarID string) (int64, error) {
	return s.pillarCount(collectionID, pillarID, isExisting)
}

func (s *Store) GetNumberOfMissingFilesForPillar(_ context.Context, collectionID, pillarID string) (int64, error) {
	return s.pillarCount(collectionID, pillarID, isMissing)
}

func (s *Store) GetNumberOfChecksumErrorsForPillar(_ context.Context, collectionID, pillarID string) (int64, error) {
	return s.pillarCount(collectionID, pillarID, isError)
}

func (s *Store) RecordStatistics(_ context.Context, stats model.CollectionStatistics) error {
	c, err := s.mustLookup(stats.CollectionID)
	if err != nil {
		return err
	}
	stats.RecordedAt = stats.RecordedAt.UTC()
	if stats.RecordedAt.IsZero() {
		stats.RecordedAt = s.clock()
	}
	stats.Pillars = append([]model.PillarCollectionMetrics(nil), stats.Pillars...)
	c.statsMu.Lock()
	c.stats = append(c.stats, stats)
	c.statsMu.Unlock()
	return nil
}

func (s *Store) LatestStatistics(_ context.Context, collectionID string) (*model.CollectionStatistics, error) {
	c := s.lookup(collectionID)
	if c == nil {
		return nil, nil
	}
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	var latest *model.CollectionStatistics
	for i := range c.stats {
		if latest == nil || !c.stats[i].RecordedAt.Before(latest.RecordedAt) {
			latest = &c.stats[i]
		}
	}
	if latest == nil {
		return nil, nil
	}
	out := *latest
	out.Pillars = append([]model.PillarCollectionMetrics(nil), latest.Pillars...)
	return &out, nil
}

func (s *Store) Close() error { return nil }

var _ store.Store = (*Store)(nil)
