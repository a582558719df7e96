package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"integrity-service/core/model"
	"integrity-service/core/store"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshPeriod is the refresh period after a dirty mark.
const DefaultRefreshPeriod = 5 * time.Second

// Kind names one cached aggregate.
type Kind int

const (
	KindFiles Kind = iota
	KindMissing
	KindChecksumErrors
)

var allKinds = []Kind{KindFiles, KindMissing, KindChecksumErrors}

func (k Kind) String() string {
	switch k {
	case KindFiles:
		return "files"
	case KindMissing:
		return "missing"
	case KindChecksumErrors:
		return "checksum_errors"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

type key struct {
	kind       Kind
	collection string
	pillar     string
}

func (k key) String() string {
	return k.kind.String() + "\x00" + k.collection + "\x00" + k.pillar
}

type entry struct {
	mu       sync.Mutex
	value    int64
	loaded   bool
	fetching bool
	dirty    bool
	// dirtyAt is the time of the first mark not covered by a refresh.
	dirtyAt time.Time
	// gen counts marks; fetchGen is gen when the running fetch started and
	// pendingAt the time of the first mark after that.
	gen       uint64
	fetchGen  uint64
	pendingAt time.Time
}

type fetched struct {
	value int64
	gen   uint64
}

// Store is a store.Store whose per-pillar counters are cached.
// Methods not overridden here pass straight through to the wrapped store.
type Store struct {
	store.Store

	period time.Duration
	now    func() time.Time
	log    *zap.Logger

	mu      sync.RWMutex
	entries map[key]*entry
	sf      singleflight.Group
}

// Option configures a Store.
type Option func(*Store)

// WithRefreshPeriod sets the period after a dirty mark before a counter is refetched.
func WithRefreshPeriod(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.period = d
		}
	}
}

// WithClock overrides the clock used for dirty marks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the cache logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// New wraps inner.
func New(inner store.Store, opts ...Option) *Store {
	s := &Store{
		Store:   inner,
		period:  DefaultRefreshPeriod,
		now:     time.Now,
		log:     zap.NewNop(),
		entries: make(map[key]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) lookup(k key) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[k]
	return e, ok
}

// known reports whether k names a configured pillar of an existing collection.
func (s *Store) known(ctx context.Context, k key) (bool, error) {
	pillars, err := s.Store.PillarsForCollection(ctx, k.collection)
	if errors.Is(err, store.ErrCollectionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return slices.Contains(pillars, k.pillar), nil
}

func (s *Store) entry(k key) *entry {
	if e, ok := s.lookup(k); ok {
		return e
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[k]
	if !ok {
		e = &entry{}
		s.entries[k] = e
	}
	return e
}

func (s *Store) fetch(ctx context.Context, k key) (int64, error) {
	switch k.kind {
	case KindFiles:
		return s.Store.GetNumberOfExistingFilesForPillar(ctx, k.collection, k.pillar)
	case KindMissing:
		return s.Store.GetNumberOfMissingFilesForPillar(ctx, k.collection, k.pillar)
	case KindChecksumErrors:
		return s.Store.GetNumberOfChecksumErrorsForPillar(ctx, k.collection, k.pillar)
	default:
		return 0, fmt.Errorf("unknown aggregate %s", k.kind)
	}
}

func (s *Store) read(ctx context.Context, k key) (int64, error) {
	e, ok := s.lookup(k)
	if !ok {
		// Unknown ids go straight to the wrapped store and never get an entry.
		known, err := s.known(ctx, k)
		if err != nil {
			return 0, err
		}
		if !known {
			return s.fetch(ctx, k)
		}
		e = s.entry(k)
	}
	e.mu.Lock()
	if e.loaded && (!e.dirty || s.now().Sub(e.dirtyAt) < s.period) {
		v := e.value
		e.mu.Unlock()
		return v, nil
	}
	e.mu.Unlock()

	res, err, _ := s.sf.Do(k.String(), func() (any, error) {
		e.mu.Lock()
		e.fetching = true
		e.fetchGen = e.gen
		e.pendingAt = time.Time{}
		gen := e.gen
		e.mu.Unlock()

		// Waiters share this fetch; it outlives the context of the caller that started it.
		v, err := s.fetch(context.WithoutCancel(ctx), k)

		e.mu.Lock()
		defer e.mu.Unlock()
		e.fetching = false
		if err != nil {
			return nil, err
		}
		e.value = v
		e.loaded = true
		if e.gen == gen {
			e.dirty = false
		} else {
			e.dirty = true
			e.dirtyAt = e.pendingAt
		}
		return fetched{value: v, gen: gen}, nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Debug("Aggregate refreshed", zap.Stringer("kind", k.kind),
		zap.String("collection", k.collection), zap.String("pillar", k.pillar))
	return res.(fetched).value, nil
}

// mark flags the given counters dirty. Counters never read are left alone.
func (s *Store) mark(collectionID string, kinds []Kind, pillarIDs []string) {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, kind := range kinds {
		for _, p := range pillarIDs {
			if e, ok := s.entries[key{kind: kind, collection: collectionID, pillar: p}]; ok {
				e.markDirty(now)
			}
		}
	}
}

// markCollection flags the given counters dirty for every pillar of the collection.
func (s *Store) markCollection(collectionID string, kinds ...Kind) {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	for k, e := range s.entries {
		if k.collection != collectionID {
			continue
		}
		for _, kind := range kinds {
			if k.kind == kind {
				e.markDirty(now)
			}
		}
	}
}

func (e *entry) markDirty(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.loaded && !e.fetching {
		return
	}
	e.gen++
	if e.fetching && e.gen == e.fetchGen+1 {
		e.pendingAt = now
	}
	if !e.dirty {
		e.dirty = true
		e.dirtyAt = now
	}
}

func (s *Store) drop(collectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if k.collection == collectionID {
			delete(s.entries, k)
		}
	}
}

func (s *Store) GetNumberOfExistingFilesForPillar(ctx context.Context, collectionID, pillarID string) (int64, error) {
	return s.read(ctx, key{kind: KindFiles, collection: collectionID, pillar: pillarID})
}

func (s *Store) GetNumberOfMissingFilesForPillar(ctx context.Context, collectionID, pillarID string) (int64, error) {
	return s.read(ctx, key{kind: KindMissing, collection: collectionID, pillar: pillarID})
}

func (s *Store) GetNumberOfChecksumErrorsForPillar(ctx context.Context, collectionID, pillarID string) (int64, error) {
	return s.read(ctx, key{kind: KindChecksumErrors, collection: collectionID, pillar: pillarID})
}

// PillarCollectionMetrics reads all three counters of one pillar.
func (s *Store) PillarCollectionMetrics(ctx context.Context, collectionID, pillarID string) (model.PillarCollectionMetrics, error) {
	m := model.PillarCollectionMetrics{CollectionID: collectionID, PillarID: pillarID}
	var err error
	if m.Files, err = s.GetNumberOfExistingFilesForPillar(ctx, collectionID, pillarID); err != nil {
		return m, err
	}
	if m.MissingFiles, err = s.GetNumberOfMissingFilesForPillar(ctx, collectionID, pillarID); err != nil {
		return m, err
	}
	if m.ChecksumErrors, err = s.GetNumberOfChecksumErrorsForPillar(ctx, collectionID, pillarID); err != nil {
		return m, err
	}
	return m, nil
}

// AllMetrics reads the counters of every pillar of every collection.
func (s *Store) AllMetrics(ctx context.Context) ([]model.PillarCollectionMetrics, error) {
	cols, err := s.Store.Collections(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.PillarCollectionMetrics
	for _, c := range cols {
		for _, p := range c.PillarIDs {
			m, err := s.PillarCollectionMetrics(ctx, c.ID, p)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
	}
	return out, nil
}

// Unwrap returns the wrapped store.
func (s *Store) Unwrap() store.Store { return s.Store }
