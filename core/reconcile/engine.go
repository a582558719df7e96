package reconcile

import (
	"context"
	"fmt"
	"time"

	"integrity-service/core/model"
	"integrity-service/core/store"

	"go.uber.org/zap"
)

// MetricsReader serves the per-pillar counters of a collection.
// The debounced cache implements it.
type MetricsReader interface {
	PillarCollectionMetrics(ctx context.Context, collectionID, pillarID string) (model.PillarCollectionMetrics, error)
}

// unwrapper is implemented by store decorators that may serve stale counts.
type unwrapper interface {
	Unwrap() store.Store
}

// Engine drives the reconciliation protocols over a store.
type Engine struct {
	store   store.Store
	exact   store.Store
	metrics MetricsReader
	log     *zap.Logger
	now     func() time.Time
	opts    Options
}

// NewEngine creates an engine over s. When s wraps another store, counts that must be
// exact are read from the wrapped store while every mutation still goes through s.
func NewEngine(s store.Store, log *zap.Logger, opts Options) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{store: s, exact: s, log: log, now: time.Now, opts: opts}
	if u, ok := s.(unwrapper); ok {
		e.exact = u.Unwrap()
	}
	if m, ok := s.(MetricsReader); ok {
		e.metrics = m
	}
	return e
}

// WithClock overrides the engine clock and returns the engine.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Store returns the store the engine mutates.
func (e *Engine) Store() store.Store { return e.store }

// Options returns the engine options.
func (e *Engine) Options() Options { return e.opts }

// ChecksumCutoff returns the default staleness boundary for checksum comparison.
func (e *Engine) ChecksumCutoff() time.Time {
	if e.opts.ChecksumMaxAge <= 0 {
		return time.Time{}
	}
	return e.now().UTC().Add(-e.opts.ChecksumMaxAge)
}

// BeginFullListingSweep is the mark phase: every record becomes UNKNOWN until its
// pillar lists it again. It returns the sweep cutoff to pass to ConcludeSweep.
func (e *Engine) BeginFullListingSweep(ctx context.Context, collectionID string) (time.Time, error) {
	cutoff := e.now().UTC()
	if err := e.store.SetAllFileStatesToUnknown(ctx, collectionID); err != nil {
		return time.Time{}, err
	}
	e.log.Info("Listing sweep started", zap.String("collection", collectionID), zap.Time("cutoff", cutoff))
	return cutoff, nil
}

// ConcludeSweep condemns every record still UNKNOWN and last checked before cutoff.
// Records listed after the mark carry a later check time and are kept.
func (e *Engine) ConcludeSweep(ctx context.Context, collectionID string, cutoff time.Time) (*SweepResult, error) {
	if cutoff.IsZero() {
		return nil, fmt.Errorf("%w: sweep cutoff is required", store.ErrInvalidArgument)
	}
	if err := e.store.SetOldUnknownFilesToMissing(ctx, collectionID, cutoff); err != nil {
		return nil, err
	}
	pillars, err := e.store.PillarsForCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	res := &SweepResult{CollectionID: collectionID, Cutoff: cutoff.UTC(), Pillars: make([]PillarSweep, 0, len(pillars))}
	for _, p := range pillars {
		n, err := e.exact.GetNumberOfMissingFilesForPillar(ctx, collectionID, p)
		if err != nil {
			return nil, err
		}
		res.Pillars = append(res.Pillars, PillarSweep{PillarID: p, Missing: n})
	}
	e.log.Info("Listing sweep concluded", zap.String("collection", collectionID), zap.Any("pillars", res.Pillars))
	return res, nil
}

// ReconcileChecksums compares the checksums reported by the pillars. Files whose
// qualifying records agree become VALID; disagreeing files are reported and left as
// they are. A zero cutoff uses the configured staleness window.
func (e *Engine) ReconcileChecksums(ctx context.Context, collectionID string, cutoff time.Time) (*ChecksumResult, error) {
	if cutoff.IsZero() {
		cutoff = e.ChecksumCutoff()
	}
	it, err := e.store.FindFilesWithInconsistentChecksums(ctx, collectionID, cutoff)
	if err != nil {
		return nil, err
	}
	// The cursor is released before the update runs.
	n, ids, err := store.Count(it, e.opts.listLimit())
	if err != nil {
		return nil, err
	}
	if err := e.store.SetFilesWithConsistentChecksumsToValid(ctx, collectionID, cutoff); err != nil {
		return nil, err
	}
	if n > 0 {
		e.log.Warn("Inconsistent checksums found", zap.String("collection", collectionID), zap.Int64("files", n))
	}
	return &ChecksumResult{CollectionID: collectionID, Cutoff: cutoff, InconsistentCount: n, Inconsistent: ids}, nil
}

func (e *Engine) issues(it store.FileIDIterator, err error) (IssueList, error) {
	if err != nil {
		return IssueList{}, err
	}
	n, ids, err := store.Count(it, e.opts.listLimit())
	if err != nil {
		return IssueList{}, err
	}
	return IssueList{Count: n, FileIDs: ids, Truncated: int64(len(ids)) < n}, nil
}

// Audit produces the integrity report of a collection and records its statistics.
// It reads only; run ReconcileChecksums first for fresh checksum states.
func (e *Engine) Audit(ctx context.Context, collectionID string, cutoff time.Time) (*Report, error) {
	if cutoff.IsZero() {
		cutoff = e.ChecksumCutoff()
	}
	pillars, err := e.store.PillarsForCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	r := &Report{CollectionID: collectionID, GeneratedAt: e.now().UTC()}

	if r.FileCount, err = e.store.GetNumberOfFilesInCollection(ctx, collectionID); err != nil {
		return nil, err
	}
	if r.MissingFiles, err = e.issues(e.store.FindMissingFiles(ctx, collectionID)); err != nil {
		return nil, err
	}
	if r.MissingChecksums, err = e.issues(e.store.FindMissingChecksums(ctx, collectionID)); err != nil {
		return nil, err
	}
	if r.InconsistentChecksums, err = e.issues(e.store.FindFilesWithInconsistentChecksums(ctx, collectionID, cutoff)); err != nil {
		return nil, err
	}

	for _, p := range pillars {
		m, err := e.pillarMetrics(ctx, collectionID, p)
		if err != nil {
			return nil, err
		}
		r.Pillars = append(r.Pillars, m)
	}

	if err := e.store.RecordStatistics(ctx, r.Statistics()); err != nil {
		return nil, err
	}
	e.log.Info("Audit completed",
		zap.String("collection", collectionID),
		zap.Int64("files", r.FileCount),
		zap.Int64("missing_files", r.MissingFiles.Count),
		zap.Int64("missing_checksums", r.MissingChecksums.Count),
		zap.Int64("inconsistent_checksums", r.InconsistentChecksums.Count))
	return r, nil
}

func (e *Engine) pillarMetrics(ctx context.Context, collectionID, pillarID string) (model.PillarCollectionMetrics, error) {
	if e.metrics != nil {
		return e.metrics.PillarCollectionMetrics(ctx, collectionID, pillarID)
	}
	m := model.PillarCollectionMetrics{CollectionID: collectionID, PillarID: pillarID}
	var err error
	if m.Files, err = e.store.GetNumberOfExistingFilesForPillar(ctx, collectionID, pillarID); err != nil {
		return m, err
	}
	if m.MissingFiles, err = e.store.GetNumberOfMissingFilesForPillar(ctx, collectionID, pillarID); err != nil {
		return m, err
	}
	if m.ChecksumErrors, err = e.store.GetNumberOfChecksumErrorsForPillar(ctx, collectionID, pillarID); err != nil {
		return m, err
	}
	return m, nil
}
