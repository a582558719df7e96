package pillar

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"integrity-service/core/model"
	"integrity-service/core/reconcile"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds how many pillars are queried at once.
const DefaultConcurrency = 4

// Ingester receives pillar reports.
type Ingester interface {
	IngestFileListing(ctx context.Context, collectionID, pillarID string, items []model.FileIDsItem) error
	IngestChecksums(ctx context.Context, collectionID, pillarID string, items []model.ChecksumDataItem) error
}

// PillarReport summarizes what one pillar delivered.
type PillarReport struct {
	PillarID  string `json:"pillar_id"`
	Files     int    `json:"files"`
	Checksums int    `json:"checksums"`
	Error     string `json:"error,omitempty"`
}

// CycleResult is the outcome of RunCycle.
type CycleResult struct {
	CollectionID string                    `json:"collection_id"`
	Pillars      []PillarReport            `json:"pillars"`
	Sweep        *reconcile.SweepResult    `json:"sweep,omitempty"`
	Checksums    *reconcile.ChecksumResult `json:"checksums,omitempty"`
}

// Collector pulls reports from pillar models and hands them to an Ingester.
type Collector struct {
	models      map[string]Model
	ingester    Ingester
	log         *zap.Logger
	concurrency int
}

// NewCollector creates a collector over models.
func NewCollector(ingester Ingester, log *zap.Logger, models ...Model) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	byID := make(map[string]Model, len(models))
	for _, m := range models {
		byID[m.ID()] = m
	}
	return &Collector{models: byID, ingester: ingester, log: log, concurrency: DefaultConcurrency}
}

// WithConcurrency sets the number of pillars queried in parallel.
func (c *Collector) WithConcurrency(n int) *Collector {
	if n > 0 {
		c.concurrency = n
	}
	return c
}

// Pillar returns the model registered for id.
func (c *Collector) Pillar(id string) (Model, bool) {
	m, ok := c.models[id]
	return m, ok
}

// PillarIDs returns the ids of every registered model.
func (c *Collector) PillarIDs() []string {
	ids := make([]string, 0, len(c.models))
	for id := range c.models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Collect ingests a full listing and the default-spec checksums of every given pillar.
// A failing pillar does not stop the others; the joined error names each one that failed.
func (c *Collector) Collect(ctx context.Context, collectionID string, pillarIDs []string) ([]PillarReport, error) {
	reports := make([]PillarReport, len(pillarIDs))
	var (
		mu   sync.Mutex
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for i, pillarID := range pillarIDs {
		i, pillarID := i, pillarID
		reports[i].PillarID = pillarID
		g.Go(func() error {
			err := c.collectPillar(ctx, collectionID, &reports[i])
			if err != nil {
				reports[i].Error = err.Error()
				mu.Lock()
				errs = append(errs, fmt.Errorf("pillar %s: %w", pillarID, err))
				mu.Unlock()
				c.log.Warn("Pillar collection failed",
					zap.String("collection", collectionID),
					zap.String("pillar", pillarID),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
	return reports, errors.Join(errs...)
}

func (c *Collector) collectPillar(ctx context.Context, collectionID string, report *PillarReport) error {
	m, ok := c.models[report.PillarID]
	if !ok {
		return fmt.Errorf("no model configured for pillar %s", report.PillarID)
	}
	files, err := m.ListFiles(ctx)
	if err != nil {
		return err
	}
	if err := c.ingester.IngestFileListing(ctx, collectionID, m.ID(), files); err != nil {
		return err
	}
	report.Files = len(files)

	sums, err := m.Checksums(ctx, model.ChecksumSpec{})
	if err != nil {
		return err
	}
	if err := c.ingester.IngestChecksums(ctx, collectionID, m.ID(), sums); err != nil {
		return err
	}
	report.Checksums = len(sums)
	c.log.Debug("Pillar collected",
		zap.String("collection", collectionID),
		zap.String("pillar", m.ID()),
		zap.Int("files", report.Files),
		zap.Int("checksums", report.Checksums))
	return nil
}

// RunCycle marks the collection, collects every pillar, and then concludes the sweep and
// reconciles checksums. If any pillar fails the sweep is left open: its records stay
// UNKNOWN rather than being condemned to MISSING on incomplete evidence.
func (c *Collector) RunCycle(ctx context.Context, engine *reconcile.Engine, collectionID string) (*CycleResult, error) {
	pillarIDs, err := engine.Store().PillarsForCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	cutoff, err := engine.BeginFullListingSweep(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	result := &CycleResult{CollectionID: collectionID}
	result.Pillars, err = c.Collect(ctx, collectionID, pillarIDs)
	if err != nil {
		return result, fmt.Errorf("collection of %s incomplete, sweep not concluded: %w", collectionID, err)
	}
	if result.Sweep, err = engine.ConcludeSweep(ctx, collectionID, cutoff); err != nil {
		return result, err
	}
	if result.Checksums, err = engine.ReconcileChecksums(ctx, collectionID, engine.ChecksumCutoff()); err != nil {
		return result, err
	}
	c.log.Info("Collection cycle finished",
		zap.String("collection", collectionID),
		zap.Int("pillars", len(pillarIDs)))
	return result, nil
}
