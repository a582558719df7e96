package integrity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"integrity-service/core/metrics"
	"integrity-service/core/model"
	"integrity-service/core/reconcile"
	"integrity-service/core/storage"
	"integrity-service/core/store"
	"integrity-service/core/store/gormstore"
	"integrity-service/feature/integrity/checks"
	"integrity-service/feature/pillar"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotConfigured is returned when an operation needs a dependency the service was
// built without (database, storage or pillar models).
var ErrNotConfigured = errors.New("not configured")

// PillarState selects a per-pillar file page.
type PillarState string

const (
	StateExisting      PillarState = "existing"
	StateMissing       PillarState = "missing"
	StateChecksumError PillarState = "checksum_error"
)

// metricsSource is implemented by the debounced cache.
type metricsSource interface {
	PillarCollectionMetrics(ctx context.Context, collectionID, pillarID string) (model.PillarCollectionMetrics, error)
	AllMetrics(ctx context.Context) ([]model.PillarCollectionMetrics, error)
}

// Service is the integrity model facade: ingestion, queries, administration and
// reconciliation triggers over one store.
type Service struct {
	store    store.Store
	engine   *reconcile.Engine
	logger   *zap.Logger
	recorder *metrics.Recorder

	db           *gorm.DB
	client       storage.Client
	bucket       string
	reportPrefix string

	pillars   []pillar.Definition
	collector *pillar.Collector
}

// Option configures a Service.
type Option func(*Service)

// WithDatabase enables the schema check.
func WithDatabase(db *gorm.DB) Option {
	return func(s *Service) { s.db = db }
}

// WithStorage enables the storage check and report export.
func WithStorage(client storage.Client, bucket, reportPrefix string) Option {
	return func(s *Service) {
		s.client = client
		s.bucket = bucket
		s.reportPrefix = reportPrefix
	}
}

// WithRecorder records operation metrics.
func WithRecorder(r *metrics.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithPillars enables collection cycles over the given pillar models.
func WithPillars(defs []pillar.Definition, models []pillar.Model, concurrency int) Option {
	return func(s *Service) {
		s.pillars = defs
		s.collector = pillar.NewCollector(s, s.logger, models...).WithConcurrency(concurrency)
	}
}

// NewService creates a new integrity service over engine.
func NewService(engine *reconcile.Engine, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{store: engine.Store(), engine: engine, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// track starts timing operation; the returned func records it with the final error.
func (s *Service) track(operation string) func(*error) {
	start := time.Now()
	return func(err *error) { s.recorder.Observe(operation, start, *err) }
}

// IngestFileListing records a pillar's file listing.
func (s *Service) IngestFileListing(ctx context.Context, collectionID, pillarID string, items []model.FileIDsItem) (err error) {
	defer s.track("ingest_listing")(&err)
	if err = s.store.UpdateFileIDs(ctx, collectionID, pillarID, items); err != nil {
		return err
	}
	s.recorder.Ingested("listing", len(items))
	s.logger.Debug("Listing ingested",
		zap.String("collection", collectionID),
		zap.String("pillar", pillarID),
		zap.Int("items", len(items)))
	return nil
}

// IngestChecksums records a pillar's checksum report.
func (s *Service) IngestChecksums(ctx context.Context, collectionID, pillarID string, items []model.ChecksumDataItem) (err error) {
	defer s.track("ingest_checksums")(&err)
	if err = s.store.UpdateChecksumData(ctx, collectionID, pillarID, items); err != nil {
		return err
	}
	s.recorder.Ingested("checksum", len(items))
	s.logger.Debug("Checksums ingested",
		zap.String("collection", collectionID),
		zap.String("pillar", pillarID),
		zap.Int("items", len(items)))
	return nil
}

// AddCollection registers a collection.
func (s *Service) AddCollection(ctx context.Context, cfg model.CollectionConfig) error {
	if strings.TrimSpace(cfg.ID) == "" {
		return fmt.Errorf("%w: collection id is required", store.ErrInvalidArgument)
	}
	if err := s.store.AddCollection(ctx, cfg.ID, cfg.PillarIDs); err != nil {
		return err
	}
	s.logger.Info("Collection added", zap.String("collection", cfg.ID), zap.Strings("pillars", cfg.PillarIDs))
	return nil
}

// RemoveCollection deletes a collection and everything recorded for it.
func (s *Service) RemoveCollection(ctx context.Context, collectionID string) error {
	if err := s.store.RemoveCollection(ctx, collectionID); err != nil {
		return err
	}
	s.logger.Info("Collection removed", zap.String("collection", collectionID))
	return nil
}

func (s *Service) Collections(ctx context.Context) ([]model.CollectionConfig, error) {
	return s.store.Collections(ctx)
}

func (s *Service) Pillars(ctx context.Context, collectionID string) ([]string, error) {
	return s.store.PillarsForCollection(ctx, collectionID)
}

// RemoveFile deletes every record of a file.
func (s *Service) RemoveFile(ctx context.Context, collectionID, fileID string) error {
	if fileID == "" {
		return fmt.Errorf("%w: file id is required", store.ErrInvalidArgument)
	}
	return s.store.RemoveFileID(ctx, collectionID, fileID)
}

func (s *Service) GetFileInfos(ctx context.Context, collectionID, fileID string) ([]model.FileInfo, error) {
	return s.store.GetFileInfosForFile(ctx, collectionID, fileID)
}

// list drains an issue iterator into an exact count and the first limit ids. A limit
// of zero or less falls back to MaxListedIssues, and lists everything when that is unset.
func (s *Service) list(it store.FileIDIterator, err error, limit int) (reconcile.IssueList, error) {
	if err != nil {
		return reconcile.IssueList{}, err
	}
	if limit <= 0 {
		limit = s.engine.Options().MaxListedIssues
	}
	if limit <= 0 {
		limit = math.MaxInt
	}
	n, ids, err := store.Count(it, limit)
	if err != nil {
		return reconcile.IssueList{}, err
	}
	return reconcile.IssueList{Count: n, FileIDs: ids, Truncated: int64(len(ids)) < n}, nil
}

// GetAllFileIDs lists the file ids of a collection.
func (s *Service) GetAllFileIDs(ctx context.Context, collectionID string, limit int) (reconcile.IssueList, error) {
	it, err := s.store.GetAllFileIDs(ctx, collectionID)
	return s.list(it, err, limit)
}

func (s *Service) CountFiles(ctx context.Context, collectionID string) (int64, error) {
	return s.store.GetNumberOfFilesInCollection(ctx, collectionID)
}

func (s *Service) FindMissingFiles(ctx context.Context, collectionID string, limit int) (reconcile.IssueList, error) {
	it, err := s.store.FindMissingFiles(ctx, collectionID)
	return s.list(it, err, limit)
}

func (s *Service) FindMissingChecksums(ctx context.Context, collectionID string, limit int) (reconcile.IssueList, error) {
	it, err := s.store.FindMissingChecksums(ctx, collectionID)
	return s.list(it, err, limit)
}

// FindFilesWithInconsistentChecksums lists disagreeing files. A zero cutoff uses the
// configured staleness window.
func (s *Service) FindFilesWithInconsistentChecksums(ctx context.Context, collectionID string, cutoff time.Time, limit int) (reconcile.IssueList, error) {
	if cutoff.IsZero() {
		cutoff = s.engine.ChecksumCutoff()
	}
	it, err := s.store.FindFilesWithInconsistentChecksums(ctx, collectionID, cutoff)
	return s.list(it, err, limit)
}

// FindFilesWithMissingCopies lists files with fewer than required copies. A required
// count of zero or less means every pillar of the collection.
func (s *Service) FindFilesWithMissingCopies(ctx context.Context, collectionID string, required int, minSize, maxSize int64, limit int) (reconcile.IssueList, error) {
	if required <= 0 {
		pillars, err := s.store.PillarsForCollection(ctx, collectionID)
		if err != nil {
			return reconcile.IssueList{}, err
		}
		required = len(pillars)
	}
	it, err := s.store.FindFilesWithMissingCopies(ctx, collectionID, required, minSize, maxSize)
	return s.list(it, err, limit)
}

// PillarFiles pages through the files of one pillar in the given state.
func (s *Service) PillarFiles(ctx context.Context, collectionID, pillarID string, state PillarState, offset, limit int) ([]string, error) {
	switch state {
	case StateExisting, "":
		return s.store.GetFilesOnPillar(ctx, collectionID, pillarID, offset, limit)
	case StateMissing:
		return s.store.GetMissingFilesOnPillar(ctx, collectionID, pillarID, offset, limit)
	case StateChecksumError:
		return s.store.GetFilesWithChecksumErrorsOnPillar(ctx, collectionID, pillarID, offset, limit)
	default:
		return nil, fmt.Errorf("%w: unknown pillar state %q", store.ErrInvalidArgument, state)
	}
}

// GetPillarCollectionMetrics returns the counters of one pillar, from the cache when
// the store is cached.
func (s *Service) GetPillarCollectionMetrics(ctx context.Context, collectionID, pillarID string) (model.PillarCollectionMetrics, error) {
	if src, ok := s.store.(metricsSource); ok {
		return src.PillarCollectionMetrics(ctx, collectionID, pillarID)
	}
	m := model.PillarCollectionMetrics{CollectionID: collectionID, PillarID: pillarID}
	var err error
	if m.Files, err = s.store.GetNumberOfExistingFilesForPillar(ctx, collectionID, pillarID); err != nil {
		return m, err
	}
	if m.MissingFiles, err = s.store.GetNumberOfMissingFilesForPillar(ctx, collectionID, pillarID); err != nil {
		return m, err
	}
	m.ChecksumErrors, err = s.store.GetNumberOfChecksumErrorsForPillar(ctx, collectionID, pillarID)
	return m, err
}

// AllMetrics returns the counters of every pillar of every collection.
func (s *Service) AllMetrics(ctx context.Context) ([]model.PillarCollectionMetrics, error) {
	if src, ok := s.store.(metricsSource); ok {
		return src.AllMetrics(ctx)
	}
	cols, err := s.store.Collections(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.PillarCollectionMetrics
	for _, c := range cols {
		for _, p := range c.PillarIDs {
			m, err := s.GetPillarCollectionMetrics(ctx, c.ID, p)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *Service) LatestStatistics(ctx context.Context, collectionID string) (*model.CollectionStatistics, error) {
	return s.store.LatestStatistics(ctx, collectionID)
}

// BeginFullListingSweep starts a sweep and returns its cutoff.
func (s *Service) BeginFullListingSweep(ctx context.Context, collectionID string) (cutoff time.Time, err error) {
	defer s.track("sweep_begin")(&err)
	return s.engine.BeginFullListingSweep(ctx, collectionID)
}

func (s *Service) ConcludeSweep(ctx context.Context, collectionID string, cutoff time.Time) (res *reconcile.SweepResult, err error) {
	defer s.track("sweep_conclude")(&err)
	return s.engine.ConcludeSweep(ctx, collectionID, cutoff)
}

func (s *Service) ReconcileChecksums(ctx context.Context, collectionID string, cutoff time.Time) (res *reconcile.ChecksumResult, err error) {
	defer s.track("reconcile_checksums")(&err)
	return s.engine.ReconcileChecksums(ctx, collectionID, cutoff)
}

func (s *Service) Audit(ctx context.Context, collectionID string, cutoff time.Time) (r *reconcile.Report, err error) {
	defer s.track("audit")(&err)
	return s.engine.Audit(ctx, collectionID, cutoff)
}

// Vote plans a checksum vote and applies it when opts allow.
func (s *Service) Vote(ctx context.Context, collectionID string, cutoff time.Time, opts reconcile.ApplyOptions) (plan *reconcile.VotePlan, executed int, err error) {
	defer s.track("vote")(&err)
	if plan, err = s.engine.PlanChecksumVotes(ctx, collectionID, cutoff); err != nil {
		return nil, 0, err
	}
	executed, err = s.engine.ApplyPlan(ctx, plan, opts)
	return plan, executed, err
}

// Collect runs a full collection cycle over the configured pillar models.
func (s *Service) Collect(ctx context.Context, collectionID string) (res *pillar.CycleResult, err error) {
	defer s.track("collect")(&err)
	if s.collector == nil {
		return nil, fmt.Errorf("pillar models %w", ErrNotConfigured)
	}
	return s.collector.RunCycle(ctx, s.engine, collectionID)
}

// CheckSchema inspects the relational schema of the store.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database %w", ErrNotConfigured)
	}
	return checks.CheckSchema(s.db, gormstore.Tables())
}

// CheckStorage verifies the bucket and pillar locations, creating what it can when fix is set.
func (s *Service) CheckStorage(ctx context.Context, fix bool) (*checks.StorageReport, []string, error) {
	if s.client == nil {
		return nil, nil, fmt.Errorf("storage %w", ErrNotConfigured)
	}
	report, err := checks.CheckStorage(ctx, s.client, s.bucket, s.pillars)
	if err != nil || !fix || report.Matched {
		return report, nil, err
	}
	unfixed, err := checks.FixStorage(ctx, s.client, s.bucket, s.logger, report, s.pillars)
	return report, unfixed, err
}

// ExportReport uploads report as JSON and returns the object name.
func (s *Service) ExportReport(ctx context.Context, report *reconcile.Report) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("storage %w", ErrNotConfigured)
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s%s/%s.json", s.reportPrefix, report.CollectionID, report.GeneratedAt.UTC().Format("20060102T150405Z"))
	_, err = s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return "", fmt.Errorf("failed to upload report: %w", err)
	}
	s.logger.Info("Report exported", zap.String("collection", report.CollectionID), zap.String("object", name))
	return name, nil
}
