// Package gormstore persists the integrity model in a relational database through GORM.
//
// The schema is created with AutoMigrate. file_info holds one row per (collection,
// file, pillar); the state columns store the codes of model.FileState and
// model.ChecksumState, which are also written to the file_states and checksum_states
// lookup tables. Reconciliation runs as set-based SQL so that large collections are
// never loaded into memory.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"integrity-service/core/model"
	"integrity-service/core/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultBatchSize = 500

// Store implements store.Store on a *gorm.DB.
type Store struct {
	db        *gorm.DB
	log       *zap.Logger
	now       func() time.Time
	batchSize int
	migrate   bool

	// pillars mirrors collection_pillars.
	mu      sync.RWMutex
	pillars map[string]map[string]struct{}
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for arrival times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the store logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithBatchSize sets how many rows go into one INSERT statement.
func WithBatchSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithoutMigration skips AutoMigrate and lookup seeding.
func WithoutMigration() Option {
	return func(s *Store) { s.migrate = false }
}

// New migrates the schema, then registers the configured collections.
// A configured collection that is already persisted must have the same pillar set,
// otherwise New fails with store.ErrConfigMismatch.
func New(db *gorm.DB, collections []model.CollectionConfig, opts ...Option) (*Store, error) {
	s := &Store{
		db:        db,
		log:       zap.NewNop(),
		now:       time.Now,
		batchSize: defaultBatchSize,
		migrate:   true,
		pillars:   make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	ctx := context.Background()
	if s.migrate {
		if err := s.Migrate(ctx); err != nil {
			return nil, err
		}
	}
	if err := s.loadPillars(ctx); err != nil {
		return nil, err
	}
	for _, cfg := range collections {
		if err := s.ensureCollection(ctx, cfg); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Migrate creates or upgrades the tables and seeds the state lookup tables.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if err := db.AutoMigrate(&fileStateRow{}, &checksumStateRow{}, &collectionRow{},
		&collectionPillarRow{}, &fileInfoRow{}, &statisticsRow{}); err != nil {
		return fmt.Errorf("failed to migrate integrity schema: %w", err)
	}

	fileStates := make([]fileStateRow, 0, len(model.FileStates()))
	for _, st := range model.FileStates() {
		fileStates = append(fileStates, fileStateRow{Code: st.Code(), Name: st.String()})
	}
	checksumStates := make([]checksumStateRow, 0, len(model.ChecksumStates()))
	for _, st := range model.ChecksumStates() {
		checksumStates = append(checksumStates, checksumStateRow{Code: st.Code(), Name: st.String()})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&fileStates).Error; err != nil {
		return fmt.Errorf("failed to seed file states: %w", err)
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&checksumStates).Error; err != nil {
		return fmt.Errorf("failed to seed checksum states: %w", err)
	}
	return nil
}

func (s *Store) clock() time.Time { return s.now().UTC() }

func (s *Store) loadPillars(ctx context.Context) error {
	var rows []collectionPillarRow
	if err := s.db.WithContext(ctx).Order("collection_id, pillar_id").Find(&rows).Error; err != nil {
		return fmt.Errorf("failed to load collection pillars: %w", err)
	}
	var cols []collectionRow
	if err := s.db.WithContext(ctx).Find(&cols).Error; err != nil {
		return fmt.Errorf("failed to load collections: %w", err)
	}
	pillars := make(map[string]map[string]struct{}, len(cols))
	for _, c := range cols {
		pillars[c.ID] = make(map[string]struct{})
	}
	for _, r := range rows {
		if set, ok := pillars[r.CollectionID]; ok {
			set[r.PillarID] = struct{}{}
		}
	}
	s.mu.Lock()
	s.pillars = pillars
	s.mu.Unlock()
	return nil
}

func (s *Store) ensureCollection(ctx context.Context, cfg model.CollectionConfig) error {
	want, err := normalizePillars(cfg.PillarIDs)
	if err != nil {
		return err
	}
	have, ok := s.pillarSet(cfg.ID)
	if !ok {
		return s.AddCollection(ctx, cfg.ID, want)
	}
	if !equalSet(have, want) {
		return fmt.Errorf("%w: %q is persisted with pillars %v, configured with %v",
			store.ErrConfigMismatch, cfg.ID, sortedKeys(have), want)
	}
	return nil
}

func (s *Store) pillarSet(collectionID string) (map[string]struct{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.pillars[collectionID]
	return set, ok
}

// collection returns the pillar set of a known collection, reloading once on a miss
// so that collections added by another process become visible.
func (s *Store) collection(ctx context.Context, collectionID string) (map[string]struct{}, bool, error) {
	if set, ok := s.pillarSet(collectionID); ok {
		return set, true, nil
	}
	if err := s.loadPillars(ctx); err != nil {
		return nil, false, err
	}
	set, ok := s.pillarSet(collectionID)
	return set, ok, nil
}

// mustCollection is collection for mutations: unknown collections and pillars fail.
func (s *Store) mustCollection(ctx context.Context, collectionID string, pillarIDs ...string) error {
	set, ok, err := s.collection(ctx, collectionID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", store.ErrCollectionNotFound, collectionID)
	}
	return checkPillars(collectionID, set, pillarIDs)
}

func checkPillars(collectionID string, set map[string]struct{}, pillarIDs []string) error {
	for _, p := range pillarIDs {
		if _, ok := set[p]; !ok {
			return fmt.Errorf("%w: %q in %q", store.ErrUnknownPillar, p, collectionID)
		}
	}
	return nil
}

func normalizePillars(pillarIDs []string) ([]string, error) {
	seen := make(map[string]struct{}, len(pillarIDs))
	out := make([]string, 0, len(pillarIDs))
	for _, p := range pillarIDs {
		if p == "" {
			return nil, fmt.Errorf("%w: empty pillar id", store.ErrInvalidArgument)
		}
		if _, dup := seen[p]; !dup {
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: collection needs at least one pillar", store.ErrInvalidArgument)
	}
	sort.Strings(out)
	return out, nil
}

func equalSet(set map[string]struct{}, list []string) bool {
	if len(set) != len(list) {
		return false
	}
	for _, p := range list {
		if _, ok := set[p]; !ok {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Store) AddCollection(ctx context.Context, collectionID string, pillarIDs []string) error {
	if collectionID == "" {
		return fmt.Errorf("%w: empty collection id", store.ErrInvalidArgument)
	}
	pillars, err := normalizePillars(pillarIDs)
	if err != nil {
		return err
	}
	if _, ok, err := s.collection(ctx, collectionID); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: %q", store.ErrCollectionExists, collectionID)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&collectionRow{ID: collectionID, CreatedAt: s.clock()}).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: %q", store.ErrCollectionExists, collectionID)
			}
			return err
		}
		rows := make([]collectionPillarRow, 0, len(pillars))
		for _, p := range pillars {
			rows = append(rows, collectionPillarRow{CollectionID: collectionID, PillarID: p})
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("failed to add collection %s: %w", collectionID, err)
	}

	set := make(map[string]struct{}, len(pillars))
	for _, p := range pillars {
		set[p] = struct{}{}
	}
	s.mu.Lock()
	s.pillars[collectionID] = set
	s.mu.Unlock()
	s.log.Info("Collection added", zap.String("collection", collectionID), zap.Strings("pillars", pillars))
	return nil
}

func (s *Store) RemoveCollection(ctx context.Context, collectionID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", collectionID).Delete(&collectionRow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("%w: %q", store.ErrCollectionNotFound, collectionID)
		}
		if err := tx.Where("collection_id = ?", collectionID).Delete(&fileInfoRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("collection_id = ?", collectionID).Delete(&statisticsRow{}).Error; err != nil {
			return err
		}
		return tx.Where("collection_id = ?", collectionID).Delete(&collectionPillarRow{}).Error
	})
	if errors.Is(err, store.ErrCollectionNotFound) {
		s.forget(collectionID)
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to remove collection %s: %w", collectionID, err)
	}

	s.forget(collectionID)
	s.log.Info("Collection removed", zap.String("collection", collectionID))
	return nil
}

func (s *Store) forget(collectionID string) {
	s.mu.Lock()
	delete(s.pillars, collectionID)
	s.mu.Unlock()
}

func (s *Store) Collections(ctx context.Context) ([]model.CollectionConfig, error) {
	if err := s.loadPillars(ctx); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CollectionConfig, 0, len(s.pillars))
	for id, set := range s.pillars {
		out = append(out, model.CollectionConfig{ID: id, PillarIDs: sortedKeys(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) PillarsForCollection(ctx context.Context, collectionID string) ([]string, error) {
	set, ok, err := s.collection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %q", store.ErrCollectionNotFound, collectionID)
	}
	return sortedKeys(set), nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var _ store.Store = (*Store)(nil)
