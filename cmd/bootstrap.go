package cmd

import (
	"fmt"
	"strings"

	"integrity-service/core/cache"
	"integrity-service/core/config"
	"integrity-service/core/database"
	"integrity-service/core/logger"
	"integrity-service/core/metrics"
	"integrity-service/core/reconcile"
	"integrity-service/core/storage"
	"integrity-service/core/store"
	"integrity-service/core/store/gormstore"
	"integrity-service/core/store/memory"
	"integrity-service/feature/integrity"
	"integrity-service/feature/pillar"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds everything a command needs to drive the integrity model.
type runtime struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	client  storage.Client
	cache   *cache.Store
	engine  *reconcile.Engine
	service *integrity.Service
}

// bootstrap loads the configuration and wires the store, cache, engine, pillars and
// service. A nil recorder disables operation metrics.
func bootstrap(recorder *metrics.Recorder) (*runtime, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cols, err := cfg.Integrity.ParseCollections()
	if err != nil {
		return nil, err
	}
	defs, err := pillar.ParseDefinitions(cfg.Integrity.Pillars)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, log: logg}
	var inner store.Store
	switch strings.ToLower(cfg.Integrity.Backend) {
	case "memory":
		inner, err = memory.New(cols, memory.WithLogger(logg))
	case "database", "":
		if rt.db, err = database.Connect(cfg.Database); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		inner, err = gormstore.New(rt.db, cols, gormstore.WithLogger(logg))
	default:
		err = fmt.Errorf("unknown integrity backend %q", cfg.Integrity.Backend)
	}
	if err != nil {
		return nil, err
	}
	logg.Info("Store ready", zap.String("backend", cfg.Integrity.Backend), zap.Int("collections", len(cols)))

	rt.cache = cache.New(inner, cache.WithRefreshPeriod(cfg.Integrity.RefreshPeriod()), cache.WithLogger(logg))
	rt.engine = reconcile.NewEngine(rt.cache, logg, reconcile.Options{
		MaxListedIssues: cfg.Integrity.MaxListedIssues,
		ChecksumMaxAge:  cfg.Integrity.ChecksumMaxAge(),
		MaxVoteFiles:    cfg.Integrity.MaxVoteFiles,
	})

	opts := []integrity.Option{integrity.WithRecorder(recorder)}
	if rt.db != nil {
		opts = append(opts, integrity.WithDatabase(rt.db))
	}
	// Storage is optional: without it pillars cannot be collected and reports stay local.
	if client, err := storage.NewClient(cfg.Storage); err != nil {
		logg.Warn("Optional storage connection failed", zap.Error(err))
	} else {
		rt.client = client
		opts = append(opts, integrity.WithStorage(client, cfg.Storage.Bucket, cfg.Integrity.ReportPrefix))
		if len(defs) > 0 {
			models := pillar.Build(defs, client, cfg.Storage.Bucket, cfg.Integrity.ChecksumSpec())
			opts = append(opts, integrity.WithPillars(defs, models, cfg.Integrity.CollectConcurrency))
		}
	}
	rt.service = integrity.NewService(rt.engine, logg, opts...)
	return rt, nil
}

// Close releases the store.
func (rt *runtime) Close() {
	if err := rt.cache.Close(); err != nil {
		rt.log.Warn("Failed to close store", zap.Error(err))
	}
	_ = rt.log.Sync()
}
