package main

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/xtding233/pack-sim/internal/catalog"
	"github.com/xtding233/pack-sim/internal/collection"
	"github.com/xtding233/pack-sim/internal/config"
	"github.com/xtding233/pack-sim/internal/logger"
	"github.com/xtding233/pack-sim/internal/pack"
	"github.com/xtding233/pack-sim/internal/packrules"
	"github.com/xtding233/pack-sim/internal/storage"
)

// app is the wired object graph shared by every command.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	catalog *catalog.Client
	repo    storage.Repository
	store   *collection.Store
	rules   packrules.Resolver
	packs   *pack.Service
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.SetUp(cfg.Log)
	if err != nil {
		return nil, errors.Wrap(err, "set up logger")
	}

	client := catalog.NewClient(
		catalog.WithBaseURL(cfg.Catalog.BaseURL),
		catalog.WithRateLimit(cfg.Catalog.RatePerSecond, cfg.Catalog.Burst),
		catalog.WithHTTPClient(&http.Client{Timeout: cfg.Catalog.Timeout}),
	)

	repo, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, errors.Wrap(err, "open storage")
	}
	store := collection.NewStore(repo,
		collection.WithLogger(log.Named("collection")),
		collection.WithHistoryCap(cfg.Collection.HistoryCap),
		collection.WithDedupWindow(cfg.Collection.DedupWindow),
	)
	store.Load(ctx)

	rules := packrules.NewResolver(cfg.Rules.Dir)
	packs := pack.NewService(client,
		pack.WithRules(rules),
		pack.WithLogger(log.Named("pack")),
		pack.WithConcurrency(cfg.Catalog.Concurrency),
		pack.WithPrepareContext(ctx),
	)

	log.Debug("app wired",
		zap.String("storage", cfg.Storage.Driver),
		zap.String("catalog", cfg.Catalog.BaseURL),
		zap.String("rules", cfg.Rules.Dir),
	)
	return &app{
		cfg:     cfg,
		log:     log,
		catalog: client,
		repo:    repo,
		store:   store,
		rules:   rules,
		packs:   packs,
	}, nil
}

func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		a.log.Warn("close storage", zap.Error(err))
	}
	_ = a.log.Sync()
}
