package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/ledgerline/opmatch/internal/config"
	"github.com/ledgerline/opmatch/internal/match"
	"github.com/ledgerline/opmatch/internal/storage"
)

// app bundles the wired-up services a command needs.
type app struct {
	cfg      *config.Config
	store    *storage.SQLiteStore
	repo     *match.Repository
	cache    *match.ResultCache
	engine   *match.Engine
	recorder *match.Recorder
}

// initApp loads configuration, opens the store, runs migrations, and builds
// the matching engine over a fresh rule snapshot.
func initApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	store, err := storage.NewSQLiteStore(config.ExpandPath(cfg.Database.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	repo := match.NewRepository(store)
	if err := repo.Refresh(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	cache, err := match.NewResultCache(cfg.Cache.StableSize, cfg.Cache.FuzzySize)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create result cache: %w", err)
	}

	engine := match.NewEngine(repo, cache, match.Config{
		Thresholds: cfg.Thresholds(),
		Workers:    cfg.Matching.Workers,
	})

	return &app{
		cfg:      cfg,
		store:    store,
		repo:     repo,
		cache:    cache,
		engine:   engine,
		recorder: match.NewRecorder(store, repo, cache, engine),
	}, nil
}

func (a *app) close() {
	_ = a.store.Close()
}
