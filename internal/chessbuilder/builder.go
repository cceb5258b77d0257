// Package chessbuilder assembles the bot service from configuration.
package chessbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	corechess "github.com/park285/cheese-heuristic-bot/internal/chess"
	"github.com/park285/cheese-heuristic-bot/internal/config"
	"github.com/park285/cheese-heuristic-bot/internal/decisionlog"
	"github.com/park285/cheese-heuristic-bot/internal/msgcat"
	"github.com/park285/cheese-heuristic-bot/internal/render"
	svcchess "github.com/park285/cheese-heuristic-bot/internal/service/chess"
	"github.com/park285/cheese-heuristic-bot/internal/sessionstore"
)

type Deps struct {
	Service   *svcchess.Service
	Store     sessionstore.Store
	Decisions decisionlog.Repository
	Catalog   *msgcat.Catalog
}

// Close releases the store and the decision log.
func (d *Deps) Close() error {
	if d == nil || d.Service == nil {
		return nil
	}
	return d.Service.Close()
}

func New(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*Deps, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	engineOpts, err := EngineOptions(cfg, logger)
	if err != nil {
		return nil, err
	}

	catalog, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		return nil, fmt.Errorf("init messages: %w", err)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init session store: %w", err)
	}

	decisions, err := openDecisions(ctx, cfg, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init decision log: %w", err)
	}

	service, err := svcchess.NewService(store, decisions, catalog, render.NewRenderer(), svcchess.Config{
		DefaultPreset: cfg.BotPreset,
		Engine:        engineOpts,
	}, logger)
	if err != nil {
		return nil, errors.Join(err, store.Close(), decisions.Close())
	}

	logger.Info("bot_service_ready",
		zap.String("preset", cfg.BotPreset),
		zap.String("tie_break", cfg.BotTieBreak),
		zap.String("session_backend", cfg.SessionBackend),
		zap.Bool("decision_db", cfg.DatabaseURL != ""),
		zap.Duration("time_budget", cfg.TimeBudget),
	)
	return &Deps{Service: service, Store: store, Decisions: decisions, Catalog: catalog}, nil
}

// EngineOptions maps configuration onto engine options, loading the weight
// override file when one is set.
func EngineOptions(cfg *config.AppConfig, logger *zap.Logger) (corechess.Options, error) {
	opts := corechess.Options{
		Preset:   cfg.BotPreset,
		TieBreak: cfg.BotTieBreak,
		Budget:   cfg.TimeBudget,
		Logger:   logger,
	}
	if cfg.BotSeedSet {
		seed := cfg.BotRandomSeed
		opts.Seed = &seed
	}
	if path := strings.TrimSpace(cfg.WeightsFile); path != "" {
		w, err := corechess.LoadWeights(path)
		if err != nil {
			return opts, fmt.Errorf("load weights: %w", err)
		}
		opts.Weights = &w
	}
	return opts, nil
}

func openStore(ctx context.Context, cfg *config.AppConfig) (sessionstore.Store, error) {
	ttl := cfg.SessionTTL()
	switch cfg.SessionBackend {
	case config.BackendRedis:
		return sessionstore.NewRedisStore(ctx, cfg.RedisURL, ttl)
	case config.BackendBadger:
		return sessionstore.NewBadgerStore(cfg.BadgerDir, ttl)
	default:
		return sessionstore.NewMemoryStore(ttl), nil
	}
}

func openDecisions(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (decisionlog.Repository, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Info("decision_log_in_memory")
		return decisionlog.NewMemoryRepository(), nil
	}
	repo, err := decisionlog.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := repo.Migrate(ctx); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}
