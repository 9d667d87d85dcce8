package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/technest/backend/config"
	"github.com/technest/backend/internal/domain"
	"github.com/technest/backend/internal/infrastructure/cache"
	"github.com/technest/backend/internal/infrastructure/llm"
	"github.com/technest/backend/internal/infrastructure/logging"
	"github.com/technest/backend/internal/infrastructure/storage"
	"github.com/technest/backend/internal/usecase"
)

// application holds the configuration and lazily built dependencies shared by commands
type application struct {
	logLevel string

	cfg    *config.Config
	logger zerolog.Logger

	store      *storage.Store
	comparison *usecase.ComparisonService
	search     *usecase.SearchService
	chat       *usecase.ChatService

	closers []io.Closer
}

func (a *application) loadConfig() error {
	if a.cfg != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}

	a.cfg = cfg
	a.logger = logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	return nil
}

// openStore connects to the catalog database once
func (a *application) openStore(ctx context.Context) (*storage.Store, error) {
	if a.store != nil {
		return a.store, nil
	}

	store, err := storage.Open(ctx, storage.Config{
		Driver: a.cfg.Database.Driver,
		Path:   a.cfg.Database.Path,
		DSN:    a.cfg.Database.DSN,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", a.cfg.Database.Driver, err)
	}

	a.store = store
	a.closers = append(a.closers, store)
	a.logger.Info().Str("driver", store.Driver()).Msg("device store ready")
	return store, nil
}

// buildServices wires storage, cache and the text generator into the use cases
func (a *application) buildServices(ctx context.Context) error {
	if a.comparison != nil {
		return nil
	}

	store, err := a.openStore(ctx)
	if err != nil {
		return err
	}

	cacheRepo, err := a.buildCache(ctx)
	if err != nil {
		return err
	}

	generator, err := llm.New(ctx, llm.Config{
		Provider:          a.cfg.AI.Provider,
		APIKey:            a.cfg.AI.APIKey,
		Model:             a.cfg.AI.Model,
		BaseURL:           a.cfg.AI.BaseURL,
		Temperature:       a.cfg.AI.Temperature,
		Timeout:           a.cfg.AI.Timeout,
		RequestsPerSecond: float64(a.cfg.RateLimit.AI) / 60,
	}, a.logger)
	if err != nil {
		return fmt.Errorf("configure ai provider: %w", err)
	}
	if closer, ok := generator.(io.Closer); ok {
		a.closers = append(a.closers, closer)
	}
	a.logger.Info().Str("provider", a.cfg.AI.Provider).Msg("text generation configured")

	a.comparison = usecase.NewComparisonService(store, cacheRepo, generator, usecase.ComparisonServiceConfig{
		CacheTTL:   a.cfg.Cache.TTL,
		Categories: a.cfg.CategoryTable(),
	}, a.logger)
	a.search = usecase.NewSearchService(store, usecase.SearchServiceConfig{
		Limit:               a.cfg.Search.Limit,
		EnableFuzzyMatching: a.cfg.Search.FuzzyMatching,
	}, a.logger)
	a.chat = usecase.NewChatService(a.search, generator, domain.DefaultRankWeights(), a.logger)

	return nil
}

func (a *application) buildCache(ctx context.Context) (domain.CacheRepository, error) {
	switch a.cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: a.cfg.Cache.RedisURL})
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		a.closers = append(a.closers, redisCache)
		a.logger.Info().Msg("using redis cache")
		return redisCache, nil
	default:
		memoryCache := cache.NewMemoryCache(cache.MemoryConfig{MaxEntries: a.cfg.Cache.MaxEntries})
		a.closers = append(a.closers, memoryCache)
		a.logger.Info().Dur("ttl", a.cfg.Cache.TTL).Msg("using memory cache")
		return memoryCache, nil
	}
}

// Close releases everything opened by the application, newest first
func (a *application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
