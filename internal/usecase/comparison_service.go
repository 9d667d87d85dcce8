package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/technest/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ComparisonServiceConfig holds configuration for the comparison service
type ComparisonServiceConfig struct {
	CacheTTL   time.Duration
	Categories domain.CategoryTable
}

// ComparisonService compares two catalog devices and explains the result
type ComparisonService struct {
	devices    domain.DeviceRepository
	cache      domain.CacheRepository
	generator  domain.TextGenerator
	categories domain.CategoryTable
	cacheTTL   time.Duration
	logger     zerolog.Logger
}

// NewComparisonService creates a new comparison service with dependencies.
// generator may be nil, in which case summaries come from TemplateSummary.
func NewComparisonService(
	devices domain.DeviceRepository,
	cache domain.CacheRepository,
	generator domain.TextGenerator,
	config ComparisonServiceConfig,
	logger zerolog.Logger,
) *ComparisonService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = time.Hour
	}

	categories := config.Categories
	if len(categories) == 0 {
		categories = domain.DefaultCategoryTable()
	}

	return &ComparisonService{
		devices:    devices,
		cache:      cache,
		generator:  generator,
		categories: categories,
		cacheTTL:   cacheTTL,
		logger:     logger.With().Str("component", "comparison").Logger(),
	}
}

// Categories returns the category table used for verdicts
func (s *ComparisonService) Categories() domain.CategoryTable {
	return s.categories
}

// Compare looks up two devices by slug and produces the category verdicts,
// a summary and the overall winner.
// Flow: check cache -> fetch both devices -> verdict -> summary -> cache -> return
func (s *ComparisonService) Compare(ctx context.Context, slugA, slugB string) (*domain.ComparisonResult, error) {
	slugA = strings.TrimSpace(slugA)
	slugB = strings.TrimSpace(slugB)
	if slugA == "" || slugB == "" {
		return nil, domain.ErrInvalidRequest
	}
	if s.devices == nil {
		return nil, domain.ErrStoreUnavailable
	}

	cacheKey := generateComparisonCacheKey(slugA, slugB)

	// Try cache first
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil {
		s.logger.Debug().Str("key", cacheKey).Msg("comparison served from cache")
		return cached, nil
	}

	// Both sides are independent lookups
	var details [2]*domain.DeviceDetail
	g, gctx := errgroup.WithContext(ctx)
	for i, slug := range []string{slugA, slugB} {
		g.Go(func() error {
			detail, err := s.fetchDetail(gctx, slug)
			if err != nil {
				return err
			}
			details[i] = detail
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	deviceA, deviceB := details[0].Info, details[1].Info
	verdicts := GenerateVerdict(
		domain.NewSpecCollection(details[0].Specs),
		domain.NewSpecCollection(details[1].Specs),
		s.categories,
	)

	result := &domain.ComparisonResult{
		Devices:   [2]domain.DeviceDetail{*details[0], *details[1]},
		Verdicts:  verdicts,
		AISummary: s.summarize(ctx, deviceA.ModelName, deviceB.ModelName, verdicts),
		WinnerID:  SelectWinnerID(deviceA, deviceB, verdicts),
	}

	s.logger.Info().
		Str("device_a", slugA).
		Str("device_b", slugB).
		Int("wins_a", verdicts.Wins(domain.WinnerSideA)).
		Int("wins_b", verdicts.Wins(domain.WinnerSideB)).
		Msg("comparison computed")

	// Log but don't fail if caching fails
	if err := s.setInCache(ctx, cacheKey, result); err != nil {
		s.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache comparison")
	}

	return result, nil
}

// GetDevice returns a single device with its specs
func (s *ComparisonService) GetDevice(ctx context.Context, slug string) (*domain.DeviceDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.ErrInvalidRequest
	}
	if s.devices == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return s.fetchDetail(ctx, slug)
}

// maxRankDevices bounds the number of slugs accepted by Rank
const maxRankDevices = 20

// Rank loads the given devices and orders them by weighted attribute score.
// Zero weights select the default weights.
func (s *ComparisonService) Rank(ctx context.Context, slugs []string, weights domain.RankWeights) ([]domain.RankedDevice, error) {
	if len(slugs) == 0 || len(slugs) > maxRankDevices {
		return nil, domain.ErrInvalidRequest
	}
	if s.devices == nil {
		return nil, domain.ErrStoreUnavailable
	}
	if weights == (domain.RankWeights{}) {
		weights = domain.DefaultRankWeights()
	}

	cleaned := make([]string, len(slugs))
	for i, slug := range slugs {
		if cleaned[i] = strings.TrimSpace(slug); cleaned[i] == "" {
			return nil, domain.ErrInvalidRequest
		}
	}

	devices := make([]domain.Device, len(cleaned))
	g, gctx := errgroup.WithContext(ctx)
	for i, slug := range cleaned {
		g.Go(func() error {
			device, err := s.devices.GetBySlug(gctx, slug)
			if err != nil {
				return fmt.Errorf("load device %q: %w", slug, err)
			}
			devices[i] = *device
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return RankDevices(devices, weights), nil
}

// fetchDetail loads a device and its specs
func (s *ComparisonService) fetchDetail(ctx context.Context, slug string) (*domain.DeviceDetail, error) {
	device, err := s.devices.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("load device %q: %w", slug, err)
	}

	specs, err := s.devices.GetSpecs(ctx, device.ID)
	if err != nil {
		return nil, fmt.Errorf("load specs for %q: %w", slug, err)
	}
	if specs == nil {
		specs = []domain.Spec{}
	}

	return &domain.DeviceDetail{Info: *device, Specs: specs}, nil
}

// summarize asks the generator for a paragraph and falls back to the template
func (s *ComparisonService) summarize(ctx context.Context, nameA, nameB string, verdicts domain.VerdictMap) string {
	fallback := TemplateSummary(nameA, nameB, verdicts)
	if s.generator == nil {
		return fallback
	}

	text, err := s.generator.Generate(ctx, BuildComparisonPrompt(nameA, nameB, verdicts))
	if err != nil {
		s.logger.Warn().Err(err).Msg("summary generation failed, using template")
		return fallback
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.logger.Warn().Msg("summary generation returned empty text, using template")
		return fallback
	}
	return text
}

// generateComparisonCacheKey creates a cache key for an ordered device pair.
// Slugs are quoted exactly as the store looks them up, so distinct slugs never share an entry.
// Order matters since sides are reported as A and B.
func generateComparisonCacheKey(slugA, slugB string) string {
	return fmt.Sprintf("compare:%q:%q", slugA, slugB)
}

// getFromCache retrieves a comparison result from cache
func (s *ComparisonService) getFromCache(ctx context.Context, key string) (*domain.ComparisonResult, error) {
	if s.cache == nil {
		return nil, domain.ErrCacheMiss
	}

	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	var result domain.ComparisonResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCacheMiss, err)
	}
	return &result, nil
}

// setInCache stores a comparison result in cache
func (s *ComparisonService) setInCache(ctx context.Context, key string, result *domain.ComparisonResult) error {
	if s.cache == nil {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, key, data, s.cacheTTL)
}
