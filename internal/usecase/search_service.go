package usecase

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/technest/backend/internal/domain"
)

// defaultSearchLimit is the number of catalog rows fetched per lookup
const defaultSearchLimit = 10

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	Limit               int
	EnableFuzzyMatching bool
}

// SearchService answers discovery queries against the device catalog
type SearchService struct {
	devices      domain.DeviceRepository
	preprocessor *QueryPreprocessor
	matcher      *MatchingService
	limit        int
	logger       zerolog.Logger
}

// NewSearchService creates a new search service. devices may be nil when no store is configured.
func NewSearchService(devices domain.DeviceRepository, config SearchServiceConfig, logger zerolog.Logger) *SearchService {
	limit := config.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	logger = logger.With().Str("component", "search").Logger()
	return &SearchService{
		devices:      devices,
		preprocessor: NewQueryPreprocessor(logger),
		matcher:      NewMatchingService(MatchConfig{EnableFuzzyMatching: config.EnableFuzzyMatching}, logger),
		limit:        limit,
		logger:       logger,
	}
}

// Search returns device hits for a free-text query, best match first.
// Without a configured store the result is empty rather than an error.
func (s *SearchService) Search(ctx context.Context, query string) ([]domain.SearchResult, error) {
	devices, cleaned, err := s.findDevices(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := s.matcher.RankMatches(ctx, cleaned, devices)
	if err != nil {
		return nil, err
	}
	if len(results) > s.limit {
		results = results[:s.limit]
	}
	return results, nil
}

// Devices returns the catalog devices matching a query, unscored
func (s *SearchService) Devices(ctx context.Context, query string) ([]domain.Device, error) {
	devices, _, err := s.findDevices(ctx, query)
	return devices, err
}

// findDevices resolves the query to catalog rows. A comparison query looks up
// both sides separately and merges them.
func (s *SearchService) findDevices(ctx context.Context, query string) ([]domain.Device, string, error) {
	normalized := NormalizeQuery(query)
	if normalized == "" {
		return nil, "", domain.ErrInvalidRequest
	}
	if s.devices == nil {
		return []domain.Device{}, normalized, nil
	}

	intent := ParseSearchIntent(normalized)
	s.logger.Debug().Str("query", normalized).Str("intent", intent).Msg("search intent")

	var terms []string
	if intent == SearchIntentComparison {
		if left, right, ok := s.preprocessor.SplitComparisonQuery(normalized); ok {
			terms = []string{s.preprocessor.PreprocessQuery(left), s.preprocessor.PreprocessQuery(right)}
		}
	}
	cleaned := s.preprocessor.PreprocessQuery(normalized)
	if cleaned == "" {
		cleaned = normalized
	}
	if len(terms) == 0 {
		terms = []string{cleaned}
	}

	seen := make(map[string]bool)
	devices := []domain.Device{}
	for _, term := range terms {
		if term == "" {
			continue
		}
		found, err := s.devices.SearchByName(ctx, term, s.limit)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		for _, d := range found {
			if seen[d.Slug] {
				continue
			}
			seen[d.Slug] = true
			devices = append(devices, d)
		}
	}

	return devices, cleaned, nil
}
