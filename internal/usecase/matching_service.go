package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/technest/backend/internal/domain"
)

// Scoring weights and bonuses
const (
	queryCoverageWeight = 0.60 // Fraction of query tokens found in the device name
	nameCoverageWeight  = 0.20 // Fraction of device name tokens found in the query
	jaccardWeight       = 0.20
	fuzzyWeightFactor   = 0.8 // Fuzzy matches count for 80% of an exact match
	brandMatchBonus     = 15.0
	substringMatchBonus = 10.0
)

// MatchConfig holds configuration for the matching service
type MatchConfig struct {
	EnableFuzzyMatching bool
	FuzzyEditDistance   int
}

// MatchingService scores catalog devices against a free-text query
type MatchingService struct {
	enableFuzzyMatching bool
	fuzzyEditDistance   int
	logger              zerolog.Logger
}

// NewMatchingService creates a new matching service with the given configuration
func NewMatchingService(config MatchConfig, logger zerolog.Logger) *MatchingService {
	fuzzyDist := config.FuzzyEditDistance
	if fuzzyDist <= 0 {
		fuzzyDist = 1 // Default edit distance of 1
	}

	return &MatchingService{
		enableFuzzyMatching: config.EnableFuzzyMatching,
		fuzzyEditDistance:   fuzzyDist,
		logger:              logger,
	}
}

// RankMatches scores every device against the query and returns them best first.
// Devices with equal scores keep their input order.
func (s *MatchingService) RankMatches(ctx context.Context, query string, devices []domain.Device) ([]domain.SearchResult, error) {
	results := make([]domain.SearchResult, 0, len(devices))
	for _, device := range devices {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		score := s.calculateMatchScore(query, device.ModelName, device.Brand)
		s.logger.Debug().
			Str("query", query).
			Str("model", device.ModelName).
			Float64("score", score).
			Msg("scored device")

		results = append(results, domain.SearchResult{
			Type:     "device",
			Title:    device.ModelName,
			Slug:     device.Slug,
			ImageURL: device.ImageURL,
			Score:    score,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}

// calculateMatchScore computes similarity between a query and a device name.
// Uses a weighted combination of:
//   - Query token coverage: what % of the query tokens appear in the model name
//   - Name token coverage: what % of the model name tokens appear in the query
//   - Jaccard similarity of the two token sets
//   - Brand and substring bonuses
//
// Returns a score in [0, 100].
func (s *MatchingService) calculateMatchScore(query, modelName, brand string) float64 {
	queryTokens := tokenize(query)
	nameTokens := tokenize(modelName)

	if len(queryTokens) == 0 || len(nameTokens) == 0 {
		return 0
	}

	queryMatched := s.weightedMatches(queryTokens, nameTokens)
	nameMatched := s.weightedMatches(nameTokens, queryTokens)

	queryCoverage := queryMatched / float64(len(queryTokens))
	nameCoverage := nameMatched / float64(len(nameTokens))
	exact := findIntersection(queryTokens, nameTokens)
	jaccard := float64(exact) / float64(findUnion(queryTokens, nameTokens))

	score := (queryCoverage*queryCoverageWeight + nameCoverage*nameCoverageWeight + jaccard*jaccardWeight) * 100

	queryLower := strings.ToLower(strings.TrimSpace(query))
	nameLower := strings.ToLower(modelName)

	if brand != "" && strings.Contains(queryLower, strings.ToLower(brand)) {
		score += brandMatchBonus
	}

	if len(queryLower) > 3 && strings.Contains(nameLower, queryLower) {
		score += substringMatchBonus
	}

	if score > 100 {
		score = 100
	}
	return score
}

// weightedMatches counts tokens of from that appear in to, with fuzzy hits discounted
func (s *MatchingService) weightedMatches(from, to []string) float64 {
	set := make(map[string]bool, len(to))
	for _, t := range to {
		set[t] = true
	}

	var total float64
	for _, token := range from {
		if set[token] {
			total++
			continue
		}
		if !s.enableFuzzyMatching {
			continue
		}
		for _, candidate := range to {
			if fuzzyTokenMatch(token, candidate, s.fuzzyEditDistance) {
				total += fuzzyWeightFactor
				break
			}
		}
	}
	return total
}

// tokenize splits a string into normalized lowercase tokens.
// Model numbers such as "9" or "s24" are kept; filler words are dropped.
func tokenize(s string) []string {
	words := queryTokens(NormalizeQuery(s))

	var tokens []string
	for _, word := range words {
		if queryNoiseWords[word] {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// fuzzyTokenMatch checks if two tokens are similar within the edit distance threshold
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	// Only apply fuzzy matching to tokens of 4+ chars; short model numbers must match exactly
	if len(token1) < 4 || len(token2) < 4 {
		return false
	}

	lenDiff := len(token1) - len(token2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(token1, token2) <= threshold
}

// levenshteinDistance calculates the edit distance between two strings
func levenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	m := len(r1)
	n := len(r2)

	if m == 0 {
		return n
	}
	if n == 0 {
		return m
	}

	// Two rows instead of the full matrix
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// findIntersection returns the count of distinct tokens present in both sets
func findIntersection(tokens1, tokens2 []string) int {
	set := make(map[string]bool, len(tokens1))
	for _, t := range tokens1 {
		set[t] = true
	}

	seen := make(map[string]bool)
	for _, t := range tokens2 {
		if set[t] {
			seen[t] = true
		}
	}

	return len(seen)
}

// findUnion returns the count of unique tokens across both sets
func findUnion(tokens1, tokens2 []string) int {
	set := make(map[string]bool)
	for _, t := range tokens1 {
		set[t] = true
	}
	for _, t := range tokens2 {
		set[t] = true
	}
	return len(set)
}
