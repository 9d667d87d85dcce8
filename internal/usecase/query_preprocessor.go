package usecase

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Search intents
const (
	SearchIntentKeyword        = "keyword"
	SearchIntentComparison     = "comparison"
	SearchIntentRecommendation = "recommendation"
)

// Chat intents
const (
	ChatIntentSearch         = "search"
	ChatIntentComparison     = "comparison"
	ChatIntentRecommendation = "recommendation"
)

// maxQueryLength caps the length of a query sent to the device store
const maxQueryLength = 100

// Compiled regex patterns for query preprocessing
var (
	// Splits on anything that is not a letter or digit
	queryTokenSplitPattern = regexp.MustCompile(`[^\p{L}\p{N}]+`)

	// Multiple spaces cleanup
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// queryNoiseWords are intent and filler words that never appear in model names
var queryNoiseWords = map[string]bool{
	// Intent markers
	"vs":      true,
	"versus":  true,
	"compare": true,
	"best":    true,
	"better":  true,
	"top":     true,
	"which":   true,
	"should":  true,

	// Filler
	"the":  true,
	"a":    true,
	"an":   true,
	"and":  true,
	"or":   true,
	"for":  true,
	"with": true,
	"is":   true,
	"i":    true,
	"buy":  true,
}

// QueryPreprocessor handles cleaning and intent detection for catalog queries
type QueryPreprocessor struct {
	logger zerolog.Logger
}

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor(logger zerolog.Logger) *QueryPreprocessor {
	return &QueryPreprocessor{logger: logger}
}

// NormalizeQuery applies NFKC normalization and Unicode case folding, then trims
func NormalizeQuery(q string) string {
	folded := cases.Fold().String(norm.NFKC.String(q))
	return strings.TrimSpace(multiSpacePattern.ReplaceAllString(folded, " "))
}

// queryTokens splits a normalized query into word tokens
func queryTokens(q string) []string {
	return strings.Fields(queryTokenSplitPattern.ReplaceAllString(q, " "))
}

func hasToken(tokens []string, words ...string) bool {
	for _, t := range tokens {
		for _, w := range words {
			if t == w {
				return true
			}
		}
	}
	return false
}

// ParseSearchIntent classifies a discovery query.
// "vs" marks a comparison and takes precedence over "best".
func ParseSearchIntent(q string) string {
	tokens := queryTokens(NormalizeQuery(q))
	if hasToken(tokens, "vs", "versus") {
		return SearchIntentComparison
	}
	if hasToken(tokens, "best") {
		return SearchIntentRecommendation
	}
	return SearchIntentKeyword
}

// ParseChatIntent classifies an assistant query.
// "best" marks a recommendation and takes precedence over comparison words.
func ParseChatIntent(q string) string {
	tokens := queryTokens(NormalizeQuery(q))
	if hasToken(tokens, "best") {
		return ChatIntentRecommendation
	}
	if hasToken(tokens, "vs", "versus", "compare", "better") {
		return ChatIntentComparison
	}
	return ChatIntentSearch
}

// PreprocessQuery strips intent and filler words so the remainder can be
// matched against model names
func (p *QueryPreprocessor) PreprocessQuery(q string) string {
	tokens := queryTokens(NormalizeQuery(q))

	kept := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !queryNoiseWords[t] {
			kept = append(kept, t)
		}
	}
	cleaned := strings.Join(kept, " ")

	// Limit query length, cutting at a word boundary when possible
	if len(cleaned) > maxQueryLength {
		cut := maxQueryLength
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = cleaned[:cut]
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > maxQueryLength/2 {
			cleaned = cleaned[:lastSpace]
		}
	}

	p.logger.Debug().Str("input", q).Str("output", cleaned).Msg("preprocessed query")
	return cleaned
}

// SplitComparisonQuery splits "pixel 9 vs galaxy s24" into its two sides.
// ok is false when the query does not name exactly two sides.
func (p *QueryPreprocessor) SplitComparisonQuery(q string) (left, right string, ok bool) {
	tokens := queryTokens(NormalizeQuery(q))
	for i, t := range tokens {
		if t != "vs" && t != "versus" {
			continue
		}
		left = strings.Join(tokens[:i], " ")
		right = strings.Join(tokens[i+1:], " ")
		if left == "" || right == "" || hasToken(tokens[i+1:], "vs", "versus") {
			return "", "", false
		}
		return left, right, true
	}
	return "", "", false
}
