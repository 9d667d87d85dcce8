package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/technest/backend/internal/domain"
)

// maxContextDevices bounds the number of devices quoted to the generator
const maxContextDevices = 5

// ChatService answers assistant queries using catalog context
type ChatService struct {
	search    *SearchService
	generator domain.TextGenerator
	weights   domain.RankWeights
	logger    zerolog.Logger
}

// NewChatService creates a chat service. generator may be nil for template answers.
func NewChatService(search *SearchService, generator domain.TextGenerator, weights domain.RankWeights, logger zerolog.Logger) *ChatService {
	if weights == (domain.RankWeights{}) {
		weights = domain.DefaultRankWeights()
	}
	return &ChatService{
		search:    search,
		generator: generator,
		weights:   weights,
		logger:    logger.With().Str("component", "chat").Logger(),
	}
}

// Chat classifies the query, retrieves catalog context and generates an answer.
// Flow: intent -> retrieve context -> generate answer
func (s *ChatService) Chat(ctx context.Context, request *domain.ChatRequest) (*domain.ChatResponse, error) {
	if request == nil || strings.TrimSpace(request.Query) == "" {
		return nil, domain.ErrInvalidRequest
	}
	query := strings.TrimSpace(request.Query)

	// 1. Understand intent
	intent := ParseChatIntent(query)

	// 2. Retrieve knowledge
	contextText := s.retrieveContext(ctx, query, intent)

	// 3. Generate answer
	answer := s.generateAnswer(ctx, query, intent, contextText)

	s.logger.Info().
		Str("session_id", request.SessionID).
		Str("intent", intent).
		Bool("context_used", contextText != "").
		Msg("chat answered")

	return &domain.ChatResponse{
		Response:    answer,
		Intent:      intent,
		ContextUsed: contextText != "",
	}, nil
}

// retrieveContext renders matching catalog devices as plain text.
// Retrieval failures degrade to an answer without context.
func (s *ChatService) retrieveContext(ctx context.Context, query, intent string) string {
	if s.search == nil {
		return ""
	}

	devices, err := s.search.Devices(ctx, query)
	if err != nil {
		s.logger.Warn().Err(err).Msg("context retrieval failed")
		return ""
	}
	if len(devices) == 0 {
		return ""
	}

	var b strings.Builder
	if intent == ChatIntentRecommendation {
		for i, ranked := range RankDevices(devices, s.weights) {
			if i == maxContextDevices {
				break
			}
			fmt.Fprintf(&b, "%d. %s (score %.1f)\n", i+1, ranked.Device.ModelName, ranked.Score)
		}
		return b.String()
	}

	for i, d := range devices {
		if i == maxContextDevices {
			break
		}
		if d.Brand != "" {
			fmt.Fprintf(&b, "- %s by %s\n", d.ModelName, d.Brand)
		} else {
			fmt.Fprintf(&b, "- %s\n", d.ModelName)
		}
	}
	return b.String()
}

// generateAnswer asks the generator, falling back to a template answer
func (s *ChatService) generateAnswer(ctx context.Context, query, intent, contextText string) string {
	fallback := templateAnswer(query, intent)
	if s.generator == nil {
		return fallback
	}

	prompt := fmt.Sprintf("You are Tech Nest AI, a consumer electronics assistant.\nIntent: %s\nCatalog context:\n%s\nQuestion: %s",
		intent, contextText, query)
	text, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Warn().Err(err).Msg("answer generation failed, using template")
		return fallback
	}
	if text = strings.TrimSpace(text); text == "" {
		return fallback
	}
	return text
}

func templateAnswer(query, intent string) string {
	switch intent {
	case ChatIntentRecommendation:
		return fmt.Sprintf("AI Recommendation for '%s' based on DB context.", query)
	case ChatIntentComparison:
		return fmt.Sprintf("AI Comparison for '%s' based on DB context.", query)
	default:
		return fmt.Sprintf("AI Answer for '%s' based on DB context.", query)
	}
}
