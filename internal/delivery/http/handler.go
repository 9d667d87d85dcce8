package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/technest/backend/internal/domain"
	"github.com/technest/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers.
// Any service may be nil, in which case its endpoints answer 503.
type Handler struct {
	comparison *usecase.ComparisonService
	search     *usecase.SearchService
	chat       *usecase.ChatService
	version    string
	logger     zerolog.Logger
}

// Services bundles the use cases served over HTTP
type Services struct {
	Comparison *usecase.ComparisonService
	Search     *usecase.SearchService
	Chat       *usecase.ChatService
}

// NewHandler creates a new HTTP handler
func NewHandler(services Services, version string, logger zerolog.Logger) *Handler {
	if version == "" {
		version = "dev"
	}
	return &Handler{
		comparison: services.Comparison,
		search:     services.Search,
		chat:       services.Chat,
		version:    version,
		logger:     logger,
	}
}

// rankRequest is the body of POST /api/v1/rank
type rankRequest struct {
	Slugs   []string            `json:"slugs" binding:"required,min=1,max=20"`
	Weights *domain.RankWeights `json:"weights"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "technest-backend",
		"version": h.version,
	})
}

// CompareDevices handles GET /compare?a={slug}&b={slug}
func (h *Handler) CompareDevices(c *gin.Context) {
	if h.comparison == nil {
		h.serviceUnavailable(c)
		return
	}

	slugA := strings.TrimSpace(c.Query("a"))
	slugB := strings.TrimSpace(c.Query("b"))
	if slugA == "" || slugB == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameters 'a' and 'b' are required"})
		return
	}

	result, err := h.comparison.Compare(c.Request.Context(), slugA, slugB)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetDevice handles GET /devices/:slug
func (h *Handler) GetDevice(c *gin.Context) {
	if h.comparison == nil {
		h.serviceUnavailable(c)
		return
	}

	detail, err := h.comparison.GetDevice(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// SearchDevices handles GET /search?q={query}
func (h *Handler) SearchDevices(c *gin.Context) {
	if h.search == nil {
		h.serviceUnavailable(c)
		return
	}

	results, err := h.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// Chat handles POST /ai/chat
func (h *Handler) Chat(c *gin.Context) {
	if h.chat == nil {
		h.serviceUnavailable(c)
		return
	}

	var request domain.ChatRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if request.SessionID == "" {
		request.SessionID = "default"
	}

	response, err := h.chat.Chat(c.Request.Context(), &request)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// RankDevices handles POST /rank
func (h *Handler) RankDevices(c *gin.Context) {
	if h.comparison == nil {
		h.serviceUnavailable(c)
		return
	}

	var request rankRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	var weights domain.RankWeights
	if request.Weights != nil {
		weights = *request.Weights
	}

	ranked, err := h.comparison.Rank(c.Request.Context(), request.Slugs, weights)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": ranked})
}

// handleError maps domain errors to HTTP status codes
func (h *Handler) handleError(c *gin.Context, err error) {
	status, message := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error().
			Err(err).
			Str("path", c.FullPath()).
			Str("request_id", c.GetString(requestIDKey)).
			Msg("request failed")
	}
	c.JSON(status, gin.H{"error": message})
}

func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, "invalid request parameters"
	case errors.Is(err, domain.ErrDeviceNotFound):
		return http.StatusNotFound, "Devices not found"
	case errors.Is(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests, "rate limit exceeded, please try again later"
	case errors.Is(err, domain.ErrGeneratorFailure):
		return http.StatusBadGateway, "text generation service error"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "device store unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func (h *Handler) serviceUnavailable(c *gin.Context) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "service not configured"})
}
