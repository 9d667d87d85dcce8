package domain

import "time"

// Device represents a catalog entry for a single device model
type Device struct {
	ID        int64        `json:"id"`
	Slug      string       `json:"slug"`
	ModelName string       `json:"model_name"`
	Brand     string       `json:"brand,omitempty"`
	ImageURL  string       `json:"image_url,omitempty"`
	Scores    DeviceScores `json:"scores"`
	CreatedAt time.Time    `json:"created_at,omitempty"`
}

// DeviceScores holds the editorial attribute scores used for ranking
type DeviceScores struct {
	Camera      float64 `json:"camera"`
	Battery     float64 `json:"battery"`
	Performance float64 `json:"performance"`
	Value       float64 `json:"value"`
}

// Spec is one raw specification row for a device, joined with its definition
type Spec struct {
	DeviceID       int64  `json:"device_id"`
	SpecKey        string `json:"spec_key"`
	RawValue       string `json:"raw_value"`
	DisplayLabel   string `json:"display_label,omitempty"`
	Category       string `json:"category,omitempty"`
	Unit           string `json:"unit,omitempty"`
	HigherIsBetter *bool  `json:"higher_is_better,omitempty"`
}

// SpecCollection maps spec key to raw textual value for one device
type SpecCollection map[string]string

// NewSpecCollection builds a SpecCollection from spec rows.
// When a key repeats, the last row wins.
func NewSpecCollection(specs []Spec) SpecCollection {
	collection := make(SpecCollection, len(specs))
	for _, s := range specs {
		collection[s.SpecKey] = s.RawValue
	}
	return collection
}

// DeviceDetail bundles a device with its spec rows
type DeviceDetail struct {
	Info  Device `json:"info"`
	Specs []Spec `json:"specs"`
}

// ComparisonResult is the response of a two-device comparison
type ComparisonResult struct {
	Devices   [2]DeviceDetail `json:"devices"`
	Verdicts  VerdictMap      `json:"verdicts"`
	AISummary string          `json:"ai_summary"`
	WinnerID  *int64          `json:"winner_id"`
}

// SearchResult is a single discovery hit
type SearchResult struct {
	Type     string  `json:"type"`
	Title    string  `json:"title"`
	Slug     string  `json:"slug"`
	ImageURL string  `json:"image_url"`
	Score    float64 `json:"score,omitempty"`
}

// RankWeights are the weights applied to DeviceScores when ranking
type RankWeights struct {
	Camera      float64 `json:"camera"`
	Battery     float64 `json:"battery"`
	Performance float64 `json:"performance"`
	Value       float64 `json:"value"`
}

// DefaultRankWeights returns the standard ranking weights
func DefaultRankWeights() RankWeights {
	return RankWeights{Camera: 0.3, Battery: 0.2, Performance: 0.3, Value: 0.2}
}

// RankedDevice pairs a device with its weighted score
type RankedDevice struct {
	Score  float64 `json:"score"`
	Device Device  `json:"device"`
}

// ChatRequest is an AI chat query
type ChatRequest struct {
	Query     string `json:"query" binding:"required"`
	SessionID string `json:"session_id"`
}

// ChatResponse is the answer to an AI chat query
type ChatResponse struct {
	Response    string `json:"response"`
	Intent      string `json:"intent"`
	ContextUsed bool   `json:"context_used"`
}
