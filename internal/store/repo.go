package store

import (
	"context"
	"time"
)

// LLMEventsCollection holds one document per model request.
const LLMEventsCollection = "llmRequestEvents"

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int    // max results (0 = unlimited)
	Purpose string // exact purpose match ("" = any)
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	Purpose      string `json:"purpose"`
	InputTokens  int    `json:"inputTokens"`
	OutputTokens int    `json:"outputTokens"`
	LatencyMs    int64  `json:"latencyMs"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	RequestBody  string `json:"requestBody,omitempty"`
	ResponseBody string `json:"responseBody,omitempty"`
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	LLMRequestEventData
	ID        string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// PurposeUsage aggregates token usage for one purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventAppender records LLM request events. Implemented by *EventRepo.
type EventAppender interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}
