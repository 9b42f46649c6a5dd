package llm

import (
	"context"
	"encoding/json"
	"net/http"
)

// Provider is the prompt-execution abstraction. A caller sends a Request and
// receives the model output as JSON.
type Provider interface {
	// Generate sends a prompt to the model. When req.Schema is set the
	// provider requests structured output and validates the returned JSON
	// against the schema before handing it back.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one model invocation.
type Request struct {
	// System sets the model's role and constraints.
	System string

	// Messages is the conversation. Flows send a single user message.
	Messages []Message

	// Schema, when set, is the JSON Schema the response must satisfy.
	Schema *Schema

	MaxTokens int

	// Temperature in [0, 1]. Zero leaves the provider default.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. Name doubles as the tool/schema name sent to
// providers that need one, so it is kebab-case (e.g. "module-quiz").
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response holds the model output.
type Response struct {
	// Content is the validated JSON object when the request carried a
	// Schema, or the raw text otherwise.
	Content json.RawMessage

	Usage Usage
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

const (
	stopEnd       = "end"
	stopMaxTokens = "max_tokens"
)

// checkOutput rejects truncated output and, when the request carried a
// schema, output that does not satisfy it.
func checkOutput(req Request, content json.RawMessage, stopReason string) error {
	if stopReason == stopMaxTokens {
		return &ErrMaxTokensExceeded{Content: content}
	}
	return ValidateJSON(req.Schema, content)
}

// classifyStatus maps an upstream HTTP status onto the provider error types.
// Cancellation and deadlines pass through untouched so callers can tell a
// timeout from an outage.
func classifyStatus(status int, err error) error {
	switch {
	case IsContextError(err):
		return err
	case status == http.StatusTooManyRequests:
		return &ErrRateLimit{Err: err}
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}

// resolveModel maps a friendly model name to a provider model ID. Unknown
// names are used as-is.
func resolveModel(name string, models map[string]string) string {
	if id, ok := models[name]; ok {
		return id
	}
	return name
}
