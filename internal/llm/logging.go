package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hitensaxena/pathfinder/internal/logging"
	"github.com/hitensaxena/pathfinder/internal/metrics"
	"github.com/hitensaxena/pathfinder/internal/store"
)

// Observers receive a record of every model request. All fields are
// optional.
type Observers struct {
	Events  store.EventAppender
	Log     *logging.Logger
	Metrics *metrics.Metrics
}

// eventWriteTimeout bounds the event write, which runs detached from the
// request context so a timed-out request is still recorded.
const eventWriteTimeout = 5 * time.Second

// LoggingProvider is a decorator that records every request as a log line,
// a latency observation and a stored event.
type LoggingProvider struct {
	inner    Provider
	provider string
	obs      Observers
	log      *logging.Logger
}

// WithLogging wraps a Provider with request recording.
func WithLogging(p Provider, providerName string, obs Observers) Provider {
	return &LoggingProvider{
		inner:    p,
		provider: providerName,
		obs:      obs,
		log:      logging.OrNop(obs.Log).With("provider", providerName),
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.obs.Metrics.LLMRequest(purpose, latency, err)

	kv := []any{
		"purpose", purpose,
		"model", data.Model,
		"latency_ms", data.LatencyMs,
		"input_tokens", data.InputTokens,
		"output_tokens", data.OutputTokens,
	}
	if err != nil {
		l.log.Warn("llm request failed", append(kv, "error", err)...)
	} else {
		l.log.Debug("llm request", kv...)
	}

	if l.obs.Events != nil {
		ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventWriteTimeout)
		defer cancel()
		// A failed event write never fails the request.
		if logErr := l.obs.Events.AppendLLMRequest(ectx, data); logErr != nil {
			l.log.Warn("failed to record llm request event", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}

	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}

	return b.String()
}
