package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// EventRepo stores LLM request events in a DocumentStore.
type EventRepo struct {
	docs DocumentStore
}

// NewEventRepo creates an event repo over docs.
func NewEventRepo(docs DocumentStore) *EventRepo {
	return &EventRepo{docs: docs}
}

func (r *EventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	fields, err := EncodeFields(data)
	if err != nil {
		return err
	}
	fields["timestamp"] = ServerTimestamp

	if _, err := r.docs.Create(ctx, LLMEventsCollection, fields); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// QueryLLMEvents returns events newest first.
func (r *EventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	q := Query{OrderBy: "timestamp", Desc: true, Limit: opts.Limit}
	if opts.Purpose != "" {
		q.Filters = append(q.Filters, Filter{Path: "purpose", Value: opts.Purpose})
	}

	docs, err := r.docs.Query(ctx, LLMEventsCollection, q)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}

	events := make([]LLMEvent, 0, len(docs))
	for _, d := range docs {
		e, err := decodeLLMEvent(d)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}

// GetLLMEvent returns a single event, or nil if it does not exist.
func (r *EventRepo) GetLLMEvent(ctx context.Context, id string) (*LLMEvent, error) {
	doc, err := r.docs.Get(ctx, LLMEventsCollection, id)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	e, err := decodeLLMEvent(*doc)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// LLMUsageByPurpose aggregates calls and tokens per purpose, busiest first.
func (r *EventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	events, err := r.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		return nil, err
	}

	byPurpose := map[string]*PurposeUsage{}
	latency := map[string]int64{}
	for _, e := range events {
		u, ok := byPurpose[e.Purpose]
		if !ok {
			u = &PurposeUsage{Purpose: e.Purpose}
			byPurpose[e.Purpose] = u
		}
		u.Calls++
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
		latency[e.Purpose] += e.LatencyMs
	}

	out := make([]PurposeUsage, 0, len(byPurpose))
	for p, u := range byPurpose {
		u.AvgLatencyMs = latency[p] / int64(u.Calls)
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Purpose < out[j].Purpose
	})
	return out, nil
}

// LLMUsageByModel aggregates calls and tokens per model, busiest first.
func (r *EventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	events, err := r.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		return nil, err
	}

	byModel := map[string]*ModelUsage{}
	for _, e := range events {
		u, ok := byModel[e.Model]
		if !ok {
			u = &ModelUsage{Model: e.Model}
			byModel[e.Model] = u
		}
		u.Calls++
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
	}

	out := make([]ModelUsage, 0, len(byModel))
	for _, u := range byModel {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return out[i].Model < out[j].Model
	})
	return out, nil
}

func decodeLLMEvent(d Document) (LLMEvent, error) {
	var e LLMEvent
	if err := DecodeFields(d.Fields, &e); err != nil {
		return LLMEvent{}, fmt.Errorf("decode LLM event %s: %w", d.ID, err)
	}
	e.ID = d.ID
	return e, nil
}
