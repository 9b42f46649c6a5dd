// Package app wires the service together and implements the use cases that
// span more than one component.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/hitensaxena/pathfinder/internal/config"
	"github.com/hitensaxena/pathfinder/internal/curriculum"
	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/llm"
	"github.com/hitensaxena/pathfinder/internal/logging"
	"github.com/hitensaxena/pathfinder/internal/metrics"
	"github.com/hitensaxena/pathfinder/internal/pathrecord"
	"github.com/hitensaxena/pathfinder/internal/quiz"
	"github.com/hitensaxena/pathfinder/internal/store"
	"github.com/hitensaxena/pathfinder/internal/video"
)

// ErrLLMUnavailable is returned by generation use cases when no model
// provider is configured.
var ErrLLMUnavailable = errors.New("LLM provider not configured")

// App holds the service's components.
type App struct {
	Config  *config.Config
	Log     *logging.Logger
	Metrics *metrics.Metrics

	Store  store.DocumentStore
	Events *store.EventRepo
	Paths  *pathrecord.Service

	// Quiz scoring works without a provider; its generation does not.
	Quiz *quiz.Service

	// The fields below are nil when no model provider is configured.
	Provider     llm.Provider
	Planner      *curriculum.Planner
	Orchestrator *curriculum.Orchestrator

	// Video is nil when no YouTube key is configured.
	Video video.Searcher

	llmErr error
}

// New opens the store and builds every component from cfg. A missing or
// invalid LLM configuration is not fatal: path reads and updates still work
// and generation returns ErrLLMUnavailable.
func New(ctx context.Context, cfg *config.Config, log *logging.Logger) (*App, error) {
	log = logging.OrNop(log)
	m := metrics.New()

	docs, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	events := store.NewEventRepo(docs)

	var provider llm.Provider
	llmErr := cfg.LLM.Validate()
	if llmErr == nil {
		provider, llmErr = llm.NewProvider(ctx, cfg.LLM, llm.Observers{Events: events, Log: log, Metrics: m})
	}
	if llmErr != nil {
		log.Warn("LLM provider not configured; generation is unavailable", "error", llmErr)
	}

	a := Assemble(cfg, log, m, docs, provider)
	a.llmErr = llmErr

	if key := cfg.Video.YouTubeAPIKey; key != "" {
		s, err := video.NewYouTubeSearcher(ctx, key, log)
		if err != nil {
			log.Warn("video search unavailable", "error", err)
		} else {
			a.Video = s
		}
	}
	return a, nil
}

// Assemble builds an App over existing dependencies. provider may be nil.
func Assemble(cfg *config.Config, log *logging.Logger, m *metrics.Metrics, docs store.DocumentStore, provider llm.Provider) *App {
	log = logging.OrNop(log)
	a := &App{
		Config:   cfg,
		Log:      log,
		Metrics:  m,
		Store:    docs,
		Events:   store.NewEventRepo(docs),
		Paths:    pathrecord.NewService(docs, log.With("component", "paths"), m),
		Provider: provider,
	}
	gen := cfg.Generation
	a.Quiz = quiz.NewService(quiz.NewGenerator(provider, gen.Quiz()), a.Paths, log.With("component", "quiz"), m)
	if provider == nil {
		a.llmErr = ErrLLMUnavailable
		return a
	}

	a.Planner = curriculum.NewPlanner(provider, gen.Curriculum(), log.With("component", "planner"))
	a.Orchestrator = curriculum.NewOrchestrator(provider, gen.Curriculum(), log.With("component", "orchestrator"), m)
	return a
}

// Close releases the store.
func (a *App) Close() error {
	return a.Store.Close()
}

// LLMReady returns nil when generation is available, or the reason it is
// not (wrapping ErrLLMUnavailable).
func (a *App) LLMReady() error {
	if a.Provider != nil {
		return nil
	}
	if a.llmErr == nil || errors.Is(a.llmErr, ErrLLMUnavailable) {
		return ErrLLMUnavailable
	}
	return fmt.Errorf("%w: %v", ErrLLMUnavailable, a.llmErr)
}

// GeneratePath produces an unsaved curriculum for in.
func (a *App) GeneratePath(ctx context.Context, in learning.LearningGoalInput) (curriculum.Draft, error) {
	if err := in.Validate(); err != nil {
		return curriculum.Draft{}, err
	}
	if err := a.LLMReady(); err != nil {
		return curriculum.Draft{}, err
	}
	return a.Planner.GeneratePath(ctx, in)
}
