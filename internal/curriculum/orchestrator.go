package curriculum

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/hitensaxena/pathfinder/internal/flow"
	"github.com/hitensaxena/pathfinder/internal/learning"
	"github.com/hitensaxena/pathfinder/internal/llm"
	"github.com/hitensaxena/pathfinder/internal/logging"
	"github.com/hitensaxena/pathfinder/internal/metrics"
)

// Orchestrator generates detailed content for the modules of a path.
type Orchestrator struct {
	provider llm.Provider
	cfg      Config
	flow     *flow.Flow[detailInput, detailOutput]
	log      *logging.Logger
	metrics  *metrics.Metrics
}

// NewOrchestrator creates an Orchestrator. log and m may be nil.
func NewOrchestrator(provider llm.Provider, cfg Config, log *logging.Logger, m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		cfg:      cfg,
		flow:     detailFlow().WithLimits(cfg.DetailMaxTokens, cfg.DetailTemperature),
		log:      logging.OrNop(log),
		metrics:  m,
	}
}

func detailFlow() *flow.Flow[detailInput, detailOutput] {
	return &flow.Flow[detailInput, detailOutput]{
		Name:        DetailFlowName,
		Input:       DetailInputSchema,
		Output:      DetailSchema,
		System:      detailSystemPrompt,
		Prompt:      buildDetailMessage,
		MaxTokens:   4096,
		Temperature: 0.6,
	}
}

// GenerateModuleDetail generates the sectioned content for the module at
// index. Every failure is a *learning.GenerationError attributed to index.
func (o *Orchestrator) GenerateModuleDetail(ctx context.Context, index int, m learning.Module, goal string) (learning.ModuleDetail, error) {
	if o.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.CallTimeout)
		defer cancel()
	}

	out, err := o.flow.Run(ctx, o.provider, detailInput{
		ModuleTitle:       m.Title,
		ModuleDescription: m.Description,
		LearningGoal:      goal,
	})
	if err != nil {
		ge := generationError(DetailFlowName, index, "module detail", err)
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			ge.Timeout = true
		}
		return o.fail(index, m, ge)
	}
	if len(out.Sections) == 0 {
		ge := learning.NewGenerationError(DetailFlowName, "no content produced", nil)
		ge.ModuleIndex = index
		return o.fail(index, m, ge)
	}

	o.metrics.ModuleDetail(nil)
	o.log.Debug("module detail generated", "module", index, "sections", len(out.Sections))
	return learning.ModuleDetail{Sections: out.Sections}, nil
}

func (o *Orchestrator) fail(index int, m learning.Module, ge *learning.GenerationError) (learning.ModuleDetail, error) {
	o.metrics.ModuleDetail(ge)
	o.log.Warn("module detail failed", "module", index, "title", m.Title, "timeout", ge.Timeout, "error", ge)
	return learning.ModuleDetail{}, ge
}

// Start begins generating detail for every module and returns immediately.
//
// At most Config.MaxConcurrency calls run at once. Calls are detached from
// ctx: canceling ctx (or the task) stops delivery but running calls finish or
// time out on their own.
func (o *Orchestrator) Start(ctx context.Context, modules []learning.Module, goal string) (*Task, error) {
	if len(modules) == 0 {
		return nil, learning.Invalid("modules", "must not be empty")
	}

	t := newTask(len(modules))
	detached := context.WithoutCancel(ctx)

	go func() {
		var g errgroup.Group
		g.SetLimit(o.cfg.concurrency())
		for i, m := range modules {
			g.Go(func() error {
				t.emit(Progress{Index: i, Status: StatusInFlight})
				detail, err := o.GenerateModuleDetail(detached, i, m, goal)
				if err != nil {
					t.setResult(i, Result{Err: err})
					t.emit(Progress{Index: i, Status: StatusFailed, Err: err})
					return nil
				}
				t.setResult(i, Result{Detail: detail})
				t.emit(Progress{Index: i, Status: StatusSucceeded})
				return nil
			})
		}
		_ = g.Wait()
		t.finish()
	}()

	go func() {
		select {
		case <-ctx.Done():
			t.Cancel()
		case <-t.done:
		}
	}()

	return t, nil
}

// GenerateAllModuleDetails runs Start and waits for every module. onProgress,
// if non-nil, is called from the caller's goroutine for each status change.
//
// One module failing never affects the others; the returned map has an entry
// for every index. If ctx is canceled first, ctx.Err() is returned.
func (o *Orchestrator) GenerateAllModuleDetails(ctx context.Context, modules []learning.Module, goal string, onProgress func(Progress)) (map[int]Result, error) {
	t, err := o.Start(ctx, modules, goal)
	if err != nil {
		return nil, err
	}

	for p := range t.Updates() {
		if onProgress != nil {
			onProgress(p)
		}
	}

	results, err := t.Wait()
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	o.log.Info("module details generated", "modules", len(modules), "failed", failed)
	return results, nil
}

// Details splits results into the successful details keyed by module index
// and the sorted indexes that failed.
func Details(results map[int]Result) (map[string]learning.ModuleDetail, []int) {
	details := make(map[string]learning.ModuleDetail)
	var failed []int
	for i := range len(results) {
		r, ok := results[i]
		if !ok {
			continue
		}
		if r.Err != nil {
			failed = append(failed, i)
			continue
		}
		details[learning.IndexKey(i)] = r.Detail
	}
	return details, failed
}
