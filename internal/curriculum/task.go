package curriculum

import (
	"errors"
	"sync"

	"github.com/hitensaxena/pathfinder/internal/learning"
)

// ErrCanceled is returned by Task.Wait when the task was canceled before
// every module finished.
var ErrCanceled = errors.New("module detail generation canceled")

// Status is the state of one module in a running task.
type Status int

const (
	StatusInFlight Status = iota
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusInFlight:
		return "in-flight"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}

// Progress reports a status change for the module at Index.
type Progress struct {
	Index  int
	Status Status
	Err    error
}

// Result is the outcome for one module: exactly one of Detail or Err is set.
type Result struct {
	Detail learning.ModuleDetail
	Err    error
}

// Task is a handle on a running module detail generation.
type Task struct {
	updates chan Progress
	done    chan struct{}
	stop    chan struct{}
	results []Result

	mu       sync.Mutex
	closed   bool
	finished bool
	canceled bool
	once     sync.Once
}

func newTask(n int) *Task {
	return &Task{
		// Each module reports at most twice, so sends never block.
		updates: make(chan Progress, 2*n),
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
		results: make([]Result, n),
	}
}

// Updates returns the progress stream. It is closed when the task finishes
// or is canceled.
func (t *Task) Updates() <-chan Progress {
	return t.updates
}

// Wait blocks until every module has finished and returns the results keyed
// by module index. If the task is canceled first it returns ErrCanceled.
func (t *Task) Wait() (map[int]Result, error) {
	select {
	case <-t.done:
	case <-t.stop:
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canceled {
		return nil, ErrCanceled
	}
	out := make(map[int]Result, len(t.results))
	for i, r := range t.results {
		out[i] = r
	}
	return out, nil
}

// Cancel stops delivery of progress and results. Calls already running are
// not interrupted; their results are discarded.
func (t *Task) Cancel() {
	t.once.Do(func() {
		t.mu.Lock()
		if !t.finished {
			t.canceled = true
		}
		t.closeUpdates()
		t.mu.Unlock()
		close(t.stop)
	})
}

// Done is closed once every module has finished, canceled or not.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

func (t *Task) emit(p Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.updates <- p
}

func (t *Task) setResult(i int, r Result) {
	t.mu.Lock()
	t.results[i] = r
	t.mu.Unlock()
}

func (t *Task) finish() {
	t.mu.Lock()
	t.finished = true
	t.closeUpdates()
	t.mu.Unlock()
	close(t.done)
}

// closeUpdates must be called with mu held.
func (t *Task) closeUpdates() {
	if !t.closed {
		t.closed = true
		close(t.updates)
	}
}
