package core

// task.go is the asynchronous boundary around the two validation passes.
//
// A run takes an immutable snapshot of rows plus a grid definition,
// executes the Duplicate Detector and the Rule Validator concurrently, and
// joins them into a single ResultMap. A Task is one-shot: it produces
// exactly one result and cannot be restarted.
//
// The engine has no cancellation primitive. Callers that start a newer
// run discard older results with a Tracker:
//
//	gen := tracker.Begin()
//	task := core.Start(ctx, core.RunRequest{Generation: gen, ...})
//	res, err := task.Wait(ctx)
//	if err == nil && tracker.IsCurrent(res.Generation) {
//	    render(res)
//	}

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ErrRunPanicked is returned by Task.Wait when a pass panicked.
var ErrRunPanicked = errors.New("validation run panicked")

// RunRequest is the input snapshot of one validation run.
// When Dirty is false the run returns an empty result without evaluating.
type RunRequest struct {
	Dirty      bool
	Rows       []Row
	Grid       *GridDefinition
	Generation uint64
}

// RunResult is the joined output of one run.
type RunResult struct {
	RunID      uuid.UUID     `json:"runId"`
	Generation uint64        `json:"generation"`
	IsError    bool          `json:"isError"`
	Messages   ResultMap     `json:"messages"`
	Duplicates int           `json:"duplicateGroups"`
	Collisions []string      `json:"collisions,omitempty"`
	Duration   time.Duration `json:"durationNs"`
}

// Passes run by run. Tests replace them to inject failures.
var (
	findDuplicates = FindDuplicates
	validateRows   = ValidateRows
)

// Run executes both passes and blocks until both have finished.
// A panic inside a pass is returned as ErrRunPanicked.
func Run(ctx context.Context, req RunRequest) (RunResult, error) {
	return run(ctx, req, uuid.New())
}

func run(ctx context.Context, req RunRequest, id uuid.UUID) (RunResult, error) {
	start := time.Now()
	result := RunResult{
		RunID:      id,
		Generation: req.Generation,
		Messages:   make(ResultMap),
	}
	if !req.Dirty || req.Grid == nil {
		return result, nil
	}

	logger := LoggerFromContext(ctx).With("run_id", id.String(), "grid", req.Grid.Key, "generation", req.Generation)
	logger.Debug("validation run started", "rows", len(req.Rows))

	var dups, rules ResultMap
	var g errgroup.Group
	g.Go(func() (err error) {
		defer recoverPass(&err)
		dups = findDuplicates(req.Grid, req.Rows)
		return nil
	})
	g.Go(func() (err error) {
		defer recoverPass(&err)
		rules = validateRows(req.Grid, req.Rows)
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("validation pass failed", "error", err)
		return result, err
	}

	result.Messages.Merge(dups)
	if collisions := result.Messages.Merge(rules); len(collisions) > 0 {
		logger.Warn("validation message keys collided", "keys", collisions)
		result.Collisions = collisions
	}
	result.Duplicates = len(dups)
	result.IsError = result.Messages.HasErrors()
	result.Duration = time.Since(start)

	logger.Debug("validation run finished",
		"messages", len(result.Messages),
		"is_error", result.IsError,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}

// recoverPass turns a panic in a pass goroutine into ErrRunPanicked.
func recoverPass(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrRunPanicked, r)
	}
}

// Task is a single in-flight validation run.
type Task struct {
	id         uuid.UUID
	generation uint64
	done       chan struct{}
	result     RunResult
	err        error
}

// Start snapshots req and runs it in the background.
// Later changes to the caller's rows do not affect the run.
func Start(ctx context.Context, req RunRequest) *Task {
	t := &Task{
		id:         uuid.New(),
		generation: req.Generation,
		done:       make(chan struct{}),
	}
	req.Rows = snapshotRows(req.Rows)

	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				LoggerFromContext(ctx).Error("panic in validation run",
					"run_id", t.id.String(),
					"panic", r,
				)
				t.err = fmt.Errorf("%w: %v", ErrRunPanicked, r)
			}
		}()
		t.result, t.err = run(context.WithoutCancel(ctx), req, t.id)
	}()
	return t
}

// ID returns the run id, which is also RunResult.RunID.
func (t *Task) ID() uuid.UUID { return t.id }

// Generation returns the generation the task was started with.
func (t *Task) Generation() uint64 { return t.generation }

// Done is closed when the result is available.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the run finishes or ctx is done. An abandoned run
// still completes in the background; its result is simply never read.
func (t *Task) Wait(ctx context.Context) (RunResult, error) {
	select {
	case <-t.done:
		return t.result, t.err
	case <-ctx.Done():
		return RunResult{}, ctx.Err()
	}
}

// snapshotRows copies the row slice and each row's value map.
func snapshotRows(rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, r := range rows {
		out[i] = Row{Op: r.Op, Values: maps.Clone(r.Values)}
	}
	return out
}

// Tracker hands out increasing generations so that only the newest run's
// result is accepted.
type Tracker struct {
	gen atomic.Uint64
}

// Begin starts a new generation, making every earlier one stale.
func (t *Tracker) Begin() uint64 {
	return t.gen.Add(1)
}

// Current returns the latest generation handed out.
func (t *Tracker) Current() uint64 {
	return t.gen.Load()
}

// IsCurrent reports whether gen is still the latest generation.
func (t *Tracker) IsCurrent(gen uint64) bool {
	return t.gen.Load() == gen
}
