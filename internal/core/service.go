package core

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultRunTimeout bounds how long a caller waits for a run result.
const DefaultRunTimeout = 30 * time.Second

// DefaultMaxRows is the largest snapshot accepted by default.
const DefaultMaxRows = 100_000

// InlineGridLabel replaces the key of unregistered grids in Observer
// calls, so that keys sent by clients never become metric labels.
const InlineGridLabel = "inline"

var (
	// ErrStaleResult is returned when a newer run for the same session
	// started before this one finished. The result must not be shown.
	ErrStaleResult = errors.New("validation result superseded by a newer run")

	// ErrTooManyRows is returned for snapshots above the row limit.
	ErrTooManyRows = errors.New("too many rows in snapshot")

	// ErrColumnNotFound is returned for unknown column keys.
	ErrColumnNotFound = errors.New("column not found")
)

// Observer receives engine events, typically to feed metrics.
type Observer interface {
	ObserveRun(grid string, res RunResult, evaluated bool)
	ObserveRejected(grid string)
	ObserveFailed(grid string)
	ObserveStale(grid string)
	ObserveFilter(grid, kind string)
	ObservePaste(grid string, cells int)
	RunStarted()
	RunFinished()
}

type noopObserver struct{}

func (noopObserver) ObserveRun(string, RunResult, bool) {}
func (noopObserver) ObserveRejected(string)             {}
func (noopObserver) ObserveFailed(string)               {}
func (noopObserver) ObserveStale(string)                {}
func (noopObserver) ObserveFilter(string, string)       {}
func (noopObserver) ObservePaste(string, int)           {}
func (noopObserver) RunStarted()                        {}
func (noopObserver) RunFinished()                       {}

// ServiceOptions configures a Service. Zero values select defaults.
type ServiceOptions struct {
	MaxConcurrent int
	MaxWait       time.Duration
	RunTimeout    time.Duration
	MaxRows       int
	SessionTTL    time.Duration
	MaxSessions   int
	Observer      Observer
}

// Service is the entry point used by the HTTP host and the CLI. It looks
// grids up in the registry, bounds concurrent runs and discards results
// that a newer run of the same session has superseded.
type Service struct {
	limiter    *RunLimiter
	observer   Observer
	runTimeout time.Duration
	maxRows    int
	sessions   *sessionTable
}

// NewService creates a new Service instance.
func NewService(opts ServiceOptions) *Service {
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = DefaultRunTimeout
	}
	if opts.MaxRows <= 0 {
		opts.MaxRows = DefaultMaxRows
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}

	return &Service{
		limiter:    NewRunLimiter(opts.MaxConcurrent, opts.MaxWait),
		observer:   opts.Observer,
		runTimeout: opts.RunTimeout,
		maxRows:    opts.MaxRows,
		sessions:   newSessionTable(opts.SessionTTL, opts.MaxSessions),
	}
}

// Grids returns every registered grid.
func (s *Service) Grids() []*GridDefinition {
	return All()
}

// Grid returns one registered grid.
func (s *Service) Grid(key string) (*GridDefinition, error) {
	return Lookup(key)
}

// Validate runs both validation passes over rows of a registered grid.
func (s *Service) Validate(ctx context.Context, gridKey string, rows []Row, dirty bool) (RunResult, error) {
	grid, err := Lookup(gridKey)
	if err != nil {
		return RunResult{}, err
	}
	return s.ValidateGrid(ctx, grid, rows, dirty)
}

// ValidateGrid runs both passes against an explicit grid definition.
//
// Runs are tracked per session (see ContextWithSession). If another run of
// the same session begins before this one returns, the result is
// discarded and ErrStaleResult is returned. Grids that are not in the
// registry are reported to the Observer as InlineGridLabel.
func (s *Service) ValidateGrid(ctx context.Context, grid *GridDefinition, rows []Row, dirty bool) (RunResult, error) {
	if len(rows) > s.maxRows {
		return RunResult{}, fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRows, len(rows), s.maxRows)
	}

	label := InlineGridLabel
	if _, ok := Get(grid.Key); ok {
		label = grid.Key
	}

	session := SessionFromContext(ctx)
	tracker := s.sessions.acquire(session)
	defer s.sessions.release(session)
	gen := tracker.Begin()

	if !dirty {
		res, _ := Run(ctx, RunRequest{Dirty: false, Grid: grid, Generation: gen})
		s.observer.ObserveRun(label, res, false)
		return res, nil
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		if errors.Is(err, ErrTooManyRuns) {
			s.observer.ObserveRejected(label)
		}
		return RunResult{}, err
	}
	s.observer.RunStarted()

	task := Start(ctx, RunRequest{Dirty: true, Rows: rows, Grid: grid, Generation: gen})
	go func() {
		<-task.Done()
		s.observer.RunFinished()
		s.limiter.Release()
	}()

	waitCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	res, err := task.Wait(waitCtx)
	if err != nil {
		s.observer.ObserveFailed(label)
		return RunResult{}, fmt.Errorf("validation run %s: %w", task.ID(), err)
	}

	if !tracker.IsCurrent(res.Generation) {
		s.observer.ObserveStale(label)
		LoggerFromContext(ctx).Debug("discarding stale validation result",
			"run_id", res.RunID.String(),
			"generation", res.Generation,
			"current", tracker.Current(),
		)
		return res, ErrStaleResult
	}

	s.observer.ObserveRun(label, res, true)
	return res, nil
}

// FilterResult carries inclusion flags for every input row.
type FilterResult struct {
	Included []bool `json:"included"`
	Matched  int    `json:"matched"`
}

// Filter evaluates the generic filter list and the column filters over
// rows and ANDs the two passes.
func (s *Service) Filter(gridKey string, rows []Row, filters []FilterSpec, columnFilters []ColumnFilter) (FilterResult, error) {
	grid, err := Lookup(gridKey)
	if err != nil {
		return FilterResult{}, err
	}

	var passes [][]bool
	if len(filters) > 0 {
		passes = append(passes, ApplyFilters(grid, rows, filters))
		s.observer.ObserveFilter(grid.Key, "predicate")
	}
	if len(columnFilters) > 0 {
		passes = append(passes, ApplyColumnFilters(rows, columnFilters))
		s.observer.ObserveFilter(grid.Key, "column")
	}

	included := make([]bool, len(rows))
	if len(passes) == 0 {
		for i := range included {
			included[i] = true
		}
	} else {
		included = CombineInclusion(passes...)
	}

	matched := 0
	for _, in := range included {
		if in {
			matched++
		}
	}
	return FilterResult{Included: included, Matched: matched}, nil
}

// PasteCell coerces pasted text for one column of a grid.
func (s *Service) PasteCell(gridKey, columnKey, raw string, allowNonEditable bool) (any, error) {
	grid, err := Lookup(gridKey)
	if err != nil {
		return nil, err
	}
	col, ok := grid.Column(columnKey)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, gridKey, columnKey)
	}

	s.observer.ObservePaste(grid.Key, 1)
	return PasteCoerce(col, raw, PasteOptions{AllowNonEditable: allowNonEditable, Mapper: grid.Mapper}), nil
}

// PasteRows parses clipboard text into rows of a grid, starting at the
// given column key. An empty startColumn starts at the first column.
func (s *Service) PasteRows(gridKey, text, startColumn string, allowNonEditable bool) ([]Row, error) {
	grid, err := Lookup(gridKey)
	if err != nil {
		return nil, err
	}

	start := 0
	if startColumn != "" {
		start = -1
		for i, col := range grid.Columns {
			if col.Key == startColumn {
				start = i
				break
			}
		}
		if start < 0 {
			return nil, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, gridKey, startColumn)
		}
	}

	rows := ParsePaste(text, grid, start, PasteOptions{AllowNonEditable: allowNonEditable})
	cells := 0
	for _, r := range rows {
		cells += len(r.Values)
	}
	s.observer.ObservePaste(grid.Key, cells)
	return rows, nil
}

// Status returns the run limiter state.
func (s *Service) Status() RunLimiterStatus {
	return s.limiter.Status()
}

// ForgetSession drops the run tracker of a session. A session with a run
// in flight is kept; it expires once idle.
func (s *Service) ForgetSession(session string) {
	s.sessions.forget(session)
}

// Shutdown waits for in-flight runs to finish.
func (s *Service) Shutdown(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
