package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/gridcheck/internal/config"
	"github.com/JonMunkholm/gridcheck/internal/core"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestCollector() *Collector {
	return NewCollector(&config.MetricsConfig{Namespace: "test"}, nil)
}

func TestObserveRun(t *testing.T) {
	c := newTestCollector()

	c.ObserveRun("people", core.RunResult{}, false)
	c.ObserveRun("people", core.RunResult{Duration: time.Millisecond}, true)
	c.ObserveRun("people", core.RunResult{
		IsError:  true,
		Duration: 2 * time.Millisecond,
		Messages: core.ResultMap{
			"dup0":  {Key: "dup0"},
			"name1": {Key: "name1"},
			"0ec":   {Key: "0ec"},
		},
	}, true)

	tests := []struct {
		outcome string
		want    float64
	}{
		{OutcomeClean, 1},
		{OutcomeValid, 1},
		{OutcomeInvalid, 1},
		{OutcomeRejected, 0},
	}
	for _, tt := range tests {
		got := testutil.ToFloat64(c.runsTotal.WithLabelValues("people", tt.outcome))
		if got != tt.want {
			t.Errorf("runs_total{outcome=%q} = %v, want %v", tt.outcome, got, tt.want)
		}
	}

	if got := testutil.CollectAndCount(c.runDuration); got != 1 {
		t.Errorf("run_duration_seconds series = %d, want 1", got)
	}

	kinds := map[core.KeyKind]float64{
		core.KindDuplicate: 1,
		core.KindCell:      1,
		core.KindEmpty:     1,
	}
	for kind, want := range kinds {
		got := testutil.ToFloat64(c.messagesTotal.WithLabelValues("people", string(kind)))
		if got != want {
			t.Errorf("messages_total{kind=%q} = %v, want %v", kind, got, want)
		}
	}
}

func TestObserveCounters(t *testing.T) {
	c := newTestCollector()

	c.ObserveRejected("people")
	c.ObserveFailed("people")
	c.ObserveStale("people")
	c.ObserveStale("people")
	c.ObserveFilter("people", "predicate")
	c.ObservePaste("people", 12)
	c.ObservePaste("people", 3)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"rejected", testutil.ToFloat64(c.runsTotal.WithLabelValues("people", OutcomeRejected)), 1},
		{"failed", testutil.ToFloat64(c.runsTotal.WithLabelValues("people", OutcomeFailed)), 1},
		{"stale", testutil.ToFloat64(c.staleTotal.WithLabelValues("people")), 2},
		{"filter", testutil.ToFloat64(c.filtersTotal.WithLabelValues("people", "predicate")), 1},
		{"paste cells", testutil.ToFloat64(c.pasteCells.WithLabelValues("people")), 15},
	}
	for _, tt := range checks {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestActiveRuns(t *testing.T) {
	c := newTestCollector()

	c.RunStarted()
	c.RunStarted()
	c.RunFinished()

	if got := testutil.ToFloat64(c.activeRuns); got != 1 {
		t.Errorf("active_runs = %v, want 1", got)
	}
}

func TestObserveSchemaReload(t *testing.T) {
	c := newTestCollector()

	c.ObserveSchemaReload(nil, 7)
	c.ObserveSchemaReload(errors.New("bad file"), 3)

	if got := testutil.ToFloat64(c.schemaReloads.WithLabelValues("ok")); got != 1 {
		t.Errorf("schema_reloads_total{ok} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.schemaReloads.WithLabelValues(OutcomeFailed)); got != 1 {
		t.Errorf("schema_reloads_total{failed} = %v, want 1", got)
	}
	// A failed reload keeps the last known count.
	if got := testutil.ToFloat64(c.gridsRegistered); got != 7 {
		t.Errorf("grids_registered = %v, want 7", got)
	}
}

func TestHandler(t *testing.T) {
	c := newTestCollector()
	c.ObserveRejected("people")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `test_runs_total{grid="people",outcome="rejected"} 1`) {
		t.Errorf("metrics output missing runs_total series:\n%s", body)
	}
}

func TestInlineGridsShareOneSeries(t *testing.T) {
	c := newTestCollector()
	svc := core.NewService(core.ServiceOptions{Observer: c})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = svc.Shutdown(ctx)
	})

	for i := range 200 {
		grid := &core.GridDefinition{
			Key:     fmt.Sprintf("inline-%d", i),
			Columns: []core.ColumnConfig{{Key: "name", Name: "Name", DataType: core.TypeString}},
		}
		rows := []core.Row{{Op: core.Insert, Values: map[string]any{"name": "Ada"}}}
		if _, err := svc.ValidateGrid(context.Background(), grid, rows, true); err != nil {
			t.Fatalf("ValidateGrid(%s) error = %v", grid.Key, err)
		}
	}

	if got := testutil.CollectAndCount(c.runsTotal); got != 1 {
		t.Errorf("runs_total series = %d, want 1", got)
	}
	if got := testutil.CollectAndCount(c.runDuration); got != 1 {
		t.Errorf("run_duration_seconds series = %d, want 1", got)
	}
	if got := testutil.ToFloat64(c.runsTotal.WithLabelValues(core.InlineGridLabel, OutcomeValid)); got != 200 {
		t.Errorf("runs_total{grid=inline,outcome=valid} = %v, want 200", got)
	}
}
