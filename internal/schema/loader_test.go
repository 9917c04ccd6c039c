package schema

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/gridcheck/internal/core"
)

const gridA = "key: loader_a\ncolumns:\n  - {key: x, dataType: string}\n"
const gridsBC = "grids:\n  - {key: loader_b, columns: [{key: x, dataType: string}]}\n  - {key: loader_c, columns: [{key: x, dataType: number}]}\n"

func cleanupGrids(t *testing.T, keys ...string) {
	t.Cleanup(func() {
		for _, k := range keys {
			core.Unregister(k)
		}
	})
}

func TestLoader_Load(t *testing.T) {
	cleanupGrids(t, "loader_a", "loader_b", "loader_c")
	dir := t.TempDir()
	writeSchema(t, dir, "a.yaml", gridA)
	bc := writeSchema(t, dir, "bc.yml", gridsBC)
	writeSchema(t, dir, "notes.txt", "not a schema")
	if err := os.Mkdir(filepath.Join(dir, ".hidden"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeSchema(t, filepath.Join(dir, ".hidden"), "skip.yaml", "key: [")

	l := NewLoader(dir, nil, nil)
	res, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Files != 2 || res.Grids != 3 {
		t.Errorf("Load() = %+v, want 2 files, 3 grids", res)
	}
	for _, key := range []string{"loader_a", "loader_b", "loader_c"} {
		if _, ok := core.Get(key); !ok {
			t.Errorf("grid %s not registered", key)
		}
	}

	// Dropping a grid from a file removes only that grid.
	writeSchema(t, dir, "bc.yml", "grids:\n  - {key: loader_b, columns: [{key: x, dataType: string}]}\n")
	res, err = l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff([]string{"loader_c"}, res.Removed); diff != "" {
		t.Errorf("Removed mismatch (-want +got):\n%s", diff)
	}

	// A broken file keeps its previous grids.
	writeSchema(t, dir, "bc.yml", "grids: [")
	res, err = l.Load()
	var de *DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("Load() error = %v, want *DecodeError", err)
	}
	if _, ok := core.Get("loader_b"); !ok {
		t.Error("grid of a broken file was removed")
	}
	if res.Grids != 2 {
		t.Errorf("Grids = %d, want 2", res.Grids)
	}

	// A deleted file takes its grids with it.
	if err := os.Remove(bc); err != nil {
		t.Fatal(err)
	}
	res, err = l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff([]string{"loader_b"}, res.Removed); diff != "" {
		t.Errorf("Removed mismatch (-want +got):\n%s", diff)
	}
	if _, ok := core.Get("loader_a"); !ok {
		t.Error("unrelated grid removed")
	}
}

func TestLoader_MissingDir(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "missing"), nil, nil)
	if _, err := l.Load(); err == nil {
		t.Error("Load() error = nil for a missing directory")
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	cleanupGrids(t, "loader_a", "loader_b", "loader_c")
	dir := t.TempDir()
	writeSchema(t, dir, "a.yaml", gridA)

	l := NewLoader(dir, nil, nil)
	if _, err := l.Load(); err != nil {
		t.Fatal(err)
	}

	var reloads atomic.Int32
	done := make(chan LoadResult, 4)
	w, err := NewWatcher(l, 50*time.Millisecond, func(res LoadResult, err error) {
		reloads.Add(1)
		if err == nil {
			done <- res
		}
	}, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(ctx) }()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)

	// A burst of writes produces one reload.
	for i := 0; i < 3; i++ {
		writeSchema(t, dir, "bc.yaml", gridsBC)
	}
	writeSchema(t, dir, "ignored.txt", "x")

	select {
	case res := <-done:
		if res.Grids != 3 {
			t.Errorf("reload Grids = %d, want 3", res.Grids)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after writing a schema file")
	}

	time.Sleep(200 * time.Millisecond)
	if n := reloads.Load(); n != 1 {
		t.Errorf("reloads = %d, want 1", n)
	}
	if _, ok := core.Get("loader_c"); !ok {
		t.Error("loader_c not registered after reload")
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}

func TestDebouncer_Coalesces(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(80 * time.Millisecond)

	if n := calls.Load(); n != 0 {
		t.Errorf("calls = %d, want 0", n)
	}
}
