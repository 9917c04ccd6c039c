package core

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func registerForTest(t *testing.T, def GridDefinition, source string) {
	t.Helper()
	Upsert(def, source)
	t.Cleanup(func() { Unregister(def.Key) })
}

func TestRegistry_Lookup(t *testing.T) {
	registerForTest(t, GridDefinition{Key: "test_lookup"}, "")

	if _, err := Lookup("test_lookup"); err != nil {
		t.Errorf("Lookup() error = %v", err)
	}

	_, err := Lookup("test_missing")
	if !errors.Is(err, ErrGridNotFound) {
		t.Errorf("Lookup(missing) error = %v, want ErrGridNotFound", err)
	}
	if _, ok := Get("test_missing"); ok {
		t.Error("Get(missing) ok = true")
	}
}

func TestRegistry_RegisterDuplicatePanics(t *testing.T) {
	Register(GridDefinition{Key: "test_dup_register"})
	t.Cleanup(func() { Unregister("test_dup_register") })

	defer func() {
		if recover() == nil {
			t.Error("second Register did not panic")
		}
	}()
	Register(GridDefinition{Key: "test_dup_register"})
}

func TestRegistry_ReplaceSource(t *testing.T) {
	registerForTest(t, GridDefinition{Key: "test_src_a", Label: "old"}, "grids.yaml")
	registerForTest(t, GridDefinition{Key: "test_src_b"}, "grids.yaml")
	registerForTest(t, GridDefinition{Key: "test_src_other"}, "other.yaml")
	t.Cleanup(func() { Unregister("test_src_c") })

	removed := ReplaceSource("grids.yaml", []GridDefinition{
		{Key: "test_src_a", Label: "new"},
		{Key: "test_src_c"},
	})

	if diff := cmp.Diff([]string{"test_src_b"}, removed); diff != "" {
		t.Errorf("removed mismatch (-want +got):\n%s", diff)
	}
	if def, _ := Get("test_src_a"); def == nil || def.Label != "new" {
		t.Errorf("test_src_a = %+v, want replaced definition", def)
	}
	if _, ok := Get("test_src_other"); !ok {
		t.Error("grids of another source were removed")
	}
	if _, ok := Get("test_src_c"); !ok {
		t.Error("new grid was not added")
	}
}

func TestRegistry_AllSorted(t *testing.T) {
	registerForTest(t, GridDefinition{Key: "test_zz"}, "")
	registerForTest(t, GridDefinition{Key: "test_aa"}, "")

	var keys []string
	for _, def := range All() {
		keys = append(keys, def.Key)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("All() not sorted: %v", keys)
		}
	}
	if GridCount() < 2 {
		t.Errorf("GridCount() = %d, want >= 2", GridCount())
	}
}
