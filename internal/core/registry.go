package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrGridNotFound is returned when a grid key is not registered.
var ErrGridNotFound = errors.New("grid not found")

// registryEntry remembers where a grid definition came from so that a
// reloaded schema file replaces exactly the grids it defined.
type registryEntry struct {
	def    *GridDefinition
	source string
}

var (
	registry   = make(map[string]registryEntry)
	registryMu sync.RWMutex
)

// Register adds a built-in grid definition to the registry.
// Panics if a grid with the same key is already registered.
func Register(def GridDefinition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Key]; exists {
		panic(fmt.Sprintf("grid already registered: %s", def.Key))
	}
	registry[def.Key] = registryEntry{def: &def}
}

// Upsert adds or replaces a grid definition loaded from source.
func Upsert(def GridDefinition, source string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[def.Key] = registryEntry{def: &def, source: source}
}

// ReplaceSource swaps every grid previously loaded from source for defs.
// It returns the keys that disappeared from the source.
func ReplaceSource(source string, defs []GridDefinition) []string {
	registryMu.Lock()
	defer registryMu.Unlock()

	keep := make(map[string]bool, len(defs))
	for i := range defs {
		def := defs[i]
		keep[def.Key] = true
		registry[def.Key] = registryEntry{def: &def, source: source}
	}

	var removed []string
	for key, e := range registry {
		if e.source == source && !keep[key] {
			delete(registry, key)
			removed = append(removed, key)
		}
	}
	sort.Strings(removed)
	return removed
}

// Unregister removes a grid. Returns false if it was not registered.
func Unregister(key string) bool {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, ok := registry[key]; !ok {
		return false
	}
	delete(registry, key)
	return true
}

// Get returns a grid definition by key.
// The returned definition is shared and must not be modified.
func Get(key string) (*GridDefinition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	e, ok := registry[key]
	return e.def, ok
}

// Lookup is like Get but returns ErrGridNotFound for unknown keys.
func Lookup(key string) (*GridDefinition, error) {
	def, ok := Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGridNotFound, key)
	}
	return def, nil
}

// All returns all registered grid definitions sorted by key.
func All() []*GridDefinition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]*GridDefinition, 0, len(registry))
	for _, e := range registry {
		result = append(result, e.def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// GridCount returns the number of registered grids.
func GridCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// Clear removes all registered grids.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]registryEntry)
}
