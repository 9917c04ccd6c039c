package schema

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/JonMunkholm/gridcheck/internal/core"
)

// DefaultExtensions are the schema file extensions loaded by default.
var DefaultExtensions = []string{".yaml", ".yml", ".json"}

// LoadResult summarizes one pass over the schema directory.
type LoadResult struct {
	Files   int
	Grids   int
	Removed []string
}

// Loader keeps the registry in sync with a directory of schema files.
// Each file is a registry source: reloading a file replaces exactly the
// grids it defined, and a deleted file takes its grids with it. A file
// that fails to parse keeps its previously loaded grids.
type Loader struct {
	dir    string
	exts   []string
	logger *slog.Logger

	mu      sync.Mutex
	sources map[string]int // source -> grid count
}

// NewLoader creates a loader for dir. A nil exts selects DefaultExtensions.
func NewLoader(dir string, exts []string, logger *slog.Logger) *Loader {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		dir:     dir,
		exts:    exts,
		logger:  logger,
		sources: make(map[string]int),
	}
}

// Dir returns the watched directory.
func (l *Loader) Dir() string { return l.dir }

// Extensions returns the schema file extensions.
func (l *Loader) Extensions() []string { return l.exts }

// Load reads every schema file under the directory and updates the
// registry. Parse failures of individual files are joined into the
// returned error; the remaining files still load.
func (l *Loader) Load() (LoadResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	files, err := l.files()
	if err != nil {
		return LoadResult{}, err
	}

	var (
		result LoadResult
		errs   []error
		seen   = make(map[string]bool, len(files))
	)
	for _, path := range files {
		seen[path] = true
		defs, err := ParseFile(path)
		if err != nil {
			l.logger.Error("schema file rejected", "path", path, "error", err)
			errs = append(errs, err)
			result.Grids += l.sources[path]
			continue
		}

		removed := core.ReplaceSource(path, defs)
		result.Removed = append(result.Removed, removed...)
		l.sources[path] = len(defs)
		result.Files++
		result.Grids += len(defs)
		l.logger.Debug("schema file loaded", "path", path, "grids", len(defs))
	}

	for source := range l.sources {
		if seen[source] {
			continue
		}
		removed := core.ReplaceSource(source, nil)
		result.Removed = append(result.Removed, removed...)
		delete(l.sources, source)
		l.logger.Info("schema file removed", "path", source, "grids", len(removed))
	}

	sort.Strings(result.Removed)
	return result, errors.Join(errs...)
}

// files lists schema files under the directory, skipping hidden entries.
func (l *Loader) files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(l.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != l.dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && hasExtension(path, l.exts) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan schema dir %s: %w", l.dir, err)
	}
	sort.Strings(files)
	return files, nil
}
