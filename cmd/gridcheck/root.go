package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/gridcheck/internal/core"
	_ "github.com/JonMunkholm/gridcheck/internal/core/tables" // Register built-in grids
	"github.com/JonMunkholm/gridcheck/internal/logging"
	"github.com/JonMunkholm/gridcheck/internal/schema"

	"github.com/spf13/cobra"
)

// errFailed makes the process exit non-zero after a report was printed.
var errFailed = errors.New("check failed")

// globalFlags are shared by every subcommand.
type globalFlags struct {
	schemaPath string
	logLevel   string
	logFormat  string
	format     string
}

// app is the state of one invocation.
type app struct {
	flags   globalFlags
	logger  *slog.Logger
	service *core.Service
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		var userErr *core.UserError
		switch {
		case errors.Is(err, errFailed):
		case errors.As(err, &userErr):
			fmt.Fprintln(os.Stderr, core.FormatUserError(userErr.Technical))
		default:
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "gridcheck",
		Short: "Validate and filter grid data offline",
		Long: `Gridcheck runs the grid validation engine against CSV files and
clipboard text.

Grids come from the built-in definitions and from YAML or JSON schema
files passed with --schema (a file or a directory). Schema grids replace
built-in grids with the same key.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}

	root.PersistentFlags().StringVarP(&a.flags.schemaPath, "schema", "s", "", "schema file or directory to load")
	root.PersistentFlags().StringVar(&a.flags.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&a.flags.logFormat, "log-format", "text", "log format: text, json")
	root.PersistentFlags().StringVarP(&a.flags.format, "format", "o", "text", "output format: text, json")

	root.AddCommand(
		newValidateCmd(a),
		newFilterCmd(a),
		newPasteCmd(a),
		newLintCmd(a),
		newGridsCmd(a),
		newVersionCmd(),
	)
	return root
}

// setup configures logging, loads schemas and creates the service.
// Logs go to stderr so reports on stdout stay machine readable.
func (a *app) setup() error {
	if a.flags.format != "text" && a.flags.format != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", a.flags.format)
	}

	a.logger = logging.New(os.Stderr, a.flags.logLevel, a.flags.logFormat)
	slog.SetDefault(a.logger)

	if a.flags.schemaPath != "" {
		if err := a.loadSchemas(a.flags.schemaPath); err != nil {
			return a.userError(err)
		}
	}

	a.service = core.NewService(core.ServiceOptions{MaxConcurrent: 1})
	return nil
}

func (a *app) loadSchemas(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("schema path: %w", err)
	}

	if info.IsDir() {
		res, err := schema.NewLoader(path, nil, a.logger).Load()
		if err != nil {
			return err
		}
		a.logger.Info("schemas loaded", "files", res.Files, "grids", res.Grids)
		return nil
	}

	defs, err := schema.ParseFile(path)
	if err != nil {
		return err
	}
	abs, _ := filepath.Abs(path)
	core.ReplaceSource(abs, defs)
	a.logger.Info("schema loaded", "file", path, "grids", len(defs))
	return nil
}

// grid resolves the --grid flag.
func (a *app) grid(key string) (*core.GridDefinition, error) {
	if key == "" {
		return nil, errors.New("--grid is required (see 'gridcheck grids')")
	}
	def, err := a.service.Grid(key)
	if err != nil {
		return nil, a.userError(err)
	}
	return def, nil
}

// userError wraps known engine errors so Execute prints their support
// message. The technical error is kept for errors.Is and debug logs.
func (a *app) userError(err error) error {
	if !core.IsUserFacing(err) {
		return err
	}
	a.logger.Debug("command failed", "error", err)
	return core.NewUserError(err)
}
