package main

import (
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/gridcheck/internal/core"
	"github.com/JonMunkholm/gridcheck/internal/schema"

	"github.com/spf13/cobra"
)

func newLintCmd(a *app) *cobra.Command {
	var grids []string

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check grid definitions for broken rules",
		Long: `Lint checks registered grids for configuration mistakes the engine
silently tolerates at run time:
  - references to undeclared columns (ignored, onlyIfEmpty, dependencies, skipIf)
  - regex patterns that do not compile
  - number boundaries on non-number columns or with min > max
  - conditional requirements and exclusions without a message

The command exits non-zero when any issue is found.

Examples:
  gridcheck --schema ./grids lint
  gridcheck lint --grid ns_invoice_detail --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLint(cmd, grids)
		},
	}

	cmd.Flags().StringSliceVarP(&grids, "grid", "g", nil, "grid keys to lint (default: all)")
	return cmd
}

func (a *app) runLint(cmd *cobra.Command, keys []string) error {
	var defs []*core.GridDefinition
	if len(keys) == 0 {
		defs = a.service.Grids()
	}
	for _, key := range keys {
		def, err := a.grid(key)
		if err != nil {
			return err
		}
		defs = append(defs, def)
	}

	issues := schema.Lint(defs)

	out := cmd.OutOrStdout()
	if a.flags.format == "json" {
		if issues == nil {
			issues = []schema.Issue{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(issues); err != nil {
			return err
		}
	} else {
		for _, issue := range issues {
			fmt.Fprintln(out, issue.String())
		}
		fmt.Fprintf(out, "%d grid(s) checked, %d issue(s)\n", len(defs), len(issues))
	}

	if len(issues) > 0 {
		return errFailed
	}
	return nil
}
