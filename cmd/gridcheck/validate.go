package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/JonMunkholm/gridcheck/internal/core"

	"github.com/spf13/cobra"
)

type validateFlags struct {
	grid string
}

func newValidateCmd(a *app) *cobra.Command {
	var flags validateFlags

	cmd := &cobra.Command{
		Use:   "validate [file.csv]",
		Short: "Validate CSV rows against a grid",
		Long: `Validate runs duplicate detection and every column rule of a grid over
the rows of a CSV file. Every CSV row is treated as a newly inserted row.

Header cells are matched against column keys and display names. With no
file, or "-", the CSV is read from stdin.

The command exits non-zero when any error message is reported.

Examples:
  gridcheck validate --grid ns_customers customers.csv
  gridcheck validate --grid sfdc_customers --format json < accounts.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(cmd, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.grid, "grid", "g", "", "grid key")
	return cmd
}

// validateReport is the JSON output of validate.
type validateReport struct {
	Grid     string                   `json:"grid"`
	File     string                   `json:"file"`
	Rows     int                      `json:"rows"`
	IsError  bool                     `json:"isError"`
	Messages []core.ValidationMessage `json:"messages"`
}

func (a *app) runValidate(cmd *cobra.Command, flags validateFlags, args []string) error {
	grid, err := a.grid(flags.grid)
	if err != nil {
		return err
	}

	name, rows, err := readCSVInput(cmd, grid, args)
	if err != nil {
		return a.userError(err)
	}

	res, err := a.service.Validate(cmd.Context(), grid.Key, rows, true)
	if err != nil {
		return a.userError(err)
	}
	a.logger.Debug("validation finished", "grid", grid.Key, "run_id", res.RunID.String(), "rows", len(rows))

	report := validateReport{
		Grid:     grid.Key,
		File:     name,
		Rows:     len(rows),
		IsError:  res.IsError,
		Messages: res.Messages.Sorted(),
	}

	out := cmd.OutOrStdout()
	if a.flags.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printValidateText(out, report)
	}

	if report.IsError {
		return errFailed
	}
	return nil
}

func printValidateText(w io.Writer, r validateReport) {
	if len(r.Messages) == 0 {
		fmt.Fprintf(w, "%s: %d rows, no problems found\n", r.File, r.Rows)
		return
	}
	fmt.Fprintf(w, "%s: %d rows, %d problem(s) in grid %s\n", r.File, r.Rows, len(r.Messages), r.Grid)
	for _, msg := range r.Messages {
		fmt.Fprintf(w, "  %-12s %s\n", msg.Key, msg.Text)
	}
}

// readCSVInput reads the CSV named by args[0], or stdin.
func readCSVInput(cmd *cobra.Command, grid *core.GridDefinition, args []string) (string, []core.Row, error) {
	if len(args) == 0 || args[0] == "-" {
		rows, err := core.ReadCSV(cmd.InOrStdin(), grid)
		return "stdin", rows, err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return args[0], nil, err
	}
	defer f.Close()

	rows, err := core.ReadCSV(f, grid)
	return args[0], rows, err
}
