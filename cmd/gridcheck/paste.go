package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

type pasteFlags struct {
	grid             string
	start            string
	allowNonEditable bool
}

func newPasteCmd(a *app) *cobra.Command {
	var flags pasteFlags

	cmd := &cobra.Command{
		Use:   "paste [file]",
		Short: "Parse clipboard text into grid rows",
		Long: `Paste converts tab-separated clipboard text into rows of a grid, the way
a spreadsheet paste into the grid would. Cells are placed into columns in
order starting at --start and coerced by column type; numbers are rounded
and clamped, and option columns are matched against their options.

Text is read from the file argument or stdin. The default output is the
pasted rows as CSV; --format json prints them as JSON.

Examples:
  pbpaste | gridcheck paste --grid ns_customers --start customer_name
  gridcheck paste --grid anrok_transactions --format json clip.tsv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPaste(cmd, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.grid, "grid", "g", "", "grid key")
	cmd.Flags().StringVar(&flags.start, "start", "", "column key of the first pasted cell")
	cmd.Flags().BoolVar(&flags.allowNonEditable, "allow-non-editable", false, "paste into non-editable columns")
	return cmd
}

func (a *app) runPaste(cmd *cobra.Command, flags pasteFlags, args []string) error {
	grid, err := a.grid(flags.grid)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	text, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read paste input: %w", err)
	}

	rows, err := a.service.PasteRows(grid.Key, string(text), flags.start, flags.allowNonEditable)
	if err != nil {
		return a.userError(err)
	}

	out := cmd.OutOrStdout()
	if a.flags.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	return writeRowsCSV(out, grid, rows)
}
