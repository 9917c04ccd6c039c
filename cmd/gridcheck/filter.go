package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/gridcheck/internal/core"

	"github.com/spf13/cobra"
)

type filterFlags struct {
	grid       string
	where      []string
	in         []string
	ignoreCase bool
}

func newFilterCmd(a *app) *cobra.Command {
	var flags filterFlags

	cmd := &cobra.Command{
		Use:   "filter [file.csv]",
		Short: "Print the CSV rows matching filters",
		Long: `Filter evaluates predicate filters and checkbox-style column filters over
the rows of a CSV file and prints the matching rows as CSV.

A --where filter is column:operator:value, for example age:greaterThan:30
or name:startsWith:A. All --where filters must hold for a row to match.

An --in filter is column=value1,value2 and keeps rows whose cell text is
one of the listed values.

Examples:
  gridcheck filter --grid ns_customers --where days_overdue:greaterThan:30 customers.csv
  gridcheck filter --grid anrok_transactions --in customer_address_region=CA,NY tx.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runFilter(cmd, flags, args)
		},
	}

	cmd.Flags().StringVarP(&flags.grid, "grid", "g", "", "grid key")
	cmd.Flags().StringArrayVarP(&flags.where, "where", "w", nil, "predicate filter column:operator:value (repeatable)")
	cmd.Flags().StringArrayVar(&flags.in, "in", nil, "column filter column=v1,v2 (repeatable)")
	cmd.Flags().BoolVarP(&flags.ignoreCase, "ignore-case", "i", false, "compare strings case-insensitively")
	return cmd
}

// parseWhere parses column:operator:value. The value may contain colons.
func parseWhere(s string, ignoreCase bool) (core.FilterSpec, error) {
	parts := strings.SplitN(s, ":", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return core.FilterSpec{}, fmt.Errorf("invalid --where %q (want column:operator:value)", s)
	}
	return core.FilterSpec{
		Column:     parts[0],
		Operator:   core.Operator(parts[1]),
		Value:      parts[2],
		IgnoreCase: ignoreCase,
	}, nil
}

// parseIn parses column=v1,v2.
func parseIn(s string) (core.ColumnFilter, error) {
	column, values, ok := strings.Cut(s, "=")
	if !ok || column == "" {
		return core.ColumnFilter{}, fmt.Errorf("invalid --in %q (want column=v1,v2)", s)
	}
	var checked []string
	if values != "" {
		checked = strings.Split(values, ",")
	}
	return core.NewColumnFilter(column, checked...), nil
}

func (a *app) runFilter(cmd *cobra.Command, flags filterFlags, args []string) error {
	grid, err := a.grid(flags.grid)
	if err != nil {
		return err
	}

	var filters []core.FilterSpec
	for _, w := range flags.where {
		f, err := parseWhere(w, flags.ignoreCase)
		if err != nil {
			return err
		}
		if _, ok := grid.Column(f.Column); !ok {
			return a.userError(fmt.Errorf("%w: %s.%s", core.ErrColumnNotFound, grid.Key, f.Column))
		}
		filters = append(filters, f)
	}

	var columnFilters []core.ColumnFilter
	for _, in := range flags.in {
		f, err := parseIn(in)
		if err != nil {
			return err
		}
		columnFilters = append(columnFilters, f)
	}

	_, rows, err := readCSVInput(cmd, grid, args)
	if err != nil {
		return a.userError(err)
	}

	res, err := a.service.Filter(grid.Key, rows, filters, columnFilters)
	if err != nil {
		return a.userError(err)
	}
	a.logger.Debug("filter evaluated", "grid", grid.Key, "rows", len(rows), "matched", res.Matched)

	var matched []core.Row
	for i, in := range res.Included {
		if in {
			matched = append(matched, rows[i])
		}
	}

	out := cmd.OutOrStdout()
	if a.flags.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"grid":    grid.Key,
			"matched": res.Matched,
			"rows":    matched,
		})
	}
	return writeRowsCSV(out, grid, matched)
}

// writeRowsCSV writes rows as CSV with a header of column keys.
func writeRowsCSV(w io.Writer, grid *core.GridDefinition, rows []core.Row) error {
	cw := csv.NewWriter(w)
	header := make([]string, len(grid.Columns))
	for i, col := range grid.Columns {
		header[i] = col.Key
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(grid.Columns))
	for _, row := range rows {
		for i, col := range grid.Columns {
			record[i] = core.FormatValue(row.Values[col.Key])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
