package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/JonMunkholm/gridcheck/internal/schema"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newGridsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grids",
		Short: "List registered grids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGridsList(cmd)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <grid>",
		Short: "Print a grid definition as a schema document",
		Long: `Show prints one grid in schema form. The default output is YAML that
can be saved to the schema directory and edited; --format json prints the
JSON form accepted by the inline validation endpoint.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGridsShow(cmd, args[0])
		},
	})
	return cmd
}

func (a *app) runGridsList(cmd *cobra.Command) error {
	grids := a.service.Grids()
	out := cmd.OutOrStdout()

	if a.flags.format == "json" {
		docs := make([]schema.Grid, 0, len(grids))
		for _, g := range grids {
			docs = append(docs, schema.FromGrid(g))
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tCOLUMNS\tIDENTIFIER")
	for _, g := range grids {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", g.Key, g.Label, len(g.Columns), g.IdentifierColumn)
	}
	return tw.Flush()
}

func (a *app) runGridsShow(cmd *cobra.Command, key string) error {
	grid, err := a.grid(key)
	if err != nil {
		return err
	}
	doc := schema.Document{Grids: []schema.Grid{schema.FromGrid(grid)}}
	out := cmd.OutOrStdout()

	if a.flags.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc.Grids[0])
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
