package schema

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/JonMunkholm/gridcheck/internal/core"
)

// Issue is a rule problem the engine would silently tolerate.
type Issue struct {
	Grid    string `json:"grid"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.Column == "" {
		return i.Grid + ": " + i.Message
	}
	return i.Grid + "." + i.Column + ": " + i.Message
}

// Lint reports rule configuration that the engine would skip without a
// message, such as undeclared column references or broken patterns.
func Lint(grids []*core.GridDefinition) []Issue {
	var issues []Issue
	for _, g := range grids {
		issues = append(issues, lintGrid(g)...)
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Grid != issues[j].Grid {
			return issues[i].Grid < issues[j].Grid
		}
		return issues[i].Column < issues[j].Column
	})
	return issues
}

func lintGrid(g *core.GridDefinition) []Issue {
	var issues []Issue
	add := func(col, format string, args ...any) {
		issues = append(issues, Issue{Grid: g.Key, Column: col, Message: fmt.Sprintf(format, args...)})
	}
	declared := func(key string) bool {
		_, ok := g.Column(key)
		return ok
	}

	for _, key := range g.IgnoredColumns {
		if !declared(key) {
			add("", "ignored column %q is not declared", key)
		}
	}

	for _, col := range g.Columns {
		if req, ok := col.Required.(core.RequiredConditional); ok {
			for _, sibling := range req.OnlyIfEmpty {
				if !declared(sibling) {
					add(col.Key, "onlyIfEmpty references undeclared column %q", sibling)
				}
			}
			if len(req.OnlyIfEmpty) == 0 && req.ErrorMessage == "" {
				add(col.Key, "conditional required rule without onlyIfEmpty or errorMessage never reports")
			}
		}

		v := col.Validations
		if v == nil {
			continue
		}
		for _, r := range v.RegexRules {
			if _, err := regexp.Compile(r.Pattern); err != nil {
				add(col.Key, "regex %q does not compile: %v", r.Pattern, err)
			}
		}
		if b := v.NumberBoundaries; b != nil {
			if col.DataType != core.TypeNumber {
				add(col.Key, "number boundaries on a %s column", col.DataType)
			}
			if b.Min != nil && b.Max != nil && *b.Min > *b.Max {
				add(col.Key, "min %v is greater than max %v", *b.Min, *b.Max)
			}
		}
		for _, dep := range v.ColumnDependent {
			if !declared(dep.DependentColumnKey) {
				add(col.Key, "dependency references undeclared column %q", dep.DependentColumnKey)
			}
			if dep.DependentColumnKey == col.Key {
				add(col.Key, "column depends on itself")
			}
			if dep.SkipIf != nil {
				for _, key := range dep.SkipIf.ColumnKeys {
					if !declared(key) {
						add(col.Key, "skipIf references undeclared column %q", key)
					}
				}
			}
		}
		if v.StringExclusion != nil && v.StringExclusion.Message == "" {
			add(col.Key, "string exclusion without a message")
		}
	}
	return issues
}
