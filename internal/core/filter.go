package core

import (
	"github.com/hashicorp/go-set/v2"
)

// FilterSpec is one predicate of the generic filter list.
type FilterSpec struct {
	Column     string   `json:"column"`
	Operator   Operator `json:"operator"`
	Value      any      `json:"value"`
	IgnoreCase bool     `json:"ignoreCase,omitempty"`
}

// ColumnFilter is a checkbox-style filter: when applied, a row survives
// only if its cell text is one of CheckedValues.
type ColumnFilter struct {
	Column        string
	IsApplied     bool
	CheckedValues *set.Set[string]
}

// NewColumnFilter builds an applied column filter over the checked values.
func NewColumnFilter(column string, checked ...string) ColumnFilter {
	return ColumnFilter{
		Column:        column,
		IsApplied:     true,
		CheckedValues: set.From(checked),
	}
}

// ApplyFilters returns one inclusion flag per row. A row is included when
// every filter holds for it; an empty filter list includes all rows.
// Filters on columns the grid does not declare never hold.
func ApplyFilters(grid *GridDefinition, rows []Row, filters []FilterSpec) []bool {
	included := make([]bool, len(rows))
	for i, row := range rows {
		included[i] = rowMatches(grid, row, filters)
	}
	return included
}

func rowMatches(grid *GridDefinition, row Row, filters []FilterSpec) bool {
	for _, f := range filters {
		col, ok := grid.Column(f.Column)
		if !ok {
			return false
		}
		if !Evaluate(col.DataType, row.Values[f.Column], f.Value, f.Operator, CaseInsensitive(f.IgnoreCase)) {
			return false
		}
	}
	return true
}

// ApplyColumnFilters returns one inclusion flag per row. Filters that are
// not applied impose no constraint.
func ApplyColumnFilters(rows []Row, filters []ColumnFilter) []bool {
	included := make([]bool, len(rows))
	for i, row := range rows {
		included[i] = true
		for _, f := range filters {
			if !f.IsApplied {
				continue
			}
			if f.CheckedValues == nil || !f.CheckedValues.Contains(FormatValue(row.Values[f.Column])) {
				included[i] = false
				break
			}
		}
	}
	return included
}

// CombineInclusion ANDs inclusion flag slices of equal length.
func CombineInclusion(flags ...[]bool) []bool {
	if len(flags) == 0 {
		return nil
	}
	out := make([]bool, len(flags[0]))
	for i := range out {
		out[i] = true
		for _, f := range flags {
			if i >= len(f) || !f[i] {
				out[i] = false
				break
			}
		}
	}
	return out
}

// FilterSupported reports whether columns of dataType can be filtered.
func FilterSupported(dataType DataType, includeBoolean bool) bool {
	switch dataType {
	case TypeNumber, TypeString:
		return true
	case TypeBoolean:
		return includeBoolean
	default:
		return false
	}
}

// CellRule is a conditional style rule attached to a column.
type CellRule struct {
	Operator Operator `json:"operator" yaml:"operator"`
	Value    any      `json:"value" yaml:"value"`
}

// EvaluateCellRule reports whether a cell satisfies a style rule.
// Only number, string and date cells are evaluated; a nil rule never holds.
func EvaluateCellRule(dataType DataType, cell any, rule *CellRule) bool {
	if rule == nil {
		return false
	}
	switch dataType {
	case TypeNumber, TypeString, TypeDate:
		return Evaluate(dataType, cell, rule.Value, rule.Operator)
	default:
		return false
	}
}
