package core

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"

	"github.com/hashicorp/go-set/v2"
)

// DuplicateGroup is a set of rows sharing one canonical key.
// IDs holds identifier values, or 1-based row positions when the grid has
// no identifier column, sorted ascending.
type DuplicateGroup struct {
	Key  string
	IDs  []string
	Rows []int
}

// ComparableColumns returns the columns that take part in duplicate
// detection: declared in the grid, present in the reference row shape, and
// not the identifier, custom operation or an ignored column.
func ComparableColumns(grid *GridDefinition, reference Row) []string {
	excluded := set.From(grid.IgnoredColumns)
	if grid.IdentifierColumn != "" {
		excluded.Insert(grid.IdentifierColumn)
	}
	if grid.CustomOperation != nil && grid.CustomOperation.ColumnKey != "" {
		excluded.Insert(grid.CustomOperation.ColumnKey)
	}

	cols := make([]string, 0, len(grid.Columns))
	for _, col := range grid.Columns {
		if excluded.Contains(col.Key) {
			continue
		}
		if _, ok := reference.Values[col.Key]; !ok {
			continue
		}
		cols = append(cols, col.Key)
	}
	return cols
}

// CanonicalKey serializes the given columns of row deterministically.
// Values are rendered as text with nil as "" and folded to lower case; the
// (column, value) pairs are sorted by column before encoding.
func CanonicalKey(row Row, columns []string) string {
	pairs := make([][2]string, 0, len(columns))
	for _, key := range columns {
		pairs = append(pairs, [2]string{key, strings.ToLower(FormatValue(row.Values[key]))})
	}
	slices.SortFunc(pairs, func(a, b [2]string) int {
		if c := strings.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return strings.Compare(a[1], b[1])
	})

	b, err := json.Marshal(pairs)
	if err != nil {
		// [][2]string always encodes
		return ""
	}
	return string(b)
}

// DuplicateGroups groups rows by canonical key and returns every group with
// more than one member, in order of first appearance.
func DuplicateGroups(grid *GridDefinition, rows []Row) []DuplicateGroup {
	if len(rows) == 0 {
		return nil
	}

	columns := ComparableColumns(grid, rows[0])
	if len(columns) == 0 {
		return nil
	}

	seen := make(map[string]int, len(rows))
	var groups []DuplicateGroup
	for i, row := range rows {
		key := CanonicalKey(row, columns)
		idx, ok := seen[key]
		if !ok {
			idx = len(groups)
			seen[key] = idx
			groups = append(groups, DuplicateGroup{Key: key})
		}
		groups[idx].Rows = append(groups[idx].Rows, i)
		groups[idx].IDs = append(groups[idx].IDs, rowID(grid, row, i))
	}

	out := groups[:0]
	for _, g := range groups {
		if len(g.Rows) < 2 {
			continue
		}
		sortIDs(g.IDs)
		out = append(out, g)
	}
	return out
}

// FindDuplicates reports one dup<N> message per duplicate group.
func FindDuplicates(grid *GridDefinition, rows []Row) ResultMap {
	result := make(ResultMap)
	for n, g := range DuplicateGroups(grid, rows) {
		ids := strings.Join(g.IDs, ", ")
		if grid.IdentifierColumn != "" {
			result.put(dupKey(n), "Rows Located At IDs: "+ids+" are duplicated")
		} else {
			result.put(dupKey(n), "Rows Located At Indexes: "+ids+" are duplicated")
		}
	}
	return result
}

// rowID returns the identifier value of row, or its 1-based position.
func rowID(grid *GridDefinition, row Row, i int) string {
	if grid.IdentifierColumn != "" {
		return FormatValue(row.Values[grid.IdentifierColumn])
	}
	return strconv.Itoa(i + 1)
}

// sortIDs sorts numerically when every id is a number, otherwise as text.
func sortIDs(ids []string) {
	nums := make(map[string]float64, len(ids))
	for _, id := range ids {
		f, err := strconv.ParseFloat(id, 64)
		if err != nil {
			slices.Sort(ids)
			return
		}
		nums[id] = f
	}
	slices.SortStableFunc(ids, func(a, b string) int {
		switch {
		case nums[a] < nums[b]:
			return -1
		case nums[a] > nums[b]:
			return 1
		default:
			return 0
		}
	})
}
