package core

// paste.go handles bulk clipboard paste into a grid.
//
// Clipboard text from spreadsheets is tab-separated with CRLF or LF line
// endings and usually a trailing newline. Every cell goes through
// PasteCoerce, which differs from Coerce: numbers are clamped and fall back
// on NaN, booleans accept 1/0 and y/n, and non-editable cells never take
// the pasted value.

import (
	"strings"
	"unicode/utf8"
)

// FuzzyKeyMapper maps pasted text onto a column's option key, e.g. "calif"
// onto the "CA" key of a state picker. ok is false when nothing matches.
type FuzzyKeyMapper interface {
	MapKey(col ColumnConfig, text string) (value any, ok bool)
}

// MapperFunc adapts a function to FuzzyKeyMapper.
type MapperFunc func(col ColumnConfig, text string) (any, bool)

// MapKey implements FuzzyKeyMapper.
func (f MapperFunc) MapKey(col ColumnConfig, text string) (any, bool) {
	return f(col, text)
}

// OptionMapper matches text against a column's declared options by key or
// display text, ignoring case.
var OptionMapper = MapperFunc(func(col ColumnConfig, text string) (any, bool) {
	for _, opt := range col.Options {
		if strings.EqualFold(opt.Key, text) || strings.EqualFold(opt.Text, text) {
			return opt.Key, true
		}
	}
	return nil, false
})

// ChainMappers tries each mapper in order and returns the first match.
func ChainMappers(mappers ...FuzzyKeyMapper) FuzzyKeyMapper {
	return MapperFunc(func(col ColumnConfig, text string) (any, bool) {
		for _, m := range mappers {
			if m == nil {
				continue
			}
			if v, ok := m.MapKey(col, text); ok {
				return v, true
			}
		}
		return nil, false
	})
}

// PasteOptions controls paste coercion.
type PasteOptions struct {
	AllowNonEditable bool
	Mapper           FuzzyKeyMapper
}

// PasteCoerce converts pasted text for col.
//
// Non-editable columns return the column's new-row default unless
// AllowNonEditable is set.
func PasteCoerce(col ColumnConfig, raw string, opts PasteOptions) any {
	if !col.Editable && !opts.AllowNonEditable {
		return protectedDefault(col)
	}

	text := strings.TrimSpace(raw)
	switch strings.ToLower(text) {
	case "true":
		return true
	case "false":
		return false
	}

	switch col.DataType {
	case TypeNumber:
		f, ok := ParseNumber(text)
		if !ok {
			return nanFallback(col)
		}
		f = RoundTo(f, NumberPrecision)
		if col.Validations != nil {
			f = Clamp(f, col.Validations.NumberBoundaries)
		}
		return f
	case TypeBoolean:
		switch strings.ToLower(text) {
		case "1", "y":
			return true
		default:
			return false
		}
	}

	mapper := opts.Mapper
	if mapper == nil && len(col.Options) > 0 {
		mapper = OptionMapper
	}
	if mapper != nil && text != "" {
		if v, ok := mapper.MapKey(col, text); ok {
			return v
		}
	}
	if text != "" {
		return text
	}
	return nil
}

// protectedDefault is the value written into a cell that refuses paste.
func protectedDefault(col ColumnConfig) any {
	if col.DefaultValueOnNewRow != nil {
		return col.DefaultValueOnNewRow
	}
	switch col.DataType {
	case TypeBoolean:
		return false
	case TypeNumber:
		return nanFallback(col)
	case TypeString:
		return ""
	default:
		return nil
	}
}

func nanFallback(col ColumnConfig) any {
	if col.NaNFallback == nil {
		return nil
	}
	return *col.NaNFallback
}

// ParsePaste splits clipboard text into Insert rows. Cells are assigned to
// the grid's columns in order beginning at startCol; surplus cells are
// dropped and columns without a cell are left unset.
func ParsePaste(text string, grid *GridDefinition, startCol int, opts PasteOptions) []Row {
	if startCol < 0 {
		startCol = 0
	}
	if opts.Mapper == nil {
		opts.Mapper = grid.Mapper
	}

	text = sanitizeText(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}

	lines := strings.Split(text, "\n")
	rows := make([]Row, 0, len(lines))
	for _, line := range lines {
		cells := strings.Split(line, "\t")
		values := make(map[string]any, len(cells))
		for i, cell := range cells {
			idx := startCol + i
			if idx >= len(grid.Columns) {
				break
			}
			col := grid.Columns[idx]
			values[col.Key] = PasteCoerce(col, cell, opts)
		}
		rows = append(rows, Row{Op: Insert, Values: values})
	}
	return rows
}

// RowText renders a row as tab-separated text in column order.
func RowText(grid *GridDefinition, row Row) string {
	cells := make([]string, len(grid.Columns))
	for i, col := range grid.Columns {
		cells[i] = FormatValue(row.Values[col.Key])
	}
	return strings.Join(cells, "\t")
}

// RowsText renders rows the way a spreadsheet copy would: one line per row.
func RowsText(grid *GridDefinition, rows []Row) string {
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = RowText(grid, row)
	}
	return strings.Join(lines, "\n")
}

// sanitizeText strips a leading UTF-8 BOM and replaces invalid UTF-8
// sequences with U+FFFD.
func sanitizeText(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "\uFFFD")
}
