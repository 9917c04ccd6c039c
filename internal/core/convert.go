package core

// convert.go turns raw grid text into typed cell values.
//
// These functions handle the messy reality of typed and pasted data:
//   - Thousands separators and currency symbols in numbers
//   - Multiple date formats (US, EU, ISO, RFC 3339, epoch milliseconds)
//   - Various boolean representations (yes/no, true/false, y/n, 1/0)
//   - Excel formula prefixes (="value") in CSV imports
//
// Empty or whitespace-only input always coerces to nil. Invalid numbers and
// booleans are kept as text and invalid dates as InvalidDate so the validator can report
// them instead of silently dropping the value.

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// NumberPrecision is the number of decimal places numbers are rounded to.
const NumberPrecision = 4

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05",
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"Jan 2, 2006", "2 Jan 2006", "January 2, 2006",
		"20060102",
	}
)

// InvalidDate marks date text that could not be parsed. It is carried in
// the row so the validator can report a type error for the cell.
type InvalidDate struct {
	Raw string
}

func (d InvalidDate) String() string { return d.Raw }

// Coerce converts text typed into a single cell into a value of dataType.
func Coerce(dataType DataType, raw string) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	switch dataType {
	case TypeNumber:
		if f, ok := ParseNumber(raw); ok {
			return RoundTo(f, NumberPrecision)
		}
		return raw
	case TypeBoolean:
		if b, ok := ParseBool(raw); ok {
			return b
		}
		return raw
	case TypeDate:
		if t, ok := ParseDate(raw); ok {
			return t
		}
		return InvalidDate{Raw: raw}
	}
	return raw
}

// ParseNumber parses numeric text after removing thousands separators and
// currency symbols. Accounting negatives "(12.5)" are accepted.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	// pgtype.Numeric does not accept exponents
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}

	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		return 0, false
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return 0, false
	}
	return f.Float64, true
}

// ParseDate parses date text in any of the supported layouts.
// Handles 2-digit years with the pivot rule.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t, true
		}
	}

	return time.Time{}, false
}

// ParseBool accepts true/false, yes/no, t/f, y/n and 1/0 in any case.
func ParseBool(s string) (bool, bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}

// RoundTo rounds f to the given number of decimal places.
func RoundTo(f float64, places int) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	p := math.Pow10(places)
	return math.Round(f*p) / p
}

// Clamp restricts f into the inclusive range of b. Nil bounds are open.
func Clamp(f float64, b *NumberBoundaries) float64 {
	if b == nil || math.IsNaN(f) {
		return f
	}
	if b.Min != nil && f < *b.Min {
		return *b.Min
	}
	if b.Max != nil && f > *b.Max {
		return *b.Max
	}
	return f
}

// DefaultFor returns the value a freshly added row gets for dataType.
func DefaultFor(dataType DataType) any {
	switch dataType {
	case TypeBoolean:
		return false
	case TypeDate:
		return time.Now()
	default:
		return nil
	}
}

// NewRow materializes an Insert row with each column's default value.
func NewRow(grid *GridDefinition) Row {
	values := make(map[string]any, len(grid.Columns))
	for _, col := range grid.Columns {
		if col.DefaultValueOnNewRow != nil {
			values[col.Key] = col.DefaultValueOnNewRow
		} else {
			values[col.Key] = DefaultFor(col.DataType)
		}
	}
	return Row{Op: Insert, Values: values}
}

// FormatValue renders a cell value as text. Nil renders as "".
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case InvalidDate:
		return val.Raw
	default:
		return fmt.Sprint(val)
	}
}

// toFloat converts a cell value to a number.
func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, !math.IsNaN(val)
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		return ParseNumber(val)
	default:
		return 0, false
	}
}

// toTime converts a cell value to an instant. Numbers are epoch milliseconds.
func toTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case string:
		return ParseDate(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return time.Time{}, false
		}
		return time.UnixMilli(int64(val)).UTC(), true
	case int64:
		return time.UnixMilli(val).UTC(), true
	case int:
		return time.UnixMilli(int64(val)).UTC(), true
	default:
		return time.Time{}, false
	}
}

// isEmpty reports whether a cell holds no data: nil or a zero-length string.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return len(s) == 0
	}
	return false
}

// HeaderIndex maps column names (lowercase) to their position in a CSV row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a CSV header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		idx[key] = i
	}
	return idx
}

// CleanCell removes common CSV artifacts from a cell value:
// surrounding whitespace, the Excel formula prefix (="...") and quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
