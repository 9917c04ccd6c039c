package core

import (
	"math"
	"testing"
	"time"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   float64
		wantOK bool
	}{
		{"positive integer", "123", 123, true},
		{"zero", "0", 0, true},
		{"negative integer", "-456", -456, true},
		{"decimal number", "123.45", 123.45, true},
		{"leading decimal point", ".99", 0.99, true},
		{"trailing decimal point", "99.", 99, true},
		{"thousands separators", "1,234,567.89", 1234567.89, true},
		{"dollar sign", "$1,234.56", 1234.56, true},
		{"euro sign", "€1234.56", 1234.56, true},
		{"accounting negative", "(123.45)", -123.45, true},
		{"scientific notation", "1.5e3", 1500, true},
		{"whitespace", "  999.99  ", 999.99, true},
		{"empty", "", 0, false},
		{"letters", "abc", 0, false},
		{"mixed", "12abc", 0, false},
		{"NaN literal", "NaN", 0, false},
		{"multiple dots", "1.2.3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseNumber(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseNumber(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{"ISO", "2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"US slashes", "1/15/2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"month name", "Jan 15, 2024", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"RFC 3339", "2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC), true},
		{"two digit year", "1/15/24", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"two digit year past century", "1/15/99", time.Date(1999, 1, 15, 0, 0, 0, 0, time.UTC), true},
		{"invalid", "not a date", time.Time{}, false},
		{"impossible day", "2024-02-31", time.Time{}, false},
		{"empty", "  ", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		input  string
		want   bool
		wantOK bool
	}{
		{"true", true, true},
		{"TRUE", true, true},
		{"yes", true, true},
		{"Y", true, true},
		{"1", true, true},
		{"false", false, true},
		{"No", false, true},
		{"0", false, true},
		{"maybe", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		got, ok := ParseBool(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseBool(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name     string
		dataType DataType
		raw      string
		want     any
	}{
		{"blank number is nil", TypeNumber, "   ", nil},
		{"blank string is nil", TypeString, "", nil},
		{"blank date is nil", TypeDate, "\t", nil},
		{"number rounds to four places", TypeNumber, "1,234.567891", 1234.5679},
		{"invalid number stays text", TypeNumber, "abc", "abc"},
		{"string unchanged", TypeString, " hello ", " hello "},
		{"boolean parsed", TypeBoolean, "yes", true},
		{"unknown boolean stays text", TypeBoolean, "perhaps", "perhaps"},
		{"invalid date marked", TypeDate, "31/31/2024", InvalidDate{Raw: "31/31/2024"}},
		{"valid date", TypeDate, "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Coerce(tt.dataType, tt.raw)
			if gt, ok := got.(time.Time); ok {
				if !gt.Equal(tt.want.(time.Time)) {
					t.Errorf("Coerce(%s, %q) = %v, want %v", tt.dataType, tt.raw, got, tt.want)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Coerce(%s, %q) = %#v, want %#v", tt.dataType, tt.raw, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	b := &NumberBoundaries{Min: ptr(0.0), Max: ptr(100.0)}

	tests := []struct {
		in   float64
		want float64
	}{
		{150, 100},
		{-10, 0},
		{42, 42},
		{0, 0},
		{100, 100},
	}

	for _, tt := range tests {
		once := Clamp(tt.in, b)
		if once != tt.want {
			t.Errorf("Clamp(%v) = %v, want %v", tt.in, once, tt.want)
		}
		if twice := Clamp(once, b); twice != once {
			t.Errorf("Clamp not idempotent for %v: %v then %v", tt.in, once, twice)
		}
	}

	if got := Clamp(7, &NumberBoundaries{Max: ptr(5.0)}); got != 5 {
		t.Errorf("Clamp with only max = %v, want 5", got)
	}
	if got := Clamp(7, nil); got != 7 {
		t.Errorf("Clamp with nil boundaries = %v, want 7", got)
	}
}

func TestRoundTo(t *testing.T) {
	if got := RoundTo(1.23456789, 4); got != 1.2346 {
		t.Errorf("RoundTo = %v, want 1.2346", got)
	}
	if got := RoundTo(-7.25, 1); got != -7.3 {
		t.Errorf("RoundTo = %v, want -7.3", got)
	}
	if got := RoundTo(math.NaN(), 4); !math.IsNaN(got) {
		t.Errorf("RoundTo(NaN) = %v, want NaN", got)
	}
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{12.5, "12.5"},
		{100.0, "100"},
		{true, "true"},
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05Z"},
		{InvalidDate{Raw: "bad"}, "bad"},
	}

	for _, tt := range tests {
		if got := FormatValue(tt.in); got != tt.want {
			t.Errorf("FormatValue(%#v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultForAndNewRow(t *testing.T) {
	if got := DefaultFor(TypeBoolean); got != false {
		t.Errorf("DefaultFor(boolean) = %v, want false", got)
	}
	if got := DefaultFor(TypeNumber); got != nil {
		t.Errorf("DefaultFor(number) = %v, want nil", got)
	}
	if _, ok := DefaultFor(TypeDate).(time.Time); !ok {
		t.Errorf("DefaultFor(date) should be a time.Time")
	}

	grid := customerGrid()
	grid.Columns[1].DefaultValueOnNewRow = "unnamed"
	r := NewRow(grid)
	if r.Op != Insert {
		t.Errorf("NewRow op = %v, want insert", r.Op)
	}
	if r.Values["name"] != "unnamed" {
		t.Errorf("NewRow name = %v, want configured default", r.Values["name"])
	}
	if r.Values["active"] != false {
		t.Errorf("NewRow active = %v, want false", r.Values["active"])
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  hello  ", "hello"},
		{`="00123"`, "00123"},
		{"=SUM", "SUM"},
		{`"quoted"`, "quoted"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanCell(tt.input); got != tt.want {
			t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMakeHeaderIndex(t *testing.T) {
	idx := MakeHeaderIndex([]string{" ID ", "Name", `="Email"`})

	for name, want := range map[string]int{"id": 0, "name": 1, "email": 2} {
		if got, ok := idx[name]; !ok || got != want {
			t.Errorf("idx[%q] = %d (%v), want %d", name, got, ok, want)
		}
	}
}
