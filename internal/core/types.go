package core

import (
	"fmt"
	"strconv"
	"strings"
)

// DataType is the declared kind of a grid column.
type DataType string

const (
	TypeNumber  DataType = "number"
	TypeString  DataType = "string"
	TypeBoolean DataType = "boolean"
	TypeDate    DataType = "date"
)

// Valid reports whether dt is one of the four supported kinds.
func (dt DataType) Valid() bool {
	switch dt {
	case TypeNumber, TypeString, TypeBoolean, TypeDate:
		return true
	}
	return false
}

// OpKind is the pending change recorded on a row by the grid.
type OpKind int

const (
	OpNone OpKind = iota
	OpInsert
	OpUpdate
	OpDelete
	OpCustom
)

// Operation is the internal operation tag carried by every row.
// Custom is only meaningful when Kind == OpCustom.
type Operation struct {
	Kind   OpKind
	Custom int
}

var (
	None   = Operation{Kind: OpNone}
	Insert = Operation{Kind: OpInsert}
	Update = Operation{Kind: OpUpdate}
	Delete = Operation{Kind: OpDelete}
)

// CustomOp returns a caller-defined operation tag.
func CustomOp(n int) Operation {
	return Operation{Kind: OpCustom, Custom: n}
}

// String returns the text form used in JSON and YAML: none, insert,
// update, delete or custom:<n>.
func (o Operation) String() string {
	switch o.Kind {
	case OpInsert:
		return "insert"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpCustom:
		return "custom:" + strconv.Itoa(o.Custom)
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Operation) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Operation) UnmarshalText(b []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(b)))
	switch s {
	case "", "none":
		*o = None
	case "insert":
		*o = Insert
	case "update":
		*o = Update
	case "delete":
		*o = Delete
	default:
		n, ok := strings.CutPrefix(s, "custom:")
		if !ok {
			return fmt.Errorf("unknown row operation %q", s)
		}
		v, err := strconv.Atoi(n)
		if err != nil {
			return fmt.Errorf("invalid custom operation %q: %w", s, err)
		}
		*o = CustomOp(v)
	}
	return nil
}

// Row is one grid record: column key to cell value plus its operation tag.
// Cell values are nil, float64, string, bool, time.Time or InvalidDate.
type Row struct {
	Op     Operation      `json:"op"`
	Values map[string]any `json:"values"`
}

// Get returns the cell value for key and whether the key is present.
func (r Row) Get(key string) (any, bool) {
	v, ok := r.Values[key]
	return v, ok
}

// Required is the closed set of required-ness rules a column may carry.
// A nil Required means the column is optional.
type Required interface {
	isRequired()
}

// RequiredFlag is the boolean form: true means the cell may not be empty.
type RequiredFlag bool

// RequiredConditional is the object form of a required rule.
//
// Without OnlyIfEmpty the rule fires whenever the cell is empty and an
// ErrorMessage is configured. With OnlyIfEmpty the cell is required only
// while none of the listed sibling columns carry data, unless
// AlwaysRequired is set, in which case every empty sibling forces it.
type RequiredConditional struct {
	ErrorMessage   string
	OnlyIfEmpty    []string
	AlwaysRequired bool
}

func (RequiredFlag) isRequired()        {}
func (RequiredConditional) isRequired() {}

// RegexRule fails a cell whose text does not match Pattern.
type RegexRule struct {
	Pattern string
	Message string
}

// NumberBoundaries is an inclusive numeric range. A nil bound is unconstrained.
// Paste coercion always clamps into the range; ClampOnValidate additionally
// makes the validator report values outside it.
type NumberBoundaries struct {
	Min             *float64
	Max             *float64
	ClampOnValidate bool
}

// DependencyKind selects what a column dependency demands of the cell.
type DependencyKind string

const (
	MustBeEmpty  DependencyKind = "mustBeEmpty"
	MustHaveData DependencyKind = "mustHaveData"
)

// SkipCondition suppresses a dependency check when sibling columns carry data.
// With Partial set any populated sibling suppresses the check; otherwise all
// of them must be populated.
type SkipCondition struct {
	ColumnKeys []string
	Partial    bool
}

// DependencyRule ties a cell to the state of another column in the same row.
type DependencyRule struct {
	DependentColumnKey  string
	DependentColumnName string
	Kind                DependencyKind
	SkipIf              *SkipCondition
	Message             string
}

// StringExclusion forbids a literal value.
type StringExclusion struct {
	ForbiddenValue  string
	CaseInsensitive bool
	Message         string
}

// Validations groups the optional per-column rules.
type Validations struct {
	RegexRules       []RegexRule
	NumberBoundaries *NumberBoundaries
	ColumnDependent  []DependencyRule
	StringExclusion  *StringExclusion
}

// Option is a discrete value offered by picker and dropdown columns.
type Option struct {
	Key  string
	Text string
}

// ColumnConfig describes one grid column.
type ColumnConfig struct {
	Key                  string
	Name                 string
	DataType             DataType
	Editable             bool
	Required             Required
	Validations          *Validations
	Filterable           bool
	DefaultValueOnNewRow any
	NaNFallback          *float64 // substituted when a pasted number is not a number
	Options              []Option
}

// label returns the display name used in messages.
func (c ColumnConfig) label() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Key
}

// CustomOperationConfig describes a caller-owned operation column.
// Rows tagged CustomOp(NoOp) are treated like None.
type CustomOperationConfig struct {
	ColumnKey string
	NoOp      *int
}

// GridDefinition is the full configuration of one grid.
type GridDefinition struct {
	Key              string
	Label            string
	Columns          []ColumnConfig
	IdentifierColumn string
	IgnoredColumns   []string
	CustomOperation  *CustomOperationConfig
	Mapper           FuzzyKeyMapper
}

// Column returns the column configured under key.
func (g *GridDefinition) Column(key string) (ColumnConfig, bool) {
	for _, c := range g.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return ColumnConfig{}, false
}

// isDirty reports whether a row is subject to rule validation.
func (g *GridDefinition) isDirty(op Operation) bool {
	switch op.Kind {
	case OpInsert, OpUpdate:
		return true
	case OpCustom:
		if g.CustomOperation != nil && g.CustomOperation.NoOp != nil && *g.CustomOperation.NoOp == op.Custom {
			return false
		}
		return true
	default:
		return false
	}
}
