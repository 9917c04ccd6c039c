// Package schema reads grid definitions from YAML or JSON documents.
//
// A schema file holds either a single grid or a list under "grids":
//
//	grids:
//	  - key: customers
//	    identifierColumn: id
//	    columns:
//	      - key: id
//	        dataType: number
//	      - key: name
//	        dataType: string
//	        editable: true
//	        required: true
//	      - key: phone
//	        dataType: string
//	        required:
//	          onlyIfEmpty: [email]
//	          errorMessage: Phone or email is required
//
// The "required" field takes either a boolean or an object. JSON documents
// use the same field names.
package schema

import (
	"github.com/JonMunkholm/gridcheck/internal/core"
)

// Document is the top level of a schema file.
type Document struct {
	Grids []Grid `yaml:"grids" json:"grids"`
}

// Grid is the document form of core.GridDefinition.
type Grid struct {
	Key              string           `yaml:"key" json:"key"`
	Label            string           `yaml:"label,omitempty" json:"label,omitempty"`
	IdentifierColumn string           `yaml:"identifierColumn,omitempty" json:"identifierColumn,omitempty"`
	IgnoredColumns   []string         `yaml:"ignoredColumns,omitempty" json:"ignoredColumns,omitempty"`
	CustomOperation  *CustomOperation `yaml:"customOperation,omitempty" json:"customOperation,omitempty"`
	Columns          []Column         `yaml:"columns" json:"columns"`
}

// CustomOperation names the caller-owned operation column.
type CustomOperation struct {
	ColumnKey string `yaml:"columnKey" json:"columnKey"`
	NoOp      *int   `yaml:"noOp,omitempty" json:"noOp,omitempty"`
}

// Column is the document form of core.ColumnConfig.
type Column struct {
	Key         string       `yaml:"key" json:"key"`
	Name        string       `yaml:"name,omitempty" json:"name,omitempty"`
	DataType    string       `yaml:"dataType" json:"dataType"`
	Editable    bool         `yaml:"editable,omitempty" json:"editable,omitempty"`
	Required    Required     `yaml:"required,omitempty" json:"required,omitzero"`
	Filterable  bool         `yaml:"filterable,omitempty" json:"filterable,omitempty"`
	Default     any          `yaml:"defaultValueOnNewRow,omitempty" json:"defaultValueOnNewRow,omitempty"`
	NaNFallback *float64     `yaml:"nanFallback,omitempty" json:"nanFallback,omitempty"`
	Options     []Option     `yaml:"options,omitempty" json:"options,omitempty"`
	Mapper      string       `yaml:"mapper,omitempty" json:"mapper,omitempty"`
	Validations *Validations `yaml:"validations,omitempty" json:"validations,omitempty"`
}

// Option is a picker option.
type Option struct {
	Key  string `yaml:"key" json:"key"`
	Text string `yaml:"text,omitempty" json:"text,omitempty"`
}

// Validations is the document form of core.Validations.
type Validations struct {
	Regex            []RegexRule       `yaml:"regex,omitempty" json:"regex,omitempty"`
	NumberBoundaries *NumberBoundaries `yaml:"numberBoundaries,omitempty" json:"numberBoundaries,omitempty"`
	ColumnDependent  []Dependency      `yaml:"columnDependent,omitempty" json:"columnDependent,omitempty"`
	StringExclusion  *StringExclusion  `yaml:"stringExclusion,omitempty" json:"stringExclusion,omitempty"`
}

type RegexRule struct {
	Pattern string `yaml:"pattern" json:"pattern"`
	Message string `yaml:"message" json:"message"`
}

type NumberBoundaries struct {
	Min             *float64 `yaml:"min,omitempty" json:"min,omitempty"`
	Max             *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	ClampOnValidate bool     `yaml:"clampOnValidate,omitempty" json:"clampOnValidate,omitempty"`
}

type Dependency struct {
	DependentColumnKey  string         `yaml:"dependentColumnKey" json:"dependentColumnKey"`
	DependentColumnName string         `yaml:"dependentColumnName,omitempty" json:"dependentColumnName,omitempty"`
	Kind                string         `yaml:"kind" json:"kind"`
	SkipIf              *SkipCondition `yaml:"skipIf,omitempty" json:"skipIf,omitempty"`
	Message             string         `yaml:"message,omitempty" json:"message,omitempty"`
}

type SkipCondition struct {
	ColumnKeys []string `yaml:"columnKeys" json:"columnKeys"`
	Partial    bool     `yaml:"partial,omitempty" json:"partial,omitempty"`
}

type StringExclusion struct {
	ForbiddenValue  string `yaml:"forbiddenValue" json:"forbiddenValue"`
	CaseInsensitive bool   `yaml:"caseInsensitive,omitempty" json:"caseInsensitive,omitempty"`
	Message         string `yaml:"message" json:"message"`
}

// FromGrid converts a registered grid back to its document form.
func FromGrid(g *core.GridDefinition) Grid {
	doc := Grid{
		Key:              g.Key,
		Label:            g.Label,
		IdentifierColumn: g.IdentifierColumn,
		IgnoredColumns:   g.IgnoredColumns,
		Columns:          make([]Column, 0, len(g.Columns)),
	}
	if g.CustomOperation != nil {
		doc.CustomOperation = &CustomOperation{ColumnKey: g.CustomOperation.ColumnKey, NoOp: g.CustomOperation.NoOp}
	}

	for _, c := range g.Columns {
		col := Column{
			Key:         c.Key,
			Name:        c.Name,
			DataType:    string(c.DataType),
			Editable:    c.Editable,
			Required:    Required{Value: c.Required},
			Filterable:  c.Filterable,
			Default:     c.DefaultValueOnNewRow,
			NaNFallback: c.NaNFallback,
		}
		for _, o := range c.Options {
			col.Options = append(col.Options, Option{Key: o.Key, Text: o.Text})
		}
		if v := c.Validations; v != nil {
			col.Validations = &Validations{}
			for _, r := range v.RegexRules {
				col.Validations.Regex = append(col.Validations.Regex, RegexRule{Pattern: r.Pattern, Message: r.Message})
			}
			if b := v.NumberBoundaries; b != nil {
				col.Validations.NumberBoundaries = &NumberBoundaries{Min: b.Min, Max: b.Max, ClampOnValidate: b.ClampOnValidate}
			}
			for _, d := range v.ColumnDependent {
				dep := Dependency{
					DependentColumnKey:  d.DependentColumnKey,
					DependentColumnName: d.DependentColumnName,
					Kind:                string(d.Kind),
					Message:             d.Message,
				}
				if d.SkipIf != nil {
					dep.SkipIf = &SkipCondition{ColumnKeys: d.SkipIf.ColumnKeys, Partial: d.SkipIf.Partial}
				}
				col.Validations.ColumnDependent = append(col.Validations.ColumnDependent, dep)
			}
			if e := v.StringExclusion; e != nil {
				col.Validations.StringExclusion = &StringExclusion{ForbiddenValue: e.ForbiddenValue, CaseInsensitive: e.CaseInsensitive, Message: e.Message}
			}
		}
		doc.Columns = append(doc.Columns, col)
	}
	return doc
}
