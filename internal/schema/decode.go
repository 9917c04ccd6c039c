package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/gridcheck/internal/core"
	"github.com/JonMunkholm/gridcheck/internal/core/tables"
)

var (
	// ErrUnknownDataType is returned for a column whose dataType is not
	// number, string, boolean or date.
	ErrUnknownDataType = errors.New("unknown data type")

	// ErrUnknownDependencyKind is returned for a dependency kind other than
	// mustBeEmpty or mustHaveData.
	ErrUnknownDependencyKind = errors.New("unknown dependency kind")

	// ErrUnknownMapper is returned for an unsupported column mapper name.
	ErrUnknownMapper = errors.New("unknown mapper")
)

// MapperUSState is the column mapper that turns state names into codes.
const MapperUSState = "usState"

// DecodeError reports a schema document that could not be turned into
// grid definitions.
type DecodeError struct {
	Source string
	Grid   string
	Line   int
	Err    error
}

func (e *DecodeError) Error() string {
	var b strings.Builder
	b.WriteString("invalid schema")
	if e.Source != "" {
		b.WriteString(" " + e.Source)
		if e.Line > 0 {
			fmt.Fprintf(&b, ":%d", e.Line)
		}
	}
	if e.Grid != "" {
		b.WriteString(" grid " + e.Grid)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ParseFile reads and parses one schema file.
func ParseFile(path string) ([]core.GridDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes a YAML or JSON schema document. source names the document
// in errors. Since JSON is valid YAML, both go through the YAML decoder.
func Parse(data []byte, source string) ([]core.GridDefinition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &DecodeError{Source: source, Err: err}
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	root := node.Content[0]

	var doc Document
	if hasKey(root, "grids") {
		if err := root.Decode(&doc); err != nil {
			return nil, &DecodeError{Source: source, Line: root.Line, Err: err}
		}
	} else {
		var g Grid
		if err := root.Decode(&g); err != nil {
			return nil, &DecodeError{Source: source, Line: root.Line, Err: err}
		}
		doc.Grids = []Grid{g}
	}

	return doc.toCore(source)
}

// ParseJSON decodes a single grid sent as JSON, such as an inline grid in
// an API request.
func ParseJSON(data []byte) (*core.GridDefinition, error) {
	var g Grid
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, &DecodeError{Err: err}
	}
	def, err := g.ToCore()
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func hasKey(node *yaml.Node, key string) bool {
	if node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return true
		}
	}
	return false
}

func (d Document) toCore(source string) ([]core.GridDefinition, error) {
	seen := make(map[string]bool, len(d.Grids))
	defs := make([]core.GridDefinition, 0, len(d.Grids))
	for _, g := range d.Grids {
		if seen[g.Key] {
			return nil, &DecodeError{Source: source, Grid: g.Key, Err: errors.New("grid key defined twice")}
		}
		seen[g.Key] = true

		def, err := g.ToCore()
		if err != nil {
			var de *DecodeError
			if errors.As(err, &de) {
				de.Source = source
			}
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// ToCore converts the document form to a grid definition, rejecting
// structural errors. Rule problems such as invalid patterns are left to
// Lint since the engine tolerates them.
func (g Grid) ToCore() (core.GridDefinition, error) {
	fail := func(format string, args ...any) (core.GridDefinition, error) {
		return core.GridDefinition{}, &DecodeError{Grid: g.Key, Err: fmt.Errorf(format, args...)}
	}

	if strings.TrimSpace(g.Key) == "" {
		return fail("grid key is required")
	}
	if len(g.Columns) == 0 {
		return fail("grid has no columns")
	}

	def := core.GridDefinition{
		Key:              g.Key,
		Label:            g.Label,
		IdentifierColumn: g.IdentifierColumn,
		IgnoredColumns:   g.IgnoredColumns,
		Columns:          make([]core.ColumnConfig, 0, len(g.Columns)),
	}
	if g.CustomOperation != nil {
		def.CustomOperation = &core.CustomOperationConfig{ColumnKey: g.CustomOperation.ColumnKey, NoOp: g.CustomOperation.NoOp}
	}

	var stateColumns []string
	keys := make(map[string]bool, len(g.Columns))
	for _, c := range g.Columns {
		if c.Key == "" {
			return fail("column key is required")
		}
		if keys[c.Key] {
			return fail("column %q defined twice", c.Key)
		}
		keys[c.Key] = true

		col, err := c.toCore()
		if err != nil {
			return core.GridDefinition{}, &DecodeError{Grid: g.Key, Err: fmt.Errorf("column %q: %w", c.Key, err)}
		}
		def.Columns = append(def.Columns, col)

		switch c.Mapper {
		case "":
		case MapperUSState:
			stateColumns = append(stateColumns, c.Key)
		default:
			return fail("column %q: %w %q", c.Key, ErrUnknownMapper, c.Mapper)
		}
	}

	if g.IdentifierColumn != "" && !keys[g.IdentifierColumn] {
		return fail("identifier column %q is not declared", g.IdentifierColumn)
	}
	if len(stateColumns) > 0 {
		def.Mapper = core.ChainMappers(tables.StateMapper(stateColumns...), core.OptionMapper)
	}
	return def, nil
}

func (c Column) toCore() (core.ColumnConfig, error) {
	dt := core.DataType(strings.ToLower(c.DataType))
	if !dt.Valid() {
		return core.ColumnConfig{}, fmt.Errorf("%w %q", ErrUnknownDataType, c.DataType)
	}

	col := core.ColumnConfig{
		Key:                  c.Key,
		Name:                 c.Name,
		DataType:             dt,
		Editable:             c.Editable,
		Required:             c.Required.Value,
		Filterable:           c.Filterable,
		DefaultValueOnNewRow: c.Default,
		NaNFallback:          c.NaNFallback,
	}
	for _, o := range c.Options {
		text := o.Text
		if text == "" {
			text = o.Key
		}
		col.Options = append(col.Options, core.Option{Key: o.Key, Text: text})
	}

	if v := c.Validations; v != nil {
		col.Validations = &core.Validations{}
		for _, r := range v.Regex {
			col.Validations.RegexRules = append(col.Validations.RegexRules, core.RegexRule{Pattern: r.Pattern, Message: r.Message})
		}
		if b := v.NumberBoundaries; b != nil {
			col.Validations.NumberBoundaries = &core.NumberBoundaries{Min: b.Min, Max: b.Max, ClampOnValidate: b.ClampOnValidate}
		}
		for _, d := range v.ColumnDependent {
			kind := core.DependencyKind(d.Kind)
			if kind != core.MustBeEmpty && kind != core.MustHaveData {
				return core.ColumnConfig{}, fmt.Errorf("%w %q", ErrUnknownDependencyKind, d.Kind)
			}
			rule := core.DependencyRule{
				DependentColumnKey:  d.DependentColumnKey,
				DependentColumnName: d.DependentColumnName,
				Kind:                kind,
				Message:             d.Message,
			}
			if d.SkipIf != nil {
				rule.SkipIf = &core.SkipCondition{ColumnKeys: d.SkipIf.ColumnKeys, Partial: d.SkipIf.Partial}
			}
			col.Validations.ColumnDependent = append(col.Validations.ColumnDependent, rule)
		}
		if e := v.StringExclusion; e != nil {
			col.Validations.StringExclusion = &core.StringExclusion{ForbiddenValue: e.ForbiddenValue, CaseInsensitive: e.CaseInsensitive, Message: e.Message}
		}
	}
	return col, nil
}

// hasExtension reports whether path ends in one of exts, ignoring case.
func hasExtension(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
