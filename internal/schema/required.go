package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/gridcheck/internal/core"
)

// ErrInvalidRequired is returned for a "required" value that is neither a
// boolean nor a conditional object.
var ErrInvalidRequired = errors.New("invalid required")

// Required carries the tagged core.Required variant through YAML and JSON.
// A bare boolean decodes to core.RequiredFlag, an object to
// core.RequiredConditional.
type Required struct {
	Value core.Required
}

type conditional struct {
	ErrorMessage   string   `yaml:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	OnlyIfEmpty    []string `yaml:"onlyIfEmpty,omitempty" json:"onlyIfEmpty,omitempty"`
	AlwaysRequired bool     `yaml:"alwaysRequired,omitempty" json:"alwaysRequired,omitempty"`
}

// IsZero reports whether no rule is set.
func (r Required) IsZero() bool {
	return r.Value == nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Required) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			r.Value = nil
			return nil
		}
		var b bool
		if node.Tag != "!!bool" || node.Decode(&b) != nil {
			return fmt.Errorf("%w: line %d: %q is not a boolean", ErrInvalidRequired, node.Line, node.Value)
		}
		r.Value = core.RequiredFlag(b)
	case yaml.MappingNode:
		var c conditional
		if err := node.Decode(&c); err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrInvalidRequired, node.Line, err)
		}
		r.Value = c.toCore()
	default:
		return fmt.Errorf("%w: line %d: expected boolean or object", ErrInvalidRequired, node.Line)
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (r Required) MarshalYAML() (any, error) {
	return r.encodable(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Required) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		r.Value = nil
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		r.Value = core.RequiredFlag(data[0] == 't')
	case len(data) > 0 && data[0] == '{':
		var c conditional
		if err := json.Unmarshal(data, &c); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequired, err)
		}
		r.Value = c.toCore()
	default:
		return fmt.Errorf("%w: %s is not a boolean or object", ErrInvalidRequired, data)
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r Required) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.encodable())
}

func (r Required) encodable() any {
	switch v := r.Value.(type) {
	case core.RequiredFlag:
		return bool(v)
	case core.RequiredConditional:
		return conditional{ErrorMessage: v.ErrorMessage, OnlyIfEmpty: v.OnlyIfEmpty, AlwaysRequired: v.AlwaysRequired}
	default:
		return nil
	}
}

func (c conditional) toCore() core.RequiredConditional {
	return core.RequiredConditional{
		ErrorMessage:   c.ErrorMessage,
		OnlyIfEmpty:    c.OnlyIfEmpty,
		AlwaysRequired: c.AlwaysRequired,
	}
}
