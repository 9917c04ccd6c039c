package core

import (
	"strings"
)

// Operator names a comparison understood by Evaluate.
type Operator string

const (
	OpEquals         Operator = "equals"
	OpNotEquals      Operator = "notEquals"
	OpGreaterThan    Operator = "greaterThan"
	OpLessThan       Operator = "lessThan"
	OpGreaterOrEqual Operator = "greaterOrEqual"
	OpLessOrEqual    Operator = "lessOrEqual"
	OpBetween        Operator = "between"
	OpContains       Operator = "contains"
	OpStartsWith     Operator = "startsWith"
	OpEndsWith       Operator = "endsWith"
	OpBefore         Operator = "before"
	OpAfter          Operator = "after"
	OpOnOrBefore     Operator = "onOrBefore"
	OpOnOrAfter      Operator = "onOrAfter"
)

// operatorsByType lists the operators each data type supports.
var operatorsByType = map[DataType][]Operator{
	TypeNumber:  {OpEquals, OpNotEquals, OpGreaterThan, OpLessThan, OpGreaterOrEqual, OpLessOrEqual, OpBetween},
	TypeString:  {OpEquals, OpNotEquals, OpContains, OpStartsWith, OpEndsWith},
	TypeBoolean: {OpEquals, OpNotEquals},
	TypeDate:    {OpBefore, OpAfter, OpOnOrBefore, OpOnOrAfter, OpEquals},
}

// OperatorsFor returns the operators supported for dataType.
func OperatorsFor(dataType DataType) []Operator {
	return operatorsByType[dataType]
}

// Supports reports whether op is defined for dataType.
func Supports(dataType DataType, op Operator) bool {
	for _, o := range operatorsByType[dataType] {
		if o == op {
			return true
		}
	}
	return false
}

// Range is the right-hand operand of OpBetween. Both bounds are inclusive.
type Range struct {
	Low  any `json:"low"`
	High any `json:"high"`
}

type evalOptions struct {
	caseInsensitive bool
}

// EvalOption adjusts how Evaluate compares values.
type EvalOption func(*evalOptions)

// CaseInsensitive makes string comparisons ignore case.
func CaseInsensitive(on bool) EvalOption {
	return func(o *evalOptions) { o.caseInsensitive = on }
}

// Evaluate compares left against right under op for the given data type.
// Unsupported operator and type combinations, and operands that cannot be
// interpreted as the data type, evaluate to false.
func Evaluate(dataType DataType, left, right any, op Operator, opts ...EvalOption) bool {
	var o evalOptions
	for _, fn := range opts {
		fn(&o)
	}

	switch dataType {
	case TypeNumber:
		return evalNumber(left, right, op)
	case TypeString:
		return evalString(left, right, op, o.caseInsensitive)
	case TypeBoolean:
		return evalBoolean(left, right, op)
	case TypeDate:
		return evalDate(left, right, op)
	default:
		return false
	}
}

func evalNumber(left, right any, op Operator) bool {
	l, ok := toFloat(left)
	if !ok {
		return false
	}

	if op == OpBetween {
		lo, hi, ok := rangeBounds(right)
		if !ok {
			return false
		}
		low, okLow := toFloat(lo)
		high, okHigh := toFloat(hi)
		if !okLow || !okHigh {
			return false
		}
		return l >= low && l <= high
	}

	r, ok := toFloat(right)
	if !ok {
		return false
	}

	switch op {
	case OpEquals:
		return l == r
	case OpNotEquals:
		return l != r
	case OpGreaterThan:
		return l > r
	case OpLessThan:
		return l < r
	case OpGreaterOrEqual:
		return l >= r
	case OpLessOrEqual:
		return l <= r
	default:
		return false
	}
}

func rangeBounds(v any) (any, any, bool) {
	switch r := v.(type) {
	case Range:
		return r.Low, r.High, true
	case *Range:
		if r == nil {
			return nil, nil, false
		}
		return r.Low, r.High, true
	case []any:
		if len(r) != 2 {
			return nil, nil, false
		}
		return r[0], r[1], true
	case []float64:
		if len(r) != 2 {
			return nil, nil, false
		}
		return r[0], r[1], true
	case map[string]any:
		lo, okLo := r["low"]
		hi, okHi := r["high"]
		return lo, hi, okLo && okHi
	default:
		return nil, nil, false
	}
}

func evalString(left, right any, op Operator, caseInsensitive bool) bool {
	l, r := FormatValue(left), FormatValue(right)
	if caseInsensitive {
		l, r = strings.ToLower(l), strings.ToLower(r)
	}

	switch op {
	case OpEquals:
		return l == r
	case OpNotEquals:
		return l != r
	case OpContains:
		return strings.Contains(l, r)
	case OpStartsWith:
		return strings.HasPrefix(l, r)
	case OpEndsWith:
		return strings.HasSuffix(l, r)
	default:
		return false
	}
}

// evalBoolean compares the text forms so "true" and true are equal.
func evalBoolean(left, right any, op Operator) bool {
	l, r := strings.ToLower(FormatValue(left)), strings.ToLower(FormatValue(right))

	switch op {
	case OpEquals:
		return l == r
	case OpNotEquals:
		return l != r
	default:
		return false
	}
}

func evalDate(left, right any, op Operator) bool {
	l, okL := toTime(left)
	r, okR := toTime(right)
	if !okL || !okR {
		return false
	}

	switch op {
	case OpEquals:
		return l.Equal(r)
	case OpBefore:
		return l.Before(r)
	case OpAfter:
		return l.After(r)
	case OpOnOrBefore:
		return !l.After(r)
	case OpOnOrAfter:
		return !l.Before(r)
	default:
		return false
	}
}
