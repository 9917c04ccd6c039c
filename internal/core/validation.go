package core

// validation.go applies per-column business rules to dirty rows.
//
// For every dirty row, each configured column present in the row is checked
// in this order:
//  1. Required: boolean form aggregates into <row>ec, conditional form
//     reports per cell (<col><row>empty) or aggregates into <row>erc
//  2. Type conformance, plus range for numbers with ClampOnValidate
//  3. Column dependencies (one shared <row>ColDep slot per row)
//  4. Regex rules
//  5. String exclusion
//
// Steps 2, 4 and 5 share the <col><row> key, so a later failure replaces an
// earlier one. Rule configuration problems such as an invalid regex pattern
// never produce a message.

import (
	"regexp"
	"strconv"
	"strings"
)

// RuleValidator validates rows against one grid definition.
// A RuleValidator is not safe for concurrent use.
type RuleValidator struct {
	grid     *GridDefinition
	patterns map[string]*regexp.Regexp
}

// NewRuleValidator creates a validator for grid.
func NewRuleValidator(grid *GridDefinition) *RuleValidator {
	return &RuleValidator{
		grid:     grid,
		patterns: make(map[string]*regexp.Regexp),
	}
}

// ValidateRows is shorthand for NewRuleValidator(grid).Validate(rows).
func ValidateRows(grid *GridDefinition, rows []Row) ResultMap {
	return NewRuleValidator(grid).Validate(rows)
}

// Validate checks every dirty row and returns the messages produced.
// Message row numbers are positions in rows, so they stay stable however
// many clean rows precede a dirty one.
func (v *RuleValidator) Validate(rows []Row) ResultMap {
	result := make(ResultMap)
	for i, row := range rows {
		if !v.grid.isDirty(row.Op) {
			continue
		}
		v.validateRow(result, i, row)
	}
	return result
}

// rowCheck carries the per-row aggregation lists.
type rowCheck struct {
	index    int
	label    string
	row      Row
	emptyCol []string // boolean required
	emptyReq []string // conditional required without a message
}

func (v *RuleValidator) validateRow(result ResultMap, i int, row Row) {
	rc := &rowCheck{index: i, label: v.rowLabel(row, i), row: row}

	for _, col := range v.grid.Columns {
		value, present := row.Values[col.Key]
		if !present {
			continue
		}

		v.checkRequired(result, rc, col, value)
		v.checkType(result, rc, col, value)
		if col.Validations == nil {
			continue
		}
		v.checkDependencies(result, rc, col, value)
		v.checkRegex(result, rc, col, value)
		v.checkExclusion(result, rc, col, value)
	}

	switch {
	case len(rc.emptyReq) > 1:
		result.put(rowRequiredKey(i), rc.label+" - "+strings.Join(rc.emptyReq, ", ")+" cannot all be empty")
	case len(rc.emptyReq) == 1:
		result.put(rowRequiredKey(i), rc.label+" - "+rc.emptyReq[0]+" cannot be empty")
	}

	switch {
	case len(rc.emptyCol) > 1:
		result.put(rowEmptyKey(i), rc.label+" - "+strings.Join(rc.emptyCol, ", ")+" cannot be empty at all")
	case len(rc.emptyCol) == 1:
		result.put(rowEmptyKey(i), rc.label+" - "+rc.emptyCol[0]+" cannot be empty")
	}
}

func (v *RuleValidator) rowLabel(row Row, i int) string {
	if v.grid.IdentifierColumn != "" {
		return "Row With ID: " + FormatValue(row.Values[v.grid.IdentifierColumn])
	}
	return "Row With Index: " + strconv.Itoa(i+1)
}

func (v *RuleValidator) checkRequired(result ResultMap, rc *rowCheck, col ColumnConfig, value any) {
	if !isEmpty(value) {
		return
	}

	switch req := col.Required.(type) {
	case RequiredFlag:
		if req {
			appendOnce(&rc.emptyCol, col.label())
		}
	case RequiredConditional:
		if len(req.OnlyIfEmpty) == 0 {
			if req.ErrorMessage != "" {
				result.put(cellEmptyKey(col.Key, rc.index), rc.label+" - "+req.ErrorMessage)
			}
			return
		}

		if !req.AlwaysRequired {
			for _, sibling := range req.OnlyIfEmpty {
				if !isEmpty(rc.row.Values[sibling]) {
					return
				}
			}
		}

		if req.ErrorMessage != "" {
			result.put(cellEmptyKey(col.Key, rc.index), rc.label+" - "+req.ErrorMessage)
		} else {
			appendOnce(&rc.emptyReq, col.label())
		}
	}
}

func (v *RuleValidator) checkType(result ResultMap, rc *rowCheck, col ColumnConfig, value any) {
	if isEmpty(value) {
		return
	}
	prefix := rc.label + " Col: " + col.label() + " - "
	notA := prefix + "Value is not a '" + string(col.DataType) + "'."

	switch col.DataType {
	case TypeNumber:
		var f float64
		var ok bool
		switch value.(type) {
		case bool, InvalidDate:
		default:
			f, ok = toFloat(value)
		}
		if !ok {
			result.put(cellKey(col.Key, rc.index), notA)
			return
		}
		if msg := rangeViolation(col, f, value); msg != "" {
			result.put(cellKey(col.Key, rc.index), prefix+msg)
		}
	case TypeBoolean:
		if !isBoolean(value) {
			result.put(cellKey(col.Key, rc.index), notA)
		}
	case TypeDate:
		if _, ok := toTime(value); !ok {
			result.put(cellKey(col.Key, rc.index), notA)
		}
	}
}

// rangeViolation describes how f breaks the column's boundaries, or
// returns "" when it does not or the boundaries are paste-only.
func rangeViolation(col ColumnConfig, f float64, entered any) string {
	if col.Validations == nil || col.Validations.NumberBoundaries == nil {
		return ""
	}
	b := col.Validations.NumberBoundaries
	if !b.ClampOnValidate {
		return ""
	}

	value := FormatValue(entered)
	switch {
	case b.Min != nil && b.Max != nil:
		if f < *b.Min || f > *b.Max {
			return "Value outside of range '" + FormatValue(*b.Min) + " - " + FormatValue(*b.Max) + "'. Entered value " + value
		}
	case b.Min != nil:
		if f < *b.Min {
			return "Value is lower than required range: '" + FormatValue(*b.Min) + "'. Entered value " + value
		}
	case b.Max != nil:
		if f > *b.Max {
			return "Value is greater than required range: '" + FormatValue(*b.Max) + "'. Entered value " + value
		}
	}
	return ""
}

func isBoolean(value any) bool {
	switch val := value.(type) {
	case bool:
		return true
	case string:
		_, ok := ParseBool(val)
		return ok
	case float64:
		return val == 0 || val == 1
	case int:
		return val == 0 || val == 1
	default:
		return false
	}
}

func (v *RuleValidator) checkDependencies(result ResultMap, rc *rowCheck, col ColumnConfig, value any) {
	for _, dep := range col.Validations.ColumnDependent {
		if isEmpty(rc.row.Values[dep.DependentColumnKey]) {
			continue
		}
		if skipDependency(rc.row, dep.SkipIf) {
			continue
		}

		depName := dep.DependentColumnName
		if depName == "" {
			depName = dep.DependentColumnKey
		}

		switch dep.Kind {
		case MustBeEmpty:
			if !isEmpty(value) {
				msg := dep.Message
				if msg == "" {
					msg = "Data cannot be entered in " + col.label() + " and in " + depName +
						" Column. Remove data in " + depName + " Column to enter data here."
				}
				result.put(rowDependencyKey(rc.index), rc.label+" - "+msg)
			}
		case MustHaveData:
			if isEmpty(value) {
				msg := dep.Message
				if msg == "" {
					msg = "Data needs to be entered in " + depName + " and in " + col.label() + " Column."
				}
				result.put(rowDependencyKey(rc.index), rc.label+" - "+msg)
			}
		}
	}
}

// skipDependency evaluates a SkipCondition. In partial mode any populated
// column suppresses the check; otherwise every listed column must be
// populated. An empty column list never suppresses.
func skipDependency(row Row, cond *SkipCondition) bool {
	if cond == nil || len(cond.ColumnKeys) == 0 {
		return false
	}
	for _, key := range cond.ColumnKeys {
		populated := !isEmpty(row.Values[key])
		if cond.Partial && populated {
			return true
		}
		if !cond.Partial && !populated {
			return false
		}
	}
	return !cond.Partial
}

func (v *RuleValidator) checkRegex(result ResultMap, rc *rowCheck, col ColumnConfig, value any) {
	text := FormatValue(value)
	for _, rule := range col.Validations.RegexRules {
		re := v.compile(rule.Pattern)
		if re == nil {
			continue
		}
		if !re.MatchString(text) {
			result.put(cellKey(col.Key, rc.index), rc.label+" - "+rule.Message)
		}
	}
}

// compile returns the cached pattern, or nil if it does not compile.
func (v *RuleValidator) compile(pattern string) *regexp.Regexp {
	if re, ok := v.patterns[pattern]; ok {
		return re
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	v.patterns[pattern] = re
	return re
}

func (v *RuleValidator) checkExclusion(result ResultMap, rc *rowCheck, col ColumnConfig, value any) {
	ex := col.Validations.StringExclusion
	if ex == nil || value == nil {
		return
	}

	text := FormatValue(value)
	matched := text == ex.ForbiddenValue
	if ex.CaseInsensitive {
		matched = strings.EqualFold(text, ex.ForbiddenValue)
	}
	if matched {
		result.put(cellKey(col.Key, rc.index), rc.label+" - "+ex.Message)
	}
}

func appendOnce(list *[]string, name string) {
	for _, n := range *list {
		if n == name {
			return
		}
	}
	*list = append(*list, name)
}
