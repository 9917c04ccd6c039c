package core

// messages.go defines the diagnostics produced by a validation run.
//
// Every message is stored under a key whose shape encodes its purpose:
//
//	dup<N>                 duplicate group N
//	<colKey><row>          type, range, regex and string-exclusion failures for one cell
//	<colKey><row>empty     conditional required failure for one cell
//	<row>erc               aggregated conditional required columns
//	<row>ec                aggregated boolean required columns
//	<row>ColDep            column dependency violation
//
// Writing to an existing key replaces the earlier message.

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Severity classifies a message for display.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityInfo  Severity = "info"
)

// ValidationMessage is one diagnostic.
type ValidationMessage struct {
	Key      string   `json:"key"`
	Text     string   `json:"text"`
	Severity Severity `json:"severity"`
}

// ResultMap maps message key to message. The last write for a key wins.
type ResultMap map[string]ValidationMessage

// put stores an error-severity message under key.
func (m ResultMap) put(key, text string) {
	m[key] = ValidationMessage{Key: key, Text: text, Severity: SeverityError}
}

// HasErrors reports whether any message has error severity.
func (m ResultMap) HasErrors() bool {
	for _, msg := range m {
		if msg.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Keys returns the message keys in sorted order.
func (m ResultMap) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Sorted returns the messages ordered by key.
func (m ResultMap) Sorted() []ValidationMessage {
	out := make([]ValidationMessage, 0, len(m))
	for _, k := range m.Keys() {
		out = append(out, m[k])
	}
	return out
}

// Merge copies other into m and returns the keys present in both.
// Sub-passes write disjoint namespaces, so collisions indicate a
// configuration whose column keys mimic another namespace.
func (m ResultMap) Merge(other ResultMap) []string {
	var collisions []string
	for k, v := range other {
		if _, exists := m[k]; exists {
			collisions = append(collisions, k)
		}
		m[k] = v
	}
	slices.Sort(collisions)
	return collisions
}

func dupKey(n int) string {
	return "dup" + strconv.Itoa(n)
}

func cellKey(colKey string, row int) string {
	return colKey + strconv.Itoa(row)
}

func cellEmptyKey(colKey string, row int) string {
	return colKey + strconv.Itoa(row) + "empty"
}

func rowRequiredKey(row int) string {
	return strconv.Itoa(row) + "erc"
}

func rowEmptyKey(row int) string {
	return strconv.Itoa(row) + "ec"
}

func rowDependencyKey(row int) string {
	return strconv.Itoa(row) + "ColDep"
}

// KeyKind names the namespace a message key belongs to.
type KeyKind string

const (
	KindDuplicate  KeyKind = "duplicate"
	KindCell       KeyKind = "cell"
	KindCellEmpty  KeyKind = "cell_empty"
	KindRequired   KeyKind = "row_required"
	KindEmpty      KeyKind = "row_empty"
	KindDependency KeyKind = "row_dependency"
)

// KindOf classifies a message key by its shape.
func KindOf(key string) KeyKind {
	switch {
	case isDupKey(key):
		return KindDuplicate
	case strings.HasSuffix(key, "ColDep"):
		return KindDependency
	case strings.HasSuffix(key, "erc"):
		return KindRequired
	case strings.HasSuffix(key, "ec"):
		return KindEmpty
	case strings.HasSuffix(key, "empty"):
		return KindCellEmpty
	default:
		return KindCell
	}
}

func isDupKey(key string) bool {
	n, ok := strings.CutPrefix(key, "dup")
	if !ok || n == "" {
		return false
	}
	_, err := strconv.Atoi(n)
	return err == nil
}
