package tables

import (
	"slices"
	"strings"

	"github.com/JonMunkholm/gridcheck/internal/core"
)

// UsStates maps US state full names to their abbreviations.
var UsStates = map[string]string{
	"alabama":        "AL",
	"alaska":         "AK",
	"arizona":        "AZ",
	"arkansas":       "AR",
	"california":     "CA",
	"colorado":       "CO",
	"connecticut":    "CT",
	"delaware":       "DE",
	"florida":        "FL",
	"georgia":        "GA",
	"hawaii":         "HI",
	"idaho":          "ID",
	"illinois":       "IL",
	"indiana":        "IN",
	"iowa":           "IA",
	"kansas":         "KS",
	"kentucky":       "KY",
	"louisiana":      "LA",
	"maine":          "ME",
	"maryland":       "MD",
	"massachusetts":  "MA",
	"michigan":       "MI",
	"minnesota":      "MN",
	"mississippi":    "MS",
	"missouri":       "MO",
	"montana":        "MT",
	"nebraska":       "NE",
	"nevada":         "NV",
	"new hampshire":  "NH",
	"new jersey":     "NJ",
	"new mexico":     "NM",
	"new york":       "NY",
	"north carolina": "NC",
	"north dakota":   "ND",
	"ohio":           "OH",
	"oklahoma":       "OK",
	"oregon":         "OR",
	"pennsylvania":   "PA",
	"rhode island":   "RI",
	"south carolina": "SC",
	"south dakota":   "SD",
	"tennessee":      "TN",
	"texas":          "TX",
	"utah":           "UT",
	"vermont":        "VT",
	"virginia":       "VA",
	"washington":     "WA",
	"west virginia":  "WV",
	"wisconsin":      "WI",
	"wyoming":        "WY",
}

// stateCodes is the set of valid 2-letter codes.
var stateCodes = func() map[string]bool {
	m := make(map[string]bool, len(UsStates))
	for _, code := range UsStates {
		m[code] = true
	}
	return m
}()

// LookupUsState resolves a state name, abbreviation or unambiguous name
// prefix ("calif", "new j") to its 2-letter code.
func LookupUsState(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ".")))
	if s == "" {
		return "", false
	}

	if code, ok := UsStates[s]; ok {
		return code, true
	}
	if up := strings.ToUpper(s); stateCodes[up] {
		return up, true
	}

	if len(s) < 3 {
		return "", false
	}
	match := ""
	for name, code := range UsStates {
		if !strings.HasPrefix(name, s) {
			continue
		}
		if match != "" && match != code {
			return "", false
		}
		match = code
	}
	return match, match != ""
}

// NormalizeUsState converts US state names to their 2-letter abbreviations.
// If the input is not recognized, returns it trimmed.
func NormalizeUsState(s string) string {
	if code, ok := LookupUsState(s); ok {
		return code
	}
	return strings.TrimSpace(s)
}

// StateMapper maps pasted state names onto 2-letter codes for the listed
// columns. Other columns are left to the next mapper.
func StateMapper(columns ...string) core.FuzzyKeyMapper {
	keys := make(map[string]bool, len(columns))
	for _, c := range columns {
		keys[c] = true
	}
	return core.MapperFunc(func(col core.ColumnConfig, text string) (any, bool) {
		if !keys[col.Key] {
			return nil, false
		}
		code, ok := LookupUsState(text)
		if !ok {
			return nil, false
		}
		return code, true
	})
}

// stateOptions lists every state as a picker option.
func stateOptions() []core.Option {
	opts := make([]core.Option, 0, len(UsStates))
	for name, code := range UsStates {
		words := strings.Fields(name)
		for i, w := range words {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
		opts = append(opts, core.Option{Key: code, Text: strings.Join(words, " ")})
	}
	slices.SortFunc(opts, func(a, b core.Option) int { return strings.Compare(a.Key, b.Key) })
	return opts
}

func ptr[T any](v T) *T { return &v }
