package schema

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/gridcheck/internal/core"
)

func TestParseFile_YAML(t *testing.T) {
	defs, err := ParseFile(filepath.Join("testdata", "customers.yaml"))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("len(defs) = %d, want 1", len(defs))
	}
	g := defs[0]

	if g.Key != "schema_customers" || g.IdentifierColumn != "id" {
		t.Errorf("grid = %s/%s, want schema_customers/id", g.Key, g.IdentifierColumn)
	}
	if len(g.Columns) != 7 {
		t.Fatalf("len(Columns) = %d, want 7", len(g.Columns))
	}

	name, _ := g.Column("name")
	if name.Required != core.RequiredFlag(true) {
		t.Errorf("name.Required = %#v, want RequiredFlag(true)", name.Required)
	}

	phone, _ := g.Column("phone")
	want := core.RequiredConditional{OnlyIfEmpty: []string{"email"}}
	if diff := cmp.Diff(core.Required(want), phone.Required); diff != "" {
		t.Errorf("phone.Required mismatch (-want +got):\n%s", diff)
	}

	credit, _ := g.Column("credit")
	b := credit.Validations.NumberBoundaries
	if b == nil || *b.Min != 0 || *b.Max != 5000 || !b.ClampOnValidate {
		t.Errorf("credit boundaries = %+v", b)
	}
	if credit.NaNFallback == nil || *credit.NaNFallback != 0 {
		t.Errorf("credit.NaNFallback = %v, want 0", credit.NaNFallback)
	}

	notes, _ := g.Column("notes")
	dep := notes.Validations.ColumnDependent[0]
	if dep.Kind != core.MustHaveData || dep.SkipIf == nil || !dep.SkipIf.Partial {
		t.Errorf("notes dependency = %+v", dep)
	}

	if g.Mapper == nil {
		t.Fatal("usState mapper not installed")
	}
	state, _ := g.Column("state")
	if got := core.PasteCoerce(state, "oregon", core.PasteOptions{Mapper: g.Mapper}); got != "OR" {
		t.Errorf("PasteCoerce(oregon) = %#v, want OR", got)
	}
}

func TestParseFile_JSON(t *testing.T) {
	defs, err := ParseFile(filepath.Join("testdata", "orders.json"))
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	g := defs[0]

	if g.CustomOperation == nil || g.CustomOperation.ColumnKey != "action" || *g.CustomOperation.NoOp != 0 {
		t.Errorf("CustomOperation = %+v", g.CustomOperation)
	}

	order, _ := g.Column("order_no")
	if diff := cmp.Diff(core.Required(core.RequiredConditional{ErrorMessage: "Order number is required"}), order.Required); diff != "" {
		t.Errorf("order_no.Required mismatch (-want +got):\n%s", diff)
	}
	placed, _ := g.Column("placed")
	if placed.Required != core.RequiredFlag(false) {
		t.Errorf("placed.Required = %#v, want RequiredFlag(false)", placed.Required)
	}
	paid, _ := g.Column("paid")
	if paid.Required != nil {
		t.Errorf("paid.Required = %#v, want nil", paid.Required)
	}

	status, _ := g.Column("status")
	if len(status.Options) != 2 || status.Validations.StringExclusion.ForbiddenValue != "void" {
		t.Errorf("status = %+v", status)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown data type",
			doc:     "key: g\ncolumns:\n  - key: a\n    dataType: money\n",
			wantErr: ErrUnknownDataType,
		},
		{
			name:    "required string",
			doc:     "key: g\ncolumns:\n  - key: a\n    dataType: string\n    required: always\n",
			wantErr: ErrInvalidRequired,
		},
		{
			name:    "required list",
			doc:     "key: g\ncolumns:\n  - key: a\n    dataType: string\n    required: [a]\n",
			wantErr: ErrInvalidRequired,
		},
		{
			name:    "dependency kind",
			doc:     "key: g\ncolumns:\n  - key: a\n    dataType: string\n    validations:\n      columnDependent:\n        - dependentColumnKey: b\n          kind: sometimes\n",
			wantErr: ErrUnknownDependencyKind,
		},
		{
			name:    "mapper",
			doc:     "key: g\ncolumns:\n  - key: a\n    dataType: string\n    mapper: zip\n",
			wantErr: ErrUnknownMapper,
		},
		{
			name:    "missing key",
			doc:     "columns:\n  - key: a\n    dataType: string\n",
			wantMsg: "grid key is required",
		},
		{
			name:    "duplicate column",
			doc:     "key: g\ncolumns:\n  - {key: a, dataType: string}\n  - {key: a, dataType: number}\n",
			wantMsg: `column "a" defined twice`,
		},
		{
			name:    "identifier not declared",
			doc:     "key: g\nidentifierColumn: id\ncolumns:\n  - {key: a, dataType: string}\n",
			wantMsg: `identifier column "id" is not declared`,
		},
		{
			name:    "duplicate grid",
			doc:     "grids:\n  - {key: g, columns: [{key: a, dataType: string}]}\n  - {key: g, columns: [{key: a, dataType: string}]}\n",
			wantMsg: "grid key defined twice",
		},
		{
			name:    "syntax",
			doc:     "key: [unclosed\n",
			wantMsg: "invalid schema bad.yaml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc), "bad.yaml")
			if err == nil {
				t.Fatal("Parse() error = nil")
			}

			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("Parse() error %T is not a *DecodeError", err)
			}
			if !strings.HasPrefix(err.Error(), "invalid schema") {
				t.Errorf("error = %q, want invalid schema prefix", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Parse() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParse_ErrorCodes(t *testing.T) {
	tests := []struct {
		doc  string
		code string
	}{
		{"key: g\ncolumns:\n  - {key: a, dataType: money}\n", "SCH002"},
		{"key: g\ncolumns:\n  - {key: a, dataType: string, required: maybe}\n", "SCH003"},
		{"key: [\n", "SCH001"},
	}

	for _, tt := range tests {
		_, err := Parse([]byte(tt.doc), "x.yaml")
		if got := core.MapError(err).Code; got != tt.code {
			t.Errorf("MapError(%v).Code = %q, want %q", err, got, tt.code)
		}
	}
}

func TestParse_Empty(t *testing.T) {
	defs, err := Parse([]byte("  \n"), "empty.yaml")
	if err != nil || defs != nil {
		t.Errorf("Parse(empty) = %v, %v, want nil, nil", defs, err)
	}
}

func TestRequired_JSON(t *testing.T) {
	tests := []struct {
		in   string
		want core.Required
	}{
		{`true`, core.RequiredFlag(true)},
		{`false`, core.RequiredFlag(false)},
		{`null`, nil},
		{`{"errorMessage":"x","alwaysRequired":true}`, core.RequiredConditional{ErrorMessage: "x", AlwaysRequired: true}},
	}

	for _, tt := range tests {
		var r Required
		if err := json.Unmarshal([]byte(tt.in), &r); err != nil {
			t.Errorf("Unmarshal(%s) error = %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, r.Value); diff != "" {
			t.Errorf("Unmarshal(%s) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}

	var r Required
	if err := json.Unmarshal([]byte(`"yes"`), &r); !errors.Is(err, ErrInvalidRequired) {
		t.Errorf("Unmarshal(\"yes\") error = %v, want ErrInvalidRequired", err)
	}
}

func TestFromGrid_RoundTrip(t *testing.T) {
	defs, err := ParseFile(filepath.Join("testdata", "customers.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	orig := defs[0]
	orig.Mapper = nil

	data, err := json.Marshal(FromGrid(&orig))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"required":true`) || !strings.Contains(string(data), `"required":{"onlyIfEmpty":["email"]}`) {
		t.Errorf("required variants not encoded: %s", data)
	}
	if strings.Contains(string(data), `"required":null`) {
		t.Errorf("unset required should be omitted: %s", data)
	}

	back, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if diff := cmp.Diff(orig, *back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	out, err := yaml.Marshal(FromGrid(&orig))
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	again, err := Parse(out, "roundtrip.yaml")
	if err != nil {
		t.Fatalf("Parse(yaml) error = %v", err)
	}
	if diff := cmp.Diff(orig, again[0]); diff != "" {
		t.Errorf("yaml round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLint(t *testing.T) {
	lo, hi := 10.0, 1.0
	grid := &core.GridDefinition{
		Key:            "lint",
		IgnoredColumns: []string{"ghost"},
		Columns: []core.ColumnConfig{
			{Key: "a", DataType: core.TypeString, Required: core.RequiredConditional{OnlyIfEmpty: []string{"zzz"}}},
			{Key: "b", DataType: core.TypeString, Validations: &core.Validations{
				RegexRules:      []core.RegexRule{{Pattern: "(", Message: "x"}},
				StringExclusion: &core.StringExclusion{ForbiddenValue: "n"},
			}},
			{Key: "c", DataType: core.TypeNumber, Validations: &core.Validations{
				NumberBoundaries: &core.NumberBoundaries{Min: &lo, Max: &hi},
				ColumnDependent: []core.DependencyRule{
					{DependentColumnKey: "missing", Kind: core.MustBeEmpty},
					{DependentColumnKey: "a", Kind: core.MustBeEmpty, SkipIf: &core.SkipCondition{ColumnKeys: []string{"nope"}}},
				},
			}},
			{Key: "d", DataType: core.TypeString, Required: core.RequiredConditional{}},
		},
	}

	issues := Lint([]*core.GridDefinition{grid})
	var got []string
	for _, is := range issues {
		got = append(got, is.String())
	}

	want := []string{
		`lint: ignored column "ghost" is not declared`,
		`lint.a: onlyIfEmpty references undeclared column "zzz"`,
		"lint.b: regex \"(\" does not compile: error parsing regexp: missing closing ): `(`",
		"lint.b: string exclusion without a message",
		"lint.c: min 10 is greater than max 1",
		`lint.c: dependency references undeclared column "missing"`,
		`lint.c: skipIf references undeclared column "nope"`,
		"lint.d: conditional required rule without onlyIfEmpty or errorMessage never reports",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lint() mismatch (-want +got):\n%s", diff)
	}

	defs, err := ParseFile(filepath.Join("testdata", "customers.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if issues := Lint([]*core.GridDefinition{&defs[0]}); len(issues) != 0 {
		t.Errorf("Lint(customers.yaml) = %v, want none", issues)
	}
}

// writeSchema writes a schema file into dir.
func writeSchema(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
