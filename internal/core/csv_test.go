package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestReadCSV(t *testing.T) {
	grid := customerGrid()
	input := "\ufeffID,Name,active,Amount,Ignored\n" +
		"1,Ada,yes,\"1,250.50\",x\n" +
		"\n" +
		"2,=\"Grace\",no,abc\n"

	rows, err := ReadCSV(strings.NewReader(input), grid)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}

	first := rows[0]
	if first.Op != Insert {
		t.Errorf("rows[0].Op = %v, want insert", first.Op)
	}
	if first.Values["id"] != 1.0 {
		t.Errorf("rows[0].id = %#v, want 1", first.Values["id"])
	}
	if first.Values["amount"] != 1250.5 {
		t.Errorf("rows[0].amount = %#v, want 1250.5", first.Values["amount"])
	}
	if first.Values["active"] != true {
		t.Errorf("rows[0].active = %#v, want true", first.Values["active"])
	}
	if _, ok := first.Values["email"]; ok {
		t.Error("columns missing from the header should not be set")
	}

	second := rows[1]
	if second.Values["name"] != "Grace" {
		t.Errorf("rows[1].name = %#v, want Grace", second.Values["name"])
	}
	if second.Values["amount"] != "abc" {
		t.Errorf("rows[1].amount = %#v, want raw text", second.Values["amount"])
	}
}

func TestReadCSV_ShortRecord(t *testing.T) {
	grid := customerGrid()
	rows, err := ReadCSV(strings.NewReader("id,start\n3\n"), grid)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if v, ok := rows[0].Values["start"]; !ok || v != nil {
		t.Errorf("missing trailing cell = %#v (%v), want nil", v, ok)
	}
}

func TestReadCSV_Dates(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader("start\n2024-05-01\nsoon\n"), customerGrid())
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if _, ok := rows[0].Values["start"].(time.Time); !ok {
		t.Errorf("rows[0].start = %#v, want time.Time", rows[0].Values["start"])
	}
	if _, ok := rows[1].Values["start"].(InvalidDate); !ok {
		t.Errorf("rows[1].start = %#v, want InvalidDate", rows[1].Values["start"])
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrCSVEmpty},
		{"only blank lines", "\n , \n", ErrCSVEmpty},
		{"no matching header", "foo,bar\n1,2\n", ErrNoMatchingColumns},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input), customerGrid())
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadCSV() error = %v, want %v", err, tt.want)
			}
		})
	}
}
