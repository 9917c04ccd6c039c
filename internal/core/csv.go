package core

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxCSVBytes bounds the size of an imported CSV document.
const MaxCSVBytes = 32 << 20

var (
	ErrCSVEmpty          = errors.New("csv has no header row")
	ErrCSVTooLarge       = errors.New("csv exceeds maximum size")
	ErrNoMatchingColumns = errors.New("csv header matches no grid column")
)

// ReadCSV imports a header-indexed CSV document as Insert rows.
//
// The first non-blank record is the header. Header cells are matched
// case-insensitively against column keys and display names; unmatched
// header cells are ignored. Blank lines are skipped and every cell is
// converted with Coerce. The document is decoded as it is read.
func ReadCSV(r io.Reader, grid *GridDefinition) ([]Row, error) {
	cr := csv.NewReader(newCSVSource(r, MaxCSVBytes))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	var positions map[string]int
	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if errors.Is(err, ErrCSVTooLarge) {
			return nil, ErrCSVTooLarge
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
		if isEmptyRecord(rec) {
			continue
		}

		if positions == nil {
			positions = columnPositions(MakeHeaderIndex(rec), grid)
			if len(positions) == 0 {
				return nil, ErrNoMatchingColumns
			}
			continue
		}

		values := make(map[string]any, len(positions))
		for key, pos := range positions {
			col, _ := grid.Column(key)
			if pos >= len(rec) {
				values[key] = nil
				continue
			}
			values[key] = Coerce(col.DataType, CleanCell(rec[pos]))
		}
		rows = append(rows, Row{Op: Insert, Values: values})
	}

	if positions == nil {
		return nil, ErrCSVEmpty
	}
	if rows == nil {
		rows = []Row{}
	}
	return rows, nil
}

// columnPositions resolves each grid column to its CSV position.
func columnPositions(idx HeaderIndex, grid *GridDefinition) map[string]int {
	positions := make(map[string]int, len(grid.Columns))
	for _, col := range grid.Columns {
		if pos, ok := idx[strings.ToLower(col.Key)]; ok {
			positions[col.Key] = pos
			continue
		}
		if pos, ok := idx[strings.ToLower(col.Name)]; ok && col.Name != "" {
			positions[col.Key] = pos
		}
	}
	return positions
}

func isEmptyRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
