// Package core provides the grid validation and transformation engine.
//
// The package holds all data-side logic of an editable grid independent of
// any UI or transport layer. It is used by the HTTP host, the CLI and tests
// without modification.
//
// # Architecture
//
// Components, from leaf to root:
//
//   - Operator Evaluator: [Evaluate] compares two values under a named
//     operator for a data type.
//   - Type Coercion: [Coerce] for typed cells, [PasteCoerce] and
//     [ParsePaste] for clipboard text, [ReadCSV] for imports.
//   - Duplicate Detector: [FindDuplicates] groups rows by [CanonicalKey].
//   - Rule Validator: [ValidateRows] applies required, dependency, regex,
//     string exclusion, range and type rules to dirty rows.
//   - Filter Engine: [ApplyFilters] and [ApplyColumnFilters].
//   - Async boundary: [Start] runs both validation passes as a one-shot
//     [Task]; a [Tracker] discards results superseded by a newer run.
//
// # Grid Registry
//
// Grids are registered at init time using [Register] or loaded from schema
// files with [Upsert] and [ReplaceSource]. Each [GridDefinition] contains
// the column configuration needed to validate, filter and paste:
//
//	core.Register(core.GridDefinition{
//	    Key:              "customers",
//	    IdentifierColumn: "id",
//	    Columns: []core.ColumnConfig{
//	        {Key: "id", Name: "ID", DataType: core.TypeNumber},
//	        {Key: "name", Name: "Name", DataType: core.TypeString, Editable: true, Required: core.RequiredFlag(true)},
//	    },
//	})
//
// # Messages
//
// A run produces a [ResultMap] keyed by purpose (see messages.go). The two
// passes write disjoint key namespaces and are merged only after both
// finish. Data problems never surface as Go errors; a malformed rule
// degrades to "no violation".
//
// # Error Handling
//
// Errors at the boundary (unknown grid, busy limiter, stale result) are
// mapped to user-friendly messages using [MapError]. Each category has a
// code for support reference:
//
//   - GRID001-GRID002: Unknown grids and columns
//   - SCH001-SCH003: Schema documents
//   - RUN001-RUN005: Run admission, staleness and timeouts
//   - CSV001-CSV003: CSV import
//   - REQ001-REQ003, RATE001: API requests
package core
