package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/JonMunkholm/gridcheck/internal/core"
	"github.com/JonMunkholm/gridcheck/internal/schema"
	"github.com/JonMunkholm/gridcheck/internal/web/templates"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/hashicorp/go-set/v2"
)

// decodeJSON reads a size-limited JSON body into v.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if limit := s.cfg.Server.MaxBodyBytes; limit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, limit)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: limit %d bytes", errBodyTooLarge, maxErr.Limit)
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errInvalidBody)
		}
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	return nil
}

// handleIndex renders the registered grids.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	templ.Handler(templates.GridList(s.service.Grids())).ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status": "ok",
		"grids":  core.GridCount(),
	})
}

// handleListGrids returns every registered grid in schema form.
func (s *Server) handleListGrids(w http.ResponseWriter, r *http.Request) {
	grids := s.service.Grids()
	out := make([]schema.Grid, 0, len(grids))
	for _, g := range grids {
		out = append(out, schema.FromGrid(g))
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleGetGrid returns one grid in schema form.
func (s *Server) handleGetGrid(w http.ResponseWriter, r *http.Request) {
	grid, err := s.service.Grid(chi.URLParam(r, "gridKey"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, schema.FromGrid(grid))
}

type validateRequest struct {
	Grid  json.RawMessage `json:"grid,omitempty"`
	Rows  []core.Row      `json:"rows"`
	Dirty *bool           `json:"dirty,omitempty"`
}

// dirty defaults to true; a caller validates because something changed.
func (req validateRequest) dirty() bool {
	return req.Dirty == nil || *req.Dirty
}

type validateResponse struct {
	Grid string `json:"grid"`
	core.RunResult
}

// handleValidate runs both validation passes over a registered grid.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	gridKey := chi.URLParam(r, "gridKey")

	var req validateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	res, err := s.service.Validate(r.Context(), gridKey, req.Rows, req.dirty())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.writeRunResult(w, r, gridKey, res)
}

// handleValidateInline validates rows against a grid sent in the request.
// The grid is not registered.
func (s *Server) handleValidateInline(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	if len(req.Grid) == 0 {
		s.respondError(w, r, fmt.Errorf("%w: grid is required", errInvalidBody), 0)
		return
	}

	grid, err := schema.ParseJSON(req.Grid)
	if err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	res, err := s.service.ValidateGrid(r.Context(), grid, req.Rows, req.dirty())
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.writeRunResult(w, r, grid.Key, res)
}

func (s *Server) writeRunResult(w http.ResponseWriter, r *http.Request, gridKey string, res core.RunResult) {
	if isHTMX(r) {
		templ.Handler(templates.ValidationReport(gridKey, res)).ServeHTTP(w, r)
		return
	}
	writeJSON(w, r, http.StatusOK, validateResponse{Grid: gridKey, RunResult: res})
}

type columnFilterRequest struct {
	Column        string   `json:"column"`
	IsApplied     *bool    `json:"isApplied,omitempty"`
	CheckedValues []string `json:"checkedValues"`
}

func (c columnFilterRequest) toCore() core.ColumnFilter {
	return core.ColumnFilter{
		Column:        c.Column,
		IsApplied:     c.IsApplied == nil || *c.IsApplied,
		CheckedValues: set.From(c.CheckedValues),
	}
}

type filterRequest struct {
	Rows          []core.Row            `json:"rows"`
	Filters       []core.FilterSpec     `json:"filters"`
	ColumnFilters []columnFilterRequest `json:"columnFilters"`
}

// handleFilter evaluates the predicate list and the column filters.
func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	columnFilters := make([]core.ColumnFilter, 0, len(req.ColumnFilters))
	for _, cf := range req.ColumnFilters {
		columnFilters = append(columnFilters, cf.toCore())
	}

	res, err := s.service.Filter(chi.URLParam(r, "gridKey"), req.Rows, req.Filters, columnFilters)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

type pasteCellRequest struct {
	Column           string `json:"column"`
	Text             string `json:"text"`
	AllowNonEditable bool   `json:"allowNonEditable,omitempty"`
}

// handlePasteCell coerces pasted text for one cell.
func (s *Server) handlePasteCell(w http.ResponseWriter, r *http.Request) {
	var req pasteCellRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	value, err := s.service.PasteCell(chi.URLParam(r, "gridKey"), req.Column, req.Text, req.AllowNonEditable)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"column": req.Column,
		"value":  value,
	})
}

type pasteRowsRequest struct {
	Text             string `json:"text"`
	StartColumn      string `json:"startColumn,omitempty"`
	AllowNonEditable bool   `json:"allowNonEditable,omitempty"`
}

// handlePasteRows parses clipboard text into insert rows.
func (s *Server) handlePasteRows(w http.ResponseWriter, r *http.Request) {
	var req pasteRowsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	rows, err := s.service.PasteRows(chi.URLParam(r, "gridKey"), req.Text, req.StartColumn, req.AllowNonEditable)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"rows":  rows,
		"count": len(rows),
	})
}

// handleExportText renders rows as tab-separated clipboard text.
func (s *Server) handleExportText(w http.ResponseWriter, r *http.Request) {
	grid, err := s.service.Grid(chi.URLParam(r, "gridKey"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	var req struct {
		Rows []core.Row `json:"rows"`
	}
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, core.RowsText(grid, req.Rows))
}

// handleStatus reports limiter usage and the registry size.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"runs":  s.service.Status(),
		"grids": core.GridCount(),
	})
}

// handleForgetSession drops the run tracker of the caller's session.
func (s *Server) handleForgetSession(w http.ResponseWriter, r *http.Request) {
	s.service.ForgetSession(core.SessionFromContext(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

type reloadResponse struct {
	Files   int      `json:"files"`
	Grids   int      `json:"grids"`
	Removed []string `json:"removed,omitempty"`
}

// handleReloadSchemas reloads the schema directory.
func (s *Server) handleReloadSchemas(w http.ResponseWriter, r *http.Request) {
	res, err := s.opts.Schemas.Load()
	if s.opts.OnReload != nil {
		s.opts.OnReload(res, err)
	}
	if err != nil {
		s.respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, r, http.StatusOK, reloadResponse{Files: res.Files, Grids: res.Grids, Removed: res.Removed})
}
