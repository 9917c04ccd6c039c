package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, 0) or with an explicit status
//  3. Status is derived from the error when not given
//  4. Error is mapped via core.MapError to a user message with a code
//  5. Technical error is logged with the request id; the user message is
//     rendered as JSON, an HTMX partial or plain text

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/gridcheck/internal/core"
	"github.com/JonMunkholm/gridcheck/internal/logging"
	"github.com/JonMunkholm/gridcheck/internal/schema"
	"github.com/JonMunkholm/gridcheck/internal/web/templates"
)

var (
	// errInvalidBody maps to REQ001.
	errInvalidBody = errors.New("invalid request body")

	// errBodyTooLarge maps to REQ003.
	errBodyTooLarge = errors.New("request body too large")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for an engine error.
func statusFor(err error) int {
	var decodeErr *schema.DecodeError
	switch {
	case errors.Is(err, core.ErrGridNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrColumnNotFound), errors.As(err, &decodeErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrStaleResult):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyRuns):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrTooManyRows), errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err server-side and returns a user-friendly message.
// A zero statusCode derives the status from err.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	if statusCode == 0 {
		statusCode = statusFor(err)
	}
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Debug("request error", args...)
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, userMsg, statusCode)
	case wantsJSON(r):
		writeJSON(w, r, statusCode, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
	default:
		http.Error(w, core.FormatUserError(err), statusCode)
	}
}

// renderErrorPartial renders an HTMX-compatible error fragment.
func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error partial", "error", err)
	}
}

// isHTMX checks if the request is an HTMX request.
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
