package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "wrapped grid not found",
			err:         fmt.Errorf("lookup: %w", ErrGridNotFound),
			wantCode:    "GRID001",
			wantMessage: "Grid is not configured",
		},
		{
			name:        "column not found",
			err:         fmt.Errorf("%w: customers.zip", ErrColumnNotFound),
			wantCode:    "GRID002",
			wantMessage: "Column is not part of this grid",
		},
		{
			name:        "busy limiter",
			err:         ErrTooManyRuns,
			wantCode:    "RUN001",
			wantMessage: "The validator is busy",
		},
		{
			name:        "stale result",
			err:         ErrStaleResult,
			wantCode:    "RUN002",
			wantMessage: "A newer validation replaced this one",
		},
		{
			name:        "run timeout",
			err:         fmt.Errorf("validation run x: %w", context.DeadlineExceeded),
			wantCode:    "RUN004",
			wantMessage: "Validation took too long",
		},
		{
			name:        "csv without header",
			err:         ErrCSVEmpty,
			wantCode:    "CSV001",
			wantMessage: "The CSV file has no header row",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "RATE001",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("GRID NOT FOUND: orders"),
			wantCode:    "GRID001",
			wantMessage: "Grid is not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrTooManyRuns)

	expected := "The validator is busy (Code: RUN001). Please try again in a few seconds"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error is not user facing", nil, false},
		{"known error is user facing", ErrTooManyRows, true},
		{"unknown error is not user facing", errors.New("random internal error xyz"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("lookup: %w", ErrGridNotFound)
		userErr := NewUserError(techErr)

		if userErr.Error() != "Grid is not configured" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, ErrGridNotFound) {
			t.Error("Unwrap() should expose the original error")
		}
	})
}
