// Package core provides the grid validation and transformation engine.
//
// # Error Codes Reference
//
// This file maps technical errors to user-friendly messages with codes for
// support reference. Error codes are grouped by category:
//
// # Grid Errors (GRID001-GRID002)
//
// These errors occur when a request names a grid or column that is not configured.
//
//	GRID001 - Grid is not configured
//	          Action: Check the grid key or reload the schema directory
//	          Pattern: "grid not found"
//
//	GRID002 - Column is not part of this grid
//	          Action: Check the column key against the grid definition
//	          Pattern: "column not found"
//
// # Schema Errors (SCH001-SCH003)
//
// These errors occur when a grid schema document cannot be loaded.
//
//	SCH001 - Grid schema could not be read
//	         Action: Fix the YAML or JSON syntax in the schema file
//	         Pattern: "invalid schema"
//
//	SCH002 - Column uses an unsupported data type
//	         Action: Use number, string, boolean or date
//	         Pattern: "unknown data type"
//
//	SCH003 - Column has an invalid required rule
//	         Action: Use true/false or an object with errorMessage and onlyIfEmpty
//	         Pattern: "invalid required"
//
// # Run Errors (RUN001-RUN005)
//
// These errors occur around a validation run rather than inside it.
//
//	RUN001 - The validator is busy
//	         Action: Please try again in a few seconds
//	         Pattern: "too many concurrent validation runs"
//
//	RUN002 - A newer validation replaced this one
//	         Action: No action needed; the latest result is shown
//	         Pattern: "superseded by a newer run"
//
//	RUN003 - Too many rows to validate at once
//	         Action: Validate the grid in smaller pages
//	         Pattern: "too many rows"
//
//	RUN004 - Validation took too long
//	         Action: Try again with fewer rows
//	         Pattern: "deadline exceeded"
//
//	RUN005 - Validation failed unexpectedly
//	         Action: Please try again or contact support
//	         Pattern: "validation run panicked"
//
// # Import Errors (CSV001-CSV003)
//
// These errors occur when importing rows from a CSV document.
//
//	CSV001 - The CSV file has no header row
//	         Action: Add a header row naming the grid columns
//	         Pattern: "csv has no header row"
//
//	CSV002 - The CSV file is too large
//	         Action: Split the file into smaller chunks
//	         Pattern: "csv exceeds maximum size"
//
//	CSV003 - No CSV column matches the grid
//	         Action: Use the grid's column keys or names as headers
//	         Pattern: "csv header matches no grid column"
//
// # Request Errors (REQ001-REQ003)
//
// These errors occur when an API request is malformed.
//
//	REQ001 - The request could not be read
//	         Action: Send a JSON body matching the API contract
//	         Pattern: "invalid request body"
//
//	REQ002 - A row has an unknown operation tag
//	         Action: Use none, insert, update, delete or custom:<n>
//	         Pattern: "unknown row operation"
//
//	REQ003 - The request is too large
//	         Action: Send fewer rows per request
//	         Pattern: "request body too large"
//
// # Rate Limiting (RATE001)
//
// These errors occur when a client sends requests too quickly.
//
//	RATE001 - Too many requests
//	          Action: Please wait a moment before trying again
//	          Pattern: "rate limit exceeded"
//
// # Fallback
//
//	ERR000 - An unexpected error occurred (check logs for the technical error)
package core

import (
	"fmt"
	"strings"
)

// UserMessage is the user-facing rendering of an error.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is searched in order; the first match wins.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Grid Errors (GRID001-GRID002)
	// =========================================================================
	{
		pattern: "grid not found",
		msg: UserMessage{
			Message: "Grid is not configured",
			Action:  "Check the grid key or reload the schema directory",
			Code:    "GRID001",
		},
	},
	{
		pattern: "column not found",
		msg: UserMessage{
			Message: "Column is not part of this grid",
			Action:  "Check the column key against the grid definition",
			Code:    "GRID002",
		},
	},

	// =========================================================================
	// Schema Errors (SCH001-SCH003)
	// The generic SCH001 pattern is last so specific causes win.
	// =========================================================================
	{
		pattern: "unknown data type",
		msg: UserMessage{
			Message: "Column uses an unsupported data type",
			Action:  "Use number, string, boolean or date",
			Code:    "SCH002",
		},
	},
	{
		pattern: "invalid required",
		msg: UserMessage{
			Message: "Column has an invalid required rule",
			Action:  "Use true/false or an object with errorMessage and onlyIfEmpty",
			Code:    "SCH003",
		},
	},
	{
		pattern: "invalid schema",
		msg: UserMessage{
			Message: "Grid schema could not be read",
			Action:  "Fix the YAML or JSON syntax in the schema file",
			Code:    "SCH001",
		},
	},

	// =========================================================================
	// Run Errors (RUN001-RUN005)
	// =========================================================================
	{
		pattern: "too many concurrent validation runs",
		msg: UserMessage{
			Message: "The validator is busy",
			Action:  "Please try again in a few seconds",
			Code:    "RUN001",
		},
	},
	{
		pattern: "superseded by a newer run",
		msg: UserMessage{
			Message: "A newer validation replaced this one",
			Action:  "No action needed; the latest result is shown",
			Code:    "RUN002",
		},
	},
	{
		pattern: "too many rows",
		msg: UserMessage{
			Message: "Too many rows to validate at once",
			Action:  "Validate the grid in smaller pages",
			Code:    "RUN003",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Validation took too long",
			Action:  "Try again with fewer rows",
			Code:    "RUN004",
		},
	},
	{
		pattern: "validation run panicked",
		msg: UserMessage{
			Message: "Validation failed unexpectedly",
			Action:  "Please try again or contact support",
			Code:    "RUN005",
		},
	},

	// =========================================================================
	// Import Errors (CSV001-CSV003)
	// =========================================================================
	{
		pattern: "csv has no header row",
		msg: UserMessage{
			Message: "The CSV file has no header row",
			Action:  "Add a header row naming the grid columns",
			Code:    "CSV001",
		},
	},
	{
		pattern: "csv exceeds maximum size",
		msg: UserMessage{
			Message: "The CSV file is too large",
			Action:  "Split the file into smaller chunks",
			Code:    "CSV002",
		},
	},
	{
		pattern: "csv header matches no grid column",
		msg: UserMessage{
			Message: "No CSV column matches the grid",
			Action:  "Use the grid's column keys or names as headers",
			Code:    "CSV003",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		pattern: "unknown row operation",
		msg: UserMessage{
			Message: "A row has an unknown operation tag",
			Action:  "Use none, insert, update, delete or custom:<n>",
			Code:    "REQ002",
		},
	},
	{
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Send a JSON body matching the API contract",
			Code:    "REQ001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The request is too large",
			Action:  "Send fewer rows per request",
			Code:    "REQ003",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit exceeded",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
// This is the fallback for unexpected errors. Support staff should check
// application logs for the original technical error when users report ERR000.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, a generic fallback message with
// code ERR000 is returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("lookup: %w", ErrGridNotFound))
//	// msg.Code == "GRID001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
//
// Example output: "The validator is busy (Code: RUN001). Please try again in a few seconds"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
// Use this to decide whether to show the raw error or the mapped user message.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
// The original error is preserved for logging while Error() stays clean.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// The returned UserError preserves the original technical error for logging via Unwrap(),
// while providing a clean user message via Error().
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
