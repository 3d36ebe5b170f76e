package utils

import (
	"fmt"
	"strings"
)

// ErrorWithSuggestion wraps an error with a helpful suggestion for the user
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap allows errors.Is and errors.As to work
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// Common error constructors with suggestions

// ErrNotLoggedIn creates an error when an account operation needs a session
func ErrNotLoggedIn() error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("not logged in"),
		Suggestion: "Run 'timekeep login' or 'timekeep register' first",
	}
}

// ErrTaskNotFound creates an error when a task is not found
func ErrTaskNotFound(searchTerm string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("no task found matching '%s'", searchTerm),
		Suggestion: "Run 'timekeep list' to see current tasks and their ids",
	}
}

// ErrEmptyTitle creates an error for tasks created without a title
func ErrEmptyTitle() error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("task title cannot be empty"),
		Suggestion: "Provide a title, e.g. 'timekeep add \"Write report\"'",
	}
}

// ErrInvalidPriority creates an error for invalid priority values
func ErrInvalidPriority(priority string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("invalid priority %q", priority),
		Suggestion: "Priority must be one of: low, medium, high",
	}
}

// ErrInvalidDate creates an error for invalid date formats
func ErrInvalidDate(dateStr string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("invalid date format: %s", dateStr),
		Suggestion: "Use YYYY-MM-DD format (e.g., 2026-01-15)",
	}
}

// ErrInvalidMinutes creates an error for non-positive timer settings
func ErrInvalidMinutes() error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("timer minutes must be greater than 0"),
		Suggestion: "Set positive values, e.g. 'timekeep settings --focus 25 --break 5'",
	}
}

// ErrServerUnreachable creates an error when the backend cannot be reached
func ErrServerUnreachable(serverURL, reason string) error {
	suggestion := "Check your internet connection and try again"
	if strings.Contains(reason, "refused") {
		suggestion = "Check that the timekeep server is running at " + serverURL
	} else if strings.Contains(reason, "timeout") {
		suggestion = "The server may be slow or unreachable. Try again later"
	}

	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("server unreachable: %s", reason),
		Suggestion: suggestion,
	}
}

// ErrAuthenticationFailed creates an error when login is rejected
func ErrAuthenticationFailed(reason string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("authentication failed: %s", reason),
		Suggestion: "Check your email and password, or register a new account with 'timekeep register'",
	}
}

// ErrInvalidConfig creates an error for invalid configuration
func ErrInvalidConfig(field string, reason string) error {
	return &ErrorWithSuggestion{
		Err:        fmt.Errorf("invalid configuration for '%s': %s", field, reason),
		Suggestion: fmt.Sprintf("Check ~/.config/timekeep/config.yaml and fix the '%s' field", field),
	}
}

// WrapWithSuggestion wraps an existing error with a suggestion
func WrapWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}
