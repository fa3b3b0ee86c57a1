package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Accepted outcome, lookup answered, or all scenarios passed
	ExitFailure      = 1 // Rejected outcome (Overlap, TooBig, NotOwner, NoRegion, Denied) or failed scenario
	ExitCommandError = 2 // Bad flags, unreadable config, or a storage fault
)

// Error codes for JSON error responses.
const (
	ErrCodeStorage    = "E_STORAGE"
	ErrCodeTestFailed = "E_TEST_FAILED"
)

// Response statuses.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Report is a command result that answers with a registry outcome.
type Report interface {
	// Verdict returns the outcome name (OK, Overlap, Denied, Found, ...) and
	// whether the command should exit successfully.
	Verdict() (outcome string, accepted bool)
	// Detail is the text rendering after the outcome; empty for none.
	Detail() string
}

// CLIResponse is the JSON envelope for every command.
type CLIResponse struct {
	Status  string      `json:"status"`
	Outcome string      `json:"outcome,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *CLIError   `json:"error,omitempty"`
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// OutputFormatter writes command results as JSON or text.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // verbose output; falls back to Writer
	Verbose   bool
}

// Report writes r and returns an ExitFailure error when its outcome is a
// rejection. Text output is "<outcome>: <detail>".
func (f *OutputFormatter) Report(command string, r Report) error {
	outcome, accepted := r.Verdict()

	if f.Format == "json" {
		status := StatusOK
		if !accepted {
			status = StatusRejected
		}
		if err := json.NewEncoder(f.Writer).Encode(CLIResponse{Status: status, Outcome: outcome, Data: r}); err != nil {
			return err
		}
	} else if detail := r.Detail(); detail != "" {
		fmt.Fprintf(f.Writer, "%s: %s\n", outcome, detail)
	} else {
		fmt.Fprintln(f.Writer, outcome)
	}

	if !accepted {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", command, outcome))
	}
	return nil
}

// Success writes a result that carries no outcome (seed tallies, test runs).
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: StatusOK, Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// StorageFailure reports a storage fault from op and returns the
// ExitCommandError the command should exit with. A fault is never rendered
// as an outcome. partial, when non-nil, is progress made before the fault.
func (f *OutputFormatter) StorageFailure(op string, err error, partial interface{}) error {
	if werr := f.Error(ErrCodeStorage, err.Error(), partial); werr != nil {
		return werr
	}
	return WrapExitError(ExitCommandError, op+" failed", err)
}

// Error writes an error response.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: StatusError,
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog writes a diagnostic line when verbose mode is on. It goes to
// ErrWriter so JSON on Writer stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
