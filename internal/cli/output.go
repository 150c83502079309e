package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/five82/shopsync/internal/basket"
	"github.com/five82/shopsync/internal/eshop"
	"github.com/five82/shopsync/internal/model"
	"github.com/five82/shopsync/internal/orders"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Backend unreachable or request rejected
	ExitCommandError = 2 // Command error (bad arguments, unknown item, invalid config)
)

// Error codes reported in JSON output.
const (
	CodeTransport = "E_TRANSPORT"
	CodeRejected  = "E_REJECTED"
	CodeUsage     = "E_USAGE"
	CodeFailed    = "E_FAILED"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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

// classify maps a controller error to an exit code and a JSON error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, basket.ErrUnknownItem),
		errors.Is(err, orders.ErrUnknownOrder),
		errors.Is(err, model.ErrMinimumQuantity):
		return ExitCommandError, CodeUsage
	case eshop.IsTransport(err):
		return ExitFailure, CodeTransport
	case eshop.IsRejected(err):
		return ExitFailure, CodeRejected
	default:
		return ExitFailure, CodeFailed
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`    // E_TRANSPORT, E_REJECTED, ...
	Message string `json:"message"` // human-readable message
}

// textWriter is implemented by payloads with a human-readable rendering.
type textWriter interface {
	writeText(w io.Writer) error
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	if tw, ok := data.(textWriter); ok {
		return tw.writeText(f.Writer)
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Fail reports err in the configured format and returns the matching
// ExitError. Text mode leaves the message to the caller of Execute.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, errCode := classify(err)
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    errCode,
				Message: fmt.Sprintf("%s: %v", message, err),
			},
		})
	}
	return WrapExitError(code, message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
