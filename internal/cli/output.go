package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Lookup or evaluation failure, failed doctor checks
	ExitCommandError = 2 // Command error (bad flags, unreadable config or batch file)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
	Silent  bool   // Already reported to the user; Execute prints nothing
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

// NewSilentExit creates an ExitError for a failure the command has already
// reported.
func NewSilentExit(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message, Silent: true}
}

// IsSilent reports whether err is an ExitError that was already reported.
func IsSilent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Silent
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Error codes in structured output.
const (
	CodeEmptyQuery   = "E001"
	CodeNotFound     = "E002"
	CodeSolveFailed  = "E003"
	CodeChecksFailed = "E004"
	CodeBadInput     = "E005"
)

// OutputFormatter renders command results as text, JSON or YAML.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for diagnostic output (defaults to Writer)
	Verbose   bool
	RequestID string
}

// CLIResponse is the standard structured response.
type CLIResponse struct {
	Status    string      `json:"status" yaml:"status"` // "ok" or "error"
	Data      interface{} `json:"data,omitempty" yaml:"data,omitempty"`
	Error     *CLIError   `json:"error,omitempty" yaml:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty" yaml:"request_id,omitempty"`
}

// CLIError is the error structure for structured responses.
type CLIError struct {
	Code    string      `json:"code" yaml:"code"`                           // "E001", "E002", etc.
	Message string      `json:"message" yaml:"message"`                     // human-readable message
	Details interface{} `json:"details,omitempty" yaml:"details,omitempty"` // additional context
}

// Success outputs data in the structured formats and text otherwise.
func (f *OutputFormatter) Success(data interface{}, text string) error {
	if f.structured() {
		return f.encode(CLIResponse{Status: "ok", Data: data, RequestID: f.RequestID})
	}
	_, err := fmt.Fprint(f.Writer, text)
	return err
}

// Error outputs an error in the configured format. Text errors go to
// ErrWriter.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.structured() {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
			RequestID: f.RequestID,
		})
	}

	w := f.GetErrWriter()
	fmt.Fprintln(w, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(w, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) structured() bool {
	return f.Format == "json" || f.Format == "yaml"
}

func (f *OutputFormatter) encode(v interface{}) error {
	if f.Format == "yaml" {
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
