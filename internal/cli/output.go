package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

const (
	ExitSuccess      = 0
	ExitFailure      = 1 // the inputs were read but do not describe a valid query
	ExitCommandError = 2 // bad flags or unreadable files
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

var ValidFormats = []string{FormatText, FormatJSON}

// ExitError carries the process exit code of a failed command.
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

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from err. Errors raised by cobra itself,
// such as unknown flags, are command errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitCommandError
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return WrapExitError(ExitFailure, "failed to encode output", err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}
