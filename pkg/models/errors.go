package models

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedLogLine = errors.New("malformed log line")
	ErrMissingLogFile   = errors.New("missing log file")
	ErrLengthMismatch   = errors.New("length mismatch")
	ErrConfiguration    = errors.New("configuration error")
)

// MalformedLogLineError reports the first line of a log file that could not be parsed.
type MalformedLogLineError struct {
	Path   string
	Line   int // 1-based
	Text   string
	Reason string
	Err    error
}

func (e *MalformedLogLineError) Error() string {
	msg := fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg + fmt.Sprintf(" (line %q)", e.Text)
}

func (e *MalformedLogLineError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedLogLine}
	}
	return []error{ErrMalformedLogLine, e.Err}
}

// MissingLogFileError reports a run whose log file does not exist.
type MissingLogFileError struct {
	Path     string
	RunIndex int
}

func (e *MissingLogFileError) Error() string {
	return fmt.Sprintf("run %d: log file %s does not exist", e.RunIndex, e.Path)
}

func (e *MissingLogFileError) Unwrap() error { return ErrMissingLogFile }

// LengthMismatchError reports two series that must be equally long but are not.
type LengthMismatchError struct {
	What     string
	Expected int
	Actual   int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%s: expected %d values, got %d", e.What, e.Expected, e.Actual)
}

func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }

// ConfigurationError reports an invalid evaluation setting.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }
