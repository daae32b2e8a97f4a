package core

import "github.com/pkg/errors"

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// UpstreamError reports a failed call to an external system (Google APIs, language model...).
// Op is a human readable description of what failed, Err the original cause.
type UpstreamError struct {
	Op  string
	Err error
}

func NewUpstreamError(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

func (err *UpstreamError) Error() string {
	if err.Err == nil {
		return err.Op
	}
	return err.Op + ": " + err.Err.Error()
}

func (err *UpstreamError) Unwrap() error { return err.Err }

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
