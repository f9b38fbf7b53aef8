// Package errors tags pubfig failures with a machine-readable [Code].
//
// The render server maps codes to HTTP statuses. The data loader uses
// DATA_UNAVAILABLE to decide when to fall back instead of failing.
//
//	err := errors.New(errors.ErrCodeInvalidStyle, "scale ratio %g outside (0, 1]", r)
//	err = errors.Wrap(errors.ErrCodeRenderFailure, err, "encode %s", path)
//	errors.Is(err, errors.ErrCodeInvalidStyle) // true: Is walks the whole chain
package errors

import (
	"errors"
	"fmt"
)

// Code is a stable, upper-snake-case failure class.
type Code string

const (
	// Rejected input: bad options, files, flags or config.
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle  Code = "INVALID_STYLE"
	ErrCodeInvalidKind   Code = "INVALID_KIND"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Missing data. DATA_UNAVAILABLE is recovered by the loader.
	ErrCodeDataUnavailable Code = "DATA_UNAVAILABLE"
	ErrCodeNotFound        Code = "NOT_FOUND"

	// Fatal while drawing or fitting.
	ErrCodeRenderFailure     Code = "RENDER_FAILURE"
	ErrCodeNumericDegeneracy Code = "NUMERIC_DEGENERACY"

	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Error formats as "CODE: message[: cause]".
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error with cause attached.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err carries the given error code anywhere in its chain.
// A RENDER_FAILURE wrapping an INVALID_STYLE matches both codes.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode returns the outermost code in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage is the outermost coded message without its code, or
// err.Error() for uncoded errors.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Fatal reports whether err must abort the run. Everything except
// DATA_UNAVAILABLE is fatal; missing data is recovered by falling back.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	return GetCode(err) != ErrCodeDataUnavailable
}
