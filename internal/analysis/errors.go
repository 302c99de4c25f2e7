package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyResponse is returned when a hosted model answers without content.
var ErrEmptyResponse = errors.New("the model returned an empty response")

// InvalidMethodError is returned when a method key is not registered for a task.
type InvalidMethodError struct {
	Method string
	Valid  []string
}

func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("invalid method %q. Choose from: %s", e.Method, strings.Join(e.Valid, ", "))
}

// UnavailableError is returned when a method's backend failed to initialize.
type UnavailableError struct {
	Method string
	Label  string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s is not available", e.Label)
	}
	return fmt.Sprintf("%s is not available: %v", e.Label, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// IsUnavailable reports whether err (or anything it wraps) is an UnavailableError.
func IsUnavailable(err error) bool {
	var u *UnavailableError
	return errors.As(err, &u)
}

// IsInvalidMethod reports whether err (or anything it wraps) is an InvalidMethodError.
func IsInvalidMethod(err error) bool {
	var inv *InvalidMethodError
	return errors.As(err, &inv)
}
