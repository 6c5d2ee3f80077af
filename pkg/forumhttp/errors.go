package forumhttp

import (
	"errors"
	"net/http"
)

// HTTPError is an error carrying the response status it should produce.
type HTTPError interface {
	error
	StatusCode() int
}

// StatusError attaches a status to an error returned by a UserFunc,
// DataFunc or Renderer. A zero Code means 500.
type StatusError struct {
	Code int
	Err  error
}

// NewStatusError wraps err with code.
func NewStatusError(code int, err error) StatusError {
	return StatusError{Code: code, Err: err}
}

func (e StatusError) Error() string {
	if e.Err == nil {
		return http.StatusText(e.StatusCode())
	}
	return e.Err.Error()
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code > 0 {
		return e.Code
	}
	return http.StatusInternalServerError
}

// statusOf returns the status carried by err, fallback when there is none.
func statusOf(err error, fallback int) int {
	var httpErr HTTPError
	if !errors.As(err, &httpErr) || httpErr == nil {
		return fallback
	}
	if code := httpErr.StatusCode(); code > 0 {
		return code
	}
	return fallback
}
