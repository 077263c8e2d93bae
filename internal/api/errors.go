package api

import (
	"errors"
	"fmt"
)

// NetworkError reports a transport or decoding failure of one remote call:
// the request could not be sent, the connection broke, the status code was
// unacceptable for the endpoint, or the body was not the expected JSON.
type NetworkError struct {
	Op     string // endpoint, e.g. "POST /register"
	Status int    // HTTP status when a response arrived, else 0
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err is (or wraps) a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

var (
	errStatus    = errors.New("unexpected status")
	errMalformed = errors.New("malformed response body")
)
