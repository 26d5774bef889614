package weather

import (
	"errors"
	"fmt"
)

// NetworkError means the provider could not be reached or did not answer
// usefully (transport failure, timeout, open circuit, 5xx).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NotFoundError means the provider answered but knows no matching location.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("location %q not found", e.Query)
}

// MalformedResponseError means the provider's payload did not match the
// expected shape.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// UserMessage turns a client failure into text fit for the error display.
func UserMessage(err error) string {
	var (
		nf *NotFoundError
		ne *NetworkError
		me *MalformedResponseError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &nf):
		return "City not found"
	case errors.As(err, &ne):
		return "Weather service is unreachable, please try again"
	case errors.As(err, &me):
		return "Weather service returned unexpected data"
	default:
		return "Something went wrong while loading the weather"
	}
}
