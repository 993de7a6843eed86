package llm

import (
	"errors"
	"fmt"
	"time"
)

// TimeoutError reports an oracle call that exceeded its own deadline.
type TimeoutError struct {
	Task    Task
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("oracle call %s timed out after %s", e.Task, e.Timeout)
}

// OracleError reports a failed oracle call.
type OracleError struct {
	Task    Task
	Message string
	Cause   error
}

func (e *OracleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("oracle call %s failed: %s: %v", e.Task, e.Message, e.Cause)
	}
	return fmt.Sprintf("oracle call %s failed: %s", e.Task, e.Message)
}

func (e *OracleError) Unwrap() error {
	return e.Cause
}

// ShapeError reports a response that could not be normalized into JSON.
type ShapeError struct {
	Task    Task
	Preview string
	Cause   error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("oracle call %s returned malformed JSON: %v", e.Task, e.Cause)
}

func (e *ShapeError) Unwrap() error {
	return e.Cause
}

// IsTimeout reports whether err is an oracle timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// EmptyResponseError reports a provider response that carried no text.
type EmptyResponseError struct {
	Reason string
}

func (e *EmptyResponseError) Error() string {
	return "empty oracle response: " + e.Reason
}
