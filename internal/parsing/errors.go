package parsing

import "fmt"

// ExtractionError describes a failed oracle-backed extraction. Callers degrade
// instead of failing the analysis; the error is logged and surfaced as a flag.
type ExtractionError struct {
	Stage   string
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s failed: %s", e.Stage, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ValidationError represents an error during post-processing validation
type ValidationError struct {
	Message string
	Field   string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}
