package editing

import "fmt"

// ProposeError is a failed or unusable edit proposal from the oracle.
type ProposeError struct {
	Message string
	Cause   error
}

func (e *ProposeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("edit proposal error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("edit proposal error: %s", e.Message)
}

func (e *ProposeError) Unwrap() error {
	return e.Cause
}

// ApplyError is an edit that could not be anchored in the resume text.
type ApplyError struct {
	EditID  string
	Message string
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("edit apply error (%s): %s", e.EditID, e.Message)
}
