package validation

import (
	"fmt"
	"strings"
)

// GuardrailError is a hard failure of the output gate. It is always returned
// to the caller and never replaced by degraded output.
type GuardrailError struct {
	Stage    string
	Message  string
	Sections []string
}

func (e *GuardrailError) Error() string {
	if len(e.Sections) > 0 {
		return fmt.Sprintf("guardrail %s failed: %s (sections: %s)", e.Stage, e.Message, strings.Join(e.Sections, ", "))
	}
	return fmt.Sprintf("guardrail %s failed: %s", e.Stage, e.Message)
}
