// Package steps provides step definitions and dependency validation for the
// fit analysis pipeline.
package steps

import (
	"fmt"
	"sort"
	"sync"
)

// Step categories, used to group progress events.
const (
	CategoryParsing  = "parsing"
	CategoryMatching = "matching"
	CategoryEditing  = "editing"
	CategoryResult   = "result"
)

// Step names.
const (
	StepValidateRequest     = "validate_request"
	StepCacheLookup         = "cache_lookup"
	StepStructureResume     = "structure_resume"
	StepExtractRequirements = "extract_requirements"
	StepFlattenBullets      = "flatten_bullets"
	StepMatchRequirements   = "match_requirements"
	StepScoreFit            = "score_fit"
	StepGenerateEdits       = "generate_edits"
	StepSummarize           = "summarize"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	StepValidateRequest: {
		Name:     StepValidateRequest,
		Category: CategoryParsing,
	},
	StepCacheLookup: {
		Name:         StepCacheLookup,
		Category:     CategoryResult,
		Dependencies: []string{StepValidateRequest},
	},
	StepStructureResume: {
		Name:         StepStructureResume,
		Category:     CategoryParsing,
		Dependencies: []string{StepValidateRequest},
	},
	StepExtractRequirements: {
		Name:         StepExtractRequirements,
		Category:     CategoryParsing,
		Dependencies: []string{StepValidateRequest},
	},
	StepFlattenBullets: {
		Name:         StepFlattenBullets,
		Category:     CategoryMatching,
		Dependencies: []string{StepStructureResume},
	},
	StepMatchRequirements: {
		Name:         StepMatchRequirements,
		Category:     CategoryMatching,
		Dependencies: []string{StepFlattenBullets, StepExtractRequirements},
	},
	StepScoreFit: {
		Name:         StepScoreFit,
		Category:     CategoryMatching,
		Dependencies: []string{StepMatchRequirements},
	},
	StepGenerateEdits: {
		Name:         StepGenerateEdits,
		Category:     CategoryEditing,
		Dependencies: []string{StepMatchRequirements},
	},
	StepSummarize: {
		Name:         StepSummarize,
		Category:     CategoryResult,
		Dependencies: []string{StepScoreFit, StepGenerateEdits},
	},
}

// Category returns the category of a step, or "" for unknown steps.
func Category(stepName string) string {
	return StepRegistry[stepName].Category
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// ValidateDependencies checks if all required dependencies for a step are completed
func ValidateDependencies(completed map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}
	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// Tracker records the completed steps of one analysis. It is safe for
// concurrent use by steps running in parallel.
type Tracker struct {
	mu        sync.Mutex
	completed map[string]bool
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{completed: make(map[string]bool)}
}

// Begin validates that a step's dependencies have completed.
func (t *Tracker) Begin(stepName string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return ValidateDependencies(t.completed, stepName)
}

// Complete marks a step as completed.
func (t *Tracker) Complete(stepName string) {
	t.mu.Lock()
	t.completed[stepName] = true
	t.mu.Unlock()
}

// Completed returns the completed steps in name order.
func (t *Tracker) Completed() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.completed))
	for name := range t.completed {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AvailableSteps returns steps whose dependencies are met and that have not completed.
func (t *Tracker) AvailableSteps() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var available []string
	for name := range StepRegistry {
		if t.completed[name] {
			continue
		}
		if ValidateDependencies(t.completed, name) == nil {
			available = append(available, name)
		}
	}
	sort.Strings(available)
	return available
}
