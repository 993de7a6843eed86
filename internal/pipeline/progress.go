package pipeline

import "github.com/jonathan/resume-fit/internal/pipeline/steps"

// ProgressEvent represents a progress update during an analysis
type ProgressEvent struct {
	Step       string `json:"step"`
	Category   string `json:"category"`
	Message    string `json:"message"`
	AnalysisID string `json:"analysis_id,omitempty"`
	Content    any    `json:"content,omitempty"`
}

// ProgressCallback is called when analysis progress occurs. Calls may come
// from concurrent steps.
type ProgressCallback func(event ProgressEvent)

// emitProgress calls the progress callback if configured
func emitProgress(cb ProgressCallback, analysisID, step, message string, content any) {
	if cb != nil {
		cb(ProgressEvent{
			Step:       step,
			Category:   steps.Category(step),
			Message:    message,
			AnalysisID: analysisID,
			Content:    content,
		})
	}
}
