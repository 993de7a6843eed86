// Package types provides type definitions for structured data used throughout the fit analysis pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// JobPosting is a pre-fetched job posting supplied by the caller.
// Description is plain text (or pasted HTML, which is stripped before use).
type JobPosting struct {
	Title       string `json:"title" validate:"max=300"`
	Company     string `json:"company" validate:"max=300"`
	Location    string `json:"location,omitempty" validate:"max=300"`
	URL         string `json:"url,omitempty" validate:"omitempty,url"`
	Description string `json:"description" validate:"required,max=200000"`
}

// AnalysisRequest is the input of a single fit analysis.
type AnalysisRequest struct {
	ResumeText string            `json:"resume_text" validate:"max=200000"`
	Resume     *StructuredResume `json:"resume,omitempty"`
	Job        JobPosting        `json:"job" validate:"required"`
}
