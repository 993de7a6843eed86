// Package schemas embeds the JSON Schemas of the artifacts the service emits.
package schemas

import "embed"

// Schema file names.
const (
	FitAnalysis      = "fit_analysis.schema.json"
	Requirements     = "requirements.schema.json"
	StructuredResume = "structured_resume.schema.json"
)

// FS holds every *.schema.json file of this directory.
//
//go:embed *.schema.json
var FS embed.FS
