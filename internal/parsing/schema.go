package parsing

import "github.com/jonathan/resume-fit/internal/llm"

// resumeSchema is the shape requested from the resume structuring call.
var resumeSchema = llm.SchemaHint{
	Name: "structured_resume",
	Fields: []llm.SchemaField{
		{Name: "summary", Type: "string", Description: "Professional summary, verbatim"},
		{Name: "experience", Type: `[{"title": string, "company": string, "location": string, "start_date": string, "end_date": string, "bullets": [string]}]`, Description: "Every role, most recent first", Required: true},
		{Name: "projects", Type: `[{"name": string, "technologies": [string], "bullets": [string]}]`},
		{Name: "education", Type: `[{"degree": string, "institution": string, "field": string, "graduation_date": string, "details": [string]}]`, Required: true},
		{Name: "skills", Type: `[string]`},
		{Name: "certifications", Type: `[string]`},
		{Name: "achievements", Type: `[string]`},
	},
}

// requirementsSchema is the shape requested from the requirement extraction call.
var requirementsSchema = llm.SchemaHint{
	Name:    "requirements",
	ListKey: "requirements",
	Fields: []llm.SchemaField{
		{Name: "text", Type: "string", Description: "The requirement, close to the posting's wording", Required: true},
		{Name: "category", Type: `"required" | "preferred" | "nice_to_have"`, Required: true},
		{Name: "importance", Type: `"critical" | "high" | "medium" | "low"`, Required: true},
		{Name: "type", Type: `"technical_skill" | "soft_skill" | "experience" | "education" | "certification" | "tool" | "other"`, Required: true},
	},
}
