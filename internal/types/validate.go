package types

import "github.com/go-playground/validator/v10"

// validate is shared; validator caches struct metadata and is safe for concurrent use.
var validate = validator.New()

// Validate checks the requirement's text and enum tags.
func (r Requirement) Validate() error {
	return validate.Struct(r)
}

// Validate checks the job posting fields.
func (j JobPosting) Validate() error {
	return validate.Struct(j)
}

// Validate checks the request, including the nested job posting.
func (r *AnalysisRequest) Validate() error {
	return validate.Struct(r)
}
