package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/pipeline"
	"github.com/jonathan/resume-fit/internal/types"
)

// maxResumeChars bounds the resume text accepted by /resume/structure.
const maxResumeChars = 200000

// StructureRequest is the body of POST /resume/structure.
type StructureRequest struct {
	ResumeText string                  `json:"resume_text"`
	Prior      *types.StructuredResume `json:"prior,omitempty"`
}

// StructureResponse is the body returned by POST /resume/structure.
type StructureResponse struct {
	Resume            types.StructuredResume `json:"resume"`
	ParseIncomplete   bool                   `json:"parse_incomplete"`
	MissingSections   []string               `json:"missing_sections"`
	StructuringFailed bool                   `json:"structuring_failed"`
	FromCache         bool                   `json:"from_cache"`
}

// RequirementsResponse is the body returned by POST /requirements.
type RequirementsResponse struct {
	Requirements     []types.Requirement `json:"requirements"`
	ExtractionFailed bool                `json:"extraction_failed"`
	NoRequirements   bool                `json:"no_requirements"`
	FromCache        bool                `json:"from_cache"`
	Discarded        int                 `json:"discarded"`
}

// decodeBody reads a size-limited JSON body into dst.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// failure writes err with the status it maps to.
func (s *Server) failure(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	s.jsonResponse(w, status, map[string]string{
		"error": err.Error(),
		"code":  errorCode(err),
	})
}

// handleAnalyze runs a complete analysis and returns the FitAnalysis.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req types.AnalysisRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}

	analysis, err := s.deps.Analyzer.Analyze(r.Context(), req, nil)
	if err != nil {
		s.failure(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, analysis)
}

// handleAnalyzeStream runs an analysis and streams progress via SSE. The
// final event is either "complete" carrying the FitAnalysis or "error".
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	var req types.AnalysisRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.failure(w, r, &pipeline.RequestError{Message: "validation failed", Cause: err})
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	onProgress := func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(eventStep, event); err != nil {
			s.logger.Debug("failed to write SSE event", zap.Error(err))
		}
	}

	analysis, err := s.deps.Analyzer.Analyze(r.Context(), req, onProgress)
	if err != nil {
		s.logger.Warn("streaming analysis failed", zap.Error(err))
		if werr := sse.WriteError(err); werr != nil {
			s.logger.Debug("failed to write SSE error", zap.Error(werr))
		}
		return
	}
	if err := sse.WriteEvent(eventComplete, analysis); err != nil {
		s.logger.Debug("failed to write SSE completion", zap.Error(err))
	}
}

// handleRequirements extracts the requirements of a job posting.
func (s *Server) handleRequirements(w http.ResponseWriter, r *http.Request) {
	var job types.JobPosting
	if err := s.decodeBody(w, r, &job); err != nil {
		s.failure(w, r, err)
		return
	}
	if err := job.Validate(); err != nil {
		s.failure(w, r, &ErrValidation{Field: "job", Message: err.Error()})
		return
	}

	result, err := s.deps.Extractor.Extract(r.Context(), job)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	requirements := result.Requirements
	if requirements == nil {
		requirements = []types.Requirement{}
	}
	s.jsonResponse(w, http.StatusOK, RequirementsResponse{
		Requirements:     requirements,
		ExtractionFailed: result.Failed,
		NoRequirements:   len(result.Requirements) == 0,
		FromCache:        result.FromCache,
		Discarded:        result.Discarded,
	})
}

// handleStructure structures raw resume text, optionally guided by a prior structure.
func (s *Server) handleStructure(w http.ResponseWriter, r *http.Request) {
	var req StructureRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.failure(w, r, err)
		return
	}
	if len(req.ResumeText) > maxResumeChars {
		s.failure(w, r, &ErrValidation{Field: "resume_text", Message: "too long"})
		return
	}

	result, err := s.deps.Structurer.Structure(r.Context(), req.ResumeText, req.Prior)
	if err != nil {
		s.failure(w, r, err)
		return
	}

	missing := result.MissingSections
	if missing == nil {
		missing = []string{}
	}
	s.jsonResponse(w, http.StatusOK, StructureResponse{
		Resume:            result.Resume,
		ParseIncomplete:   result.ParseIncomplete,
		MissingSections:   missing,
		StructuringFailed: result.Failed,
		FromCache:         result.FromCache,
	})
}
