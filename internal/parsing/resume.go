// Package parsing turns caller-supplied resume and job posting text into
// structured resumes and categorized requirements via the oracle.
package parsing

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/cache"
	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/prompts"
	"github.com/jonathan/resume-fit/internal/types"
	"github.com/jonathan/resume-fit/internal/validation"
)

const (
	// DefaultResumeBudget is the rune budget of resume text sent to the oracle.
	DefaultResumeBudget = 8000
	// DefaultStructureTimeout bounds the structuring call.
	DefaultStructureTimeout = 20 * time.Second

	structureMaxTokens = 8192
	stageStructure     = "structure_resume"
)

// ResumeResult is the outcome of structuring a resume. Resume.RawText always
// equals the input verbatim, even when structuring failed.
type ResumeResult struct {
	Resume          types.StructuredResume
	ParseIncomplete bool
	MissingSections []string
	Failed          bool
	FromCache       bool
}

// ResumeStructurer parses raw resume text into a StructuredResume.
type ResumeStructurer struct {
	oracle  *llm.Oracle
	cache   *cache.TTLCache[types.StructuredResume]
	logger  *zap.Logger
	budget  int
	timeout time.Duration
}

// ResumeOption configures a ResumeStructurer.
type ResumeOption func(*ResumeStructurer)

// WithResumeCache enables caching of successful parses.
func WithResumeCache(c *cache.TTLCache[types.StructuredResume]) ResumeOption {
	return func(s *ResumeStructurer) { s.cache = c }
}

// WithResumeBudget overrides the rune budget.
func WithResumeBudget(runes int) ResumeOption {
	return func(s *ResumeStructurer) {
		if runes > 0 {
			s.budget = runes
		}
	}
}

// WithStructureTimeout overrides the oracle call timeout.
func WithStructureTimeout(d time.Duration) ResumeOption {
	return func(s *ResumeStructurer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// NewResumeStructurer creates a structurer over oracle.
func NewResumeStructurer(oracle *llm.Oracle, log *zap.Logger, opts ...ResumeOption) *ResumeStructurer {
	s := &ResumeStructurer{
		oracle:  oracle,
		logger:  logger.Named(log, "structurer"),
		budget:  DefaultResumeBudget,
		timeout: DefaultStructureTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Structure parses raw. When prior is non-nil the oracle is asked to enhance it
// and the cache is bypassed. Oracle failures degrade the result; only
// cancellation of ctx is returned as an error.
func (s *ResumeStructurer) Structure(ctx context.Context, raw string, prior *types.StructuredResume) (ResumeResult, error) {
	if strings.TrimSpace(raw) == "" {
		resume := types.StructuredResume{}
		if prior != nil {
			resume = *prior
		}
		resume.RawText = raw
		return ResumeResult{Resume: resume}, nil
	}

	key := cache.TextKey(raw)
	if prior == nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			cached.RawText = raw
			return s.result(cached, raw, true), nil
		}
	}

	validation.WarnOnInjection(s.logger, "resume", raw)

	prompt, err := s.buildPrompt(raw, prior)
	if err != nil {
		return s.failed(raw, prior, &ExtractionError{Stage: stageStructure, Message: "prompt", Cause: err}), nil
	}

	payload, err := s.oracle.Call(ctx, llm.Call{
		Task:      llm.TaskStructureResume,
		Prompt:    prompt,
		Schema:    resumeSchema,
		MaxTokens: structureMaxTokens,
		Timeout:   s.timeout,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ResumeResult{}, ctxErr
		}
		return s.failed(raw, prior, &ExtractionError{Stage: stageStructure, Message: "oracle call", Cause: err}), nil
	}

	var parsed types.StructuredResume
	if err := payload.Decode(&parsed, "resume", "structured_resume"); err != nil {
		return s.failed(raw, prior, &ExtractionError{Stage: stageStructure, Message: "decode response", Cause: err}), nil
	}
	normalizeResume(&parsed)
	parsed.RawText = raw

	result := s.result(parsed, raw, false)
	if prior == nil {
		s.cache.Put(ctx, key, parsed)
	}
	s.logger.Debug("resume structured",
		zap.Int("sections", len(parsed.Sections())),
		zap.Bool("parse_incomplete", result.ParseIncomplete),
		zap.Strings("missing_sections", result.MissingSections),
	)
	return result, nil
}

func (s *ResumeStructurer) result(resume types.StructuredResume, raw string, fromCache bool) ResumeResult {
	missing := validation.MissingSections(raw, &resume)
	return ResumeResult{
		Resume:          resume,
		ParseIncomplete: len(missing) > 0,
		MissingSections: missing,
		FromCache:       fromCache,
	}
}

// failed returns the degraded result: the prior structure when one was given,
// else the raw text alone.
func (s *ResumeStructurer) failed(raw string, prior *types.StructuredResume, err error) ResumeResult {
	s.logger.Warn("resume structuring degraded to raw text", zap.Error(err))
	resume := types.StructuredResume{}
	if prior != nil {
		resume = *prior
	}
	resume.RawText = raw
	return ResumeResult{
		Resume:          resume,
		ParseIncomplete: true,
		MissingSections: validation.MissingSections(raw, &resume),
		Failed:          true,
	}
}

func (s *ResumeStructurer) buildPrompt(raw string, prior *types.StructuredResume) (string, error) {
	quoted := validation.QuoteExternalContent(llm.TruncateRunes(raw, s.budget), "resume")
	if prior == nil {
		return prompts.Render(prompts.FileResume, "structure-resume", map[string]string{
			"Resume": quoted,
		})
	}

	previous := *prior
	previous.RawText = ""
	previousJSON, err := json.MarshalIndent(previous, "", "  ")
	if err != nil {
		return "", err
	}
	return prompts.Render(prompts.FileResume, "enhance-resume", map[string]string{
		"Previous": string(previousJSON),
		"Resume":   quoted,
	})
}

// normalizeResume trims fields, drops empty bullets and entries, and canonicalizes skills.
func normalizeResume(r *types.StructuredResume) {
	r.Summary = strings.TrimSpace(r.Summary)

	experience := r.Experience[:0]
	for _, e := range r.Experience {
		e.Title = strings.TrimSpace(e.Title)
		e.Company = strings.TrimSpace(e.Company)
		e.Bullets = trimAll(e.Bullets)
		if e.Title != "" || e.Company != "" || len(e.Bullets) > 0 {
			experience = append(experience, e)
		}
	}
	if len(experience) == 0 {
		experience = nil
	}
	r.Experience = experience

	projects := r.Projects[:0]
	for _, p := range r.Projects {
		p.Name = strings.TrimSpace(p.Name)
		p.Technologies = nilIfEmpty(NormalizeSkills(p.Technologies))
		p.Bullets = trimAll(p.Bullets)
		if p.Name != "" || len(p.Bullets) > 0 {
			projects = append(projects, p)
		}
	}
	if len(projects) == 0 {
		projects = nil
	}
	r.Projects = projects

	education := r.Education[:0]
	for _, e := range r.Education {
		e.Degree = strings.TrimSpace(e.Degree)
		e.Institution = strings.TrimSpace(e.Institution)
		e.Field = strings.TrimSpace(e.Field)
		e.Details = trimAll(e.Details)
		if e.Degree != "" || e.Institution != "" {
			education = append(education, e)
		}
	}
	if len(education) == 0 {
		education = nil
	}
	r.Education = education

	r.Skills = nilIfEmpty(NormalizeSkills(r.Skills))
	r.Certifications = trimAll(r.Certifications)
	r.Achievements = trimAll(r.Achievements)
}

// trimAll trims items and drops empty ones. Empty results are nil, matching
// what a cached copy decodes to.
func trimAll(items []string) []string {
	var out []string
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func nilIfEmpty(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	return items
}
