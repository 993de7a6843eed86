package parsing

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/resume-fit/internal/cache"
	"github.com/jonathan/resume-fit/internal/ingestion"
	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/prompts"
	"github.com/jonathan/resume-fit/internal/types"
	"github.com/jonathan/resume-fit/internal/validation"
)

const (
	// DefaultMaxRequirements caps the extracted list.
	DefaultMaxRequirements = 30
	// DefaultRequirementsTimeout bounds the extraction call.
	DefaultRequirementsTimeout = 20 * time.Second

	requirementsMaxTokens = 4096
	stageRequirements     = "extract_requirements"
)

// RequirementsResult is the outcome of requirement extraction.
type RequirementsResult struct {
	Requirements []types.Requirement
	Failed       bool
	FromCache    bool
	Discarded    int
	JobText      ingestion.PreparedJob
}

// RequirementExtractor pulls categorized requirements out of a job posting.
type RequirementExtractor struct {
	oracle          *llm.Oracle
	cache           *cache.TTLCache[[]types.Requirement]
	logger          *zap.Logger
	budget          int
	maxRequirements int
	timeout         time.Duration
}

// RequirementsOption configures a RequirementExtractor.
type RequirementsOption func(*RequirementExtractor)

// WithRequirementsCache enables caching of non-empty extractions.
func WithRequirementsCache(c *cache.TTLCache[[]types.Requirement]) RequirementsOption {
	return func(e *RequirementExtractor) { e.cache = c }
}

// WithJobBudget overrides the per-chunk rune budget of job text.
func WithJobBudget(runes int) RequirementsOption {
	return func(e *RequirementExtractor) {
		if runes > 0 {
			e.budget = runes
		}
	}
}

// WithMaxRequirements overrides the cap on extracted requirements.
func WithMaxRequirements(n int) RequirementsOption {
	return func(e *RequirementExtractor) {
		if n > 0 {
			e.maxRequirements = n
		}
	}
}

// WithRequirementsTimeout overrides the oracle call timeout.
func WithRequirementsTimeout(d time.Duration) RequirementsOption {
	return func(e *RequirementExtractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewRequirementExtractor creates an extractor over oracle.
func NewRequirementExtractor(oracle *llm.Oracle, log *zap.Logger, opts ...RequirementsOption) *RequirementExtractor {
	e := &RequirementExtractor{
		oracle:          oracle,
		logger:          logger.Named(log, "extractor"),
		budget:          ingestion.DefaultJobTextBudget,
		maxRequirements: DefaultMaxRequirements,
		timeout:         DefaultRequirementsTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RequirementsCacheKey identifies a posting: by URL, else by title and company,
// else by the hash of its description.
func RequirementsCacheKey(job types.JobPosting) string {
	if url := strings.TrimSpace(job.URL); url != "" {
		return cache.ContentKey("url", url)
	}
	title := strings.ToLower(strings.TrimSpace(job.Title))
	company := strings.ToLower(strings.TrimSpace(job.Company))
	if title != "" || company != "" {
		return cache.ContentKey("title", title, "company", company)
	}
	return cache.ContentKey("description", cache.TextKey(job.Description))
}

// Extract returns the posting's requirements. A failed oracle call yields an
// empty list with Failed set; only cancellation of ctx is returned as an error.
func (e *RequirementExtractor) Extract(ctx context.Context, job types.JobPosting) (RequirementsResult, error) {
	key := RequirementsCacheKey(job)
	if cached, ok := e.cache.Get(ctx, key); ok {
		return RequirementsResult{Requirements: cached, FromCache: true}, nil
	}

	prepared := ingestion.PrepareJobText(job.Description, e.budget)
	result := RequirementsResult{Requirements: []types.Requirement{}, JobText: prepared}
	if prepared.Text == "" {
		return result, nil
	}
	if prepared.Truncated {
		e.logger.Debug("job text truncated to budget", zap.Int("chunks", len(prepared.Chunks)))
	}

	validation.WarnOnInjection(e.logger, "job_posting", prepared.Text)

	prompt, err := prompts.Render(prompts.FileRequirements, "extract-requirements", map[string]string{
		"Title":    job.Title,
		"Company":  job.Company,
		"Location": job.Location,
		"Posting":  validation.QuoteExternalContent(prepared.Text, "job posting"),
	})
	if err != nil {
		return e.failed(result, &ExtractionError{Stage: stageRequirements, Message: "prompt", Cause: err}), nil
	}

	payload, err := e.oracle.Call(ctx, llm.Call{
		Task:      llm.TaskExtractRequirements,
		Prompt:    prompt,
		Schema:    requirementsSchema,
		MaxTokens: requirementsMaxTokens,
		Timeout:   e.timeout,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return RequirementsResult{}, ctxErr
		}
		return e.failed(result, &ExtractionError{Stage: stageRequirements, Message: "oracle call", Cause: err}), nil
	}

	items := payload.ItemsOf(requirementFields, "requirements", "job_requirements", "items")
	result.Requirements, result.Discarded = e.collect(items)
	if len(result.Requirements) == 0 && len(items) > 0 {
		return e.failed(result, &ExtractionError{Stage: stageRequirements, Message: "no valid requirement entries"}), nil
	}

	if len(result.Requirements) > 0 {
		e.cache.Put(ctx, key, result.Requirements)
	}
	e.logger.Debug("requirements extracted",
		zap.Int("requirements", len(result.Requirements)),
		zap.Int("discarded", result.Discarded),
	)
	return result, nil
}

func (e *RequirementExtractor) failed(result RequirementsResult, err error) RequirementsResult {
	e.logger.Warn("requirement extraction failed", zap.Error(err))
	result.Requirements = []types.Requirement{}
	result.Failed = true
	return result
}

// rawRequirement accepts the field spellings the oracle is known to use.
// requirementFields mark a bare single requirement.
var requirementFields = []string{"text", "requirement", "category", "importance"}

type rawRequirement struct {
	Text        string `json:"text"`
	Requirement string `json:"requirement"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Importance  string `json:"importance"`
	Type        string `json:"type"`
}

func (r rawRequirement) text() string {
	for _, candidate := range []string{r.Text, r.Requirement, r.Description} {
		if t := strings.TrimSpace(candidate); t != "" {
			return t
		}
	}
	return ""
}

// collect normalizes and validates entries, discarding malformed ones and
// case-insensitive duplicates, and applies the cap.
func (e *RequirementExtractor) collect(items []json.RawMessage) ([]types.Requirement, int) {
	requirements := make([]types.Requirement, 0, len(items))
	seen := make(map[string]bool, len(items))
	discarded := 0

	for i, item := range items {
		var raw rawRequirement
		if err := json.Unmarshal(item, &raw); err != nil {
			e.logger.Debug("discarding undecodable requirement", zap.Int("index", i), zap.Error(err))
			discarded++
			continue
		}

		req := types.Requirement{
			Text:       raw.text(),
			Category:   NormalizeCategory(raw.Category),
			Importance: NormalizeImportance(raw.Importance),
			Type:       NormalizeRequirementType(raw.Type),
		}
		if err := req.Validate(); err != nil {
			e.logger.Debug("discarding malformed requirement",
				zap.Int("index", i),
				zap.String("text", logger.TruncateForLog(req.Text, 80)),
				zap.Error(&ValidationError{Field: "requirement", Message: err.Error()}),
			)
			discarded++
			continue
		}

		dedupKey := strings.ToLower(req.Text)
		if seen[dedupKey] {
			continue
		}
		seen[dedupKey] = true

		if len(requirements) == e.maxRequirements {
			e.logger.Debug("requirement cap reached", zap.Int("max", e.maxRequirements))
			break
		}
		requirements = append(requirements, req)
	}
	return requirements, discarded
}
