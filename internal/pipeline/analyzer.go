// Package pipeline orchestrates a fit analysis: structuring the resume and
// extracting requirements concurrently, then matching, scoring, editing and
// summarizing.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-fit/internal/cache"
	"github.com/jonathan/resume-fit/internal/editing"
	"github.com/jonathan/resume-fit/internal/evidence"
	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/logger"
	"github.com/jonathan/resume-fit/internal/matching"
	"github.com/jonathan/resume-fit/internal/parsing"
	"github.com/jonathan/resume-fit/internal/pipeline/steps"
	"github.com/jonathan/resume-fit/internal/scoring"
	"github.com/jonathan/resume-fit/internal/types"
)

// Recorder persists completed analyses.
type Recorder interface {
	RecordAnalysis(ctx context.Context, job types.JobPosting, analysis *types.FitAnalysis) (uuid.UUID, error)
}

// Components are the stages an Analyzer runs. All are required.
type Components struct {
	Structurer *parsing.ResumeStructurer
	Extractor  *parsing.RequirementExtractor
	Matcher    *matching.Matcher
	Aggregator *scoring.Aggregator
	Editor     *editing.Generator
}

// Settings configure the stages built by New.
type Settings struct {
	Weights      scoring.Weights
	MatchLimits  matching.Limits
	Editing      editing.Config
	ResumeBudget int
	JobBudget    int
}

// DefaultSettings returns the standard stage settings.
func DefaultSettings() Settings {
	return Settings{
		Weights:      scoring.DefaultWeights(),
		MatchLimits:  matching.DefaultLimits(),
		Editing:      editing.DefaultConfig(),
		ResumeBudget: parsing.DefaultResumeBudget,
		JobBudget:    0,
	}
}

// Analyzer runs fit analyses. It is safe for concurrent use.
type Analyzer struct {
	structurer *parsing.ResumeStructurer
	extractor  *parsing.RequirementExtractor
	matcher    *matching.Matcher
	aggregator *scoring.Aggregator
	editor     *editing.Generator
	analyses   *cache.TTLCache[types.FitAnalysis]
	recorder   Recorder
	logger     *zap.Logger
	newID      func() string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithAnalysisCache caches complete, non-degraded analyses.
func WithAnalysisCache(c *cache.TTLCache[types.FitAnalysis]) Option {
	return func(a *Analyzer) { a.analyses = c }
}

// WithRecorder records every completed analysis.
func WithRecorder(r Recorder) Option {
	return func(a *Analyzer) { a.recorder = r }
}

// NewAnalyzer assembles an analyzer from explicit components.
func NewAnalyzer(c Components, log *zap.Logger, opts ...Option) (*Analyzer, error) {
	if c.Structurer == nil || c.Extractor == nil || c.Matcher == nil || c.Aggregator == nil || c.Editor == nil {
		return nil, errors.New("pipeline: every component is required")
	}
	a := &Analyzer{
		structurer: c.Structurer,
		extractor:  c.Extractor,
		matcher:    c.Matcher,
		aggregator: c.Aggregator,
		editor:     c.Editor,
		logger:     logger.Named(log, "pipeline"),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// New builds the standard stages over one oracle. caches may be nil.
func New(oracle *llm.Oracle, caches *cache.Caches, settings Settings, log *zap.Logger, opts ...Option) (*Analyzer, error) {
	aggregator, err := scoring.NewAggregator(settings.Weights)
	if err != nil {
		return nil, fmt.Errorf("invalid scoring weights: %w", err)
	}
	if caches == nil {
		caches = &cache.Caches{}
	}

	components := Components{
		Structurer: parsing.NewResumeStructurer(oracle, log,
			parsing.WithResumeCache(caches.Resumes),
			parsing.WithResumeBudget(settings.ResumeBudget),
		),
		Extractor: parsing.NewRequirementExtractor(oracle, log,
			parsing.WithRequirementsCache(caches.Requirements),
			parsing.WithJobBudget(settings.JobBudget),
		),
		Matcher:    matching.NewMatcher(oracle, log, matching.WithLimits(settings.MatchLimits)),
		Aggregator: aggregator,
		Editor: editing.NewGenerator(oracle, log,
			editing.WithConfig(settings.Editing),
			editing.WithWeights(settings.Weights),
		),
	}
	return NewAnalyzer(components, log, append([]Option{WithAnalysisCache(caches.Analyses)}, opts...)...)
}

// AnalysisCacheKey identifies an analysis by the resume text and the posting.
// The resume is hashed byte for byte: a cached analysis carries edited text
// derived from those exact bytes.
func AnalysisCacheKey(resumeText string, job types.JobPosting) string {
	return cache.ContentKey(
		"resume", cache.ContentKey(resumeText),
		"job", parsing.RequirementsCacheKey(job),
		"description", cache.TextKey(job.Description),
	)
}

// Analyze evaluates the request's resume against its job posting. Degraded
// stages are reported through flags. Errors are returned for invalid requests
// (*RequestError), output gate violations (*validation.GuardrailError) and
// cancellation of ctx.
func (a *Analyzer) Analyze(ctx context.Context, req types.AnalysisRequest, onProgress ProgressCallback) (*types.FitAnalysis, error) {
	start := time.Now()
	analysisID := a.newID()
	log := a.logger.With(zap.String(logger.FieldAnalysisID, analysisID))
	tracker := steps.NewTracker()

	run := func(step string, fn func() error) error {
		if err := tracker.Begin(step); err != nil {
			return err
		}
		stepStart := time.Now()
		if err := fn(); err != nil {
			return err
		}
		tracker.Complete(step)
		log.Debug("step complete", zap.String(logger.FieldStep, step), zap.Duration("duration", time.Since(stepStart)))
		return nil
	}

	rawText := req.ResumeText
	if rawText == "" && req.Resume != nil {
		rawText = req.Resume.RawText
	}

	if err := run(steps.StepValidateRequest, func() error {
		if err := req.Validate(); err != nil {
			return &RequestError{Message: "validation failed", Cause: err}
		}
		return nil
	}); err != nil {
		return nil, err
	}

	cacheKey := AnalysisCacheKey(rawText, req.Job)
	var cached *types.FitAnalysis
	if err := run(steps.StepCacheLookup, func() error {
		if req.Resume != nil {
			return nil
		}
		if hit, ok := a.analyses.Get(ctx, cacheKey); ok {
			hit.Flags.FromCache = true
			cached = &hit
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if cached != nil {
		log.Info("analysis served from cache")
		emitProgress(onProgress, cached.AnalysisID, steps.StepCacheLookup, "Analysis served from cache", nil)
		return cached, nil
	}

	// Resume structuring and requirement extraction share no state.
	var (
		resumeResult parsing.ResumeResult
		reqResult    parsing.RequirementsResult
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return run(steps.StepStructureResume, func() error {
			result, err := a.structurer.Structure(gCtx, rawText, req.Resume)
			if err != nil {
				return err
			}
			resumeResult = result
			emitProgress(onProgress, analysisID, steps.StepStructureResume,
				fmt.Sprintf("Structured resume into %d sections", len(result.Resume.Sections())), nil)
			return nil
		})
	})
	g.Go(func() error {
		return run(steps.StepExtractRequirements, func() error {
			result, err := a.extractor.Extract(gCtx, req.Job)
			if err != nil {
				return err
			}
			reqResult = result
			emitProgress(onProgress, analysisID, steps.StepExtractRequirements,
				fmt.Sprintf("Extracted %d requirements", len(result.Requirements)), result.Requirements)
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	resume := resumeResult.Resume
	var bullets []types.ResumeBullet
	if err := run(steps.StepFlattenBullets, func() error {
		bullets = evidence.Flatten(&resume)
		emitProgress(onProgress, analysisID, steps.StepFlattenBullets,
			fmt.Sprintf("Flattened %d resume bullets", len(bullets)), nil)
		return nil
	}); err != nil {
		return nil, err
	}

	var matchResult matching.Result
	if err := run(steps.StepMatchRequirements, func() error {
		var err error
		matchResult, err = a.matcher.Match(ctx, reqResult.Requirements, bullets)
		if err != nil {
			return err
		}
		emitProgress(onProgress, analysisID, steps.StepMatchRequirements,
			fmt.Sprintf("Matched %d requirements (%d resolved by keywords, %d escalated)",
				len(matchResult.Matches), matchResult.Stats.Resolved, matchResult.Stats.Escalated), nil)
		return nil
	}); err != nil {
		return nil, err
	}

	var (
		score *float64
		level *types.MatchLevel
	)
	if err := run(steps.StepScoreFit, func() error {
		score, level = a.aggregator.Score(matchResult.Matches)
		message := "No requirements to score"
		if score != nil {
			message = fmt.Sprintf("Fit score %.1f (%s)", *score, *level)
		}
		emitProgress(onProgress, analysisID, steps.StepScoreFit, message, nil)
		return nil
	}); err != nil {
		return nil, err
	}

	var edits editing.Result
	if err := run(steps.StepGenerateEdits, func() error {
		var err error
		edits, err = a.editor.Generate(ctx, editing.Input{
			Resume:          &resume,
			RawText:         rawText,
			ParseIncomplete: resumeResult.ParseIncomplete,
			Matches:         matchResult.Matches,
		})
		if err != nil {
			return fmt.Errorf("edit generation: %w", err)
		}
		emitProgress(onProgress, analysisID, steps.StepGenerateEdits,
			fmt.Sprintf("Proposed %d edits for %d candidates", len(edits.Edits), edits.CandidateCount), nil)
		return nil
	}); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	var analysis *types.FitAnalysis
	if err := run(steps.StepSummarize, func() error {
		summary := Summarize(matchResult.Matches, matchResult.Evaluated, score, level, edits.Keywords(), rawText, a.aggregator.Weights())
		analysis = &types.FitAnalysis{
			AnalysisID:         analysisID,
			Score:              score,
			MatchLevel:         level,
			Strengths:          summary.Strengths,
			Gaps:               summary.Gaps,
			Pitch:              summary.Pitch,
			TalkingPoints:      summary.TalkingPoints,
			KeywordsToUse:      summary.KeywordsToUse,
			RequirementMatches: matchResult.Matches,
			ResumeEdits:        edits.Edits,
			EditedResumeText:   edits.EditedText,
			MissingSections:    nonNil(resumeResult.MissingSections),
			Flags: types.Flags{
				ParseIncomplete:       resumeResult.ParseIncomplete,
				StructuringFailed:     resumeResult.Failed,
				NoRequirements:        score == nil,
				ExtractionFailed:      reqResult.Failed,
				RequirementsTruncated: matchResult.Truncated,
				DegradedMatching:      matchResult.Degraded,
				EditsAppliedToRawText: edits.AppliedToRawText,
				CannotSafelyEdit:      edits.CannotSafelyEdit,
			},
			Stats: types.AnalysisStats{
				Requirements:    len(reqResult.Requirements),
				Bullets:         len(bullets),
				Phase1Resolved:  matchResult.Stats.Resolved,
				Phase2Escalated: matchResult.Stats.Escalated,
				Phase2Covered:   matchResult.Stats.Covered,
				EditCandidates:  edits.CandidateCount,
				ResumeCacheHit:  resumeResult.FromCache,
				RequirementsHit: reqResult.FromCache,
			},
		}
		if edits.Gate != nil {
			analysis.KeywordVisibility = edits.Gate.KeywordVisibility
			analysis.Flags.SuspiciousTruncation = edits.Gate.SuspiciousTruncation
			analysis.Flags.LowEditVisibility = edits.Gate.LowEditVisibility
		}
		emitProgress(onProgress, analysisID, steps.StepSummarize, "Analysis complete", analysis)
		return nil
	}); err != nil {
		return nil, err
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if req.Resume == nil && !analysis.Flags.Degraded() {
		a.analyses.Put(ctx, cacheKey, *analysis)
	}
	if a.recorder != nil {
		if _, err := a.recorder.RecordAnalysis(ctx, req.Job, analysis); err != nil {
			log.Warn("failed to record analysis", zap.Error(err))
		}
	}

	log.Info("analysis complete",
		zap.Int("requirements", analysis.Stats.Requirements),
		zap.Int("bullets", analysis.Stats.Bullets),
		zap.Bool("degraded", analysis.Flags.Degraded()),
		zap.Duration("duration", time.Since(start)),
	)
	return analysis, nil
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
