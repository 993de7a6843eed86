package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-fit/internal/cache"
	"github.com/jonathan/resume-fit/internal/editing"
	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/llm/llmtest"
	"github.com/jonathan/resume-fit/internal/matching"
	"github.com/jonathan/resume-fit/internal/parsing"
	"github.com/jonathan/resume-fit/internal/pipeline/steps"
	"github.com/jonathan/resume-fit/internal/scoring"
	"github.com/jonathan/resume-fit/internal/types"
	"github.com/jonathan/resume-fit/internal/validation"
)

const testResume = `Jane Doe
jane@example.com

Summary
Backend engineer building payment systems.

Experience
Senior Engineer, Acme (2020-2024)
- Built Go services handling payments
- Ran Kafka clusters

Education
B.Sc. Computer Science, State University

Skills
Go, Kafka, Python, PostgreSQL`

const structuredJSON = `{
  "summary": "Backend engineer building payment systems.",
  "experience": [{"title": "Senior Engineer", "company": "Acme", "bullets": ["Built Go services handling payments", "Ran Kafka clusters"]}],
  "education": [{"degree": "B.Sc.", "field": "Computer Science", "institution": "State University"}],
  "skills": ["Go", "Kafka", "Python", "PostgreSQL"]
}`

const requirementsJSON = `{"requirements": [
  {"text": "Go services", "category": "required", "importance": "critical", "type": "technical_skill"},
  {"text": "PostgreSQL", "category": "required", "importance": "high", "type": "tool"},
  {"text": "Kubernetes", "category": "preferred", "importance": "medium", "type": "tool"}
]}`

const deepMatchJSON = `{"matches": [
  {"requirement_id": "r2", "is_matched": false, "match_strength": "none",
   "explanation": "No container orchestration experience.", "suggestion_if_missing": "Mention Kubernetes work."}
]}`

const editsJSON = `{"edits": [
  {"section": "skills", "edit_type": "add_keywords", "priority": "medium", "suggested_content": "Kubernetes",
   "rationale": "The posting prefers Kubernetes.", "requirement_ids": ["c0"], "keywords_added": ["Kubernetes"]}
]}`

var testJob = types.JobPosting{
	Title:       "Backend Engineer",
	Company:     "Acme",
	Description: "We need Go services experience, PostgreSQL, and ideally Kubernetes.",
}

type reply func(ctx context.Context) (string, error)

func text(s string) reply {
	return func(context.Context) (string, error) { return s, nil }
}

func hang(ctx context.Context) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// routes answers each oracle task by a phrase of its prompt.
type routes struct {
	structure    reply
	requirements reply
	deepMatch    reply
	edits        reply
}

func (r routes) client() *llmtest.MockClient {
	return &llmtest.MockClient{
		GenerateJSONFunc: func(ctx context.Context, prompt string, _ llm.ModelTier, _ int32) (string, error) {
			var handler reply
			switch {
			case strings.Contains(prompt, "expert resume parser"):
				handler = r.structure
			case strings.Contains(prompt, "expert job posting analyst"):
				handler = r.requirements
			case strings.Contains(prompt, "expert technical recruiter"):
				handler = r.deepMatch
			case strings.Contains(prompt, "expert resume editor"):
				handler = r.edits
			}
			if handler == nil {
				return "", errors.New("unexpected prompt")
			}
			return handler(ctx)
		},
	}
}

func happyRoutes() routes {
	return routes{
		structure:    text(structuredJSON),
		requirements: text(requirementsJSON),
		deepMatch:    text(deepMatchJSON),
		edits:        text(editsJSON),
	}
}

type stubRecorder struct {
	mu       sync.Mutex
	recorded []*types.FitAnalysis
	err      error
}

func (r *stubRecorder) RecordAnalysis(_ context.Context, _ types.JobPosting, a *types.FitAnalysis) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = append(r.recorded, a)
	return uuid.New(), r.err
}

func newTestAnalyzer(t *testing.T, client llm.Client, caches *cache.Caches, opts ...Option) *Analyzer {
	t.Helper()
	if caches == nil {
		caches = &cache.Caches{}
	}
	oracle := llm.NewOracle(client, nil, nil)
	aggregator, err := scoring.NewAggregator(scoring.DefaultWeights())
	require.NoError(t, err)
	a, err := NewAnalyzer(Components{
		Structurer: parsing.NewResumeStructurer(oracle, nil,
			parsing.WithResumeCache(caches.Resumes),
			parsing.WithStructureTimeout(200*time.Millisecond)),
		Extractor: parsing.NewRequirementExtractor(oracle, nil,
			parsing.WithRequirementsCache(caches.Requirements),
			parsing.WithRequirementsTimeout(50*time.Millisecond)),
		Matcher:    matching.NewMatcher(oracle, nil, matching.WithDeepMatchTimeout(200*time.Millisecond)),
		Aggregator: aggregator,
		Editor:     editing.NewGenerator(oracle, nil),
	}, nil, append([]Option{WithAnalysisCache(caches.Analyses)}, opts...)...)
	require.NoError(t, err)
	return a
}

func memoryCaches() *cache.Caches {
	return cache.New(cache.NewMemoryStore(), cache.DefaultConfig(), nil)
}

func TestNewAnalyzer_RequiresComponents(t *testing.T) {
	_, err := NewAnalyzer(Components{}, nil)
	assert.Error(t, err)
}

func TestNew_InvalidWeights(t *testing.T) {
	settings := DefaultSettings()
	settings.Weights.Required = 2
	_, err := New(llm.NewOracle(happyRoutes().client(), nil, nil), nil, settings, nil)
	assert.Error(t, err)
}

func TestAnalyze_FullPipeline(t *testing.T) {
	recorder := &stubRecorder{}
	a := newTestAnalyzer(t, happyRoutes().client(), nil, WithRecorder(recorder))

	var (
		mu     sync.Mutex
		events []ProgressEvent
	)
	onProgress := func(e ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	}

	result, err := a.Analyze(context.Background(), types.AnalysisRequest{ResumeText: testResume, Job: testJob}, onProgress)
	require.NoError(t, err)

	require.Len(t, result.RequirementMatches, 3)
	assert.Equal(t, types.StrengthStrong, result.RequirementMatches[0].MatchStrength)
	assert.Equal(t, types.StrengthStrong, result.RequirementMatches[1].MatchStrength)
	assert.False(t, result.RequirementMatches[2].IsMatched)
	assert.Equal(t, "No container orchestration experience.", result.RequirementMatches[2].Explanation)

	require.NotNil(t, result.Score)
	require.NotNil(t, result.MatchLevel)
	assert.Greater(t, *result.Score, 50.0)
	assert.Less(t, *result.Score, 100.0)

	require.Len(t, result.ResumeEdits, 1)
	assert.True(t, result.ResumeEdits[0].Applied)
	assert.Contains(t, result.EditedResumeText, "PostgreSQL, Kubernetes")
	assert.Contains(t, result.EditedResumeText, "B.Sc. Computer Science, State University")
	require.NotNil(t, result.KeywordVisibility)
	assert.InDelta(t, 1.0, *result.KeywordVisibility, 1e-9)

	assert.Contains(t, result.Gaps, "Kubernetes")
	assert.NotEmpty(t, result.Strengths)
	assert.NotEmpty(t, result.Pitch)
	assert.NotNil(t, result.MissingSections)
	assert.False(t, result.Flags.Degraded())
	assert.False(t, result.Flags.NoRequirements)

	assert.Equal(t, 3, result.Stats.Requirements)
	assert.Equal(t, 2, result.Stats.Phase1Resolved)
	assert.Equal(t, 1, result.Stats.Phase2Escalated)
	assert.Equal(t, 1, result.Stats.Phase2Covered)
	assert.Equal(t, 1, result.Stats.EditCandidates)

	require.Len(t, recorder.recorded, 1)
	assert.Equal(t, result.AnalysisID, recorder.recorded[0].AnalysisID)

	seen := map[string]bool{}
	for _, e := range events {
		seen[e.Step] = true
		assert.Equal(t, result.AnalysisID, e.AnalysisID)
		assert.Equal(t, steps.Category(e.Step), e.Category)
	}
	for _, step := range []string{
		steps.StepStructureResume, steps.StepExtractRequirements, steps.StepFlattenBullets,
		steps.StepMatchRequirements, steps.StepScoreFit, steps.StepGenerateEdits, steps.StepSummarize,
	} {
		assert.True(t, seen[step], "expected a progress event for %s", step)
	}
}

func TestAnalyze_ExtractionTimeout(t *testing.T) {
	r := happyRoutes()
	r.requirements = hang
	a := newTestAnalyzer(t, r.client(), nil)

	result, err := a.Analyze(context.Background(), types.AnalysisRequest{ResumeText: testResume, Job: testJob}, nil)
	require.NoError(t, err)

	assert.True(t, result.Flags.NoRequirements)
	assert.True(t, result.Flags.ExtractionFailed)
	assert.Nil(t, result.Score)
	assert.Nil(t, result.MatchLevel)
	assert.NotNil(t, result.ResumeEdits)
	assert.Empty(t, result.ResumeEdits)
	assert.NotNil(t, result.RequirementMatches)
	assert.Empty(t, result.RequirementMatches)
	assert.Equal(t, testResume, result.EditedResumeText)
}

func TestAnalyze_EmptyResume(t *testing.T) {
	r := happyRoutes()
	r.structure = nil
	r.deepMatch = nil
	r.edits = nil
	client := r.client()
	a := newTestAnalyzer(t, client, nil)

	result, err := a.Analyze(context.Background(), types.AnalysisRequest{ResumeText: "", Job: testJob}, nil)
	require.NoError(t, err)

	require.Len(t, result.RequirementMatches, 3)
	for _, m := range result.RequirementMatches {
		assert.Equal(t, types.StrengthNone, m.MatchStrength)
		assert.False(t, m.IsMatched)
	}
	require.NotNil(t, result.Score, "requirements exist, so the score is defined")
	assert.Equal(t, 0.0, *result.Score)
	assert.False(t, result.Flags.NoRequirements)
	assert.True(t, result.Flags.CannotSafelyEdit)
	assert.Equal(t, 0, result.Stats.Bullets)
	assert.Equal(t, 1, client.Calls(), "only requirement extraction reaches the oracle")
}

func TestAnalyze_InvalidRequest(t *testing.T) {
	client := happyRoutes().client()
	a := newTestAnalyzer(t, client, nil)

	_, err := a.Analyze(context.Background(), types.AnalysisRequest{ResumeText: testResume}, nil)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 0, client.Calls())
}

func TestAnalyze_CachesCompleteAnalyses(t *testing.T) {
	client := happyRoutes().client()
	caches := memoryCaches()
	a := newTestAnalyzer(t, client, caches)
	req := types.AnalysisRequest{ResumeText: testResume, Job: testJob}

	first, err := a.Analyze(context.Background(), req, nil)
	require.NoError(t, err)
	assert.False(t, first.Flags.FromCache)
	calls := client.Calls()

	var events []ProgressEvent
	second, err := a.Analyze(context.Background(), req, func(e ProgressEvent) { events = append(events, e) })
	require.NoError(t, err)
	assert.True(t, second.Flags.FromCache)
	assert.Equal(t, first.AnalysisID, second.AnalysisID)
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, calls, client.Calls())
	require.Len(t, events, 1)
	assert.Equal(t, steps.StepCacheLookup, events[0].Step)
}

func TestAnalyze_ReformattedResumeMissesAnalysisCache(t *testing.T) {
	client := happyRoutes().client()
	caches := memoryCaches()
	a := newTestAnalyzer(t, client, caches)

	first, err := a.Analyze(context.Background(), types.AnalysisRequest{ResumeText: testResume, Job: testJob}, nil)
	require.NoError(t, err)

	flattened := strings.Join(strings.Fields(testResume), " ")
	second, err := a.Analyze(context.Background(), types.AnalysisRequest{ResumeText: flattened, Job: testJob}, nil)
	require.NoError(t, err)

	assert.False(t, second.Flags.FromCache)
	assert.NotEqual(t, first.AnalysisID, second.AnalysisID)
	assert.NotEqual(t, first.EditedResumeText, second.EditedResumeText)
	assert.True(t, strings.HasPrefix(second.EditedResumeText, "Jane Doe "), "edited text derives from the second caller's bytes")
}

func TestAnalyze_PriorStructureBypassesCache(t *testing.T) {
	client := happyRoutes().client()
	caches := memoryCaches()
	a := newTestAnalyzer(t, client, caches)

	_, err := a.Analyze(context.Background(), types.AnalysisRequest{ResumeText: testResume, Job: testJob}, nil)
	require.NoError(t, err)

	prior := &types.StructuredResume{Skills: []string{"Go"}}
	result, err := a.Analyze(context.Background(), types.AnalysisRequest{ResumeText: testResume, Resume: prior, Job: testJob}, nil)
	require.NoError(t, err)
	assert.False(t, result.Flags.FromCache)
}

func TestAnalyze_DegradedAnalysisNotCached(t *testing.T) {
	r := happyRoutes()
	r.deepMatch = text(`{"matches": []}`)
	caches := memoryCaches()
	a := newTestAnalyzer(t, r.client(), caches)
	req := types.AnalysisRequest{ResumeText: testResume, Job: testJob}

	result, err := a.Analyze(context.Background(), req, nil)
	require.NoError(t, err)
	assert.True(t, result.Flags.DegradedMatching)

	_, ok := caches.Analyses.Get(context.Background(), AnalysisCacheKey(testResume, testJob))
	assert.False(t, ok)
}

func TestAnalyze_Cancellation(t *testing.T) {
	r := happyRoutes()
	r.structure = hang
	caches := memoryCaches()
	a := newTestAnalyzer(t, r.client(), caches)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := a.Analyze(ctx, types.AnalysisRequest{ResumeText: testResume, Job: testJob}, nil)
	require.ErrorIs(t, err, context.Canceled)

	_, ok := caches.Analyses.Get(context.Background(), AnalysisCacheKey(testResume, testJob))
	assert.False(t, ok)
}

type rejectAll struct{}

func (rejectAll) Name() string { return "reject_all" }

func (rejectAll) Check(validation.GateInput, *validation.GateReport) error {
	return &validation.GuardrailError{Stage: "reject_all", Message: "rejected"}
}

func TestAnalyze_GuardrailFailurePropagates(t *testing.T) {
	recorder := &stubRecorder{}
	oracle := llm.NewOracle(happyRoutes().client(), nil, nil)
	aggregator, err := scoring.NewAggregator(scoring.DefaultWeights())
	require.NoError(t, err)
	a, err := NewAnalyzer(Components{
		Structurer: parsing.NewResumeStructurer(oracle, nil),
		Extractor:  parsing.NewRequirementExtractor(oracle, nil),
		Matcher:    matching.NewMatcher(oracle, nil),
		Aggregator: aggregator,
		Editor:     editing.NewGenerator(oracle, nil, editing.WithGate(validation.NewGateWithStages(nil, rejectAll{}))),
	}, nil, WithRecorder(recorder))
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), types.AnalysisRequest{ResumeText: testResume, Job: testJob}, nil)
	var guardErr *validation.GuardrailError
	require.ErrorAs(t, err, &guardErr)
	assert.Equal(t, "reject_all", guardErr.Stage)
	assert.Empty(t, recorder.recorded)
}

func TestAnalyze_RecorderFailureIsNotFatal(t *testing.T) {
	recorder := &stubRecorder{err: errors.New("database unavailable")}
	a := newTestAnalyzer(t, happyRoutes().client(), nil, WithRecorder(recorder))

	result, err := a.Analyze(context.Background(), types.AnalysisRequest{ResumeText: testResume, Job: testJob}, nil)
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Len(t, recorder.recorded, 1)
}

func TestAnalysisCacheKey(t *testing.T) {
	base := AnalysisCacheKey(testResume, testJob)
	assert.Equal(t, base, AnalysisCacheKey(testResume, testJob))
	assert.NotEqual(t, base, AnalysisCacheKey(testResume+"\n- Ran Terraform", testJob))
	assert.NotEqual(t, base, AnalysisCacheKey(strings.ReplaceAll(testResume, "\n", "\r\n"), testJob))

	other := testJob
	other.Description += " Rust is a bonus."
	assert.NotEqual(t, base, AnalysisCacheKey(testResume, other))
}
