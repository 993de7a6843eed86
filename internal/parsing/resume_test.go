package parsing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-fit/internal/cache"
	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/llm/llmtest"
	"github.com/jonathan/resume-fit/internal/types"
)

const sampleResume = `Jane Doe

EXPERIENCE
Senior Engineer, Acme Corp (2020-2024)
- Built Go services handling 10k rps
- Led migration to Kubernetes

EDUCATION
B.Sc. Computer Science, State University`

const sampleResumeJSON = `{
  "summary": "",
  "experience": [
    {"title": "Senior Engineer", "company": "Acme Corp", "bullets": ["Built Go services handling 10k rps", "  Led migration to Kubernetes  ", ""]}
  ],
  "education": [
    {"degree": "B.Sc. Computer Science", "institution": "State University"}
  ],
  "skills": ["golang", "Go", "k8s"]
}`

func newStructurer(client llm.Client, opts ...ResumeOption) *ResumeStructurer {
	return NewResumeStructurer(llm.NewOracle(client, nil, nil), nil, opts...)
}

func newResumeCache() *cache.TTLCache[types.StructuredResume] {
	return cache.NewTTLCache[types.StructuredResume](cache.NewMemoryStore(), cache.NamespaceResume, time.Hour, nil)
}

func TestStructure_EmptyInputSkipsOracle(t *testing.T) {
	client := llmtest.Reply(sampleResumeJSON)
	s := newStructurer(client)

	result, err := s.Structure(context.Background(), "   \n", nil)
	require.NoError(t, err)

	assert.Equal(t, 0, client.Calls())
	assert.Equal(t, "   \n", result.Resume.RawText)
	assert.True(t, result.Resume.IsMinimal())
	assert.False(t, result.ParseIncomplete)
	assert.False(t, result.Failed)
}

func TestStructure_Success(t *testing.T) {
	client := llmtest.Reply(sampleResumeJSON)
	s := newStructurer(client)

	result, err := s.Structure(context.Background(), sampleResume, nil)
	require.NoError(t, err)

	assert.Equal(t, sampleResume, result.Resume.RawText)
	assert.False(t, result.ParseIncomplete)
	assert.Empty(t, result.MissingSections)
	assert.False(t, result.Failed)

	require.Len(t, result.Resume.Experience, 1)
	assert.Equal(t, []string{"Built Go services handling 10k rps", "Led migration to Kubernetes"}, result.Resume.Experience[0].Bullets)
	assert.Equal(t, []string{"Go", "Kubernetes"}, result.Resume.Skills)

	prompt := client.Prompts()[0]
	assert.Contains(t, prompt, "BEGIN QUOTED RESUME")
	assert.Contains(t, prompt, "Led migration to Kubernetes")
	assert.Contains(t, prompt, `"experience"`)
}

func TestStructure_MissingSectionMarksIncomplete(t *testing.T) {
	client := llmtest.Reply(`{"experience": [{"title": "Senior Engineer", "company": "Acme Corp", "bullets": ["Built Go services"]}]}`)
	s := newStructurer(client)

	result, err := s.Structure(context.Background(), sampleResume, nil)
	require.NoError(t, err)

	assert.True(t, result.ParseIncomplete)
	assert.Equal(t, []string{types.SectionEducation}, result.MissingSections)
	assert.False(t, result.Failed)
}

func TestStructure_AcceptsSingleElementArray(t *testing.T) {
	client := llmtest.Reply("[" + sampleResumeJSON + "]")
	s := newStructurer(client)

	result, err := s.Structure(context.Background(), sampleResume, nil)
	require.NoError(t, err)
	assert.Len(t, result.Resume.Education, 1)
	assert.False(t, result.Failed)
}

func TestStructure_CacheIdempotence(t *testing.T) {
	client := llmtest.Reply(sampleResumeJSON)
	s := newStructurer(client, WithResumeCache(newResumeCache()))
	ctx := context.Background()

	first, err := s.Structure(ctx, sampleResume, nil)
	require.NoError(t, err)
	second, err := s.Structure(ctx, sampleResume, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, client.Calls(), "second structuring of the same text must not call the oracle")
	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, first.Resume, second.Resume)
}

func TestStructure_WhitespaceVariantSharesCacheButKeepsRawText(t *testing.T) {
	client := llmtest.Reply(sampleResumeJSON)
	s := newStructurer(client, WithResumeCache(newResumeCache()))
	ctx := context.Background()

	_, err := s.Structure(ctx, sampleResume, nil)
	require.NoError(t, err)

	variant := strings.ReplaceAll(sampleResume, "\n", "\n\n")
	result, err := s.Structure(ctx, variant, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, client.Calls())
	assert.Equal(t, variant, result.Resume.RawText)
}

func TestStructure_PriorBypassesCache(t *testing.T) {
	client := llmtest.Reply(sampleResumeJSON)
	resumeCache := newResumeCache()
	s := newStructurer(client, WithResumeCache(resumeCache))
	prior := &types.StructuredResume{Skills: []string{"Go"}}

	for i := 0; i < 2; i++ {
		_, err := s.Structure(context.Background(), sampleResume, prior)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, client.Calls())
	assert.Contains(t, client.Prompts()[0], "Previous parse")
	assert.Equal(t, int64(0), resumeCache.Stats().Writes)
}

func TestStructure_OracleFailures(t *testing.T) {
	tests := []struct {
		name   string
		client *llmtest.MockClient
		opts   []ResumeOption
	}{
		{name: "timeout", client: llmtest.Hang(), opts: []ResumeOption{WithStructureTimeout(20 * time.Millisecond)}},
		{name: "transport error", client: llmtest.Fail(errors.New("quota exceeded"))},
		{name: "malformed response", client: llmtest.Reply("I cannot parse this resume")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resumeCache := newResumeCache()
			opts := append([]ResumeOption{WithResumeCache(resumeCache)}, tt.opts...)
			s := newStructurer(tt.client, opts...)

			result, err := s.Structure(context.Background(), sampleResume, nil)
			require.NoError(t, err)

			assert.True(t, result.Failed)
			assert.True(t, result.ParseIncomplete)
			assert.Equal(t, sampleResume, result.Resume.RawText)
			assert.True(t, result.Resume.IsMinimal())
			assert.Equal(t, []string{types.SectionExperience, types.SectionEducation}, result.MissingSections)
			assert.Equal(t, int64(0), resumeCache.Stats().Writes, "failed parses are never cached")
		})
	}
}

func TestStructure_FailureKeepsPrior(t *testing.T) {
	s := newStructurer(llmtest.Fail(errors.New("boom")))
	prior := &types.StructuredResume{Experience: []types.ExperienceEntry{{Title: "Engineer", Company: "Acme", Bullets: []string{"Built things"}}}}

	result, err := s.Structure(context.Background(), sampleResume, prior)
	require.NoError(t, err)

	assert.True(t, result.Failed)
	assert.Len(t, result.Resume.Experience, 1)
	assert.Equal(t, sampleResume, result.Resume.RawText)
}

func TestStructure_CancelledContext(t *testing.T) {
	resumeCache := newResumeCache()
	s := newStructurer(llmtest.Hang(), WithResumeCache(resumeCache))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := s.Structure(ctx, sampleResume, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), resumeCache.Stats().Writes)
}

func TestStructure_TruncatesToBudget(t *testing.T) {
	client := llmtest.Reply(sampleResumeJSON)
	s := newStructurer(client, WithResumeBudget(20))
	raw := sampleResume + "\nUNIQUE-TAIL-MARKER"

	_, err := s.Structure(context.Background(), raw, nil)
	require.NoError(t, err)
	assert.NotContains(t, client.Prompts()[0], "UNIQUE-TAIL-MARKER")
}
