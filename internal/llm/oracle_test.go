package llm_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-fit/internal/llm"
	"github.com/jonathan/resume-fit/internal/llm/llmtest"
)

func TestOracle_Call_Success(t *testing.T) {
	var gotTier llm.ModelTier
	var gotMax int32
	client := &llmtest.MockClient{
		GenerateJSONFunc: func(_ context.Context, _ string, tier llm.ModelTier, maxTokens int32) (string, error) {
			gotTier, gotMax = tier, maxTokens
			return "```json\n{\"requirements\":[{\"text\":\"Go\"}]}\n```", nil
		},
	}
	oracle := llm.NewOracle(client, nil, nil)

	payload, err := oracle.Call(context.Background(), llm.Call{
		Task:      llm.TaskGenerateEdits,
		Prompt:    "extract",
		Schema:    llm.SchemaHint{ListKey: "requirements", Fields: []llm.SchemaField{{Name: "text"}}},
		MaxTokens: 2048,
		Timeout:   time.Second,
	})
	require.NoError(t, err)
	assert.Len(t, payload.Items("requirements"), 1)
	assert.Equal(t, llm.TierAdvanced, gotTier)
	assert.Equal(t, int32(2048), gotMax)
	assert.Contains(t, client.Prompts()[0], "Return ONLY valid JSON")
}

func TestOracle_Call_Timeout(t *testing.T) {
	oracle := llm.NewOracle(llmtest.Hang(), nil, nil)

	_, err := oracle.Call(context.Background(), llm.Call{Task: llm.TaskDeepMatch, Timeout: 20 * time.Millisecond})
	require.Error(t, err)
	assert.True(t, llm.IsTimeout(err))

	var te *llm.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, llm.TaskDeepMatch, te.Task)
}

func TestOracle_Call_ParentCancelled(t *testing.T) {
	oracle := llm.NewOracle(llmtest.Hang(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := oracle.Call(ctx, llm.Call{Task: llm.TaskDeepMatch, Timeout: time.Minute})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, llm.IsTimeout(err))
}

func TestOracle_Call_Failure(t *testing.T) {
	oracle := llm.NewOracle(llmtest.Fail(errors.New("quota exceeded")), nil, nil)

	_, err := oracle.Call(context.Background(), llm.Call{Task: llm.TaskStructureResume})
	var oe *llm.OracleError
	require.ErrorAs(t, err, &oe)
	assert.Contains(t, oe.Error(), "quota exceeded")
}

func TestOracle_Call_Malformed(t *testing.T) {
	oracle := llm.NewOracle(llmtest.Reply("I'm sorry, I can't do that"), nil, nil)

	_, err := oracle.Call(context.Background(), llm.Call{Task: llm.TaskStructureResume})
	var se *llm.ShapeError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Preview, "I'm sorry")
}
