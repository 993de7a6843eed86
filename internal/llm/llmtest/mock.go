// Package llmtest provides test doubles for the llm package.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/resume-fit/internal/llm"
)

// MockClient implements llm.Client for testing. It records every prompt.
type MockClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier, maxTokens int32) (string, error)
	GetModelFunc     func(tier llm.ModelTier) string
	CloseFunc        func() error

	mu      sync.Mutex
	prompts []string
}

// GenerateJSON records the prompt and delegates to GenerateJSONFunc.
func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier, maxTokens int32) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier, maxTokens)
	}
	return `{}`, nil
}

// GetModel returns a fixed model name unless overridden.
func (m *MockClient) GetModel(tier llm.ModelTier) string {
	if m.GetModelFunc != nil {
		return m.GetModelFunc(tier)
	}
	return "mock-model"
}

// Close delegates to CloseFunc.
func (m *MockClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns the number of GenerateJSON invocations.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of the recorded prompts.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Reply returns a MockClient that always answers with response.
func Reply(response string) *MockClient {
	return &MockClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier, int32) (string, error) {
			return response, nil
		},
	}
}

// Fail returns a MockClient that always fails with err.
func Fail(err error) *MockClient {
	return &MockClient{
		GenerateJSONFunc: func(context.Context, string, llm.ModelTier, int32) (string, error) {
			return "", err
		},
	}
}

// Hang returns a MockClient that blocks until the call context is done.
func Hang() *MockClient {
	return &MockClient{
		GenerateJSONFunc: func(ctx context.Context, _ string, _ llm.ModelTier, _ int32) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
}
