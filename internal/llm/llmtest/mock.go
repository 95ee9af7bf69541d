// Package llmtest provides a function-field mock of llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/interview-assistant/internal/llm"
)

// Call records one generation request made against a MockLLMClient
type Call struct {
	Method string
	Prompt string
	Tier   llm.ModelTier
}

// MockLLMClient implements llm.Client with overridable function fields.
// Unset functions return an empty response.
type MockLLMClient struct {
	GenerateContentFunc func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GenerateJSONFunc    func(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
	GetModelFunc        func(tier llm.ModelTier) string
	CloseFunc           func() error

	mu    sync.Mutex
	calls []Call
}

var _ llm.Client = (*MockLLMClient)(nil)

// GenerateContent records the call and delegates to GenerateContentFunc
func (m *MockLLMClient) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier, _ ...llm.CallOption) (string, error) {
	m.record("GenerateContent", prompt, tier)
	if m.GenerateContentFunc != nil {
		return m.GenerateContentFunc(ctx, prompt, tier)
	}
	return "", nil
}

// GenerateJSON records the call and delegates to GenerateJSONFunc
func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier, _ ...llm.CallOption) (string, error) {
	m.record("GenerateJSON", prompt, tier)
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier)
	}
	return "", nil
}

// GetModel delegates to GetModelFunc
func (m *MockLLMClient) GetModel(tier llm.ModelTier) string {
	if m.GetModelFunc != nil {
		return m.GetModelFunc(tier)
	}
	return "mock-model"
}

// Close delegates to CloseFunc
func (m *MockLLMClient) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Calls returns a copy of the recorded calls in order
func (m *MockLLMClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *MockLLMClient) record(method, prompt string, tier llm.ModelTier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Method: method, Prompt: prompt, Tier: tier})
}

// NoDelayPolicy retries immediately, for tests that exercise retry paths.
func NoDelayPolicy(attempts int) llm.RetryPolicy {
	return llm.RetryPolicy{MaxAttempts: attempts, Multiplier: 1}
}
