package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/fridgechef/fridgechef-api/internal/ai"
)

// MockTextProvider is a scriptable ai.TextProvider. GenerateFunc wins
// when set; otherwise Responses/Errors are consulted by model name.
// Calls records the model of every invocation in order.
type MockTextProvider struct {
	GenerateFunc func(ctx context.Context, model, prompt string) (string, error)
	Responses    map[string]string
	Errors       map[string]error

	mu      sync.Mutex
	Calls   []string
	Prompts []string
}

func (m *MockTextProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, model)
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, model, prompt)
	}
	if err, ok := m.Errors[model]; ok {
		return "", err
	}
	if text, ok := m.Responses[model]; ok {
		return text, nil
	}
	return "", fmt.Errorf("model %s not scripted", model)
}

// CallCount returns how many invocations the mock has seen.
func (m *MockTextProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockSearchProvider is a scriptable ai.SearchProvider.
type MockSearchProvider struct {
	SearchFunc     func(ctx context.Context, query string, count int) ([]ai.SearchItem, error)
	ResultsByQuery map[string][]ai.SearchItem
	Err            error

	mu      sync.Mutex
	Queries []string
}

func (m *MockSearchProvider) Search(ctx context.Context, query string, count int) ([]ai.SearchItem, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, count)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.ResultsByQuery[query], nil
}
