package completion

import (
	"context"
	"fmt"

	"github.com/arcova/ragstore/internal/domain"
)

// mockProvider replays canned outputs in order; the last one repeats.
type mockProvider struct {
	outputs  []string
	err      error
	calls    int
	requests []domain.CompletionRequest
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Complete(_ context.Context, req domain.CompletionRequest) (string, error) {
	m.calls++
	m.requests = append(m.requests, req)
	if m.err != nil {
		return "", m.err
	}
	i := m.calls - 1
	if i >= len(m.outputs) {
		i = len(m.outputs) - 1
	}
	return m.outputs[i], nil
}

// target is a minimal validatable completion output.
type target struct {
	Value string `json:"value"`
}

func (t *target) Validate() error {
	if t.Value == "" {
		return fmt.Errorf("value is required")
	}
	return nil
}
