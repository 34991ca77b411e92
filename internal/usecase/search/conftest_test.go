package search

import (
	"context"

	"github.com/arcova/ragstore/internal/domain"
	"github.com/arcova/ragstore/internal/domain/search/request"
	"github.com/arcova/ragstore/internal/domain/search/result"
)

type mockRepo struct {
	results    []result.Result
	err        error
	lastVector []float32
	called     bool
}

func (m *mockRepo) SearchKNN(_ context.Context, vector []float32, _ *request.Request) ([]result.Result, error) {
	m.called = true
	m.lastVector = vector
	return m.results, m.err
}

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}
