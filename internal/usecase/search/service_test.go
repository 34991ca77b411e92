package search

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/arcova/ragstore/internal/domain"
	"github.com/arcova/ragstore/internal/domain/recid"
	"github.com/arcova/ragstore/internal/domain/search/request"
	"github.com/arcova/ragstore/internal/domain/search/result"
)

func makeRequest(t *testing.T, text string, vector []float32) *request.Request {
	t.Helper()
	r, err := request.New(text, vector, 5, nil, nil, nil)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return &r
}

func makeResult(t *testing.T) result.Result {
	t.Helper()
	id, err := recid.New()
	if err != nil {
		t.Fatalf("recid.New: %v", err)
	}
	return result.New(domain.Reconstruct(id, nil, "content", []float32{0.1}), 0.2)
}

func TestSearch_TextQueryIsEmbedded(t *testing.T) {
	repo := &mockRepo{results: []result.Result{makeResult(t)}}
	embed := &mockEmbedder{vec: []float32{0.1, 0.2}}
	svc := New(repo, embed, zap.NewNop())

	results, err := svc.Search(context.Background(), makeRequest(t, "shipping options", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %d, want 1", len(results))
	}
	if !embed.called {
		t.Error("expected Embed to be called for a text query")
	}
	if len(repo.lastVector) != 2 {
		t.Errorf("search vector = %v, want the embedding", repo.lastVector)
	}
}

func TestSearch_VectorQuerySkipsEmbedding(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{vec: []float32{0.9}}
	svc := New(repo, embed, zap.NewNop())

	_, err := svc.Search(context.Background(), makeRequest(t, "", []float32{0.5, 0.6}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if embed.called {
		t.Error("Embed must not be called when a vector is supplied")
	}
	if len(repo.lastVector) != 2 || repo.lastVector[0] != 0.5 {
		t.Errorf("search vector = %v, want the supplied one", repo.lastVector)
	}
}

func TestSearch_EmbedderError(t *testing.T) {
	repo := &mockRepo{}
	embed := &mockEmbedder{err: errors.New("provider down")}
	svc := New(repo, embed, zap.NewNop())

	_, err := svc.Search(context.Background(), makeRequest(t, "query", nil))
	if err == nil {
		t.Fatal("expected error")
	}
	if repo.called {
		t.Error("repo must not be called when embedding fails")
	}
}

func TestSearch_RepoError(t *testing.T) {
	repo := &mockRepo{err: errors.New("db down")}
	embed := &mockEmbedder{vec: []float32{0.1}}
	svc := New(repo, embed, zap.NewNop())

	if _, err := svc.Search(context.Background(), makeRequest(t, "query", nil)); err == nil {
		t.Fatal("expected error")
	}
}
