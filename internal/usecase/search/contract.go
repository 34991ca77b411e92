package search

import (
	"context"

	"github.com/arcova/ragstore/internal/domain"
	"github.com/arcova/ragstore/internal/domain/search/request"
	"github.com/arcova/ragstore/internal/domain/search/result"
)

// Repository defines the storage contract for similarity search.
type Repository interface {
	SearchKNN(ctx context.Context, vector []float32, req *request.Request) ([]result.Result, error)
}

// Embedder vectorizes query text into an embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
