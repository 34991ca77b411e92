// Package search executes validated search requests: query vectorization
// plus filtered similarity ranking.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/arcova/ragstore/internal/domain/search/request"
	"github.com/arcova/ragstore/internal/domain/search/result"
)

// Service handles similarity search over the record store.
type Service struct {
	repo   Repository
	embed  Embedder
	logger *zap.Logger
}

// New creates a search service.
func New(repo Repository, embed Embedder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, embed: embed, logger: logger}
}

// Search resolves the query embedding when the request carries text, then
// runs the ranked, filtered similarity search. Results come back ordered by
// ascending distance, ascending id on ties.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Result, error) {
	vector := req.QueryVector()

	if len(vector) == 0 {
		embRes, err := s.embed.Embed(ctx, req.QueryText())
		if err != nil {
			return nil, fmt.Errorf("vectorize query: %w", err)
		}
		vector = embRes.Embedding
	}

	results, err := s.repo.SearchKNN(ctx, vector, req)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Search completed",
		zap.Int("limit", req.Limit()),
		zap.Int("results", len(results)),
	)

	return results, nil
}
