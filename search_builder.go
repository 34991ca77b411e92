package ragstore

import (
	"context"
	"fmt"
	"time"

	"github.com/arcova/ragstore/internal/domain"
	"github.com/arcova/ragstore/internal/domain/recid"
	"github.com/arcova/ragstore/internal/domain/search/predicate"
	"github.com/arcova/ragstore/internal/domain/search/request"
	"github.com/arcova/ragstore/internal/domain/search/result"
)

// SearchBuilder is a fluent builder for similarity-search queries.
type SearchBuilder struct {
	client *Client

	query  string
	vector []float32
	limit  int

	metadataFilter map[string]string
	pred           Predicate
	hasPred        bool
	start, end     time.Time
	hasRange       bool
}

// Query sets the query text; it is embedded before searching.
// Mutually exclusive with Vector.
func (b *SearchBuilder) Query(q string) *SearchBuilder {
	b.query = q
	return b
}

// Vector sets a precomputed query embedding. Mutually exclusive with Query.
func (b *SearchBuilder) Vector(v []float32) *SearchBuilder {
	b.vector = v
	return b
}

// Limit sets the maximum number of results (default 5).
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.limit = n
	return b
}

// Where adds an exact-match metadata restriction. Multiple calls compose
// via logical AND.
func (b *SearchBuilder) Where(key, value string) *SearchBuilder {
	if b.metadataFilter == nil {
		b.metadataFilter = make(map[string]string)
	}
	b.metadataFilter[key] = value
	return b
}

// Predicate restricts results with a boolean expression over metadata fields.
func (b *SearchBuilder) Predicate(p Predicate) *SearchBuilder {
	b.pred = p
	b.hasPred = true
	return b
}

// Between restricts results to records created within [start, end], both
// bounds inclusive.
func (b *SearchBuilder) Between(start, end time.Time) *SearchBuilder {
	b.start = start
	b.end = end
	b.hasRange = true
	return b
}

// Do executes the search and returns ranked results, closest first.
func (b *SearchBuilder) Do(ctx context.Context) ([]SearchResult, error) {
	results, err := b.search(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]SearchResult, len(results))
	for i := range results {
		rec := results[i].Record()
		out[i] = SearchResult{
			ID:        rec.ID(),
			Metadata:  rec.Metadata(),
			Content:   rec.Content(),
			Embedding: rec.Embedding(),
			CreatedAt: recid.TimeOf(rec.ID()),
			Distance:  results[i].Distance(),
		}
	}
	return out, nil
}

// Synthesize executes the search and synthesizes a grounded answer to the
// query text from the ranked results. Requires Query, not Vector.
func (b *SearchBuilder) Synthesize(ctx context.Context) (Answer, error) {
	if b.query == "" {
		return Answer{}, fmt.Errorf("synthesize requires query text")
	}

	results, err := b.search(ctx)
	if err != nil {
		return Answer{}, err
	}

	ans, err := b.client.synthSvc.Synthesize(ctx, b.query, results)
	if err != nil {
		return Answer{}, err
	}

	return Answer{
		ThoughtProcess: ans.ThoughtProcess,
		Answer:         ans.Answer,
		EnoughContext:  ans.EnoughContext == domain.EnoughContextYes,
	}, nil
}

func (b *SearchBuilder) search(ctx context.Context) ([]result.Result, error) {
	req, err := b.buildRequest()
	if err != nil {
		return nil, err
	}
	return b.client.searchSvc.Search(ctx, &req)
}

func (b *SearchBuilder) buildRequest() (request.Request, error) {
	if b.hasPred && b.pred.err != nil {
		return request.Request{}, fmt.Errorf("invalid predicate: %w", b.pred.err)
	}

	var tr *request.TimeRange
	if b.hasRange {
		tr = &request.TimeRange{Start: b.start, End: b.end}
	}

	var pred *predicate.Predicate
	if b.hasPred {
		pred = b.pred.inner
	}

	return request.New(b.query, b.vector, b.limit, b.metadataFilter, pred, tr)
}
