// Package ragstore is a retrieval-augmented answer store: a time-partitioned
// Postgres/pgvector record store plus a schema-validated answer synthesis
// pipeline on top of it.
package ragstore

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/arcova/ragstore/internal/domain/search/predicate"
)

// EmbeddingResult is an embedding vector with token accounting.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder converts text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// Record is a staged or stored record. IDs are time-ordered; a record's
// creation time is derivable from its id.
type Record struct {
	ID        uuid.UUID
	Metadata  map[string]any
	Content   string
	Embedding []float32
}

// SearchResult is one ranked similarity-search hit.
type SearchResult struct {
	ID        uuid.UUID
	Metadata  map[string]any
	Content   string
	Embedding []float32
	CreatedAt time.Time
	Distance  float64
}

// Answer is a synthesized, schema-validated answer.
type Answer struct {
	ThoughtProcess []string
	Answer         string
	EnoughContext  bool
}

// DeleteSelector picks records to delete. Exactly one field must be set.
type DeleteSelector struct {
	IDs      []uuid.UUID
	Metadata map[string]string
	All      bool
}

// Predicate is a boolean expression over metadata fields, built with the
// comparison constructors and combined with And/Or. Construction errors
// surface when the search request is built.
type Predicate struct {
	inner *predicate.Predicate
	err   error
}

func compare(field string, op predicate.Op, value any) Predicate {
	p, err := predicate.Compare(field, op, value)
	return Predicate{inner: p, err: err}
}

// Eq matches records whose metadata field equals value.
func Eq(field string, value any) Predicate { return compare(field, predicate.Eq, value) }

// NotEq matches records whose metadata field differs from value.
func NotEq(field string, value any) Predicate { return compare(field, predicate.NotEq, value) }

// Gt matches records whose metadata field is greater than value.
func Gt(field string, value any) Predicate { return compare(field, predicate.Gt, value) }

// Gte matches records whose metadata field is greater than or equal to value.
func Gte(field string, value any) Predicate { return compare(field, predicate.Gte, value) }

// Lt matches records whose metadata field is less than value.
func Lt(field string, value any) Predicate { return compare(field, predicate.Lt, value) }

// Lte matches records whose metadata field is less than or equal to value.
func Lte(field string, value any) Predicate { return compare(field, predicate.Lte, value) }

// And requires all predicates to hold.
func And(preds ...Predicate) Predicate { return join(predicate.And, preds) }

// Or requires at least one predicate to hold.
func Or(preds ...Predicate) Predicate { return join(predicate.Or, preds) }

func join(combine func(...*predicate.Predicate) *predicate.Predicate, preds []Predicate) Predicate {
	inner := make([]*predicate.Predicate, 0, len(preds))
	for _, p := range preds {
		if p.err != nil {
			return Predicate{err: p.err}
		}
		inner = append(inner, p.inner)
	}
	return Predicate{inner: combine(inner...)}
}
