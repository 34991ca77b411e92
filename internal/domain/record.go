package domain

import (
	"fmt"
	"time"

	"github.com/arcova/ragstore/internal/domain/recid"
)

// Record is a stored unit of content: source text, its embedding, and
// schema-free metadata, keyed by a time-ordered id.
type Record struct {
	id        recid.ID
	metadata  map[string]any
	content   string
	embedding []float32
}

// NewRecord validates and creates a Record. The embedding length must equal
// dimensions; a mismatch is rejected here, before any write is attempted.
func NewRecord(id recid.ID, metadata map[string]any, content string, embedding []float32, dimensions int) (Record, error) {
	if id == recid.Nil {
		return Record{}, fmt.Errorf("%w: record id is required", ErrValidation)
	}
	if content == "" {
		return Record{}, fmt.Errorf("%w: content is required", ErrValidation)
	}
	if len(embedding) == 0 {
		return Record{}, fmt.Errorf("%w: embedding is required", ErrValidation)
	}
	if len(embedding) != dimensions {
		return Record{}, fmt.Errorf("%w: %w", ErrValidation, NewDimensionError(len(embedding), dimensions))
	}

	return Record{
		id:        id,
		metadata:  cloneMetadata(metadata),
		content:   content,
		embedding: embedding,
	}, nil
}

// Reconstruct creates a Record without validation (storage hydration).
func Reconstruct(id recid.ID, metadata map[string]any, content string, embedding []float32) Record {
	return Record{id: id, metadata: metadata, content: content, embedding: embedding}
}

// ID returns the record identifier.
func (r *Record) ID() recid.ID { return r.id }

// Metadata returns the metadata fields.
func (r *Record) Metadata() map[string]any { return r.metadata }

// Content returns the source text the embedding represents.
func (r *Record) Content() string { return r.content }

// Embedding returns the embedding vector.
func (r *Record) Embedding() []float32 { return r.embedding }

// CreatedAt returns the creation instant encoded in the record id.
func (r *Record) CreatedAt() time.Time { return recid.TimeOf(r.id) }

// Category returns the conventional "category" metadata field, if present.
func (r *Record) Category() string {
	if s, ok := r.metadata["category"].(string); ok {
		return s
	}
	return ""
}

func cloneMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
