package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/arcova/ragstore/internal/domain/recid"
)

func mustID(t *testing.T) recid.ID {
	t.Helper()
	id, err := recid.New()
	if err != nil {
		t.Fatalf("recid.New: %v", err)
	}
	return id
}

func TestNewRecord_Valid(t *testing.T) {
	id := mustID(t)
	rec, err := NewRecord(id, map[string]any{"category": "Shipping"}, "some content", []float32{0.1, 0.2, 0.3}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.ID() != id {
		t.Errorf("ID = %s, want %s", rec.ID(), id)
	}
	if rec.Content() != "some content" {
		t.Errorf("Content = %q", rec.Content())
	}
	if rec.Category() != "Shipping" {
		t.Errorf("Category = %q, want Shipping", rec.Category())
	}
	if len(rec.Embedding()) != 3 {
		t.Errorf("Embedding length = %d, want 3", len(rec.Embedding()))
	}
}

func TestNewRecord_ValidationErrors(t *testing.T) {
	id := mustID(t)
	emb := []float32{0.1, 0.2}

	tests := []struct {
		name    string
		id      recid.ID
		content string
		emb     []float32
		dims    int
	}{
		{"nil id", recid.Nil, "content", emb, 2},
		{"empty content", id, "", emb, 2},
		{"empty embedding", id, "content", nil, 2},
		{"dimension mismatch", id, "content", emb, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecord(tt.id, nil, tt.content, tt.emb, tt.dims)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestNewRecord_DimensionMismatchDetail(t *testing.T) {
	_, err := NewRecord(mustID(t), nil, "content", []float32{0.1}, 4)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}

	var de *DimensionError
	if !errors.As(err, &de) {
		t.Fatalf("expected DimensionError in chain, got %v", err)
	}
	if de.Got != 1 || de.Want != 4 {
		t.Errorf("DimensionError = got %d want %d, expected got 1 want 4", de.Got, de.Want)
	}
}

func TestNewRecord_ClonesMetadata(t *testing.T) {
	meta := map[string]any{"category": "Returns"}
	rec, err := NewRecord(mustID(t), meta, "content", []float32{0.1}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	meta["category"] = "mutated"
	if rec.Category() != "Returns" {
		t.Errorf("Category = %q, caller mutation leaked into record", rec.Category())
	}
}

func TestRecord_CreatedAtFromID(t *testing.T) {
	before := time.Now().Truncate(time.Millisecond)
	rec, err := NewRecord(mustID(t), nil, "content", []float32{0.1}, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created := rec.CreatedAt()
	if created.Before(before) || created.After(time.Now().Add(time.Millisecond)) {
		t.Errorf("CreatedAt = %s, not near now", created)
	}
}

func TestRecord_CategoryMissing(t *testing.T) {
	rec := Reconstruct(mustID(t), map[string]any{"other": 1}, "content", []float32{0.1})
	if got := rec.Category(); got != "" {
		t.Errorf("Category = %q, want empty", got)
	}
}
