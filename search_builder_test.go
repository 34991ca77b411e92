package ragstore

import (
	"errors"
	"testing"
	"time"
)

func TestSearchBuilder_BuildRequest(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)

	b := (&SearchBuilder{}).
		Query("shipping options").
		Limit(3).
		Where("category", "Shipping").
		Predicate(Gt("priority", 2)).
		Between(start, end)

	req, err := b.buildRequest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.QueryText() != "shipping options" || req.Limit() != 3 {
		t.Errorf("request = text %q limit %d", req.QueryText(), req.Limit())
	}
	if req.MetadataFilter()["category"] != "Shipping" {
		t.Errorf("metadata filter = %v", req.MetadataFilter())
	}
	if req.Predicate() == nil {
		t.Error("predicate missing")
	}
	if tr := req.TimeRange(); tr == nil || !tr.Start.Equal(start) || !tr.End.Equal(end) {
		t.Errorf("time range = %+v", req.TimeRange())
	}
}

func TestSearchBuilder_VectorQuery(t *testing.T) {
	req, err := (&SearchBuilder{}).Vector([]float32{0.1, 0.2}).buildRequest()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.QueryVector()) != 2 {
		t.Errorf("vector = %v", req.QueryVector())
	}
}

func TestSearchBuilder_InvalidCombinations(t *testing.T) {
	tests := []struct {
		name string
		b    *SearchBuilder
	}{
		{"no query", &SearchBuilder{}},
		{"text and vector", (&SearchBuilder{}).Query("q").Vector([]float32{0.1})},
		{"negative limit", (&SearchBuilder{}).Query("q").Limit(-1)},
		{"inverted range", (&SearchBuilder{}).Query("q").Between(time.Now(), time.Now().Add(-time.Hour))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.b.buildRequest(); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestSearchBuilder_InvalidPredicateSurfacesAtBuild(t *testing.T) {
	b := (&SearchBuilder{}).Query("q").Predicate(Eq("", "v"))
	if _, err := b.buildRequest(); err == nil {
		t.Error("expected error for invalid predicate")
	}
}

func TestPredicate_DSL(t *testing.T) {
	p := Or(
		And(Eq("category", "Shipping"), Gte("priority", 1)),
		NotEq("category", "Returns"),
	)
	if p.err != nil {
		t.Fatalf("unexpected error: %v", p.err)
	}
	if p.inner.IsLeaf() {
		t.Error("expected a branch node")
	}
	if len(p.inner.Children()) != 2 {
		t.Errorf("children = %d, want 2", len(p.inner.Children()))
	}
}

func TestPredicate_DSLErrorPropagates(t *testing.T) {
	p := And(Eq("category", "Shipping"), Lt("", 5))
	if p.err == nil {
		t.Error("expected error from invalid leaf to propagate")
	}
}
