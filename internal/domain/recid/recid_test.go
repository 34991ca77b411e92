package recid

import (
	"bytes"
	"testing"
	"time"
)

func TestNew_EncodesCurrentTime(t *testing.T) {
	before := time.Now().Truncate(time.Millisecond)
	id, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	after := time.Now().Add(time.Millisecond)

	got := TimeOf(id)
	if got.Before(before) || got.After(after) {
		t.Errorf("TimeOf(New()) = %s, want within [%s, %s]", got, before, after)
	}
}

func TestNew_ByteSortableInCreationOrder(t *testing.T) {
	prev, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 100; i++ {
		id, err := New()
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if bytes.Compare(id[:], prev[:]) < 0 {
			t.Fatalf("id %s sorts before earlier id %s", id, prev)
		}
		prev = id
	}
}

func TestParse_RoundTrip(t *testing.T) {
	id, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	parsed, err := Parse(id.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if parsed != id {
		t.Errorf("Parse(%s) = %s", id, parsed)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse("not-a-uuid"); err == nil {
		t.Error("expected error for malformed id")
	}
}

func TestBounds_BracketGeneratedIDs(t *testing.T) {
	start := time.Now()
	id, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	end := time.Now()

	lo := LowerBound(start)
	hi := UpperBound(end)

	if bytes.Compare(id[:], lo[:]) < 0 {
		t.Errorf("id %s sorts before LowerBound(%s) = %s", id, start, lo)
	}
	if bytes.Compare(id[:], hi[:]) > 0 {
		t.Errorf("id %s sorts after UpperBound(%s) = %s", id, end, hi)
	}
}

func TestBounds_InclusiveAtSameInstant(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	lo := LowerBound(at)
	hi := UpperBound(at)

	if bytes.Compare(lo[:], hi[:]) > 0 {
		t.Fatalf("LowerBound %s sorts after UpperBound %s", lo, hi)
	}
	if got := TimeOf(lo); !got.Equal(at) {
		t.Errorf("TimeOf(LowerBound) = %s, want %s", got, at)
	}
	if got := TimeOf(hi); !got.Equal(at) {
		t.Errorf("TimeOf(UpperBound) = %s, want %s", got, at)
	}
}

func TestBounds_AreValidV7(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for name, id := range map[string]ID{"lower": LowerBound(at), "upper": UpperBound(at)} {
		if v := id.Version(); v != 7 {
			t.Errorf("%s bound version = %d, want 7", name, v)
		}
	}
}
