package domain

import (
	"errors"
	"testing"
)

func validAnswer() SynthesizedAnswer {
	return SynthesizedAnswer{
		ThoughtProcess: []string{"checked the shipping policy"},
		Answer:         "We ship worldwide.",
		EnoughContext:  EnoughContextYes,
	}
}

func TestSynthesizedAnswer_Valid(t *testing.T) {
	a := validAnswer()
	if err := a.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSynthesizedAnswer_NormalizesEnoughContext(t *testing.T) {
	tests := []struct {
		raw  string
		want EnoughContext
	}{
		{"yes", EnoughContextYes},
		{"Yes", EnoughContextYes},
		{"YES", EnoughContextYes},
		{" yes ", EnoughContextYes},
		{"No", EnoughContextNo},
		{"NO", EnoughContextNo},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			a := validAnswer()
			a.EnoughContext = EnoughContext(tt.raw)
			if err := a.Validate(); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if a.EnoughContext != tt.want {
				t.Errorf("EnoughContext = %q, want %q", a.EnoughContext, tt.want)
			}
		})
	}
}

func TestSynthesizedAnswer_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SynthesizedAnswer)
	}{
		{"empty answer", func(a *SynthesizedAnswer) { a.Answer = "" }},
		{"empty thought process", func(a *SynthesizedAnswer) { a.ThoughtProcess = nil }},
		{"empty enough_context", func(a *SynthesizedAnswer) { a.EnoughContext = "" }},
		{"unrecognized enough_context", func(a *SynthesizedAnswer) { a.EnoughContext = "maybe" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAnswer()
			tt.mutate(&a)
			if err := a.Validate(); !errors.Is(err, ErrSchemaValidation) {
				t.Errorf("expected ErrSchemaValidation, got %v", err)
			}
		})
	}
}
