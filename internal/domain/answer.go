package domain

import (
	"fmt"
	"strings"
)

// EnoughContext reports whether the retrieved context was sufficient to answer.
// Exactly two literals are recognized; anything else fails validation.
type EnoughContext string

const (
	// EnoughContextYes means the context fully supported the answer.
	EnoughContextYes EnoughContext = "yes"
	// EnoughContextNo means the context was insufficient.
	EnoughContextNo EnoughContext = "no"
)

// SynthesizedAnswer is the structured output of answer synthesis. Immutable
// once Validate has succeeded.
type SynthesizedAnswer struct {
	ThoughtProcess []string      `json:"thought_process" description:"List of thoughts the assistant had while synthesizing the answer"`
	Answer         string        `json:"answer" description:"The synthesized answer to the user's question"`
	EnoughContext  EnoughContext `json:"enough_context" description:"Whether the assistant has enough context to answer the question: yes or no"`
}

// Validate checks that the answer conforms to the declared schema. It
// normalizes enough_context to its lowercase canonical form as a side effect.
func (a *SynthesizedAnswer) Validate() error {
	if a.Answer == "" {
		return fmt.Errorf("%w: answer is required", ErrSchemaValidation)
	}
	if len(a.ThoughtProcess) == 0 {
		return fmt.Errorf("%w: thought_process is required", ErrSchemaValidation)
	}

	switch EnoughContext(strings.ToLower(strings.TrimSpace(string(a.EnoughContext)))) {
	case EnoughContextYes:
		a.EnoughContext = EnoughContextYes
	case EnoughContextNo:
		a.EnoughContext = EnoughContextNo
	default:
		return fmt.Errorf("%w: enough_context must be %q or %q, got %q",
			ErrSchemaValidation, EnoughContextYes, EnoughContextNo, a.EnoughContext)
	}

	return nil
}
