package domain

import (
	"context"
	"encoding/json"
)

// CompletionRole is a chat message role.
type CompletionRole string

const (
	// RoleSystem carries the grounding instructions.
	RoleSystem CompletionRole = "system"
	// RoleUser carries the question.
	RoleUser CompletionRole = "user"
	// RoleAssistant carries retrieved context and prior model output.
	RoleAssistant CompletionRole = "assistant"
)

// CompletionMessage is a single chat message.
type CompletionMessage struct {
	Role    CompletionRole
	Content string
}

// ResponseSchema declares the JSON schema the completion output must satisfy.
type ResponseSchema struct {
	Name   string
	Schema json.RawMessage
}

// CompletionRequest is one completion attempt: messages, generation
// parameters, and the target schema.
type CompletionRequest struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Messages    []CompletionMessage
	Schema      ResponseSchema
}

// CompletionProvider invokes a language model once and returns its raw
// output. Validation and retries live above this boundary.
type CompletionProvider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
