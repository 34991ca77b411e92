// Package anthropic adapts the Anthropic Messages API to the completion
// provider boundary.
package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/arcova/ragstore/internal/domain"
)

// DefaultMaxTokens bounds output when the request leaves MaxTokens unset;
// the Messages API requires an explicit value.
const DefaultMaxTokens = 1024

// Completer is a completion provider using the Anthropic Messages API. The
// API has no JSON-schema response format, so the schema is appended to the
// system prompt and conformance is enforced by the caller's validation loop.
type Completer struct {
	client *anthropic.Client
	logger *zap.Logger
}

// CompleterConfig holds the completion provider settings.
type CompleterConfig struct {
	APIKey string
	Logger *zap.Logger
}

// NewCompleter creates an Anthropic completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := anthropic.NewClient(anthropicopt.WithAPIKey(cfg.APIKey))

	return &Completer{client: &client, logger: logger}
}

// Name implements domain.CompletionProvider.
func (c *Completer) Name() string { return "anthropic" }

// Complete implements domain.CompletionProvider: one request, raw output back.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	var system strings.Builder
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case domain.RoleSystem:
			if system.Len() > 0 {
				system.WriteString("\n\n")
			}
			system.WriteString(m.Content)
		case domain.RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}

	if req.Schema.Name != "" {
		fmt.Fprintf(&system,
			"\n\nRespond with a single JSON object conforming to the %q JSON schema, with no surrounding prose:\n%s",
			req.Schema.Name, string(req.Schema.Schema),
		)
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(req.Model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(float64(req.Temperature)),
		Messages:    messages,
	}
	if system.Len() > 0 {
		params.System = []anthropic.TextBlockParam{{Text: system.String()}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("messages api: %w: %w", err, domain.ErrProvider)
	}

	var b strings.Builder
	for _, content := range resp.Content {
		if text, ok := content.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}

	out := b.String()
	if out == "" {
		return "", errors.New("empty completion response")
	}

	return out, nil
}
