// Package completion wraps a language-model provider with schema validation
// and bounded re-prompting. It is the only place in the core that retries:
// an attempt either validates, schedules a retry with the validation error
// folded into the conversation, or exhausts the bound.
package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"

	"github.com/arcova/ragstore/internal/domain"
	"github.com/arcova/ragstore/internal/metrics"
)

// Default generation parameters. Zero temperature keeps validation-sensitive
// structured output deterministic.
const (
	DefaultTemperature = 0.0
	DefaultMaxRetries  = 3
)

// Validatable is a completion target: JSON-decodable and self-validating.
type Validatable interface {
	Validate() error
}

// Params are generation parameters with per-call overrides. MaxRetries 0
// means unset (DefaultMaxRetries applies); a negative value disables
// retries, leaving a single attempt.
type Params struct {
	Model       string
	Temperature float32
	MaxTokens   int
	MaxRetries  int
}

// Option overrides a generation parameter for a single call.
type Option func(*Params)

// WithModel overrides the model identifier.
func WithModel(model string) Option {
	return func(p *Params) { p.Model = model }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float32) Option {
	return func(p *Params) { p.Temperature = t }
}

// WithMaxTokens overrides the output token bound.
func WithMaxTokens(n int) Option {
	return func(p *Params) { p.MaxTokens = n }
}

// WithMaxRetries overrides the number of re-prompts after the first attempt.
func WithMaxRetries(n int) Option {
	return func(p *Params) { p.MaxRetries = n }
}

// attempt states of the retry machine.
type state int

const (
	statePending state = iota
	stateAttempting
	stateRetryScheduled
	stateValidated
	stateExhausted
)

// Client obtains schema-conformant structured output from a provider.
type Client struct {
	provider domain.CompletionProvider
	defaults Params
	logger   *zap.Logger
}

// New creates a structured completion client.
func New(provider domain.CompletionProvider, defaults Params, logger *zap.Logger) *Client {
	if defaults.MaxRetries == 0 {
		defaults.MaxRetries = DefaultMaxRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{provider: provider, defaults: defaults, logger: logger}
}

// Provider returns the underlying provider name.
func (c *Client) Provider() string { return c.provider.Name() }

// Complete runs the completion until the provider's output decodes into
// target and target.Validate passes, re-prompting with the validation error
// up to MaxRetries additional attempts. target must be a non-nil pointer.
// Exhaustion fails with domain.ErrSchemaValidation; provider failures
// propagate immediately without consuming retries.
func (c *Client) Complete(
	ctx context.Context, schemaName string, target Validatable,
	messages []domain.CompletionMessage, opts ...Option,
) error {
	params := c.defaults
	for _, o := range opts {
		o(&params)
	}

	schema, err := schemaFor(schemaName, target)
	if err != nil {
		return err
	}

	conversation := make([]domain.CompletionMessage, len(messages))
	copy(conversation, messages)

	var lastErr error
	attempts := 0
	maxAttempts := 1 + params.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for st := statePending; ; {
		switch st {
		case statePending, stateRetryScheduled:
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("completion canceled after %d attempts: %w", attempts, err)
			}
			st = stateAttempting

		case stateAttempting:
			attempts++
			raw, err := c.attempt(ctx, params, schema, conversation)
			if err != nil {
				return err
			}

			if validationErr := decodeInto(raw, target); validationErr != nil {
				lastErr = validationErr
				metrics.CompletionAttemptsTotal.WithLabelValues(c.provider.Name(), params.Model, "invalid").Inc()
				c.logger.Warn("Completion output failed validation",
					zap.Int("attempt", attempts),
					zap.Int("max_attempts", maxAttempts),
					zap.Error(validationErr),
				)

				if attempts >= maxAttempts {
					st = stateExhausted
					continue
				}

				conversation = append(conversation,
					domain.CompletionMessage{Role: domain.RoleAssistant, Content: raw},
					domain.CompletionMessage{
						Role: domain.RoleUser,
						Content: fmt.Sprintf(
							"The previous response failed validation: %v. Respond again with a single JSON object that conforms to the %q schema.",
							validationErr, schemaName,
						),
					},
				)
				st = stateRetryScheduled
				continue
			}

			metrics.CompletionAttemptsTotal.WithLabelValues(c.provider.Name(), params.Model, "validated").Inc()
			st = stateValidated

		case stateValidated:
			return nil

		case stateExhausted:
			metrics.CompletionExhaustedTotal.WithLabelValues(c.provider.Name(), params.Model).Inc()
			return fmt.Errorf("%w after %d attempts: %v", domain.ErrSchemaValidation, attempts, lastErr)
		}
	}
}

// attempt issues one provider call.
func (c *Client) attempt(
	ctx context.Context, params Params, schema domain.ResponseSchema,
	conversation []domain.CompletionMessage,
) (string, error) {
	start := time.Now()

	raw, err := c.provider.Complete(ctx, domain.CompletionRequest{
		Model:       params.Model,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		Messages:    conversation,
		Schema:      schema,
	})
	if err != nil {
		metrics.CompletionAttemptsTotal.WithLabelValues(c.provider.Name(), params.Model, "provider_error").Inc()
		return "", fmt.Errorf("completion provider: %w", err)
	}

	metrics.CompletionRequestDuration.WithLabelValues(c.provider.Name(), params.Model).Observe(time.Since(start).Seconds())

	return raw, nil
}

// schemaFor reflects the JSON schema for the target type.
func schemaFor(name string, target Validatable) (domain.ResponseSchema, error) {
	def, err := jsonschema.GenerateSchemaForType(target)
	if err != nil {
		return domain.ResponseSchema{}, fmt.Errorf("generate schema %q: %w", name, err)
	}
	raw, err := json.Marshal(def)
	if err != nil {
		return domain.ResponseSchema{}, fmt.Errorf("marshal schema %q: %w", name, err)
	}
	return domain.ResponseSchema{Name: name, Schema: raw}, nil
}

// decodeInto resets target, decodes the raw output, and validates it.
func decodeInto(raw string, target Validatable) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return fmt.Errorf("completion target must be a non-nil pointer, got %T", target)
	}
	v.Elem().SetZero()

	if err := json.Unmarshal([]byte(stripFences(raw)), target); err != nil {
		return fmt.Errorf("output is not valid JSON: %w", err)
	}
	return target.Validate()
}

// stripFences removes a surrounding markdown code fence, which providers
// without native JSON response formats sometimes emit.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
