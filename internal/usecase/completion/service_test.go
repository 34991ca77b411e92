package completion

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/arcova/ragstore/internal/domain"
)

func userMessages() []domain.CompletionMessage {
	return []domain.CompletionMessage{
		{Role: domain.RoleSystem, Content: "system prompt"},
		{Role: domain.RoleUser, Content: "question"},
	}
}

func TestComplete_FirstAttemptValid(t *testing.T) {
	provider := &mockProvider{outputs: []string{`{"value":"ok"}`}}
	client := New(provider, Params{Model: "test-model"}, zap.NewNop())

	var out target
	err := client.Complete(context.Background(), "target", &out, userMessages())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Value != "ok" {
		t.Errorf("Value = %q, want ok", out.Value)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestComplete_SendsSchemaAndParams(t *testing.T) {
	provider := &mockProvider{outputs: []string{`{"value":"ok"}`}}
	client := New(provider, Params{Model: "test-model", MaxTokens: 77}, zap.NewNop())

	var out target
	if err := client.Complete(context.Background(), "target", &out, userMessages()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := provider.requests[0]
	if req.Model != "test-model" || req.MaxTokens != 77 {
		t.Errorf("request params = model %q max_tokens %d", req.Model, req.MaxTokens)
	}
	if req.Schema.Name != "target" {
		t.Errorf("schema name = %q", req.Schema.Name)
	}
	if !strings.Contains(string(req.Schema.Schema), `"value"`) {
		t.Errorf("schema = %s, missing value property", req.Schema.Schema)
	}
}

func TestComplete_RetriesOnInvalidOutput(t *testing.T) {
	provider := &mockProvider{outputs: []string{
		`not json at all`,
		`{"value":""}`,
		`{"value":"ok"}`,
	}}
	client := New(provider, Params{Model: "m"}, zap.NewNop())

	var out target
	err := client.Complete(context.Background(), "target", &out, userMessages())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Value != "ok" {
		t.Errorf("Value = %q, want ok", out.Value)
	}
	if provider.calls != 3 {
		t.Errorf("provider calls = %d, want 3", provider.calls)
	}
}

func TestComplete_RetryFoldsFailureIntoConversation(t *testing.T) {
	provider := &mockProvider{outputs: []string{
		`{"value":""}`,
		`{"value":"ok"}`,
	}}
	client := New(provider, Params{Model: "m"}, zap.NewNop())

	var out target
	if err := client.Complete(context.Background(), "target", &out, userMessages()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Second attempt carries the original messages plus the failed output and
	// a corrective user message.
	second := provider.requests[1].Messages
	if len(second) != 4 {
		t.Fatalf("second attempt messages = %d, want 4", len(second))
	}
	if second[2].Role != domain.RoleAssistant || second[2].Content != `{"value":""}` {
		t.Errorf("folded assistant message = %+v", second[2])
	}
	if second[3].Role != domain.RoleUser || !strings.Contains(second[3].Content, "failed validation") {
		t.Errorf("corrective message = %+v", second[3])
	}
}

func TestComplete_ExhaustsRetries(t *testing.T) {
	provider := &mockProvider{outputs: []string{`{"value":""}`}}
	client := New(provider, Params{Model: "m", MaxRetries: 2}, zap.NewNop())

	var out target
	err := client.Complete(context.Background(), "target", &out, userMessages())
	if !errors.Is(err, domain.ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	// 1 initial + 2 retries.
	if provider.calls != 3 {
		t.Errorf("provider calls = %d, want 3", provider.calls)
	}
}

func TestComplete_NegativeMaxRetriesMeansSingleAttempt(t *testing.T) {
	provider := &mockProvider{outputs: []string{`{"value":""}`}}
	client := New(provider, Params{Model: "m", MaxRetries: -1}, zap.NewNop())

	var out target
	err := client.Complete(context.Background(), "target", &out, userMessages())
	if !errors.Is(err, domain.ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1", provider.calls)
	}
}

func TestNew_ZeroMaxRetriesSelectsDefault(t *testing.T) {
	provider := &mockProvider{outputs: []string{`{"value":""}`}}
	client := New(provider, Params{Model: "m"}, zap.NewNop())

	var out target
	err := client.Complete(context.Background(), "target", &out, userMessages())
	if !errors.Is(err, domain.ErrSchemaValidation) {
		t.Fatalf("expected ErrSchemaValidation, got %v", err)
	}
	if want := 1 + DefaultMaxRetries; provider.calls != want {
		t.Errorf("provider calls = %d, want %d", provider.calls, want)
	}
}

func TestComplete_ProviderErrorPropagatesImmediately(t *testing.T) {
	provider := &mockProvider{err: errors.New("rate limited")}
	client := New(provider, Params{Model: "m", MaxRetries: 5}, zap.NewNop())

	var out target
	err := client.Complete(context.Background(), "target", &out, userMessages())
	if err == nil || errors.Is(err, domain.ErrSchemaValidation) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if provider.calls != 1 {
		t.Errorf("provider calls = %d, want 1 (no retry on provider errors)", provider.calls)
	}
}

func TestComplete_CanceledContext(t *testing.T) {
	provider := &mockProvider{outputs: []string{`{"value":"ok"}`}}
	client := New(provider, Params{Model: "m"}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out target
	err := client.Complete(ctx, "target", &out, userMessages())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider calls = %d, want 0", provider.calls)
	}
}

func TestComplete_DoesNotMutateCallerMessages(t *testing.T) {
	provider := &mockProvider{outputs: []string{`{"value":""}`, `{"value":"ok"}`}}
	client := New(provider, Params{Model: "m"}, zap.NewNop())

	messages := userMessages()
	var out target
	if err := client.Complete(context.Background(), "target", &out, messages); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(messages) != 2 {
		t.Errorf("caller messages grew to %d", len(messages))
	}
}

func TestComplete_PerCallOverrides(t *testing.T) {
	provider := &mockProvider{outputs: []string{`{"value":"ok"}`}}
	client := New(provider, Params{Model: "default-model"}, zap.NewNop())

	var out target
	err := client.Complete(context.Background(), "target", &out, userMessages(),
		WithModel("override-model"), WithTemperature(0.5), WithMaxTokens(128))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := provider.requests[0]
	if req.Model != "override-model" || req.Temperature != 0.5 || req.MaxTokens != 128 {
		t.Errorf("request = %+v", req)
	}
}

func TestComplete_ResetsTargetBetweenAttempts(t *testing.T) {
	provider := &mockProvider{outputs: []string{
		`{"value":"stale"} trailing garbage`,
		`{"value":"fresh"}`,
	}}
	client := New(provider, Params{Model: "m"}, zap.NewNop())

	var out target
	if err := client.Complete(context.Background(), "target", &out, userMessages()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Value != "fresh" {
		t.Errorf("Value = %q, want fresh", out.Value)
	}
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDecodeInto_RequiresPointer(t *testing.T) {
	var out target
	if err := decodeInto(`{"value":"ok"}`, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var nilTarget *target
	if err := decodeInto(`{"value":"ok"}`, nilTarget); err == nil {
		t.Error("expected error for nil pointer target")
	}
}
