// Package synthesis turns a question plus ranked retrieval results into a
// grounded, schema-validated answer.
package synthesis

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/arcova/ragstore/internal/domain"
	"github.com/arcova/ragstore/internal/domain/search/result"
)

// SystemPrompt fixes the assistant persona and grounding rules.
const SystemPrompt = `# Role and Purpose
You are an AI assistant for an e-commerce FAQ system. Your task is to synthesize a coherent and helpful answer
based on the given question and relevant context retrieved from a knowledge database.

# Guidelines:
1. Provide a clear and concise answer to the question.
2. Use only the information from the relevant context to support your answer.
3. The context is retrieved based on cosine similarity, so some information might be missing or irrelevant.
4. Be transparent when there is insufficient information to fully answer the question.
5. Do not make up or infer information not present in the provided context.
6. If you cannot answer the question based on the given context, clearly state that.
7. Maintain a helpful and professional tone appropriate for customer service.
8. Adhere strictly to company guidelines and policies by using only the provided knowledge base.

Review the question from the user:`

// AnswerSchemaName identifies the structured answer schema to providers.
const AnswerSchemaName = "synthesized_answer"

// contextEntry keeps only the fields relevant for grounding.
type contextEntry struct {
	Content  string `json:"content"`
	Category string `json:"category"`
}

// Service synthesizes answers from retrieval output.
type Service struct {
	llm    Completer
	logger *zap.Logger
}

// New creates a synthesis service.
func New(llm Completer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{llm: llm, logger: logger}
}

// Synthesize answers the question from the ranked results. Rank order is
// semantically meaningful (most similar first) and is preserved as-is: no
// reordering, no deduplication. The returned answer has already passed
// schema validation.
func (s *Service) Synthesize(ctx context.Context, question string, results []result.Result) (domain.SynthesizedAnswer, error) {
	if question == "" {
		return domain.SynthesizedAnswer{}, fmt.Errorf("%w: question is required", domain.ErrInvalidArgument)
	}

	contextJSON, err := serializeContext(results)
	if err != nil {
		return domain.SynthesizedAnswer{}, err
	}

	messages := []domain.CompletionMessage{
		{Role: domain.RoleSystem, Content: SystemPrompt},
		{Role: domain.RoleUser, Content: "# User question:\n" + question},
		{Role: domain.RoleAssistant, Content: "# Retrieved information:\n" + contextJSON},
	}

	var answer domain.SynthesizedAnswer
	if err := s.llm.Complete(ctx, AnswerSchemaName, &answer, messages); err != nil {
		return domain.SynthesizedAnswer{}, fmt.Errorf("synthesize answer: %w", err)
	}

	s.logger.Debug("Answer synthesized",
		zap.Int("context_size", len(results)),
		zap.String("enough_context", string(answer.EnoughContext)),
	)

	return answer, nil
}

// serializeContext renders the ranked results as an ordered JSON array of
// content/category pairs.
func serializeContext(results []result.Result) (string, error) {
	entries := make([]contextEntry, 0, len(results))
	for i := range results {
		rec := results[i].Record()
		entries = append(entries, contextEntry{
			Content:  rec.Content(),
			Category: rec.Category(),
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize context: %w", err)
	}
	return string(data), nil
}
