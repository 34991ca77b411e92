package synthesis

import (
	"context"

	"github.com/arcova/ragstore/internal/domain"
	"github.com/arcova/ragstore/internal/usecase/completion"
)

// Completer obtains schema-validated structured output. Retry-on-validation-
// failure lives behind this boundary, not in the synthesizer.
type Completer interface {
	Complete(
		ctx context.Context, schemaName string, target completion.Validatable,
		messages []domain.CompletionMessage, opts ...completion.Option,
	) error
}
