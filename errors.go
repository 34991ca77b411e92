package ragstore

import "github.com/arcova/ragstore/internal/domain"

// Sentinel errors for errors.Is matching on SDK calls.
var (
	// ErrValidation reports a malformed record (missing id, empty content,
	// wrong embedding dimensionality).
	ErrValidation = domain.ErrValidation
	// ErrInvalidArgument reports a malformed request (bad limit, inverted
	// time range, bad delete selector).
	ErrInvalidArgument = domain.ErrInvalidArgument
	// ErrSchema reports that the backing table exists with an incompatible
	// schema.
	ErrSchema = domain.ErrSchema
	// ErrDimensionMismatch reports an embedding whose length differs from
	// the configured dimensionality.
	ErrDimensionMismatch = domain.ErrDimensionMismatch
	// ErrIndexExists reports that CreateIndex found an existing ANN index.
	ErrIndexExists = domain.ErrIndexExists
	// ErrProvider reports an embedding or completion provider failure.
	ErrProvider = domain.ErrProvider
	// ErrUnsupportedProvider reports an unknown completion provider name.
	ErrUnsupportedProvider = domain.ErrUnsupportedProvider
	// ErrSchemaValidation reports that completion output never conformed to
	// the answer schema within the retry budget.
	ErrSchemaValidation = domain.ErrSchemaValidation
)
