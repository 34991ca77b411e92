// Package records owns the record lifecycle: staging, atomic upsert, index
// and schema management, and exactly-one-selector deletion.
package records

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/arcova/ragstore/internal/domain"
	"github.com/arcova/ragstore/internal/domain/recid"
)

// Service handles record lifecycle operations against one backing table.
type Service struct {
	repo       Repository
	dimensions int
	logger     *zap.Logger
}

// New creates a records service.
func New(repo Repository, dimensions int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, dimensions: dimensions, logger: logger}
}

// Stage validates content, metadata, and embedding into a Record with a
// freshly generated time-ordered id. The caller owns the record until a
// successful Upsert.
func (s *Service) Stage(metadata map[string]any, content string, embedding []float32) (domain.Record, error) {
	id, err := recid.New()
	if err != nil {
		return domain.Record{}, err
	}
	return domain.NewRecord(id, metadata, content, embedding, s.dimensions)
}

// CreateSchema creates the backing table and partitioning if absent.
func (s *Service) CreateSchema(ctx context.Context) error {
	return s.repo.CreateSchema(ctx, s.dimensions)
}

// CreateIndex builds the ANN index. Fails with domain.ErrIndexExists when the
// index is already present; drop it first when rebuilding after a bulk load.
func (s *Service) CreateIndex(ctx context.Context) error {
	return s.repo.CreateIndex(ctx)
}

// DropIndex removes the ANN index; dropping a missing index is a no-op.
// Queries keep working without the index, only slower.
func (s *Service) DropIndex(ctx context.Context) error {
	return s.repo.DropIndex(ctx)
}

// Upsert inserts or replaces records by id, all-or-nothing. Every record is
// re-checked against the configured dimensions before any write; a violation
// rejects the whole batch with domain.ErrValidation and leaves the store
// unmodified.
func (s *Service) Upsert(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}

	for i := range records {
		if records[i].ID() == recid.Nil {
			return fmt.Errorf("%w: record %d has no id", domain.ErrValidation, i)
		}
		if got := len(records[i].Embedding()); got != s.dimensions {
			return fmt.Errorf("%w: record %s: %w",
				domain.ErrValidation, records[i].ID(), domain.NewDimensionError(got, s.dimensions))
		}
	}

	if err := s.repo.Upsert(ctx, records); err != nil {
		return err
	}

	s.logger.Info("Upserted records", zap.Int("count", len(records)))

	return nil
}

// DeleteSelector picks the records to remove. Exactly one field must be set.
type DeleteSelector struct {
	IDs      []recid.ID
	Metadata map[string]string
	All      bool
}

// Delete removes records by exactly one selector and returns the count.
// Supplying zero or more than one selector fails with
// domain.ErrInvalidArgument before any deletion is attempted.
func (s *Service) Delete(ctx context.Context, sel DeleteSelector) (int64, error) {
	supplied := 0
	if len(sel.IDs) > 0 {
		supplied++
	}
	if len(sel.Metadata) > 0 {
		supplied++
	}
	if sel.All {
		supplied++
	}
	if supplied != 1 {
		return 0, fmt.Errorf("%w: exactly one of ids, metadata filter, or delete-all must be supplied, got %d",
			domain.ErrInvalidArgument, supplied)
	}

	var (
		n   int64
		err error
	)
	switch {
	case sel.All:
		n, err = s.repo.DeleteAll(ctx)
	case len(sel.IDs) > 0:
		n, err = s.repo.DeleteByIDs(ctx, sel.IDs)
	default:
		n, err = s.repo.DeleteByMetadata(ctx, sel.Metadata)
	}
	if err != nil {
		return 0, err
	}

	s.logger.Info("Deleted records", zap.Int64("count", n))

	return n, nil
}
