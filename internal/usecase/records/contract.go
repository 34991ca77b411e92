package records

import (
	"context"

	"github.com/arcova/ragstore/internal/domain"
	"github.com/arcova/ragstore/internal/domain/recid"
)

// Repository defines the storage contract for record lifecycle operations.
type Repository interface {
	CreateSchema(ctx context.Context, dimensions int) error
	CreateIndex(ctx context.Context) error
	DropIndex(ctx context.Context) error
	Upsert(ctx context.Context, records []domain.Record) error
	DeleteByIDs(ctx context.Context, ids []recid.ID) (int64, error)
	DeleteByMetadata(ctx context.Context, filter map[string]string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}
