// Package db defines the storage contracts for the vector store. Backends
// implement Store; consumers depend on the narrow sub-interfaces.
package db

import "context"

// Store is the main database facade combining all sub-interfaces.
type Store interface {
	Pinger
	SchemaManager
	IndexManager
	RecordStore
	Searcher
	Close() error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SchemaManager owns the backing table and its time partitions.
type SchemaManager interface {
	// CreateSchema creates the backing table if absent. Idempotent; fails with
	// ErrSchemaMismatch when a table with different vector dimensions exists.
	CreateSchema(ctx context.Context, def *SchemaDefinition) error
	// EnsurePartitions creates the given range partitions if absent.
	EnsurePartitions(ctx context.Context, table string, parts []Partition) error
}

// IndexManager provides ANN index lifecycle operations, independent of data.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// RecordRow is the storage representation of a record.
type RecordRow struct {
	ID        string
	Metadata  []byte
	Content   string
	Embedding []float32
}

// SearchRow is a RecordRow plus its distance to the query vector.
type SearchRow struct {
	RecordRow
	Distance float64
}

// Partition describes a single id-range partition. To is exclusive.
type Partition struct {
	Name string
	From string
	To   string
}

// RecordStore provides record write operations. UpsertBatch is all-or-nothing.
type RecordStore interface {
	UpsertBatch(ctx context.Context, table string, rows []RecordRow) error
	DeleteByIDs(ctx context.Context, table string, ids []string) (int64, error)
	DeleteByMetadata(ctx context.Context, table string, filter map[string]string) (int64, error)
	DeleteAll(ctx context.Context, table string) (int64, error)
}

// Searcher provides similarity search over the embedding column.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) ([]SearchRow, error)
}

// KVStore provides simple key-value operations (embedding cache backend).
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}
