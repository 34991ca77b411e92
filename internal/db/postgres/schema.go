package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arcova/ragstore/internal/db"
)

// CreateSchema creates the pgvector extension and the backing table if
// absent. The table is range-partitioned by id; because ids are time-ordered,
// id ranges are time ranges.
func (s *Store) CreateSchema(ctx context.Context, def *db.SchemaDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateSchema, Err: err}
	}

	if _, err := s.conn.ExecContext(ctx, "CREATE EXTENSION IF NOT EXISTS vector"); err != nil {
		return &db.Error{Op: db.OpCreateSchema, Err: fmt.Errorf("create extension: %w", err)}
	}

	existing, err := s.embeddingDimensions(ctx, def.Table)
	if err != nil {
		return &db.Error{Op: db.OpCreateSchema, Err: err}
	}
	if existing > 0 && existing != def.Dimensions {
		return fmt.Errorf("table %s has vector(%d), want vector(%d): %w",
			def.Table, existing, def.Dimensions, db.ErrSchemaMismatch)
	}

	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id uuid NOT NULL,
			metadata jsonb NOT NULL DEFAULT '{}'::jsonb,
			contents text NOT NULL,
			embedding vector(%d) NOT NULL,
			PRIMARY KEY (id)
		) PARTITION BY RANGE (id)`, def.Table, def.Dimensions)

	if _, err := s.conn.ExecContext(ctx, ddl); err != nil {
		return &db.Error{Op: db.OpCreateSchema, Err: err}
	}

	s.logger.Info("Schema ready",
		zap.String("table", def.Table),
		zap.Int("dimensions", def.Dimensions),
	)

	return nil
}

// EnsurePartitions creates the given id-range partitions if absent.
func (s *Store) EnsurePartitions(ctx context.Context, table string, parts []db.Partition) error {
	if !db.IsValidIdentifier(table) {
		return &db.Error{Op: db.OpCreatePartition, Err: errors.New("table name contains invalid characters")}
	}

	for _, p := range parts {
		if !db.IsValidIdentifier(p.Name) {
			return &db.Error{Op: db.OpCreatePartition, Err: fmt.Errorf("partition name %q contains invalid characters", p.Name)}
		}
		if _, err := uuid.Parse(p.From); err != nil {
			return &db.Error{Op: db.OpCreatePartition, Err: fmt.Errorf("partition %s lower bound: %w", p.Name, err)}
		}
		if _, err := uuid.Parse(p.To); err != nil {
			return &db.Error{Op: db.OpCreatePartition, Err: fmt.Errorf("partition %s upper bound: %w", p.Name, err)}
		}
		ddl := fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s PARTITION OF %s FOR VALUES FROM ('%s') TO ('%s')",
			p.Name, table, p.From, p.To,
		)
		if _, err := s.conn.ExecContext(ctx, ddl); err != nil {
			return &db.Error{Op: db.OpCreatePartition, Err: fmt.Errorf("partition %s: %w", p.Name, err)}
		}
	}

	return nil
}

// embeddingDimensions returns the vector dimensions of the existing embedding
// column, or 0 when the table does not exist.
func (s *Store) embeddingDimensions(ctx context.Context, table string) (int, error) {
	const q = `
		SELECT a.atttypmod
		FROM pg_attribute a
		JOIN pg_class c ON a.attrelid = c.oid
		WHERE c.relname = $1 AND a.attname = 'embedding' AND NOT a.attisdropped`

	var dims int
	err := s.conn.QueryRowContext(ctx, q, table).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("inspect table %s: %w", table, err)
	}
	return dims, nil
}
