package postgres

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arcova/ragstore/internal/db"
)

// CreateIndex builds the HNSW cosine index over the embedding column.
// Calling it while the index exists fails with db.ErrIndexExists; drop first
// when reindexing after a bulk load.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	exists, err := s.IndexExists(ctx, def.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("index %s: %w", def.Name, db.ErrIndexExists)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "CREATE INDEX %s ON %s USING hnsw (embedding vector_cosine_ops)", def.Name, def.Table)
	if def.M > 0 || def.EFConstruction > 0 {
		var opts []string
		if def.M > 0 {
			opts = append(opts, fmt.Sprintf("m = %d", def.M))
		}
		if def.EFConstruction > 0 {
			opts = append(opts, fmt.Sprintf("ef_construction = %d", def.EFConstruction))
		}
		fmt.Fprintf(&sb, " WITH (%s)", strings.Join(opts, ", "))
	}

	if _, err := s.conn.ExecContext(ctx, sb.String()); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}

	s.logger.Info("Index created", zap.String("index", def.Name), zap.String("table", def.Table))

	return nil
}

// DropIndex removes the index. Dropping a missing index is a no-op.
func (s *Store) DropIndex(ctx context.Context, name string) error {
	if !db.IsValidIdentifier(name) {
		return &db.Error{Op: db.OpDropIndex, Err: fmt.Errorf("index name %q contains invalid characters", name)}
	}

	if _, err := s.conn.ExecContext(ctx, "DROP INDEX IF EXISTS "+name); err != nil {
		return &db.Error{Op: db.OpDropIndex, Err: err}
	}

	return nil
}

// IndexExists reports whether an index with the given name exists. Indexes on
// partitioned tables have relkind 'I', plain ones 'i'.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	const q = "SELECT EXISTS (SELECT 1 FROM pg_class WHERE relname = $1 AND relkind IN ('i', 'I'))"

	var exists bool
	if err := s.conn.QueryRowContext(ctx, q, name).Scan(&exists); err != nil {
		return false, &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("inspect index %s: %w", name, err)}
	}
	return exists, nil
}
