package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/arcova/ragstore/internal/db"
)

// UpsertBatch inserts or replaces records by id inside a single transaction.
// Any failure rolls back the whole batch; there are no partial writes.
func (s *Store) UpsertBatch(ctx context.Context, table string, rows []db.RecordRow) error {
	if !db.IsValidIdentifier(table) {
		return &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("table name %q contains invalid characters", table)}
	}
	if len(rows) == 0 {
		return nil
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, metadata, contents, embedding)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			metadata = EXCLUDED.metadata,
			contents = EXCLUDED.contents,
			embedding = EXCLUDED.embedding`, table))
	if err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row.ID, row.Metadata, row.Content, pgvector.NewVector(row.Embedding)); err != nil {
			return &db.Error{Op: db.OpUpsert, Err: fmt.Errorf("record %s: %w", row.ID, err)}
		}
	}

	if err := tx.Commit(); err != nil {
		return &db.Error{Op: db.OpUpsert, Err: err}
	}

	return nil
}

// DeleteByIDs removes the records with the given ids and returns the count.
func (s *Store) DeleteByIDs(ctx context.Context, table string, ids []string) (int64, error) {
	if !db.IsValidIdentifier(table) {
		return 0, &db.Error{Op: db.OpDelete, Err: fmt.Errorf("table name %q contains invalid characters", table)}
	}

	res, err := s.conn.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE id = ANY($1::uuid[])", table),
		pq.Array(ids),
	)
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: err}
	}
	return res.RowsAffected()
}

// DeleteByMetadata removes records whose metadata contains every filter pair
// and returns the count.
func (s *Store) DeleteByMetadata(ctx context.Context, table string, filter map[string]string) (int64, error) {
	if !db.IsValidIdentifier(table) {
		return 0, &db.Error{Op: db.OpDelete, Err: fmt.Errorf("table name %q contains invalid characters", table)}
	}

	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: fmt.Errorf("marshal filter: %w", err)}
	}

	res, err := s.conn.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE metadata @> $1::jsonb", table),
		string(filterJSON),
	)
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: err}
	}
	return res.RowsAffected()
}

// DeleteAll removes every record in the table and returns the count.
func (s *Store) DeleteAll(ctx context.Context, table string) (int64, error) {
	if !db.IsValidIdentifier(table) {
		return 0, &db.Error{Op: db.OpDelete, Err: fmt.Errorf("table name %q contains invalid characters", table)}
	}

	res, err := s.conn.ExecContext(ctx, "DELETE FROM "+table)
	if err != nil {
		return 0, &db.Error{Op: db.OpDelete, Err: err}
	}
	return res.RowsAffected()
}
