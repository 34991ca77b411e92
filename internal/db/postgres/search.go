package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/arcova/ragstore/internal/db"
)

// SearchKNN runs a similarity search and returns rows ordered by ascending
// cosine distance, id ascending on ties. The ANN index accelerates this when
// present; without it Postgres falls back to a sequential scan with identical
// results.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) ([]db.SearchRow, error) {
	query, args, err := q.SQL(pgvector.NewVector(q.Vector))
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}
	defer rows.Close()

	var out []db.SearchRow
	for rows.Next() {
		var row db.SearchRow
		var vec pgvector.Vector

		if err := rows.Scan(&row.ID, &row.Metadata, &row.Content, &vec, &row.Distance); err != nil {
			return nil, &db.Error{Op: db.OpSearch, Err: err}
		}
		row.Embedding = vec.Slice()

		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return out, nil
}
