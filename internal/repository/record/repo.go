// Package record maps domain records onto the storage layer: row conversion,
// partition planning from id-embedded time, and filter translation.
package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arcova/ragstore/internal/db"
	"github.com/arcova/ragstore/internal/domain"
	"github.com/arcova/ragstore/internal/domain/recid"
	"github.com/arcova/ragstore/internal/domain/search/predicate"
	"github.com/arcova/ragstore/internal/domain/search/request"
	"github.com/arcova/ragstore/internal/domain/search/result"
)

// DefaultPartitionInterval segments storage into 7-day windows.
const DefaultPartitionInterval = 7 * 24 * time.Hour

// store is the consumer interface for record storage (ISP).
type store interface {
	CreateSchema(ctx context.Context, def *db.SchemaDefinition) error
	EnsurePartitions(ctx context.Context, table string, parts []db.Partition) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	UpsertBatch(ctx context.Context, table string, rows []db.RecordRow) error
	DeleteByIDs(ctx context.Context, table string, ids []string) (int64, error)
	DeleteByMetadata(ctx context.Context, table string, filter map[string]string) (int64, error)
	DeleteAll(ctx context.Context, table string) (int64, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) ([]db.SearchRow, error)
}

// HNSWConfig carries pass-through index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements the storage contracts of the record and search services.
type Repo struct {
	store             store
	table             string
	partitionInterval time.Duration
	hnsw              HNSWConfig
}

// New creates a record repository over one backing table.
func New(s store, table string, partitionInterval time.Duration) *Repo {
	if partitionInterval <= 0 {
		partitionInterval = DefaultPartitionInterval
	}
	return &Repo{store: s, table: table, partitionInterval: partitionInterval}
}

// WithHNSW returns a copy with custom index build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	c := *r
	c.hnsw = cfg
	return &c
}

// indexName derives the single ANN index name for the table.
func (r *Repo) indexName() string {
	return r.table + "_embedding_idx"
}

// CreateSchema creates the backing table if absent.
func (r *Repo) CreateSchema(ctx context.Context, dimensions int) error {
	err := r.store.CreateSchema(ctx, &db.SchemaDefinition{Table: r.table, Dimensions: dimensions})
	if err != nil {
		if errors.Is(err, db.ErrSchemaMismatch) {
			return fmt.Errorf("%w: %v", domain.ErrSchema, err)
		}
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// CreateIndex builds the ANN index over the embedding column.
func (r *Repo) CreateIndex(ctx context.Context) error {
	def := &db.IndexDefinition{
		Table:          r.table,
		Name:           r.indexName(),
		M:              r.hnsw.M,
		EFConstruction: r.hnsw.EFConstruct,
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("%w: %s", domain.ErrIndexExists, def.Name)
		}
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// DropIndex removes the ANN index; missing index is a no-op.
func (r *Repo) DropIndex(ctx context.Context) error {
	if err := r.store.DropIndex(ctx, r.indexName()); err != nil {
		return fmt.Errorf("drop index: %w", err)
	}
	return nil
}

// Upsert writes a batch of validated records. Partitions covering the batch
// are created first; the batch itself is one atomic transaction.
func (r *Repo) Upsert(ctx context.Context, records []domain.Record) error {
	rows := make([]db.RecordRow, 0, len(records))
	for i := range records {
		row, err := toRow(&records[i])
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	if err := r.store.EnsurePartitions(ctx, r.table, r.partitionsFor(records)); err != nil {
		return fmt.Errorf("ensure partitions: %w", err)
	}

	if err := r.store.UpsertBatch(ctx, r.table, rows); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}

// DeleteByIDs removes the given records.
func (r *Repo) DeleteByIDs(ctx context.Context, ids []recid.ID) (int64, error) {
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	n, err := r.store.DeleteByIDs(ctx, r.table, raw)
	if err != nil {
		return 0, fmt.Errorf("delete by ids: %w", err)
	}
	return n, nil
}

// DeleteByMetadata removes records whose metadata matches every filter pair.
func (r *Repo) DeleteByMetadata(ctx context.Context, filter map[string]string) (int64, error) {
	n, err := r.store.DeleteByMetadata(ctx, r.table, filter)
	if err != nil {
		return 0, fmt.Errorf("delete by metadata: %w", err)
	}
	return n, nil
}

// DeleteAll removes every record.
func (r *Repo) DeleteAll(ctx context.Context) (int64, error) {
	n, err := r.store.DeleteAll(ctx, r.table)
	if err != nil {
		return 0, fmt.Errorf("delete all: %w", err)
	}
	return n, nil
}

// SearchKNN translates the request's fragments into a storage query and
// hydrates ranked results.
func (r *Repo) SearchKNN(ctx context.Context, vector []float32, req *request.Request) ([]result.Result, error) {
	b := db.NewKNNQuery(r.table, vector).
		Limit(req.Limit()).
		MetadataEquals(req.MetadataFilter())

	if p := req.Predicate(); p != nil {
		b.Predicate(toExpr(p))
	}

	if tr := req.TimeRange(); tr != nil {
		b.IDRange(recid.LowerBound(tr.Start).String(), recid.UpperBound(tr.End).String())
	}

	q, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	rows, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}

	results := make([]result.Result, 0, len(rows))
	for i := range rows {
		rec, err := fromRow(&rows[i].RecordRow)
		if err != nil {
			return nil, err
		}
		results = append(results, result.New(rec, rows[i].Distance))
	}
	return results, nil
}

// partitionsFor plans the id-range partitions covering the batch, one per
// interval window, aligned to the epoch.
func (r *Repo) partitionsFor(records []domain.Record) []db.Partition {
	windows := make(map[int64]time.Time)
	for i := range records {
		start := recid.TimeOf(records[i].ID()).Truncate(r.partitionInterval)
		windows[start.UnixMilli()] = start
	}

	parts := make([]db.Partition, 0, len(windows))
	for _, start := range windows {
		end := start.Add(r.partitionInterval)
		parts = append(parts, db.Partition{
			Name: fmt.Sprintf("%s_p%s", r.table, start.UTC().Format("20060102t150405")),
			From: recid.LowerBound(start).String(),
			To:   recid.LowerBound(end).String(),
		})
	}
	return parts
}

func toRow(rec *domain.Record) (db.RecordRow, error) {
	meta := rec.Metadata()
	if meta == nil {
		meta = map[string]any{}
	}
	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return db.RecordRow{}, fmt.Errorf("marshal metadata for %s: %w", rec.ID(), err)
	}
	return db.RecordRow{
		ID:        rec.ID().String(),
		Metadata:  metaJSON,
		Content:   rec.Content(),
		Embedding: rec.Embedding(),
	}, nil
}

func fromRow(row *db.RecordRow) (domain.Record, error) {
	id, err := recid.Parse(row.ID)
	if err != nil {
		return domain.Record{}, err
	}

	var meta map[string]any
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &meta); err != nil {
			return domain.Record{}, fmt.Errorf("unmarshal metadata for %s: %w", row.ID, err)
		}
	}

	return domain.Reconstruct(id, meta, row.Content, row.Embedding), nil
}

// toExpr converts the domain predicate tree into its storage representation.
func toExpr(p *predicate.Predicate) *db.Expr {
	if p.IsLeaf() {
		return &db.Expr{Cond: &db.Cond{Field: p.Field(), Op: string(p.Op()), Value: p.Value()}}
	}

	children := make([]*db.Expr, 0, len(p.Children()))
	for _, c := range p.Children() {
		children = append(children, toExpr(c))
	}
	return &db.Expr{Join: string(p.Combinator()), Children: children}
}
