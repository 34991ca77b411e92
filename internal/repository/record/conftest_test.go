package record

import (
	"context"

	"github.com/arcova/ragstore/internal/db"
)

// mockStore records calls and replays canned responses.
type mockStore struct {
	createSchemaErr error
	lastSchema      *db.SchemaDefinition

	ensuredParts []db.Partition
	partsErr     error

	createIndexErr error
	lastIndex      *db.IndexDefinition

	droppedIndex string
	dropErr      error

	upsertedRows []db.RecordRow
	upsertTable  string
	upsertErr    error

	deletedIDs    []string
	deletedFilter map[string]string
	deleteAllHit  bool
	deleteCount   int64
	deleteErr     error

	lastQuery  *db.KNNQuery
	searchRows []db.SearchRow
	searchErr  error
}

func (m *mockStore) CreateSchema(_ context.Context, def *db.SchemaDefinition) error {
	m.lastSchema = def
	return m.createSchemaErr
}

func (m *mockStore) EnsurePartitions(_ context.Context, _ string, parts []db.Partition) error {
	m.ensuredParts = parts
	return m.partsErr
}

func (m *mockStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.lastIndex = def
	return m.createIndexErr
}

func (m *mockStore) DropIndex(_ context.Context, name string) error {
	m.droppedIndex = name
	return m.dropErr
}

func (m *mockStore) UpsertBatch(_ context.Context, table string, rows []db.RecordRow) error {
	m.upsertTable = table
	m.upsertedRows = rows
	return m.upsertErr
}

func (m *mockStore) DeleteByIDs(_ context.Context, _ string, ids []string) (int64, error) {
	m.deletedIDs = ids
	return m.deleteCount, m.deleteErr
}

func (m *mockStore) DeleteByMetadata(_ context.Context, _ string, filter map[string]string) (int64, error) {
	m.deletedFilter = filter
	return m.deleteCount, m.deleteErr
}

func (m *mockStore) DeleteAll(_ context.Context, _ string) (int64, error) {
	m.deleteAllHit = true
	return m.deleteCount, m.deleteErr
}

func (m *mockStore) SearchKNN(_ context.Context, q *db.KNNQuery) ([]db.SearchRow, error) {
	m.lastQuery = q
	return m.searchRows, m.searchErr
}
