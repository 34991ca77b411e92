package records

import (
	"context"

	"github.com/arcova/ragstore/internal/domain"
	"github.com/arcova/ragstore/internal/domain/recid"
)

// mockRepo records calls and replays canned responses.
type mockRepo struct {
	schemaDims  int
	indexMade   bool
	indexDrop   bool
	upserted    []domain.Record
	deletedIDs  []recid.ID
	deletedMeta map[string]string
	deletedAll  bool

	deleteCount int64
	err         error
}

func (m *mockRepo) CreateSchema(_ context.Context, dimensions int) error {
	m.schemaDims = dimensions
	return m.err
}

func (m *mockRepo) CreateIndex(_ context.Context) error {
	m.indexMade = true
	return m.err
}

func (m *mockRepo) DropIndex(_ context.Context) error {
	m.indexDrop = true
	return m.err
}

func (m *mockRepo) Upsert(_ context.Context, records []domain.Record) error {
	m.upserted = records
	return m.err
}

func (m *mockRepo) DeleteByIDs(_ context.Context, ids []recid.ID) (int64, error) {
	m.deletedIDs = ids
	return m.deleteCount, m.err
}

func (m *mockRepo) DeleteByMetadata(_ context.Context, filter map[string]string) (int64, error) {
	m.deletedMeta = filter
	return m.deleteCount, m.err
}

func (m *mockRepo) DeleteAll(_ context.Context) (int64, error) {
	m.deletedAll = true
	return m.deleteCount, m.err
}
