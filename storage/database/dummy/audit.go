package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/aredu/arcportal/core/audit"
)

type auditRepository struct {
	db *auditTable
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(db *DB) audit.Repository {
	return &auditRepository{db: db.audit}
}

func (repo *auditRepository) AppendEntry(ctx context.Context, e audit.Entry) (audit.Entry, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	repo.db.table = append(repo.db.table, e)
	return e, nil
}

// QueryAllEntries returns entries newest first.
func (repo *auditRepository) QueryAllEntries(ctx context.Context) ([]audit.Entry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	entries := make([]audit.Entry, 0, len(repo.db.table))
	for i := len(repo.db.table) - 1; i >= 0; i-- {
		entries = append(entries, repo.db.table[i])
	}
	return entries, nil
}
