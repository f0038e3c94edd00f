package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/aredu/arcportal/core/statement"
)

type statementRepository struct {
	db *statementTable
}

var _ statement.Repository = (*statementRepository)(nil) // interface compliance check

func NewStatementRepository(db *DB) statement.Repository {
	return &statementRepository{db: db.statement}
}

func (repo *statementRepository) CreateStatement(ctx context.Context, s statement.Statement) (statement.Statement, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	repo.db.table[s.ID] = &s
	return s, nil
}

func (repo *statementRepository) QueryStatementsByAuthor(ctx context.Context, uid string) ([]statement.Statement, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var stmts []statement.Statement
	for _, s := range repo.db.table {
		if s.GeneratedBy == uid {
			stmts = append(stmts, *s)
		}
	}
	sort.Slice(stmts, func(i, j int) bool { return stmts[i].Timestamp > stmts[j].Timestamp })
	return stmts, nil
}
