package dummydb

import (
	"context"

	"github.com/aredu/arcportal/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) progress.Repository {
	return &progressRepository{db: db.progress}
}

func (repo *progressRepository) GetProgress(ctx context.Context, studentID string) (progress.Progress, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prog, ok := repo.db.table[studentID]; ok {
		return *prog, nil
	}
	return progress.Progress{}, progress.ErrNotFound
}

func (repo *progressRepository) UpsertProgress(ctx context.Context, studentID, stage string, entry progress.HistoryEntry) (progress.Progress, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	prog, ok := repo.db.table[studentID]
	if !ok {
		prog = &progress.Progress{StudentID: studentID}
		repo.db.table[studentID] = prog
	}
	prog.CurrentStage = stage
	prog.History = append(prog.History, entry)
	return *prog, nil
}
