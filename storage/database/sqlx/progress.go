package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/aredu/arcportal/core/progress"
)

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *sqlx.DB) progress.Repository {
	return &progressRepository{db: db}
}

type progressRow struct {
	StudentID    string         `db:"student_id"`
	CurrentStage string         `db:"current_stage"`
	History      types.JSONText `db:"history"`
}

func (r progressRow) toProgress() (progress.Progress, error) {
	prog := progress.Progress{StudentID: r.StudentID, CurrentStage: r.CurrentStage}
	if len(r.History) > 0 {
		if err := json.Unmarshal(r.History, &prog.History); err != nil {
			return progress.Progress{}, errors.Wrap(err, "decoding progress history")
		}
	}
	return prog, nil
}

func (repo *progressRepository) GetProgress(ctx context.Context, studentID string) (progress.Progress, error) {
	var row progressRow
	query := `SELECT student_id, current_stage, history FROM progress WHERE student_id = $1`
	if err := repo.db.GetContext(ctx, &row, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return progress.Progress{}, progress.ErrNotFound
		}
		return progress.Progress{}, errors.Wrap(err, "getting progress")
	}
	return row.toProgress()
}

// UpsertProgress sets the stage and appends the history entry in one
// statement; the record is created on first write.
func (repo *progressRepository) UpsertProgress(ctx context.Context, studentID, stage string, entry progress.HistoryEntry) (progress.Progress, error) {
	raw, err := json.Marshal(entry)
	if err != nil {
		return progress.Progress{}, errors.Wrap(err, "encoding history entry")
	}
	query := `
		INSERT INTO progress (student_id, current_stage, history)
		VALUES ($1, $2, jsonb_build_array($3::jsonb))
		ON CONFLICT (student_id) DO UPDATE
		SET current_stage = EXCLUDED.current_stage,
		    history       = progress.history || jsonb_build_array($3::jsonb)`
	if _, err := repo.db.ExecContext(ctx, query, studentID, stage, types.JSONText(raw)); err != nil {
		return progress.Progress{}, errors.Wrap(err, "upserting progress")
	}
	return repo.GetProgress(ctx, studentID)
}
