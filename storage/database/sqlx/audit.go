package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/aredu/arcportal/core/audit"
)

type auditRepository struct {
	db *sqlx.DB
}

var _ audit.Repository = (*auditRepository)(nil) // interface compliance check

func NewAuditRepository(db *sqlx.DB) audit.Repository {
	return &auditRepository{db: db}
}

type auditRow struct {
	ID          string `db:"id"`
	Action      string `db:"action"`
	Details     string `db:"details"`
	PerformedBy string `db:"performed_by"`
	Timestamp   int64  `db:"ts"`
}

func (repo *auditRepository) AppendEntry(ctx context.Context, e audit.Entry) (audit.Entry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `INSERT INTO audit_log (id, action, details, performed_by, ts) VALUES ($1, $2, $3, $4, $5)`
	_, err := repo.db.ExecContext(ctx, query, e.ID, e.Action, e.Details, e.PerformedBy, e.Timestamp)
	if err != nil {
		return audit.Entry{}, errors.Wrap(err, "appending audit entry")
	}
	return e, nil
}

func (repo *auditRepository) QueryAllEntries(ctx context.Context) ([]audit.Entry, error) {
	var rows []auditRow
	query := `SELECT id, action, details, performed_by, ts FROM audit_log ORDER BY ts DESC`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying audit log")
	}
	entries := make([]audit.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, audit.Entry{
			ID:          r.ID,
			Action:      r.Action,
			Details:     r.Details,
			PerformedBy: r.PerformedBy,
			Timestamp:   r.Timestamp,
		})
	}
	return entries, nil
}
