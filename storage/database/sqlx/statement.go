package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/aredu/arcportal/core/statement"
)

type statementRepository struct {
	db *sqlx.DB
}

var _ statement.Repository = (*statementRepository)(nil) // interface compliance check

func NewStatementRepository(db *sqlx.DB) statement.Repository {
	return &statementRepository{db: db}
}

type statementRow struct {
	ID          string `db:"id"`
	StudentName string `db:"student_name"`
	Course      string `db:"course"`
	University  string `db:"university"`
	Country     string `db:"country"`
	Content     string `db:"content"`
	GeneratedBy string `db:"generated_by"`
	Timestamp   int64  `db:"ts"`
}

const statementCols = `id, student_name, course, university, country, content, generated_by, ts`

func (repo *statementRepository) CreateStatement(ctx context.Context, s statement.Statement) (statement.Statement, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	query := `INSERT INTO statement (` + statementCols + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, query,
		s.ID, s.StudentName, s.Course, s.University, s.Country, s.Content, s.GeneratedBy, s.Timestamp)
	if err != nil {
		return statement.Statement{}, errors.Wrap(err, "creating statement")
	}
	return s, nil
}

func (repo *statementRepository) QueryStatementsByAuthor(ctx context.Context, uid string) ([]statement.Statement, error) {
	var rows []statementRow
	query := `SELECT ` + statementCols + ` FROM statement WHERE generated_by = $1 ORDER BY ts DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, uid); err != nil {
		return nil, errors.Wrap(err, "querying statements")
	}
	stmts := make([]statement.Statement, 0, len(rows))
	for _, r := range rows {
		stmts = append(stmts, statement.Statement{
			ID:          r.ID,
			StudentName: r.StudentName,
			Course:      r.Course,
			University:  r.University,
			Country:     r.Country,
			Content:     r.Content,
			GeneratedBy: r.GeneratedBy,
			Timestamp:   r.Timestamp,
		})
	}
	return stmts, nil
}
