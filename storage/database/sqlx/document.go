package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/aredu/arcportal/core/document"
)

type documentRepository struct {
	db *sqlx.DB
}

var _ document.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(db *sqlx.DB) document.Repository {
	return &documentRepository{db: db}
}

type documentRow struct {
	ID         string `db:"id"`
	StudentID  string `db:"student_id"`
	Name       string `db:"name"`
	Type       string `db:"type"`
	URL        string `db:"url"`
	Status     string `db:"status"`
	AdminNote  string `db:"admin_note"`
	UploadedAt int64  `db:"uploaded_at"`
}

func (r documentRow) toDocument() document.DocumentItem {
	return document.DocumentItem{
		ID:         r.ID,
		StudentID:  r.StudentID,
		Name:       r.Name,
		Type:       r.Type,
		URL:        r.URL,
		Status:     r.Status,
		AdminNote:  r.AdminNote,
		UploadedAt: r.UploadedAt,
	}
}

const documentCols = `id, student_id, name, type, url, status, admin_note, uploaded_at`

func (repo *documentRepository) CreateDocument(ctx context.Context, d document.DocumentItem) (document.DocumentItem, error) {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	query := `INSERT INTO document (` + documentCols + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, query,
		d.ID, d.StudentID, d.Name, d.Type, d.URL, d.Status, d.AdminNote, d.UploadedAt)
	if err != nil {
		return document.DocumentItem{}, errors.Wrap(err, "creating document")
	}
	return d, nil
}

func (repo *documentRepository) GetDocumentByID(ctx context.Context, id string) (document.DocumentItem, error) {
	var row documentRow
	query := `SELECT ` + documentCols + ` FROM document WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return document.DocumentItem{}, document.ErrNotFound
		}
		return document.DocumentItem{}, errors.Wrap(err, "getting document")
	}
	return row.toDocument(), nil
}

func (repo *documentRepository) QueryDocumentsByStudent(ctx context.Context, studentID string) ([]document.DocumentItem, error) {
	var rows []documentRow
	query := `SELECT ` + documentCols + ` FROM document WHERE student_id = $1 ORDER BY uploaded_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying documents")
	}
	docs := make([]document.DocumentItem, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, r.toDocument())
	}
	return docs, nil
}

func (repo *documentRepository) UpdateDocumentStatus(ctx context.Context, id, status, adminNote string) (document.DocumentItem, error) {
	query := `
		UPDATE document
		SET status     = $2,
		    admin_note = COALESCE(NULLIF($3, ''), admin_note)
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id, status, adminNote)
	if err != nil {
		return document.DocumentItem{}, errors.Wrap(err, "updating document status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return document.DocumentItem{}, document.ErrNotFound
	}
	return repo.GetDocumentByID(ctx, id)
}

func (repo *documentRepository) DeleteDocument(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM document WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting document")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return document.ErrNotFound
	}
	return nil
}
