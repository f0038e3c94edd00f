package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/aredu/arcportal/core/document"
)

type documentRepository struct {
	db *documentTable
}

var _ document.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(db *DB) document.Repository {
	return &documentRepository{db: db.document}
}

func (repo *documentRepository) CreateDocument(ctx context.Context, d document.DocumentItem) (document.DocumentItem, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	repo.db.table[d.ID] = &d
	return d, nil
}

func (repo *documentRepository) GetDocumentByID(ctx context.Context, id string) (document.DocumentItem, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if d, ok := repo.db.table[id]; ok {
		return *d, nil
	}
	return document.DocumentItem{}, document.ErrNotFound
}

func (repo *documentRepository) QueryDocumentsByStudent(ctx context.Context, studentID string) ([]document.DocumentItem, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var docs []document.DocumentItem
	for _, d := range repo.db.table {
		if d.StudentID == studentID {
			docs = append(docs, *d)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].UploadedAt > docs[j].UploadedAt })
	return docs, nil
}

func (repo *documentRepository) UpdateDocumentStatus(ctx context.Context, id, status, adminNote string) (document.DocumentItem, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	d, ok := repo.db.table[id]
	if !ok {
		return document.DocumentItem{}, document.ErrNotFound
	}
	d.Status = status
	if adminNote != "" {
		d.AdminNote = adminNote
	}
	return *d, nil
}

func (repo *documentRepository) DeleteDocument(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return document.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
