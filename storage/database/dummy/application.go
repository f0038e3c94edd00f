package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/aredu/arcportal/core/application"
)

type applicationRepository struct {
	db *applicationTable
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *DB) application.Repository {
	return &applicationRepository{db: db.application}
}

func (repo *applicationRepository) query() []application.Application {
	apps := make([]application.Application, 0, len(repo.db.table))
	for _, a := range repo.db.table {
		apps = append(apps, *a)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt > apps[j].CreatedAt })
	return apps
}

func (repo *applicationRepository) CreateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	repo.db.table[app.ID] = &app
	return app, nil
}

func (repo *applicationRepository) GetApplicationByID(ctx context.Context, id string) (application.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if app, ok := repo.db.table[id]; ok {
		return *app, nil
	}
	return application.Application{}, application.ErrNotFound
}

func (repo *applicationRepository) QueryAllApplications(ctx context.Context) ([]application.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *applicationRepository) QueryApplicationsByStudent(ctx context.Context, studentID string) ([]application.Application, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var apps []application.Application
	for _, a := range repo.query() {
		if a.StudentID == studentID {
			apps = append(apps, a)
		}
	}
	return apps, nil
}

func (repo *applicationRepository) UpdateApplicationStatus(ctx context.Context, id, status string, lastUpdated int64) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	app, ok := repo.db.table[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	app.Status = status
	app.LastUpdated = lastUpdated
	return *app, nil
}

// AppendAddendum appends under the table write lock so concurrent appends
// cannot lose entries.
func (repo *applicationRepository) AppendAddendum(ctx context.Context, id string, add application.Addendum, lastUpdated int64) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	app, ok := repo.db.table[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	app.Addendums = append(app.Addendums, add)
	app.LastUpdated = lastUpdated
	return *app, nil
}

func (repo *applicationRepository) UpdateApplicationDocumentStatus(ctx context.Context, id, docID, status string, lastUpdated int64) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	app, ok := repo.db.table[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	var found bool
	for i := range app.Documents {
		if app.Documents[i].ID == docID {
			app.Documents[i].Status = status
			found = true
			break
		}
	}
	if !found {
		return application.Application{}, application.ErrDocumentNotFound
	}
	app.LastUpdated = lastUpdated
	return *app, nil
}

func (repo *applicationRepository) SetCancellationRequest(ctx context.Context, id string, req *application.CancellationRequest, lastUpdated int64) (application.Application, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	app, ok := repo.db.table[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	app.CancellationRequest = req
	app.LastUpdated = lastUpdated
	return *app, nil
}
