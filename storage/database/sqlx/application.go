package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"

	"github.com/aredu/arcportal/core/application"
)

type applicationRepository struct {
	db *sqlx.DB
}

var _ application.Repository = (*applicationRepository)(nil) // interface compliance check

func NewApplicationRepository(db *sqlx.DB) application.Repository {
	return &applicationRepository{db: db}
}

type applicationRow struct {
	ID                   string          `db:"id"`
	StudentID            string          `db:"student_id"`
	ApplicationNumber    string          `db:"application_number"`
	FullName             string          `db:"full_name"`
	PassportNumber       string          `db:"passport_number"`
	TargetCourses        types.JSONText  `db:"target_courses"`
	TargetUniversities   types.JSONText  `db:"target_universities"`
	Countries            types.JSONText  `db:"countries"`
	BudgetPerYear        string          `db:"budget_per_year"`
	HighestQualification string          `db:"highest_qualification"`
	Documents            types.JSONText  `db:"documents"`
	Addendums            types.JSONText  `db:"addendums"`
	CancellationRequest  *types.JSONText `db:"cancellation_request"`
	Status               string          `db:"status"`
	PercentageCompleted  int             `db:"percentage_completed"`
	CreatedAt            int64           `db:"created_at"`
	LastUpdated          int64           `db:"last_updated"`
}

func (r applicationRow) toApplication() (application.Application, error) {
	app := application.Application{
		ID:                   r.ID,
		StudentID:            r.StudentID,
		ApplicationNumber:    r.ApplicationNumber,
		FullName:             r.FullName,
		PassportNumber:       r.PassportNumber,
		BudgetPerYear:        r.BudgetPerYear,
		HighestQualification: r.HighestQualification,
		Status:               r.Status,
		PercentageCompleted:  r.PercentageCompleted,
		CreatedAt:            r.CreatedAt,
		LastUpdated:          r.LastUpdated,
	}
	for _, pair := range []struct {
		raw types.JSONText
		dst interface{}
	}{
		{r.TargetCourses, &app.TargetCourses},
		{r.TargetUniversities, &app.TargetUniversities},
		{r.Countries, &app.Countries},
		{r.Documents, &app.Documents},
		{r.Addendums, &app.Addendums},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return application.Application{}, errors.Wrap(err, "decoding application row")
		}
	}
	if r.CancellationRequest != nil && len(*r.CancellationRequest) > 0 {
		var req application.CancellationRequest
		if err := json.Unmarshal(*r.CancellationRequest, &req); err != nil {
			return application.Application{}, errors.Wrap(err, "decoding cancellation request")
		}
		app.CancellationRequest = &req
	}
	return app, nil
}

const applicationCols = `id, student_id, application_number, full_name, passport_number,
	target_courses, target_universities, countries, budget_per_year, highest_qualification,
	documents, addendums, cancellation_request, status, percentage_completed, created_at, last_updated`

func (repo *applicationRepository) CreateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	if app.ID == "" {
		app.ID = uuid.New().String()
	}
	courses, _ := json.Marshal(app.TargetCourses)
	unis, _ := json.Marshal(app.TargetUniversities)
	countries, _ := json.Marshal(app.Countries)
	docs, _ := json.Marshal(app.Documents)

	query := `
		INSERT INTO application (id, student_id, application_number, full_name, passport_number,
			target_courses, target_universities, countries, budget_per_year, highest_qualification,
			documents, status, percentage_completed, created_at, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := repo.db.ExecContext(ctx, query,
		app.ID, app.StudentID, app.ApplicationNumber, app.FullName, app.PassportNumber,
		types.JSONText(courses), types.JSONText(unis), types.JSONText(countries),
		app.BudgetPerYear, app.HighestQualification, types.JSONText(docs),
		app.Status, app.PercentageCompleted, app.CreatedAt, app.LastUpdated,
	)
	if err != nil {
		return application.Application{}, errors.Wrap(err, "creating application")
	}
	return app, nil
}

func (repo *applicationRepository) GetApplicationByID(ctx context.Context, id string) (application.Application, error) {
	var row applicationRow
	query := `SELECT ` + applicationCols + ` FROM application WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return application.Application{}, application.ErrNotFound
		}
		return application.Application{}, errors.Wrap(err, "getting application")
	}
	return row.toApplication()
}

func (repo *applicationRepository) QueryAllApplications(ctx context.Context) ([]application.Application, error) {
	var rows []applicationRow
	query := `SELECT ` + applicationCols + ` FROM application ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying applications")
	}
	return rowsToApplications(rows)
}

func (repo *applicationRepository) QueryApplicationsByStudent(ctx context.Context, studentID string) ([]application.Application, error) {
	var rows []applicationRow
	query := `SELECT ` + applicationCols + ` FROM application WHERE student_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying applications by student")
	}
	return rowsToApplications(rows)
}

func (repo *applicationRepository) UpdateApplicationStatus(ctx context.Context, id, status string, lastUpdated int64) (application.Application, error) {
	query := `UPDATE application SET status = $2, last_updated = $3 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id, status, lastUpdated)
	if err != nil {
		return application.Application{}, errors.Wrap(err, "updating application status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return application.Application{}, application.ErrNotFound
	}
	return repo.GetApplicationByID(ctx, id)
}

// AppendAddendum concatenates inside a single UPDATE so concurrent appends
// cannot lose entries.
func (repo *applicationRepository) AppendAddendum(ctx context.Context, id string, add application.Addendum, lastUpdated int64) (application.Application, error) {
	raw, err := json.Marshal(add)
	if err != nil {
		return application.Application{}, errors.Wrap(err, "encoding addendum")
	}
	query := `
		UPDATE application
		SET addendums    = COALESCE(addendums, '[]'::jsonb) || jsonb_build_array($2::jsonb),
		    last_updated = $3
		WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id, types.JSONText(raw), lastUpdated)
	if err != nil {
		return application.Application{}, errors.Wrap(err, "appending addendum")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return application.Application{}, application.ErrNotFound
	}
	return repo.GetApplicationByID(ctx, id)
}

func (repo *applicationRepository) UpdateApplicationDocumentStatus(ctx context.Context, id, docID, status string, lastUpdated int64) (application.Application, error) {
	app, err := repo.GetApplicationByID(ctx, id)
	if err != nil {
		return application.Application{}, err
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

	docs, err := json.Marshal(app.Documents)
	if err != nil {
		return application.Application{}, errors.Wrap(err, "encoding documents")
	}
	query := `UPDATE application SET documents = $2, last_updated = $3 WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, query, id, types.JSONText(docs), lastUpdated); err != nil {
		return application.Application{}, errors.Wrap(err, "updating document status")
	}
	app.LastUpdated = lastUpdated
	return app, nil
}

func (repo *applicationRepository) SetCancellationRequest(ctx context.Context, id string, req *application.CancellationRequest, lastUpdated int64) (application.Application, error) {
	var raw interface{}
	if req != nil {
		b, err := json.Marshal(req)
		if err != nil {
			return application.Application{}, errors.Wrap(err, "encoding cancellation request")
		}
		raw = types.JSONText(b)
	}
	query := `UPDATE application SET cancellation_request = $2, last_updated = $3 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id, raw, lastUpdated)
	if err != nil {
		return application.Application{}, errors.Wrap(err, "setting cancellation request")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return application.Application{}, application.ErrNotFound
	}
	return repo.GetApplicationByID(ctx, id)
}

func rowsToApplications(rows []applicationRow) ([]application.Application, error) {
	apps := make([]application.Application, 0, len(rows))
	for _, r := range rows {
		app, err := r.toApplication()
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}
