package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/aredu/arcportal/core/task"
)

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) task.Repository {
	return &taskRepository{db: db}
}

type taskRow struct {
	ID          string     `db:"id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	AssignedTo  string     `db:"assigned_to"`
	AssignedBy  string     `db:"assigned_by"`
	Status      string     `db:"status"`
	Priority    string     `db:"priority"`
	DueDate     null.Int64 `db:"due_date"`
	CreatedAt   int64      `db:"created_at"`
}

func (r taskRow) toTask() task.Task {
	return task.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		AssignedTo:  r.AssignedTo,
		AssignedBy:  r.AssignedBy,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate.Int64,
		CreatedAt:   r.CreatedAt,
	}
}

const taskCols = `id, title, description, assigned_to, assigned_by, status, priority, due_date, created_at`

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	var due null.Int64
	if t.DueDate > 0 {
		due = null.Int64From(t.DueDate)
	}
	query := `INSERT INTO task (` + taskCols + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := repo.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.AssignedTo, t.AssignedBy, t.Status, t.Priority, due, t.CreatedAt)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "creating task")
	}
	return t, nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	var row taskRow
	query := `SELECT ` + taskCols + ` FROM task WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "getting task")
	}
	return row.toTask(), nil
}

func (repo *taskRepository) QueryAllTasks(ctx context.Context) ([]task.Task, error) {
	var rows []taskRow
	query := `SELECT ` + taskCols + ` FROM task ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	return rowsToTasks(rows), nil
}

func (repo *taskRepository) QueryTasksByAssignee(ctx context.Context, studentID string) ([]task.Task, error) {
	var rows []taskRow
	query := `SELECT ` + taskCols + ` FROM task WHERE assigned_to = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, errors.Wrap(err, "querying tasks by assignee")
	}
	return rowsToTasks(rows), nil
}

func (repo *taskRepository) UpdateTaskStatus(ctx context.Context, id, status string) (task.Task, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE task SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task status")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return repo.GetTaskByID(ctx, id)
}

func (repo *taskRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM task WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.ErrNotFound
	}
	return nil
}

func rowsToTasks(rows []taskRow) []task.Task {
	tasks := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toTask())
	}
	return tasks
}
