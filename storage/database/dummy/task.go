package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/aredu/arcportal/core/task"
)

type taskRepository struct {
	db *taskTable
}

var _ task.Repository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *DB) task.Repository {
	return &taskRepository{db: db.task}
}

func (repo *taskRepository) query() []task.Task {
	tasks := make([]task.Task, 0, len(repo.db.table))
	for _, t := range repo.db.table {
		tasks = append(tasks, *t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt > tasks[j].CreatedAt })
	return tasks
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	repo.db.table[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.table[id]; ok {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) QueryAllTasks(ctx context.Context) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *taskRepository) QueryTasksByAssignee(ctx context.Context, studentID string) ([]task.Task, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var tasks []task.Task
	for _, t := range repo.query() {
		if t.AssignedTo == studentID {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

func (repo *taskRepository) UpdateTaskStatus(ctx context.Context, id, status string) (task.Task, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	t, ok := repo.db.table[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	t.Status = status
	return *t, nil
}

func (repo *taskRepository) DeleteTask(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return task.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
