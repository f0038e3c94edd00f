package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/notification"
	"github.com/aredu/arcportal/core/user"
	"github.com/aredu/arcportal/realtime"
)

var ErrNotFound = errors.New("task not found")

type (
	Repository interface {
		CreateTask(ctx context.Context, t Task) (Task, error)
		GetTaskByID(ctx context.Context, id string) (Task, error)
		// QueryAllTasks returns every task, newest first.
		QueryAllTasks(ctx context.Context) ([]Task, error)
		// QueryTasksByAssignee returns one student's tasks, newest first.
		QueryTasksByAssignee(ctx context.Context, studentID string) ([]Task, error)
		UpdateTaskStatus(ctx context.Context, id, status string) (Task, error)
		DeleteTask(ctx context.Context, id string) error
	}

	Notifier interface {
		Notify(ctx context.Context, userID, title, message, typ string)
	}

	Service struct {
		repo     Repository
		notifier Notifier
		pub      realtime.Publisher
	}
)

func NewService(repo Repository, notifier Notifier, pub realtime.Publisher) *Service {
	return &Service{repo: repo, notifier: notifier, pub: pub}
}

// Create assigns a task to a student. The assignee is notified unless they
// are the creator.
func (svc *Service) Create(ctx context.Context, actor user.User, nt NewTask) (Task, error) {
	if !user.Can(actor.Role, user.CapCreateTasks) {
		return Task{}, core.ErrPermissionDenied
	}
	if err := nt.Validate(); err != nil {
		return Task{}, err
	}

	t := Task{
		Title:       nt.Title,
		Description: nt.Description,
		AssignedTo:  nt.AssignedTo,
		AssignedBy:  actor.UID,
		Status:      StatusTodo,
		Priority:    nt.Priority,
		DueDate:     nt.DueDate,
		CreatedAt:   core.Now(),
	}
	t, err := svc.repo.CreateTask(ctx, t)
	if err != nil {
		return Task{}, err
	}

	if t.AssignedTo != actor.UID {
		svc.notifier.Notify(ctx, t.AssignedTo, "New Task Assigned",
			fmt.Sprintf("You have been assigned: %s", t.Title), notification.TypeWarning)
	}
	svc.pub.Publish(realtime.Event{Topic: "tasks", Kind: realtime.KindCreated, Data: t})
	return t, nil
}

// Toggle flips a task between todo and completed; any viewer may do it.
func (svc *Service) Toggle(ctx context.Context, id string) (Task, error) {
	t, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return Task{}, err
	}
	status := StatusCompleted
	if t.Status == StatusCompleted {
		status = StatusTodo
	}
	t, err = svc.repo.UpdateTaskStatus(ctx, id, status)
	if err != nil {
		return Task{}, err
	}
	svc.pub.Publish(realtime.Event{Topic: "tasks", Kind: realtime.KindUpdated, Data: t})
	return t, nil
}

// QueryAll is the staff-wide feed across all students.
func (svc *Service) QueryAll(ctx context.Context, actor user.User) ([]Task, error) {
	if !user.IsStaff(actor.Role) {
		return nil, core.ErrPermissionDenied
	}
	return svc.repo.QueryAllTasks(ctx)
}

func (svc *Service) QueryByAssignee(ctx context.Context, studentID string) ([]Task, error) {
	return svc.repo.QueryTasksByAssignee(ctx, studentID)
}

// Delete hard-deletes a task. Deliberately no audit entry: destructive task
// removal was never audited upstream and the gap is kept visible here.
func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	if !user.Can(actor.Role, user.CapDeleteTasks) {
		return core.ErrPermissionDenied
	}
	t, err := svc.repo.GetTaskByID(ctx, id)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	svc.pub.Publish(realtime.Event{Topic: "tasks", Kind: realtime.KindDeleted, Data: t})
	return nil
}
