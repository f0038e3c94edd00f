package task

import "github.com/aredu/arcportal/core"

// Task statuses. The upstream vocabulary carried an unreachable
// "in_progress" value; it is not part of this enum.
const (
	StatusTodo      = "todo"
	StatusCompleted = "completed"
)

// Priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AssignedTo  string `json:"assigned_to"` // student uid
	AssignedBy  string `json:"assigned_by"` // staff uid
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     int64  `json:"due_date,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

// NewTask is the creation payload; title and assignee are mandatory.
type NewTask struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     int64  `json:"due_date"`
}

func (nt *NewTask) Validate() error {
	nt.Title = core.CleanString(nt.Title)
	nt.AssignedTo = core.CleanString(nt.AssignedTo)
	if nt.Priority == "" {
		nt.Priority = PriorityMedium
	}
	return core.Validate.Struct(nt)
}
