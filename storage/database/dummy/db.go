package dummydb

import (
	"sync"

	"github.com/aredu/arcportal/core/application"
	"github.com/aredu/arcportal/core/audit"
	"github.com/aredu/arcportal/core/document"
	"github.com/aredu/arcportal/core/message"
	"github.com/aredu/arcportal/core/notification"
	"github.com/aredu/arcportal/core/progress"
	"github.com/aredu/arcportal/core/statement"
	"github.com/aredu/arcportal/core/task"
	"github.com/aredu/arcportal/core/user"
)

type (
	DB struct {
		user         *userTable
		application  *applicationTable
		progress     *progressTable
		document     *documentTable
		task         *taskTable
		message      *messageTable
		notification *notificationTable
		audit        *auditTable
		statement    *statementTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	applicationTable struct {
		sync.RWMutex
		table map[string]*application.Application
	}

	progressTable struct {
		sync.RWMutex
		table map[string]*progress.Progress // keyed by student uid
	}

	documentTable struct {
		sync.RWMutex
		table map[string]*document.DocumentItem
	}

	taskTable struct {
		sync.RWMutex
		table map[string]*task.Task
	}

	messageTable struct {
		sync.RWMutex
		table map[string]*message.Message
	}

	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
	}

	auditTable struct {
		sync.RWMutex
		table []audit.Entry
	}

	statementTable struct {
		sync.RWMutex
		table map[string]*statement.Statement
	}
)

func Open() (*DB, error) {
	db := &DB{
		user:         &userTable{table: make(map[string]*user.User)},
		application:  &applicationTable{table: make(map[string]*application.Application)},
		progress:     &progressTable{table: make(map[string]*progress.Progress)},
		document:     &documentTable{table: make(map[string]*document.DocumentItem)},
		task:         &taskTable{table: make(map[string]*task.Task)},
		message:      &messageTable{table: make(map[string]*message.Message)},
		notification: &notificationTable{table: make(map[string]*notification.Notification)},
		audit:        &auditTable{},
		statement:    &statementTable{table: make(map[string]*statement.Statement)},
	}
	return db, nil
}
