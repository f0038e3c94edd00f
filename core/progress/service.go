package progress

import (
	"context"
	"errors"
	"fmt"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/notification"
	"github.com/aredu/arcportal/core/user"
	"github.com/aredu/arcportal/realtime"
)

var (
	// errors
	ErrNotFound     = errors.New("progress record not found")
	ErrUnknownStage = errors.New("unknown application stage")
)

type (
	Repository interface {
		GetProgress(ctx context.Context, studentID string) (Progress, error)
		// UpsertProgress overwrites the current stage and appends the
		// history entry, creating the record if it does not exist yet.
		UpsertProgress(ctx context.Context, studentID, stage string, entry HistoryEntry) (Progress, error)
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

func (svc *Service) Get(ctx context.Context, studentID string) (Progress, error) {
	return svc.repo.GetProgress(ctx, studentID)
}

// Seed creates the initial record for a freshly registered student.
func (svc *Service) Seed(ctx context.Context, studentID string) error {
	entry := HistoryEntry{Stage: StageDocumentCollection, Timestamp: core.Now(), Completed: true}
	prog, err := svc.repo.UpsertProgress(ctx, studentID, StageDocumentCollection, entry)
	if err != nil {
		return err
	}
	svc.pub.Publish(realtime.Event{Topic: "progress", Kind: realtime.KindCreated, Data: prog})
	return nil
}

// SetStage overwrites the student's current stage and appends to history.
// Any stage may be set regardless of the previous one; regressions are
// deliberate corrections and carry the provided note. Exactly one
// notification goes to the student.
func (svc *Service) SetStage(ctx context.Context, actor user.User, studentID, stage, note string) (Progress, error) {
	if !user.Can(actor.Role, user.CapSetStage) {
		return Progress{}, core.ErrPermissionDenied
	}
	if StageIndex(stage) < 0 {
		return Progress{}, core.NewValidationError(ErrUnknownStage, core.FieldError{Field: "stage", Error: ErrUnknownStage.Error()})
	}

	entry := HistoryEntry{Stage: stage, Timestamp: core.Now(), Completed: true, Note: core.CleanString(note)}
	prog, err := svc.repo.UpsertProgress(ctx, studentID, stage, entry)
	if err != nil {
		return Progress{}, err
	}

	svc.notifier.Notify(ctx, studentID, "Application Update",
		fmt.Sprintf("Your application is now in the %s stage.", stage), notification.TypeInfo)
	svc.pub.Publish(realtime.Event{Topic: "progress", Kind: realtime.KindUpdated, Data: prog})
	return prog, nil
}
