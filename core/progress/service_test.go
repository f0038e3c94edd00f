package progress_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/progress"
	"github.com/aredu/arcportal/core/user"
	"github.com/aredu/arcportal/realtime"
	dummydb "github.com/aredu/arcportal/storage/database/dummy"
)

var (
	student = user.User{UID: "stu-1", DisplayName: "Jane Doe", Role: user.RoleStudent}
	admin   = user.User{UID: "adm-1", DisplayName: "Ada Admin", Role: user.RoleAdmin}
)

type note struct {
	UserID, Title, Message, Type string
}

type notifierRecorder struct {
	mu    sync.Mutex
	notes []note
}

func (r *notifierRecorder) Notify(_ context.Context, userID, title, message, typ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, note{userID, title, message, typ})
}

func setup(t *testing.T) (*progress.Service, *notifierRecorder) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	notifier := new(notifierRecorder)
	svc := progress.NewService(dummydb.NewProgressRepository(db), notifier, realtime.NopPublisher{})
	return svc, notifier
}

func Test_Service_Seed(t *testing.T) {
	svc, notifier := setup(t)
	ctx := context.Background()

	if _, err := svc.Get(ctx, student.UID); err != progress.ErrNotFound {
		t.Fatalf("Get() before seed error = %v, want %v", err, progress.ErrNotFound)
	}

	if err := svc.Seed(ctx, student.UID); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
	prog, err := svc.Get(ctx, student.UID)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if prog.CurrentStage != progress.StageDocumentCollection {
		t.Errorf("CurrentStage = %s, want %s", prog.CurrentStage, progress.StageDocumentCollection)
	}
	if len(prog.History) != 1 || !prog.History[0].Completed {
		t.Errorf("History = %+v", prog.History)
	}
	// seeding is silent
	if len(notifier.notes) != 0 {
		t.Errorf("Seed() produced notifications: %+v", notifier.notes)
	}
}

func Test_Service_SetStage(t *testing.T) {
	svc, notifier := setup(t)
	ctx := context.Background()

	if err := svc.Seed(ctx, student.UID); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}

	if _, err := svc.SetStage(ctx, student, student.UID, progress.StageCompleted, ""); err != core.ErrPermissionDenied {
		t.Errorf("student SetStage() error = %v, want %v", err, core.ErrPermissionDenied)
	}
	if _, err := svc.SetStage(ctx, admin, student.UID, "Graduation", ""); err == nil {
		t.Error("SetStage() accepted an unknown stage")
	}

	prog, err := svc.SetStage(ctx, admin, student.UID, progress.StageVisaProcessing, "")
	if err != nil {
		t.Fatalf("SetStage() failed: %v", err)
	}
	if prog.CurrentStage != progress.StageVisaProcessing {
		t.Errorf("CurrentStage = %s, want %s", prog.CurrentStage, progress.StageVisaProcessing)
	}
	if len(prog.History) != 2 {
		t.Errorf("History length = %d, want 2", len(prog.History))
	}
	// exactly one notification per stage change
	if len(notifier.notes) != 1 || notifier.notes[0].UserID != student.UID {
		t.Fatalf("notifications = %+v", notifier.notes)
	}
}

func Test_Service_SetStage_regression(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.SetStage(ctx, admin, student.UID, progress.StageOfferReceived, ""); err != nil {
		t.Fatalf("SetStage() failed: %v", err)
	}
	// stepping backwards is a deliberate correction, not an error
	prog, err := svc.SetStage(ctx, admin, student.UID, progress.StageApplicationReview, "offer withdrawn by university")
	if err != nil {
		t.Fatalf("SetStage() regression failed: %v", err)
	}
	if prog.CurrentStage != progress.StageApplicationReview {
		t.Errorf("CurrentStage = %s, want %s", prog.CurrentStage, progress.StageApplicationReview)
	}
	last := prog.History[len(prog.History)-1]
	if last.Note != "offer withdrawn by university" {
		t.Errorf("regression note = %q", last.Note)
	}
}

func TestStageIndex(t *testing.T) {
	for i, s := range progress.Stages {
		if got := progress.StageIndex(s); got != i {
			t.Errorf("StageIndex(%s) = %d, want %d", s, got, i)
		}
	}
	if got := progress.StageIndex("lol"); got != -1 {
		t.Errorf("StageIndex(lol) = %d, want -1", got)
	}
}
