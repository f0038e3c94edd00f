package document_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/document"
	"github.com/aredu/arcportal/core/notification"
	"github.com/aredu/arcportal/core/user"
	"github.com/aredu/arcportal/realtime"
	blobsvc "github.com/aredu/arcportal/services/blob"
	dummydb "github.com/aredu/arcportal/storage/database/dummy"
)

var (
	student    = user.User{UID: "stu-1", DisplayName: "Jane Doe", Role: user.RoleStudent}
	admin      = user.User{UID: "adm-1", DisplayName: "Ada Admin", Role: user.RoleAdmin}
	superAdmin = user.User{UID: "sadm-1", DisplayName: "Sam Super", Role: user.RoleSuperAdmin}
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

func (r *notifierRecorder) byStudent(uid string) []note {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []note
	for _, n := range r.notes {
		if n.UserID == uid {
			out = append(out, n)
		}
	}
	return out
}

type auditorRecorder struct {
	mu      sync.Mutex
	actions []string
}

func (r *auditorRecorder) Log(_ context.Context, action, details, performedBy string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions = append(r.actions, action)
}

type logRecorder struct {
	mu    sync.Mutex
	warns []string
}

func (l *logRecorder) Debug(msg string, args ...interface{}) {}
func (l *logRecorder) Info(msg string, args ...interface{})  {}
func (l *logRecorder) Error(msg string, args ...interface{}) {}
func (l *logRecorder) Warn(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func setup(t *testing.T) (*document.Service, *blobsvc.DummyStore, *notifierRecorder, *auditorRecorder, *logRecorder) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	blob := blobsvc.NewDummyStore()
	notifier := new(notifierRecorder)
	auditor := new(auditorRecorder)
	logger := new(logRecorder)
	svc := document.NewService(dummydb.NewDocumentRepository(db), blob, notifier, auditor, logger, realtime.NopPublisher{})
	return svc, blob, notifier, auditor, logger
}

func Test_Service_Upload(t *testing.T) {
	svc, blob, notifier, auditor, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.Upload(ctx, student, student.UID, "  ", document.TypeResume, strings.NewReader("x")); err == nil {
		t.Error("Upload() accepted an empty name")
	}

	d, err := svc.Upload(ctx, student, student.UID, "cv.pdf", document.TypeResume, strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}
	if d.Status != document.StatusPending {
		t.Errorf("Status = %s, want %s", d.Status, document.StatusPending)
	}
	if d.URL == "" || !blob.Has(d.URL) {
		t.Errorf("blob missing for %q", d.URL)
	}
	// the legacy "admin" target never reaches a real recipient; the notifier
	// recorder here sees it raw because filtering lives in notification.Notify
	if len(notifier.notes) != 1 || notifier.notes[0].UserID != "admin" {
		t.Errorf("notifications = %+v", notifier.notes)
	}
	if len(auditor.actions) != 1 || auditor.actions[0] != "DOC_UPLOAD" {
		t.Errorf("audit actions = %v", auditor.actions)
	}
}

func Test_Service_review(t *testing.T) {
	svc, _, notifier, _, _ := setup(t)
	ctx := context.Background()

	d, err := svc.Upload(ctx, student, student.UID, "cv.pdf", document.TypeResume, strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}

	if _, err := svc.Approve(ctx, student, d.ID, ""); err != core.ErrPermissionDenied {
		t.Errorf("student Approve() error = %v, want %v", err, core.ErrPermissionDenied)
	}

	got, err := svc.Approve(ctx, admin, d.ID, "looks good")
	if err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	if got.Status != document.StatusApproved || got.AdminNote != "looks good" {
		t.Errorf("document after approve = %+v", got)
	}

	got, err = svc.Reject(ctx, admin, d.ID, "blurry scan")
	if err != nil {
		t.Fatalf("Reject() failed: %v", err)
	}
	if got.Status != document.StatusRejected {
		t.Errorf("Status = %s, want %s", got.Status, document.StatusRejected)
	}

	notes := notifier.byStudent(student.UID)
	if len(notes) != 2 {
		t.Fatalf("student notifications = %+v", notes)
	}
	if notes[0].Type != notification.TypeSuccess || notes[0].Message != "cv.pdf was approved" {
		t.Errorf("approve notification = %+v", notes[0])
	}
	if notes[1].Type != notification.TypeWarning || notes[1].Message != "cv.pdf was rejected" {
		t.Errorf("reject notification = %+v", notes[1])
	}
}

func Test_Service_Request(t *testing.T) {
	svc, _, notifier, _, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.Request(ctx, student, student.UID, "Bank Statement"); err != core.ErrPermissionDenied {
		t.Errorf("student Request() error = %v, want %v", err, core.ErrPermissionDenied)
	}

	d, err := svc.Request(ctx, admin, student.UID, "Bank Statement")
	if err != nil {
		t.Fatalf("Request() failed: %v", err)
	}
	if d.Status != document.StatusRequested || d.URL != "" {
		t.Errorf("placeholder = %+v", d)
	}
	notes := notifier.byStudent(student.UID)
	if len(notes) != 1 || notes[0].Message != "Please upload: Bank Statement" {
		t.Fatalf("student notifications = %+v", notes)
	}
}

func Test_Service_Delete(t *testing.T) {
	svc, blob, _, auditor, logger := setup(t)
	ctx := context.Background()

	d, err := svc.Upload(ctx, student, student.UID, "cv.pdf", document.TypeResume, strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}

	if err := svc.Delete(ctx, admin, d.ID); err != core.ErrPermissionDenied {
		t.Errorf("admin Delete() error = %v, want %v", err, core.ErrPermissionDenied)
	}
	if err := svc.Delete(ctx, superAdmin, "nope"); err != document.ErrNotFound {
		t.Errorf("Delete() error = %v, want %v", err, document.ErrNotFound)
	}

	if err := svc.Delete(ctx, superAdmin, d.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if blob.Has(d.URL) {
		t.Error("blob not removed on delete")
	}
	if docs, _ := svc.QueryByStudent(ctx, student.UID); len(docs) != 0 {
		t.Errorf("documents after delete = %+v", docs)
	}
	if want := []string{"DOC_UPLOAD", "DOC_DELETE"}; len(auditor.actions) != 2 || auditor.actions[1] != want[1] {
		t.Errorf("audit actions = %v, want %v", auditor.actions, want)
	}
	if len(logger.warns) != 0 {
		t.Errorf("unexpected warnings: %v", logger.warns)
	}
}

func Test_Service_Delete_blobFailureSwallowed(t *testing.T) {
	svc, blob, _, _, logger := setup(t)
	ctx := context.Background()

	d, err := svc.Upload(ctx, student, student.UID, "cv.pdf", document.TypeResume, strings.NewReader("pdf"))
	if err != nil {
		t.Fatalf("Upload() failed: %v", err)
	}

	blob.DeleteErr = errors.New("storage unavailable")
	if err := svc.Delete(ctx, superAdmin, d.ID); err != nil {
		t.Fatalf("Delete() should swallow blob failures, got %v", err)
	}
	// metadata gone, orphaned blob logged
	if docs, _ := svc.QueryByStudent(ctx, student.UID); len(docs) != 0 {
		t.Errorf("documents after delete = %+v", docs)
	}
	if len(logger.warns) != 1 {
		t.Errorf("warnings = %v, want 1 entry", logger.warns)
	}
}
