package notification_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/notification"
	"github.com/aredu/arcportal/core/user"
	"github.com/aredu/arcportal/realtime"
	dummydb "github.com/aredu/arcportal/storage/database/dummy"
)

var (
	student    = user.User{UID: "stu-1", DisplayName: "Jane Doe", Role: user.RoleStudent}
	admin      = user.User{UID: "adm-1", DisplayName: "Ada Admin", Role: user.RoleAdmin}
	superAdmin = user.User{UID: "sadm-1", DisplayName: "Sam Super", Role: user.RoleSuperAdmin}
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...interface{}) {}
func (nopLogger) Info(msg string, args ...interface{})  {}
func (nopLogger) Warn(msg string, args ...interface{})  {}
func (nopLogger) Error(msg string, args ...interface{}) {}

func setup(t *testing.T) *notification.Service {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return notification.NewService(dummydb.NewNotificationRepository(db), realtime.NopPublisher{}, nopLogger{})
}

func Test_Service_Notify_dropsInvalidTargets(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	// the legacy "admin" literal and empty targets never become rows
	svc.Notify(ctx, "admin", "New Document", "x uploaded y", notification.TypeInfo)
	svc.Notify(ctx, "", "Broken", "no recipient", notification.TypeInfo)
	svc.Notify(ctx, admin.UID, "New Document", "x uploaded y", notification.TypeInfo)

	got, err := svc.Recent(ctx, admin)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(got) != 1 || got[0].UserID != admin.UID {
		t.Errorf("Recent() = %+v, want the single real row", got)
	}
}

func Test_Service_Recent(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	svc.Notify(ctx, student.UID, "Application Update", "stage changed", notification.TypeInfo)
	svc.Notify(ctx, notification.SupportInbox, "New Application Submitted", "...", notification.TypeInfo)
	svc.Notify(ctx, admin.UID, "New Message", "...", notification.TypeInfo)

	// a student sees only their own rows
	got, err := svc.Recent(ctx, student)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(got) != 1 || got[0].UserID != student.UID {
		t.Errorf("student Recent() = %+v", got)
	}

	// an admin does not see the pooled inbox
	got, err = svc.Recent(ctx, admin)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(got) != 1 || got[0].UserID != admin.UID {
		t.Errorf("admin Recent() = %+v", got)
	}

	// a super admin sees their own rows plus the pooled inbox
	got, err = svc.Recent(ctx, superAdmin)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(got) != 1 || got[0].UserID != notification.SupportInbox {
		t.Errorf("super admin Recent() = %+v", got)
	}
}

func Test_Service_Recent_limit(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		svc.Notify(ctx, student.UID, "Ping", fmt.Sprintf("message %d", i), notification.TypeInfo)
	}
	got, err := svc.Recent(ctx, student)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}
	if len(got) != 10 {
		t.Errorf("Recent() = %d rows, want the 10 newest", len(got))
	}
}

func Test_Service_MarkSeen(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	svc.Notify(ctx, student.UID, "Ping", "hello", notification.TypeInfo)
	got, err := svc.Recent(ctx, student)
	if err != nil || len(got) != 1 {
		t.Fatalf("Recent() = %+v, %v", got, err)
	}
	if got[0].Seen {
		t.Fatal("fresh notification already seen")
	}

	if err := svc.MarkSeen(ctx, student, got[0].ID); err != nil {
		t.Fatalf("MarkSeen() failed: %v", err)
	}
	got, _ = svc.Recent(ctx, student)
	if !got[0].Seen {
		t.Error("notification not marked seen")
	}

	if err := svc.MarkSeen(ctx, student, "no-such-id"); err != notification.ErrNotFound {
		t.Errorf("MarkSeen(unknown) error = %v, want %v", err, notification.ErrNotFound)
	}
}

func Test_Service_MarkSeen_ownership(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	svc.Notify(ctx, student.UID, "Ping", "hello", notification.TypeInfo)
	svc.Notify(ctx, notification.SupportInbox, "Password Reset Request", "...", notification.TypeWarning)

	mine, err := svc.Recent(ctx, student)
	if err != nil || len(mine) != 1 {
		t.Fatalf("Recent() = %+v, %v", mine, err)
	}

	// only the addressee may ack a row
	if err := svc.MarkSeen(ctx, admin, mine[0].ID); err != core.ErrPermissionDenied {
		t.Errorf("foreign MarkSeen() error = %v, want %v", err, core.ErrPermissionDenied)
	}
	got, _ := svc.Recent(ctx, student)
	if got[0].Seen {
		t.Error("foreign ack marked the notification seen")
	}

	// pooled rows are ackable by super admins, not by admins
	pooled, err := svc.Recent(ctx, superAdmin)
	if err != nil || len(pooled) != 1 {
		t.Fatalf("Recent() = %+v, %v", pooled, err)
	}
	if err := svc.MarkSeen(ctx, admin, pooled[0].ID); err != core.ErrPermissionDenied {
		t.Errorf("admin MarkSeen(pooled) error = %v, want %v", err, core.ErrPermissionDenied)
	}
	if err := svc.MarkSeen(ctx, superAdmin, pooled[0].ID); err != nil {
		t.Errorf("super admin MarkSeen(pooled) failed: %v", err)
	}
}
