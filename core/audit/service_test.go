package audit_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aredu/arcportal/core/audit"
	"github.com/aredu/arcportal/realtime"
	dummydb "github.com/aredu/arcportal/storage/database/dummy"
)

type logRecorder struct {
	mu     sync.Mutex
	errors []string
}

func (l *logRecorder) Debug(msg string, args ...interface{}) {}
func (l *logRecorder) Info(msg string, args ...interface{})  {}
func (l *logRecorder) Warn(msg string, args ...interface{})  {}
func (l *logRecorder) Error(msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func Test_Service_Log(t *testing.T) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	logger := new(logRecorder)
	svc := audit.NewService(dummydb.NewAuditRepository(db), realtime.NopPublisher{}, logger)
	ctx := context.Background()

	svc.Log(ctx, "USER_REGISTER", "student registered: jane@test.cd", "usr-1")
	svc.Log(ctx, "DOC_UPLOAD", "Uploaded cv.pdf", "usr-1")

	entries, err := svc.QueryAll(ctx)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("QueryAll() = %d entries, want 2", len(entries))
	}
	// newest first
	if entries[0].Action != "DOC_UPLOAD" || entries[1].Action != "USER_REGISTER" {
		t.Errorf("entries out of order: %+v", entries)
	}
	if entries[0].ID == "" || entries[0].Timestamp == 0 || entries[0].PerformedBy != "usr-1" {
		t.Errorf("entry not fully populated: %+v", entries[0])
	}
	if len(logger.errors) != 0 {
		t.Errorf("unexpected error logs: %v", logger.errors)
	}
}

type failingRepo struct{}

func (failingRepo) AppendEntry(ctx context.Context, e audit.Entry) (audit.Entry, error) {
	return audit.Entry{}, errors.New("disk on fire")
}
func (failingRepo) QueryAllEntries(ctx context.Context) ([]audit.Entry, error) {
	return nil, nil
}

func Test_Service_Log_bestEffort(t *testing.T) {
	logger := new(logRecorder)
	svc := audit.NewService(failingRepo{}, realtime.NopPublisher{}, logger)

	// Log never panics or propagates; the failure lands in the app log
	svc.Log(context.Background(), "USER_REGISTER", "x", "usr-1")
	if len(logger.errors) != 1 {
		t.Errorf("error logs = %v, want 1 entry", logger.errors)
	}
}
