package message_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aredu/arcportal/core/message"
	"github.com/aredu/arcportal/core/user"
	"github.com/aredu/arcportal/realtime"
	dummydb "github.com/aredu/arcportal/storage/database/dummy"
)

var (
	student    = user.User{UID: "stu-1", DisplayName: "Jane Doe", Role: user.RoleStudent}
	otherStu   = user.User{UID: "stu-2", DisplayName: "John Roe", Role: user.RoleStudent}
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

type staticDirectory struct {
	users []user.User
}

func (d staticDirectory) Filter(_ context.Context, f user.QueryFilter) ([]user.User, error) {
	var out []user.User
	for _, u := range d.users {
		if f.Role == "" || u.Role == f.Role {
			out = append(out, u)
		}
	}
	return out, nil
}

func setup(t *testing.T) (*message.Service, *notifierRecorder) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	notifier := new(notifierRecorder)
	dir := staticDirectory{users: []user.User{student, otherStu, admin, superAdmin}}
	svc := message.NewService(dummydb.NewMessageRepository(db), notifier, dir, realtime.NopPublisher{})
	return svc, notifier
}

func Test_Service_Send_studentRoutesToSupport(t *testing.T) {
	svc, notifier := setup(t)

	// whatever receiver a student names is overridden
	m, err := svc.Send(context.Background(), student, message.NewMessage{ReceiverID: otherStu.UID, Content: "hello?"})
	if err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if m.ReceiverID != message.SupportInbox {
		t.Errorf("ReceiverID = %s, want %s", m.ReceiverID, message.SupportInbox)
	}

	// fan-out: one notification per admin-pool member, none to students
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	recipients := make(map[string]int)
	for _, n := range notifier.notes {
		recipients[n.UserID]++
	}
	if recipients[admin.UID] != 1 || recipients[superAdmin.UID] != 1 || len(recipients) != 2 {
		t.Errorf("notification recipients = %v", recipients)
	}
}

func Test_Service_Send_staffSendsDirect(t *testing.T) {
	svc, notifier := setup(t)

	m, err := svc.Send(context.Background(), admin, message.NewMessage{ReceiverID: student.UID, Content: "please upload your passport"})
	if err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if m.ReceiverID != student.UID {
		t.Errorf("ReceiverID = %s, want %s", m.ReceiverID, student.UID)
	}
	if len(notifier.notes) != 1 || notifier.notes[0].UserID != student.UID {
		t.Fatalf("notifications = %+v", notifier.notes)
	}
	if notifier.notes[0].Message != "Ada Admin sent you a message" {
		t.Errorf("notification message = %q", notifier.notes[0].Message)
	}
}

func Test_Service_Send_validation(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.Send(ctx, student, message.NewMessage{Content: "   "}); err == nil {
		t.Error("Send() accepted a message without content or file")
	}
	if _, err := svc.Send(ctx, admin, message.NewMessage{Content: "hi"}); err == nil {
		t.Error("staff Send() accepted a message without a receiver")
	}
	// a file alone is enough
	if _, err := svc.Send(ctx, student, message.NewMessage{FileURL: "dummy://blobs/doc.pdf", FileName: "doc.pdf"}); err != nil {
		t.Errorf("Send() with file only failed: %v", err)
	}
}

// blockingRepo wraps the real repository so a send can be held in flight
// deterministically.
type blockingRepo struct {
	message.Repository
	enter chan struct{}
	exit  chan struct{}
}

func (r *blockingRepo) CreateMessage(ctx context.Context, m message.Message) (message.Message, error) {
	r.enter <- struct{}{}
	<-r.exit
	return r.Repository.CreateMessage(ctx, m)
}

func Test_Service_Send_inFlightGuard(t *testing.T) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := &blockingRepo{
		Repository: dummydb.NewMessageRepository(db),
		enter:      make(chan struct{}, 8),
		exit:       make(chan struct{}),
	}
	dir := staticDirectory{users: []user.User{admin}}
	svc := message.NewService(repo, new(notifierRecorder), dir, realtime.NopPublisher{})
	ctx := context.Background()

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Send(ctx, student, message.NewMessage{Content: "first"})
		firstDone <- err
	}()
	<-repo.enter // first send is now inside the repository

	if _, err := svc.Send(ctx, student, message.NewMessage{Content: "second"}); err != message.ErrSendInFlight {
		t.Errorf("concurrent Send() error = %v, want %v", err, message.ErrSendInFlight)
	}
	// a different sender is not serialized against the first
	otherDone := make(chan error, 1)
	go func() {
		_, err := svc.Send(ctx, admin, message.NewMessage{ReceiverID: student.UID, Content: "unrelated"})
		otherDone <- err
	}()
	<-repo.enter

	close(repo.exit)
	if err := <-firstDone; err != nil {
		t.Fatalf("first Send() failed: %v", err)
	}
	if err := <-otherDone; err != nil {
		t.Fatalf("other sender Send() failed: %v", err)
	}

	// the guard clears once the send completes
	if _, err := svc.Send(ctx, student, message.NewMessage{Content: "third"}); err != nil {
		t.Errorf("follow-up Send() failed: %v", err)
	}
}

func Test_Service_Threads(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	mustSend := func(sender user.User, nm message.NewMessage) {
		t.Helper()
		if _, err := svc.Send(ctx, sender, nm); err != nil {
			t.Fatalf("Send() failed: %v", err)
		}
	}
	mustSend(student, message.NewMessage{Content: "hi, I need help"})
	mustSend(admin, message.NewMessage{ReceiverID: student.UID, Content: "on it"})
	mustSend(admin, message.NewMessage{ReceiverID: otherStu.UID, Content: "any update?"})
	mustSend(otherStu, message.NewMessage{Content: "yes, uploading now"})

	// staff see every thread in the pool, most recently active first
	threads, err := svc.Threads(ctx, superAdmin)
	if err != nil {
		t.Fatalf("Threads() failed: %v", err)
	}
	if len(threads) < 2 {
		t.Fatalf("Threads() = %d threads, want at least 2", len(threads))
	}
	for i := 1; i < len(threads); i++ {
		prev := threads[i-1].Messages[len(threads[i-1].Messages)-1].Timestamp
		cur := threads[i].Messages[len(threads[i].Messages)-1].Timestamp
		if prev < cur {
			t.Errorf("threads not sorted by latest activity: %d before %d", prev, cur)
		}
	}

	// a student sees only their own conversations, all in one thread
	mine, err := svc.Threads(ctx, student)
	if err != nil {
		t.Fatalf("Threads() failed: %v", err)
	}
	if len(mine) != 1 || mine[0].CounterpartyID != message.SupportInbox {
		t.Fatalf("student Threads() = %+v, want the single support thread", mine)
	}
	for _, th := range mine {
		for _, m := range th.Messages {
			if m.SenderID != student.UID && m.ReceiverID != student.UID {
				t.Errorf("foreign message leaked into student threads: %+v", m)
			}
		}
	}

	// unread counts only messages addressed to the viewer
	var unread int
	for _, th := range mine {
		unread += th.Unread
	}
	if unread != 1 { // the admin's direct reply
		t.Errorf("student unread = %d, want 1", unread)
	}
}

// A staff reply carries the admin's real uid as sender, but from the
// student's side it still belongs to the one support thread: listing,
// opening and the unread badge all treat the feed as a single conversation.
func Test_Service_Thread_studentSupportThread(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.Send(ctx, student, message.NewMessage{Content: "hi, I need help"}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if _, err := svc.Send(ctx, admin, message.NewMessage{ReceiverID: student.UID, Content: "on it"}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}

	threads, err := svc.Threads(ctx, student)
	if err != nil {
		t.Fatalf("Threads() failed: %v", err)
	}
	if len(threads) != 1 {
		t.Fatalf("Threads() = %d threads, want 1", len(threads))
	}
	if th := threads[0]; th.CounterpartyID != message.SupportInbox || len(th.Messages) != 2 || th.Unread != 1 {
		t.Fatalf("support thread = %+v", th)
	}

	th, err := svc.Thread(ctx, student, message.SupportInbox)
	if err != nil {
		t.Fatalf("Thread() failed: %v", err)
	}
	if len(th.Messages) != 2 {
		t.Fatalf("Thread() = %d messages, want 2 (staff reply included)", len(th.Messages))
	}
	if n, _ := svc.UnreadCount(ctx, student.UID); n != 0 {
		t.Errorf("UnreadCount() after opening support thread = %d, want 0", n)
	}
}

func Test_Service_Thread_marksRead(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	if _, err := svc.Send(ctx, admin, message.NewMessage{ReceiverID: student.UID, Content: "ping"}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if _, err := svc.Send(ctx, admin, message.NewMessage{ReceiverID: student.UID, Content: "pong"}); err != nil {
		t.Fatalf("Send() failed: %v", err)
	}

	if n, _ := svc.UnreadCount(ctx, student.UID); n != 2 {
		t.Fatalf("UnreadCount() = %d, want 2", n)
	}

	th, err := svc.Thread(ctx, student, message.SupportInbox)
	if err != nil {
		t.Fatalf("Thread() failed: %v", err)
	}
	if len(th.Messages) != 2 {
		t.Fatalf("Thread() = %d messages, want 2", len(th.Messages))
	}
	for _, m := range th.Messages {
		if !m.Read {
			t.Errorf("message %s not marked read on view", m.ID)
		}
	}
	if n, _ := svc.UnreadCount(ctx, student.UID); n != 0 {
		t.Errorf("UnreadCount() after viewing = %d, want 0", n)
	}
}
