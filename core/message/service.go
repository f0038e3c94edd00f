package message

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/notification"
	"github.com/aredu/arcportal/core/user"
	"github.com/aredu/arcportal/realtime"
)

var (
	// errors
	ErrEmptyMessage = errors.New("message requires content or a file")
	ErrNoReceiver   = errors.New("receiver is required")
	ErrSendInFlight = errors.New("a previous send is still in flight")
)

type (
	Repository interface {
		CreateMessage(ctx context.Context, m Message) (Message, error)
		// QueryAllMessages returns the whole feed, oldest first.
		QueryAllMessages(ctx context.Context) ([]Message, error)
		// QueryMessagesByParticipant returns messages sent or received by
		// uid, oldest first.
		QueryMessagesByParticipant(ctx context.Context, uid string) ([]Message, error)
		MarkMessageRead(ctx context.Context, id string) error
		CountUnread(ctx context.Context, receiverID string) (int, error)
	}

	Notifier interface {
		Notify(ctx context.Context, userID, title, message, typ string)
	}

	// Directory resolves the admin pool for support-inbox fan-out.
	Directory interface {
		Filter(ctx context.Context, filter user.QueryFilter) ([]user.User, error)
	}

	Service struct {
		repo     Repository
		notifier Notifier
		dir      Directory
		pub      realtime.Publisher

		mu       sync.Mutex
		inFlight map[string]bool // sender uid -> send in progress
	}
)

func NewService(repo Repository, notifier Notifier, dir Directory, pub realtime.Publisher) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		dir:      dir,
		pub:      pub,
		inFlight: make(map[string]bool),
	}
}

// Send persists one message and fans out notifications. Students always talk
// to the pooled support inbox regardless of the receiver they name; staff
// send directly to a uid. Sends are serialized per sender: a second send
// while one is still in flight is rejected rather than queued.
func (svc *Service) Send(ctx context.Context, sender user.User, nm NewMessage) (Message, error) {
	nm.Content = core.CleanString(nm.Content)
	if nm.Content == "" && nm.FileURL == "" {
		return Message{}, core.NewValidationError(ErrEmptyMessage, core.FieldError{Field: "content", Error: ErrEmptyMessage.Error()})
	}

	receiverID := nm.ReceiverID
	if sender.Role == user.RoleStudent {
		receiverID = SupportInbox
	}
	if receiverID == "" {
		return Message{}, core.NewValidationError(ErrNoReceiver, core.FieldError{Field: "receiver_id", Error: ErrNoReceiver.Error()})
	}

	svc.mu.Lock()
	if svc.inFlight[sender.UID] {
		svc.mu.Unlock()
		return Message{}, ErrSendInFlight
	}
	svc.inFlight[sender.UID] = true
	svc.mu.Unlock()
	defer func() {
		svc.mu.Lock()
		delete(svc.inFlight, sender.UID)
		svc.mu.Unlock()
	}()

	m := Message{
		SenderID:   sender.UID,
		SenderName: sender.DisplayName,
		ReceiverID: receiverID,
		Content:    nm.Content,
		FileURL:    nm.FileURL,
		FileType:   nm.FileType,
		FileName:   nm.FileName,
		Timestamp:  core.Now(),
		Read:       false,
	}
	m, err := svc.repo.CreateMessage(ctx, m)
	if err != nil {
		return Message{}, err
	}

	notifMsg := fmt.Sprintf("%s sent you a message", sender.DisplayName)
	if receiverID == SupportInbox {
		// one notification per admin-pool member; duplicates are not
		// deduplicated if an identity shows up twice
		for _, role := range []string{user.RoleAdmin, user.RoleSuperAdmin} {
			admins, err := svc.dir.Filter(ctx, user.QueryFilter{Role: role})
			if err != nil {
				continue
			}
			for _, adm := range admins {
				svc.notifier.Notify(ctx, adm.UID, "New Message", notifMsg, notification.TypeInfo)
			}
		}
	} else {
		svc.notifier.Notify(ctx, receiverID, "New Message", notifMsg, notification.TypeInfo)
	}

	svc.pub.Publish(realtime.Event{Topic: "messages", Kind: realtime.KindCreated, Data: m})
	return m, nil
}

// threadKey returns the thread a message belongs to from the viewer's
// perspective. A student has exactly one thread, the pooled support inbox,
// no matter which staff identity actually replied.
func threadKey(viewer user.User, m Message) string {
	if viewer.Role == user.RoleStudent {
		return SupportInbox
	}
	return m.Counterparty(viewer.UID)
}

// Threads computes the viewer's conversations from the flat feed: group by
// the counterparty, oldest message first within each thread, threads sorted
// by their latest message (most recent first). Staff see every thread in the
// pool; a student's whole participant feed collapses into the single support
// thread.
func (svc *Service) Threads(ctx context.Context, viewer user.User) ([]Thread, error) {
	var (
		msgs []Message
		err  error
	)
	if user.Can(viewer.Role, user.CapViewAllThreads) {
		msgs, err = svc.repo.QueryAllMessages(ctx)
	} else {
		msgs, err = svc.repo.QueryMessagesByParticipant(ctx, viewer.UID)
	}
	if err != nil {
		return nil, err
	}

	grouped := make(map[string]*Thread)
	order := make([]string, 0)
	for _, m := range msgs {
		other := threadKey(viewer, m)
		th, ok := grouped[other]
		if !ok {
			th = &Thread{CounterpartyID: other}
			grouped[other] = th
			order = append(order, other)
		}
		th.Messages = append(th.Messages, m)
		if !m.Read && m.ReceiverID == viewer.UID {
			th.Unread++
		}
	}

	threads := make([]Thread, 0, len(grouped))
	for _, id := range order {
		threads = append(threads, *grouped[id])
	}
	sort.SliceStable(threads, func(i, j int) bool {
		li := threads[i].Messages[len(threads[i].Messages)-1].Timestamp
		lj := threads[j].Messages[len(threads[j].Messages)-1].Timestamp
		return li > lj
	})
	return threads, nil
}

// Thread returns one conversation and, as a side effect of viewing it, marks
// every unread message addressed to the viewer in that thread as read. This
// is what drives the unread badge down without an explicit ack.
func (svc *Service) Thread(ctx context.Context, viewer user.User, counterpartyID string) (Thread, error) {
	msgs, err := svc.repo.QueryMessagesByParticipant(ctx, viewer.UID)
	if err != nil {
		return Thread{}, err
	}

	th := Thread{CounterpartyID: counterpartyID}
	for _, m := range msgs {
		if threadKey(viewer, m) != counterpartyID {
			continue
		}
		if !m.Read && m.ReceiverID == viewer.UID {
			if err := svc.repo.MarkMessageRead(ctx, m.ID); err == nil {
				m.Read = true
				svc.pub.Publish(realtime.Event{Topic: "messages", Kind: realtime.KindUpdated, Data: m})
			}
		}
		th.Messages = append(th.Messages, m)
	}
	return th, nil
}

// UnreadCount is the live badge: messages addressed to uid and not yet read.
func (svc *Service) UnreadCount(ctx context.Context, uid string) (int, error) {
	return svc.repo.CountUnread(ctx, uid)
}
