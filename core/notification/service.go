package notification

import (
	"context"
	"errors"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/user"
	"github.com/aredu/arcportal/realtime"
)

var ErrNotFound = errors.New("notification not found")

// recentLimit caps the bell-icon feed.
const recentLimit = 10

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		GetNotification(ctx context.Context, id string) (Notification, error)
		// QueryNotifications returns rows addressed to any of userIDs,
		// newest first, at most limit rows.
		QueryNotifications(ctx context.Context, userIDs []string, limit int) ([]Notification, error)
		MarkNotificationSeen(ctx context.Context, id string) error
	}

	Service struct {
		repo   Repository
		pub    realtime.Publisher
		logger core.Logger
	}
)

func NewService(repo Repository, pub realtime.Publisher, logger core.Logger) *Service {
	return &Service{repo: repo, pub: pub, logger: logger}
}

// Notify writes one notification row for the target. Invalid targets (empty,
// or the legacy literal "admin" which was never a real identity) are dropped
// at creation. Like audit writes, this is a best-effort side effect of an
// already-committed action; failures are logged, not propagated.
func (svc *Service) Notify(ctx context.Context, userID, title, message, typ string) {
	if userID == "" || userID == "admin" {
		return
	}
	n := Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		Timestamp: core.Now(),
	}
	n, err := svc.repo.CreateNotification(ctx, n)
	if err != nil {
		svc.logger.Error("notification: create failed", err, userID, title)
		return
	}
	svc.pub.Publish(realtime.Event{Topic: "notifications", Kind: realtime.KindCreated, Data: n})
}

// Recent returns the viewer's latest notifications. Super admins also see
// rows addressed to the pooled support inbox.
func (svc *Service) Recent(ctx context.Context, viewer user.User) ([]Notification, error) {
	userIDs := []string{viewer.UID}
	if viewer.IsSuperAdmin() {
		userIDs = append(userIDs, SupportInbox)
	}
	return svc.repo.QueryNotifications(ctx, userIDs, recentLimit)
}

// MarkSeen acknowledges one notification. Only the addressee may ack a row;
// rows addressed to the pooled inbox may be acked by any super admin.
func (svc *Service) MarkSeen(ctx context.Context, viewer user.User, id string) error {
	n, err := svc.repo.GetNotification(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != viewer.UID && !(viewer.IsSuperAdmin() && n.UserID == SupportInbox) {
		return core.ErrPermissionDenied
	}
	if err := svc.repo.MarkNotificationSeen(ctx, id); err != nil {
		return err
	}
	svc.pub.Publish(realtime.Event{Topic: "notifications", Kind: realtime.KindUpdated, Data: id})
	return nil
}
