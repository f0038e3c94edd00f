package audit

import (
	"context"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/realtime"
)

type (
	Repository interface {
		AppendEntry(ctx context.Context, e Entry) (Entry, error)
		QueryAllEntries(ctx context.Context) ([]Entry, error)
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

// Log appends an audit entry. The write is best-effort: it happens after the
// primary write it describes, and a failure is logged rather than propagated
// so the primary action never rolls back over its paper trail.
func (svc *Service) Log(ctx context.Context, action, details, performedBy string) {
	e := Entry{
		Action:      action,
		Details:     details,
		PerformedBy: performedBy,
		Timestamp:   core.Now(),
	}
	e, err := svc.repo.AppendEntry(ctx, e)
	if err != nil {
		svc.logger.Error("audit: appending entry failed", err, action, details)
		return
	}
	svc.pub.Publish(realtime.Event{Topic: "audit_log", Kind: realtime.KindCreated, Data: e})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Entry, error) {
	return svc.repo.QueryAllEntries(ctx)
}
