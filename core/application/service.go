package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/audit"
	"github.com/aredu/arcportal/core/notification"
	"github.com/aredu/arcportal/core/user"
	"github.com/aredu/arcportal/realtime"
)

var (
	// errors
	ErrNotFound           = errors.New("application not found")
	ErrDocumentNotFound   = errors.New("application document not found")
	ErrUnknownStatus      = errors.New("unknown application status")
	ErrEmptyAddendum      = errors.New("addendum requires text or a file")
	ErrCancellationExists = errors.New("a cancellation request is already pending")
)

type (
	Repository interface {
		CreateApplication(ctx context.Context, app Application) (Application, error)
		GetApplicationByID(ctx context.Context, id string) (Application, error)
		QueryAllApplications(ctx context.Context) ([]Application, error)
		QueryApplicationsByStudent(ctx context.Context, studentID string) ([]Application, error)
		UpdateApplicationStatus(ctx context.Context, id, status string, lastUpdated int64) (Application, error)
		// AppendAddendum must be atomic: concurrent appends may not lose
		// entries (the in-memory store appends under its table lock, the
		// Postgres store concatenates jsonb inside a single UPDATE).
		AppendAddendum(ctx context.Context, id string, add Addendum, lastUpdated int64) (Application, error)
		UpdateApplicationDocumentStatus(ctx context.Context, id, docID, status string, lastUpdated int64) (Application, error)
		SetCancellationRequest(ctx context.Context, id string, req *CancellationRequest, lastUpdated int64) (Application, error)
	}

	Notifier interface {
		Notify(ctx context.Context, userID, title, message, typ string)
	}

	Auditor interface {
		Log(ctx context.Context, action, details, performedBy string)
	}

	// Directory resolves the admin pool for notification fan-out;
	// implemented by user.Service.
	Directory interface {
		Filter(ctx context.Context, filter user.QueryFilter) ([]user.User, error)
	}

	Service struct {
		repo     Repository
		notifier Notifier
		auditor  Auditor
		dir      Directory
		pub      realtime.Publisher
	}
)

func NewService(repo Repository, notifier Notifier, auditor Auditor, dir Directory, pub realtime.Publisher) *Service {
	return &Service{repo: repo, notifier: notifier, auditor: auditor, dir: dir, pub: pub}
}

// Create validates and persists a new application on behalf of the student,
// then fans out: one pooled notification, one notification per admin-role
// user, one audit entry. Validation failures reject before any write.
func (svc *Service) Create(ctx context.Context, actor user.User, studentID string, na NewApplication, docs []ApplicationDocument) (Application, error) {
	if err := na.Validate(); err != nil {
		return Application{}, err
	}

	now := core.Now()
	for i := range docs {
		if docs[i].ID == "" {
			docs[i].ID = uuid.New().String()
		}
		docs[i].Status = DocPending
		if docs[i].UploadedAt == 0 {
			docs[i].UploadedAt = now
		}
	}

	app := Application{
		StudentID:            studentID,
		ApplicationNumber:    GenerateNumber(core.NowFunc()),
		FullName:             na.FullName,
		PassportNumber:       na.PassportNumber,
		TargetCourses:        na.TargetCourses,
		TargetUniversities:   na.TargetUniversities,
		Countries:            na.Countries,
		BudgetPerYear:        na.BudgetPerYear,
		HighestQualification: na.HighestQualification,
		Documents:            docs,
		Status:               StatusInReview,
		CreatedAt:            now,
		LastUpdated:          now,
	}
	app.PercentageCompleted = CompletionPercentage(app)

	app, err := svc.repo.CreateApplication(ctx, app)
	if err != nil {
		return Application{}, err
	}

	svc.auditor.Log(ctx, audit.ActionCreateApplication, fmt.Sprintf("Created application %s", app.ApplicationNumber), actor.UID)

	msg := fmt.Sprintf("%s submitted a new application (%s)", app.FullName, app.ApplicationNumber)
	svc.notifier.Notify(ctx, notification.SupportInbox, "New Application Submitted", msg, notification.TypeInfo)
	admins, err := svc.dir.Filter(ctx, user.QueryFilter{Role: user.RoleAdmin})
	if err == nil {
		for _, adm := range admins {
			svc.notifier.Notify(ctx, adm.UID, "New Application Submitted", msg, notification.TypeInfo)
		}
	}

	svc.pub.Publish(realtime.Event{Topic: "applications", Kind: realtime.KindCreated, Data: app})
	return app, nil
}

func (svc *Service) GetByID(ctx context.Context, id string) (Application, error) {
	return svc.repo.GetApplicationByID(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Application, error) {
	return svc.repo.QueryAllApplications(ctx)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]Application, error) {
	return svc.repo.QueryApplicationsByStudent(ctx, studentID)
}

// UpdateStatus moves an application to any status in the vocabulary; there
// is deliberately no precondition on the prior status. A store-level
// permission rejection is surfaced to the caller as-is, never retried.
func (svc *Service) UpdateStatus(ctx context.Context, actor user.User, id, status string) (Application, error) {
	if !user.Can(actor.Role, user.CapUpdateAppStatus) {
		return Application{}, core.ErrPermissionDenied
	}
	if !validStatus(status) {
		return Application{}, core.NewValidationError(ErrUnknownStatus, core.FieldError{Field: "status", Error: ErrUnknownStatus.Error()})
	}
	app, err := svc.repo.UpdateApplicationStatus(ctx, id, status, core.Now())
	if err != nil {
		return Application{}, err
	}
	svc.auditor.Log(ctx, audit.ActionUpdateAppStatus, fmt.Sprintf("Updated application %s to %s", app.ApplicationNumber, status), actor.UID)
	svc.pub.Publish(realtime.Event{Topic: "applications", Kind: realtime.KindUpdated, Data: app})
	return app, nil
}

// AppendAddendum attaches a note and/or file to an application. The append is
// atomic at the repository so concurrent authors cannot erase each other.
func (svc *Service) AppendAddendum(ctx context.Context, author user.User, id string, na NewAddendum) (Application, error) {
	na.Text = core.CleanString(na.Text)
	if na.Text == "" && na.FileURL == "" {
		return Application{}, core.NewValidationError(ErrEmptyAddendum, core.FieldError{Field: "text", Error: ErrEmptyAddendum.Error()})
	}
	add := Addendum{
		ID:         uuid.New().String(),
		Text:       na.Text,
		FileURL:    na.FileURL,
		FileName:   na.FileName,
		FileType:   na.FileType,
		CreatedAt:  core.Now(),
		CreatedBy:  author.UID,
		AuthorName: author.DisplayName,
	}
	app, err := svc.repo.AppendAddendum(ctx, id, add, add.CreatedAt)
	if err != nil {
		return Application{}, err
	}
	svc.pub.Publish(realtime.Event{Topic: "applications", Kind: realtime.KindUpdated, Data: app})
	return app, nil
}

// ReviewDocument marks an embedded application document Verified or Rejected
// and tells the owning student.
func (svc *Service) ReviewDocument(ctx context.Context, actor user.User, id, docID, status string) (Application, error) {
	if !user.Can(actor.Role, user.CapReviewAppDocuments) {
		return Application{}, core.ErrPermissionDenied
	}
	if status != DocVerified && status != DocRejected {
		return Application{}, core.NewValidationError(ErrUnknownStatus, core.FieldError{Field: "status", Error: ErrUnknownStatus.Error()})
	}
	app, err := svc.repo.UpdateApplicationDocumentStatus(ctx, id, docID, status, core.Now())
	if err != nil {
		return Application{}, err
	}
	var docName string
	for _, d := range app.Documents {
		if d.ID == docID {
			docName = d.Name
		}
	}
	typ := notification.TypeSuccess
	if status == DocRejected {
		typ = notification.TypeWarning
	}
	svc.notifier.Notify(ctx, app.StudentID, fmt.Sprintf("Document %s", status),
		fmt.Sprintf("%s on application %s was marked %s", docName, app.ApplicationNumber, status), typ)
	svc.pub.Publish(realtime.Event{Topic: "applications", Kind: realtime.KindUpdated, Data: app})
	return app, nil
}

// RequestCancellation files a cancellation request on the student's own
// application; only one may be pending at a time.
func (svc *Service) RequestCancellation(ctx context.Context, actor user.User, id, reason string) (Application, error) {
	reason = core.CleanString(reason)
	if reason == "" {
		return Application{}, core.NewValidationError(errors.New("reason is required"), core.FieldError{Field: "reason", Error: "reason is required"})
	}
	app, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.StudentID != actor.UID {
		return Application{}, core.ErrPermissionDenied
	}
	if app.CancellationRequest != nil && app.CancellationRequest.ReviewedAt == 0 {
		return Application{}, ErrCancellationExists
	}
	req := &CancellationRequest{Reason: reason, RequestedAt: core.Now()}
	app, err = svc.repo.SetCancellationRequest(ctx, id, req, req.RequestedAt)
	if err != nil {
		return Application{}, err
	}
	svc.notifier.Notify(ctx, notification.SupportInbox, "Cancellation Requested",
		fmt.Sprintf("%s requested cancellation of application %s", actor.DisplayName, app.ApplicationNumber), notification.TypeWarning)
	svc.pub.Publish(realtime.Event{Topic: "applications", Kind: realtime.KindUpdated, Data: app})
	return app, nil
}

// ReviewCancellation approves or declines a pending cancellation request.
// The application status is left untouched; staff follow up with an explicit
// status update.
func (svc *Service) ReviewCancellation(ctx context.Context, actor user.User, id string, approve bool) (Application, error) {
	if !user.Can(actor.Role, user.CapReviewCancellation) {
		return Application{}, core.ErrPermissionDenied
	}
	app, err := svc.repo.GetApplicationByID(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.CancellationRequest == nil {
		return Application{}, core.NewValidationError(errors.New("no cancellation request to review"))
	}
	req := *app.CancellationRequest
	req.Approved = approve
	req.ReviewedBy = actor.UID
	req.ReviewedAt = core.Now()
	app, err = svc.repo.SetCancellationRequest(ctx, id, &req, req.ReviewedAt)
	if err != nil {
		return Application{}, err
	}
	verdict := "declined"
	typ := notification.TypeWarning
	if approve {
		verdict = "approved"
		typ = notification.TypeSuccess
	}
	svc.notifier.Notify(ctx, app.StudentID, "Cancellation Reviewed",
		fmt.Sprintf("Your cancellation request for %s was %s", app.ApplicationNumber, verdict), typ)
	svc.pub.Publish(realtime.Event{Topic: "applications", Kind: realtime.KindUpdated, Data: app})
	return app, nil
}

func validStatus(status string) bool {
	for _, s := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}
