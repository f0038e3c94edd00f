package document

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/audit"
	"github.com/aredu/arcportal/core/notification"
	"github.com/aredu/arcportal/core/user"
	"github.com/aredu/arcportal/realtime"
)

var (
	// errors
	ErrNotFound  = errors.New("document not found")
	ErrEmptyName = errors.New("document name is required")
)

type (
	Repository interface {
		CreateDocument(ctx context.Context, d DocumentItem) (DocumentItem, error)
		GetDocumentByID(ctx context.Context, id string) (DocumentItem, error)
		QueryDocumentsByStudent(ctx context.Context, studentID string) ([]DocumentItem, error)
		UpdateDocumentStatus(ctx context.Context, id, status, adminNote string) (DocumentItem, error)
		DeleteDocument(ctx context.Context, id string) error
	}

	// Blob is the file-store collaborator: upload bytes under a path, get a
	// durable URL back, delete by reference (best-effort).
	Blob interface {
		Upload(ctx context.Context, path string, r io.Reader) (url string, err error)
		Delete(ctx context.Context, url string) error
	}

	Notifier interface {
		Notify(ctx context.Context, userID, title, message, typ string)
	}

	Auditor interface {
		Log(ctx context.Context, action, details, performedBy string)
	}

	Service struct {
		repo     Repository
		blob     Blob
		notifier Notifier
		auditor  Auditor
		logger   core.Logger
		pub      realtime.Publisher
	}
)

func NewService(repo Repository, blob Blob, notifier Notifier, auditor Auditor, logger core.Logger, pub realtime.Publisher) *Service {
	return &Service{repo: repo, blob: blob, notifier: notifier, auditor: auditor, logger: logger, pub: pub}
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID string) ([]DocumentItem, error) {
	return svc.repo.QueryDocumentsByStudent(ctx, studentID)
}

// Upload stores the file then the metadata record. If the metadata write
// fails after the blob write there is no reconciliation; the orphaned blob
// is an accepted failure mode of the two-store split.
func (svc *Service) Upload(ctx context.Context, actor user.User, studentID, name, typ string, r io.Reader) (DocumentItem, error) {
	name = core.CleanString(name)
	if name == "" {
		return DocumentItem{}, core.NewValidationError(ErrEmptyName, core.FieldError{Field: "name", Error: ErrEmptyName.Error()})
	}
	if typ == "" {
		typ = TypeOther
	}

	now := core.Now()
	url, err := svc.blob.Upload(ctx, fmt.Sprintf("documents/%s/%d_%s", studentID, now, name), r)
	if err != nil {
		return DocumentItem{}, err
	}

	d := DocumentItem{
		StudentID:  studentID,
		Name:       name,
		Type:       typ,
		URL:        url,
		Status:     StatusPending,
		UploadedAt: now,
	}
	d, err = svc.repo.CreateDocument(ctx, d)
	if err != nil {
		return DocumentItem{}, err
	}

	// the legacy "admin" target is filtered out by the notifier
	svc.notifier.Notify(ctx, "admin", "New Document", fmt.Sprintf("%s uploaded %s", actor.DisplayName, name), notification.TypeInfo)
	svc.auditor.Log(ctx, audit.ActionDocUpload, fmt.Sprintf("Uploaded %s", name), actor.UID)
	svc.pub.Publish(realtime.Event{Topic: "documents", Kind: realtime.KindCreated, Data: d})
	return d, nil
}

// Approve marks the document approved and notifies the owning student.
func (svc *Service) Approve(ctx context.Context, actor user.User, id, adminNote string) (DocumentItem, error) {
	return svc.review(ctx, actor, id, StatusApproved, adminNote, notification.TypeSuccess)
}

// Reject marks the document rejected and notifies the owning student.
func (svc *Service) Reject(ctx context.Context, actor user.User, id, adminNote string) (DocumentItem, error) {
	return svc.review(ctx, actor, id, StatusRejected, adminNote, notification.TypeWarning)
}

func (svc *Service) review(ctx context.Context, actor user.User, id, status, adminNote, notifType string) (DocumentItem, error) {
	if !user.Can(actor.Role, user.CapReviewDocuments) {
		return DocumentItem{}, core.ErrPermissionDenied
	}
	d, err := svc.repo.UpdateDocumentStatus(ctx, id, status, adminNote)
	if err != nil {
		return DocumentItem{}, err
	}
	svc.notifier.Notify(ctx, d.StudentID, fmt.Sprintf("Document %s", status),
		fmt.Sprintf("%s was %s", d.Name, status), notifType)
	svc.pub.Publish(realtime.Event{Topic: "documents", Kind: realtime.KindUpdated, Data: d})
	return d, nil
}

// Request creates a placeholder record asking the student to supply a
// document.
func (svc *Service) Request(ctx context.Context, actor user.User, studentID, name string) (DocumentItem, error) {
	if !user.Can(actor.Role, user.CapRequestDocuments) {
		return DocumentItem{}, core.ErrPermissionDenied
	}
	name = core.CleanString(name)
	if name == "" {
		return DocumentItem{}, core.NewValidationError(ErrEmptyName, core.FieldError{Field: "name", Error: ErrEmptyName.Error()})
	}
	d := DocumentItem{
		StudentID:  studentID,
		Name:       name,
		Type:       TypeOther,
		Status:     StatusRequested,
		UploadedAt: core.Now(),
	}
	d, err := svc.repo.CreateDocument(ctx, d)
	if err != nil {
		return DocumentItem{}, err
	}
	svc.notifier.Notify(ctx, studentID, "Document Requested",
		fmt.Sprintf("Please upload: %s", name), notification.TypeInfo)
	svc.pub.Publish(realtime.Event{Topic: "documents", Kind: realtime.KindCreated, Data: d})
	return d, nil
}

// Delete removes the metadata record, then attempts to delete the backing
// blob. Blob-deletion failures are logged and swallowed; an orphaned blob
// is preferred over a dangling metadata reference.
func (svc *Service) Delete(ctx context.Context, actor user.User, id string) error {
	if !user.Can(actor.Role, user.CapDeleteDocuments) {
		return core.ErrPermissionDenied
	}
	d, err := svc.repo.GetDocumentByID(ctx, id)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteDocument(ctx, id); err != nil {
		return err
	}
	if d.URL != "" {
		if err := svc.blob.Delete(ctx, d.URL); err != nil {
			svc.logger.Warn("document: blob delete skipped or failed", err, d.URL)
		}
	}
	svc.auditor.Log(ctx, audit.ActionDocDelete, fmt.Sprintf("Deleted document %s", d.Name), actor.UID)
	svc.pub.Publish(realtime.Event{Topic: "documents", Kind: realtime.KindDeleted, Data: d})
	return nil
}
