package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/aredu/arcportal/core"
	"github.com/aredu/arcportal/core/audit"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByUID(ctx context.Context, uid string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		SetUserRole(ctx context.Context, uid, role string) (User, error)
		DeleteUser(ctx context.Context, uid string) error
	}

	// Auditor records state-changing actions; implemented by audit.Service.
	Auditor interface {
		Log(ctx context.Context, action, details, performedBy string)
	}

	// ProgressSeeder creates the initial progress record for new students;
	// implemented by progress.Service.
	ProgressSeeder interface {
		Seed(ctx context.Context, studentID string) error
	}

	// Notifier writes in-app notifications; implemented by notification.Service.
	Notifier interface {
		Notify(ctx context.Context, userID, title, message, typ string)
	}

	Service struct {
		repo     Repository
		auditor  Auditor
		seeder   ProgressSeeder
		notifier Notifier
		mailSvc  core.EmailService
		logger   core.Logger
		tokenGen func(User) (string, error) // mockable
	}
)

func NewService(repo Repository, auditor Auditor, seeder ProgressSeeder, notifier Notifier, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		auditor:  auditor,
		seeder:   seeder,
		notifier: notifier,
		mailSvc:  mailSvc,
		logger:   logger,
		tokenGen: MakeToken,
	}
}

func (svc *Service) checkUniqueness(ctx context.Context, email string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, exclUsers...); err != nil {
		if err == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a self-service account. Self-registered accounts default
// to the student role; students get a progress record seeded at the first
// stage.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	if err := nu.Validate(); err != nil {
		return User{}, err
	}
	if err := svc.checkUniqueness(ctx, nu.Email); err != nil {
		return User{}, err
	}
	usr := User{
		Email:             nu.Email,
		DisplayName:       nu.DisplayName,
		Role:              nu.Role,
		ProfileCompletion: 10,
		CreatedAt:         core.Now(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	if usr.IsStudent() {
		if err := svc.seeder.Seed(ctx, usr.UID); err != nil {
			svc.logger.Error("user: seeding progress failed", err, usr.UID)
		}
	}
	svc.auditor.Log(ctx, audit.ActionUserRegister, fmt.Sprintf("%s registered: %s", usr.Role, usr.Email), usr.UID)
	return usr, nil
}

// Create is the staff-driven variant of Register; the actor needs the
// user-management capability.
func (svc *Service) Create(ctx context.Context, actor User, nu NewUser) (User, error) {
	if !Can(actor.Role, CapManageUsers) {
		return User{}, core.ErrPermissionDenied
	}
	if err := nu.Validate(); err != nil {
		return User{}, err
	}
	if err := svc.checkUniqueness(ctx, nu.Email); err != nil {
		return User{}, err
	}
	usr := User{
		Email:       nu.Email,
		DisplayName: nu.DisplayName,
		Role:        nu.Role,
		CreatedAt:   core.Now(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	if usr.IsStudent() {
		if err := svc.seeder.Seed(ctx, usr.UID); err != nil {
			svc.logger.Error("user: seeding progress failed", err, usr.UID)
		}
	}
	svc.auditor.Log(ctx, audit.ActionUserCreate, fmt.Sprintf("Created %s: %s", usr.Role, usr.Email), actor.UID)
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByUID(ctx context.Context, uid string) (User, error) {
	return svc.repo.GetUserByUID(ctx, uid)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]User, error) {
	return svc.repo.FilterUsers(ctx, filter)
}

// Update applies a self-service profile update (name, photo, password).
func (svc *Service) Update(ctx context.Context, uid string, uu UpdateUser) (User, error) {
	origUsr, err := svc.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return User{}, err
	}
	if err := uu.Validate(origUsr); err != nil {
		return User{}, err
	}
	usr := User{
		UID:         uid,
		DisplayName: uu.DisplayName,
		PhotoURL:    uu.PhotoURL,
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(ctx, usr)
}

// ChangeRole reassigns a user's role; reserved to super admins.
func (svc *Service) ChangeRole(ctx context.Context, actor User, uid, role string) (User, error) {
	if !Can(actor.Role, CapManageUsers) {
		return User{}, core.ErrPermissionDenied
	}
	usr, err := svc.repo.SetUserRole(ctx, uid, role)
	if err != nil {
		return User{}, err
	}
	svc.auditor.Log(ctx, audit.ActionRoleChange, fmt.Sprintf("Changed %s role to %s", uid, role), actor.UID)
	return usr, nil
}

// Delete removes the profile record only. Tokens already issued remain valid
// until they expire; this mirrors the upstream identity-persistence
// limitation.
func (svc *Service) Delete(ctx context.Context, actor User, uid string) error {
	if !Can(actor.Role, CapManageUsers) {
		return core.ErrPermissionDenied
	}
	usr, err := svc.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return err
	}
	if err := svc.repo.DeleteUser(ctx, uid); err != nil {
		return err
	}
	svc.auditor.Log(ctx, audit.ActionUserDelete, fmt.Sprintf("Deleted user data for %s", usr.Email), actor.UID)
	return nil
}

// RequestPasswordReset files a pooled reset request for the admin pool to
// process. The notification is written whether or not the email matches an
// account, so the endpoint does not leak account existence.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) {
	email = core.CleanString(email, true /* lower */)
	// the pooled support inbox shares the super_admin role string
	svc.notifier.Notify(
		ctx, RoleSuperAdmin, "Password Reset Request",
		fmt.Sprintf("A password reset was requested for %s", email), "warning",
	)
}

// SendPasswordResetEmail dispatches a reset email carrying a timestamped
// token; called by a super admin processing a pooled reset request.
func (svc *Service) SendPasswordResetEmail(ctx context.Context, actor User, email string) error {
	if !Can(actor.Role, CapProcessResets) {
		return core.ErrPermissionDenied
	}
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	token, err := svc.tokenGen(usr)
	if err != nil {
		return err
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.DisplayName, Address: usr.Email}},
		Subject: "Password Reset",
		BodyStr: fmt.Sprintf(
			"Follow this link to reset your password:\n\n%s/reset-password?uid=%s&token=%s",
			core.Conf.GetString("frontendBaseURL"), EncodeUID(usr), token,
		),
	})
	svc.auditor.Log(ctx, audit.ActionPasswordReset, fmt.Sprintf("Sent reset email to %s", usr.Email), actor.UID)
	return nil
}

// ConfirmPasswordReset verifies the token and sets the new password.
func (svc *Service) ConfirmPasswordReset(ctx context.Context, encodedUID, token, pwd string) error {
	uid, err := decodeUID(encodedUID)
	if err != nil {
		return errInvalidToken
	}
	usr, err := svc.repo.GetUserByUID(ctx, uid)
	if err != nil {
		return errInvalidToken
	}
	if err := verifyToken(usr, token); err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = svc.repo.UpdateUser(ctx, usr)
	return err
}
