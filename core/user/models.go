package user

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/aredu/arcportal/core"
)

// Roles
const (
	RoleStudent    = "student"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

var AllRoles = []string{RoleStudent, RoleAdmin, RoleSuperAdmin}

// Capability names every privileged operation. Handlers and services check
// capabilities through Can instead of comparing role strings at call sites.
type Capability string

const (
	CapManageUsers        Capability = "users:manage"         // create/delete users, change roles
	CapProcessResets      Capability = "users:process-resets" // act on pooled password-reset requests
	CapUpdateAppStatus    Capability = "applications:update-status"
	CapReviewAppDocuments Capability = "applications:review-documents"
	CapReviewCancellation Capability = "applications:review-cancellation"
	CapSetStage           Capability = "progress:set-stage"
	CapReviewDocuments    Capability = "documents:review"
	CapRequestDocuments   Capability = "documents:request"
	CapDeleteDocuments    Capability = "documents:delete"
	CapCreateTasks        Capability = "tasks:create"
	CapDeleteTasks        Capability = "tasks:delete"
	CapViewAllThreads     Capability = "messages:view-all"
	CapViewAuditLog       Capability = "audit:view"
)

var staffCaps = []Capability{
	CapUpdateAppStatus, CapReviewAppDocuments, CapReviewCancellation,
	CapSetStage, CapReviewDocuments, CapRequestDocuments,
	CapCreateTasks, CapDeleteTasks, CapViewAllThreads,
}

var capabilities = map[string]map[Capability]bool{
	RoleStudent:    {},
	RoleAdmin:      {},
	RoleSuperAdmin: {CapManageUsers: true, CapProcessResets: true, CapDeleteDocuments: true, CapViewAuditLog: true},
}

func init() {
	for _, c := range staffCaps {
		capabilities[RoleAdmin][c] = true
		capabilities[RoleSuperAdmin][c] = true
	}
}

// Can reports whether a role is permitted to perform the given operation.
func Can(role string, c Capability) bool {
	return capabilities[role][c]
}

// IsStaff reports whether role belongs to the admin pool.
func IsStaff(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}

type User struct {
	UID               string `json:"uid"`
	Email             string `json:"email"`
	DisplayName       string `json:"display_name"`
	Role              string `json:"role"`
	PhotoURL          string `json:"photo_url,omitempty"`
	ProfileCompletion int    `json:"profile_completion"`
	PasswordHash      []byte `json:"-"`
	CreatedAt         int64  `json:"created_at"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsStudent() bool    { return u.Role == RoleStudent }
func (u *User) IsStaff() bool      { return IsStaff(u.Role) }
func (u *User) IsSuperAdmin() bool { return u.Role == RoleSuperAdmin }

// NewUser contains information needed to create a new User.
type NewUser struct {
	DisplayName     string `json:"display_name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"omitempty,knownrole"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

func (nu *NewUser) Validate() error {
	nu.DisplayName = core.CleanString(nu.DisplayName)
	nu.Email = core.CleanString(nu.Email, true)
	if nu.Role == "" {
		nu.Role = RoleStudent
	}
	return core.Validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
type UpdateUser struct {
	DisplayName     string `json:"display_name"`
	PhotoURL        string `json:"photo_url"`
	Password        string `json:"password" validate:"omitempty"`
	PasswordConfirm string `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (uu *UpdateUser) Validate(origUsr User) error {
	name := core.CleanString(uu.DisplayName)
	if name != "" {
		uu.DisplayName = name
	} else {
		uu.DisplayName = origUsr.DisplayName
	}
	return core.Validate.Struct(uu)
}

type QueryFilter struct {
	Role   string
	Search string // case-insensitive match on DisplayName or Email
}
