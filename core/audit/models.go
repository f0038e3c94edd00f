package audit

// Entry is an append-only audit record. Entries are never mutated or deleted.
type Entry struct {
	ID          string `json:"id"`
	Action      string `json:"action"`
	Details     string `json:"details"`
	PerformedBy string `json:"performed_by"`
	Timestamp   int64  `json:"timestamp"`
}

// Well-known action codes.
const (
	ActionUserRegister      = "USER_REGISTER"
	ActionUserCreate        = "USER_CREATE"
	ActionUserDelete        = "USER_DELETE"
	ActionRoleChange        = "ROLE_CHANGE"
	ActionPasswordReset     = "PASSWORD_RESET"
	ActionCreateApplication = "CREATE_APPLICATION"
	ActionUpdateAppStatus   = "UPDATE_APPLICATION_STATUS"
	ActionDocUpload         = "DOC_UPLOAD"
	ActionDocDelete         = "DOC_DELETE"
)
