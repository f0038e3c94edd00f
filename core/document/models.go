package document

// DocumentItem statuses.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusRequested = "requested"
)

// Coarse document types for the general documents panel.
const (
	TypePassport   = "passport"
	TypeTranscript = "transcript"
	TypeIELTS      = "ielts"
	TypeResume     = "resume"
	TypeFinancials = "financials"
	TypeOther      = "other"
)

// DocumentItem is a top-level per-student document, distinct from the
// documents embedded in an application.
type DocumentItem struct {
	ID         string `json:"id"`
	StudentID  string `json:"student_id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	URL        string `json:"url"`
	Status     string `json:"status"`
	UploadedAt int64  `json:"uploaded_at"`
	AdminNote  string `json:"admin_note,omitempty"`
}
