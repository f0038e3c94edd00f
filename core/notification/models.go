package notification

// Notification types.
const (
	TypeInfo    = "info"
	TypeSuccess = "success"
	TypeWarning = "warning"
	TypeError   = "error"
)

// SupportInbox is the pooled target shared by the whole admin pool.
// Notifications addressed to it show up for every super admin.
const SupportInbox = "super_admin"

// Notification is a single-recipient row; fan-out to several recipients
// writes one row per recipient.
type Notification struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Seen      bool   `json:"seen"`
	Timestamp int64  `json:"timestamp"`
}
