package message

import "github.com/aredu/arcportal/core/notification"

// SupportInbox is the pooled counterparty every student talks to. Send routes
// student messages to it, and the thread projection collapses a student's
// whole feed onto it.
const SupportInbox = notification.SupportInbox

type Message struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name"`
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
	FileURL    string `json:"file_url,omitempty"`
	FileType   string `json:"file_type,omitempty"`
	FileName   string `json:"file_name,omitempty"`
	Timestamp  int64  `json:"timestamp"`
	Read       bool   `json:"read"`
}

// NewMessage is the send payload; content or a file must be present.
type NewMessage struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
	FileURL    string `json:"file_url"`
	FileType   string `json:"file_type"`
	FileName   string `json:"file_name"`
}

// Thread is a derived conversation: all messages between the viewer and one
// counterparty, oldest first. Threads are a projection over the flat feed,
// never stored.
type Thread struct {
	CounterpartyID string    `json:"counterparty_id"`
	Messages       []Message `json:"messages"`
	Unread         int       `json:"unread"`
}

// Counterparty returns the other side of a message from the viewer's
// perspective.
func (m Message) Counterparty(viewerID string) string {
	if m.SenderID == viewerID {
		return m.ReceiverID
	}
	return m.SenderID
}
