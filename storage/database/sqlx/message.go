package sqlxrepos

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/aredu/arcportal/core/message"
)

type messageRepository struct {
	db *sqlx.DB
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *sqlx.DB) message.Repository {
	return &messageRepository{db: db}
}

type messageRow struct {
	ID         string      `db:"id"`
	SenderID   string      `db:"sender_id"`
	SenderName string      `db:"sender_name"`
	ReceiverID string      `db:"receiver_id"`
	Content    string      `db:"content"`
	FileURL    null.String `db:"file_url"`
	FileType   null.String `db:"file_type"`
	FileName   null.String `db:"file_name"`
	Timestamp  int64       `db:"ts"`
	Read       bool        `db:"read"`
}

func (r messageRow) toMessage() message.Message {
	return message.Message{
		ID:         r.ID,
		SenderID:   r.SenderID,
		SenderName: r.SenderName,
		ReceiverID: r.ReceiverID,
		Content:    r.Content,
		FileURL:    r.FileURL.String,
		FileType:   r.FileType.String,
		FileName:   r.FileName.String,
		Timestamp:  r.Timestamp,
		Read:       r.Read,
	}
}

const messageCols = `id, sender_id, sender_name, receiver_id, content, file_url, file_type, file_name, ts, read`

func (repo *messageRepository) CreateMessage(ctx context.Context, m message.Message) (message.Message, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `INSERT INTO message (` + messageCols + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.db.ExecContext(ctx, query,
		m.ID, m.SenderID, m.SenderName, m.ReceiverID, m.Content,
		null.NewString(m.FileURL, m.FileURL != ""),
		null.NewString(m.FileType, m.FileType != ""),
		null.NewString(m.FileName, m.FileName != ""),
		m.Timestamp, m.Read,
	)
	if err != nil {
		return message.Message{}, errors.Wrap(err, "creating message")
	}
	return m, nil
}

func (repo *messageRepository) QueryAllMessages(ctx context.Context) ([]message.Message, error) {
	var rows []messageRow
	query := `SELECT ` + messageCols + ` FROM message ORDER BY ts ASC`
	if err := repo.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	return rowsToMessages(rows), nil
}

func (repo *messageRepository) QueryMessagesByParticipant(ctx context.Context, uid string) ([]message.Message, error) {
	var rows []messageRow
	query := `SELECT ` + messageCols + ` FROM message WHERE sender_id = $1 OR receiver_id = $1 ORDER BY ts ASC`
	if err := repo.db.SelectContext(ctx, &rows, query, uid); err != nil {
		return nil, errors.Wrap(err, "querying messages by participant")
	}
	return rowsToMessages(rows), nil
}

func (repo *messageRepository) MarkMessageRead(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE message SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "marking message read")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.New("message not found")
	}
	return nil
}

func (repo *messageRepository) CountUnread(ctx context.Context, receiverID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM message WHERE receiver_id = $1 AND read = FALSE`
	if err := repo.db.GetContext(ctx, &count, query, receiverID); err != nil {
		return 0, errors.Wrap(err, "counting unread messages")
	}
	return count, nil
}

func rowsToMessages(rows []messageRow) []message.Message {
	msgs := make([]message.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, r.toMessage())
	}
	return msgs
}
