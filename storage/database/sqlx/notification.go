package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/aredu/arcportal/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

type notificationRow struct {
	ID        string `db:"id"`
	UserID    string `db:"user_id"`
	Title     string `db:"title"`
	Message   string `db:"message"`
	Type      string `db:"type"`
	Seen      bool   `db:"seen"`
	Timestamp int64  `db:"ts"`
}

const notificationCols = `id, user_id, title, message, type, seen, ts`

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	query := `INSERT INTO notification (` + notificationCols + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, query, n.ID, n.UserID, n.Title, n.Message, n.Type, n.Seen, n.Timestamp)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "creating notification")
	}
	return n, nil
}

func (repo *notificationRepository) GetNotification(ctx context.Context, id string) (notification.Notification, error) {
	var r notificationRow
	err := repo.db.GetContext(ctx, &r, `SELECT `+notificationCols+` FROM notification WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return notification.Notification{}, notification.ErrNotFound
	}
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "getting notification")
	}
	return notification.Notification{
		ID:        r.ID,
		UserID:    r.UserID,
		Title:     r.Title,
		Message:   r.Message,
		Type:      r.Type,
		Seen:      r.Seen,
		Timestamp: r.Timestamp,
	}, nil
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, userIDs []string, limit int) ([]notification.Notification, error) {
	query, args, err := sqlx.In(
		`SELECT `+notificationCols+` FROM notification WHERE user_id IN (?) ORDER BY ts DESC LIMIT ?`,
		userIDs, limit,
	)
	if err != nil {
		return nil, errors.Wrap(err, "building notifications query")
	}

	var rows []notificationRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(query), args...); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		notifs = append(notifs, notification.Notification{
			ID:        r.ID,
			UserID:    r.UserID,
			Title:     r.Title,
			Message:   r.Message,
			Type:      r.Type,
			Seen:      r.Seen,
			Timestamp: r.Timestamp,
		})
	}
	return notifs, nil
}

func (repo *notificationRepository) MarkNotificationSeen(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `UPDATE notification SET seen = TRUE WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "marking notification seen")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notification.ErrNotFound
	}
	return nil
}
