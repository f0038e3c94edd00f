package dummydb

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/aredu/arcportal/core/message"
)

type messageRepository struct {
	db *messageTable
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *DB) message.Repository {
	return &messageRepository{db: db.message}
}

func (repo *messageRepository) query() []message.Message {
	msgs := make([]message.Message, 0, len(repo.db.table))
	for _, m := range repo.db.table {
		msgs = append(msgs, *m)
	}
	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Timestamp < msgs[j].Timestamp })
	return msgs
}

func (repo *messageRepository) CreateMessage(ctx context.Context, m message.Message) (message.Message, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	repo.db.table[m.ID] = &m
	return m, nil
}

func (repo *messageRepository) QueryAllMessages(ctx context.Context) ([]message.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.query(), nil
}

func (repo *messageRepository) QueryMessagesByParticipant(ctx context.Context, uid string) ([]message.Message, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var msgs []message.Message
	for _, m := range repo.query() {
		if m.SenderID == uid || m.ReceiverID == uid {
			msgs = append(msgs, m)
		}
	}
	return msgs, nil
}

func (repo *messageRepository) MarkMessageRead(ctx context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	m, ok := repo.db.table[id]
	if !ok {
		return errors.New("message not found")
	}
	m.Read = true
	return nil
}

func (repo *messageRepository) CountUnread(ctx context.Context, receiverID string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, m := range repo.db.table {
		if m.ReceiverID == receiverID && !m.Read {
			n++
		}
	}
	return n, nil
}
