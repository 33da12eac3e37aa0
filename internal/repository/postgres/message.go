package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lalith-99/campuslink/internal/models"
)

type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

// Create appends a message. The bigserial id orders messages that share a
// timestamp.
func (s *MessageStore) Create(ctx context.Context, m *models.Message) (*models.Message, error) {
	sql, args, err := psql.Insert("messages").
		Columns("thread_kind", "thread_id", "sender_id", "body").
		Values(string(m.Thread.Kind), m.Thread.ID, m.SenderID, m.Text).
		Suffix("RETURNING id, thread_kind, thread_id, sender_id, body, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert message: %w", err)
	}

	msg, err := scanMessage(s.pool.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

func (s *MessageStore) ListByThread(ctx context.Context, thread models.Thread) ([]models.Message, error) {
	sql, args, err := psql.Select("id", "thread_kind", "thread_id", "sender_id", "body", "created_at").
		From("messages").
		Where(squirrel.Eq{"thread_kind": string(thread.Kind), "thread_id": thread.ID}).
		OrderBy("created_at", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list messages: %w", err)
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var (
		msg  models.Message
		kind string
	)
	err := row.Scan(
		&msg.ID,
		&kind,
		&msg.Thread.ID,
		&msg.SenderID,
		&msg.Text,
		&msg.Timestamp,
	)
	if err != nil {
		return nil, err
	}
	msg.Thread.Kind = models.ThreadKind(kind)
	return &msg, nil
}
