package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/efreeman/hitler-xl/api/internal/model"
)

// MessageRepo handles message database operations.
type MessageRepo struct {
	db *sql.DB
}

// NewMessageRepo creates a MessageRepo.
func NewMessageRepo(db *sql.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Create inserts a new message. RecipientID may be empty for public broadcasts.
func (r *MessageRepo) Create(ctx context.Context, gameID, senderID, recipientID, content string) (*model.Message, error) {
	var m model.Message
	var recip sql.NullString
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO messages (game_id, sender_id, recipient_id, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, game_id, sender_id, recipient_id, content, created_at`,
		gameID, senderID, nullStr(recipientID), content,
	).Scan(&m.ID, &m.GameID, &m.SenderID, &recip, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	m.RecipientID = recip.String
	return &m, nil
}

// ListByGame returns messages visible to a user in a game.
// A user can see public messages (no recipient) and private messages sent to/from them.
func (r *MessageRepo) ListByGame(ctx context.Context, gameID, userID string) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, sender_id, COALESCE(recipient_id::text, ''), content, created_at
		 FROM messages
		 WHERE game_id = $1 AND (recipient_id IS NULL OR sender_id = $2 OR recipient_id = $2)
		 ORDER BY created_at`, gameID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.GameID, &m.SenderID, &m.RecipientID, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
