package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/efreeman/hitler-xl/api/internal/model"
)

// ActionLogRepo persists the append-only action log for each game.
type ActionLogRepo struct {
	db *sql.DB
}

// NewActionLogRepo creates an ActionLogRepo.
func NewActionLogRepo(db *sql.DB) *ActionLogRepo {
	return &ActionLogRepo{db: db}
}

// AppendAction inserts the next sequence entry for a game.
func (r *ActionLogRepo) AppendAction(ctx context.Context, gameID string, actor int, operation string, payload, stateAfter json.RawMessage) (*model.ActionLog, error) {
	var a model.ActionLog
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO action_log (game_id, sequence, actor, operation, payload, state_after)
		 VALUES ($1, COALESCE((SELECT MAX(sequence) + 1 FROM action_log WHERE game_id = $1), 0), $2, $3, $4, $5)
		 RETURNING id, game_id, sequence, actor, operation, payload, state_after, created_at`,
		gameID, actor, operation, payload, stateAfter,
	).Scan(&a.ID, &a.GameID, &a.Sequence, &a.Actor, &a.Operation, &a.Payload, &a.StateAfter, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append action: %w", err)
	}
	return &a, nil
}

// LatestSnapshot returns the StateAfter of the most recent action for a game.
func (r *ActionLogRepo) LatestSnapshot(ctx context.Context, gameID string) (json.RawMessage, error) {
	var state json.RawMessage
	err := r.db.QueryRowContext(ctx,
		`SELECT state_after FROM action_log WHERE game_id = $1 ORDER BY sequence DESC LIMIT 1`, gameID,
	).Scan(&state)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return state, nil
}

// ListActions returns the full action history for a game in sequence order.
func (r *ActionLogRepo) ListActions(ctx context.Context, gameID string) ([]model.ActionLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, game_id, sequence, actor, operation, payload, state_after, created_at
		 FROM action_log WHERE game_id = $1 ORDER BY sequence`, gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var actions []model.ActionLog
	for rows.Next() {
		var a model.ActionLog
		var payload sql.NullString
		if err := rows.Scan(&a.ID, &a.GameID, &a.Sequence, &a.Actor, &a.Operation, &payload, &a.StateAfter, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		if payload.Valid {
			a.Payload = json.RawMessage(payload.String)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// ListExpired returns IDs of active games whose last action is older than olderThan.
func (r *ActionLogRepo) ListExpired(ctx context.Context, olderThan time.Duration) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT DISTINCT ON (a.game_id) a.game_id, a.created_at
		 FROM action_log a
		 JOIN games g ON g.id = a.game_id
		 WHERE g.status = 'active'
		 ORDER BY a.game_id, a.sequence DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expired candidates: %w", err)
	}
	defer rows.Close()

	cutoff := time.Now().Add(-olderThan)
	var expired []string
	for rows.Next() {
		var gameID string
		var last time.Time
		if err := rows.Scan(&gameID, &last); err != nil {
			return nil, fmt.Errorf("scan expired candidate: %w", err)
		}
		if last.Before(cutoff) {
			expired = append(expired, gameID)
		}
	}
	return expired, rows.Err()
}
