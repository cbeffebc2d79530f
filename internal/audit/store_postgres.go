package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore persists the status-change trail.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const Schema = `
CREATE TABLE IF NOT EXISTS status_changes (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	at          TIMESTAMPTZ NOT NULL,
	from_status TEXT NOT NULL,
	to_status   TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	actor       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS status_changes_user_idx ON status_changes (user_id, at);
`

func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure audit schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, change StatusChange) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO status_changes (id, user_id, at, from_status, to_status, reason, actor)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		change.ID, change.UserID, change.At, change.From, change.To, change.Reason, change.Actor)
	if err != nil {
		return fmt.Errorf("append status change: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]StatusChange, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, at, from_status, to_status, reason, actor
		FROM status_changes WHERE user_id = $1 ORDER BY at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	defer rows.Close()

	var out []StatusChange
	for rows.Next() {
		var c StatusChange
		if err := rows.Scan(&c.ID, &c.UserID, &c.At, &c.From, &c.To, &c.Reason, &c.Actor); err != nil {
			return nil, fmt.Errorf("scan status change: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status changes: %w", err)
	}
	return out, nil
}
