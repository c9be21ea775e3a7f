package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bnema/webbridge/internal/application/port"
	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/logging"
)

const defaultSessionsLimit = 20

var _ port.SessionStore = (*SessionRepository)(nil)

// SessionRepository stores host runs next to the call journal.
type SessionRepository struct {
	provider DBProvider
}

// NewSessionRepository creates a SQLite-backed session store.
func NewSessionRepository(provider DBProvider) *SessionRepository {
	return &SessionRepository{provider: provider}
}

// Save inserts or replaces session.
func (r *SessionRepository) Save(ctx context.Context, session *entity.Session) error {
	if err := session.Validate(); err != nil {
		return err
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Debug().Str("session", string(session.ID)).Msg("saving session")

	var endedAt sql.NullInt64
	if session.EndedAt != nil {
		endedAt = sql.NullInt64{Int64: session.EndedAt.UTC().UnixNano(), Valid: true}
	}
	_, err = db.ExecContext(ctx, `INSERT INTO sessions (id, started_at, ended_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET started_at = excluded.started_at, ended_at = excluded.ended_at`,
		string(session.ID), session.StartedAt.UTC().UnixNano(), endedAt)
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

// MarkEnded records the end of a session.
func (r *SessionRepository) MarkEnded(ctx context.Context, id entity.SessionID, endedAt time.Time) error {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `UPDATE sessions SET ended_at = ? WHERE id = ?`,
		endedAt.UTC().UnixNano(), string(id)); err != nil {
		return fmt.Errorf("end session %s: %w", id, err)
	}
	return nil
}

// Recent lists the newest sessions with their call and failure counts.
func (r *SessionRepository) Recent(ctx context.Context, limit int) ([]entity.SessionSummary, error) {
	if limit <= 0 {
		limit = defaultSessionsLimit
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT s.id, s.started_at, s.ended_at,
			COUNT(c.id),
			COALESCE(SUM(CASE WHEN c.status != 'ok' THEN 1 ELSE 0 END), 0)
		FROM sessions s
		LEFT JOIN calls c ON c.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	summaries := make([]entity.SessionSummary, 0)
	for rows.Next() {
		var (
			id        string
			startedAt int64
			endedAt   sql.NullInt64
			summary   entity.SessionSummary
		)
		if err := rows.Scan(&id, &startedAt, &endedAt, &summary.Calls, &summary.Failures); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		summary.Session = entity.Session{
			ID:        entity.SessionID(id),
			StartedAt: time.Unix(0, startedAt).UTC(),
		}
		if endedAt.Valid {
			summary.Session.End(time.Unix(0, endedAt.Int64))
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}
