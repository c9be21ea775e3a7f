package port

import (
	"context"
	"time"

	"github.com/bnema/webbridge/internal/domain/entity"
)

// SessionStore persists host runs.
type SessionStore interface {
	Save(ctx context.Context, session *entity.Session) error
	MarkEnded(ctx context.Context, id entity.SessionID, endedAt time.Time) error
	Recent(ctx context.Context, limit int) ([]entity.SessionSummary, error)
}
