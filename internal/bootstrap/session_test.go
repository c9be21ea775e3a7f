package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/infrastructure/config"
	"github.com/bnema/webbridge/internal/logging"
)

type memorySessionStore struct {
	saved []entity.Session
	ended map[entity.SessionID]time.Time
}

func (s *memorySessionStore) Save(_ context.Context, session *entity.Session) error {
	s.saved = append(s.saved, *session)
	return nil
}

func (s *memorySessionStore) MarkEnded(_ context.Context, id entity.SessionID, endedAt time.Time) error {
	if s.ended == nil {
		s.ended = make(map[entity.SessionID]time.Time)
	}
	s.ended[id] = endedAt
	return nil
}

func (s *memorySessionStore) Recent(context.Context, int) ([]entity.SessionSummary, error) {
	return nil, nil
}

func TestStartSession(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.EnableFileLog = true
	cfg.Logging.LogDir = t.TempDir()
	store := &memorySessionStore{}

	hs, ctx, err := StartSession(testCtx(), cfg, store)
	require.NoError(t, err)
	require.NotNil(t, logging.FromContext(ctx))

	require.Len(t, store.saved, 1)
	assert.Equal(t, hs.Session.ID, store.saved[0].ID)
	assert.True(t, hs.Session.IsActive())

	require.NoError(t, hs.End(ctx))
	require.NoError(t, hs.End(ctx), "second End is a no-op")
	assert.False(t, hs.Session.IsActive())
	assert.Contains(t, store.ended, hs.Session.ID)

	_, err = os.Stat(logging.SessionLogPath(cfg.Logging.LogDir, string(hs.Session.ID)))
	assert.NoError(t, err)
}

func TestStartSession_WithoutStore(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.LogDir = filepath.Join(t.TempDir(), "unused")

	hs, ctx, err := StartSession(testCtx(), cfg, nil)
	require.NoError(t, err)
	assert.NoError(t, hs.End(ctx))
}

func TestStartupTimer(t *testing.T) {
	timer := NewStartupTimer()
	time.Sleep(2 * time.Millisecond)
	timer.Mark("a")
	timer.Mark("b")

	phases := timer.Phases()
	assert.GreaterOrEqual(t, phases["a"], 2*time.Millisecond)
	assert.Contains(t, phases, "b")
	assert.GreaterOrEqual(t, timer.Total(), phases["a"])
	timer.Log(testCtx())
}
