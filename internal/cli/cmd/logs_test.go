package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webbridge/internal/cli/styles"
	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/logging"
)

type fakeSessionLister struct {
	items []entity.SessionSummary
	err   error
}

func (f *fakeSessionLister) Recent(_ context.Context, _ int) ([]entity.SessionSummary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func summary(id string, started time.Time) entity.SessionSummary {
	return entity.SessionSummary{Session: entity.Session{ID: entity.SessionID(id), StartedAt: started}}
}

func TestLogSessions_MergesRecordedAndFiles(t *testing.T) {
	logDir := t.TempDir()

	s1 := summary("20261016_120000_a7b3", time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC))
	s2 := summary("20261016_130000_bbbb", time.Date(2026, 10, 16, 13, 0, 0, 0, time.UTC))

	require.NoError(t, os.WriteFile(logging.SessionLogPath(logDir, string(s1.Session.ID)), []byte("hi\n"), 0o600))
	require.NoError(t, os.WriteFile(logging.SessionLogPath(logDir, "legacy_only"), []byte("legacy\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(logDir, "unrelated.txt"), []byte("x"), 0o600))

	merged, err := logSessions(context.Background(), &fakeSessionLister{items: []entity.SessionSummary{s1, s2}}, logDir)
	require.NoError(t, err)
	require.Len(t, merged, 3)

	byID := map[string]LogSession{}
	for _, s := range merged {
		byID[s.SessionID] = s
	}
	assert.True(t, byID[string(s1.Session.ID)].FromDB)
	assert.Equal(t, int64(3), byID[string(s1.Session.ID)].Size)
	assert.True(t, byID[string(s2.Session.ID)].FromDB)
	assert.False(t, byID["legacy_only"].FromDB)
}

func TestLogSessions_StoreError(t *testing.T) {
	_, err := logSessions(context.Background(), &fakeSessionLister{err: errors.New("locked")}, t.TempDir())
	require.ErrorContains(t, err, "locked")
}

func TestLogSessions_MissingDir(t *testing.T) {
	sessions, err := logSessions(context.Background(), nil, filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestFindLogSession(t *testing.T) {
	sessions := []LogSession{
		{SessionID: "20261016_120000_a7b3", ShortID: "a7b3"},
		{SessionID: "20261016_130000_bbbb", ShortID: "bbbb"},
	}

	s, err := findLogSession(sessions, "A7B3")
	require.NoError(t, err)
	assert.Equal(t, "20261016_120000_a7b3", s.SessionID)

	s, err = findLogSession(sessions, "130000")
	require.NoError(t, err)
	assert.Equal(t, "bbbb", s.ShortID)

	_, err = findLogSession(sessions, "20261016")
	require.ErrorContains(t, err, "multiple sessions")

	_, err = findLogSession(sessions, "zzzz")
	require.ErrorContains(t, err, "no session matching")

	_, err = findLogSession(nil, "a7b3")
	require.Error(t, err)
}

func TestTailLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log")
	require.NoError(t, os.WriteFile(path, []byte("1\n2\n3\n4\n"), 0o600))

	lines, err := tailLines(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "4"}, lines)

	lines, err = tailLines(path, 0)
	require.NoError(t, err)
	assert.Len(t, lines, 4)
}

func TestFollowLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log")
	require.NoError(t, os.WriteFile(path, []byte("old\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines := make(chan string, 4)
	done := make(chan error, 1)
	go func() {
		done <- followLog(ctx, path, func(line string) { lines <- line })
	}()

	// Give the watcher time to register before appending.
	time.Sleep(100 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("new line\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case line := <-lines:
		assert.Equal(t, "new line", line)
	case <-time.After(5 * time.Second):
		t.Fatal("appended line was not followed")
	}

	cancel()
	require.NoError(t, <-done)
}

func TestColorizeLogLine(t *testing.T) {
	theme := styles.NewTheme()

	out := colorizeLogLine(`{"level":"info","time":"2026-10-16T12:00:00Z","message":"hello","component":"bridge"}`, theme)
	assert.Contains(t, out, "INF")
	assert.Contains(t, out, "bridge:")
	assert.Contains(t, out, "hello")

	assert.Equal(t, "plain", colorizeLogLine("plain", theme))
	assert.Contains(t, colorizeLogLine("12:00:00 ERR broken", theme), "broken")
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.5 KB", formatSize(1536))
	assert.Equal(t, "2.0 MB", formatSize(2*1024*1024))
}
