package logging

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionID = "20261016_120000_abcd"

var chunk = bytes.Repeat([]byte("x"), 600*1024)

func writeChunks(t *testing.T, l *SessionLog, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := l.Write(chunk)
		require.NoError(t, err)
	}
}

func TestSessionLog_RotatesIntoNumberedSegments(t *testing.T) {
	dir := t.TempDir()
	l, err := OpenSessionLog(dir, testSessionID, RotationConfig{MaxSizeMB: 1, Compress: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	writeChunks(t, l, 3)

	segments, err := l.Segments()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "session_"+testSessionID+".log.1.gz"),
		filepath.Join(dir, "session_"+testSessionID+".log.2.gz"),
	}, segments)

	f, err := os.Open(segments[0])
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Len(t, data, len(chunk))

	info, err := os.Stat(l.Path())
	require.NoError(t, err)
	assert.Equal(t, int64(len(chunk)), info.Size())
}

func TestSessionLog_KeepsNewestSegments(t *testing.T) {
	dir := t.TempDir()
	l, err := OpenSessionLog(dir, testSessionID, RotationConfig{MaxSizeMB: 1, MaxBackups: 2})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	writeChunks(t, l, 5)

	segments, err := l.Segments()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, SegmentFilename(testSessionID, 3)),
		filepath.Join(dir, SegmentFilename(testSessionID, 4)),
	}, segments)
}

func TestSessionLog_ContinuesNumberingAfterReopen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, SegmentFilename(testSessionID, 4)+".gz"), nil, 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, SegmentFilename("20261016_120000_ffff", 9)), nil, 0o600))

	l, err := OpenSessionLog(dir, testSessionID, RotationConfig{MaxSizeMB: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	writeChunks(t, l, 2)

	_, err = os.Stat(filepath.Join(dir, SegmentFilename(testSessionID, 5)))
	assert.NoError(t, err, "new segment follows the highest one on disk")
}

func TestSessionLog_ReopensAfterClose(t *testing.T) {
	dir := t.TempDir()
	l, err := OpenSessionLog(dir, testSessionID, RotationConfig{})
	require.NoError(t, err)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	_, err = l.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, l.Close())

	data, err := os.ReadFile(SessionLogPath(dir, testSessionID))
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))

	_, err = OpenSessionLog(dir, "", RotationConfig{})
	assert.Error(t, err)
}

func TestParseSegmentFilename(t *testing.T) {
	tests := []struct {
		name string
		id   string
		n    int
		ok   bool
	}{
		{name: "session_" + testSessionID + ".log.1", id: testSessionID, n: 1, ok: true},
		{name: "session_" + testSessionID + ".log.12.gz", id: testSessionID, n: 12, ok: true},
		{name: "session_" + testSessionID + ".log"},
		{name: "session_" + testSessionID + ".log.0"},
		{name: "session_" + testSessionID + ".log.x.gz"},
		{name: "other.log.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, n, ok := ParseSegmentFilename(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.n, n)
		})
	}
}

func TestPruneSessionLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	old := now.Add(-30 * 24 * time.Hour)

	const (
		stale  = "20260101_000000_0001"
		recent = "20260101_000000_0002"
		active = "20260101_000000_0003"
	)
	touch := func(name string, mtime time.Time) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o600))
		require.NoError(t, os.Chtimes(p, mtime, mtime))
		return p
	}
	staleFiles := []string{
		touch(SessionFilename(stale), old),
		touch(SegmentFilename(stale, 1)+".gz", old),
	}
	// one fresh segment keeps the whole session
	touch(SessionFilename(recent), old)
	touch(SegmentFilename(recent, 1), now)
	touch(SessionFilename(active), old)
	unrelated := touch("notes.txt", old)

	removed, err := PruneSessionLogs(dir, active, 14*24*time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	for _, p := range staleFiles {
		assert.NoFileExists(t, p)
	}
	assert.FileExists(t, filepath.Join(dir, SessionFilename(recent)))
	assert.FileExists(t, filepath.Join(dir, SessionFilename(active)))
	assert.FileExists(t, unrelated)

	removed, err = PruneSessionLogs(dir, active, 0, now)
	require.NoError(t, err)
	assert.Zero(t, removed, "zero max age keeps everything")

	removed, err = PruneSessionLogs(filepath.Join(dir, "missing"), active, time.Hour, now)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
