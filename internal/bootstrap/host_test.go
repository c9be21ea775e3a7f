package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webbridge/internal/infrastructure/config"
	"github.com/bnema/webbridge/internal/infrastructure/metrics"
	"github.com/bnema/webbridge/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/webbridge/internal/logging"
)

const demoScript = `
webbridge.invoke('add', {a: 2, b: 3}).then(function (sum) {
  if (sum !== 5) { webbridge.quit(2); return; }
  return webbridge.invoke('fail', {message: 'nope'});
}).then(function () {
  webbridge.quit(3);
}, function (e) {
  webbridge.quit(e.code === 'callable_failed' && e.message === 'nope' ? 7 : 4);
});
`

func testCtx() context.Context {
	return logging.WithContext(context.Background(), logging.NewFromConfigValues("debug", "console"))
}

func writeScript(t *testing.T, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.js")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o600))
	return path
}

func newTestHost(t *testing.T, opts HostOptions) *Host {
	t.Helper()
	h, err := NewHost(testCtx(), opts)
	require.NoError(t, err)
	require.NoError(t, RegisterDemoBindings(h.View()))
	return h
}

func TestHost_RunUntilQuit(t *testing.T) {
	ctx := testCtx()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "journal.sqlite"))
	t.Cleanup(func() { _ = lazy.Close() })
	journal := sqlite.NewJournal(ctx, lazy, sqlite.JournalOptions{})
	m := metrics.New()

	h := newTestHost(t, HostOptions{SessionID: "20261016_120000_abcd", Journal: journal, Metrics: m})

	runCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	code, err := h.Run(runCtx, writeScript(t, demoScript))
	require.NoError(t, err)
	assert.Equal(t, 7, code)

	require.NoError(t, h.Shutdown(ctx))
	require.NoError(t, journal.Close())

	records, err := journal.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "fail", records[0].Function)
	assert.Equal(t, "add", records[1].Function)
	assert.Equal(t, "20261016_120000_abcd", string(records[1].SessionID))
}

func TestHost_RunEndsWithContext(t *testing.T) {
	h := newTestHost(t, HostOptions{})
	t.Cleanup(func() { _ = h.Shutdown(context.Background()) })

	ctx, cancel := context.WithTimeout(testCtx(), 50*time.Millisecond)
	defer cancel()
	code, err := h.Run(ctx, "about:blank")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, code)
}

func TestHost_RunMissingScript(t *testing.T) {
	h := newTestHost(t, HostOptions{})
	t.Cleanup(func() { _ = h.Shutdown(context.Background()) })

	code, err := h.Run(testCtx(), filepath.Join(t.TempDir(), "missing.js"))
	assert.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestHost_InjectScriptsAndApplyConfig(t *testing.T) {
	inject := writeScript(t, "var injected = 'yes';")
	cfg := config.DefaultConfig()
	cfg.Engine.InjectScripts = []string{inject}
	cfg.Workers.MaxWorkers = 2

	h := newTestHost(t, HostOptions{Config: cfg})
	t.Cleanup(func() { _ = h.Shutdown(context.Background()) })

	ctx, cancel := context.WithTimeout(testCtx(), 200*time.Millisecond)
	defer cancel()
	_, _ = h.Run(ctx, "about:blank")

	got, err := h.View().RunJavaScript(testCtx(), "injected")
	require.NoError(t, err)
	assert.Equal(t, "yes", got)

	assert.Equal(t, 2, h.PoolStats().MaxWorkers)
	cfg.Workers.MaxWorkers = 9
	h.ApplyConfig(cfg)
	assert.Equal(t, 9, h.PoolStats().MaxWorkers)
}

func TestNewHost_MissingInjectScript(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Engine.InjectScripts = []string{filepath.Join(t.TempDir(), "nope.js")}

	_, err := NewHost(testCtx(), HostOptions{Config: cfg})
	assert.ErrorContains(t, err, "read inject script")
}

func TestResolveTarget(t *testing.T) {
	script := writeScript(t, "1")

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "about:blank"},
		{in: "about:blank", want: "about:blank"},
		{in: "data:text/javascript,1", want: "data:text/javascript,1"},
		{in: "file:///tmp/x.js", want: "file:///tmp/x.js"},
		{in: script, want: "file://" + script},
		{in: "/does/not/exist.js", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ResolveTarget(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
