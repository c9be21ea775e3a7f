package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/infrastructure/config"
)

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 7, exitCode(&ExitCodeError{Code: 7}))
	assert.Equal(t, 3, exitCode(fmt.Errorf("wrapped: %w", &ExitCodeError{Code: 3})))
	assert.Equal(t, 1, exitCode(errors.New("boom")))
}

func TestMetricsAddress(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Metrics.Enabled = false

	_, ok := metricsAddress(cfg, "")
	assert.False(t, ok)

	addr, ok := metricsAddress(cfg, "127.0.0.1:9999")
	assert.True(t, ok)
	assert.Equal(t, "127.0.0.1:9999", addr)

	cfg.Metrics.Enabled = true
	addr, ok = metricsAddress(cfg, "")
	assert.True(t, ok)
	assert.Equal(t, cfg.Metrics.ListenAddress, addr)
}

func TestResolveSessionID(t *testing.T) {
	now := time.Now()
	lister := &fakeSessionLister{items: []entity.SessionSummary{
		summary("20261016_120000_a7b3", now),
		summary("20261016_130000_bbbb", now),
	}}
	ctx := context.Background()

	id, err := resolveSessionID(ctx, lister, "")
	require.NoError(t, err)
	assert.Empty(t, id)

	id, err = resolveSessionID(ctx, lister, "a7b3")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionID("20261016_120000_a7b3"), id)

	id, err = resolveSessionID(ctx, lister, "130000")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionID("20261016_130000_bbbb"), id)

	_, err = resolveSessionID(ctx, lister, "20261016")
	require.ErrorContains(t, err, "multiple sessions")

	_, err = resolveSessionID(ctx, lister, "nope")
	require.ErrorContains(t, err, "no session matching")

	id, err = resolveSessionID(ctx, nil, "raw")
	require.NoError(t, err)
	assert.Equal(t, entity.SessionID("raw"), id)
}

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"run"}, {"calls"}, {"calls", "prune"}, {"sessions"}, {"logs"}, {"about"},
		{"config", "show"}, {"config", "path"}, {"config", "schema"}, {"config", "init"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}
