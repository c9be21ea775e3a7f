package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatch_ReloadsAndNotifies(t *testing.T) {
	root := isolate(t)
	dir := filepath.Join(root, "cfg")

	mgr, err := NewManager(WithConfigDir(dir))
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	var latest atomic.Pointer[Config]
	mgr.OnConfigChange(func(c *Config) { latest.Store(c) })
	require.NoError(t, mgr.Watch())
	require.NoError(t, mgr.Watch(), "second Watch is a no-op")

	cfg := mgr.Get()
	cfg.Workers.MaxWorkers = 3
	require.NoError(t, WriteConfigOrdered(cfg, mgr.ConfigFile()))

	require.Eventually(t, func() bool {
		c := latest.Load()
		return c != nil && c.Workers.MaxWorkers == 3
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 3, mgr.Get().Workers.MaxWorkers)
}

func TestReload_KeepsPreviousOnInvalidEdit(t *testing.T) {
	root := isolate(t)
	dir := filepath.Join(root, "cfg")

	mgr, err := NewManager(WithConfigDir(dir))
	require.NoError(t, err)
	require.NoError(t, mgr.Load())

	require.NoError(t, os.WriteFile(mgr.ConfigFile(), []byte("[workers]\nmax_workers = -1\n"), filePerm))

	mgr.mu.Lock()
	err = mgr.reload()
	mgr.mu.Unlock()

	require.Error(t, err)
	assert.Equal(t, 20, mgr.Get().Workers.MaxWorkers)
}
