package sqlite_test

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webbridge/internal/infrastructure/persistence/sqlite"
)

func TestLazyDB_NotInitializedByDefault(t *testing.T) {
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "test.db"))

	assert.False(t, lazy.IsInitialized())
	assert.NoError(t, lazy.Close(), "closing an unopened database is a no-op")
}

func TestLazyDB_InitializesOnce(t *testing.T) {
	ctx := testCtx()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "nested", "test.db"))

	const goroutines = 10
	dbs := make(chan any, goroutines)
	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			db, err := lazy.DB(ctx)
			assert.NoError(t, err)
			dbs <- db
		}()
	}
	wg.Wait()
	close(dbs)

	first := <-dbs
	require.NotNil(t, first)
	for db := range dbs {
		assert.Same(t, first, db)
	}
	assert.True(t, lazy.IsInitialized())

	require.NoError(t, lazy.Close())
	_, err := lazy.DB(ctx)
	assert.Error(t, err, "closed provider does not reopen")
}

func TestLazyDB_EmptyPath(t *testing.T) {
	lazy := sqlite.NewLazyDB("")

	_, err := lazy.DB(testCtx())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database path cannot be empty")
}
