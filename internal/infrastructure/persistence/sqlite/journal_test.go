package sqlite_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/infrastructure/persistence/sqlite"
	"github.com/bnema/webbridge/internal/logging"
)

func testCtx() context.Context {
	logger := logging.NewFromConfigValues("debug", "console")
	return logging.WithContext(context.Background(), logger)
}

func openTestDB(t *testing.T) *sqlite.LazyDB {
	t.Helper()
	lazy := sqlite.NewLazyDB(filepath.Join(t.TempDir(), "journal.sqlite"))
	t.Cleanup(func() { _ = lazy.Close() })
	return lazy
}

func callRecord(i int, status entity.InvocationStatus) entity.CallRecord {
	return entity.CallRecord{
		SessionID:  "20261016_120000_abcd",
		ViewID:     1,
		CallbackID: entity.CallbackID(i),
		Function:   fmt.Sprintf("fn%d", i),
		Mode:       entity.InvocationAsync,
		Status:     status,
		Duration:   time.Duration(i) * time.Millisecond,
		CreatedAt:  time.Date(2026, 10, 16, 12, 0, i, 0, time.UTC),
	}
}

func TestConnection_MigratesOnce(t *testing.T) {
	ctx := testCtx()
	path := filepath.Join(t.TempDir(), "journal.sqlite")

	db, err := sqlite.NewConnection(ctx, path)
	require.NoError(t, err)
	version, err := sqlite.GetMigrationStatus(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	require.NoError(t, db.Close())

	db, err = sqlite.NewConnection(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	version, err = sqlite.GetMigrationStatus(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestJournal_RecordAndRecent(t *testing.T) {
	ctx := testCtx()
	lazy := openTestDB(t)
	journal := sqlite.NewJournal(ctx, lazy, sqlite.JournalOptions{})

	journal.Record(ctx, callRecord(1, entity.StatusOK))
	failed := callRecord(2, entity.StatusCallableFailed)
	failed.Error = "boom"
	journal.Record(ctx, failed)
	require.NoError(t, journal.Close())

	records, err := journal.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "fn2", records[0].Function, "newest first")
	assert.Equal(t, entity.StatusCallableFailed, records[0].Status)
	assert.Equal(t, "boom", records[0].Error)
	assert.Equal(t, entity.CallbackID(2), records[0].CallbackID)
	assert.Equal(t, 2*time.Millisecond, records[0].Duration)
	assert.True(t, records[0].CreatedAt.Equal(failed.CreatedAt))
	assert.Equal(t, entity.InvocationAsync, records[1].Mode)
	assert.Equal(t, entity.SessionID("20261016_120000_abcd"), records[1].SessionID)
}

func TestJournal_RecordAfterCloseIsIgnored(t *testing.T) {
	ctx := testCtx()
	journal := sqlite.NewJournal(ctx, openTestDB(t), sqlite.JournalOptions{})
	require.NoError(t, journal.Close())
	require.NoError(t, journal.Close())

	journal.Record(ctx, callRecord(1, entity.StatusOK))

	records, err := journal.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestJournal_FillsCreatedAt(t *testing.T) {
	ctx := testCtx()
	journal := sqlite.NewJournal(ctx, openTestDB(t), sqlite.JournalOptions{})

	before := time.Now().Add(-time.Second)
	rec := callRecord(1, entity.StatusOK)
	rec.CreatedAt = time.Time{}
	journal.Record(ctx, rec)
	require.NoError(t, journal.Close())

	records, err := journal.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].CreatedAt.After(before))
}

func TestJournal_Prune(t *testing.T) {
	ctx := testCtx()
	journal := sqlite.NewJournal(ctx, openTestDB(t), sqlite.JournalOptions{Buffer: 64})
	for i := range 20 {
		journal.Record(ctx, callRecord(i, entity.StatusOK))
	}
	require.NoError(t, journal.Close())

	deleted, err := journal.Prune(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(15), deleted)

	records, err := journal.Recent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, "fn19", records[0].Function)
	assert.Equal(t, "fn15", records[4].Function)

	deleted, err = journal.Prune(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestJournal_AutoPrune(t *testing.T) {
	ctx := testCtx()
	journal := sqlite.NewJournal(ctx, openTestDB(t), sqlite.JournalOptions{Buffer: 1000, MaxEntries: 10})
	for i := range 600 {
		journal.Record(ctx, callRecord(i, entity.StatusOK))
	}
	require.NoError(t, journal.Close())
	require.Zero(t, journal.Dropped())

	records, err := journal.Recent(ctx, 1000)
	require.NoError(t, err)
	// Pruning runs every 500 writes, so the tail written after it survives.
	assert.Less(t, len(records), 600)
	assert.GreaterOrEqual(t, len(records), 10)
	assert.Equal(t, "fn599", records[0].Function)
}

func TestJournal_RecentForSession(t *testing.T) {
	ctx := testCtx()
	journal := sqlite.NewJournal(ctx, openTestDB(t), sqlite.JournalOptions{})

	journal.Record(ctx, callRecord(1, entity.StatusOK))
	other := callRecord(2, entity.StatusOK)
	other.SessionID = "20261016_130000_ffff"
	journal.Record(ctx, other)
	require.NoError(t, journal.Close())

	records, err := journal.RecentForSession(ctx, "20261016_130000_ffff", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fn2", records[0].Function)
}
