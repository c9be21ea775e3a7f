package sqlite_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webbridge/internal/domain/entity"
	"github.com/bnema/webbridge/internal/infrastructure/persistence/sqlite"
)

func TestSessionRepository_SaveEndRecent(t *testing.T) {
	ctx := testCtx()
	lazy := openTestDB(t)
	repo := sqlite.NewSessionRepository(lazy)

	startedAt := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	s := &entity.Session{ID: "20261016_120000_abcd", StartedAt: startedAt}
	require.NoError(t, repo.Save(ctx, s))

	newer := &entity.Session{ID: "20261016_130000_ffff", StartedAt: startedAt.Add(time.Hour)}
	require.NoError(t, repo.Save(ctx, newer))

	journal := sqlite.NewJournal(ctx, lazy, sqlite.JournalOptions{})
	journal.Record(ctx, callRecord(1, entity.StatusOK))
	journal.Record(ctx, callRecord(2, entity.StatusNotFound))
	journal.Record(ctx, callRecord(3, entity.StatusOK))
	require.NoError(t, journal.Close())

	endedAt := startedAt.Add(30 * time.Minute)
	require.NoError(t, repo.MarkEnded(ctx, s.ID, endedAt))

	summaries, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, newer.ID, summaries[0].Session.ID, "newest first")
	assert.True(t, summaries[0].Session.IsActive())
	assert.Zero(t, summaries[0].Calls)

	got := summaries[1]
	assert.Equal(t, s.ID, got.Session.ID)
	assert.True(t, got.Session.StartedAt.Equal(startedAt))
	require.NotNil(t, got.Session.EndedAt)
	assert.True(t, got.Session.EndedAt.Equal(endedAt))
	assert.Equal(t, 3, got.Calls)
	assert.Equal(t, 1, got.Failures)
}

func TestSessionRepository_RejectsInvalid(t *testing.T) {
	repo := sqlite.NewSessionRepository(openTestDB(t))

	err := repo.Save(testCtx(), &entity.Session{ID: "x"})
	assert.ErrorIs(t, err, entity.ErrInvalidSession)
}
