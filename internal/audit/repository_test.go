package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/netclock/internal/infrastructure/database"
	_ "github.com/nerrad567/netclock/migrations"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{
		Path:        filepath.Join(t.TempDir(), "audit.db"),
		WALMode:     true,
		BusyTimeout: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup
	require.NoError(t, db.Migrate(ctx))

	repo := NewSQLiteRepository(db.DB)
	base := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	n := 0
	repo.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return repo
}

func TestRecord_FillsDefaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	e := &Entry{Action: ActionCommand, Subject: "UTCOFFSET", Outcome: OutcomeApplied,
		Source: SourceMQTT, Details: map[string]any{"value": -18000}}
	require.NoError(t, repo.Record(ctx, e))

	assert.Regexp(t, `^aud-[0-9a-f]{8}$`, e.ID)
	assert.False(t, e.CreatedAt.IsZero())

	res, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	got := res.Entries[0]
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, "UTCOFFSET", got.Subject)
	assert.Equal(t, SourceMQTT, got.Source)
	// JSON numbers come back as float64.
	assert.Equal(t, float64(-18000), got.Details["value"])
	assert.True(t, e.CreatedAt.Equal(got.CreatedAt))
}

func TestRecord_DefaultSourceIsLocal(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, &Entry{Action: ActionLink, Subject: "session_up", Outcome: OutcomeChanged}))

	res, err := repo.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, SourceLocal, res.Entries[0].Source)
	assert.Nil(t, res.Entries[0].Details)
}

func TestRecord_Invalid(t *testing.T) {
	repo := newTestRepo(t)
	err := repo.Record(context.Background(), &Entry{Action: ActionCommand})
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestList_FilterAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, e := range []*Entry{
		{Action: ActionCommand, Subject: "TIME24", Outcome: OutcomeApplied},
		{Action: ActionLink, Subject: "associated", Outcome: OutcomeChanged},
		{Action: ActionCommand, Subject: "UTCOFFSET", Outcome: OutcomeApplied},
		{Action: ActionCommand, Subject: "UTCOFFSET", Outcome: OutcomePersistFailed},
	} {
		require.NoError(t, repo.Record(ctx, e))
	}

	res, err := repo.List(ctx, Filter{Action: ActionCommand})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Entries, 3)
	assert.Equal(t, OutcomePersistFailed, res.Entries[0].Outcome)
	assert.Equal(t, "TIME24", res.Entries[2].Subject)

	res, err = repo.List(ctx, Filter{Action: ActionCommand, Subject: "UTCOFFSET"})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
}

func TestList_Pagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Record(ctx, &Entry{Action: ActionSurvey, Subject: "SURVEY", Outcome: OutcomeCompleted}))
	}

	res, err := repo.List(ctx, Filter{Limit: 2, Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	assert.Len(t, res.Entries, 1)
	assert.Equal(t, 2, res.Limit)

	res, err = repo.List(ctx, Filter{Limit: 1000, Offset: -3})
	require.NoError(t, err)
	assert.Equal(t, maxLimit, res.Limit)
	assert.Equal(t, 0, res.Offset)
	assert.Len(t, res.Entries, 5)
}

func TestList_Empty(t *testing.T) {
	repo := newTestRepo(t)
	res, err := repo.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.NotNil(t, res.Entries)
	assert.Empty(t, res.Entries)
	assert.Equal(t, defaultLimit, res.Limit)
}
