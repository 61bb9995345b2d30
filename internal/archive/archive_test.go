package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"cthulhu/internal/game"
)

func TestRecordAndGet(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, filepath.Join(t.TempDir(), "archive", "matches.bolt"))
	require.NoError(t, err)
	defer a.Close(ctx)

	_, err = a.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)

	res := game.MatchResult{
		ID:              "m-1",
		RoomCode:        "WXYZ",
		Winner:          game.WinnerCultists,
		Rounds:          4,
		ElderSignsFound: 3,
		ElderSignsTotal: 5,
		FinishedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Players: []game.MatchPlayer{
			{Name: "Ann", Role: game.RoleCultist, Won: true},
			{Name: "Bot Bob", Role: game.RoleInvestigator, IsBot: true},
		},
		Log: []game.LogEntry{{Message: "Cthulhu has been revealed! The Cultists win!", Timestamp: 1}},
	}
	require.NoError(t, a.RecordMatch(ctx, res))
	require.NoError(t, a.RecordMatch(ctx, res))

	got, err := a.Get("m-1")
	require.NoError(t, err)
	assert.Equal(t, res, got)

	assert.Equal(t, 1, countMatches(t, a))
}

func countMatches(t *testing.T, a *Archive) int {
	t.Helper()
	var n int
	require.NoError(t, a.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(matchesBucket).Stats().KeyN
		return nil
	}))
	return n
}

func TestRecordRequiresID(t *testing.T) {
	ctx := context.Background()
	a, err := Open(ctx, filepath.Join(t.TempDir(), "matches.bolt"))
	require.NoError(t, err)
	defer a.Close(ctx)

	assert.Error(t, a.RecordMatch(ctx, game.MatchResult{}))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, a.RecordMatch(cancelled, game.MatchResult{ID: "x"}), context.Canceled)
}
