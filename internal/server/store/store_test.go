package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cthulhu/internal/cache"
	"cthulhu/internal/game"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	c, err := cache.NewLRU(16)
	require.NoError(t, err)
	s, err := New(filepath.Join(t.TempDir(), "nested", "test.db"), c)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateUser("  ", "secret1")
	assert.Error(t, err)
	_, err = s.CreateUser("ann", "123")
	assert.Error(t, err)

	user, err := s.CreateUser(" ann ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Username)

	_, err = s.CreateUser("ANN", "secret2")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = s.Authenticate("ann", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Authenticate("nobody", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	authed, err := s.Authenticate("ann", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authed.ID)

	token, err := s.CreateSession(user.ID, time.Hour)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	byToken, err := s.GetUserBySession(token)
	require.NoError(t, err)
	assert.Equal(t, "ann", byToken.Username)

	_, err = s.GetUserBySession("nope")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	user, err := s.CreateUser("bob", "secret1")
	require.NoError(t, err)

	token, err := s.CreateSession(user.ID, time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	_, err = s.GetUserBySession(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	n, err := s.CleanupExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func sampleResult(id string, accountID int64, role game.Role, winner game.Winner) game.MatchResult {
	return game.MatchResult{
		ID:              id,
		RoomCode:        "ABCD",
		Winner:          winner,
		Rounds:          3,
		ElderSignsFound: 2,
		ElderSignsTotal: 5,
		FinishedAt:      time.Now(),
		Players: []game.MatchPlayer{
			{Name: "Ann", Role: role, AccountID: accountID, Won: role.Wins(winner)},
			{Name: "Bot Alice", Role: game.RoleCultist, IsBot: true, Won: game.RoleCultist.Wins(winner)},
			{Name: "Guest", Role: game.RoleInvestigator, Won: game.RoleInvestigator.Wins(winner)},
		},
	}
}

func TestRecordMatchUpdatesStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, err := s.CreateUser("ann", "secret1")
	require.NoError(t, err)

	st, err := s.Stats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)

	require.NoError(t, s.RecordMatch(ctx, sampleResult("m1", user.ID, game.RoleInvestigator, game.WinnerInvestigators)))
	require.NoError(t, s.RecordMatch(ctx, sampleResult("m2", user.ID, game.RoleCultist, game.WinnerInvestigators)))
	// 重複寫入同一局不影響戰績
	require.NoError(t, s.RecordMatch(ctx, sampleResult("m2", user.ID, game.RoleCultist, game.WinnerInvestigators)))

	st, err = s.Stats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, Stats{GamesPlayed: 2, GamesWon: 1, InvestigatorGames: 1, CultistGames: 1}, st)

	cached, ok := s.stats.Get(user.ID)
	require.True(t, ok)
	assert.Equal(t, st, cached)

	require.NoError(t, s.RecordMatch(ctx, sampleResult("m3", user.ID, game.RoleCultist, game.WinnerCultists)))
	_, ok = s.stats.Get(user.ID)
	assert.False(t, ok, "recording a match must invalidate cached stats")

	st, err = s.Stats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, st.GamesPlayed)
	assert.Equal(t, 2, st.GamesWon)
}

func TestStatsReadDuringRecordIsNotCached(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user, err := s.CreateUser("ann", "secret1")
	require.NoError(t, err)

	// 查詢讀到舊資料後才有對局寫入，回填時必須放棄
	gen := s.statsGeneration()
	stale, err := s.queryStats(ctx, user.ID)
	require.NoError(t, err)
	require.NoError(t, s.RecordMatch(ctx, sampleResult("m1", user.ID, game.RoleInvestigator, game.WinnerInvestigators)))
	s.cacheStats(user.ID, stale, gen)

	_, ok := s.stats.Get(user.ID)
	assert.False(t, ok)

	st, err := s.Stats(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, st.GamesPlayed)
	assert.Equal(t, 1, st.GamesWon)
}

func TestNewRejectsEmptyPath(t *testing.T) {
	_, err := New("  ", nil)
	assert.Error(t, err)
}
