package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultOnlyAfterGameOver(t *testing.T) {
	r := newStarted(t, 5, 11)
	_, ok := r.Result()
	assert.False(t, ok)

	r.Round = MaxRounds + 1
	r.finish(WinnerCultists, "done")

	res, ok := r.Result()
	require.True(t, ok)
	assert.Equal(t, r.MatchID, res.ID)
	assert.Equal(t, "TEST", res.RoomCode)
	assert.Equal(t, WinnerCultists, res.Winner)
	assert.Equal(t, MaxRounds, res.Rounds)
	assert.Equal(t, 5, res.ElderSignsTotal)
	require.Len(t, res.Players, 5)

	winners := 0
	for i, p := range res.Players {
		assert.Equal(t, r.Players[i].Name, p.Name)
		assert.Equal(t, p.Role == RoleCultist, p.Won)
		if p.Won {
			winners++
		}
	}
	assert.Equal(t, 2, winners)
	assert.Equal(t, "done", res.Log[len(res.Log)-1].Message)
}

func TestRoleWins(t *testing.T) {
	assert.True(t, RoleInvestigator.Wins(WinnerInvestigators))
	assert.False(t, RoleInvestigator.Wins(WinnerCultists))
	assert.True(t, RoleCultist.Wins(WinnerCultists))
	assert.False(t, RoleNone.Wins(WinnerCultists))
	assert.False(t, RoleCultist.Wins(WinnerNone))
}
