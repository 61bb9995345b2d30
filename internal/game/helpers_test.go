package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func newLobby(t *testing.T, n int, seed int64) *Room {
	t.Helper()
	r := NewRoom("TEST", seed)
	for i := 0; i < n; i++ {
		_, err := r.AddPlayer(fmt.Sprintf("p%d", i), fmt.Sprintf("Player%d", i), 0)
		require.NoError(t, err)
	}
	return r
}

func newStarted(t *testing.T, n int, seed int64) *Room {
	t.Helper()
	r := newLobby(t, n, seed)
	require.NoError(t, r.StartGame("p0"))
	return r
}

func declareAll(t *testing.T, r *Room) {
	t.Helper()
	for _, p := range r.Players {
		require.NoError(t, r.Declare(p.ID, Declaration{}))
	}
}

func fillFutile(r *Room) {
	for _, p := range r.Players {
		p.Cards = make([]Card, CardsPerPlayer)
	}
}

// firstTarget 回傳目前行動玩家以外、第一位仍有未翻開牌的玩家
func firstTarget(r *Room) *Player {
	active := r.ActivePlayer()
	for _, p := range r.Players {
		if p.ID != active.ID && p.UnrevealedCount() > 0 {
			return p
		}
	}
	return nil
}

func totalUnrevealed(r *Room) int {
	total := 0
	for _, p := range r.Players {
		total += p.UnrevealedCount()
	}
	return total
}
