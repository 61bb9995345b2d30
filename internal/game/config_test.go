package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckConfigTotals(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		cfg, err := ConfigFor(n)
		require.NoError(t, err)
		assert.Equal(t, n, cfg.Investigators+cfg.Cultists, "role cards for %d players", n)
		assert.Equal(t, n*CardsPerPlayer, cfg.Futile+cfg.ElderSigns+cfg.Cthulhu, "investigation cards for %d players", n)
		assert.Equal(t, 1, cfg.Cthulhu)
		assert.Equal(t, cfg.RoleCards(), n)
		assert.Equal(t, cfg.InvestigationCards(), n*CardsPerPlayer)
	}
}

func TestConfigForOutOfRange(t *testing.T) {
	for _, n := range []int{0, 4, 9} {
		_, err := ConfigFor(n)
		assert.ErrorIs(t, err, ErrInvalidPlayerCount)
	}
}

func TestBuildInvestigationDeck(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for n := MinPlayers; n <= MaxPlayers; n++ {
		deck, err := BuildInvestigationDeck(rng, n)
		require.NoError(t, err)
		cfg, _ := ConfigFor(n)

		counts := map[CardType]int{}
		for _, c := range deck {
			counts[c]++
		}
		assert.Len(t, deck, n*CardsPerPlayer)
		assert.Equal(t, cfg.Futile, counts[CardFutile])
		assert.Equal(t, cfg.ElderSigns, counts[CardElderSign])
		assert.Equal(t, 1, counts[CardCthulhu])
	}

	_, err := BuildInvestigationDeck(rng, 4)
	assert.ErrorIs(t, err, ErrInvalidPlayerCount)
}

func TestBuildRoleDeck(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for n := MinPlayers; n <= MaxPlayers; n++ {
		roles, err := BuildRoleDeck(rng, n)
		require.NoError(t, err)
		cfg, _ := ConfigFor(n)

		counts := map[Role]int{}
		for _, r := range roles {
			counts[r]++
		}
		assert.Equal(t, cfg.Investigators, counts[RoleInvestigator])
		assert.Equal(t, cfg.Cultists, counts[RoleCultist])
		assert.Zero(t, counts[RoleNone])
	}

	_, err := BuildRoleDeck(rng, 9)
	assert.ErrorIs(t, err, ErrInvalidPlayerCount)
}

func TestPhaseTransitions(t *testing.T) {
	cases := []struct {
		from, to Phase
		ok       bool
	}{
		{PhaseLobby, PhaseDeclaring, true},
		{PhaseLobby, PhaseInvestigating, false},
		{PhaseLobby, PhaseGameOver, false},
		{PhaseDeclaring, PhaseInvestigating, true},
		{PhaseDeclaring, PhaseLobby, false},
		{PhaseInvestigating, PhaseDeclaring, true},
		{PhaseInvestigating, PhaseGameOver, true},
		{PhaseGameOver, PhaseLobby, true},
		{PhaseGameOver, PhaseDeclaring, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}
