package game

import "fmt"

const (
	MinPlayers     = 5
	MaxPlayers     = 8
	MaxRounds      = 4
	CardsPerPlayer = 5
	MaxLogEntries  = 100
	MaxNameLength  = 24
	MaxChatLength  = 500
)

// DeckConfig 描述特定人數下的身份牌與調查牌組成
type DeckConfig struct {
	Investigators int
	Cultists      int
	Futile        int
	ElderSigns    int
	Cthulhu       int
}

var deckConfigs = map[int]DeckConfig{
	5: {Investigators: 3, Cultists: 2, Futile: 19, ElderSigns: 5, Cthulhu: 1},
	6: {Investigators: 4, Cultists: 2, Futile: 23, ElderSigns: 6, Cthulhu: 1},
	7: {Investigators: 5, Cultists: 2, Futile: 27, ElderSigns: 7, Cthulhu: 1},
	8: {Investigators: 5, Cultists: 3, Futile: 31, ElderSigns: 8, Cthulhu: 1},
}

// ConfigFor 取得指定人數的牌組設定
func ConfigFor(playerCount int) (DeckConfig, error) {
	cfg, ok := deckConfigs[playerCount]
	if !ok {
		return DeckConfig{}, fmt.Errorf("%w: %d", ErrInvalidPlayerCount, playerCount)
	}
	return cfg, nil
}

// InvestigationCards 回傳調查牌總數
func (c DeckConfig) InvestigationCards() int {
	return c.Futile + c.ElderSigns + c.Cthulhu
}

// RoleCards 回傳身份牌總數
func (c DeckConfig) RoleCards() int {
	return c.Investigators + c.Cultists
}
