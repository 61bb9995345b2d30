package game

import "math/rand"

// BuildInvestigationDeck 建立並洗好指定人數的調查牌堆
func BuildInvestigationDeck(rng *rand.Rand, playerCount int) ([]CardType, error) {
	cfg, err := ConfigFor(playerCount)
	if err != nil {
		return nil, err
	}
	deck := make([]CardType, 0, cfg.InvestigationCards())
	for i := 0; i < cfg.Futile; i++ {
		deck = append(deck, CardFutile)
	}
	for i := 0; i < cfg.ElderSigns; i++ {
		deck = append(deck, CardElderSign)
	}
	for i := 0; i < cfg.Cthulhu; i++ {
		deck = append(deck, CardCthulhu)
	}
	shuffle(rng, deck)
	return deck, nil
}

// BuildRoleDeck 建立並洗好身份牌
func BuildRoleDeck(rng *rand.Rand, playerCount int) ([]Role, error) {
	cfg, err := ConfigFor(playerCount)
	if err != nil {
		return nil, err
	}
	roles := make([]Role, 0, cfg.RoleCards())
	for i := 0; i < cfg.Investigators; i++ {
		roles = append(roles, RoleInvestigator)
	}
	for i := 0; i < cfg.Cultists; i++ {
		roles = append(roles, RoleCultist)
	}
	shuffle(rng, roles)
	return roles, nil
}

func shuffle[T any](rng *rand.Rand, items []T) {
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// dealCards 第一回合發新牌堆；之後回收所有未翻開的牌重新洗牌平均分配，
// 已翻開的牌從此離場
func (r *Room) dealCards() error {
	playerCount := len(r.Players)
	var deck []CardType
	if r.Round == 1 {
		fresh, err := BuildInvestigationDeck(r.rng, playerCount)
		if err != nil {
			return err
		}
		deck = fresh
	} else {
		deck = r.collectUnrevealed()
		shuffle(r.rng, deck)
	}
	distribute(r.Players, deck)
	return nil
}

func (r *Room) collectUnrevealed() []CardType {
	deck := make([]CardType, 0, len(r.Players)*CardsPerPlayer)
	for _, p := range r.Players {
		for _, c := range p.Cards {
			if !c.Revealed {
				deck = append(deck, c.Type)
			}
		}
	}
	return deck
}

func distribute(players []*Player, deck []CardType) {
	if len(players) == 0 {
		return
	}
	perPlayer := len(deck) / len(players)
	idx := 0
	for _, p := range players {
		p.Cards = make([]Card, 0, perPlayer+1)
		for i := 0; i < perPlayer; i++ {
			p.Cards = append(p.Cards, Card{Type: deck[idx]})
			idx++
		}
	}
	// 餘數依座位順序從 0 號開始輪流補發
	for extra := 0; idx < len(deck); extra++ {
		p := players[extra%len(players)]
		p.Cards = append(p.Cards, Card{Type: deck[idx]})
		idx++
	}
}

// shuffleHands 進入調查階段時，打亂每位玩家未翻開的牌，已翻開的牌接在後方
func (r *Room) shuffleHands() {
	for _, p := range r.Players {
		unrevealed := make([]Card, 0, len(p.Cards))
		revealed := make([]Card, 0)
		for _, c := range p.Cards {
			if c.Revealed {
				revealed = append(revealed, c)
			} else {
				unrevealed = append(unrevealed, c)
			}
		}
		shuffle(r.rng, unrevealed)
		p.Cards = append(unrevealed, revealed...)
	}
}
