package game

// BluffChance 是機器人宣告時說謊的機率
const BluffChance = 0.3

// BotDeclaration 依機器人手上未翻開的牌決定宣告內容，有一定機率虛報
func (r *Room) BotDeclaration(botID string) (Declaration, error) {
	bot, _ := r.Player(botID)
	if bot == nil {
		return Declaration{}, ErrPlayerNotFound
	}
	elder := bot.CountUnrevealed(CardElderSign)
	cthulhu := bot.CountUnrevealed(CardCthulhu)
	d := Declaration{ElderSigns: elder, Cthulhu: cthulhu}

	if r.rng.Float64() < BluffChance {
		d.ElderSigns = r.rng.Intn(bot.UnrevealedCount() + 1)
		d.Cthulhu = 0
		if r.rng.Float64() >= 0.5 && cthulhu > 0 {
			d.Cthulhu = 1
		}
	}
	return d, nil
}

// BotTarget 從其他仍有未翻開牌的玩家中隨機挑一位；沒有合法目標時回傳 false
func (r *Room) BotTarget(botID string) (string, bool) {
	targets := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.ID == botID || p.UnrevealedCount() == 0 {
			continue
		}
		targets = append(targets, p)
	}
	if len(targets) == 0 {
		return "", false
	}
	return targets[r.rng.Intn(len(targets))].ID, true
}

// UndeclaredBots 依座位順序回傳尚未宣告的機器人
func (r *Room) UndeclaredBots() []*Player {
	bots := make([]*Player, 0)
	for _, p := range r.Players {
		if p.IsBot && p.Declaration == nil {
			bots = append(bots, p)
		}
	}
	return bots
}
