package game

// PlayerSummary 是公開狀態中的玩家資訊，不含未翻開的牌面
type PlayerSummary struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	CardCount     int          `json:"cardCount"`
	RevealedCards []CardType   `json:"revealedCards"`
	TotalCards    int          `json:"totalCards"`
	Declaration   *Declaration `json:"declaration"`
	IsHost        bool         `json:"isHost"`
	Connected     bool         `json:"connected"`
	IsBot         bool         `json:"isBot"`
	Role          Role         `json:"role"`
}

// PublicView 是廣播給房間所有人的狀態
type PublicView struct {
	Code            string          `json:"code"`
	Phase           Phase           `json:"phase"`
	Round           int             `json:"round"`
	MaxRounds       int             `json:"maxRounds"`
	ActionsLeft     int             `json:"actionsLeft"`
	ActivePlayerIdx int             `json:"activePlayerIdx"`
	ElderSignsFound int             `json:"elderSignsFound"`
	ElderSignsTotal int             `json:"elderSignsTotal"`
	CthulhuFound    bool            `json:"cthulhuFound"`
	Winner          Winner          `json:"winner"`
	Players         []PlayerSummary `json:"players"`
	Log             []LogEntry      `json:"log"`
}

// PrivateView 只給玩家本人看的身份與完整手牌
type PrivateView struct {
	Role Role   `json:"role"`
	Hand []Card `json:"hand"`
}

// PublicView 建立公開狀態；身份只在遊戲結束後公開
func (r *Room) PublicView() PublicView {
	players := make([]PlayerSummary, 0, len(r.Players))
	for _, p := range r.Players {
		summary := PlayerSummary{
			ID:            p.ID,
			Name:          p.Name,
			CardCount:     p.UnrevealedCount(),
			RevealedCards: p.RevealedTypes(),
			TotalCards:    len(p.Cards),
			IsHost:        p.IsHost,
			Connected:     p.Connected,
			IsBot:         p.IsBot,
		}
		if p.Declaration != nil {
			d := *p.Declaration
			summary.Declaration = &d
		}
		if r.Phase == PhaseGameOver {
			summary.Role = p.Role
		}
		players = append(players, summary)
	}

	log := make([]LogEntry, len(r.Log))
	copy(log, r.Log)

	return PublicView{
		Code:            r.Code,
		Phase:           r.Phase,
		Round:           r.Round,
		MaxRounds:       MaxRounds,
		ActionsLeft:     r.ActionsLeft,
		ActivePlayerIdx: r.ActivePlayerIdx,
		ElderSignsFound: r.ElderSignsFound,
		ElderSignsTotal: r.ElderSignsTotal(),
		CthulhuFound:    r.CthulhuFound,
		Winner:          r.Winner,
		Players:         players,
		Log:             log,
	}
}

// PrivateView 建立指定玩家的私人視角
func (r *Room) PrivateView(playerID string) (PrivateView, bool) {
	p, _ := r.Player(playerID)
	if p == nil {
		return PrivateView{}, false
	}
	hand := make([]Card, len(p.Cards))
	copy(hand, p.Cards)
	return PrivateView{Role: p.Role, Hand: hand}, true
}
