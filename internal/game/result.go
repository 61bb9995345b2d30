package game

import "time"

// MatchPlayer 是對局結果中的單一玩家紀錄
type MatchPlayer struct {
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	IsBot     bool   `json:"isBot"`
	AccountID int64  `json:"accountId,omitempty"`
	Won       bool   `json:"won"`
}

// MatchResult 是一局結束後交給紀錄器的完整結果
type MatchResult struct {
	ID              string        `json:"id"`
	RoomCode        string        `json:"roomCode"`
	Winner          Winner        `json:"winner"`
	Rounds          int           `json:"rounds"`
	ElderSignsFound int           `json:"elderSignsFound"`
	ElderSignsTotal int           `json:"elderSignsTotal"`
	FinishedAt      time.Time     `json:"finishedAt"`
	Players         []MatchPlayer `json:"players"`
	Log             []LogEntry    `json:"log"`
}

// Result 在遊戲結束時擷取對局結果
func (r *Room) Result() (MatchResult, bool) {
	if r.Phase != PhaseGameOver {
		return MatchResult{}, false
	}
	rounds := r.Round
	if rounds > MaxRounds {
		rounds = MaxRounds
	}
	players := make([]MatchPlayer, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, MatchPlayer{
			Name:      p.Name,
			Role:      p.Role,
			IsBot:     p.IsBot,
			AccountID: p.AccountID,
			Won:       p.Role.Wins(r.Winner),
		})
	}
	log := make([]LogEntry, len(r.Log))
	copy(log, r.Log)
	return MatchResult{
		ID:              r.MatchID,
		RoomCode:        r.Code,
		Winner:          r.Winner,
		Rounds:          rounds,
		ElderSignsFound: r.ElderSignsFound,
		ElderSignsTotal: r.ElderSignsTotal(),
		FinishedAt:      r.now().UTC(),
		Players:         players,
		Log:             log,
	}, true
}
