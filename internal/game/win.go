package game

// evaluateReveal 在每次翻牌後檢查勝負，克蘇魯優先於遠古印記
func (r *Room) evaluateReveal() bool {
	if r.CthulhuFound {
		r.finish(WinnerCultists, "Cthulhu has been revealed! The Cultists win!")
		return true
	}
	if total := r.ElderSignsTotal(); total > 0 && r.ElderSignsFound >= total {
		r.finish(WinnerInvestigators, "All Elder Signs found! The Investigators win!")
		return true
	}
	return false
}

// endRound 在行動次數用完時推進回合；超過回合上限由邪教徒獲勝
func (r *Room) endRound() error {
	r.Round++
	if r.Round > MaxRounds {
		r.finish(WinnerCultists, "All rounds completed without finding all Elder Signs. The Cultists win!")
		return nil
	}
	return r.startRound()
}

func (r *Room) finish(w Winner, message string) {
	r.Winner = w
	r.Phase = PhaseGameOver
	r.addLog(message)
}
