package game

// Phase 表示房間目前所處的遊戲階段
type Phase string

const (
	PhaseLobby         Phase = "lobby"
	PhaseDeclaring     Phase = "declaring"
	PhaseInvestigating Phase = "investigating"
	PhaseGameOver      Phase = "game_over"
)

var phaseTransitions = map[Phase][]Phase{
	PhaseLobby:         {PhaseDeclaring},
	PhaseDeclaring:     {PhaseInvestigating},
	PhaseInvestigating: {PhaseDeclaring, PhaseGameOver},
	PhaseGameOver:      {PhaseLobby},
}

func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo 檢查是否允許從目前階段切換到目標階段
func (p Phase) CanTransitionTo(target Phase) bool {
	for _, next := range phaseTransitions[p] {
		if next == target {
			return true
		}
	}
	return false
}
