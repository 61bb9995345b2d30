package game

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

var botNames = []string{"Alice", "Bob", "Carol", "Dave", "Eve", "Frank", "Grace", "Hank"}

// AddPlayer 讓真人玩家加入大廳，第一位加入者成為房主
func (r *Room) AddPlayer(id, name string, accountID int64) (*Player, error) {
	name = normalizeName(name)
	if id == "" || name == "" {
		return nil, ErrInvalidInput
	}
	if r.Phase != PhaseLobby {
		return nil, ErrGameInProgress
	}
	if len(r.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}
	if existing, _ := r.Player(id); existing != nil {
		return nil, ErrInvalidInput
	}
	if r.nameTaken(name) {
		return nil, ErrNameTaken
	}

	p := &Player{ID: id, Name: name, Connected: true, AccountID: accountID}
	if r.Host() == nil {
		p.IsHost = true
	} else {
		r.addLog("%s joined the room.", name)
	}
	r.Players = append(r.Players, p)
	return p, nil
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > MaxNameLength {
		name = string([]rune(name)[:MaxNameLength])
	}
	return name
}

// AddBot 由房主在大廳新增一名機器人
func (r *Room) AddBot(actorID string) (*Player, error) {
	if _, err := r.requireHost(actorID); err != nil {
		return nil, err
	}
	if r.Phase != PhaseLobby {
		return nil, ErrGameInProgress
	}
	if len(r.Players) >= MaxPlayers {
		return nil, ErrRoomFull
	}

	bot := &Player{
		ID:        "bot-" + uuid.NewString(),
		Name:      r.nextBotName(),
		Connected: true,
		IsBot:     true,
	}
	r.Players = append(r.Players, bot)
	r.addLog("%s joined the room.", bot.Name)
	return bot, nil
}

func (r *Room) nextBotName() string {
	r.botSeq++
	for _, n := range botNames {
		if name := "Bot " + n; !r.nameTaken(name) {
			return name
		}
	}
	for seq := r.botSeq; ; seq++ {
		if name := fmt.Sprintf("Bot %d", seq); !r.nameTaken(name) {
			return name
		}
	}
}

// RemovePlayer 僅能在大廳移除玩家，必要時重新指派房主
func (r *Room) RemovePlayer(id string) error {
	if r.Phase != PhaseLobby {
		return ErrGameInProgress
	}
	_, idx := r.Player(id)
	if idx < 0 {
		return ErrPlayerNotFound
	}
	wasHost := r.Players[idx].IsHost
	r.removePlayerAt(idx)
	if wasHost && len(r.Players) > 0 {
		r.assignHost()
	}
	return nil
}

// Disconnect 將玩家標記為離線。大廳中直接移除；遊戲中保留座位，
// 其手牌仍可被調查，宣告義務也仍然存在。
// 回傳 true 表示大廳已經沒有真人，房間應該被銷毀。
func (r *Room) Disconnect(id string) (bool, error) {
	p, _ := r.Player(id)
	if p == nil {
		return false, ErrPlayerNotFound
	}
	p.Connected = false
	r.addLog("%s disconnected.", p.Name)

	if r.Phase == PhaseLobby {
		if err := r.RemovePlayer(id); err != nil {
			return false, err
		}
		// 只剩機器人的大廳沒有人能開局，不必等到座位全空才銷毀
		return r.HumanCount() == 0, nil
	}
	if p.IsHost {
		r.assignHost()
	}
	return false, nil
}

// StartGame 由房主開局：發身份、決定起始玩家並進入第一回合宣告
func (r *Room) StartGame(actorID string) error {
	if _, err := r.requireHost(actorID); err != nil {
		return err
	}
	if r.Phase != PhaseLobby || !r.Phase.CanTransitionTo(PhaseDeclaring) {
		return ErrWrongPhase
	}
	n := len(r.Players)
	if n < MinPlayers {
		return ErrInsufficientPlayers
	}
	if n > MaxPlayers {
		return ErrTooManyPlayers
	}

	roles, err := BuildRoleDeck(r.rng, n)
	if err != nil {
		return err
	}
	for i, p := range r.Players {
		p.Role = roles[i]
		p.Cards = nil
		p.Declaration = nil
	}

	r.ActivePlayerIdx = r.rng.Intn(n)
	r.Round = 1
	r.ActionsLeft = 0
	r.ElderSignsFound = 0
	r.CthulhuFound = false
	r.Winner = WinnerNone
	r.Match++
	r.MatchID = uuid.NewString()

	r.addLog("Game started! Roles have been dealt.")
	r.addLog("%s goes first.", r.Players[r.ActivePlayerIdx].Name)
	return r.startRound()
}

func (r *Room) startRound() error {
	r.Phase = PhaseDeclaring
	if err := r.dealCards(); err != nil {
		return err
	}
	for _, p := range r.Players {
		p.Declaration = nil
	}
	r.addLog("--- Round %d ---", r.Round)
	r.DeclarationsRemaining = len(r.Players)
	return nil
}

// Declare 提交本回合宣告，所有人宣告完畢後進入調查階段
func (r *Room) Declare(actorID string, d Declaration) error {
	if r.Phase != PhaseDeclaring {
		return ErrWrongPhase
	}
	p, _ := r.Player(actorID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if p.Declaration != nil {
		return ErrAlreadyDeclared
	}
	if d.ElderSigns < 0 || d.Cthulhu < 0 {
		return ErrInvalidInput
	}

	p.Declaration = &d
	r.DeclarationsRemaining--
	r.addLog("%s claims: %d Elder Sign(s), %d Cthulhu.", p.Name, d.ElderSigns, d.Cthulhu)

	if r.DeclarationsRemaining <= 0 {
		r.startInvestigation()
	}
	return nil
}

func (r *Room) startInvestigation() {
	r.Phase = PhaseInvestigating
	r.ActionsLeft = len(r.Players)
	r.shuffleHands()
	r.addLog("Investigation phase begins!")
}

// Investigate 由目前行動玩家指定一名其他玩家，隨機翻開其一張未翻開的牌。
// 行動權交給被調查者。
func (r *Room) Investigate(actorID, targetID string) (CardType, error) {
	if r.Phase != PhaseInvestigating {
		return 0, ErrWrongPhase
	}
	actor := r.ActivePlayer()
	if actor == nil || actor.ID != actorID {
		return 0, ErrNotYourTurn
	}
	target, targetIdx := r.Player(targetID)
	if target == nil {
		return 0, ErrTargetNotFound
	}
	if target.ID == actor.ID {
		return 0, ErrInvalidTarget
	}
	indices := target.unrevealedIndices()
	if len(indices) == 0 {
		return 0, ErrNoCardsLeft
	}

	card := &target.Cards[indices[r.rng.Intn(len(indices))]]
	card.Revealed = true
	r.addLog("%s investigated %s and revealed: %s!", actor.Name, target.Name, card.Type.Label())

	switch card.Type {
	case CardElderSign:
		r.ElderSignsFound++
	case CardCthulhu:
		r.CthulhuFound = true
	}

	if r.evaluateReveal() {
		return card.Type, nil
	}

	r.ActionsLeft--
	r.ActivePlayerIdx = targetIdx
	if r.ActionsLeft <= 0 {
		if err := r.endRound(); err != nil {
			return card.Type, err
		}
	}
	return card.Type, nil
}

// Chat 把聊天訊息寫入行動紀錄
func (r *Room) Chat(actorID, message string) error {
	p, _ := r.Player(actorID)
	if p == nil {
		return ErrPlayerNotFound
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrInvalidInput
	}
	if utf8.RuneCountInString(message) > MaxChatLength {
		message = string([]rune(message)[:MaxChatLength])
	}
	r.addLog("[%s]: %s", p.Name, message)
	return nil
}

// PlayAgain 由房主在遊戲結束後重置回大廳，移除機器人與離線玩家
func (r *Room) PlayAgain(actorID string) error {
	if _, err := r.requireHost(actorID); err != nil {
		return err
	}
	if r.Phase != PhaseGameOver || !r.Phase.CanTransitionTo(PhaseLobby) {
		return ErrWrongPhase
	}

	kept := make([]*Player, 0, len(r.Players))
	for _, p := range r.Players {
		if p.IsBot || !p.Connected {
			continue
		}
		p.resetForLobby()
		kept = append(kept, p)
	}
	r.Players = kept

	r.Phase = PhaseLobby
	r.Round = 0
	r.ActionsLeft = 0
	r.ActivePlayerIdx = 0
	r.ElderSignsFound = 0
	r.CthulhuFound = false
	r.Winner = WinnerNone
	r.DeclarationsRemaining = 0
	r.Log = r.Log[:0]
	if r.Host() == nil && len(r.Players) > 0 {
		r.assignHost()
	}

	r.addLog("Game reset. Waiting for host to start.")
	return nil
}
