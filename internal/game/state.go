package game

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// LogEntry 是房間行動紀錄中的一筆
type LogEntry struct {
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// Room 是單一房間的權威狀態。本身不加鎖，呼叫端需序列化所有操作。
type Room struct {
	Code                  string
	Phase                 Phase
	Round                 int
	ActionsLeft           int
	ActivePlayerIdx       int
	ElderSignsFound       int
	CthulhuFound          bool
	Winner                Winner
	Players               []*Player
	Log                   []LogEntry
	DeclarationsRemaining int

	// Match 每次開局遞增，用來辨識延遲執行的動作是否屬於同一局
	Match   int
	MatchID string

	rng    *rand.Rand
	now    func() time.Time
	botSeq int
}

// NewRoom 建立位於大廳階段的空房間；seed 為 0 時使用目前時間
func NewRoom(code string, seed int64) *Room {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Room{
		Code:    code,
		Phase:   PhaseLobby,
		Players: make([]*Player, 0, MaxPlayers),
		Log:     make([]LogEntry, 0, MaxLogEntries),
		rng:     rand.New(rand.NewSource(seed)),
		now:     time.Now,
	}
}

func (r *Room) addLog(format string, args ...interface{}) {
	r.Log = append(r.Log, LogEntry{
		Message:   fmt.Sprintf(format, args...),
		Timestamp: r.now().UnixMilli(),
	})
	if over := len(r.Log) - MaxLogEntries; over > 0 {
		r.Log = append(r.Log[:0], r.Log[over:]...)
	}
}

// Player 依編號取得玩家與其座位索引
func (r *Room) Player(id string) (*Player, int) {
	for i, p := range r.Players {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// ActivePlayer 回傳目前輪到行動的玩家
func (r *Room) ActivePlayer() *Player {
	if r.ActivePlayerIdx < 0 || r.ActivePlayerIdx >= len(r.Players) {
		return nil
	}
	return r.Players[r.ActivePlayerIdx]
}

// Host 回傳房主
func (r *Room) Host() *Player {
	for _, p := range r.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

// HumanCount 回傳非機器人玩家數量
func (r *Room) HumanCount() int {
	count := 0
	for _, p := range r.Players {
		if !p.IsBot {
			count++
		}
	}
	return count
}

// ElderSignsTotal 回傳本局需要找到的遠古印記數量
func (r *Room) ElderSignsTotal() int {
	cfg, err := ConfigFor(len(r.Players))
	if err != nil {
		return 0
	}
	return cfg.ElderSigns
}

func (r *Room) nameTaken(name string) bool {
	for _, p := range r.Players {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

func (r *Room) requireHost(actorID string) (*Player, error) {
	actor, _ := r.Player(actorID)
	if actor == nil || !actor.IsHost {
		return nil, ErrNotHost
	}
	return actor, nil
}

// assignHost 將房主交給第一位連線中的真人，沒有則交給第一位真人
func (r *Room) assignHost() {
	for _, p := range r.Players {
		p.IsHost = false
	}
	for _, p := range r.Players {
		if !p.IsBot && p.Connected {
			p.IsHost = true
			return
		}
	}
	for _, p := range r.Players {
		if !p.IsBot {
			p.IsHost = true
			return
		}
	}
	if len(r.Players) > 0 {
		r.Players[0].IsHost = true
	}
}

func (r *Room) removePlayerAt(idx int) {
	r.Players = append(r.Players[:idx], r.Players[idx+1:]...)
	if r.ActivePlayerIdx >= len(r.Players) {
		r.ActivePlayerIdx = 0
	}
}
