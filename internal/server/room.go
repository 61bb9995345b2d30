package server

import (
	"sync"

	"go.uber.org/zap"

	"cthulhu/internal/game"
)

// Room 包裝單一房間的遊戲狀態。真人訊息、機器人任務與斷線都在 mu 內
// 完成驗證、修改、廣播與排程，彼此不會交錯。
type Room struct {
	code   string
	hub    *Hub
	logger *zap.SugaredLogger

	mu       sync.Mutex
	state    *game.Room
	clients  map[string]*Client
	pending  map[botTask]struct{}
	recorded string
	closed   bool
}

func newRoom(hub *Hub, code string) *Room {
	return &Room{
		code:    code,
		hub:     hub,
		logger:  hub.logger.Named("room").With("room", code),
		state:   game.NewRoom(code, 0),
		clients: make(map[string]*Client),
		pending: make(map[botTask]struct{}),
	}
}

func (r *Room) Code() string {
	return r.code
}

// act 以一次交易執行 fn；fn 回傳錯誤時不廣播，狀態由遊戲規則保證未被修改
func (r *Room) act(fn func(s *game.Room) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return game.ErrRoomNotFound
	}
	prev := r.state.Phase
	if err := fn(r.state); err != nil {
		return err
	}
	r.commitLocked(prev)
	return nil
}

// commitLocked 在狀態改變後紀錄結算、廣播並排程機器人
func (r *Room) commitLocked(prev game.Phase) {
	s := r.state
	if prev != s.Phase {
		r.logger.Debugw("phase changed", "match", s.MatchID, "round", s.Round, "from", prev, "to", s.Phase)
	}
	if res, ok := s.Result(); ok && res.ID != r.recorded {
		r.recorded = res.ID
		r.logger.Infow("match finished", "match", res.ID, "winner", res.Winner.String(), "round", res.Rounds)
		r.hub.recordMatch(res)
	}
	r.broadcastStateLocked()
	r.scheduleBotsLocked()
}

// broadcastStateLocked 給每位連線中的真人送出公開狀態與其私人視角
func (r *Room) broadcastStateLocked() {
	public := r.state.PublicView()
	for _, p := range r.state.Players {
		if p.IsBot || !p.Connected {
			continue
		}
		c, ok := r.clients[p.ID]
		if !ok {
			continue
		}
		private, _ := r.state.PrivateView(p.ID)
		c.sendMessage(ServerMessage{
			Type: "game_state",
			Payload: GameStatePayload{
				PublicView: public,
				PlayerID:   p.ID,
				Private:    &private,
			},
		})
	}
}

func (r *Room) join(c *Client, playerName string) error {
	return r.act(func(s *game.Room) error {
		if _, err := s.AddPlayer(c.playerID, playerName, c.accountID); err != nil {
			return err
		}
		r.clients[c.playerID] = c
		return nil
	})
}

// leave 處理斷線或主動離開；大廳沒有真人時關閉房間
func (r *Room) leave(c *Client) {
	if r.disconnect(c) {
		r.hub.removeRoom(r)
	}
}

func (r *Room) disconnect(c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	if current, ok := r.clients[c.playerID]; ok && current == c {
		delete(r.clients, c.playerID)
	}
	prev := r.state.Phase
	empty, err := r.state.Disconnect(c.playerID)
	if err != nil {
		return false
	}
	if empty {
		r.closed = true
		return true
	}
	r.commitLocked(prev)
	return false
}

func (r *Room) AddBot(c *Client) error {
	return r.act(func(s *game.Room) error {
		bot, err := s.AddBot(c.playerID)
		if err != nil {
			return err
		}
		r.logger.Debugw("bot added", "bot", bot.ID, "name", bot.Name)
		return nil
	})
}

func (r *Room) StartGame(c *Client) error {
	return r.act(func(s *game.Room) error {
		return s.StartGame(c.playerID)
	})
}

func (r *Room) Declare(c *Client, d game.Declaration) error {
	return r.act(func(s *game.Room) error {
		return s.Declare(c.playerID, d)
	})
}

func (r *Room) Investigate(c *Client, targetID string) (game.CardType, error) {
	var card game.CardType
	err := r.act(func(s *game.Room) error {
		revealed, err := s.Investigate(c.playerID, targetID)
		if err != nil {
			return err
		}
		card = revealed
		return nil
	})
	return card, err
}

func (r *Room) Chat(c *Client, message string) error {
	return r.act(func(s *game.Room) error {
		return s.Chat(c.playerID, message)
	})
}

func (r *Room) PlayAgain(c *Client) error {
	return r.act(func(s *game.Room) error {
		return s.PlayAgain(c.playerID)
	})
}

func (r *Room) connectedClients() []*Client {
	r.mu.Lock()
	defer r.mu.Unlock()
	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}
