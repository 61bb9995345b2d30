package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"cthulhu/internal/game"
	"cthulhu/internal/logging"
)

// MatchRecorder 接收每一局結束時的結果
type MatchRecorder interface {
	RecordMatch(ctx context.Context, res game.MatchResult) error
}

// Options 是 Hub 的可調參數
type Options struct {
	BotDeclareDelay     time.Duration
	BotDeclareStagger   time.Duration
	BotInvestigateDelay time.Duration
	MessageRate         float64
	MessageBurst        int
	RecordTimeout       time.Duration
}

func DefaultOptions() Options {
	return Options{
		BotDeclareDelay:     500 * time.Millisecond,
		BotDeclareStagger:   300 * time.Millisecond,
		BotInvestigateDelay: 800 * time.Millisecond,
		MessageRate:         10,
		MessageBurst:        20,
		RecordTimeout:       10 * time.Second,
	}
}

// Hub 管理房間代碼與房間的對應。Hub 的鎖只保護 rooms 與 closing，持有時不會再去取房間的鎖。
type Hub struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	closing bool

	ctx       context.Context
	logger    *zap.SugaredLogger
	opts      Options
	recorders []MatchRecorder
	records   sync.WaitGroup
	newCode   func() string
}

func NewHub(ctx context.Context, opts Options, recorders ...MatchRecorder) *Hub {
	if opts.RecordTimeout <= 0 {
		opts.RecordTimeout = DefaultOptions().RecordTimeout
	}
	return &Hub{
		rooms:     make(map[string]*Room),
		ctx:       ctx,
		logger:    logging.FromContext(ctx).Named("hub"),
		opts:      opts,
		recorders: recorders,
		newCode:   generateCode,
	}
}

func (h *Hub) newLimiter() *rate.Limiter {
	if h.opts.MessageRate <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(h.opts.MessageRate), h.opts.MessageBurst)
}

func (h *Hub) allocateCodeLocked() (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := h.newCode()
		if _, exists := h.rooms[code]; !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("no free room code after %d attempts", maxCodeAttempts)
}

// CreateRoom 配置新代碼並讓 c 以房主身份加入
func (h *Hub) CreateRoom(c *Client, playerName string) (*Room, error) {
	if c.currentRoom() != nil {
		return nil, ErrAlreadyInRoom
	}

	h.mu.Lock()
	code, err := h.allocateCodeLocked()
	if err != nil {
		h.mu.Unlock()
		return nil, err
	}
	room := newRoom(h, code)
	// 房間尚未公開，直接操作狀態不需要房間鎖
	if _, err := room.state.AddPlayer(c.playerID, playerName, c.accountID); err != nil {
		h.mu.Unlock()
		return nil, err
	}
	room.clients[c.playerID] = c
	h.rooms[code] = room
	h.mu.Unlock()

	if !c.attach(room) {
		room.leave(c)
		return nil, ErrClientClosed
	}
	h.logger.Infow("room created", "room", code, "player", c.playerID)

	room.mu.Lock()
	room.commitLocked(game.PhaseLobby)
	room.mu.Unlock()
	return room, nil
}

// JoinRoom 依代碼加入既有房間，代碼不分大小寫
func (h *Hub) JoinRoom(c *Client, code, playerName string) (*Room, error) {
	if c.currentRoom() != nil {
		return nil, ErrAlreadyInRoom
	}
	room, ok := h.Room(code)
	if !ok {
		return nil, game.ErrRoomNotFound
	}
	if err := room.join(c, playerName); err != nil {
		return nil, err
	}
	if !c.attach(room) {
		room.leave(c)
		return nil, ErrClientClosed
	}
	return room, nil
}

// LeaveRoom 讓 c 主動離開目前的房間，效果等同斷線
func (h *Hub) LeaveRoom(c *Client) error {
	room := c.detach()
	if room == nil {
		return ErrNotInRoom
	}
	room.leave(c)
	return nil
}

// RemoveClient 在連線關閉時呼叫
func (h *Hub) RemoveClient(c *Client) {
	if room := c.detach(); room != nil {
		room.leave(c)
	}
}

func (h *Hub) Room(code string) (*Room, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[normalizeCode(code)]
	return room, ok
}

func (h *Hub) RoomCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}

func (h *Hub) removeRoom(room *Room) {
	h.mu.Lock()
	if current, ok := h.rooms[room.code]; ok && current == room {
		delete(h.rooms, room.code)
	}
	h.mu.Unlock()
	h.logger.Infow("room closed", "room", room.code)
}

func (h *Hub) runBotTask(code string, task botTask) {
	room, ok := h.Room(code)
	if !ok {
		h.logger.Debugw("dropping bot task for missing room", "room", code, "bot", task.actor)
		return
	}
	room.runBotTask(task)
}

// recordMatch 非同步地把結果交給所有紀錄器，失敗只記錄日誌
func (h *Hub) recordMatch(res game.MatchResult) {
	if len(h.recorders) == 0 {
		return
	}
	// 關閉開始後不再新增紀錄，Add 才不會和 Shutdown 的 Wait 並行
	h.mu.Lock()
	if h.closing {
		h.mu.Unlock()
		h.logger.Warnw("hub shutting down, match not recorded", "room", res.RoomCode, "match", res.ID)
		return
	}
	h.records.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.records.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(h.ctx), h.opts.RecordTimeout)
		defer cancel()

		g, ctx := errgroup.WithContext(ctx)
		for _, rec := range h.recorders {
			rec := rec
			g.Go(func() error {
				return rec.RecordMatch(ctx, res)
			})
		}
		if err := g.Wait(); err != nil {
			h.logger.Errorw("recording match failed", "room", res.RoomCode, "match", res.ID, "error", err)
			return
		}
		h.logger.Debugw("match recorded", "room", res.RoomCode, "match", res.ID)
	}()
}

// Shutdown 關閉所有連線並等待進行中的對局紀錄寫完
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	rooms := make([]*Room, 0, len(h.rooms))
	for _, room := range h.rooms {
		rooms = append(rooms, room)
	}
	h.mu.Unlock()

	for _, room := range rooms {
		for _, c := range room.connectedClients() {
			c.close()
		}
	}

	done := make(chan struct{})
	go func() {
		h.records.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for match records: %w", ctx.Err())
	}
}
