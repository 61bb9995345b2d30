package server

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"cthulhu/internal/game"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client 封裝一條 WebSocket 連線，每條連線就是一位玩家
type Client struct {
	conn      *websocket.Conn
	hub       *Hub
	logger    *zap.SugaredLogger
	playerID  string
	accountID int64
	username  string
	limiter   *rate.Limiter
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	room   *Room
	closed bool
}

// NewClient 建立客戶端；accountID 為 0 表示訪客
func NewClient(conn *websocket.Conn, hub *Hub, accountID int64, username string) *Client {
	id := uuid.NewString()
	return &Client{
		conn:      conn,
		hub:       hub,
		logger:    hub.logger.Named("client").With("player", id),
		playerID:  id,
		accountID: accountID,
		username:  strings.TrimSpace(username),
		limiter:   hub.newLimiter(),
		send:      make(chan []byte, 256),
		done:      make(chan struct{}),
	}
}

func (c *Client) PlayerID() string {
	return c.playerID
}

func (c *Client) currentRoom() *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// attach 記錄所在房間；連線已關閉時回傳 false，由呼叫端負責離開房間
func (c *Client) attach(room *Room) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.room = room
	return true
}

func (c *Client) detach() *Room {
	c.mu.Lock()
	defer c.mu.Unlock()
	room := c.room
	c.room = nil
	return room
}

func (c *Client) ReadPump() {
	defer c.close()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warnw("unexpected websocket close", "error", err)
			}
			break
		}
		var msg ClientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.sendError(game.ErrInvalidInput)
			continue
		}
		if !c.limiter.Allow() {
			c.reply(msg, nil, ErrRateLimited)
			continue
		}
		c.handleMessage(msg)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg ClientMessage) {
	data, err := c.dispatch(msg)
	if err != nil {
		c.logger.Debugw("request rejected", "type", msg.Type, "error", err)
	}
	c.reply(msg, data, err)
}

func (c *Client) dispatch(msg ClientMessage) (interface{}, error) {
	switch msg.Type {
	case "create_room":
		var payload CreateRoomPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return nil, err
		}
		room, err := c.hub.CreateRoom(c, c.displayName(payload.PlayerName))
		if err != nil {
			return nil, err
		}
		return JoinedPayload{Code: room.Code(), PlayerID: c.playerID}, nil
	case "join_room":
		var payload JoinRoomPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return nil, err
		}
		if strings.TrimSpace(payload.Code) == "" {
			return nil, game.ErrInvalidInput
		}
		room, err := c.hub.JoinRoom(c, payload.Code, c.displayName(payload.PlayerName))
		if err != nil {
			return nil, err
		}
		return JoinedPayload{Code: room.Code(), PlayerID: c.playerID}, nil
	case "leave_room":
		return nil, c.hub.LeaveRoom(c)
	}

	room := c.currentRoom()
	if room == nil {
		if isRoomMessage(msg.Type) {
			return nil, ErrNotInRoom
		}
		return nil, ErrUnknownMessage
	}

	switch msg.Type {
	case "add_bot":
		return nil, room.AddBot(c)
	case "start_game":
		return nil, room.StartGame(c)
	case "declare":
		var payload DeclarePayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return nil, err
		}
		return nil, room.Declare(c, game.Declaration{ElderSigns: payload.ElderSigns, Cthulhu: payload.Cthulhu})
	case "investigate":
		var payload InvestigatePayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return nil, err
		}
		card, err := room.Investigate(c, payload.TargetPlayerID)
		if err != nil {
			return nil, err
		}
		return InvestigateResult{Card: card}, nil
	case "chat":
		var payload ChatPayload
		if err := decodePayload(msg.Payload, &payload); err != nil {
			return nil, err
		}
		return nil, room.Chat(c, payload.Message)
	case "play_again":
		return nil, room.PlayAgain(c)
	default:
		return nil, ErrUnknownMessage
	}
}

func isRoomMessage(t string) bool {
	switch t {
	case "add_bot", "start_game", "declare", "investigate", "chat", "play_again":
		return true
	}
	return false
}

// displayName 沒有填名字的登入玩家使用帳號名稱
func (c *Client) displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return c.username
	}
	return name
}

func (c *Client) reply(msg ClientMessage, data interface{}, err error) {
	if msg.ID == "" {
		if err != nil {
			c.sendError(err)
		}
		return
	}
	ack := AckPayload{ID: msg.ID, Success: err == nil, Data: data}
	if err != nil {
		ack.Error = err.Error()
		ack.Code = errorCode(err)
		ack.Data = nil
	}
	c.sendMessage(ServerMessage{Type: "ack", Payload: ack})
}

func (c *Client) sendError(err error) {
	if err == nil {
		return
	}
	c.sendMessage(ServerMessage{Type: "error", Payload: ErrorPayload{Message: err.Error(), Code: errorCode(err)}})
}

// sendMessage 不會阻塞；對方讀取太慢塞滿緩衝時直接斷開
func (c *Client) sendMessage(msg ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.logger.Errorw("marshal server message", "type", msg.Type, "error", err)
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		c.logger.Warnw("send buffer full, dropping connection")
		go c.close()
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
		if c.hub != nil {
			c.hub.RemoveClient(c)
		}
	})
}
