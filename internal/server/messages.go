package server

import (
	"encoding/json"
	"errors"
	"fmt"

	"cthulhu/internal/game"
)

var (
	ErrAlreadyInRoom  = errors.New("already in a room")
	ErrNotInRoom      = errors.New("not in a room")
	ErrUnknownMessage = errors.New("unknown message type")
	ErrRateLimited    = errors.New("too many messages")
	ErrClientClosed   = errors.New("connection closed")
)

// ClientMessage 定義 WebSocket 客戶端發送的通用訊息格式；帶有 ID 的請求會收到 ack
type ClientMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// 房間管理請求
type CreateRoomPayload struct {
	PlayerName string `json:"playerName"`
}

type JoinRoomPayload struct {
	Code       string `json:"code"`
	PlayerName string `json:"playerName"`
}

// 對戰階段請求
type DeclarePayload struct {
	ElderSigns int `json:"elderSigns"`
	Cthulhu    int `json:"cthulhu"`
}

type InvestigatePayload struct {
	TargetPlayerID string `json:"targetPlayerId"`
}

type ChatPayload struct {
	Message string `json:"message"`
}

// ServerMessage 是伺服器端對外推送的通用訊息格式
type ServerMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// AckPayload 回覆帶有 ID 的請求
type AckPayload struct {
	ID      string      `json:"id"`
	Success bool        `json:"success"`
	Error   string      `json:"error,omitempty"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type JoinedPayload struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
}

type InvestigateResult struct {
	Card game.CardType `json:"card"`
}

// GameStatePayload 是送給單一玩家的狀態：公開資訊加上自己的身份與手牌
type GameStatePayload struct {
	game.PublicView
	PlayerID string            `json:"playerId"`
	Private  *game.PrivateView `json:"private"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

var serverErrorCodes = []struct {
	err  error
	code string
}{
	{ErrAlreadyInRoom, "already_in_room"},
	{ErrNotInRoom, "not_in_room"},
	{ErrUnknownMessage, "unknown_message"},
	{ErrRateLimited, "rate_limited"},
	{ErrClientClosed, "connection_closed"},
}

// errorCode 先比對連線層錯誤，其餘交給遊戲規則的錯誤代碼
func errorCode(err error) string {
	for _, ec := range serverErrorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return game.ErrorCode(err)
}

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", game.ErrInvalidInput, err)
	}
	return nil
}
