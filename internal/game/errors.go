package game

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrNameTaken           = errors.New("name already taken")
	ErrGameInProgress      = errors.New("game already in progress")
	ErrNotHost             = errors.New("only the host can do that")
	ErrInsufficientPlayers = errors.New("need at least 5 players")
	ErrTooManyPlayers      = errors.New("too many players")
	ErrAlreadyDeclared     = errors.New("already declared")
	ErrWrongPhase          = errors.New("action not allowed in this phase")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrTargetNotFound      = errors.New("player not found")
	ErrInvalidTarget       = errors.New("can't investigate yourself")
	ErrNoCardsLeft         = errors.New("no cards left to reveal")
	ErrPlayerNotFound      = errors.New("you are not in this room")

	// ErrInvalidPlayerCount 表示人數不在牌組設定表內
	ErrInvalidPlayerCount = errors.New("player count must be between 5 and 8")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrInvalidInput, "invalid_input"},
	{ErrRoomNotFound, "room_not_found"},
	{ErrRoomFull, "room_full"},
	{ErrNameTaken, "name_taken"},
	{ErrGameInProgress, "game_in_progress"},
	{ErrNotHost, "not_host"},
	{ErrInsufficientPlayers, "insufficient_players"},
	{ErrTooManyPlayers, "too_many_players"},
	{ErrAlreadyDeclared, "already_declared"},
	{ErrWrongPhase, "wrong_phase"},
	{ErrNotYourTurn, "not_your_turn"},
	{ErrTargetNotFound, "target_not_found"},
	{ErrInvalidTarget, "invalid_target"},
	{ErrNoCardsLeft, "no_cards_left"},
	{ErrPlayerNotFound, "player_not_found"},
	{ErrInvalidPlayerCount, "invalid_player_count"},
}

// ErrorCode 將錯誤轉成傳給客戶端的固定代碼
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal"
}
