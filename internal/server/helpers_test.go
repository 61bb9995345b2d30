package server

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cthulhu/internal/game"
)

type testEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type testAck struct {
	ID      string          `json:"id"`
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

type testState struct {
	game.PublicView
	PlayerID string           `json:"playerId"`
	Private  game.PrivateView `json:"private"`
}

type memoryRecorder struct {
	mu      sync.Mutex
	results []game.MatchResult
}

func (m *memoryRecorder) RecordMatch(_ context.Context, res game.MatchResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
	return nil
}

func (m *memoryRecorder) all() []game.MatchResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]game.MatchResult(nil), m.results...)
}

func fastOptions() Options {
	return Options{
		BotDeclareDelay:     time.Millisecond,
		BotDeclareStagger:   time.Millisecond,
		BotInvestigateDelay: 2 * time.Millisecond,
		MessageRate:         1000,
		MessageBurst:        1000,
		RecordTimeout:       time.Second,
	}
}

// slowOptions 讓機器人任務在測試期間不會觸發
func slowOptions() Options {
	opts := fastOptions()
	opts.BotDeclareDelay = time.Hour
	opts.BotInvestigateDelay = time.Hour
	return opts
}

func newTestHub(t *testing.T, opts Options, recorders ...MatchRecorder) *Hub {
	t.Helper()
	hub := NewHub(context.Background(), opts, recorders...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = hub.Shutdown(ctx)
	})
	return hub
}

func newTestClient(hub *Hub) *Client {
	return NewClient(nil, hub, 0, "")
}

var requestSeq int64

// inbox 暫存 request 等待 ack 時讀到的其他推播，latestState 會先讀這裡
var inbox = struct {
	mu       sync.Mutex
	messages map[*Client][][]byte
}{messages: make(map[*Client][][]byte)}

func stash(c *Client, data []byte) {
	inbox.mu.Lock()
	defer inbox.mu.Unlock()
	inbox.messages[c] = append(inbox.messages[c], data)
}

func takeStashed(c *Client) [][]byte {
	inbox.mu.Lock()
	defer inbox.mu.Unlock()
	stashed := inbox.messages[c]
	delete(inbox.messages, c)
	return stashed
}

// request 送出一個帶 ID 的請求並回傳對應的 ack，途中的其他推播留給 latestState
func request(t *testing.T, c *Client, msgType string, payload interface{}) testAck {
	t.Helper()
	id := strconv.FormatInt(atomic.AddInt64(&requestSeq, 1), 10)
	msg := ClientMessage{Type: msgType, ID: id}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		msg.Payload = raw
	}
	c.handleMessage(msg)

	deadline := time.After(2 * time.Second)
	for {
		select {
		case data := <-c.send:
			var env testEnvelope
			require.NoError(t, json.Unmarshal(data, &env))
			if env.Type != "ack" {
				stash(c, data)
				continue
			}
			var ack testAck
			require.NoError(t, json.Unmarshal(env.Payload, &ack))
			if ack.ID == id {
				return ack
			}
			stash(c, data)
		case <-deadline:
			t.Fatalf("no ack for %s", msgType)
		}
	}
}

func mustRequest(t *testing.T, c *Client, msgType string, payload interface{}) testAck {
	t.Helper()
	ack := request(t, c, msgType, payload)
	require.True(t, ack.Success, "%s failed: %s (%s)", msgType, ack.Error, ack.Code)
	return ack
}

// latestState 依序讀完暫存與緩衝中的推播，回傳最後一筆 game_state
func latestState(t *testing.T, c *Client) (testState, bool) {
	t.Helper()
	var (
		state testState
		found bool
	)
	consume := func(data []byte) {
		var env testEnvelope
		require.NoError(t, json.Unmarshal(data, &env))
		if env.Type != "game_state" {
			return
		}
		state = testState{}
		require.NoError(t, json.Unmarshal(env.Payload, &state))
		found = true
	}
	for _, data := range takeStashed(c) {
		consume(data)
	}
	for {
		select {
		case data := <-c.send:
			consume(data)
		default:
			return state, found
		}
	}
}

func (r *Room) snapshot() game.PublicView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.PublicView()
}

func createRoom(t *testing.T, hub *Hub, name string) (*Client, *Room) {
	t.Helper()
	host := newTestClient(hub)
	ack := mustRequest(t, host, "create_room", CreateRoomPayload{PlayerName: name})
	var joined JoinedPayload
	require.NoError(t, json.Unmarshal(ack.Data, &joined))
	room, ok := hub.Room(joined.Code)
	require.True(t, ok)
	return host, room
}
