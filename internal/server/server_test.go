package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homegame/holdem/internal/game"
)

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func startTestServer(t *testing.T, cfg *Config) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	s, err := New(cfg, logger, nil, 12345)
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func dial(t *testing.T, ts *httptest.Server, gameName, player string) *testClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	c := &testClient{t: t, conn: conn}
	c.send(MessageTypeJoin, JoinData{Game: gameName, PlayerName: player})
	return c
}

func (c *testClient) send(mt MessageType, data interface{}) {
	c.t.Helper()
	m, err := NewMessage(mt, data)
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteJSON(m))
}

func (c *testClient) next() *Message {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(10*time.Second)))
	var m Message
	require.NoError(c.t, c.conn.ReadJSON(&m))
	return &m
}

// nextOfType reads messages until one of the wanted type arrives.
func (c *testClient) nextOfType(mt MessageType) *Message {
	c.t.Helper()
	for i := 0; i < 100; i++ {
		if m := c.next(); m.Type == mt {
			return m
		}
	}
	c.t.Fatalf("no %q message received", mt)
	return nil
}

func (c *testClient) welcome() WelcomeData {
	c.t.Helper()
	var w WelcomeData
	require.NoError(c.t, jsonInto(c.nextOfType(MessageTypeWelcome), &w))
	return w
}

func (c *testClient) state() StateData {
	c.t.Helper()
	var st StateData
	require.NoError(c.t, jsonInto(c.nextOfType(MessageTypeState), &st))
	return st
}

// stateWhere reads states until cond holds.
func (c *testClient) stateWhere(cond func(StateData) bool) StateData {
	c.t.Helper()
	for i := 0; i < 200; i++ {
		st := c.state()
		if cond(st) {
			return st
		}
	}
	c.t.Fatal("state condition never satisfied")
	return StateData{}
}

func jsonInto(m *Message, v interface{}) error {
	return json.Unmarshal(m.Data, v)
}

func twoPlayerConfig() *Config {
	cfg := DefaultConfig()
	cfg.Games[0].Organizer = "alice"
	cfg.Server.BotThinkMS = 1
	return cfg
}

func TestJoinAndStartHand(t *testing.T) {
	t.Parallel()

	ts := startTestServer(t, twoPlayerConfig())
	alice := dial(t, ts, "main", "alice")
	require.Equal(t, 0, alice.welcome().Seat)
	bob := dial(t, ts, "main", "bob")
	require.Equal(t, 1, bob.welcome().Seat)

	alice.send(MessageTypeStartHand, struct{}{})
	st := bob.stateWhere(func(st StateData) bool { return st.Snapshot.Hand != nil })

	hand := st.Snapshot.Hand
	assert.Equal(t, game.Preflop, hand.Phase)
	assert.Equal(t, 30, hand.Pot)
	assert.Equal(t, hand.SmallBlind, hand.ActingSeat)

	// Bob sees his own cards but not alice's.
	for _, s := range st.Snapshot.Seats {
		if s.Index == 1 {
			assert.Len(t, s.HoleCards, 2)
		} else {
			assert.Empty(t, s.HoleCards)
		}
	}
}

func TestStartHandUnauthorizedOverWire(t *testing.T) {
	t.Parallel()

	ts := startTestServer(t, twoPlayerConfig())
	alice := dial(t, ts, "main", "alice")
	alice.welcome()
	bob := dial(t, ts, "main", "bob")
	bob.welcome()

	bob.send(MessageTypeStartHand, struct{}{})
	var e ErrorData
	require.NoError(t, jsonInto(bob.nextOfType(MessageTypeError), &e))
	assert.Equal(t, "unauthorized", e.Code)
}

func TestActionFlowOverWire(t *testing.T) {
	t.Parallel()

	ts := startTestServer(t, twoPlayerConfig())
	alice := dial(t, ts, "main", "alice")
	aliceSeat := alice.welcome().Seat
	bob := dial(t, ts, "main", "bob")
	bob.welcome()

	alice.send(MessageTypeStartHand, struct{}{})
	st := alice.stateWhere(func(st StateData) bool { return st.Snapshot.Hand != nil })

	// Heads-up: the dealer/small blind acts first; seat 0 is alice.
	require.Equal(t, aliceSeat, st.Snapshot.Hand.ActingSeat)
	alice.send(MessageTypeAction, ActionData{Action: "fold"})

	done := bob.stateWhere(func(st StateData) bool {
		return st.Snapshot.Hand != nil && st.Snapshot.Hand.Complete
	})
	assert.Equal(t, game.Showdown, done.Snapshot.Hand.Phase)
	assert.NotEqual(t, aliceSeat, done.Snapshot.Hand.WinnerSeat)

	// Versions increase with every committed write.
	assert.Greater(t, done.Version, st.Version)
}

func TestIllegalActionRejectedOverWire(t *testing.T) {
	t.Parallel()

	ts := startTestServer(t, twoPlayerConfig())
	alice := dial(t, ts, "main", "alice")
	alice.welcome()
	bob := dial(t, ts, "main", "bob")
	bob.welcome()

	alice.send(MessageTypeStartHand, struct{}{})
	bob.stateWhere(func(st StateData) bool { return st.Snapshot.Hand != nil })

	// It is not bob's turn heads-up preflop.
	bob.send(MessageTypeAction, ActionData{Action: "fold"})
	var e ErrorData
	require.NoError(t, jsonInto(bob.nextOfType(MessageTypeError), &e))
	assert.Equal(t, "illegal_action", e.Code)
}

func TestChatRelayOverWire(t *testing.T) {
	t.Parallel()

	ts := startTestServer(t, twoPlayerConfig())
	alice := dial(t, ts, "main", "alice")
	alice.welcome()
	bob := dial(t, ts, "main", "bob")
	bob.welcome()

	bob.send(MessageTypeChat, ChatData{Message: "nice pot"})
	var chat ChatData
	require.NoError(t, jsonInto(alice.nextOfType(MessageTypeChat), &chat))
	assert.Equal(t, "bob", chat.From)
	assert.Equal(t, "nice pot", chat.Message)
}

func TestBotsPlayHandToCompletion(t *testing.T) {
	t.Parallel()

	cfg := twoPlayerConfig()
	cfg.Games[0].Bots = 3
	ts := startTestServer(t, cfg)

	alice := dial(t, ts, "main", "alice")
	aliceSeat := alice.welcome().Seat
	alice.send(MessageTypeStartHand, struct{}{})

	// Bots act on their own; alice folds whenever the action reaches
	// her until the hand resolves.
	for i := 0; i < 200; i++ {
		st := alice.state()
		if st.Snapshot.Hand == nil {
			continue
		}
		if st.Snapshot.Hand.Complete {
			assert.Equal(t, 0, st.Snapshot.Hand.Pot)
			assert.NotEqual(t, -1, st.Snapshot.Hand.WinnerSeat)
			return
		}
		if st.Snapshot.Hand.ActingSeat == aliceSeat {
			alice.send(MessageTypeAction, ActionData{Action: "fold"})
		}
	}
	t.Fatal("hand never completed")
}
