package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/homegame/holdem/internal/bot"
	"github.com/homegame/holdem/internal/game"
	"github.com/homegame/holdem/internal/gameid"
	"github.com/homegame/holdem/internal/randutil"
	"github.com/homegame/holdem/internal/store"
)

// client is one websocket connection bound to a seat.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
	name string
	seat int
}

func (c *client) send(m *Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(m)
}

func (c *client) sendError(code, message string) {
	if m, err := NewMessage(MessageTypeError, ErrorData{Code: code, Message: message}); err == nil {
		_ = c.send(m)
	}
}

// Table hosts one game: the engine, its connected clients, the bot
// runner and the store record. The table is the game's single writer;
// every committed action is persisted with a compare-and-swap replace
// and then broadcast.
type Table struct {
	name   string
	game   *game.Game
	store  *store.Store
	runner *bot.Runner
	log    *log.Logger

	mu      sync.Mutex
	version uint64
	clients map[*client]struct{}
}

func newTable(cfg GameConfig, st *store.Store, clock quartz.Clock, thinkDelay time.Duration, seed int64, logger *log.Logger) (*Table, error) {
	g, err := game.New(gameid.New(), cfg.Organizer, cfg.Settings(), randutil.New(seed), logger)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", cfg.Name, err)
	}

	t := &Table{
		name:    cfg.Name,
		game:    g,
		store:   st,
		log:     logger.WithPrefix("table").With("name", cfg.Name),
		clients: make(map[*client]struct{}),
	}

	for i := 0; i < cfg.Bots; i++ {
		if _, err := g.AddBot(cfg.Organizer, fmt.Sprintf("bot-%d", i+1)); err != nil {
			return nil, fmt.Errorf("table %s: seat bot: %w", cfg.Name, err)
		}
	}

	v, err := st.Create(g.Snapshot())
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", cfg.Name, err)
	}
	t.version = v.Version

	// The runner gets its own RNG; the engine's is reserved for deck
	// shuffles under the game lock.
	t.runner = bot.NewRunner(g, clock, thinkDelay, randutil.New(seed+1), logger)
	t.runner.SetOnAct(t.commit)
	t.runner.SetChat(t.botChat)
	return t, nil
}

// attach binds a connection to a seat, seating the player if this is
// their first visit, and sends the welcome and current state.
func (t *Table) attach(c *client) error {
	seat, err := t.game.Join(c.name, false)
	if err != nil {
		// Reconnecting players take their existing seat back.
		existing, ok := t.game.SeatByName(c.name)
		if !ok {
			return err
		}
		seat = existing
	}
	c.seat = seat

	t.mu.Lock()
	t.clients[c] = struct{}{}
	t.mu.Unlock()

	if m, err := NewMessage(MessageTypeWelcome, WelcomeData{GameID: t.game.ID(), Seat: seat}); err == nil {
		_ = c.send(m)
	}
	t.commit()
	return nil
}

func (t *Table) detach(c *client) {
	t.mu.Lock()
	delete(t.clients, c)
	t.mu.Unlock()
	t.log.Info("client disconnected", "player", c.name)
}

// handle dispatches one client message. Engine rejections go back to
// the sender only; committed changes go to everyone.
func (t *Table) handle(c *client, msg *Message) {
	var err error
	switch msg.Type {
	case MessageTypeAction:
		var d ActionData
		if err = unmarshal(msg, &d); err == nil {
			var act game.Action
			if act, err = game.ParseAction(d.Action); err == nil {
				err = t.game.Act(c.seat, act, d.RaiseBy)
			}
		}

	case MessageTypeStartHand:
		err = t.game.StartHand(c.name)

	case MessageTypeAddBot:
		var d AddBotData
		if err = unmarshal(msg, &d); err == nil {
			_, err = t.game.AddBot(c.name, d.Name)
		}

	case MessageTypeTopUp:
		var d TopUpData
		if err = unmarshal(msg, &d); err == nil {
			err = t.game.TopUp(c.name, d.Seat, d.Amount)
		}

	case MessageTypePause:
		if err = t.game.Pause(c.name); err == nil {
			t.runner.Stop()
		}

	case MessageTypeResume:
		err = t.game.Resume(c.name)

	case MessageTypeChat:
		var d ChatData
		if err = unmarshal(msg, &d); err == nil {
			t.broadcastChat(c.name, d.Message)
		}
		if err != nil {
			c.sendError("invalid_input", err.Error())
		}
		return

	default:
		c.sendError("invalid_input", fmt.Sprintf("unknown message type %q", msg.Type))
		return
	}

	if err != nil {
		if errors.Is(err, game.ErrInvariantViolation) {
			t.log.Error("invariant violation, hand aborted", "err", err)
		}
		c.sendError(errorCode(err), err.Error())
		return
	}
	t.commit()
}

// commit persists the current snapshot and broadcasts it, then gives
// the bot runner a chance to act.
func (t *Table) commit() {
	t.commitNoSchedule()
	t.runner.Schedule()
}

func (t *Table) commitNoSchedule() {
	snap := t.game.Snapshot()

	t.mu.Lock()
	v, err := t.store.Replace(snap.ID, snap, t.version)
	if err != nil {
		// The table is the single writer, so a conflict means an
		// out-of-band write happened.
		t.log.Error("snapshot replace failed", "err", err)
		t.mu.Unlock()
		return
	}
	t.version = v.Version
	clients := make([]*client, 0, len(t.clients))
	for c := range t.clients {
		clients = append(clients, c)
	}
	t.mu.Unlock()

	for _, c := range clients {
		t.sendState(c, v.Version, snap)
	}
}

func (t *Table) sendState(c *client, version uint64, snap game.Snapshot) {
	m, err := NewMessage(MessageTypeState, StateData{
		Version:  version,
		Snapshot: snap.Redacted(c.seat),
	})
	if err != nil {
		return
	}
	_ = c.send(m)
}

// broadcastChat relays a chat line to every connection. Best effort.
func (t *Table) broadcastChat(from, message string) {
	m, err := NewMessage(MessageTypeChat, ChatData{From: from, Message: message})
	if err != nil {
		return
	}
	t.mu.Lock()
	clients := make([]*client, 0, len(t.clients))
	for c := range t.clients {
		clients = append(clients, c)
	}
	t.mu.Unlock()
	for _, c := range clients {
		_ = c.send(m)
	}
}

// botChat resolves the speaking bot's name and relays its line.
func (t *Table) botChat(seat int, message string) {
	for _, s := range t.game.Snapshot().Seats {
		if s.Index == seat {
			t.broadcastChat(s.Name, message)
			return
		}
	}
}

func unmarshal(msg *Message, v interface{}) error {
	if len(msg.Data) == 0 {
		return fmt.Errorf("missing payload for %q", msg.Type)
	}
	return json.Unmarshal(msg.Data, v)
}

// errorCode maps engine errors onto wire error codes.
func errorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, game.ErrNotEnoughPlayers):
		return "not_enough_players"
	case errors.Is(err, game.ErrInvariantViolation):
		return "invariant_violation"
	case errors.Is(err, game.ErrIllegalAction):
		return "illegal_action"
	default:
		return "invalid_input"
	}
}
