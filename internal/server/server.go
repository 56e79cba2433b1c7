// Package server hosts hold'em tables over websockets. Clients join a
// seat, send betting actions and chat, and receive a redacted snapshot
// broadcast after every committed action. Bot seats run server-side.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/homegame/holdem/internal/store"
)

// Server hosts the configured tables.
type Server struct {
	cfg      *Config
	log      *log.Logger
	store    *store.Store
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	tables map[string]*Table
}

// New builds a server from config: one hosted table per game block,
// with its bots already seated. The clock is injected so tests can
// drive bot think delays synthetically.
func New(cfg *Config, logger *log.Logger, clock quartz.Clock, seed int64) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clock == nil {
		clock = quartz.NewReal()
	}

	s := &Server{
		cfg:   cfg,
		log:   logger.WithPrefix("server"),
		store: store.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Private home games run on trusted networks.
				return true
			},
		},
		tables: make(map[string]*Table),
	}

	thinkDelay := time.Duration(cfg.Server.BotThinkMS) * time.Millisecond
	for i, gc := range cfg.Games {
		tbl, err := newTable(gc, s.store, clock, thinkDelay, seed+int64(i)*2, logger)
		if err != nil {
			return nil, err
		}
		s.tables[gc.Name] = tbl
		s.log.Info("table hosted", "name", gc.Name, "game", tbl.game.ID(), "bots", gc.Bots)
	}
	return s, nil
}

// Handler returns the HTTP handler: /ws for the table protocol,
// /games for the snapshot listing, /health for liveness.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/games", s.handleGames)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Run serves until ctx is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.cfg.ListenAddress(),
		Handler: s.Handler(),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// handleWebSocket upgrades the connection and runs its read loop. The
// first message must be a join naming the table and player.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	c := &client{conn: conn, seat: -1}

	var msg Message
	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	if msg.Type != MessageTypeJoin {
		c.sendError("invalid_input", "first message must be a join")
		return
	}
	var join JoinData
	if err := json.Unmarshal(msg.Data, &join); err != nil || join.PlayerName == "" {
		c.sendError("invalid_input", "malformed join")
		return
	}

	s.mu.RLock()
	tbl, ok := s.tables[join.Game]
	s.mu.RUnlock()
	if !ok {
		c.sendError("invalid_input", fmt.Sprintf("no such game %q", join.Game))
		return
	}

	c.name = join.PlayerName
	if err := tbl.attach(c); err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}
	defer tbl.detach(c)
	s.log.Info("client joined", "player", c.name, "table", join.Game, "seat", c.seat)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		tbl.handle(c, &msg)
	}
}

// handleGames lists hosted games as stored versioned snapshots, with
// all hole cards hidden.
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	list := s.store.List()
	for i := range list {
		list[i].Snapshot = list[i].Snapshot.Redacted(-1)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(list); err != nil {
		s.log.Error("encode game list", "err", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
