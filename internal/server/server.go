package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/reikiduel/reiki-server-go/internal/bot"
	"github.com/reikiduel/reiki-server-go/internal/catalog"
	"github.com/reikiduel/reiki-server-go/internal/config"
	"github.com/reikiduel/reiki-server-go/internal/game"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// duel couples one running session with the hub that fans its events out to
// websocket clients.
type duel struct {
	sess   *game.Session
	hub    *Hub
	cancel context.CancelFunc
}

func (d *duel) finished() bool {
	select {
	case <-d.sess.Done():
		return true
	default:
		return false
	}
}

// Server hosts duels. Sessions are created over HTTP and then played and
// watched over websocket.
type Server struct {
	logger *zap.Logger
	cfg    *config.Config
	defs   []catalog.CardDefinition

	mu    sync.RWMutex
	duels map[string]*duel
}

func New(cfg *config.Config, defs []catalog.CardDefinition, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger: logger,
		cfg:    cfg,
		defs:   defs,
		duels:  make(map[string]*duel),
	}
}

// Handler returns the HTTP surface: session CRUD under /api and the duel
// websocket at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/sessions", s.handleSessions)
	mux.HandleFunc("/api/sessions/", s.handleSessionByID)
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Shutdown cancels every running duel and stops their hubs.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.duels {
		d.cancel()
		d.hub.stop()
		delete(s.duels, id)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(s.logger, w, http.StatusOK, map[string]string{"status": "ok"})
}

type createRequest struct {
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	Seed      uint64 `json:"seed"`
	NoShuffle bool   `json:"no_shuffle"`
}

type createResponse struct {
	SessionID string `json:"session_id"`
	Mode      string `json:"mode"`
}

type sessionSummary struct {
	SessionID  string     `json:"session_id"`
	Mode       game.Mode  `json:"mode"`
	Turn       int        `json:"turn"`
	Phase      string     `json:"phase"`
	ActiveSeat game.Seat  `json:"active_seat"`
	Winner     *game.Seat `json:"winner,omitempty"`
	Finished   bool       `json:"finished"`
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listSessions(w)
	case http.MethodPost:
		s.createSession(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) listSessions(w http.ResponseWriter) {
	s.mu.RLock()
	summaries := make([]sessionSummary, 0, len(s.duels))
	for id, d := range s.duels {
		snap := d.sess.Snapshot()
		summaries = append(summaries, sessionSummary{
			SessionID:  id,
			Mode:       snap.Mode,
			Turn:       snap.Turn,
			Phase:      snap.Phase,
			ActiveSeat: snap.ActiveSeat,
			Winner:     snap.Winner,
			Finished:   d.finished(),
		})
	}
	s.mu.RUnlock()

	writeJSON(s.logger, w, http.StatusOK, summaries)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	// An empty body means all defaults.
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}

	mode := game.ModeHuman
	opponent := bot.New(s.logger.Named("bot"), 0)
	drivers := [2]game.Driver{nil, opponent}
	delay := time.Duration(0)
	if req.Mode == string(game.ModeAuto) {
		mode = game.ModeAuto
		drivers = [2]game.Driver{opponent, opponent}
		delay = s.cfg.Game.StepDelay
	}

	name := req.Name
	if name == "" {
		name = "Player 1"
	}

	sess, err := game.NewSession(game.Options{
		Names:     [2]string{name, "Reiki Bot"},
		Mode:      mode,
		Rules:     s.cfg.Game.Rules(),
		Catalog:   s.defs,
		Drivers:   drivers,
		Logger:    s.logger,
		Seed:      req.Seed,
		NoShuffle: req.NoShuffle,
		StepDelay: delay,
	})
	if err != nil {
		s.logger.Error("session bootstrap failed", zap.Error(err))
		http.Error(w, "session bootstrap failed", http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	if len(s.duels) >= s.cfg.Server.MaxSessions {
		s.reapFinishedLocked()
	}
	if len(s.duels) >= s.cfg.Server.MaxSessions {
		s.mu.Unlock()
		http.Error(w, "session limit reached", http.StatusServiceUnavailable)
		return
	}

	hub := newHub(s.logger.Named("hub"))
	go hub.run()
	sess.Events().Subscribe(func(ev game.Event) {
		frame, ok := marshalFrame(s.logger, "event", ev)
		if !ok {
			return
		}
		select {
		case hub.broadcast <- frame:
		case <-hub.done:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.duels[sess.ID()] = &duel{sess: sess, hub: hub, cancel: cancel}
	s.mu.Unlock()

	go sess.Run(ctx)

	s.logger.Info("session created",
		zap.String("session_id", sess.ID()),
		zap.String("mode", string(mode)),
		zap.String("player", name),
	)
	writeJSON(s.logger, w, http.StatusCreated, createResponse{SessionID: sess.ID(), Mode: string(mode)})
}

// reapFinishedLocked drops finished duels to make room. Callers hold the
// write lock.
func (s *Server) reapFinishedLocked() {
	for id, d := range s.duels {
		if d.finished() {
			d.hub.stop()
			delete(s.duels, id)
		}
	}
}

func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	s.mu.RLock()
	d, ok := s.duels[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(s.logger, w, http.StatusOK, d.sess.Snapshot())
	case http.MethodDelete:
		d.cancel()
		w.WriteHeader(http.StatusAccepted)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	s.mu.RLock()
	d, ok := s.duels[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	seat, err := seatFromQuery(r.URL.Query().Get("seat"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		logger: s.logger.Named("ws"),
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		hub:    d.hub,
		sess:   d.sess,
		seat:   seat,
	}

	// The hello frame carries the current state so late joiners and
	// spectators can render immediately.
	if frame, ok := marshalFrame(client.logger, "hello", d.sess.Snapshot()); ok {
		client.send <- frame
	}

	select {
	case d.hub.register <- client:
	case <-d.hub.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func seatFromQuery(raw string) (*game.Seat, error) {
	switch raw {
	case "":
		return nil, nil
	case "0":
		seat := game.SeatFirst
		return &seat, nil
	case "1":
		seat := game.SeatSecond
		return &seat, nil
	default:
		return nil, errSeatParam
	}
}

var errSeatParam = errors.New("seat must be 0 or 1")

func writeJSON(logger *zap.Logger, w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("write response", zap.Error(err))
	}
}
