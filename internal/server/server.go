// Package server exposes the turn engine over HTTP for remote play:
// plain request/response turns plus a websocket stream per game.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/tatianab/lone-garrison/internal/engine"
	"github.com/tatianab/lone-garrison/internal/models"
)

// Options configures the server.
type Options struct {
	APIKey string
	Lang   models.Language
	Logger zerolog.Logger
}

// Server hosts independent game sessions keyed by id. Each session has
// its own engine and random stream; turns within a session are
// serialized by its mutex.
type Server struct {
	opts     Options
	log      zerolog.Logger
	router   *mux.Router
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	mu     sync.Mutex
	engine *engine.Engine
	state  *models.GameState
	log    []models.LogEntry

	subMu sync.Mutex
	subs  map[*websocket.Conn]bool
}

func New(opts Options) *Server {
	s := &Server{
		opts:     opts,
		log:      opts.Logger,
		router:   mux.NewRouter(),
		sessions: make(map[string]*session),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/games", s.handleCreateGame).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}", s.handleGetGame).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}/turn", s.handleTurn).Methods(http.MethodPost)
	api.HandleFunc("/games/{id}/ws", s.handleWebsocket).Methods(http.MethodGet)
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) ListenAndServe(addr string) error {
	s.log.Info().Str("addr", addr).Msg("remote play server listening")
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createGameRequest struct {
	Lang models.Language `json:"lang,omitempty"`
	Seed int64           `json:"seed,omitempty"`
}

type createGameResponse struct {
	ID        string            `json:"id"`
	State     *models.GameState `json:"state"`
	Narrative string            `json:"narrative"`
	Intel     string            `json:"intel,omitempty"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	lang := req.Lang
	if lang == "" {
		lang = s.opts.Lang
	}

	eng, err := engine.New(r.Context(), engine.Options{
		APIKey: s.opts.APIKey,
		Lang:   lang,
		Seed:   req.Seed,
		Logger: s.log,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("create engine")
		writeError(w, http.StatusInternalServerError, "could not create game")
		return
	}

	sess := &session{
		engine: eng,
		state:  eng.NewGame(),
		subs:   make(map[*websocket.Conn]bool),
	}
	res, err := eng.ProcessTurn(context.WithoutCancel(r.Context()), sess.state, engine.StartCommand, "")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not start game")
		return
	}
	res.Patch.Apply(sess.state)
	sess.appendLog("system", res.Narrative)

	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.Info().Str("game", id).Str("lang", string(lang)).Msg("game created")
	writeJSON(w, http.StatusCreated, createGameResponse{
		ID:        id,
		State:     sess.state,
		Narrative: res.Narrative,
		Intel:     res.EnemyIntel,
	})
}

type gameResponse struct {
	State *models.GameState `json:"state"`
	Log   []models.LogEntry `json:"log"`
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "no such game")
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, gameResponse{State: sess.state, Log: sess.log})
}

type turnRequest struct {
	Command string `json:"command"`
}

type turnResponse struct {
	Result *models.TurnResult `json:"result"`
	State  *models.GameState  `json:"state"`
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "no such game")
		return
	}
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Command == "" {
		writeError(w, http.StatusBadRequest, "command required")
		return
	}

	res, err := sess.runTurn(r.Context(), req.Command)
	if err != nil {
		s.log.Error().Err(err).Msg("process turn")
		writeError(w, http.StatusInternalServerError, "turn failed")
		return
	}
	sess.broadcast(res)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, turnResponse{Result: res, State: sess.state})
}

// handleWebsocket streams turns both ways: the client sends commands as
// {"command": ...} and receives every turn result for the session,
// including turns made over plain HTTP.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "no such game")
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade")
		return
	}
	sess.subscribe(conn)
	defer func() {
		sess.unsubscribe(conn)
		conn.Close()
	}()

	for {
		var req turnRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		if req.Command == "" {
			continue
		}
		res, err := sess.runTurn(r.Context(), req.Command)
		if err != nil {
			s.log.Error().Err(err).Msg("process turn")
			continue
		}
		sess.broadcast(res)
	}
}

func (s *Server) session(id string) (*session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (sess *session) runTurn(ctx context.Context, command string) (*models.TurnResult, error) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	res, err := sess.engine.ProcessTurn(ctx, sess.state, command, recentHistory(sess.log))
	if err != nil {
		return nil, err
	}
	res.Patch.Apply(sess.state)
	sess.appendLog("user", command)
	sess.appendLog("system", res.Narrative)
	return res, nil
}

func (sess *session) appendLog(sender, text string) {
	sess.log = append(sess.log, models.LogEntry{ID: uuid.NewString(), Sender: sender, Text: text})
}

func (sess *session) subscribe(conn *websocket.Conn) {
	sess.subMu.Lock()
	defer sess.subMu.Unlock()
	sess.subs[conn] = true
}

func (sess *session) unsubscribe(conn *websocket.Conn) {
	sess.subMu.Lock()
	defer sess.subMu.Unlock()
	delete(sess.subs, conn)
}

func (sess *session) broadcast(res *models.TurnResult) {
	sess.subMu.Lock()
	defer sess.subMu.Unlock()
	for conn := range sess.subs {
		if err := conn.WriteJSON(res); err != nil {
			delete(sess.subs, conn)
			conn.Close()
		}
	}
}

func recentHistory(log []models.LogEntry) string {
	start := len(log) - 6
	if start < 0 {
		start = 0
	}
	history := ""
	for _, entry := range log[start:] {
		if history != "" {
			history += "\n"
		}
		history += entry.Sender + ": " + entry.Text
	}
	return history
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
