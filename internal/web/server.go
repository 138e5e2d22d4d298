package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rbright/raybot/internal/archive"
	"github.com/rbright/raybot/internal/ipc"
)

// History lists archived sessions. *archive.Store satisfies it.
type History interface {
	List(ctx context.Context, limit int) ([]archive.Summary, error)
	Get(ctx context.Context, sessionID string) (archive.Session, error)
}

const writeTimeout = 5 * time.Second

// Server routes HTTP requests to the interview handler and the view hub.
type Server struct {
	backend ipc.Handler
	hub     *Hub
	history History
	logger  *slog.Logger
}

// NewServer wires a backend (usually the interview runtime) and hub.
// history may be nil when the archive is disabled.
func NewServer(backend ipc.Handler, hub *Hub, history History, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{backend: backend, hub: hub, history: history, logger: logger}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/questions", s.forward("questions"))
		r.Post("/commands/{command}", s.handleCommand)
		r.Get("/transcript.txt", s.handleTranscript)
		r.Get("/history", s.handleHistory)
		r.Get("/history/{sessionID}", s.handleHistorySession)
	})
	r.Get("/ws", s.handleWS)
	return r
}

// ListenAndServe serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("http surface listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// commandBody is the optional JSON body of POST /api/commands/{command}.
type commandBody struct {
	Args []string `json:"args"`
	Text string   `json:"text"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var body commandBody
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "decode request: "+err.Error())
			return
		}
	}

	req := ipc.Request{Command: chi.URLParam(r, "command"), Args: body.Args, Text: body.Text}
	resp := s.backend.Handle(r.Context(), req)
	status := http.StatusOK
	if !resp.OK {
		status = http.StatusConflict
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.forward("status")(w, r)
}

// forward serves a read-only command and returns its Data payload.
func (s *Server) forward(command string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := s.backend.Handle(r.Context(), ipc.Request{Command: command})
		if !resp.OK {
			writeError(w, http.StatusServiceUnavailable, resp.Error)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(resp.Data)
	}
}

func (s *Server) handleTranscript(w http.ResponseWriter, r *http.Request) {
	resp := s.backend.Handle(r.Context(), ipc.Request{Command: "transcript"})
	if !resp.OK {
		writeError(w, http.StatusServiceUnavailable, resp.Error)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="raybot-transcript.txt"`)
	_, _ = w.Write([]byte(resp.Message))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "archive disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	sessions, err := s.history.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []archive.Summary{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleHistorySession(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "archive disabled")
		return
	}
	session, err := s.history.Get(r.Context(), chi.URLParam(r, "sessionID"))
	switch {
	case errors.Is(err, archive.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, session)
	}
}

// handleWS streams slot events: first the current value of every slot, then
// live writes until either side goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept failed", "error", err.Error())
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected close")

	sub, replay := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub)

	ctx := conn.CloseRead(r.Context())
	for _, ev := range replay {
		if err := s.write(ctx, conn, ev); err != nil {
			return
		}
	}

	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case ev, ok := <-sub.Events():
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "subscriber too slow")
				return
			}
			if err := s.write(ctx, conn, ev); err != nil {
				s.logger.Debug("websocket write failed", "error", err.Error())
				return
			}
		}
	}
}

func (s *Server) write(ctx context.Context, conn *websocket.Conn, ev Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
