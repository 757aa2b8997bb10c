// Package server exposes eeformula over HTTP: an HTML form, a JSON solve
// endpoint and the tool-call interface used by agent frameworks.
//
//	GET  /               HTML form
//	POST /               form submission
//	POST /api/v1/solve   {"name": "...", "values": {...}}
//	POST /tool           execute a tool call
//	GET  /schema         tool schema for agent registration
//	GET  /health         liveness check
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/njchilds90/eeformula"
	"github.com/njchilds90/eeformula/internal/config"
)

// Server serves eeformula over HTTP. Requests share no mutable state
// beyond the rate limiter.
type Server struct {
	cfg     config.ServerConfig
	log     *slog.Logger
	limiter *RateLimiter
	started time.Time
	handler http.Handler
}

// New builds a Server. A nil logger discards logs.
func New(cfg config.ServerConfig, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	defaults := config.Default().Server
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = defaults.MaxBodyBytes
	}
	if cfg.ShutdownTimeout.Duration <= 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	s := &Server{cfg: cfg, log: log, started: time.Now()}
	if cfg.RateLimit > 0 && cfg.RateWindow.Duration > 0 {
		s.limiter = NewRateLimiter(cfg.RateLimit, cfg.RateWindow.Duration)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleForm)
	mux.HandleFunc("/api/v1/solve", s.handleSolve)
	mux.HandleFunc("/tool", s.handleTool)
	mux.HandleFunc("/schema", s.handleSchema)
	mux.HandleFunc("/health", s.handleHealth)

	var h http.Handler = mux
	h = rateLimit(s.limiter, h)
	h = cors(cfg.CORSOrigins, h)
	h = recoverPanics(log, h)
	h = logRequests(log, h)
	h = requestID(h)
	s.handler = h
	return s
}

// Handler returns the fully wrapped handler.
func (s *Server) Handler() http.Handler { return s.handler }

// Run listens on the configured address until ctx is cancelled, then
// drains in-flight requests for at most ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout.Duration,
		ReadTimeout:       s.cfg.ReadTimeout.Duration,
		WriteTimeout:      s.cfg.WriteTimeout.Duration,
		IdleTimeout:       s.cfg.IdleTimeout.Duration,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}

	s.log.Info("HTTP server listening", "addr", ln.Addr().String(), "rate_limit", s.cfg.RateLimit)

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("HTTP server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout.Duration)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// solveRequest is the body of POST /api/v1/solve.
type solveRequest struct {
	Name   string                 `json:"name"`
	Values map[string]interface{} `json:"values"`
}

// Response is the envelope of /api/v1/solve.
type Response struct {
	Status    string            `json:"status"`
	Data      *eeformula.Result `json:"data,omitempty"`
	Message   string            `json:"message"`
	Error     *ErrorInfo        `json:"error,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// ErrorInfo classifies a failed solve.
type ErrorInfo struct {
	Code        string   `json:"code"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Error codes.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeEmptyQuery   = "EMPTY_QUERY"
	CodeNotFound     = "NOT_FOUND"
	CodeSolveFailed  = "SOLVE_FAILED"
	CodeInvalidValue = "INVALID_VALUE"
)

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := RequestID(r.Context())
	fail := func(status int, code, msg string, suggestions []string) {
		writeJSONStatus(w, status, Response{
			Status:    "error",
			Message:   msg,
			Error:     &ErrorInfo{Code: code, Suggestions: suggestions},
			RequestID: id,
		})
	}

	var req solveRequest
	if err := s.decode(w, r, &req); err != nil {
		fail(http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	values, err := eeformula.BindingsFromJSON(req.Values)
	if err != nil {
		fail(http.StatusBadRequest, CodeBadRequest, "values: "+err.Error(), nil)
		return
	}

	res, err := eeformula.HandleResult(req.Name, values)
	switch {
	case err == nil:
		writeJSONStatus(w, http.StatusOK, Response{Status: "ok", Data: &res, Message: res.Text, RequestID: id})
	case errors.Is(err, eeformula.ErrEmptyQuery):
		fail(http.StatusBadRequest, CodeEmptyQuery, eeformula.Message(err), nil)
	case errors.Is(err, eeformula.ErrNotFound):
		fail(http.StatusNotFound, CodeNotFound, eeformula.Message(err), eeformula.Suggest(req.Name, 3))
	case errors.Is(err, eeformula.ErrInvalidValue):
		fail(http.StatusUnprocessableEntity, CodeInvalidValue, eeformula.Message(err), nil)
	default:
		s.log.Debug("solve failed", "name", req.Name, "error", err, "request_id", id)
		fail(http.StatusUnprocessableEntity, CodeSolveFailed, eeformula.Message(err), nil)
	}
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req eeformula.ToolRequest
	if err := s.decode(w, r, &req); err != nil {
		writeJSONStatus(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.log.Debug("tool call", "tool", req.Tool, "request_id", RequestID(r.Context()))
	writeJSONStatus(w, http.StatusOK, eeformula.HandleToolCall(req))
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, eeformula.ToolSpec())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	writeJSONStatus(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"time":           now.UTC().Format(time.RFC3339),
		"started":        humanize.RelTime(s.started, now, "ago", "from now"),
		"uptime_seconds": int64(now.Sub(s.started).Seconds()),
		"formulas":       len(eeformula.Names()),
	})
}

// decode reads exactly one JSON value of at most MaxBodyBytes, rejecting
// unknown fields and trailing data.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("invalid JSON: trailing data")
	}
	return nil
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}
