package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/agbru/lasercalc/internal/logging"
	"github.com/agbru/lasercalc/internal/metrics"
	"github.com/agbru/lasercalc/internal/orchestration"
)

const (
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout = 5 * time.Second
	// ReadHeaderTimeout guards against slow clients.
	ReadHeaderTimeout = 5 * time.Second
)

// SessionSource provides the snapshot served at /session.
type SessionSource interface {
	Session() orchestration.Session
}

// Server is the local status endpoint.
type Server struct {
	addr     string
	metrics  *metrics.Metrics
	logger   logging.Logger
	sessions SessionSource
	security SecurityConfig
	mux      *http.ServeMux
}

// New builds a server listening on addr. sessions may be nil, in which case
// /session answers 404.
func New(addr string, m *metrics.Metrics, sessions SessionSource, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	s := &Server{
		addr:     addr,
		metrics:  m,
		logger:   logger,
		sessions: sessions,
		security: DefaultSecurityConfig(),
		mux:      http.NewServeMux(),
	}
	s.route("/metrics", s.handleMetrics)
	s.route("/healthz", s.handleHealth)
	s.route("/session", s.handleSession)
	return s
}

func (s *Server) route(path string, h http.HandlerFunc) {
	s.mux.HandleFunc(path, SecurityMiddleware(s.security, s.metricsMiddleware(h)))
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.mux }

// Run serves until ctx is done, then shuts down gracefully. It returns nil
// after a clean shutdown.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status endpoint listening", logging.String("addr", ln.Addr().String()))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Debug("status endpoint stopped")
	return nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware counts served requests by path and status code.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			s.metrics.RecordHTTP(r.URL.Path, strconv.Itoa(rec.status))
		}()
		next(rec, r)
	}
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("method not allowed",
		logging.String("method", r.Method),
		logging.String("path", r.URL.Path),
	)
	w.Header().Set("Allow", http.MethodGet)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	s.writeJSON(w, map[string]string{"status": "ok"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r)
		return
	}
	if s.sessions == nil {
		http.NotFound(w, r)
		return
	}
	s.writeJSON(w, s.sessions.Session())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("write response", err)
	}
}
