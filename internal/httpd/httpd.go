// Package httpd exposes the repository over HTTP. The protocol carries
// its own error channel inside the XML body, so every response is
// served with status 200 regardless of outcome.
package httpd

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Engine handles one query-string-encoded request and always produces a
// response document.
type Engine interface {
	HandleRequest(ctx context.Context, rawQuery string) []byte
}

// Handler serves protocol requests over GET and POST.
type Handler struct {
	engine Engine
	logger *slog.Logger
}

// NewHandler creates a Handler over the given engine.
func NewHandler(engine Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{engine: engine, logger: logger}
}

// ServeHTTP implements http.Handler. GET requests pass the query string
// through verbatim; POST requests re-encode the form body so both
// transports reach the engine identically.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := uuid.Must(uuid.NewV7()).String()

	var rawQuery string
	switch r.Method {
	case http.MethodGet:
		rawQuery = r.URL.RawQuery
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "malformed form body", http.StatusBadRequest)
			return
		}
		rawQuery = r.PostForm.Encode()
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body := h.engine.HandleRequest(r.Context(), rawQuery)

	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	if _, err := w.Write(body); err != nil {
		h.logger.Error("writing response", "request_id", reqID, "error", err)
		return
	}

	h.logger.Info("request served",
		"request_id", reqID,
		"method", r.Method,
		"remote", r.RemoteAddr,
		"bytes", len(body),
		"elapsed", time.Since(start),
	)
}

// Server wraps http.Server with graceful shutdown.
type Server struct {
	srv    *http.Server
	logger *slog.Logger
}

// NewServer creates a Server listening on addr and serving the engine at
// every path.
func NewServer(addr string, engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/", NewHandler(engine, logger))
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down", "addr", s.srv.Addr)
		return s.srv.Shutdown(shutdownCtx)
	}
}
