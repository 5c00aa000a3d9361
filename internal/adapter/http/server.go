// Package http serves health, readiness, metrics and a dry-run parse
// endpoint.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/nws-text-ingest/internal/domain"
	"github.com/couchcryptid/nws-text-ingest/internal/nws"
	"github.com/couchcryptid/nws-text-ingest/internal/nws/dispatch"
)

// maxBulletinBytes bounds the dry-run request body.
const maxBulletinBytes = 10 << 20

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// AllReady is ready when every checker is.
type AllReady []ReadinessChecker

func (a AllReady) CheckReadiness(ctx context.Context) error {
	var errs []error
	for _, c := range a {
		if err := c.CheckReadiness(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Decoder decodes one bulletin without side effects.
type Decoder interface {
	Dispatch(ctx context.Context, raw []byte, now time.Time) (*dispatch.Result, error)
}

// Server exposes health, readiness, metrics and parse HTTP endpoints.
type Server struct {
	httpServer *http.Server
	decoder    Decoder
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz and /metrics
// routes, plus POST /v1/parse when decoder is non-nil.
func NewServer(addr string, ready ReadinessChecker, decoder Decoder, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		decoder: decoder,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if decoder != nil {
		mux.HandleFunc("POST /v1/parse", s.handleParse)
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// ParseResponse is the body of a successful /v1/parse call.
type ParseResponse struct {
	ProductID     string             `json:"product_id,omitempty"`
	Parser        string             `json:"parser"`
	Records       map[string]int     `json:"records"`
	Notifications []nws.Notification `json:"notifications"`
	Warnings      []string           `json:"warnings"`
}

// handleParse decodes the request body as a bulletin. The optional "now"
// query parameter (RFC 3339) anchors the WMO timestamp.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	now := domain.Now()
	if v := r.URL.Query().Get("now"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid now: " + err.Error()})
			return
		}
		now = t
	}

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBulletinBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	res, err := s.decoder.Dispatch(r.Context(), raw, now)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}

	resp := ParseResponse{
		Parser:        res.Parser,
		Records:       make(map[string]int),
		Notifications: res.Notifications,
		Warnings:      res.Warnings(),
	}
	if res.Product != nil {
		resp.ProductID = res.Product.ProductID()
	}
	for _, rec := range res.Records {
		resp.Records[rec.Kind()]++
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
