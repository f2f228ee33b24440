/*
Package server exposes duriancare over a local HTTP API.

The API mirrors the app's screens: the dashboard summary, the capture flow
(upload, classify, commit or discard), history browsing with confirmed
deletes, onboarding and factory reset. Each upload opens a capture session
that holds its own pipeline until it is committed, discarded or expires.
*/
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/khanglvm/duriancare/internal/capture"
	"github.com/khanglvm/duriancare/internal/history"
)

const (
	defaultSessionTTL     = 10 * time.Minute
	defaultMaxUploadBytes = 10 << 20
	defaultRecentLimit    = 5
	shutdownTimeout       = 10 * time.Second
)

// Store is the part of the record store the server manages directly.
type Store interface {
	Onboarded() bool
	SetOnboarded() error
	Reset() error
}

// PipelineFactory creates a fresh pipeline for a capture session.
type PipelineFactory func() *capture.Pipeline

// Options configures a Server.
type Options struct {
	Addr           string
	SessionTTL     time.Duration
	MaxUploadBytes int64

	// RecentLimit is the number of records in the dashboard summary.
	RecentLimit int

	// Haptic is reported to the front end on the info endpoint.
	Haptic bool
}

// Server serves the HTTP API.
type Server struct {
	store       Store
	history     *history.Manager
	newPipeline PipelineFactory
	opts        Options

	sessions *sessionTable
	router   *mux.Router
}

// New creates a server.
func New(store Store, hist *history.Manager, newPipeline PipelineFactory, opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = defaultSessionTTL
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = defaultRecentLimit
	}

	s := &Server{
		store:       store,
		history:     hist,
		newPipeline: newPipeline,
		opts:        opts,
		sessions:    newSessionTable(opts.SessionTTL),
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(logRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/summary", s.handleSummary).Methods(http.MethodGet)
	api.HandleFunc("/info", s.handleInfo).Methods(http.MethodGet)

	api.HandleFunc("/records", s.handleListRecords).Methods(http.MethodGet)
	api.HandleFunc("/records/delete", s.handleDeleteRecords).Methods(http.MethodPost)
	api.HandleFunc("/records/{id:[0-9]+}", s.handleGetRecord).Methods(http.MethodGet)
	api.HandleFunc("/records/{id:[0-9]+}", s.handleDeleteRecord).Methods(http.MethodDelete)

	api.HandleFunc("/assessments", s.handleCreateAssessment).Methods(http.MethodPost)
	api.HandleFunc("/assessments/{session}/commit", s.handleCommitAssessment).Methods(http.MethodPost)
	api.HandleFunc("/assessments/{session}", s.handleDiscardAssessment).Methods(http.MethodDelete)

	api.HandleFunc("/onboarding", s.handleGetOnboarding).Methods(http.MethodGet)
	api.HandleFunc("/onboarding", s.handleCompleteOnboarding).Methods(http.MethodPost)
	api.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)

	return r
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully and
// discards every open capture session.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[server] listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweepSessions(sweepCtx)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		s.sessions.clear()
		if err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Printf("[server] stopped")
		return nil

	case err := <-errCh:
		s.sessions.clear()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}

func (s *Server) sweepSessions(ctx context.Context) {
	interval := s.opts.SessionTTL / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.sweep(); n > 0 {
				log.Printf("[server] expired %d capture session(s)", n)
			}
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("[server] %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
