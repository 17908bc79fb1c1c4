package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"lsmkv/pkg/dberrors"
	"lsmkv/pkg/store"
	"lsmkv/pkg/types"
)

const (
	contentTypeJSON        = "application/json"
	defaultHTTPPort        = "8080"
	defaultShutdownTimeout = time.Second * 5
	defaultScanLimit       = 100
	maxScanLimit           = 10000
)

type iStoreAPI interface {
	Put(key, value []byte) error
	Get(key []byte) ([]byte, bool, error)
	Scan(opts store.ScanOptions, fn func(types.Entry) bool) error
	Flush() error
	Stats() store.Stats
}

// Server exposes a store over HTTP.
type Server struct {
	store      iStoreAPI
	httpServer *http.Server
	URL        string
	addr       string

	readHeaderTimeout time.Duration
}

// NewServer creates a new server instance
func NewServer(st iStoreAPI, port string) *Server {
	if port == "" {
		port = defaultHTTPPort
	}
	return &Server{
		store:             st,
		URL:               "http://localhost:" + port,
		addr:              ":" + port,
		readHeaderTimeout: time.Second,
	}
}

func (s *Server) SetReadHeaderTimeout(d time.Duration) {
	if d > 0 {
		s.readHeaderTimeout = d
	}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	s.httpServer = &http.Server{
		Handler:           s.createRouter(),
		ReadHeaderTimeout: s.readHeaderTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("HTTP server started", "addr", s.URL)
	return nil
}

// Stop stops the server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	return nil
}

// createRouter builds chi router
func (s *Server) createRouter() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Put("/api/string", s.handlePut)
	r.Get("/api/string", s.handleGet)
	r.Get("/api/scan", s.handleScan)
	r.Post("/api/flush", s.handleFlush)

	return r
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Warn("Error encoding response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NewOKResponse())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, NewStatsResponse(s.store.Stats()))
}

func (s *Server) handlePut(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("Failed to parse form"))
		return
	}

	key := r.FormValue("key")
	value := r.FormValue("value")

	// an empty value is valid; only a missing one is not
	if key == "" || !r.Form.Has("value") {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("Missing key or value"))
		return
	}

	if err := s.store.Put([]byte(key), []byte(value)); err != nil {
		if errors.Is(err, dberrors.ErrInvalidArgument) {
			s.writeJSON(w, http.StatusBadRequest, NewErrorResponse(err.Error()))
			return
		}
		slog.Error("put failed", "key", key, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, NewErrorResponse(err.Error()))
		return
	}

	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("Missing key"))
		return
	}

	value, found, err := s.store.Get([]byte(key))
	if err != nil {
		slog.Error("get failed", "key", key, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, NewErrorResponse(err.Error()))
		return
	}

	if !found {
		s.writeJSON(w, http.StatusNotFound, NewErrorResponse("Key not found"))
		return
	}

	s.writeJSON(w, http.StatusOK, NewValueResponse(string(value)))
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultScanLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxScanLimit {
			s.writeJSON(w, http.StatusBadRequest, NewErrorResponse("Invalid limit"))
			return
		}
		limit = n
	}

	opts := store.ScanOptions{Limit: limit}
	if q.Has("start") {
		opts.Start = []byte(q.Get("start"))
	}
	if q.Has("end") {
		opts.End = []byte(q.Get("end"))
	}

	pairs := make([]Pair, 0)
	err := s.store.Scan(opts, func(e types.Entry) bool {
		pairs = append(pairs, Pair{Key: string(e.Key), Value: string(e.Value)})
		return true
	})
	if err != nil {
		slog.Error("scan failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, NewErrorResponse(err.Error()))
		return
	}

	s.writeJSON(w, http.StatusOK, NewEntriesResponse(pairs))
}

func (s *Server) handleFlush(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Flush(); err != nil {
		slog.Error("flush failed", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, NewErrorResponse(err.Error()))
		return
	}
	s.writeJSON(w, http.StatusOK, NewSuccessResponse())
}
