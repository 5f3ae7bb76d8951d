package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server is a small in-memory stand-in for the remote quote endpoint. It
// serves the same routes the Client uses so quoter can be exercised without
// the public placeholder service.
type Server struct {
	mu      sync.Mutex
	records []Record
	nextID  int64
	offline bool

	router chi.Router
	log    *zap.Logger
}

// DefaultSeed returns the records a fresh Server starts with.
func DefaultSeed() []Record {
	texts := []string{
		"The best time to plant a tree was 20 years ago. The second best time is now.",
		"Life is what happens to you while you're busy making other plans.",
		"Well done is better than well said.",
		"Simplicity is the ultimate sophistication.",
		"Whatever you are, be a good one.",
	}
	out := make([]Record, 0, len(texts))
	for i, text := range texts {
		out = append(out, Record{ID: int64(i + 1), UserID: 1, Title: text})
	}
	return out
}

// NewServer builds a Server holding seed.
func NewServer(seed []Record, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{log: logger}
	for _, r := range seed {
		s.records = append(s.records, r)
		if r.ID > s.nextID {
			s.nextID = r.ID
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Use(s.availability)

	r.Route(postsPath, func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Head("/", s.handleHead)
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Records returns a copy of the stored records.
func (s *Server) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Put replaces or appends a record by id. Tests use it to stage remote edits.
func (s *Server) Put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].ID == rec.ID {
			s.records[i] = rec
			return
		}
	}
	if rec.ID == 0 {
		s.nextID++
		rec.ID = s.nextID
	} else if rec.ID > s.nextID {
		s.nextID = rec.ID
	}
	s.records = append(s.records, rec)
}

// SetOffline makes every request fail with 503 until cleared.
func (s *Server) SetOffline(offline bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.offline = offline
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("simulated remote listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) availability(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		offline := s.offline
		s.mu.Unlock()
		if offline {
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records := s.Records()
	if raw := r.URL.Query().Get("_limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			http.Error(w, "invalid _limit", http.StatusBadRequest)
			return
		}
		if limit < len(records) {
			records = records[:limit]
		}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleHead(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	for _, rec := range s.Records() {
		if rec.ID == id {
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}
	http.NotFound(w, r)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var rec Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if rec.QuoteText() == "" {
		http.Error(w, "title or text required", http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	s.nextID++
	rec.ID = s.nextID
	s.records = append(s.records, rec)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
