// Package api exposes the HTTP interface for the feed service.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/senthilkr/tamil-news-feed/internal/config"
	"github.com/senthilkr/tamil-news-feed/internal/feed"
	"github.com/senthilkr/tamil-news-feed/internal/metrics"
	"github.com/senthilkr/tamil-news-feed/internal/store/local"
)

// Refresher triggers a synchronous out-of-band scrape.
type Refresher interface {
	RunFresh(ctx context.Context) (feed.Snapshot, error)
}

// Server wires HTTP handlers to the snapshot store, selection store, and
// cycle status.
type Server struct {
	router    chi.Router
	snapshots feed.SnapshotStore
	selection *local.SelectionStore
	status    *feed.CycleStatus
	refresher Refresher
	logger    *zap.Logger
	cfg       config.Config
}

// NewServer constructs a Server with middleware and routes.
func NewServer(
	snapshots feed.SnapshotStore,
	selection *local.SelectionStore,
	status *feed.CycleStatus,
	refresher Refresher,
	cfg config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		snapshots: snapshots,
		selection: selection,
		status:    status,
		refresher: refresher,
		logger:    logger,
		cfg:       cfg,
	}
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(timeoutMiddleware(5 * time.Minute))

	r.Get("/healthz", s.healthz)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/", s.index)

	r.Route("/api", func(r chi.Router) {
		r.Get("/news", s.getNews)
		r.Get("/newspapers", s.getNewspapers)
		r.Post("/newspapers", s.saveNewspapers)
		r.Get("/status", s.getStatus)
	})

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	path := s.cfg.Server.IndexFile
	if path == "" {
		http.NotFound(w, r)
		return
	}
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

// getNews serves the live snapshot. mode=fresh blocks on a full out-of-band
// scrape that replaces the live artifact before responding.
func (s *Server) getNews(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = "live"
	}

	var snap feed.Snapshot
	var err error
	if mode == "fresh" && s.refresher != nil {
		s.logger.Info("manual fresh scrape requested")
		snap, err = s.refresher.RunFresh(r.Context())
	} else {
		snap, err = s.snapshots.ReadLive()
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	articles := snap.Articles
	if articles == nil {
		articles = []feed.Article{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":      "success",
		"total_count": len(articles),
		"categories":  map[string]any{"all_news": articles},
		"timestamp":   time.Now().Format("2006-01-02 15:04:05"),
		"mode":        mode,
	})
}

func (s *Server) getNewspapers(w http.ResponseWriter, _ *http.Request) {
	selected := make(map[string]bool)
	for _, k := range s.selection.Selection() {
		selected[k] = true
	}
	type entry struct {
		Key      string `json:"key"`
		Tamil    string `json:"tamil"`
		English  string `json:"english"`
		Selected bool   `json:"selected"`
	}
	var out []entry
	for _, src := range feed.Catalogue() {
		out = append(out, entry{
			Key:      src.Key,
			Tamil:    src.Tamil,
			English:  src.English,
			Selected: selected[src.Key],
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"newspapers": out})
}

func (s *Server) saveNewspapers(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Selected []string `json:"selected"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	saved, err := s.selection.Save(body.Selected)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.logger.Info("selection saved", zap.Strings("keys", saved))
	s.writeJSON(w, http.StatusOK, map[string]any{"status": "saved", "selected": saved})
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	view := s.status.View()
	var lastScrape any
	if !view.LastCycle.IsZero() {
		lastScrape = view.LastCycle.Format(time.RFC3339)
	}
	var liveMtime int64
	if mtime, ok := s.snapshots.LiveModTime(); ok {
		liveMtime = mtime.Unix()
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"is_scraping": view.Running,
		"last_scrape": lastScrape,
		"live_mtime":  liveMtime,
		"progress":    view.Progress,
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.status),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

func recoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered", zap.Any("error", rec))
					http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func timeoutMiddleware(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, d, "request timed out")
	}
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("write JSON failed", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
