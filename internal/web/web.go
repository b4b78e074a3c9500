package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"busyfeed/internal/busy"
	"busyfeed/internal/config"
	"busyfeed/internal/feed"
	appLog "busyfeed/internal/log"
	"busyfeed/internal/wire"
	"busyfeed/internal/zone"
)

// Server provides the HTTP API: /health and /api/freebusy.
type Server struct {
	cfg     *config.Config
	fetcher *feed.Fetcher
	mux     *http.ServeMux

	// cached feed bodies, keyed by feed ID. The engine stays stateless;
	// this cache is an explicit {fetchedAt, value} record owned here,
	// with freshness controlled by cfg.CacheTTLSeconds.
	cacheMu sync.RWMutex
	cache   map[string]feedCacheEntry
}

// feedCacheEntry is the externally-owned cache record for one feed.
type feedCacheEntry struct {
	FetchedAt time.Time
	Body      []byte
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, fetcher *feed.Fetcher) *Server {
	s := &Server{
		cfg:     cfg,
		fetcher: fetcher,
		mux:     http.NewServeMux(),
		cache:   make(map[string]feedCacheEntry),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/freebusy", s.handleFreeBusy)
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	if s.cfg.BasicAuth.Username == "" || s.cfg.BasicAuth.Password == "" {
		return false
	}
	return true
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// /health is always exposed without auth.
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="busyfeed", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleFreeBusy fetches (or reuses) the requested feed, normalizes it
// and responds with either the JSON report or, with format=ics, the
// serialized VFREEBUSY document.
func (s *Server) handleFreeBusy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	src, ok := s.cfg.Feed(r.URL.Query().Get("src"))
	if !ok {
		http.Error(w, "unknown feed", http.StatusNotFound)
		return
	}

	weeks := s.cfg.Weeks
	if v := r.URL.Query().Get("weeks"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < busy.MinWeeks || n > busy.MaxWeeks {
			http.Error(w, "invalid weeks", http.StatusBadRequest)
			return
		}
		weeks = n
	}

	body, err := s.feedBody(r.Context(), src)
	if err != nil {
		appLog.Error("freebusy: feed fetch failed", err, "id", src.ID)
		http.Error(w, "upstream feed unavailable", http.StatusBadGateway)
		return
	}

	report, ics, err := s.normalize(body, weeks, time.Now())
	if err != nil {
		// Parser internals and feed content stay out of the response.
		appLog.Error("freebusy: normalization failed", err, "id", src.ID)
		http.Error(w, "upstream feed unavailable", http.StatusBadGateway)
		return
	}

	if r.URL.Query().Get("format") == "ics" {
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		_, _ = w.Write([]byte(ics))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(report)
}

// feedBody returns the cached feed body when it is still fresh, and
// refetches otherwise.
func (s *Server) feedBody(ctx context.Context, src config.FeedConfig) ([]byte, error) {
	ttl := time.Duration(s.cfg.CacheTTLSeconds) * time.Second

	s.cacheMu.RLock()
	entry, ok := s.cache[src.ID]
	s.cacheMu.RUnlock()
	if ok && time.Since(entry.FetchedAt) < ttl {
		return entry.Body, nil
	}

	res, err := s.fetcher.Fetch(ctx, feed.Source{ID: src.ID, URL: src.URL})
	if err != nil {
		return nil, err
	}

	s.cacheMu.Lock()
	s.cache[src.ID] = feedCacheEntry{FetchedAt: time.Now(), Body: res.Body}
	s.cacheMu.Unlock()
	return res.Body, nil
}

// RefreshAll refetches every configured feed into the cache. Invoked by
// the cron schedule so API requests mostly hit fresh cache entries.
func (s *Server) RefreshAll(ctx context.Context) {
	for _, f := range s.cfg.Feeds {
		res, err := s.fetcher.Fetch(ctx, feed.Source{ID: f.ID, URL: f.URL})
		if err != nil {
			appLog.Error("refresh: feed fetch failed", err, "id", f.ID)
			continue
		}
		s.cacheMu.Lock()
		s.cache[f.ID] = feedCacheEntry{FetchedAt: time.Now(), Body: res.Body}
		s.cacheMu.Unlock()
	}
}

// NormalizeOnce fetches one configured feed and returns its serialized
// VFREEBUSY report. Used by the one-shot CLI mode.
func (s *Server) NormalizeOnce(ctx context.Context, feedID string) (string, error) {
	src, ok := s.cfg.Feed(feedID)
	if !ok {
		return "", fmt.Errorf("unknown feed %q", feedID)
	}
	body, err := s.feedBody(ctx, src)
	if err != nil {
		return "", err
	}
	_, ics, err := s.normalize(body, s.cfg.Weeks, time.Now())
	return ics, err
}

// normalize runs the full pipeline: parse, window, clip/merge, render.
func (s *Server) normalize(body []byte, weeks int, now time.Time) (wire.Report, string, error) {
	owner, err := zone.Load(s.cfg.OwnerTimezone)
	if err != nil {
		// Invalid configured zone degrades to UTC; only an explicit
		// per-value TZID is allowed to fail the feed.
		appLog.Warn("owner timezone invalid, using UTC", "zone", s.cfg.OwnerTimezone)
		owner = time.UTC
	}

	intervals, err := feed.Parse(body, feed.Options{
		OwnerZone:         owner,
		DefaultTZFallback: s.cfg.DefaultTZFallback,
		Warn:              func(msg string) { appLog.Warn("feed anomaly", "detail", msg) },
	})
	if err != nil {
		return wire.Report{}, "", err
	}

	win, err := busy.BuildWindow(weeks, now, owner)
	if err != nil {
		return wire.Report{}, "", err
	}

	merged := busy.ClipMerge(intervals, win.Start, win.EndExclusive)
	return wire.NewReport(win, merged), wire.Render(win, merged, "busyfeed", now), nil
}

// StartServer starts an HTTP server bound to cfg.Listen and blocks
// until the listener fails or ctx is canceled.
func StartServer(ctx context.Context, s *Server) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
