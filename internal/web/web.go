// Package web serves the calendar layout over HTTP.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"mediacal/internal/config"
	appLog "mediacal/internal/log"
	"mediacal/internal/model"
	"mediacal/internal/service"
)

// Layouts is what the HTTP layer needs from the layout service.
type Layouts interface {
	CurrentMonth() (int, time.Month)
	Month(ctx context.Context, year int, month time.Month) service.MonthLayout
	Invalidate()
}

// Server exposes month layouts over HTTP.
type Server struct {
	cfg     *config.Config
	layouts Layouts
	mux     *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, layouts Layouts) *Server {
	s := &Server{
		cfg:     cfg,
		layouts: layouts,
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, wrapped in Basic Auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		return s.basicAuthMiddleware(h)
	}
	return h
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen, "basic_auth", s.basicAuthEnabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/calendar", s.handleCalendar)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware protects every path except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="mediacal", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleCalendar returns the week layout of a month.
//
// GET /api/calendar?year=2025&month=6
//   - year:  four-digit year (default: current year)
//   - month: 1-12 (default: current month)
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.parseMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ml := s.layouts.Month(r.Context(), year, month)
	appLog.Debug("api calendar request", "year", year, "month", int(month), "weeks", len(ml.Weeks), "degraded", ml.Degraded)
	writeJSON(w, http.StatusOK, ml)
}

// eventsResponse is the JSON shape of /api/events.
type eventsResponse struct {
	Year     int                     `json:"year"`
	Month    int                     `json:"month"`
	Events   []model.NormalizedEvent `json:"events"`
	Degraded bool                    `json:"degraded,omitempty"`
}

// handleEvents returns the normalized events of a month in layout order.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	year, month, err := s.parseMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ml := s.layouts.Month(r.Context(), year, month)
	events := ml.Events
	if events == nil {
		events = []model.NormalizedEvent{}
	}
	writeJSON(w, http.StatusOK, eventsResponse{
		Year:     ml.Year,
		Month:    ml.Month,
		Events:   events,
		Degraded: ml.Degraded,
	})
}

// handleRefresh drops cached layouts so the next request refetches events.
func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	s.layouts.Invalidate()
	appLog.Info("layout cache invalidated via API")
	w.WriteHeader(http.StatusNoContent)
}

var (
	errInvalidYear  = errors.New("year must be an integer between 1 and 9999")
	errInvalidMonth = errors.New("month must be an integer between 1 and 12")
)

func (s *Server) parseMonth(r *http.Request) (int, time.Month, error) {
	year, month := s.layouts.CurrentMonth()
	q := r.URL.Query()

	if v := q.Get("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 9999 {
			return 0, 0, errInvalidYear
		}
		year = n
	}
	if v := q.Get("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 12 {
			return 0, 0, errInvalidMonth
		}
		month = time.Month(n)
	}
	return year, month, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
