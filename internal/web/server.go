// Package web serves the station list and map over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
	"github.com/go-chi/httprate"

	"github.com/rubiojr/gasmap/internal/catalog"
	"github.com/rubiojr/gasmap/internal/stations"
	"github.com/rubiojr/gasmap/internal/translations"
	"github.com/rubiojr/gasmap/internal/viewstate"
	"github.com/rubiojr/gasmap/internal/web/static"
	"github.com/rubiojr/gasmap/internal/web/templates"
)

const (
	SessionCookie = "gasmap_session"

	// DefaultRateLimit is generous because every keystroke in the search box
	// is a request.
	DefaultRateLimit = 600
)

// SnapshotDates reports the newest day held by a snapshot store.
type SnapshotDates interface {
	GetLastUpdateDate(ctx context.Context) (*time.Time, error)
}

type Server struct {
	catalog   *catalog.Catalog
	sessions  *viewstate.Store
	snapshots SnapshotDates
	log       *slog.Logger

	requestLogger *httplog.Logger
	rateLimit     int
	rateWindow    time.Duration
}

type Option func(*Server)

// WithRequestLogger logs every request through l.
func WithRequestLogger(l *httplog.Logger) Option {
	return func(s *Server) {
		s.requestLogger = l
	}
}

// WithRateLimit allows n requests per window and client IP. n <= 0 disables
// limiting.
func WithRateLimit(n int, window time.Duration) Option {
	return func(s *Server) {
		s.rateLimit = n
		s.rateWindow = window
	}
}

// WithSnapshots makes /api/status report the newest stored snapshot.
func WithSnapshots(d SnapshotDates) Option {
	return func(s *Server) {
		s.snapshots = d
	}
}

func New(cat *catalog.Catalog, sessions *viewstate.Store, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		catalog:    cat,
		sessions:   sessions,
		log:        logger,
		rateLimit:  DefaultRateLimit,
		rateWindow: time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the HTTP handler of the application.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	if s.requestLogger != nil {
		r.Use(httplog.RequestLogger(s.requestLogger))
	}
	r.Use(middleware.Recoverer)
	if s.rateLimit > 0 {
		r.Use(httprate.LimitByIP(s.rateLimit, s.rateWindow))
	}

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(static.FS)))
	r.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/view", s.handleView)
		r.Post("/select/{id}", s.handleSelect)
	})
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	t := translations.GetTranslations(translations.GetLanguageFromQuery(r.URL.Query().Get("lang")))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	switch s.catalog.Phase() {
	case catalog.PhaseLoading:
		s.render(w, r, http.StatusOK, templates.Loading(t))
		return
	case catalog.PhaseFailed:
		s.render(w, r, http.StatusServiceUnavailable, templates.LoadError(t))
		return
	}

	// Every page load starts from the default view.
	state := s.freshSession(w, r)
	if q := r.URL.Query().Get("q"); q != "" {
		state.SetQuery(q)
	}
	view, err := s.currentView(state)
	if err != nil {
		s.render(w, r, http.StatusServiceUnavailable, templates.LoadError(t))
		return
	}
	s.render(w, r, http.StatusOK, templates.Home(t, view))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("ok"))
}

type statusResponse struct {
	Phase        catalog.Phase `json:"phase"`
	Stations     int           `json:"stations"`
	Sessions     int           `json:"sessions"`
	LastSnapshot string        `json:"lastSnapshot,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Phase:    s.catalog.Phase(),
		Stations: len(s.catalog.Stations()),
		Sessions: s.sessions.Len(),
	}
	if s.snapshots != nil {
		last, err := s.snapshots.GetLastUpdateDate(r.Context())
		if err != nil {
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		if last != nil {
			resp.LastSnapshot = last.Format(time.DateOnly)
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	if !s.requireReady(w, r) {
		return
	}

	state := s.session(w, r)
	if r.URL.Query().Has("q") {
		state.SetQuery(r.URL.Query().Get("q"))
	}
	view, err := s.currentView(state)
	if err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

type selectResponse struct {
	Selected string              `json:"selected"`
	Center   stations.Coordinate `json:"center"`
	Zoom     int                 `json:"zoom"`
	Warning  string              `json:"warning,omitempty"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	if !s.requireReady(w, r) {
		return
	}

	id := chi.URLParam(r, "id")
	station, ok := s.catalog.Station(id)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "station not found"})
		return
	}

	state := s.session(w, r)
	resp := selectResponse{Selected: id}
	if err := state.Select(station); err != nil {
		if !errors.Is(err, viewstate.ErrInvalidCoordinate) {
			s.writeError(w, r, http.StatusInternalServerError, err)
			return
		}
		s.log.Warn("Selected station has no valid coordinate", "id", id, "error", err)
		resp.Warning = err.Error()
	}

	snap := state.Snapshot()
	resp.Center = snap.Center
	resp.Zoom = snap.Zoom
	s.writeJSON(w, http.StatusOK, resp)
}

// requireReady answers 503 with the fixed load message unless the station
// data is available.
func (s *Server) requireReady(w http.ResponseWriter, r *http.Request) bool {
	phase := s.catalog.Phase()
	if phase == catalog.PhaseReady {
		return true
	}
	t := translations.GetTranslations(translations.GetLanguageFromQuery(r.URL.Query().Get("lang")))
	msg := t.Loading
	if phase == catalog.PhaseFailed {
		msg = t.LoadError
	}
	s.writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": msg, "phase": phase})
	return false
}

// session returns the view state bound to the request's cookie, starting a
// new session when there is none.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *viewstate.State {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	newID, state := s.sessions.GetOrCreate(id)
	if newID != id {
		setSessionCookie(w, newID)
	}
	return state
}

// freshSession is like session but always hands out a default view state.
func (s *Server) freshSession(w http.ResponseWriter, r *http.Request) *viewstate.State {
	var id string
	if c, err := r.Cookie(SessionCookie); err == nil {
		id = c.Value
	}
	newID, state := s.sessions.Reset(id)
	if newID != id {
		setSessionCookie(w, newID)
	}
	return state
}

func setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) currentView(state *viewstate.State) (templates.View, error) {
	snap := state.Snapshot()
	visible, err := s.catalog.Visible(snap.Query)
	if err != nil {
		return templates.View{}, err
	}
	return NewView(snap, visible), nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	w.WriteHeader(status)
	if err := c.Render(r.Context(), w); err != nil {
		s.log.Error("Error rendering page", "path", r.URL.Path, "error", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("Error encoding response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	s.log.Error("Request failed", "path", r.URL.Path, "error", err)
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
