package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spektr-org/winedash/charts"
	"github.com/spektr-org/winedash/helpers"
	"github.com/spektr-org/winedash/reactive"
	"github.com/spektr-org/winedash/render"
)

// ============================================================================
// HTTP SERVER — Page, session API, chart images
// ============================================================================
// Routes:
//   GET  /                                         new session + HTML page
//   GET  /api/layout                               page descriptor
//   POST /api/sessions                             new session
//   GET  /api/sessions/{id}                        session state
//   POST /api/sessions/{id}/events                 dispatch widget events
//   GET  /api/sessions/{id}/charts/{target}        svg | png | csv
//   GET  /api/sessions/{id}/charts/{target}/spec   chart spec JSON
//   GET  /healthz
// ============================================================================

const (
	defaultSweepEvery = time.Minute
	shutdownTimeout   = 5 * time.Second
	maxEventBody      = 64 << 10
)

// Server serves one Dashboard to many sessions.
type Server struct {
	dash       *Dashboard
	store      *reactive.Store
	log        *helpers.Logger
	sweepEvery time.Duration
}

// New creates a Server. A nil logger discards output.
func New(dash *Dashboard, store *reactive.Store, logger *helpers.Logger) *Server {
	if logger == nil {
		logger = helpers.Discard()
	}
	every := store.TTL() / 2
	if every <= 0 || every > defaultSweepEvery {
		every = defaultSweepEvery
	}
	return &Server{dash: dash, store: store, log: logger, sweepEvery: every}
}

// Handler returns the routed handler wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handlePage)
	mux.HandleFunc("GET /api/layout", s.handleLayout)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", s.handleSessionState)
	mux.HandleFunc("POST /api/sessions/{id}/events", s.handleEvents)
	mux.HandleFunc("GET /api/sessions/{id}/charts/{target}", s.handleChart)
	mux.HandleFunc("GET /api/sessions/{id}/charts/{target}/spec", s.handleChartSpec)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.logRequests(mux)
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
// The session sweeper runs for the same lifetime.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sweep(sweepCtx)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.Info("[server] listening on http://%s", ln.Addr())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		s.log.Info("[server] stopped")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	}
}

func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(s.sweepEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.store.Sweep(now); n > 0 {
				s.log.Debug("[sessions] evicted %d idle session(s), %d live", n, s.store.Len())
			}
		}
	}
}

// ============================================================================
// HANDLERS
// ============================================================================

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Create()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.dash.Page.Render(w, sess.ID); err != nil {
		s.log.Error("[page] %v", err)
	}
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Page)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Create()
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess.State())
}

func (s *Server) handleSessionState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

type eventsRequest struct {
	Events []reactive.Event `json:"events"`
}

type updateJSON struct {
	Target  string `json:"target"`
	Version int    `json:"version"`
	Open    *bool  `json:"open,omitempty"`
	Error   string `json:"error,omitempty"`
}

type eventsResponse struct {
	Updates []updateJSON `json:"updates"`
	Errors  []string     `json:"errors,omitempty"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req eventsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("decode events: %w", err))
		return
	}

	updates, err := sess.Dispatch(req.Events...)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}

	resp := eventsResponse{Updates: make([]updateJSON, 0, len(updates))}
	for _, u := range updates {
		uj := updateJSON{Target: u.Target, Version: u.Version}
		if u.Toggle {
			open := u.Open
			uj.Open = &open
		}
		if u.Err != nil {
			uj.Error = u.Err.Error()
			resp.Errors = append(resp.Errors, uj.Error)
			s.log.Warn("[events] session %s: %v", sess.ID, u.Err)
		}
		resp.Updates = append(resp.Updates, uj)
	}

	status := http.StatusOK
	if len(resp.Errors) > 0 {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.chartSpec(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", r.PathValue("target")+".csv"))
		if err := charts.WriteCSV(w, spec); err != nil {
			s.log.Error("[chart] csv %s: %v", r.PathValue("target"), err)
		}
		return
	}

	format, err := render.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	// Render to memory first so a failure can still produce a clean 500.
	var buf bytes.Buffer
	if err := render.Render(&buf, spec, format); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", render.ContentType(format))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleChartSpec(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.chartSpec(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"rows":     s.dash.Dataset.Len(),
		"source":   s.dash.Dataset.Source,
		"label":    s.dash.Builder.LabelKey(),
		"sessions": s.store.Len(),
	})
}

// ============================================================================
// HELPERS
// ============================================================================

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*reactive.Session, bool) {
	sess, err := s.store.Lookup(r.PathValue("id"))
	if err != nil {
		s.fail(w, http.StatusNotFound, err)
		return nil, false
	}
	return sess, true
}

func (s *Server) chartSpec(w http.ResponseWriter, r *http.Request) (*charts.ChartSpec, bool) {
	sess, ok := s.session(w, r)
	if !ok {
		return nil, false
	}
	target := r.PathValue("target")
	spec, _, found := sess.Spec(target)
	if !found {
		s.fail(w, http.StatusNotFound, fmt.Errorf("unknown chart %q", target))
		return nil, false
	}
	return spec, true
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("[http] %d: %v", status, err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
