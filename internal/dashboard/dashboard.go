// Package dashboard serves the trend analysis dashboard: a single page
// with sidebar navigation over five content panels, JSON endpoints backing
// the panel content, static chart images, and a websocket channel that
// refreshes open pages when the offline pipeline republishes artifacts.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"trendboard/internal/artifacts"
	"trendboard/internal/cfg"
	"trendboard/internal/metrics"
	"trendboard/internal/panels"
	"trendboard/internal/report"
	"trendboard/internal/storage"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Server is the dashboard HTTP server.
type Server struct {
	cfg      cfg.Settings
	m        *metrics.Metrics
	store    *storage.Store // nil when no data path is configured
	server   *http.Server
	upgrader websocket.Upgrader

	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	refresh     <-chan artifacts.Event
	stopChannel chan struct{}
	isRunning   bool
	mu          sync.RWMutex
}

// modelView is one classifier block with its report parsed at render time.
// A block whose report is missing or malformed carries the error string
// instead of a table; the other blocks still render.
type modelView struct {
	panels.ModelBlock
	Parsed *report.Report `json:"parsed,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// panelView is the JSON payload for one rendered panel.
type panelView struct {
	Slug   string         `json:"slug"`
	Title  string         `json:"title"`
	Intro  string         `json:"intro"`
	Points []string       `json:"points,omitempty"`
	Images []panels.Image `json:"images,omitempty"`
	Models []modelView    `json:"models,omitempty"`
}

// New creates a dashboard server. store may be nil; the view log and the
// stats endpoint are then disabled.
func New(c cfg.Settings, m *metrics.Metrics, store *storage.Store, refresh <-chan artifacts.Event) *Server {
	s := &Server{
		cfg:         c,
		m:           m,
		store:       store,
		upgrader:    websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:     make(map[*websocket.Conn]bool),
		refresh:     refresh,
		stopChannel: make(chan struct{}),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handlePage).Methods("GET")
	r.HandleFunc("/api/panels", s.handlePanels).Methods("GET")
	r.HandleFunc("/api/panel/{slug}", s.handlePanel).Methods("GET")
	r.HandleFunc("/api/report/{model}", s.handleReport).Methods("GET")
	r.HandleFunc("/api/stats", s.handleStats).Methods("GET")
	r.HandleFunc("/ws", s.handleWebSocket).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.PathPrefix("/images/").Handler(http.StripPrefix("/images/", http.FileServer(http.Dir(c.AssetsPath))))

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", c.ListenPort),
		Handler:      r,
		ReadTimeout:  c.ReadTimeout,
		WriteTimeout: c.WriteTimeout,
	}

	return s
}

// Start starts the dashboard server and the refresh broadcaster.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("dashboard is already running")
	}

	go s.refreshBroadcaster()

	go func() {
		log.Info().Str("address", s.server.Addr).Msg("starting dashboard server")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("dashboard server failed")
		}
	}()

	s.isRunning = true
	return nil
}

// Stop shuts the server down gracefully and closes all websocket clients.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	close(s.stopChannel)

	s.clientsMu.Lock()
	for client := range s.clients {
		client.Close()
	}
	s.clients = make(map[*websocket.Conn]bool)
	s.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown dashboard server")
		return err
	}

	s.isRunning = false
	log.Info().Msg("dashboard stopped")
	return nil
}

// refreshBroadcaster forwards artifact change events to websocket clients.
func (s *Server) refreshBroadcaster() {
	if s.refresh == nil {
		return
	}
	for {
		select {
		case ev, ok := <-s.refresh:
			if !ok {
				return
			}
			s.broadcastRefresh(ev)
		case <-s.stopChannel:
			return
		}
	}
}

func (s *Server) broadcastRefresh(ev artifacts.Event) {
	// Write lock: failed clients are dropped from the map while sending.
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	msg := struct {
		Type string `json:"type"`
		File string `json:"file"`
	}{Type: "refresh", File: ev.File}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal refresh event")
		return
	}

	for client := range s.clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			client.Close()
			delete(s.clients, client)
			s.m.WSClients.Dec()
		}
	}
}

// handlePanels serves the ordered sidebar entries.
func (s *Server) handlePanels(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Slug  string `json:"slug"`
		Title string `json:"title"`
	}

	all := panels.All()
	entries := make([]entry, 0, len(all))
	for _, p := range all {
		entries = append(entries, entry{Slug: p.Slug, Title: p.Title})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default": panels.DefaultSlug,
		"panels":  entries,
	})
}

// handlePanel serves one panel's content. The ML panel re-reads and
// re-parses every classification report from disk on each request.
func (s *Server) handlePanel(w http.ResponseWriter, r *http.Request) {
	slug := mux.Vars(r)["slug"]

	p, ok := panels.Get(slug)
	if !ok {
		http.Error(w, "unknown panel", http.StatusNotFound)
		return
	}

	start := time.Now()
	s.recordView(slug)

	view := panelView{
		Slug:   p.Slug,
		Title:  p.Title,
		Intro:  p.Intro,
		Points: p.Points,
		Images: p.Images,
	}
	for _, mb := range p.Models {
		view.Models = append(view.Models, s.renderModel(mb))
	}

	s.m.PanelRenderDuration.Observe(time.Since(start).Seconds())
	writeJSON(w, http.StatusOK, view)
}

// renderModel parses one block's report. Failures render that block broken
// and leave the rest of the panel intact.
func (s *Server) renderModel(mb panels.ModelBlock) modelView {
	view := modelView{ModelBlock: mb}

	rep, err := report.ParseFile(filepath.Join(s.cfg.ReportsPath, mb.Report))
	if err != nil {
		s.m.ReportParseFailures.Inc()
		s.m.ErrorsTotal.Inc()
		log.Error().Err(err).Str("model", mb.ID).Msg("report parse failed")
		view.Error = err.Error()
		return view
	}

	s.m.ReportParses.Inc()
	view.Parsed = &rep
	return view
}

// handleReport serves one parsed classification report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["model"]

	mb, ok := panels.Model(id)
	if !ok {
		http.Error(w, "unknown model", http.StatusNotFound)
		return
	}

	rep, err := report.ParseFile(filepath.Join(s.cfg.ReportsPath, mb.Report))
	if err != nil {
		s.m.ReportParseFailures.Inc()
		s.m.ErrorsTotal.Inc()
		log.Error().Err(err).Str("model", id).Msg("report parse failed")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.m.ReportParses.Inc()
	writeJSON(w, http.StatusOK, rep)
}

// handleStats serves per-panel view counts from the view log.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"enabled": false})
		return
	}

	counts, err := s.store.CountViews(time.Time{}, time.Now())
	if err != nil {
		s.m.ErrorsTotal.Inc()
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"enabled": true,
		"views":   counts,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleWebSocket registers a client for artifact refresh pushes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("failed to upgrade websocket connection")
		return
	}
	defer conn.Close()

	s.clientsMu.Lock()
	s.clients[conn] = true
	s.clientsMu.Unlock()
	s.m.WSClients.Inc()

	// Keep connection alive until the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.clientsMu.Lock()
	if s.clients[conn] {
		delete(s.clients, conn)
		s.m.WSClients.Dec()
	}
	s.clientsMu.Unlock()
}

// recordView updates the view metrics and, when enabled, the view log.
func (s *Server) recordView(slug string) {
	s.m.PanelViews.WithLabelValues(slug).Inc()

	if s.store == nil {
		return
	}
	if err := s.store.RecordView(storage.ViewEvent{Panel: slug, Ts: time.Now()}); err != nil {
		log.Warn().Err(err).Str("panel", slug).Msg("failed to record panel view")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handlePage serves the dashboard shell.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	t, err := template.New("dashboard").Parse(pageTemplate)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	t.Execute(w, map[string]string{"Title": s.cfg.Title})
}
