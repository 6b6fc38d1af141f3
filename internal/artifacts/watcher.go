package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"trendboard/internal/metrics"

	"github.com/rs/zerolog/log"
)

// Event signals that one artifact file changed on disk.
type Event struct {
	File string `json:"file"`
}

// Watcher polls the artifact directories and emits an Event whenever a
// file appears or its modification time advances. The dashboard broadcasts
// these events to connected websocket clients.
type Watcher struct {
	dirs     []string
	interval time.Duration
	events   chan Event
	mtimes   map[string]time.Time
	m        *metrics.Metrics
}

// NewWatcher creates a watcher over the given directories.
func NewWatcher(interval time.Duration, m *metrics.Metrics, dirs ...string) *Watcher {
	return &Watcher{
		dirs:     dirs,
		interval: interval,
		events:   make(chan Event, 16),
		mtimes:   make(map[string]time.Time),
		m:        m,
	}
}

// Events returns the change event stream.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run polls until the context is canceled. The first scan primes the
// mtime table without emitting events, so a restart does not refresh
// every open page.
func (w *Watcher) Run(ctx context.Context) {
	w.scan(false)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(w.events)
			return
		case <-ticker.C:
			w.scan(true)
		}
	}
}

// scan walks the watched directories and records mtimes. When emit is set,
// changed files are pushed to the event channel; a full channel drops the
// event rather than blocking the poll loop.
func (w *Watcher) scan(emit bool) {
	for _, dir := range w.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue // directory may not exist until the first mirror run
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			info, err := entry.Info()
			if err != nil {
				continue
			}

			path := filepath.Join(dir, entry.Name())
			prev, seen := w.mtimes[path]
			w.mtimes[path] = info.ModTime()

			if !emit || (seen && !info.ModTime().After(prev)) {
				continue
			}

			select {
			case w.events <- Event{File: entry.Name()}:
				w.m.ArtifactRefreshes.Inc()
				log.Debug().Str("file", entry.Name()).Msg("artifact changed")
			default:
			}
		}
	}
}
