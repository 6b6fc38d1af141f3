// Package artifacts manages the boundary with the offline analysis
// pipeline: mirroring its published charts and classification reports into
// the local artifact directories, and watching those directories for
// changes so open dashboards can refresh.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trendboard/internal/metrics"
	"trendboard/internal/panels"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// Sync mirrors pipeline artifacts over HTTP. The pipeline publishes under
// <baseURL>/images/<file> and <baseURL>/reports/<file>.
type Sync struct {
	rest    *resty.Client
	baseURL string
	m       *metrics.Metrics
}

// NewSync creates a mirror client for the given publish URL.
func NewSync(baseURL string, timeout time.Duration, m *metrics.Metrics) *Sync {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(10 * time.Second) // default fallback
	}
	return &Sync{rest: r, baseURL: baseURL, m: m}
}

// Mirror downloads every artifact the panel registry references into
// assetsPath and reportsPath. Files whose local copy is current are left
// alone via If-Modified-Since. Individual failures are logged and counted;
// the sync continues. Returns the number of files written.
func (s *Sync) Mirror(ctx context.Context, assetsPath, reportsPath string) (int, error) {
	if err := os.MkdirAll(assetsPath, 0o755); err != nil {
		return 0, fmt.Errorf("create assets dir: %w", err)
	}
	if err := os.MkdirAll(reportsPath, 0o755); err != nil {
		return 0, fmt.Errorf("create reports dir: %w", err)
	}

	synced := 0
	for _, p := range panels.All() {
		for _, img := range p.Images {
			if s.fetch(ctx, "images/"+img.File, filepath.Join(assetsPath, img.File)) {
				synced++
			}
		}
		for _, mb := range p.Models {
			if s.fetch(ctx, "images/"+mb.Image.File, filepath.Join(assetsPath, mb.Image.File)) {
				synced++
			}
			if s.fetch(ctx, "reports/"+mb.Report, filepath.Join(reportsPath, mb.Report)) {
				synced++
			}
		}
	}

	log.Info().Int("synced", synced).Str("baseURL", s.baseURL).Msg("artifact mirror complete")
	return synced, nil
}

// fetch downloads one artifact to localPath. Reports true only when a new
// copy was written.
func (s *Sync) fetch(ctx context.Context, remotePath, localPath string) bool {
	req := s.rest.R().SetContext(ctx)

	if info, err := os.Stat(localPath); err == nil {
		req.SetHeader("If-Modified-Since", info.ModTime().UTC().Format(time.RFC1123))
	}

	resp, err := req.Get(s.baseURL + "/" + remotePath)
	if err != nil {
		s.m.ArtifactSyncFailures.Inc()
		log.Warn().Err(err).Str("artifact", remotePath).Msg("artifact fetch failed")
		return false
	}

	if resp.StatusCode() == 304 {
		return false
	}
	if resp.IsError() {
		s.m.ArtifactSyncFailures.Inc()
		log.Warn().Int("status", resp.StatusCode()).Str("artifact", remotePath).Msg("artifact fetch failed")
		return false
	}

	if err := os.WriteFile(localPath, resp.Body(), 0o644); err != nil {
		s.m.ArtifactSyncFailures.Inc()
		log.Warn().Err(err).Str("artifact", remotePath).Msg("artifact write failed")
		return false
	}

	s.m.ArtifactSyncs.Inc()
	return true
}
