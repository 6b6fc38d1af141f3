package dashboard

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trendboard/internal/artifacts"
	"trendboard/internal/cfg"
	"trendboard/internal/metrics"
	"trendboard/internal/storage"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `                  precision    recall  f1-score   support

Did Not Increase       0.70      0.65      0.67       120
        Increase       0.72      0.77      0.74       130

        accuracy                           0.73       250
       macro avg       0.71      0.71      0.71       250
    weighted avg       0.71      0.71      0.71       250
`

var reportFiles = []string{
	"classification_report_initial.txt",
	"classification_report_balanced.txt",
	"classification_report_rf.txt",
	"classification_report_rf_improved_v2.txt",
}

// newTestServer builds a dashboard over temp artifact dirs with all four
// sample reports in place.
func newTestServer(t *testing.T, store *storage.Store) *Server {
	t.Helper()

	reportsPath := t.TempDir()
	for _, name := range reportFiles {
		require.NoError(t, os.WriteFile(filepath.Join(reportsPath, name), []byte(sampleReport), 0o644))
	}

	c := cfg.Settings{
		Title:        "Test Dashboard",
		ListenPort:   8501,
		AssetsPath:   t.TempDir(),
		ReportsPath:  reportsPath,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return New(c, metrics.NewWithRegistry(prometheus.NewRegistry()), store, nil)
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHandlePanels(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, nil).server.Handler)
	defer ts.Close()

	resp, body := get(t, ts, "/api/panels")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Default string `json:"default"`
		Panels  []struct {
			Slug  string `json:"slug"`
			Title string `json:"title"`
		} `json:"panels"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))

	assert.Equal(t, "overview", payload.Default)
	require.Len(t, payload.Panels, 5)
	assert.Equal(t, "price-trend", payload.Panels[1].Slug)
}

func TestHandlePanelOverview(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, nil).server.Handler)
	defer ts.Close()

	resp, body := get(t, ts, "/api/panel/overview")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view panelView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, "Project Overview", view.Title)
	assert.NotEmpty(t, view.Points)
	assert.Empty(t, view.Models)
}

func TestHandlePanelUnknown(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, nil).server.Handler)
	defer ts.Close()

	resp, _ := get(t, ts, "/api/panel/nope")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandlePanelMLModels(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, nil).server.Handler)
	defer ts.Close()

	resp, body := get(t, ts, "/api/panel/ml-models")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view panelView
	require.NoError(t, json.Unmarshal(body, &view))
	require.Len(t, view.Models, 4)

	for _, m := range view.Models {
		require.Empty(t, m.Error, "model %s should parse", m.ID)
		require.NotNil(t, m.Parsed)
		require.Len(t, m.Parsed.Rows, 2)
		assert.Equal(t, "Did Not Increase", m.Parsed.Rows[0].Label)
		require.NotNil(t, m.Parsed.Accuracy)
		assert.Equal(t, 0.73, *m.Parsed.Accuracy)
	}
}

func TestHandlePanelMLModelsBrokenBlock(t *testing.T) {
	s := newTestServer(t, nil)

	// One missing and one malformed report; the other two stay intact.
	require.NoError(t, os.Remove(filepath.Join(s.cfg.ReportsPath, "classification_report_initial.txt")))
	require.NoError(t, os.WriteFile(
		filepath.Join(s.cfg.ReportsPath, "classification_report_rf.txt"),
		[]byte("not a report\n"), 0o644))

	ts := httptest.NewServer(s.server.Handler)
	defer ts.Close()

	resp, body := get(t, ts, "/api/panel/ml-models")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view panelView
	require.NoError(t, json.Unmarshal(body, &view))
	require.Len(t, view.Models, 4)

	broken := map[string]bool{"initial": true, "rf": true}
	for _, m := range view.Models {
		if broken[m.ID] {
			assert.NotEmpty(t, m.Error, "model %s should be broken", m.ID)
			assert.Nil(t, m.Parsed)
		} else {
			assert.Empty(t, m.Error, "model %s should parse", m.ID)
			assert.NotNil(t, m.Parsed)
		}
	}
}

func TestHandleReport(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, nil).server.Handler)
	defer ts.Close()

	t.Run("valid model", func(t *testing.T) {
		resp, body := get(t, ts, "/api/report/rf_improved_v2")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var rep struct {
			Rows []struct {
				Label   string `json:"label"`
				Support int    `json:"support"`
			} `json:"rows"`
			Accuracy *float64 `json:"accuracy"`
		}
		require.NoError(t, json.Unmarshal(body, &rep))
		require.Len(t, rep.Rows, 2)
		assert.Equal(t, 130, rep.Rows[1].Support)
		require.NotNil(t, rep.Accuracy)
		assert.Equal(t, 0.73, *rep.Accuracy)
	})

	t.Run("unknown model", func(t *testing.T) {
		resp, _ := get(t, ts, "/api/report/xgboost")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestHandleReportMalformed(t *testing.T) {
	s := newTestServer(t, nil)
	require.NoError(t, os.WriteFile(
		filepath.Join(s.cfg.ReportsPath, "classification_report_rf.txt"),
		[]byte("Increase 0.72 0.77\n"), 0o644))

	ts := httptest.NewServer(s.server.Handler)
	defer ts.Close()

	resp, body := get(t, ts, "/api/report/rf")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, string(body), "class rows")
}

func TestHandleStats(t *testing.T) {
	t.Run("disabled without store", func(t *testing.T) {
		ts := httptest.NewServer(newTestServer(t, nil).server.Handler)
		defer ts.Close()

		resp, body := get(t, ts, "/api/stats")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var payload struct {
			Enabled bool `json:"enabled"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.False(t, payload.Enabled)
	})

	t.Run("counts recorded views", func(t *testing.T) {
		store, err := storage.New(t.TempDir())
		require.NoError(t, err)
		defer store.Close()

		ts := httptest.NewServer(newTestServer(t, store).server.Handler)
		defer ts.Close()

		for i := 0; i < 3; i++ {
			resp, _ := get(t, ts, "/api/panel/volatility")
			require.Equal(t, http.StatusOK, resp.StatusCode)
		}

		resp, body := get(t, ts, "/api/stats")
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var payload struct {
			Enabled bool           `json:"enabled"`
			Views   map[string]int `json:"views"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.True(t, payload.Enabled)
		assert.Equal(t, 3, payload.Views["volatility"])
	})
}

func TestHandlePage(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, nil).server.Handler)
	defer ts.Close()

	resp, body := get(t, ts, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "Test Dashboard")
	assert.Contains(t, string(body), "/api/panels")
}

func TestHandleHealth(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t, nil).server.Handler)
	defer ts.Close()

	resp, body := get(t, ts, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", string(body))
}

func TestWebSocketRefreshBroadcast(t *testing.T) {
	s := newTestServer(t, nil)
	ts := httptest.NewServer(s.server.Handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Wait for the server to register the client before broadcasting.
	require.Eventually(t, func() bool {
		s.clientsMu.RLock()
		defer s.clientsMu.RUnlock()
		return len(s.clients) == 1
	}, time.Second, 10*time.Millisecond)

	s.broadcastRefresh(artifacts.Event{File: "btc_volatility_30d.png"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string `json:"type"`
		File string `json:"file"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "refresh", msg.Type)
	assert.Equal(t, "btc_volatility_30d.png", msg.File)
}
