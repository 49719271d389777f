package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/senthilkr/tamil-news-feed/internal/config"
	"github.com/senthilkr/tamil-news-feed/internal/feed"
	"github.com/senthilkr/tamil-news-feed/internal/metrics"
	"github.com/senthilkr/tamil-news-feed/internal/store/local"
)

type fakeRefresher struct {
	snap  feed.Snapshot
	err   error
	calls int
}

func (f *fakeRefresher) RunFresh(context.Context) (feed.Snapshot, error) {
	f.calls++
	return f.snap, f.err
}

func newTestServer(t *testing.T, refresher Refresher) (*Server, *local.Store) {
	t.Helper()
	metrics.Init()
	dir := t.TempDir()
	snapshots, err := local.New(local.Config{BaseDir: dir})
	require.NoError(t, err)
	selection := local.NewSelectionStore(dir)
	status := feed.NewCycleStatus()
	cfg := config.Config{Server: config.ServerConfig{Port: 5000}}
	return NewServer(snapshots, selection, status, refresher, cfg, zap.NewNop()), snapshots
}

func liveSnapshot(n int) feed.Snapshot {
	articles := make([]feed.Article, 0, n)
	for i := 0; i < n; i++ {
		articles = append(articles, feed.Article{
			SourceKey: "dinamalar",
			Title:     "headline",
			URL:       "https://www.dinamalar.com/news/1",
			Number:    i + 1,
		})
	}
	return feed.Snapshot{Articles: articles, TotalCount: n}
}

func TestGetNewsLive(t *testing.T) {
	t.Parallel()

	server, snapshots := newTestServer(t, &fakeRefresher{})
	require.NoError(t, snapshots.WriteLive(liveSnapshot(2)))

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status     string `json:"status"`
		TotalCount int    `json:"total_count"`
		Mode       string `json:"mode"`
		Categories struct {
			AllNews []feed.Article `json:"all_news"`
		} `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "success", body.Status)
	require.Equal(t, 2, body.TotalCount)
	require.Equal(t, "live", body.Mode)
	require.Len(t, body.Categories.AllNews, 2)
}

func TestGetNewsLiveEmptyStore(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &fakeRefresher{})

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"all_news":[]`)
	require.Contains(t, rec.Body.String(), `"total_count":0`)
}

func TestGetNewsFreshTriggersScrape(t *testing.T) {
	t.Parallel()

	refresher := &fakeRefresher{snap: liveSnapshot(7)}
	server, _ := newTestServer(t, refresher)

	req := httptest.NewRequest(http.MethodGet, "/api/news?mode=fresh", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, refresher.calls)
	require.Contains(t, rec.Body.String(), `"total_count":7`)
	require.Contains(t, rec.Body.String(), `"mode":"fresh"`)
}

func TestGetNewsFreshFailureIs500(t *testing.T) {
	t.Parallel()

	refresher := &fakeRefresher{err: errors.New("scrape blew up")}
	server, _ := newTestServer(t, refresher)

	req := httptest.NewRequest(http.MethodGet, "/api/news?mode=fresh", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "scrape blew up")
}

func TestGetNewspapersListsCatalogueWithSelection(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &fakeRefresher{})

	req := httptest.NewRequest(http.MethodGet, "/api/newspapers", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Newspapers []struct {
			Key      string `json:"key"`
			Tamil    string `json:"tamil"`
			English  string `json:"english"`
			Selected bool   `json:"selected"`
		} `json:"newspapers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Newspapers, len(feed.Catalogue()))

	selected := 0
	for _, p := range body.Newspapers {
		if p.Selected {
			selected++
		}
	}
	require.Equal(t, len(feed.DefaultSelection()), selected)
	require.Equal(t, "dinamalar", body.Newspapers[0].Key)
	require.True(t, body.Newspapers[0].Selected)
}

func TestSaveNewspapersRoundTrip(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &fakeRefresher{})

	payload := []byte(`{"selected":["bbc","thehindu","nonsense"]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/newspapers", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status   string   `json:"status"`
		Selected []string `json:"selected"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "saved", body.Status)
	require.Equal(t, []string{"bbc", "thehindu"}, body.Selected)

	// The saved set shows up in the listing.
	req = httptest.NewRequest(http.MethodGet, "/api/newspapers", nil)
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	require.Contains(t, rec.Body.String(), `"key":"bbc","tamil":"பிபிசி தமிழ்","english":"BBC Tamil","selected":true`)
}

func TestSaveNewspapersRejectsBadJSON(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &fakeRefresher{})

	req := httptest.NewRequest(http.MethodPost, "/api/newspapers", bytes.NewReader([]byte("{broken")))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStatus(t *testing.T) {
	t.Parallel()

	server, snapshots := newTestServer(t, &fakeRefresher{})
	require.NoError(t, snapshots.WriteLive(liveSnapshot(1)))
	server.status.SetRunning(true)
	server.status.SetProgress("scraping bbc")
	server.status.MarkCompleted(time.Date(2025, 6, 14, 10, 0, 0, 0, time.UTC))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		IsScraping bool   `json:"is_scraping"`
		LastScrape string `json:"last_scrape"`
		LiveMtime  int64  `json:"live_mtime"`
		Progress   string `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.IsScraping)
	require.Equal(t, "2025-06-14T10:00:00Z", body.LastScrape)
	require.NotZero(t, body.LiveMtime)
	require.Equal(t, "scraping bbc", body.Progress)
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &fakeRefresher{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "ok")
}

func TestRequestIDHeaderSet(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &fakeRefresher{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestIndexServesConfiguredFile(t *testing.T) {
	t.Parallel()

	metrics.Init()
	dir := t.TempDir()
	indexPath := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(indexPath, []byte("<html>dashboard</html>"), 0o600))

	snapshots, err := local.New(local.Config{BaseDir: dir})
	require.NoError(t, err)
	cfg := config.Config{Server: config.ServerConfig{Port: 5000, IndexFile: indexPath}}
	server := NewServer(snapshots, local.NewSelectionStore(dir), feed.NewCycleStatus(), nil, cfg, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "dashboard")
}

func TestIndexMissingFileIs404(t *testing.T) {
	t.Parallel()

	server, _ := newTestServer(t, &fakeRefresher{})
	server.cfg.Server.IndexFile = "/nonexistent/index.html"

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
