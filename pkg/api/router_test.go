package api

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buidl-explorer-go/pkg/scraper"
	"buidl-explorer-go/pkg/services"
)

type scriptedRunner struct {
	lines []string
	err   error
}

func (r *scriptedRunner) Run(ctx context.Context, emit func(string)) error {
	for _, line := range r.lines {
		emit(line)
	}
	return r.err
}

type backend struct {
	svc        *scraper.Service
	dataPath   string
	exportPath string
}

func newBackend(t *testing.T, runner services.LineRunner) *backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	b := &backend{
		dataPath:   filepath.Join(dir, "merged.json"),
		exportPath: filepath.Join(dir, "final_dorahacks_data.xlsx"),
	}
	logger := log.New(io.Discard)
	router := NewRouter(
		services.NewScrapeService(runner, logger),
		services.NewFileStore(b.dataPath, b.exportPath),
		logger,
	)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	svc, err := scraper.NewService(server.URL)
	require.NoError(t, err)
	b.svc = svc
	return b
}

type streamResult struct {
	mu    sync.Mutex
	lines []string
	done  bool
	err   error
	ended chan struct{}
}

func openStream(b *backend) *streamResult {
	res := &streamResult{ended: make(chan struct{})}
	b.svc.Open(context.Background(), scraper.Handlers{
		OnLine: func(text string) {
			res.mu.Lock()
			res.lines = append(res.lines, text)
			res.mu.Unlock()
		},
		OnDone: func() {
			res.done = true
			close(res.ended)
		},
		OnError: func(err error) {
			res.err = err
			close(res.ended)
		},
	})
	return res
}

func (r *streamResult) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.ended:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not finish")
	}
}

func TestScrapeStreamsLinesThenDone(t *testing.T) {
	b := newBackend(t, &scriptedRunner{lines: []string{"Fetching page 1", "", "Saved merged.json"}})

	res := openStream(b)
	res.wait(t)

	assert.True(t, res.done)
	assert.NoError(t, res.err)
	assert.Equal(t, []string{"Fetching page 1", "", "Saved merged.json"}, res.lines)
}

func TestScrapeFailureIsSignalled(t *testing.T) {
	b := newBackend(t, &scriptedRunner{lines: []string{"Traceback"}, err: errors.New("exit status 1")})

	res := openStream(b)
	res.wait(t)

	assert.False(t, res.done)
	require.Error(t, res.err)
	var typed *scraper.Error
	require.ErrorAs(t, res.err, &typed)
	assert.Equal(t, scraper.ErrorTypeServerSignal, typed.Type)
	assert.Contains(t, typed.Message, "exit status 1")
	assert.Equal(t, []string{"Traceback"}, res.lines)
}

func TestProjectsEndpoint(t *testing.T) {
	b := newBackend(t, &scriptedRunner{})

	_, err := b.svc.FetchResults(context.Background())
	require.Error(t, err)
	var typed *scraper.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, http.StatusNotFound, typed.Status)
	assert.Equal(t, "No data found", typed.Message)

	require.NoError(t, os.WriteFile(b.dataPath, []byte(`[
		{"BUIDL ID": 1, "BUIDL name": "Alpha", "Org": "Acme", "BUIDL profile": "https://dorahacks.io/buidl/1"}
	]`), 0644))

	records, err := b.svc.FetchResults(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Alpha", *records[0].DisplayName)
}

func TestDownloadEndpoint(t *testing.T) {
	b := newBackend(t, &scriptedRunner{})

	var buf bytes.Buffer
	_, err := b.svc.Download(context.Background(), &buf)
	require.Error(t, err)

	require.NoError(t, os.WriteFile(b.exportPath, []byte("PK\x03\x04"), 0644))
	name, err := b.svc.Download(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, "final_dorahacks_data.xlsx", name)
	assert.Equal(t, "PK\x03\x04", buf.String())
}

func TestHealthAndCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard)
	router := NewRouter(
		services.NewScrapeService(&scriptedRunner{}, logger),
		services.NewFileStore("missing.json", "missing.xlsx"),
		logger,
	)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/projects", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	router.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/projects", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"No data found"}`, w.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard)
	router := NewRouter(
		services.NewScrapeService(&scriptedRunner{}, logger),
		services.NewFileStore("missing.json", "missing.xlsx"),
		logger,
	)

	for _, path := range []string{"/api/scrape", "/api/projects", "/api/download"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, path, nil)
			req.Header.Set("Origin", "http://localhost:5173")
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			req.Header.Set("Access-Control-Request-Headers", "Cache-Control")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
			assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "cache-control")
			assert.Empty(t, w.Body.String())
		})
	}
}

func TestScrapeConflictWhileReserved(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := log.New(io.Discard)
	scrapes := services.NewScrapeService(&scriptedRunner{lines: []string{"x"}}, logger)
	router := NewRouter(scrapes, services.NewFileStore("missing.json", "missing.xlsx"), logger)

	held, err := scrapes.Reserve()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/scrape", nil))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"a scrape is already running"}`, w.Body.String())

	held.Release()
	server := httptest.NewServer(router)
	defer server.Close()
	resp, err := http.Get(server.URL + "/api/scrape")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "data:x\n\n")
	assert.Contains(t, string(body), "event:done\ndata:complete\n\n")
	assert.False(t, scrapes.Running())
}
