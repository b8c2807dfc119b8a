package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buidl-explorer-go/pkg/config"
	"buidl-explorer-go/pkg/models"
	"buidl-explorer-go/pkg/scraper"
)

const projectsJSON = `[
	{"BUIDL ID": 7, "BUIDL name": "Gamma", "Org": "Zeta Labs", "BUIDL profile": "https://dorahacks.io/buidl/7"},
	{"BUIDL ID": 8, "BUIDL name": "Delta"}
]`

type testBackend struct {
	scrape   gin.HandlerFunc
	projects gin.HandlerFunc
	download gin.HandlerFunc
}

func streamLines(lines ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, line := range lines {
			c.SSEvent("", line)
			c.Writer.Flush()
		}
		c.SSEvent(scraper.EventDone, "complete")
		c.Writer.Flush()
	}
}

func serveProjects(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", []byte(projectsJSON))
}

func serveExport(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="final_dorahacks_data.xlsx"`)
	c.Data(http.StatusOK, "application/octet-stream", []byte("xlsx-bytes"))
}

func newTestApp(t *testing.T, b testBackend) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if b.scrape != nil {
		router.GET(scraper.PathScrape, b.scrape)
	}
	if b.projects != nil {
		router.GET(scraper.PathProjects, b.projects)
	}
	if b.download != nil {
		router.GET(scraper.PathDownload, b.download)
	}
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Backend.BaseURL = server.URL
	cfg.CLI.DownloadDir = t.TempDir()

	var out, errOut bytes.Buffer
	app := NewApp(cfg)
	app.SetOutput(&out, &errOut)
	return app, &out, &errOut
}

func testContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestScrapePrintsProgressAndResults(t *testing.T) {
	app, out, _ := newTestApp(t, testBackend{
		scrape:   streamLines("Fetching page 1", "Saved 2 BUIDLs"),
		projects: serveProjects,
	})

	err := app.Scrape(testContext(t), ScrapeOptions{})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "Fetching page 1\nSaved 2 BUIDLs\n")
	assert.Contains(t, got, "✓ Scraping complete.")
	assert.Contains(t, got, "Gamma")
	assert.Contains(t, got, "Delta")
	assert.Contains(t, got, "Total: 2 project(s)")
}

func TestScrapeAppliesSearch(t *testing.T) {
	app, out, _ := newTestApp(t, testBackend{
		scrape:   streamLines("done soon"),
		projects: serveProjects,
	})

	require.NoError(t, app.Scrape(testContext(t), ScrapeOptions{Search: "zeta"}))

	got := out.String()
	assert.Contains(t, got, "Gamma")
	assert.NotContains(t, got, "Delta")
	assert.Contains(t, got, `1 of 2 project(s) match "zeta"`)
}

func TestScrapeEmptyResults(t *testing.T) {
	app, out, _ := newTestApp(t, testBackend{
		scrape: streamLines(),
		projects: func(c *gin.Context) {
			c.Data(http.StatusOK, "application/json", []byte(`[]`))
		},
	})

	require.NoError(t, app.Scrape(testContext(t), ScrapeOptions{}))
	assert.Contains(t, out.String(), "No projects found.")
}

func TestScrapeJobFailure(t *testing.T) {
	fetched := false
	app, out, errOut := newTestApp(t, testBackend{
		scrape: func(c *gin.Context) {
			c.SSEvent("", "starting")
			c.Writer.Flush()
			c.SSEvent(scraper.EventError, "scraper exited with status 1")
			c.Writer.Flush()
		},
		projects: func(c *gin.Context) {
			fetched = true
			serveProjects(c)
		},
	})

	err := app.Scrape(testContext(t), ScrapeOptions{})
	require.ErrorIs(t, err, ErrJobFailed)
	assert.Contains(t, out.String(), "starting")
	assert.Contains(t, errOut.String(), "❌ Scraping failed.")
	assert.False(t, fetched, "results must not be fetched for a failed job")
}

func TestScrapeResultsUnavailable(t *testing.T) {
	app, _, errOut := newTestApp(t, testBackend{
		scrape: streamLines("ok"),
		projects: func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No data found"})
		},
	})

	err := app.Scrape(testContext(t), ScrapeOptions{})
	require.ErrorIs(t, err, ErrResultsUnavailable)
	assert.NotErrorIs(t, err, ErrJobFailed)
	assert.Contains(t, errOut.String(), "❌ Failed to load project data.")
}

func TestScrapeDownloadsAfterSuccess(t *testing.T) {
	app, _, _ := newTestApp(t, testBackend{
		scrape:   streamLines("ok"),
		projects: serveProjects,
		download: serveExport,
	})

	require.NoError(t, app.Scrape(testContext(t), ScrapeOptions{Download: true}))

	data, err := os.ReadFile(filepath.Join(app.cfg.CLI.DownloadDir, "final_dorahacks_data.xlsx"))
	require.NoError(t, err)
	assert.Equal(t, "xlsx-bytes", string(data))
}

func TestScrapePickShowsDetails(t *testing.T) {
	app, out, _ := newTestApp(t, testBackend{
		scrape:   streamLines("ok"),
		projects: serveProjects,
	})
	app.pickFunc = func(records []models.ProjectRecord) (*models.ProjectRecord, error) {
		require.Len(t, records, 2)
		return &records[0], nil
	}

	require.NoError(t, app.Scrape(testContext(t), ScrapeOptions{Pick: true}))
	assert.Contains(t, out.String(), "Profile: https://dorahacks.io/buidl/7")
}

func TestListProjects(t *testing.T) {
	app, out, _ := newTestApp(t, testBackend{projects: serveProjects})

	require.NoError(t, app.ListProjects(testContext(t), "delta"))
	assert.Contains(t, out.String(), "Delta")
	assert.NotContains(t, out.String(), "Gamma")
}

func TestListProjectsFailure(t *testing.T) {
	app, _, _ := newTestApp(t, testBackend{
		projects: func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No data found"})
		},
	})

	err := app.ListProjects(testContext(t), "")
	require.Error(t, err)
	assert.True(t, scraper.IsFetchError(err))
}

func TestDownloadToExplicitOutput(t *testing.T) {
	app, out, _ := newTestApp(t, testBackend{download: serveExport})
	target := filepath.Join(t.TempDir(), "nested", "export.xlsx")

	path, err := app.Download(testContext(t), DownloadOptions{Output: target})
	require.NoError(t, err)
	assert.Equal(t, target, path)
	assert.Contains(t, out.String(), "✓ Saved")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "xlsx-bytes", string(data))
}

func TestDownloadDeclinedOverwrite(t *testing.T) {
	app, _, _ := newTestApp(t, testBackend{download: serveExport})
	target := filepath.Join(app.cfg.CLI.DownloadDir, "final_dorahacks_data.xlsx")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	asked := ""
	app.confirmFunc = func(title string) (bool, error) {
		asked = title
		return false, nil
	}

	_, err := app.Download(testContext(t), DownloadOptions{})
	require.ErrorIs(t, err, ErrDownloadSkipped)
	assert.Contains(t, asked, "already exists")

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	// no temp files are left behind
	entries, err := os.ReadDir(app.cfg.CLI.DownloadDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDownloadForceOverwrites(t *testing.T) {
	app, _, _ := newTestApp(t, testBackend{download: serveExport})
	target := filepath.Join(app.cfg.CLI.DownloadDir, "final_dorahacks_data.xlsx")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))
	app.confirmFunc = func(string) (bool, error) {
		t.Fatal("force must not prompt")
		return false, nil
	}

	_, err := app.Download(testContext(t), DownloadOptions{Force: true})
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "xlsx-bytes", string(data))
}

func TestDownloadMissingArtifact(t *testing.T) {
	app, _, _ := newTestApp(t, testBackend{
		download: func(c *gin.Context) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Excel file not found"})
		},
	})

	_, err := app.Download(testContext(t), DownloadOptions{})
	require.Error(t, err)

	var typed *scraper.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, scraper.ErrorTypeDownload, typed.Type)
	assert.Equal(t, http.StatusNotFound, typed.Status)
}

func TestStatus(t *testing.T) {
	app, out, _ := newTestApp(t, testBackend{})

	require.NoError(t, app.Status(testContext(t)))
	assert.Contains(t, out.String(), "✓")
}

func TestSetConfig(t *testing.T) {
	app, _, _ := newTestApp(t, testBackend{})
	path := filepath.Join(t.TempDir(), "config.toml")
	app.SetConfigPath(path)

	require.NoError(t, app.SetConfig("cli.stream_timeout=120"))
	assert.Equal(t, 120, app.cfg.CLI.StreamTimeout)

	saved, err := config.LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, 120, saved.CLI.StreamTimeout)
}

func TestSetConfigRejectsInvalidValues(t *testing.T) {
	app, _, _ := newTestApp(t, testBackend{})
	app.SetConfigPath(filepath.Join(t.TempDir(), "config.toml"))

	assert.Error(t, app.SetConfig("backend.base_url"))
	assert.Error(t, app.SetConfig("nope.key=1"))
	assert.Error(t, app.SetConfig("api.port=70000"))
}
