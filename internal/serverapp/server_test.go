package serverapp

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yrrving/plastsamlaren/internal/config"
	"github.com/yrrving/plastsamlaren/internal/leaderboard"
)

func newApp(t *testing.T, mutate func(*config.Config), board leaderboard.Repository) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Server.DataDir = t.TempDir()
	cfg.Leaderboard.DBPath = ""
	if mutate != nil {
		mutate(cfg)
	}
	app, err := New(Options{
		Config:      cfg,
		Logger:      log.New(io.Discard, "", 0),
		Leaderboard: board,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Server.DataDir = t.TempDir()
	cfg.Game.CraftCost = -1
	_, err := New(Options{Config: cfg, Logger: log.New(io.Discard, "", 0)})
	require.Error(t, err)
}

func TestNew_CustomRepositoryIsUsed(t *testing.T) {
	repo := leaderboard.NewMemoryRepo()
	app := newApp(t, nil, repo)

	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"entries":[]}`, rec.Body.String())
}

func TestHandler_MethodChecks(t *testing.T) {
	app := newApp(t, nil, leaderboard.NewMemoryRepo())

	for _, path := range []string{"/healthz", "/readyz", "/api/config"} {
		rec := httptest.NewRecorder()
		app.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}
}

func TestHandler_CORSPreflight(t *testing.T) {
	app := newApp(t, func(c *config.Config) { c.Server.CORSOrigin = "https://play.example" }, leaderboard.NewMemoryRepo())

	req := httptest.NewRequest(http.MethodOptions, "/api/game/state", nil)
	req.Header.Set("Origin", "https://play.example")
	rec := httptest.NewRecorder()
	app.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "https://play.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestLeaderboardKind(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "sqlite", leaderboardKind(cfg, nil))
	cfg.Leaderboard.RemoteURL = "http://board.local"
	assert.Equal(t, "remote", leaderboardKind(cfg, nil))
	assert.Equal(t, "custom", leaderboardKind(cfg, leaderboard.NewMemoryRepo()))
}
