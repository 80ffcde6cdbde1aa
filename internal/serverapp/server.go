package serverapp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/yrrving/plastsamlaren/internal/config"
	"github.com/yrrving/plastsamlaren/internal/game"
	"github.com/yrrving/plastsamlaren/internal/httpmw"
	"github.com/yrrving/plastsamlaren/internal/leaderboard"
	lbsqlite "github.com/yrrving/plastsamlaren/internal/leaderboard/sqlite"
	"github.com/yrrving/plastsamlaren/internal/logging"
	"github.com/yrrving/plastsamlaren/internal/play"
	"github.com/yrrving/plastsamlaren/internal/quest"
	"github.com/yrrving/plastsamlaren/internal/telemetry"
	staticfiles "github.com/yrrving/plastsamlaren/static"
)

const serviceName = "plastsamlaren"

// telemetryLimit bounds the in-memory event log.
const telemetryLimit = 50000

type Options struct {
	Config *config.Config
	Logger *log.Logger
	// Clock overrides wall time for the engine and quest endpoint.
	Clock game.Clock
	// Leaderboard overrides the repository chosen from config.
	Leaderboard leaderboard.Repository
}

// App is the assembled server. Close releases the hub, the countdown and
// the leaderboard store.
type App struct {
	handler   http.Handler
	engine    *game.Engine
	play      *play.Handler
	stopHub   context.CancelFunc
	closeRepo func() error
}

func New(opts Options) (*App, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = game.RealClock{}
	}
	cfg := opts.Config

	questStore, err := quest.NewFileStore(cfg.Server.DataDir)
	if err != nil {
		return nil, fmt.Errorf("quest store: %w", err)
	}

	events := telemetry.NewBoundedMemoryRepository(telemetryLimit)
	events.SetNow(opts.Clock.Now)

	board, closeRepo, err := openLeaderboard(cfg, opts.Leaderboard)
	if err != nil {
		return nil, err
	}

	engine := game.NewEngine(game.Options{
		Rules:     cfg.Rules(),
		Quests:    questStore,
		Generator: cfg.Generator(),
		Clock:     opts.Clock,
		Events:    events,
		Logger:    opts.Logger,
	})

	hub := play.NewHub(opts.Logger)
	if origin := strings.TrimSpace(cfg.Server.CORSOrigin); origin != "" {
		hub.SetCheckOrigin(func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || origin == "*" || o == origin
		})
	}
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	playHandler := play.NewHandler(play.Options{
		Engine:       engine,
		Hub:          hub,
		Leaderboard:  board,
		Events:       events,
		TickInterval: cfg.TickInterval(),
		NameMaxLen:   cfg.Leaderboard.NameMaxLen,
		Logger:       opts.Logger,
	})

	mux := http.NewServeMux()

	staticHandler := http.FileServer(http.FS(staticfiles.EmbeddedFS()))
	if cfg.Server.DevStatic {
		staticHandler = http.FileServer(http.Dir("static"))
	}
	mux.Handle("/static/", http.StripPrefix("/static/", staticHandler))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": serviceName,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := board.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":    false,
				"error": "leaderboard unavailable",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":      true,
			"service": serviceName,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/api/game/state", playHandler.State)
	mux.HandleFunc("/api/game/start", playHandler.Start)
	mux.HandleFunc("/api/game/reset", playHandler.Reset)
	mux.HandleFunc("/api/game/collect", playHandler.Collect)
	mux.HandleFunc("/api/game/craft", playHandler.Craft)
	mux.HandleFunc("/api/game/fill", playHandler.Fill)
	mux.HandleFunc("/api/game/deliver", playHandler.Deliver)
	mux.HandleFunc("/api/game/helped", playHandler.Helped)
	mux.HandleFunc("/api/game/move", playHandler.Move)
	mux.HandleFunc("/api/game/position", playHandler.Position)
	mux.HandleFunc("/api/game/submit", playHandler.Submit)
	mux.HandleFunc("/ws", hub.ServeWS)

	questHandler := quest.NewHandler(cfg.Generator(), questStore)
	questHandler.SetNow(opts.Clock.Now)
	mux.HandleFunc("/api/quest/today", questHandler.Today)

	boardHandler := leaderboard.NewHandler(board)
	boardHandler.SetLimits(cfg.Leaderboard.NameMaxLen, cfg.Leaderboard.DefaultLimit, cfg.Leaderboard.MaxLimit)
	mux.HandleFunc("/api/leaderboard", boardHandler.Root)
	mux.HandleFunc("/leaderboard", boardHandler.Page)

	statsHandler := telemetry.NewHandler(events)
	mux.HandleFunc("/api/stats", statsHandler.Stats)

	mux.HandleFunc("/api/config", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(cfg.Game)
	})

	logging.JSON(opts.Logger, logging.LevelInfo, "server_configured", map[string]any{
		"data_dir":    cfg.Server.DataDir,
		"leaderboard": leaderboardKind(cfg, opts.Leaderboard),
		"difficulty":  cfg.Game.Difficulty,
	})

	return &App{
		handler: httpmw.Chain(
			mux,
			httpmw.WithAccessLog(opts.Logger),
			httpmw.WithRequestID,
			httpmw.WithRecover(opts.Logger),
			httpmw.WithCORS(cfg.Server.CORSOrigin),
		),
		engine:    engine,
		play:      playHandler,
		stopHub:   stopHub,
		closeRepo: closeRepo,
	}, nil
}

func (a *App) Handler() http.Handler { return a.handler }

func (a *App) Engine() *game.Engine { return a.engine }

func (a *App) Close() error {
	a.play.Close()
	a.stopHub()
	if a.closeRepo != nil {
		return a.closeRepo()
	}
	return nil
}

// openLeaderboard picks the override, a remote service, or a local SQLite
// file, in that order.
func openLeaderboard(cfg *config.Config, override leaderboard.Repository) (leaderboard.Repository, func() error, error) {
	if override != nil {
		return override, nil, nil
	}
	if url := strings.TrimSpace(cfg.Leaderboard.RemoteURL); url != "" {
		c, err := leaderboard.NewClient(url, 5*time.Second)
		if err != nil {
			return nil, nil, err
		}
		return c, nil, nil
	}
	store, err := lbsqlite.Open(cfg.Leaderboard.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("leaderboard store: %w", err)
	}
	store.SetNameMaxLen(cfg.Leaderboard.NameMaxLen)
	return store, store.Close, nil
}

func leaderboardKind(cfg *config.Config, override leaderboard.Repository) string {
	switch {
	case override != nil:
		return "custom"
	case cfg.Leaderboard.RemoteURL != "":
		return "remote"
	default:
		return "sqlite"
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
