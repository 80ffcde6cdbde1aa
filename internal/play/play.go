// Package play exposes one progression engine to presentation clients over
// HTTP and WebSocket, and drives its timed-mode countdown.
package play

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/yrrving/plastsamlaren/internal/game"
	"github.com/yrrving/plastsamlaren/internal/leaderboard"
	"github.com/yrrving/plastsamlaren/internal/logging"
	"github.com/yrrving/plastsamlaren/internal/telemetry"
)

// WebSocket message types.
const (
	MsgSnapshot = "snapshot"
	MsgMove     = "move"
	MsgPosition = "position"
)

type Options struct {
	Engine       *game.Engine
	Hub          *Hub
	Leaderboard  leaderboard.Repository
	Events       telemetry.Recorder
	TickInterval time.Duration
	NameMaxLen   int
	Logger       *log.Logger
}

type Handler struct {
	engine     *game.Engine
	hub        *Hub
	submitter  leaderboard.Submitter
	hasBoard   bool
	events     telemetry.Recorder
	tick       time.Duration
	nameMaxLen int
	logger     *log.Logger

	mu        sync.Mutex
	countdown context.CancelFunc
	wg        sync.WaitGroup
}

func NewHandler(opts Options) *Handler {
	h := &Handler{
		engine:     opts.Engine,
		hub:        opts.Hub,
		submitter:  leaderboard.Submitter{Repo: opts.Leaderboard, Logger: opts.Logger},
		hasBoard:   opts.Leaderboard != nil,
		events:     opts.Events,
		tick:       opts.TickInterval,
		nameMaxLen: opts.NameMaxLen,
		logger:     opts.Logger,
	}
	if h.events == nil {
		h.events = telemetry.Discard{}
	}
	if h.tick <= 0 {
		h.tick = time.Second
	}
	if h.hub != nil {
		h.hub.OnConnect(func() any { return h.engine.Snapshot() })
		h.hub.OnMessage(h.handleMessage)
	}
	return h
}

// Close stops a running countdown and waits for it to exit.
func (h *Handler) Close() {
	h.stopCountdown()
	h.wg.Wait()
}

type actionResponse struct {
	OK    bool          `json:"ok"`
	State game.Snapshot `json:"state"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg})
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(out)
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

// publish pushes the current snapshot to every WebSocket client and returns it.
func (h *Handler) publish() game.Snapshot {
	s := h.engine.Snapshot()
	if h.hub != nil {
		h.hub.Broadcast(MsgSnapshot, s)
	}
	return s
}

// timeUp reports whether a timed run has run out. Score and inventory are
// frozen from then on.
func (h *Handler) timeUp() bool {
	return h.engine.Snapshot().TimedOver
}

func (h *Handler) respond(w http.ResponseWriter, ok bool) {
	writeJSON(w, http.StatusOK, actionResponse{OK: ok, State: h.publish()})
}

// GET /api/game/state
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Snapshot())
}

// POST /api/game/start {mode}
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var body struct {
		Mode game.Mode `json:"mode"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if body.Mode == "" {
		body.Mode = game.ModeFree
	}

	if err := h.engine.Start(body.Mode); err != nil {
		switch {
		case errors.Is(err, game.ErrUnknownMode):
			writeErr(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, game.ErrAlreadyRunning):
			writeErr(w, http.StatusConflict, err.Error())
		default:
			writeErr(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s := h.engine.Snapshot()
	h.stopCountdown()
	if s.Mode == game.ModeTimed {
		h.startCountdown(s.Run)
	}
	h.respond(w, true)
}

// POST /api/game/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	h.stopCountdown()
	h.engine.Reset()
	h.respond(w, true)
}

// POST /api/game/collect
func (h *Handler) Collect(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if h.timeUp() {
		h.respond(w, false)
		return
	}
	h.engine.CollectMaterial()
	h.respond(w, true)
}

// POST /api/game/craft
func (h *Handler) Craft(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	h.respond(w, !h.timeUp() && h.engine.CraftContainer())
}

// POST /api/game/fill
func (h *Handler) Fill(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	h.respond(w, !h.timeUp() && h.engine.FillContainer())
}

// POST /api/game/deliver
func (h *Handler) Deliver(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	h.respond(w, !h.timeUp() && h.engine.DeliverContainer())
}

// POST /api/game/helped {npcId}
func (h *Handler) Helped(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var body struct {
		NPCID string `json:"npcId"`
	}
	if err := decodeJSON(r, &body); err != nil || body.NPCID == "" {
		writeErr(w, http.StatusBadRequest, "npcId is required")
		return
	}
	h.respond(w, h.engine.MarkHelped(body.NPCID))
}

// POST /api/game/move {x, z}
func (h *Handler) Move(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var v game.Vec2
	if err := decodeJSON(r, &v); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.engine.SetMoveInput(v)
	h.respond(w, true)
}

// POST /api/game/position {x, y, z}
func (h *Handler) Position(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	var p game.Vec3
	if err := decodeJSON(r, &p); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	h.engine.SetPlayerPosition(p)
	h.respond(w, true)
}

// POST /api/game/submit {name}
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}
	if !h.hasBoard {
		writeErr(w, http.StatusServiceUnavailable, "leaderboard not configured")
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if h.engine.Snapshot().Lifecycle == game.LifecycleNotStarted {
		writeErr(w, http.StatusConflict, "no run to submit")
		return
	}

	score, helped := h.engine.FinalScore()
	sub, err := leaderboard.Submission{Name: body.Name, Score: score, HelpedCount: helped}.Normalize(h.nameMaxLen)
	if err != nil {
		leaderboard.WriteRepoErr(w, err)
		return
	}
	e, err := h.submitter.Submit(r.Context(), sub)
	if err != nil {
		logging.JSON(h.logger, logging.LevelWarn, "leaderboard_submit_failed", map[string]any{
			"score": score,
			"error": err.Error(),
		})
		leaderboard.WriteRepoErr(w, err)
		return
	}
	if err := h.events.RecordEvent(telemetry.EventScoreSubmitted, telemetry.EventMetadata{
		"score":  score,
		"helped": helped,
	}); err != nil {
		logging.JSON(h.logger, logging.LevelWarn, "telemetry_record_failed", map[string]any{"error": err.Error()})
	}
	writeJSON(w, http.StatusCreated, e)
}

// handleMessage applies continuous input sent over the socket. Discrete
// actions go through the HTTP endpoints.
func (h *Handler) handleMessage(m Message) {
	switch m.Type {
	case MsgMove:
		var v game.Vec2
		if json.Unmarshal(m.Payload, &v) == nil {
			h.engine.SetMoveInput(v)
			h.publish()
		}
	case MsgPosition:
		var p game.Vec3
		if json.Unmarshal(m.Payload, &p) == nil {
			h.engine.SetPlayerPosition(p)
			h.publish()
		}
	}
}

func (h *Handler) startCountdown(run uint64) {
	ctx, cancel := context.WithCancel(context.Background())

	h.mu.Lock()
	h.countdown = cancel
	h.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		game.Countdown{
			Engine:   h.engine,
			Interval: h.tick,
			RunID:    run,
			OnTick: func(s game.Snapshot) {
				if h.hub != nil {
					h.hub.Broadcast(MsgSnapshot, s)
				}
			},
		}.Run(ctx)
	}()
}

func (h *Handler) stopCountdown() {
	h.mu.Lock()
	cancel := h.countdown
	h.countdown = nil
	h.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
