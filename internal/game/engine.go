package game

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/yrrving/plastsamlaren/internal/logging"
	"github.com/yrrving/plastsamlaren/internal/quest"
	"github.com/yrrving/plastsamlaren/internal/telemetry"
)

var (
	ErrAlreadyRunning = errors.New("run already in progress")
	ErrUnknownMode    = errors.New("unknown game mode")
)

// Rules holds the balance numbers of a run.
type Rules struct {
	CraftCost       int
	DeliveryPoints  int
	BonusMultiplier int
	BonusWindow     time.Duration
	TimedSeconds    int
	NPCPositions    []Vec3
}

func DefaultRules() Rules {
	return Rules{
		CraftCost:       5,
		DeliveryPoints:  10,
		BonusMultiplier: 2,
		BonusWindow:     24 * time.Hour,
		TimedSeconds:    120,
		NPCPositions: []Vec3{
			{X: 10, Z: -10},
			{X: -12, Z: -8},
			{X: 8, Z: 15},
			{X: -15, Z: 12},
			{X: 20, Z: 0},
		},
	}
}

func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r.CraftCost < 1 {
		r.CraftCost = d.CraftCost
	}
	if r.DeliveryPoints < 1 {
		r.DeliveryPoints = d.DeliveryPoints
	}
	if r.BonusMultiplier < 1 {
		r.BonusMultiplier = d.BonusMultiplier
	}
	if r.BonusWindow <= 0 {
		r.BonusWindow = d.BonusWindow
	}
	if r.TimedSeconds < 1 {
		r.TimedSeconds = d.TimedSeconds
	}
	if r.NPCPositions == nil {
		r.NPCPositions = d.NPCPositions
	}
	return r
}

type Options struct {
	Rules     Rules
	Quests    quest.Store
	Generator quest.Generator
	Clock     Clock
	Events    telemetry.Recorder
	Logger    *log.Logger
}

// Engine owns one player's run: inventory, score, NPC roster, daily quest
// progress and the timed-mode countdown. All methods are safe to call from
// several goroutines; each one is applied atomically.
type Engine struct {
	mu sync.Mutex

	rules  Rules
	quests quest.Store
	gen    quest.Generator
	clock  Clock
	events telemetry.Recorder
	logger *log.Logger

	run           uint64
	lifecycle     Lifecycle
	mode          Mode
	timeRemaining int
	timedOver     bool
	inv           Inventory
	score         int
	helped        int
	position      Vec3
	moveInput     Vec2
	roster        Roster

	daily          *quest.DailyQuest
	questProgress  int
	questCompleted bool
	bonusActive    bool
	bonusExpiresAt time.Time
}

func NewEngine(opts Options) *Engine {
	e := &Engine{
		rules:  opts.Rules.withDefaults(),
		quests: opts.Quests,
		gen:    opts.Generator,
		clock:  opts.Clock,
		events: opts.Events,
		logger: opts.Logger,
	}
	if e.quests == nil {
		e.quests = quest.NewMemoryStore()
	}
	if e.clock == nil {
		e.clock = RealClock{}
	}
	if e.events == nil {
		e.events = telemetry.Discard{}
	}
	e.resetLocked()
	return e
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// Start begins a run in mode. Starting while a run is in progress fails
// with ErrAlreadyRunning and changes nothing; an ended run may be
// restarted. Free mode loads today's quest.
func (e *Engine) Start(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lifecycle == LifecycleRunning {
		return ErrAlreadyRunning
	}

	e.resetLocked()
	e.run++
	e.lifecycle = LifecycleRunning
	e.mode = mode
	if mode == ModeTimed {
		e.timeRemaining = e.rules.TimedSeconds
	}
	e.roster.SpawnBatch(e.rules.NPCPositions)
	if mode == ModeFree {
		e.initDailyQuestLocked()
	}

	e.record(telemetry.EventRunStarted, telemetry.EventMetadata{"mode": string(mode), "run": e.run})
	return nil
}

// Reset returns to the start menu state. Always safe to call.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.lifecycle == LifecycleRunning {
		e.record(telemetry.EventRunEnded, telemetry.EventMetadata{
			"mode":   string(e.mode),
			"score":  e.score,
			"helped": e.helped,
			"reason": "reset",
		})
	}
	e.resetLocked()
	e.run++
}

func (e *Engine) resetLocked() {
	e.lifecycle = LifecycleNotStarted
	e.mode = ModeFree
	e.timeRemaining = 0
	e.timedOver = false
	e.inv = Inventory{}
	e.score = 0
	e.helped = 0
	e.position = Vec3{}
	e.moveInput = Vec2{}
	e.roster.Clear()

	e.daily = nil
	e.questProgress = 0
	e.questCompleted = false
	e.bonusActive = false
	e.bonusExpiresAt = time.Time{}
}

// TickTimer counts the timed-mode countdown down by one. It reports
// whether anything changed.
func (e *Engine) TickTimer() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tickLocked()
}

// TickRun is TickTimer restricted to the run numbered run, so a stale
// countdown cannot tick a newer run.
func (e *Engine) TickRun(run uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if run != e.run {
		return false
	}
	return e.tickLocked()
}

func (e *Engine) tickLocked() bool {
	if e.mode != ModeTimed || e.timedOver {
		return false
	}
	e.timeRemaining--
	if e.timeRemaining <= 0 {
		e.timeRemaining = 0
		e.timedOver = true
		e.lifecycle = LifecycleEnded
		e.record(telemetry.EventRunEnded, telemetry.EventMetadata{
			"mode":   string(e.mode),
			"score":  e.score,
			"helped": e.helped,
			"reason": "time_up",
		})
	}
	return true
}

// CollectMaterial picks up one unit of material.
func (e *Engine) CollectMaterial() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.inv.AddMaterial(1)
	e.record(telemetry.EventMaterialCollected, nil)
	e.advanceQuestLocked(quest.CategoryCollectMaterial)
}

// CraftContainer spends CraftCost material on one empty container.
func (e *Engine) CraftContainer() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.inv.Craft(e.rules.CraftCost) {
		return false
	}
	e.record(telemetry.EventContainerCrafted, nil)
	e.advanceQuestLocked(quest.CategoryCraftContainers)
	return true
}

// FillContainer fills one empty container.
func (e *Engine) FillContainer() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.inv.Fill() {
		return false
	}
	e.record(telemetry.EventContainerFilled, nil)
	e.advanceQuestLocked(quest.CategoryFillContainers)
	return true
}

// DeliverContainer hands one filled container to an NPC for
// DeliveryPoints, multiplied while the quest bonus window is open.
func (e *Engine) DeliverContainer() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.inv.Deliver() {
		return false
	}

	bonus := e.bonusActiveLocked(e.clock.Now())
	points := e.rules.DeliveryPoints
	if bonus {
		points *= e.rules.BonusMultiplier
	}
	e.score += points
	e.helped++

	e.record(telemetry.EventContainerDelivered, telemetry.EventMetadata{
		"points": points,
		"bonus":  bonus,
		"score":  e.score,
	})
	e.advanceQuestLocked(quest.CategoryDeliverContainers)
	return true
}

// MarkHelped flags an NPC for presentation bookkeeping; score is applied by
// DeliverContainer. Once the whole batch is helped a new one spawns.
func (e *Engine) MarkHelped(npcID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.roster.MarkHelped(npcID) {
		return false
	}
	if e.roster.AllHelped() {
		e.roster.SpawnBatch(e.rules.NPCPositions)
	}
	return true
}

// InitDailyQuest generates today's quest and adopts stored progress if it
// belongs to that quest. A stale or missing record starts from zero and is
// not written back until progress changes.
func (e *Engine) InitDailyQuest() quest.DailyQuest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initDailyQuestLocked()
}

func (e *Engine) initDailyQuestLocked() quest.DailyQuest {
	now := e.clock.Now()
	q := e.gen.Generate(now)

	e.daily = &q
	e.questProgress = 0
	e.questCompleted = false
	e.bonusActive = false
	e.bonusExpiresAt = time.Time{}

	if st, ok := e.quests.Load(); ok && st.BelongsTo(q) {
		e.questProgress = quest.ClampProgress(st.Progress, q.Target)
		e.questCompleted = st.Completed
		e.bonusExpiresAt = st.BonusExpiry()
		e.bonusActive = st.BonusActiveAt(now)
	}
	return q
}

// advanceQuestLocked is the single quest rule shared by all four actions.
func (e *Engine) advanceQuestLocked(c quest.Category) {
	if e.mode != ModeFree || e.daily == nil || e.daily.Category != c {
		return
	}

	e.questProgress = quest.ClampProgress(e.questProgress+1, e.daily.Target)
	if e.questProgress >= e.daily.Target && !e.questCompleted {
		now := e.clock.Now()
		e.questCompleted = true
		e.bonusActive = true
		e.bonusExpiresAt = now.Add(e.rules.BonusWindow)
		e.record(telemetry.EventQuestCompleted, telemetry.EventMetadata{
			"quest_id": e.daily.ID,
			"category": string(c),
			"target":   e.daily.Target,
		})
	}
	e.saveQuestLocked()
}

func (e *Engine) saveQuestLocked() {
	st := quest.ProgressState{
		QuestID:   e.daily.ID,
		Progress:  e.questProgress,
		Completed: e.questCompleted,
	}
	if !e.bonusExpiresAt.IsZero() {
		st.BonusExpiresAt = e.bonusExpiresAt.UnixMilli()
	}
	if err := e.quests.Save(st); err != nil {
		logging.JSON(e.logger, logging.LevelWarn, "quest_save_failed", map[string]any{
			"quest_id": st.QuestID,
			"progress": st.Progress,
			"error":    err.Error(),
		})
	}
}

func (e *Engine) bonusActiveLocked(now time.Time) bool {
	if e.bonusActive && !now.Before(e.bonusExpiresAt) {
		e.bonusActive = false
	}
	return e.bonusActive
}

// SetPlayerPosition stores the position reported by the presentation layer.
func (e *Engine) SetPlayerPosition(p Vec3) {
	e.mu.Lock()
	e.position = p
	e.mu.Unlock()
}

func (e *Engine) PlayerPosition() Vec3 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// SetMoveInput stores the movement vector clamped to the unit circle and
// returns the stored value.
func (e *Engine) SetMoveInput(v Vec2) Vec2 {
	v = v.ClampUnit()
	e.mu.Lock()
	e.moveInput = v
	e.mu.Unlock()
	return v
}

// FinalScore returns the score and helped count for leaderboard submission.
func (e *Engine) FinalScore() (score, helped int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score, e.helped
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Run:           e.run,
		Lifecycle:     e.lifecycle,
		Mode:          e.mode,
		TimeRemaining: e.timeRemaining,
		TimedOver:     e.timedOver,
		Inventory:     e.inv,
		Score:         e.score,
		NPCsHelped:    e.helped,
		Position:      e.position,
		MoveInput:     e.moveInput,
		NPCs:          e.roster.List(),
	}
	if e.daily != nil {
		qs := &QuestStatus{
			DailyQuest:  *e.daily,
			Progress:    e.questProgress,
			Completed:   e.questCompleted,
			BonusActive: e.bonusActiveLocked(e.clock.Now()),
		}
		if !e.bonusExpiresAt.IsZero() {
			qs.BonusExpiresAt = e.bonusExpiresAt.UnixMilli()
		}
		s.Quest = qs
	}
	return s
}

func (e *Engine) record(t telemetry.EventType, md telemetry.EventMetadata) {
	if err := e.events.RecordEvent(t, md); err != nil {
		logging.JSON(e.logger, logging.LevelWarn, "telemetry_record_failed", map[string]any{
			"event": string(t),
			"error": err.Error(),
		})
	}
}
