package game

import (
	"math"

	"github.com/yrrving/plastsamlaren/internal/quest"
)

// Lifecycle is the run phase.
type Lifecycle string

const (
	LifecycleNotStarted Lifecycle = "not_started"
	LifecycleRunning    Lifecycle = "running"
	LifecycleEnded      Lifecycle = "ended"
)

// Mode selects free play or the countdown variant.
type Mode string

const (
	ModeFree  Mode = "free"
	ModeTimed Mode = "timed"
)

func (m Mode) Valid() bool {
	return m == ModeFree || m == ModeTimed
}

// Vec3 is a world-space position. The engine stores it for others to query
// and never interprets it.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec2 is a normalized movement input on the ground plane.
type Vec2 struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// ClampUnit scales v onto the unit circle when it lies outside it.
// Non-finite components are treated as zero.
func (v Vec2) ClampUnit() Vec2 {
	if math.IsNaN(v.X) || math.IsInf(v.X, 0) {
		v.X = 0
	}
	if math.IsNaN(v.Z) || math.IsInf(v.Z, 0) {
		v.Z = 0
	}
	l := math.Hypot(v.X, v.Z)
	if l <= 1 {
		return v
	}
	return Vec2{X: v.X / l, Z: v.Z / l}
}

// QuestStatus is the active daily quest plus the run's view of its progress.
type QuestStatus struct {
	quest.DailyQuest
	Progress       int   `json:"progress"`
	Completed      bool  `json:"completed"`
	BonusActive    bool  `json:"bonusActive"`
	BonusExpiresAt int64 `json:"bonusExpiresAt,omitempty"`
}

// Snapshot is a copy of everything presentation layers read.
type Snapshot struct {
	Run           uint64       `json:"run"`
	Lifecycle     Lifecycle    `json:"lifecycle"`
	Mode          Mode         `json:"mode"`
	TimeRemaining int          `json:"timeRemaining"`
	TimedOver     bool         `json:"timedOver"`
	Inventory     Inventory    `json:"inventory"`
	Score         int          `json:"score"`
	NPCsHelped    int          `json:"npcsHelped"`
	Position      Vec3         `json:"position"`
	MoveInput     Vec2         `json:"moveInput"`
	NPCs          []NPC        `json:"npcs"`
	Quest         *QuestStatus `json:"quest,omitempty"`
}
