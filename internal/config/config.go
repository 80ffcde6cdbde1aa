package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yrrving/plastsamlaren/internal/game"
	"github.com/yrrving/plastsamlaren/internal/quest"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Version     string            `yaml:"version" json:"version"`
	Server      ServerConfig      `yaml:"server" json:"server"`
	Game        GameConfig        `yaml:"game" json:"game"`
	Quests      QuestConfig       `yaml:"quests" json:"quests"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard" json:"leaderboard"`
}

type ServerConfig struct {
	Addr       string `yaml:"addr" json:"addr"`
	DataDir    string `yaml:"data_dir" json:"data_dir"`
	CORSOrigin string `yaml:"cors_origin" json:"cors_origin"`
	DevStatic  bool   `yaml:"dev_static" json:"dev_static"`
}

type GameConfig struct {
	Difficulty       string       `yaml:"difficulty" json:"difficulty"`
	CraftCost        int          `yaml:"craft_cost" json:"craft_cost"`
	DeliveryPoints   int          `yaml:"delivery_points" json:"delivery_points"`
	BonusMultiplier  int          `yaml:"bonus_multiplier" json:"bonus_multiplier"`
	BonusWindowHours int          `yaml:"bonus_window_hours" json:"bonus_window_hours"`
	TimedSeconds     int          `yaml:"timed_seconds" json:"timed_seconds"`
	TickIntervalMS   int          `yaml:"tick_interval_ms" json:"tick_interval_ms"`
	NPCPositions     [][3]float64 `yaml:"npc_positions" json:"npc_positions"`
}

type QuestConfig struct {
	Templates []quest.Template `yaml:"templates" json:"templates"`
}

type LeaderboardConfig struct {
	DBPath       string `yaml:"db_path" json:"db_path"`
	RemoteURL    string `yaml:"remote_url" json:"remote_url"`
	NameMaxLen   int    `yaml:"name_max_len" json:"name_max_len"`
	DefaultLimit int    `yaml:"default_limit" json:"default_limit"`
	MaxLimit     int    `yaml:"max_limit" json:"max_limit"`
}

func (s *ServerConfig) ApplyDefaults() {
	if strings.TrimSpace(s.Addr) == "" {
		s.Addr = ":42069"
	}
	if strings.TrimSpace(s.DataDir) == "" {
		s.DataDir = "data"
	}
}

func (g *GameConfig) ApplyDefaults() {
	p := Preset(g.Difficulty)
	if g.CraftCost == 0 {
		g.CraftCost = p.CraftCost
	}
	if g.DeliveryPoints == 0 {
		g.DeliveryPoints = p.DeliveryPoints
	}
	if g.BonusMultiplier == 0 {
		g.BonusMultiplier = p.BonusMultiplier
	}
	if g.BonusWindowHours == 0 {
		g.BonusWindowHours = p.BonusWindowHours
	}
	if g.TimedSeconds == 0 {
		g.TimedSeconds = p.TimedSeconds
	}
	if g.TickIntervalMS == 0 {
		g.TickIntervalMS = 1000
	}
	if len(g.NPCPositions) == 0 {
		for _, v := range game.DefaultRules().NPCPositions {
			g.NPCPositions = append(g.NPCPositions, [3]float64{v.X, v.Y, v.Z})
		}
	}
}

func (q *QuestConfig) ApplyDefaults() {
	if len(q.Templates) == 0 {
		q.Templates = quest.DefaultTemplates()
	}
}

func (l *LeaderboardConfig) ApplyDefaults(dataDir string) {
	if strings.TrimSpace(l.DBPath) == "" && strings.TrimSpace(l.RemoteURL) == "" {
		l.DBPath = strings.TrimRight(dataDir, "/") + "/leaderboard.db"
	}
	if l.NameMaxLen == 0 {
		l.NameMaxLen = 20
	}
	if l.DefaultLimit == 0 {
		l.DefaultLimit = 10
	}
	if l.MaxLimit == 0 {
		l.MaxLimit = 100
	}
}

func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Game.ApplyDefaults()
	c.Quests.ApplyDefaults()
	c.Leaderboard.ApplyDefaults(c.Server.DataDir)
}

// Validate rejects values the engine cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Game.CraftCost < 1 {
		errs = append(errs, fmt.Errorf("game.craft_cost must be >= 1, got %d", c.Game.CraftCost))
	}
	if c.Game.DeliveryPoints < 1 {
		errs = append(errs, fmt.Errorf("game.delivery_points must be >= 1, got %d", c.Game.DeliveryPoints))
	}
	if c.Game.BonusMultiplier < 1 {
		errs = append(errs, fmt.Errorf("game.bonus_multiplier must be >= 1, got %d", c.Game.BonusMultiplier))
	}
	if c.Game.BonusWindowHours < 1 {
		errs = append(errs, fmt.Errorf("game.bonus_window_hours must be >= 1, got %d", c.Game.BonusWindowHours))
	}
	if c.Game.TimedSeconds < 1 {
		errs = append(errs, fmt.Errorf("game.timed_seconds must be >= 1, got %d", c.Game.TimedSeconds))
	}
	if c.Game.TickIntervalMS < 1 {
		errs = append(errs, fmt.Errorf("game.tick_interval_ms must be >= 1, got %d", c.Game.TickIntervalMS))
	}
	for i, t := range c.Quests.Templates {
		if !t.Category.Valid() {
			errs = append(errs, fmt.Errorf("quests.templates[%d]: unknown category %q", i, t.Category))
		}
		if t.MinTarget < 1 || t.MaxTarget < t.MinTarget {
			errs = append(errs, fmt.Errorf("quests.templates[%d]: bad target range %d..%d", i, t.MinTarget, t.MaxTarget))
		}
	}
	if c.Leaderboard.NameMaxLen < 1 {
		errs = append(errs, fmt.Errorf("leaderboard.name_max_len must be >= 1, got %d", c.Leaderboard.NameMaxLen))
	}
	if c.Leaderboard.DefaultLimit < 1 || c.Leaderboard.DefaultLimit > c.Leaderboard.MaxLimit {
		errs = append(errs, fmt.Errorf("leaderboard.default_limit must be in 1..%d, got %d", c.Leaderboard.MaxLimit, c.Leaderboard.DefaultLimit))
	}
	return errors.Join(errs...)
}

// Rules maps the game section onto engine rules.
func (c *Config) Rules() game.Rules {
	r := game.Rules{
		CraftCost:       c.Game.CraftCost,
		DeliveryPoints:  c.Game.DeliveryPoints,
		BonusMultiplier: c.Game.BonusMultiplier,
		BonusWindow:     time.Duration(c.Game.BonusWindowHours) * time.Hour,
		TimedSeconds:    c.Game.TimedSeconds,
	}
	for _, p := range c.Game.NPCPositions {
		r.NPCPositions = append(r.NPCPositions, game.Vec3{X: p[0], Y: p[1], Z: p[2]})
	}
	return r
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Game.TickIntervalMS) * time.Millisecond
}

func (c *Config) Generator() quest.Generator {
	return quest.Generator{Templates: c.Quests.Templates}
}

// Default returns a config with every default applied.
func Default() *Config {
	c := &Config{Version: "1"}
	c.ApplyDefaults()
	return c
}

// Load reads a YAML config. A missing file yields Default().
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}
	var r Config
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	r.ApplyDefaults()
	return &r, nil
}
