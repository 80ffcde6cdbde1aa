package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvOverrides holds values that may be set from the environment. Unset
// variables leave the file config untouched.
type EnvOverrides struct {
	Addr           string `env:"PLAST_ADDR"`
	DataDir        string `env:"PLAST_DATA_DIR"`
	CORSOrigin     string `env:"PLAST_CORS_ORIGIN"`
	DevStatic      *bool  `env:"PLAST_DEV_STATIC"`
	Difficulty     string `env:"PLAST_DIFFICULTY"`
	TimedSeconds   int    `env:"PLAST_TIMED_SECONDS"`
	LeaderboardDB  string `env:"PLAST_LEADERBOARD_DB"`
	LeaderboardURL string `env:"PLAST_LEADERBOARD_URL"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FromEnv reads EnvOverrides from the process environment.
func FromEnv() (EnvOverrides, error) {
	var o EnvOverrides
	err := ParseEnv(&o)
	return o, err
}

// Apply copies set overrides onto c. A difficulty override replaces the
// balance numbers with the preset's.
func (o EnvOverrides) Apply(c *Config) {
	if o.Addr != "" {
		c.Server.Addr = o.Addr
	}
	if o.DataDir != "" {
		c.Server.DataDir = o.DataDir
	}
	if o.CORSOrigin != "" {
		c.Server.CORSOrigin = o.CORSOrigin
	}
	if o.DevStatic != nil {
		c.Server.DevStatic = *o.DevStatic
	}
	if o.Difficulty != "" {
		p := Preset(o.Difficulty)
		c.Game.Difficulty = o.Difficulty
		c.Game.CraftCost = p.CraftCost
		c.Game.DeliveryPoints = p.DeliveryPoints
		c.Game.BonusMultiplier = p.BonusMultiplier
		c.Game.BonusWindowHours = p.BonusWindowHours
		c.Game.TimedSeconds = p.TimedSeconds
	}
	if o.TimedSeconds > 0 {
		c.Game.TimedSeconds = o.TimedSeconds
	}
	if o.LeaderboardURL != "" {
		c.Leaderboard.RemoteURL = o.LeaderboardURL
		c.Leaderboard.DBPath = ""
	}
	if o.LeaderboardDB != "" {
		c.Leaderboard.DBPath = o.LeaderboardDB
	}
}
