// Package config provides YAML-based configuration loading for blockfall:
// gameplay constants, server settings, storage and logging.
package config

import (
	"errors"
	"fmt"
	"time"
)

// TetrisConfig contains all configuration for the game server.
type TetrisConfig struct {
	Gameplay GameplayConfig `yaml:"gameplay"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// GameplayConfig holds the scoring and gravity constants.
type GameplayConfig struct {
	InitialFallInterval time.Duration `yaml:"initial_fall_interval"` // Fall interval at level 1
	MinFallInterval     time.Duration `yaml:"min_fall_interval"`     // Floor of the speed curve
	FallIntervalStep    time.Duration `yaml:"fall_interval_step"`    // Reduction per level gained
	PointsPerLevel      int           `yaml:"points_per_level"`      // Score needed per level
	LineClearBase       int           `yaml:"line_clear_base"`       // Points = base * lines^2
	SoftDropPoints      int           `yaml:"soft_drop_points"`      // Per successful soft drop
	HardDropPoints      int           `yaml:"hard_drop_points"`      // Per row descended by hard drop
}

// GravityMode selects what drives the gravity tick.
type GravityMode string

const (
	// GravityPoll ticks a session whenever its snapshot is queried.
	GravityPoll GravityMode = "poll"
	// GravityScheduler ticks every session from a background ticker.
	GravityScheduler GravityMode = "scheduler"
)

// ServerConfig defines transport and session-manager settings.
type ServerConfig struct {
	HTTPAddr      string        `yaml:"http_addr"`
	SSHAddr       string        `yaml:"ssh_addr"` // Empty disables the SSH server
	HostKeyPath   string        `yaml:"host_key_path"`
	Gravity       GravityMode   `yaml:"gravity"`
	GravityPeriod time.Duration `yaml:"gravity_period"` // Scheduler resolution
	IdleTimeout   time.Duration `yaml:"idle_timeout"`   // Sessions untouched this long are destroyed
	CleanupPeriod time.Duration `yaml:"cleanup_period"`
	MaxSessions   int           `yaml:"max_sessions"`
	PushInterval  time.Duration `yaml:"push_interval"` // WebSocket keepalive snapshot period
}

// StorageConfig defines where finished games are recorded.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// LogConfig defines logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, logfmt
}

// Validate reports the first setting that cannot drive a game.
func (c TetrisConfig) Validate() error {
	g := c.Gameplay
	switch {
	case g.InitialFallInterval <= 0:
		return errors.New("config: gameplay.initial_fall_interval must be positive")
	case g.MinFallInterval <= 0:
		return errors.New("config: gameplay.min_fall_interval must be positive")
	case g.MinFallInterval > g.InitialFallInterval:
		return errors.New("config: gameplay.min_fall_interval exceeds initial_fall_interval")
	case g.FallIntervalStep < 0:
		return errors.New("config: gameplay.fall_interval_step must not be negative")
	case g.PointsPerLevel <= 0:
		return errors.New("config: gameplay.points_per_level must be positive")
	case g.LineClearBase < 0 || g.SoftDropPoints < 0 || g.HardDropPoints < 0:
		return errors.New("config: gameplay points must not be negative")
	}

	switch c.Server.Gravity {
	case GravityPoll, GravityScheduler:
	default:
		return fmt.Errorf("config: unknown gravity mode %q", c.Server.Gravity)
	}
	if c.Server.Gravity == GravityScheduler && c.Server.GravityPeriod <= 0 {
		return errors.New("config: server.gravity_period must be positive in scheduler mode")
	}
	return nil
}
