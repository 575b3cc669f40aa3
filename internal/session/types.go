// Package session owns the live games of a server: one tetris.Game per
// session ID, serialized behind a per-session lock, with gravity driven by
// snapshot polls or a background scheduler.
package session

import (
	"errors"
	"time"

	"github.com/vovakirdan/blockfall/internal/config"
)

// ID uniquely identifies a play session (browser cookie, SSH connection).
type ID string

// DefaultID is used by clients that do not identify themselves.
const DefaultID ID = "default"

var (
	// ErrNotPlayable is returned when a non-start action reaches a session
	// that is missing, uninitialized or over.
	ErrNotPlayable = errors.New("session: game over or not initialized")
	// ErrNotFound is returned for operations on an unknown session.
	ErrNotFound = errors.New("session: not found")
	// ErrExists is returned by Create when the ID is taken.
	ErrExists = errors.New("session: already exists")
	// ErrTooManySessions is returned when MaxSessions would be exceeded.
	ErrTooManySessions = errors.New("session: too many sessions")
)

// Result describes a finished game.
type Result struct {
	SessionID ID
	Score     int
	Level     int
	Lines     int
	Pieces    int
	Duration  time.Duration
}

// ResultSaver persists finished games.
// This allows the manager to save results without depending on the storage package.
type ResultSaver interface {
	SaveResult(result Result) error
}

// Config holds manager settings.
type Config struct {
	Gameplay      config.GameplayConfig
	Gravity       config.GravityMode
	GravityPeriod time.Duration // Scheduler resolution
	IdleTimeout   time.Duration // Zero disables expiry
	CleanupPeriod time.Duration
	MaxSessions   int   // Zero means unlimited
	WatchBuffer   int   // Snapshots buffered per watcher
	Seed          int64 // Non-zero makes piece sequences reproducible
}

// DefaultConfig returns settings matching the default configuration file.
func DefaultConfig() Config {
	return ConfigFrom(config.DefaultTetrisConfig(), 0)
}

// ConfigFrom derives manager settings from the loaded configuration.
func ConfigFrom(cfg config.TetrisConfig, seed int64) Config {
	return Config{
		Gameplay:      cfg.Gameplay,
		Gravity:       cfg.Server.Gravity,
		GravityPeriod: cfg.Server.GravityPeriod,
		IdleTimeout:   cfg.Server.IdleTimeout,
		CleanupPeriod: cfg.Server.CleanupPeriod,
		MaxSessions:   cfg.Server.MaxSessions,
		WatchBuffer:   16,
		Seed:          seed,
	}
}
