package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/tetris.yaml
var defaultTetrisYAML []byte

// DefaultTetrisConfig returns the hard-coded default configuration.
// It matches defaults/tetris.yaml and is used when the embedded file
// cannot be parsed.
func DefaultTetrisConfig() TetrisConfig {
	return TetrisConfig{
		Gameplay: DefaultGameplay(),
		Server: ServerConfig{
			HTTPAddr:      ":8080",
			Gravity:       GravityPoll,
			GravityPeriod: 50 * time.Millisecond,
			IdleTimeout:   30 * time.Minute,
			CleanupPeriod: time.Minute,
			MaxSessions:   1024,
			PushInterval:  time.Second,
		},
		Storage: StorageConfig{
			DBPath: "~/.blockfall/scores.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// DefaultGameplay returns the classic scoring and speed constants.
func DefaultGameplay() GameplayConfig {
	return GameplayConfig{
		InitialFallInterval: 800 * time.Millisecond,
		MinFallInterval:     100 * time.Millisecond,
		FallIntervalStep:    50 * time.Millisecond,
		PointsPerLevel:      500,
		LineClearBase:       100,
		SoftDropPoints:      1,
		HardDropPoints:      2,
	}
}

// GetDefaultYAML returns the embedded default YAML.
func GetDefaultYAML() []byte {
	return defaultTetrisYAML
}
