package config

import "time"

// SpeedCurve derives level, gravity speed and line-clear points from score.
type SpeedCurve struct {
	cfg GameplayConfig
}

// NewSpeedCurve creates a curve over the given gameplay constants.
func NewSpeedCurve(cfg GameplayConfig) *SpeedCurve {
	return &SpeedCurve{cfg: cfg}
}

// Level returns 1 + score / points_per_level.
func (c *SpeedCurve) Level(score int) int {
	if c.cfg.PointsPerLevel <= 0 || score < 0 {
		return 1
	}
	return 1 + score/c.cfg.PointsPerLevel
}

// FallInterval returns the gravity interval for a level, never below the floor.
func (c *SpeedCurve) FallInterval(level int) time.Duration {
	if level < 1 {
		level = 1
	}
	interval := c.cfg.InitialFallInterval - time.Duration(level-1)*c.cfg.FallIntervalStep
	if interval < c.cfg.MinFallInterval {
		return c.cfg.MinFallInterval
	}
	return interval
}

// LineClearPoints returns the score for clearing n rows at once.
func (c *SpeedCurve) LineClearPoints(n int) int {
	if n <= 0 {
		return 0
	}
	return c.cfg.LineClearBase * n * n
}

// HardDropPoints returns the score for a hard drop that descended the given rows.
func (c *SpeedCurve) HardDropPoints(rows int) int {
	if rows <= 0 {
		return 0
	}
	return c.cfg.HardDropPoints * rows
}

// SoftDropPoints returns the score for one successful soft drop.
func (c *SpeedCurve) SoftDropPoints() int {
	return c.cfg.SoftDropPoints
}
