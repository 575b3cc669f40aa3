// blockfall is a server-authoritative falling-block puzzle game.
//
// Usage:
//
//	blockfall serve          - Start the HTTP/WebSocket API (and optionally SSH)
//	blockfall play           - Play in this terminal
//	blockfall scores         - Show the leaderboard
//	blockfall pieces         - Print the piece catalog
//
// Global flags:
//
//	--config <path>     - Custom config YAML
//	--db <path>         - Scores database (default from config: ~/.blockfall/scores.db)
//	--seed <value>      - RNG seed for reproducible piece sequences
//	--log-level <level> - debug, info, warn, error
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagSeed     int64
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blockfall",
	Short: "Blockfall - a falling-block puzzle served over HTTP, WebSocket and SSH",
	Long: `Blockfall keeps every game on the server. Clients send moves and
receive board snapshots over HTTP, a WebSocket, or a terminal UI.

Available commands:
  serve    - Start the game server
  play     - Play locally in your terminal
  scores   - View high scores
  pieces   - Show every piece and rotation

Examples:
  blockfall serve --http :8080 --ssh :23234
  blockfall play --seed 42
  blockfall scores --limit 20`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to custom config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (overrides config)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(piecesCmd)
}

// loadConfig loads the configuration and applies global flag overrides.
func loadConfig() (config.TetrisConfig, error) {
	cfg, err := config.LoadTetris(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, nil
}

// newLogger builds the process logger from the log settings.
func newLogger(cfg config.LogConfig, prefix string) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	})

	switch cfg.Format {
	case "", "text":
		logger.SetFormatter(log.TextFormatter)
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.Format)
	}
	return logger, nil
}
