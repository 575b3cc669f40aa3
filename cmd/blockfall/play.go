package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/games/tetris"
	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/session"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start a local game in this terminal.

Controls:
  Left/H, Right/L - Move
  Down/J          - Soft drop
  Up/K/X          - Rotate
  Space           - Hard drop
  Enter           - Start a new game after game over
  R               - Restart
  Ctrl+S          - Save a screenshot to ~/.blockfall/screenshots
  Q/Ctrl+C        - Quit

Examples:
  blockfall play
  blockfall play --seed 42
  blockfall play --config ./my-tetris.yaml`,
	Args: cobra.NoArgs,
	Run:  runPlay,
}

func runPlay(_ *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	width, height := 80, 24 // Defaults
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		width = w
		height = h
	}
	if width < tetris.MinScreenW || height < tetris.MinScreenH+1 {
		fmt.Fprintf(os.Stderr, "Warning: terminal is %dx%d, blockfall needs at least %dx%d\n",
			width, height, tetris.MinScreenW, tetris.MinScreenH+1)
	}

	// The UI polls its session every frame, so no scheduler or idle expiry.
	mcfg := session.ConfigFrom(cfg, flagSeed)
	mcfg.Gravity = config.GravityPoll
	mcfg.IdleTimeout = 0
	manager := session.NewManager(mcfg, nil)

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
	} else {
		manager.SetResultSaver(store)
	}

	runErr := tui.Run(manager, session.DefaultID, width, height)

	// Flush pending saves before closing the store.
	manager.Stop()
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
