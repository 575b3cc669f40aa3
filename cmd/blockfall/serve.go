package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/platform/web"
	"github.com/vovakirdan/blockfall/internal/session"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var (
	flagHTTPAddr string
	flagSSHAddr  string
	flagHostKey  string
	flagGravity  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the blockfall server",
	Long: `Start the HTTP/WebSocket game API and, optionally, an SSH server
that runs the terminal UI for each connection.

HTTP clients are identified by the blockfall_session cookie or the
X-Session-ID header. Every SSH connection gets its own session that ends
with the connection. Finished games are recorded in the scores database.

Gravity modes:
  poll       - A session falls when its state is read (default)
  scheduler  - A background ticker advances every session

Examples:
  blockfall serve                          # HTTP on :8080
  blockfall serve --http :9000 --ssh :2222 # HTTP and SSH
  blockfall serve --gravity scheduler      # Push-driven gravity for WebSocket clients
  blockfall serve --host-key ./host_key    # Use specific SSH host key

Users can connect with:
  curl -s localhost:8080/game_state
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP listen address (overrides config, default :8080)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH listen address, e.g. :23234 (disabled when empty)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to SSH host key file (auto-generated if not specified)")
	serveCmd.Flags().StringVar(&flagGravity, "gravity", "", "Gravity mode: poll or scheduler (overrides config)")
}

// applyServeFlags overrides the loaded config with serve flags.
func applyServeFlags(cfg *config.TetrisConfig) error {
	if flagHTTPAddr != "" {
		cfg.Server.HTTPAddr = flagHTTPAddr
	}
	if flagSSHAddr != "" {
		cfg.Server.SSHAddr = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.Server.HostKeyPath = flagHostKey
	}
	if flagGravity != "" {
		cfg.Server.Gravity = config.GravityMode(flagGravity)
	}
	return cfg.Validate()
}

func runServe(_ *cobra.Command, _ []string) {
	startTime := time.Now()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := applyServeFlags(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Log, "blockfall")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	manager := session.NewManager(session.ConfigFrom(cfg, flagSeed), logger.WithPrefix("sessions"))

	opts := web.Options{PushInterval: cfg.Server.PushInterval}
	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		// Games still work, they just are not recorded.
		logger.Warn("could not open scores database", "path", cfg.Storage.DBPath, "error", err)
	} else {
		defer store.Close()
		manager.SetResultSaver(store)
		opts.Scores = store
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager.Start(ctx)
	defer manager.Stop()

	errc := make(chan error, 2)
	servers := 1
	failed := false

	httpServer := web.NewServer(manager, logger.WithPrefix("http"), opts)
	go func() {
		errc <- httpServer.ListenAndServe(ctx, cfg.Server.HTTPAddr)
	}()

	if cfg.Server.SSHAddr != "" {
		sshCfg := tui.DefaultSSHServerConfig()
		sshCfg.Address = cfg.Server.SSHAddr
		sshCfg.HostKeyPath = cfg.Server.HostKeyPath
		if cfg.Server.IdleTimeout > 0 {
			sshCfg.IdleTimeout = cfg.Server.IdleTimeout
		}
		sshServer, err := tui.NewSSHServer(sshCfg, manager, logger)
		if err != nil {
			logger.Error("cannot start SSH server", "error", err)
			failed = true
			stop()
		} else {
			servers++
			logger.Debug("ssh enabled", "address", sshServer.Addr())
			go func() {
				errc <- sshServer.ListenAndServe(ctx)
			}()
		}
	}

	logger.Info("blockfall ready",
		"http", cfg.Server.HTTPAddr,
		"ssh", cfg.Server.SSHAddr,
		"gravity", cfg.Server.Gravity,
	)

	for range servers {
		if err := <-errc; err != nil {
			logger.Error("server error", "error", err)
			failed = true
		}
		// One server stopping takes the other one down with it.
		stop()
	}

	logger.Info("stopped", "sessions", manager.Count(), "uptime", time.Since(startTime).Round(time.Second))
	if failed {
		manager.Stop()
		if store != nil {
			store.Close()
		}
		os.Exit(1)
	}
}
