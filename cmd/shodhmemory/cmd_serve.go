package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shodhmemory/engine/internal/api"
	"github.com/shodhmemory/engine/internal/daemon"
	"github.com/shodhmemory/engine/internal/engine"
	"github.com/shodhmemory/engine/internal/logging"
	"github.com/shodhmemory/engine/internal/mcp"
)

var (
	mcpMode       bool
	shutdownGrace = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the REST API and background maintenance loop",
	RunE: func(cmd *cobra.Command, args []string) error {
		if mcpMode {
			return runMCP()
		}
		return runServe()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&mcpMode, "mcp", false, "run as an MCP server over stdio instead of the REST API")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logging.GetLogger("serve")

	eng, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	configDir := os.TempDir()
	d := daemon.New(configDir, Version)
	if err := d.Start(cfg.RestAPI.Enabled, cfg.RestAPI.Host, cfg.RestAPI.Port, false); err != nil {
		log.Warn("daemon lifecycle tracking unavailable", "error", err)
	} else {
		defer d.Cleanup()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutdown signal received")
		cancel()
	}()

	interval := time.Duration(cfg.Maintenance.IntervalSecs) * time.Second
	go runMaintenanceLoop(ctx, eng, interval, log)

	server := api.NewServer(eng, *cfg)
	if err := server.StartWithContext(ctx, shutdownGrace); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}

// runMaintenanceLoop ticks the engine's maintenance runner on
// interval until ctx is cancelled, persisting last_tick_at on each
// pass so a restart resumes decay/consolidation from where it left
// off rather than replaying elapsed time twice.
func runMaintenanceLoop(ctx context.Context, eng *engine.Engine, interval time.Duration, log *logging.Logger) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			report, err := eng.Maintenance().Tick(ctx, now)
			if err != nil {
				log.Error("maintenance tick failed", "error", err)
				continue
			}
			log.Info("maintenance tick complete",
				"users", report.UsersProcessed,
				"edges_decayed", report.EdgesDecayed,
				"edges_pruned", report.EdgesPruned,
				"replayed", report.Replayed,
				"consolidated", report.Consolidated)
		}
	}
}

func runMCP() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer eng.Close()

	server := mcp.NewServer(eng)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := server.Run(ctx); err != nil && err != context.Canceled {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
