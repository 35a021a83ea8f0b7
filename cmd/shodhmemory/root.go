// Command shodhmemory runs the cognitive memory engine: a REST API,
// an MCP stdio bridge for AI agents, and one-shot CLI operations
// against the same embedded store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shodhmemory/engine/internal/embedder"
	"github.com/shodhmemory/engine/internal/engine"
	"github.com/shodhmemory/engine/internal/entities"
	"github.com/shodhmemory/engine/internal/logging"
	"github.com/shodhmemory/engine/internal/storage"
	"github.com/shodhmemory/engine/pkg/config"
)

// Version is set at build time via -ldflags.
var Version = "0.1.0"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "shodhmemory",
	Short: "Cognitive memory engine for AI agents",
	Long: `shodhmemory gives an AI agent persistent, tiered, associative memory.

Examples:
  shodhmemory serve                     # run the REST API + maintenance loop
  shodhmemory remember u1 "met Alice"   # store a memory
  shodhmemory recall u1 "Alice"         # semantic search
  shodhmemory doctor                    # check collaborator/storage health`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
}

// loadConfig loads configuration and initializes the global logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output})
	return cfg, nil
}

// openEngine opens the store and wires an *engine.Engine from cfg.
func openEngine(cfg *config.Config) (*engine.Engine, error) {
	store, err := storage.Open(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}

	var emb embedder.Embedder
	var ext entities.Extractor
	if cfg.Offline || cfg.Embedder.BaseURL == "" {
		emb = embedder.NewLocal()
	} else {
		emb = embedder.NewHTTPClient(cfg.Embedder, "nomic-embed-text")
	}
	if cfg.Offline || cfg.Entities.BaseURL == "" {
		ext = entities.NewLocal()
	} else {
		ext = entities.NewHTTPClient(cfg.Entities)
	}

	eng := engine.New(*cfg, store, emb, ext)
	if err := eng.Warm(); err != nil {
		store.Close()
		return nil, fmt.Errorf("warming vector indexes: %w", err)
	}
	return eng, nil
}

func main() {
	Execute()
}
