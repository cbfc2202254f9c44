// Package cli implements the recall CLI commands.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kh1ye/memory/internal/config"
	"github.com/kh1ye/memory/internal/llm"
	"github.com/kh1ye/memory/internal/memory"
	"github.com/kh1ye/memory/internal/snapshot"
)

var (
	configPath  string
	storagePath string
	provider    string
)

var rootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Self-curating memory derived from text",
	Long:  "Recall stores, retrieves, updates, and forgets memories derived from natural-language text, consulting an LLM for classification and scoring.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.recall/config.toml)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Snapshot path (overrides config)")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "LLM provider (overrides config)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(retrieveCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(optimizeCmd)
}

// loadConfig reads the config file and applies the global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if storagePath != "" {
		cfg.Storage.Path = storagePath
	}
	if provider != "" {
		cfg.LLM.Provider = provider
	}
	return cfg, nil
}

// openSystem wires the LLM client and persistence port from config and
// returns the memory system plus a close func for the storage backend.
func openSystem(cfg config.Config) (*memory.System, io.Closer, error) {
	client, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, nil, fmt.Errorf("configure llm: %w", err)
	}

	path := cfg.Storage.Path
	if path == "" {
		path, err = config.DefaultStoragePath(cfg.Storage.Driver)
		if err != nil {
			return nil, nil, err
		}
	}

	switch cfg.Storage.Driver {
	case "", "file":
		return memory.New(client, snapshot.NewFile(path)), nopCloser{}, nil
	case "sqlite":
		db, err := snapshot.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open storage: %w", err)
		}
		return memory.New(client, db), db, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver: %q", cfg.Storage.Driver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
