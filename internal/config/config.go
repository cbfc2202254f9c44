package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all recall configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Storage StorageConfig `toml:"storage"`
	LLM     LLMConfig     `toml:"llm"`
}

type ServerConfig struct {
	Bind string `toml:"bind"`
	Port int    `toml:"port"`
}

type StorageConfig struct {
	Driver string `toml:"driver"` // "file" or "sqlite"
	Path   string `toml:"path"`
}

type LLMConfig struct {
	Provider     string `toml:"provider"` // "mock", "anthropic", "ollama", "spark"
	Model        string `toml:"model"`
	AnthropicKey string `toml:"anthropic_key"`
	OllamaURL    string `toml:"ollama_url"`
	OllamaModel  string `toml:"ollama_model"`

	// iFlytek Spark websocket credentials
	SparkAppID     string `toml:"spark_app_id"`
	SparkAPIKey    string `toml:"spark_api_key"`
	SparkAPISecret string `toml:"spark_api_secret"`
	SparkDomain    string `toml:"spark_domain"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37878,
		},
		Storage: StorageConfig{
			Driver: "file",
			Path:   "", // resolved at runtime via DefaultStoragePath()
		},
		LLM: LLMConfig{
			Provider: "mock",
		},
	}
}

// DefaultConfigPath returns ~/.recall/config.toml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".recall", "config.toml"), nil
}

// DefaultStoragePath returns the default snapshot location for a driver:
// ~/.recall/memories.json or ~/.recall/memories.db.
func DefaultStoragePath(driver string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	name := "memories.json"
	if driver == "sqlite" {
		name = "memories.db"
	}
	return filepath.Join(home, ".recall", name), nil
}

// Load reads a TOML config file on top of the defaults. A missing file is not
// an error — the defaults apply. ANTHROPIC_API_KEY in the environment
// overrides the configured key and switches the provider to anthropic.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultConfigPath()
		if err != nil {
			return cfg, err
		}
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.LLM.Provider = "anthropic"
		cfg.LLM.AnthropicKey = key
	}

	return cfg, nil
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
