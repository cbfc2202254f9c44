package llm

import (
	"context"
	"fmt"

	"github.com/kh1ye/memory/internal/config"
)

// Client is the interface for LLM providers. Every consultation the memory
// engine makes — classification, extraction, scoring, merge synthesis — goes
// through a single Complete call; the reply is untrusted free text.
type Client interface {
	Complete(ctx context.Context, prompt string) (*Response, error)
}

// Response holds the result of an LLM completion.
type Response struct {
	Content    string
	Provider   string
	TokensUsed int
}

// NewClient creates an LLM client based on the config provider setting.
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "mock":
		return NewCannedClient(), nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY or config")
		}
		model := cfg.Model
		if model == "" {
			model = "claude-haiku-4-5-20251001"
		}
		return NewAnthropic(cfg.AnthropicKey, model), nil
	case "ollama":
		url := cfg.OllamaURL
		if url == "" {
			url = "http://localhost:11434"
		}
		model := cfg.OllamaModel
		if model == "" {
			model = "llama3.2"
		}
		return NewOllama(url, model), nil
	case "spark":
		if cfg.SparkAppID == "" || cfg.SparkAPIKey == "" || cfg.SparkAPISecret == "" {
			return nil, fmt.Errorf("spark provider requires app id, api key, and api secret")
		}
		domain := cfg.SparkDomain
		if domain == "" {
			domain = "4.0Ultra"
		}
		return NewSpark(cfg.SparkAppID, cfg.SparkAPIKey, cfg.SparkAPISecret, domain), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
