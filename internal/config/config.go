// Package config holds service configuration parsed from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full service configuration. Defaults run the service
// rule-based only against a local Ollama if one is reachable.
type Config struct {
	Host string `env:"ASSISTANT_HOST" envDefault:"127.0.0.1"`
	Port int    `env:"ASSISTANT_PORT" envDefault:"8080"`

	// OllamaHost empty disables the Ollama backend.
	OllamaHost  string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	OllamaModel string `env:"OLLAMA_MODEL" envDefault:"llama3:latest"`
	// Hosted backends join the fallback chain when their key is set.
	OpenAIKey string `env:"OPENAI_API_KEY"`
	GroqKey   string `env:"GROQ_API_KEY"`
	// ProviderTimeout bounds every external provider call.
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" envDefault:"10s"`

	// RulesPath overrides the compiled-in rule tables.
	RulesPath string `env:"RULES_PATH"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
}

// Parse loads configuration from environment variables.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Addr returns the host:port the HTTP server binds to.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
