package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	ProviderHuggingFace = "huggingface"
	ProviderDezgo       = "dezgo"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" env-default:"production"`
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	Port     string `env:"PORT" env-default:"8080"`

	Provider        string        `env:"PROVIDER" env-default:"huggingface"`
	ProviderTimeout time.Duration `env:"PROVIDER_TIMEOUT" env-default:"120s"`
	HuggingFace     HuggingFaceConfig
	Dezgo           DezgoConfig

	// StrictParams rejects generation settings outside the editor ranges.
	StrictParams bool `env:"STRICT_PARAMS" env-default:"false"`

	Prompts      []string `env:"PROMPTS" env-separator:";"`
	PromptsParam string   `env:"PROMPTS_PARAM"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	// RateLimitPerMinute caps generate calls per client IP; zero disables the limiter.
	RateLimitPerMinute uint `env:"RATE_LIMIT_PER_MINUTE" env-default:"0"`
}

type HuggingFaceConfig struct {
	Key      string `env:"HUGGINGFACE_API_KEY"`
	KeyParam string `env:"HUGGINGFACE_API_KEY_PARAM"`
	BaseURL  string `env:"HUGGINGFACE_BASE_URL" env-default:"https://api-inference.huggingface.co/models"`
	Model    string `env:"HUGGINGFACE_MODEL" env-default:"black-forest-labs/FLUX.1-dev"`
}

type DezgoConfig struct {
	Key      string `env:"DEZGO_KEY"`
	KeyParam string `env:"DEZGO_KEY_PARAM"`
	BaseURL  string `env:"DEZGO_BASE_URL" env-default:"https://api.dezgo.com"`
	Model    string `env:"DEZGO_MODEL"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderHuggingFace, ProviderDezgo:
		return nil
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
