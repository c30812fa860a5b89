package main

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/healthbot/server/internal/agent/model"
	"github.com/healthbot/server/internal/core"
	logx "github.com/healthbot/server/pkg/logger"
	pkgredis "github.com/healthbot/server/pkg/redis"
)

// AppConfig defines all configurable parameters of HealthBot,
// sourced from environment variables (loaded from config.env for local runs).
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis pkgredis.Config

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Agent configs
	Chat   model.ChatModelConfig
	Search model.SearchConfig
	Cache  model.CacheConfig
}

// loadConfig reads envFile into the environment, then binds AppConfig.
// A missing file is not an error; variables may come from the shell.
func loadConfig(envFile string) (AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			logx.Warn().Err(err).Str("env_file", envFile).Msg("Could not load env file")
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("failed to process environment config: %w", err)
	}
	return cfg, nil
}
