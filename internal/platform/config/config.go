// Package config loads server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/MRamiBalles/Legislatura/internal/domain/calendar"
)

// Config is the process configuration. Every field maps to a LEGIS_* variable.
type Config struct {
	Addr            string `env:"LEGIS_ADDR" envDefault:":8080"`
	DBDriver        string `env:"LEGIS_DB_DRIVER" envDefault:"sqlite"`
	DBDSN           string `env:"LEGIS_DB_DSN" envDefault:"data/legislatura.db"`
	RedisURL        string `env:"LEGIS_REDIS_URL"`
	Seed            int64  `env:"LEGIS_SEED"`
	PoliticalSystem string `env:"LEGIS_POLITICAL_SYSTEM" envDefault:"presidential"`
	LogLevel        string `env:"LEGIS_LOG_LEVEL" envDefault:"info"`
	LogFormat       string `env:"LEGIS_LOG_FORMAT" envDefault:"text"`
	StartDate       string `env:"LEGIS_START_DATE" envDefault:"2025-01-01"`
	Autosave        bool   `env:"LEGIS_AUTOSAVE" envDefault:"true"`
	CampaignID      string `env:"LEGIS_CAMPAIGN_ID" envDefault:"default"`
	// DayInterval advances the calendar on a wall clock; zero leaves it manual.
	DayInterval time.Duration `env:"LEGIS_DAY_INTERVAL" envDefault:"0s"`

	LLMAPIKey      string  `env:"LEGIS_LLM_API_KEY"`
	LLMBaseURL     string  `env:"LEGIS_LLM_BASE_URL" envDefault:"https://api.openai.com/v1/chat/completions"`
	LLMModel       string  `env:"LEGIS_LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMDailyBudget float64 `env:"LEGIS_LLM_DAILY_BUDGET" envDefault:"1"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates a Config.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated values.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "pgx", "none":
	default:
		return fmt.Errorf("config: unsupported LEGIS_DB_DRIVER %q", c.DBDriver)
	}
	if c.DayInterval < 0 {
		return fmt.Errorf("config: LEGIS_DAY_INTERVAL must not be negative")
	}
	if c.LLMDailyBudget < 0 {
		return fmt.Errorf("config: LEGIS_LLM_DAILY_BUDGET must not be negative")
	}
	if _, err := c.Start(); err != nil {
		return fmt.Errorf("config: LEGIS_START_DATE: %w", err)
	}
	return nil
}

// Start parses the campaign start date.
func (c Config) Start() (calendar.GameDate, error) {
	return calendar.Parse(c.StartDate)
}
