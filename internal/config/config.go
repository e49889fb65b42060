package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xxxsen/common/logger"
)

const apiKeyEnv = "GEMINI_API_KEY"

type Config struct {
	Database  DatabaseConfig   `json:"database"`
	LogConfig logger.LogConfig `json:"log_config"`
	AI        AIConfig         `json:"ai"`
	Batch     BatchConfig      `json:"batch"`
	Fetch     FetchConfig      `json:"fetch"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
	DSN      string `json:"dsn"`
}

type AIConfig struct {
	Provider      string                 `json:"provider"`
	Model         string                 `json:"model"`
	Timeout       int                    `json:"timeout"`
	MaxInputChars int                    `json:"max_input_chars"`
	Data          map[string]interface{} `json:"data"`
}

type BatchConfig struct {
	CooldownSeconds int    `json:"cooldown_seconds"`
	PaceSeconds     int    `json:"pace_seconds"`
	SummarySpec     string `json:"summary_spec"`
	BackfillSpec    string `json:"backfill_spec"`
}

type FetchConfig struct {
	TimeoutSeconds int `json:"timeout_seconds"`
	MaxChars       int `json:"max_chars"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Database.DSN == "" {
		if cfg.Database.Host == "" || cfg.Database.DBName == "" {
			return nil, fmt.Errorf("database.dsn or database.host/dbname is required")
		}
		if cfg.Database.Port == 0 {
			cfg.Database.Port = 5432
		}
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = "gemini"
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = "gemini-flash-latest"
	}
	if cfg.AI.Data == nil {
		cfg.AI.Data = map[string]interface{}{}
	}
	// The provider credential comes from the environment only; a key in
	// the config file does not count.
	key := strings.TrimSpace(os.Getenv(apiKeyEnv))
	if key == "" {
		return nil, fmt.Errorf("%s environment variable is required", apiKeyEnv)
	}
	cfg.AI.Data["api_key"] = key
	if cfg.Batch.CooldownSeconds == 0 {
		cfg.Batch.CooldownSeconds = 120
	}
	if cfg.Batch.PaceSeconds == 0 {
		cfg.Batch.PaceSeconds = 2
	}
	if cfg.Batch.SummarySpec == "" {
		cfg.Batch.SummarySpec = "0 * * * *"
	}
	if cfg.Batch.BackfillSpec == "" {
		cfg.Batch.BackfillSpec = "30 * * * *"
	}
	if cfg.Fetch.TimeoutSeconds == 0 {
		cfg.Fetch.TimeoutSeconds = 30
	}
	if cfg.Fetch.MaxChars == 0 {
		cfg.Fetch.MaxChars = 10000
	}
	return &cfg, nil
}
