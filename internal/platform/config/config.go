package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	errs "github.com/Temm4ancki/VK-to-TG-post/internal/core/errors"
)

// Mark policies for the dispatch pipeline. "attempt" marks a post processed
// after dispatch attempts complete even when a send failed; "success" marks
// only when every outbound unit was delivered.
const (
	MarkPolicyAttempt = "attempt"
	MarkPolicySuccess = "success"
)

type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"local"`

	// Source feed
	VKToken      string  `env:"VK_TOKEN,required"`
	VKOwnerID    int64   `env:"VK_OWNER_ID,required"`
	VKAPIVersion string  `env:"VK_API_VERSION" envDefault:"5.199"`
	VKRateRPS    float64 `env:"VK_RATE_LIMIT_RPS" envDefault:"3"`

	// Destination channel
	BotToken     string  `env:"BOT_TOKEN,required"`
	TargetChatID int64   `env:"TARGET_CHAT_ID,required"`
	TGRateRPS    float64 `env:"TG_RATE_LIMIT_RPS" envDefault:"1"`

	// Polling
	PollInterval   time.Duration `env:"POLL_INTERVAL" envDefault:"1m"`
	FetchCount     int           `env:"FETCH_COUNT" envDefault:"20"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// Dedup ledger. PostgresDSN, when set, takes precedence over the file store.
	LedgerPath  string `env:"LEDGER_PATH" envDefault:"./data/processed.json"`
	PostgresDSN string `env:"POSTGRES_DSN"`

	// Pipeline
	MatchThreshold float64 `env:"MATCH_THRESHOLD" envDefault:"0.70"`
	MarkPolicy     string  `env:"MARK_POLICY" envDefault:"attempt"`

	HealthPort int `env:"HEALTH_PORT" envDefault:"8080"`
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	if cfg.MarkPolicy != MarkPolicyAttempt && cfg.MarkPolicy != MarkPolicySuccess {
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidMarkPolicy, cfg.MarkPolicy)
	}

	return cfg, nil
}
