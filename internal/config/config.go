package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBadger = "badger"
)

type AppConfig struct {
	HTTPAddr string

	BotPreset     string
	BotTieBreak   string
	BotRandomSeed int64
	BotSeedSet    bool
	WeightsFile   string
	TimeBudget    time.Duration

	SessionBackend string
	RedisURL       string
	SessionTTLSec  int
	BadgerDir      string

	DatabaseURL string
	MessagesDir string
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		HTTPAddr:       ":8080",
		BotPreset:      "balanced",
		BotTieBreak:    "first",
		TimeBudget:     2 * time.Second,
		SessionBackend: BackendMemory,
		SessionTTLSec:  3600,
		BadgerDir:      "data/sessions",
	}

	if v := strings.TrimSpace(os.Getenv("HTTP_ADDR")); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("BOT_PRESET")); v != "" {
		cfg.BotPreset = v
	}
	if v := strings.TrimSpace(os.Getenv("BOT_TIE_BREAK")); v != "" {
		cfg.BotTieBreak = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("BOT_RANDOM_SEED")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("BOT_RANDOM_SEED: %w", err)
		}
		cfg.BotRandomSeed = n
		cfg.BotSeedSet = true
	}
	cfg.WeightsFile = strings.TrimSpace(os.Getenv("BOT_WEIGHTS_FILE"))
	if v := strings.TrimSpace(os.Getenv("BOT_TIME_BUDGET_MS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeBudget = time.Duration(n) * time.Millisecond
		}
	}

	if v := strings.TrimSpace(os.Getenv("SESSION_BACKEND")); v != "" {
		cfg.SessionBackend = strings.ToLower(v)
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))
	if v := strings.TrimSpace(os.Getenv("SESSION_TTL_SEC")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SessionTTLSec = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("BADGER_DIR")); v != "" {
		cfg.BadgerDir = v
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.MessagesDir = strings.TrimSpace(os.Getenv("MESSAGES_DIR"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	switch c.BotTieBreak {
	case "first", "random":
	default:
		return fmt.Errorf("BOT_TIE_BREAK must be first or random: %s", c.BotTieBreak)
	}
	switch c.SessionBackend {
	case BackendMemory, BackendBadger:
	case BackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis session backend")
		}
	default:
		return fmt.Errorf("SESSION_BACKEND must be memory, redis or badger: %s", c.SessionBackend)
	}
	if c.SessionBackend == BackendBadger && c.BadgerDir == "" {
		return errors.New("BADGER_DIR is required for the badger session backend")
	}
	return nil
}

func (c *AppConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSec) * time.Second
}
