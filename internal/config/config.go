package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingToken indicates the bot token was not configured.
var ErrMissingToken = errors.New("bot token is not set")

// Config holds the application-level settings. Collaborator clients
// (completion, image, card) load their own sections from the environment.
type Config struct {
	BotToken      string
	DBPath        string
	HTTPAddr      string
	CheckInterval time.Duration
	Lookahead     time.Duration
}

// Default returns a Config with everything but the bot token filled in.
func Default() Config {
	return Config{
		DBPath:        "dobrobot.db",
		HTTPAddr:      ":8080",
		CheckInterval: time.Minute,
		Lookahead:     60 * time.Minute,
	}
}

// Load reads configuration from a .env file (when present) and the
// environment. The bot token is the only required setting.
func Load() (Config, error) {
	// A missing .env is fine: production deploys set real env vars.
	_ = godotenv.Load()

	cfg := Default()

	cfg.BotToken = os.Getenv("DOBROBOT_BOT_TOKEN")
	if cfg.BotToken == "" {
		return Config{}, ErrMissingToken
	}

	if v := os.Getenv("DOBROBOT_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DOBROBOT_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("DOBROBOT_CHECK_INTERVAL_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CheckInterval = time.Duration(n) * time.Minute
		}
	}
	if v := os.Getenv("DOBROBOT_LOOKAHEAD_MIN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Lookahead = time.Duration(n) * time.Minute
		}
	}

	return cfg, nil
}
