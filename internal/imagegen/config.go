package imagegen

import (
	"os"
	"strconv"
)

// Config holds configuration for the image generation client.
type Config struct {
	Endpoint        string
	Key             string
	Secret          string
	PollIntervalMs  int
	MaxPollAttempts int
	RequestTimeout  int // per-HTTP-call timeout, ms
}

// DefaultConfig returns a Config with sensible defaults. Key and Secret
// have no defaults and must come from the environment.
func DefaultConfig() Config {
	return Config{
		Endpoint:        "https://api-key.fusionbrain.ai",
		PollIntervalMs:  3000,
		MaxPollAttempts: 20,
		RequestTimeout:  15000,
	}
}

// LoadConfig reads client configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("DOBROBOT_IMAGEGEN_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("DOBROBOT_IMAGEGEN_KEY"); v != "" {
		cfg.Key = v
	}
	if v := os.Getenv("DOBROBOT_IMAGEGEN_SECRET"); v != "" {
		cfg.Secret = v
	}
	if v := os.Getenv("DOBROBOT_IMAGEGEN_POLL_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollIntervalMs = n
		}
	}
	if v := os.Getenv("DOBROBOT_IMAGEGEN_MAX_POLL_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxPollAttempts = n
		}
	}
	if v := os.Getenv("DOBROBOT_IMAGEGEN_REQUEST_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RequestTimeout = n
		}
	}

	return cfg
}
