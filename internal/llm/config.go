package llm

import (
	"os"
	"strconv"
)

// TaskType identifies the kind of generation task being performed.
type TaskType string

const (
	TaskPost TaskType = "post"
	TaskPlan TaskType = "plan"
	TaskEdit TaskType = "edit"
)

// TaskConfig holds per-task model parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
}

// Config holds all configuration for the YandexGPT client.
type Config struct {
	Endpoint   string
	FolderID   string
	APIKey     string
	Model      string
	TimeoutMs  int
	MaxRetries int
	LogCalls   bool
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns a Config with sensible defaults. FolderID and
// APIKey have no defaults and must come from the environment.
func DefaultConfig() Config {
	return Config{
		Endpoint:   "https://llm.api.cloud.yandex.net",
		Model:      "yandexgpt-lite",
		TimeoutMs:  30000,
		MaxRetries: 2,
		Tasks: map[TaskType]TaskConfig{
			TaskPost: {Temperature: 0.7, MaxTokens: 2000, TimeoutMs: 30000},
			TaskPlan: {Temperature: 0.6, MaxTokens: 4000, TimeoutMs: 60000},
			TaskEdit: {Temperature: 0.5, MaxTokens: 2000, TimeoutMs: 30000},
		},
	}
}

// LoadConfig reads client configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("DOBROBOT_LLM_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("DOBROBOT_LLM_FOLDER_ID"); v != "" {
		cfg.FolderID = v
	}
	if v := os.Getenv("DOBROBOT_LLM_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("DOBROBOT_LLM_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("DOBROBOT_LLM_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("DOBROBOT_LLM_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("DOBROBOT_LLM_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}

	applyTaskTimeoutEnv(&cfg, TaskPost, "DOBROBOT_LLM_POST_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskPlan, "DOBROBOT_LLM_PLAN_TIMEOUT_MS")
	applyTaskTimeoutEnv(&cfg, TaskEdit, "DOBROBOT_LLM_EDIT_TIMEOUT_MS")

	return cfg
}

// ModelURI builds the fully qualified model identifier for API requests.
func (c Config) ModelURI() string {
	return "gpt://" + c.FolderID + "/" + c.Model + "/latest"
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c Config) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}

func applyTaskTimeoutEnv(cfg *Config, task TaskType, envName string) {
	v := os.Getenv(envName)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return
	}
	tc := cfg.Tasks[task]
	tc.TimeoutMs = n
	cfg.Tasks[task] = tc
}
