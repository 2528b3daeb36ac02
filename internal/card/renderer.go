package card

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

var (
	// ErrUnavailable indicates the render service is unreachable.
	ErrUnavailable = errors.New("card renderer unavailable")

	// ErrRenderFailed indicates the service rejected the render request.
	ErrRenderFailed = errors.New("card rendering failed")
)

// Config holds configuration for the card render service client.
type Config struct {
	Endpoint  string
	TimeoutMs int
}

// DefaultConfig returns a Config pointing at a local render service.
func DefaultConfig() Config {
	return Config{
		Endpoint:  "http://localhost:3100",
		TimeoutMs: 20000,
	}
}

// LoadConfig reads renderer configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("DOBROBOT_CARD_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("DOBROBOT_CARD_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	return cfg
}

// Renderer renders branded cards through an HTML-to-image service. The
// backing service drives a single headless browser, so render calls are
// serialized client-side.
type Renderer struct {
	cfg  Config
	http *http.Client
	mu   sync.Mutex
}

// NewRenderer creates a render service client.
func NewRenderer(cfg Config) *Renderer {
	return &Renderer{
		cfg: cfg,
		http: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond,
		},
	}
}

type renderRequest struct {
	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
	Width    int               `json:"width"`
	Height   int               `json:"height"`
}

// Render produces a PNG card from the template and data.
func (r *Renderer) Render(ctx context.Context, templateID string, data map[string]string, width, height int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	body, err := json.Marshal(renderRequest{
		Template: templateID,
		Data:     data,
		Width:    width,
		Height:   height,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling render request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrRenderFailed, resp.StatusCode, string(respBody))
	}
	if len(respBody) == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrRenderFailed)
	}
	return respBody, nil
}
