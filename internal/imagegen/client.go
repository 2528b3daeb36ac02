package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sync"
	"time"
)

var (
	// ErrUnavailable indicates the image API is unreachable.
	ErrUnavailable = errors.New("image generation server unavailable")

	// ErrGenerationFailed indicates the pipeline reported a failure.
	ErrGenerationFailed = errors.New("image generation failed")

	// ErrGenerationTimeout indicates the poll budget ran out before a result.
	ErrGenerationTimeout = errors.New("image generation timed out")

	// ErrCensored indicates the prompt was rejected by content moderation.
	ErrCensored = errors.New("image prompt rejected by moderation")
)

// Pipeline statuses returned by the status endpoint.
const (
	statusDone       = "DONE"
	statusFail       = "FAIL"
	statusInitial    = "INITIAL"
	statusProcessing = "PROCESSING"
)

// Client talks to a FusionBrain-compatible asynchronous image API:
// a run call returns a task id, then the status endpoint is polled
// until the task completes.
type Client struct {
	cfg  Config
	http *http.Client

	mu         sync.Mutex
	pipelineID string
}

// NewClient creates an image generation client.
func NewClient(cfg Config) *Client {
	return &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Millisecond,
		},
	}
}

type pipelineInfo struct {
	ID string `json:"id"`
}

type runResponse struct {
	UUID   string `json:"uuid"`
	Status string `json:"status"`
}

type statusResponse struct {
	UUID             string `json:"uuid"`
	Status           string `json:"status"`
	ErrorDescription string `json:"errorDescription"`
	Result           struct {
		Files    []string `json:"files"`
		Censored bool     `json:"censored"`
	} `json:"result"`
}

type runParams struct {
	Type           string `json:"type"`
	NumImages      int    `json:"numImages"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	GenerateParams struct {
		Query string `json:"query"`
	} `json:"generateParams"`
}

// Synthesize generates one image for the prompt and returns its bytes.
// The call blocks until the pipeline finishes, the poll budget runs out,
// or the context expires.
func (c *Client) Synthesize(ctx context.Context, prompt string, width, height int) ([]byte, error) {
	pipelineID, err := c.resolvePipeline(ctx)
	if err != nil {
		return nil, err
	}

	taskID, err := c.run(ctx, pipelineID, prompt, width, height)
	if err != nil {
		return nil, err
	}

	interval := time.Duration(c.cfg.PollIntervalMs) * time.Millisecond
	for attempt := 0; attempt < c.cfg.MaxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}

		st, err := c.status(ctx, taskID)
		if err != nil {
			return nil, err
		}
		switch st.Status {
		case statusDone:
			if st.Result.Censored {
				return nil, ErrCensored
			}
			if len(st.Result.Files) == 0 {
				return nil, fmt.Errorf("%w: no files in result", ErrGenerationFailed)
			}
			img, err := base64.StdEncoding.DecodeString(st.Result.Files[0])
			if err != nil {
				return nil, fmt.Errorf("decoding image: %w", err)
			}
			return img, nil
		case statusFail:
			return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, st.ErrorDescription)
		case statusInitial, statusProcessing:
			// keep polling
		default:
			return nil, fmt.Errorf("%w: unexpected status %q", ErrGenerationFailed, st.Status)
		}
	}
	return nil, ErrGenerationTimeout
}

// resolvePipeline fetches and caches the id of the first available
// text-to-image pipeline.
func (c *Client) resolvePipeline(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pipelineID != "" {
		return c.pipelineID, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/key/api/v1/pipelines", nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("pipelines endpoint returned status %d", resp.StatusCode)
	}

	var pipelines []pipelineInfo
	if err := json.NewDecoder(resp.Body).Decode(&pipelines); err != nil {
		return "", fmt.Errorf("decoding pipelines: %w", err)
	}
	if len(pipelines) == 0 {
		return "", errors.New("no pipelines available")
	}

	c.pipelineID = pipelines[0].ID
	return c.pipelineID, nil
}

func (c *Client) run(ctx context.Context, pipelineID, prompt string, width, height int) (string, error) {
	params := runParams{
		Type:      "GENERATE",
		NumImages: 1,
		Width:     width,
		Height:    height,
	}
	params.GenerateParams.Query = prompt

	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("marshaling params: %w", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("pipeline_id", pipelineID); err != nil {
		return "", fmt.Errorf("writing pipeline_id field: %w", err)
	}
	header := make(map[string][]string)
	header["Content-Disposition"] = []string{`form-data; name="params"`}
	header["Content-Type"] = []string{"application/json"}
	part, err := mw.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("creating params part: %w", err)
	}
	if _, err := part.Write(paramsJSON); err != nil {
		return "", fmt.Errorf("writing params part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/key/api/v1/pipeline/run", &body)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("run endpoint returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var run runResponse
	if err := json.Unmarshal(respBody, &run); err != nil {
		return "", fmt.Errorf("decoding run response: %w", err)
	}
	if run.UUID == "" {
		return "", fmt.Errorf("%w: empty task id", ErrGenerationFailed)
	}
	return run.UUID, nil
}

func (c *Client) status(ctx context.Context, taskID string) (*statusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+"/key/api/v1/pipeline/status/"+taskID, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status endpoint returned status %d", resp.StatusCode)
	}

	var st statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("decoding status response: %w", err)
	}
	return &st, nil
}

func (c *Client) setAuth(req *http.Request) {
	req.Header.Set("X-Key", "Key "+c.cfg.Key)
	req.Header.Set("X-Secret", "Secret "+c.cfg.Secret)
}
