package imagegen

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, statusFn func(poll int32) statusResponse) *httptest.Server {
	t.Helper()
	var polls atomic.Int32
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Key test-key", r.Header.Get("X-Key"))
		assert.Equal(t, "Secret test-secret", r.Header.Get("X-Secret"))

		switch {
		case r.URL.Path == "/key/api/v1/pipelines":
			json.NewEncoder(w).Encode([]pipelineInfo{{ID: "pipe-1"}})
		case r.URL.Path == "/key/api/v1/pipeline/run":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "pipe-1", r.FormValue("pipeline_id"))
			var params runParams
			require.NoError(t, json.Unmarshal([]byte(r.FormValue("params")), &params))
			assert.Equal(t, "GENERATE", params.Type)
			assert.Equal(t, 1200, params.Width)
			json.NewEncoder(w).Encode(runResponse{UUID: "task-1", Status: "INITIAL"})
		case strings.HasPrefix(r.URL.Path, "/key/api/v1/pipeline/status/"):
			assert.True(t, strings.HasSuffix(r.URL.Path, "task-1"))
			json.NewEncoder(w).Encode(statusFn(polls.Add(1)))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
}

func testClient(endpoint string) *Client {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.Key = "test-key"
	cfg.Secret = "test-secret"
	cfg.PollIntervalMs = 1
	cfg.MaxPollAttempts = 5
	return NewClient(cfg)
}

func doneStatus(files []string, censored bool) statusResponse {
	var st statusResponse
	st.Status = statusDone
	st.Result.Files = files
	st.Result.Censored = censored
	return st
}

func TestSynthesize_SuccessAfterPolling(t *testing.T) {
	img := []byte{0x89, 'P', 'N', 'G'}
	srv := testServer(t, func(poll int32) statusResponse {
		if poll < 3 {
			return statusResponse{Status: statusProcessing}
		}
		return doneStatus([]string{base64.StdEncoding.EncodeToString(img)}, false)
	})
	defer srv.Close()

	got, err := testClient(srv.URL).Synthesize(context.Background(), "добрый кот", 1200, 630)

	require.NoError(t, err)
	assert.Equal(t, img, got)
}

func TestSynthesize_Failure(t *testing.T) {
	srv := testServer(t, func(int32) statusResponse {
		return statusResponse{Status: statusFail, ErrorDescription: "internal"}
	})
	defer srv.Close()

	_, err := testClient(srv.URL).Synthesize(context.Background(), "кот", 1200, 630)

	assert.ErrorIs(t, err, ErrGenerationFailed)
}

func TestSynthesize_Censored(t *testing.T) {
	srv := testServer(t, func(int32) statusResponse {
		return doneStatus(nil, true)
	})
	defer srv.Close()

	_, err := testClient(srv.URL).Synthesize(context.Background(), "кот", 1200, 630)

	assert.ErrorIs(t, err, ErrCensored)
}

func TestSynthesize_PollBudgetExhausted(t *testing.T) {
	srv := testServer(t, func(int32) statusResponse {
		return statusResponse{Status: statusProcessing}
	})
	defer srv.Close()

	_, err := testClient(srv.URL).Synthesize(context.Background(), "кот", 1200, 630)

	assert.ErrorIs(t, err, ErrGenerationTimeout)
}

func TestSynthesize_ContextCancelled(t *testing.T) {
	srv := testServer(t, func(int32) statusResponse {
		return statusResponse{Status: statusProcessing}
	})
	defer srv.Close()

	c := testClient(srv.URL)
	c.cfg.PollIntervalMs = 60000

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Synthesize(ctx, "кот", 1200, 630)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSynthesize_PipelineCached(t *testing.T) {
	var pipelineCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/key/api/v1/pipelines":
			pipelineCalls.Add(1)
			json.NewEncoder(w).Encode([]pipelineInfo{{ID: "pipe-1"}})
		case r.URL.Path == "/key/api/v1/pipeline/run":
			json.NewEncoder(w).Encode(runResponse{UUID: "task-1"})
		default:
			json.NewEncoder(w).Encode(doneStatus([]string{base64.StdEncoding.EncodeToString([]byte{1})}, false))
		}
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.Synthesize(context.Background(), "кот", 1200, 630)
	require.NoError(t, err)
	_, err = c.Synthesize(context.Background(), "пёс", 1200, 630)
	require.NoError(t, err)

	assert.Equal(t, int32(1), pipelineCalls.Load())
}
