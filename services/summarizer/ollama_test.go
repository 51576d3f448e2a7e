package summarizersvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/somo/core"
)

func newTestConf(endpoint string) *core.Config {
	return &core.Config{
		Summarizer: core.SummarizerConfig{
			Enabled:  true,
			Endpoint: endpoint,
			Model:    "llama3.2",
			Timeout:  5 * time.Second,
		},
	}
}

func TestSummarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3.2", req.Model)
		assert.False(t, req.Stream)
		assert.Contains(t, req.Prompt, "photosynthesis")

		_ = json.NewEncoder(w).Encode(generateResponse{Response: "- plants convert light to energy\n"})
	}))
	defer srv.Close()

	svc := NewOllamaService(newTestConf(srv.URL))
	summary, err := svc.Summarize(context.Background(), "Chapter 3: photosynthesis ...")
	require.NoError(t, err)
	assert.Equal(t, "- plants convert light to energy", summary)
}

func TestSummarizeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	svc := NewOllamaService(newTestConf(srv.URL))
	_, err := svc.Summarize(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestSummarizeUnreachable(t *testing.T) {
	svc := NewOllamaService(newTestConf("http://127.0.0.1:1"))
	_, err := svc.Summarize(context.Background(), "anything")
	require.Error(t, err)
}
