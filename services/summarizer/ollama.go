// Package summarizersvc condenses a chapter's study material into a short
// summary using a local Ollama instance.
package summarizersvc

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/somo/core"
)

const systemPrompt = "You are a study assistant. Summarize the provided study material " +
	"in at most five short bullet points. Be factual and concise; do not invent content."

type ollamaService struct {
	conf   *core.Config
	client *http.Client
}

var _ core.Summarizer = (*ollamaService)(nil) // interface compliance check

func NewOllamaService(conf *core.Config) *ollamaService {
	return &ollamaService{
		conf:   conf,
		client: &http.Client{Timeout: conf.Summarizer.Timeout},
	}
}

// generateRequest is the JSON body sent to POST /api/generate.
type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system,omitempty"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// generateResponse is the JSON body returned by POST /api/generate (non-streaming).
type generateResponse struct {
	Response string `json:"response"`
}

// Summarize makes a single generation call; failures surface to the caller.
func (svc *ollamaService) Summarize(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  svc.conf.Summarizer.Model,
		System: systemPrompt,
		Prompt: text,
		Stream: false,
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding request")
	}

	url := svc.conf.Summarizer.Endpoint + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := svc.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling summarizer")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("summarizer returned status %d: %s", resp.StatusCode, respBody)
	}

	var data generateResponse
	if err := json.Unmarshal(respBody, &data); err != nil {
		return "", errors.Wrap(err, "decoding response")
	}
	return strings.TrimSpace(data.Response), nil
}
