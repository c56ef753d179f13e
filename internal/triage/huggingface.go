package triage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// maxResponseSize bounds how much of a model response is read.
const maxResponseSize int64 = 1 << 20

// HuggingFace calls a hosted inference endpoint that takes {"inputs": ...}
// and answers [{"generated_text": ...}].
type HuggingFace struct {
	httpClient *http.Client
	modelURL   string
	token      string
}

// NewHuggingFace builds a generator for modelURL. token may be empty.
func NewHuggingFace(modelURL, token string, httpClient *http.Client) *HuggingFace {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HuggingFace{httpClient: httpClient, modelURL: modelURL, token: token}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

// Generate posts prompt and returns the first generated_text.
func (h *HuggingFace) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(inferenceRequest{Inputs: prompt})
	if err != nil {
		return "", fmt.Errorf("huggingface: marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.modelURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("huggingface: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("huggingface: sending request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("huggingface: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &ProviderError{Provider: "huggingface", StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	return parseGenerated(data)
}

// parseGenerated extracts generated_text from an inference response. A
// well-formed response without text yields "".
func parseGenerated(data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", errors.New("huggingface: malformed response body")
	}
	if msg := gjson.GetBytes(data, "error"); msg.Exists() {
		return "", &ProviderError{Provider: "huggingface", StatusCode: http.StatusOK, Message: msg.String()}
	}
	return gjson.GetBytes(data, "0.generated_text").String(), nil
}

func errorMessage(data []byte) string {
	if msg := gjson.GetBytes(data, "error"); msg.Exists() && msg.Type == gjson.String {
		return msg.String()
	}
	text := strings.TrimSpace(string(data))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}
