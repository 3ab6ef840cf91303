package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OllamaClient implements Client against a local Ollama server's generate
// endpoint.
type OllamaClient struct {
	baseURL     string
	httpClient  *http.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewOllamaClient creates a new Ollama client.
func NewOllamaClient(baseURL, model string, maxTokens int64, temperature float64) *OllamaClient {
	return &OllamaClient{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: 0}, // generation can be slow on CPU
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// NewOllamaClientWithHTTPClient creates a new Ollama client with a custom
// HTTP client.
func NewOllamaClientWithHTTPClient(baseURL string, httpClient *http.Client, model string, maxTokens int64, temperature float64) *OllamaClient {
	c := NewOllamaClient(baseURL, model, maxTokens, temperature)
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

func (c *OllamaClient) Model() string { return c.model }

type ollamaGenerateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream,omitempty"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model,omitempty"`
	Response string `json:"response"`
	Done     bool   `json:"done,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Complete sends a prompt to Ollama and returns the accumulated response.
func (c *OllamaClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := ollamaGenerateRequest{
		Model:  c.model,
		Prompt: userPrompt,
		System: systemPrompt,
		Stream: false,
		Options: map[string]any{
			"num_predict": c.maxTokens,
			"temperature": c.temperature,
		},
	}

	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("json marshal: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(b))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return "", fmt.Errorf("ollama generate http %d: %s", resp.StatusCode, string(body))
	}

	// Ollama may return newline-delimited JSON chunks even with stream=false.
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	var out bytes.Buffer
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var chunk ollamaGenerateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			return "", fmt.Errorf("stream decode: %w (line=%q)", err, string(line))
		}
		if chunk.Error != "" {
			return "", fmt.Errorf("ollama error: %s", chunk.Error)
		}
		out.WriteString(chunk.Response)
		if chunk.Done {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("scan: %w", err)
	}

	return out.String(), nil
}
