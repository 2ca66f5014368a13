// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/spec-miner/internal/httputil"
	"github.com/pdiddy/spec-miner/pkg/types"
)

// Backend abstracts a model API so tests can supply a mock. Each call
// handles a single specification snippet plus rendered few-shot
// examples and returns the parsed extraction. Per prd002-extraction R1.2.
type Backend interface {
	Extract(ctx context.Context, snippet, examples string) (types.Extraction, error)
	Model() string
}

// geminiAPIURL is the Gemini API base. Package-level var for test substitution.
var geminiAPIURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiBackend calls the Google Gemini API. It is the default primary
// model backend. Per prd002-extraction R1.2.
type GeminiBackend struct {
	Config types.AIConfig
	Client *http.Client
}

// Model returns the configured Gemini model identifier.
func (g *GeminiBackend) Model() string {
	if g.Config.Model == "" {
		return "gemini-2.5-flash"
	}
	return g.Config.Model
}

// geminiRequest is the request body for the generateContent endpoint.
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiResponse is the subset of the generateContent response we read.
type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Extract calls the Gemini generateContent endpoint with the miner
// prompt for one snippet. HTTP 429 is retried with backoff via
// httputil.DoWithRetry.
func (g *GeminiBackend) Extract(ctx context.Context, snippet, examples string) (types.Extraction, error) {
	prompt, err := renderPrompt(snippet, examples)
	if err != nil {
		return types.Extraction{}, fmt.Errorf("rendering prompt: %w", err)
	}

	maxTokens := g.Config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4000
	}

	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     g.Config.Temperature,
			MaxOutputTokens: maxTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return types.Extraction{}, fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", geminiAPIURL, g.Model())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return types.Extraction{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.Config.APIKey)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, g.Config.MaxRetries)
	if err != nil {
		return types.Extraction{}, fmt.Errorf("calling Gemini API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return types.Extraction{}, fmt.Errorf("Gemini API returned %d: %s", resp.StatusCode, string(body))
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return types.Extraction{}, fmt.Errorf("decoding Gemini response: %w", err)
	}

	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		return types.Extraction{}, fmt.Errorf("Gemini API returned no candidates")
	}

	params, err := parseParameters(gResp.Candidates[0].Content.Parts[0].Text)
	if err != nil {
		return types.Extraction{}, err
	}

	return types.Extraction{Parameters: params, Model: g.Model()}, nil
}

// defaultOllamaURL is the stock local Ollama endpoint.
const defaultOllamaURL = "http://localhost:11434"

// OllamaBackend calls a local Ollama server. It is the default
// secondary model backend for consensus runs. Per prd002-extraction R1.3.
type OllamaBackend struct {
	Config types.AIConfig
	Client *http.Client
}

// Model returns the configured Ollama model identifier.
func (o *OllamaBackend) Model() string {
	if o.Config.Model == "" {
		return "llama3.1"
	}
	return o.Config.Model
}

func (o *OllamaBackend) baseURL() string {
	if o.Config.BaseURL == "" {
		return defaultOllamaURL
	}
	return o.Config.BaseURL
}

// ollamaRequest is the request body for the /api/chat endpoint.
type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

// ollamaResponse is the non-streaming /api/chat response.
type ollamaResponse struct {
	Message ollamaMessage `json:"message"`
}

// Extract calls the Ollama chat endpoint with the miner prompt for one
// snippet.
func (o *OllamaBackend) Extract(ctx context.Context, snippet, examples string) (types.Extraction, error) {
	prompt, err := renderPrompt(snippet, examples)
	if err != nil {
		return types.Extraction{}, fmt.Errorf("rendering prompt: %w", err)
	}

	maxTokens := o.Config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4000
	}

	reqBody := ollamaRequest{
		Model: o.Model(),
		Messages: []ollamaMessage{
			{Role: "user", Content: prompt},
		},
		Stream: false,
		Options: ollamaOptions{
			Temperature: o.Config.Temperature,
			NumPredict:  maxTokens,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return types.Extraction{}, fmt.Errorf("marshaling request: %w", err)
	}

	url := o.baseURL() + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return types.Extraction{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := o.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return types.Extraction{}, fmt.Errorf("calling Ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return types.Extraction{}, fmt.Errorf("Ollama returned %d: %s", resp.StatusCode, string(body))
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return types.Extraction{}, fmt.Errorf("decoding Ollama response: %w", err)
	}

	params, err := parseParameters(oResp.Message.Content)
	if err != nil {
		return types.Extraction{}, err
	}

	return types.Extraction{Parameters: params, Model: o.Model()}, nil
}
