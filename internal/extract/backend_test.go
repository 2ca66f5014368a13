// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/spec-miner/internal/httputil"
	"github.com/pdiddy/spec-miner/pkg/types"
)

const modelJSON = `{"parameters": [{"name": "VLEN", "description": "vector length", "param_type": "integer", "classification": "named", "source_quote": "VLEN is fixed.", "rationale": "discovery"}]}`

func geminiBody(text string) string {
	resp := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	data, _ := json.Marshal(resp)
	return string(data)
}

func TestGeminiBackendExtract(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")

		var req geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) == 0 {
			t.Errorf("unexpected request contents: %+v", req.Contents)
		}

		w.Write([]byte(geminiBody(modelJSON)))
	}))
	defer server.Close()

	oldURL := geminiAPIURL
	geminiAPIURL = server.URL
	defer func() { geminiAPIURL = oldURL }()

	backend := &GeminiBackend{Config: types.AIConfig{Model: "gemini-2.5-flash", APIKey: "test-key"}}
	extraction, err := backend.Extract(context.Background(), "snippet text", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if gotPath != "/models/gemini-2.5-flash:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if extraction.Model != "gemini-2.5-flash" {
		t.Errorf("Model = %q", extraction.Model)
	}
	if len(extraction.Parameters) != 1 || extraction.Parameters[0].Name != "VLEN" {
		t.Fatalf("parameters = %+v", extraction.Parameters)
	}
}

func TestGeminiBackendRetriesOn429(t *testing.T) {
	oldDelay := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	defer func() { httputil.RetryBaseDelay = oldDelay }()

	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(geminiBody(modelJSON)))
	}))
	defer server.Close()

	oldURL := geminiAPIURL
	geminiAPIURL = server.URL
	defer func() { geminiAPIURL = oldURL }()

	backend := &GeminiBackend{Config: types.AIConfig{MaxRetries: 2}}
	extraction, err := backend.Extract(context.Background(), "snippet", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(extraction.Parameters) != 1 {
		t.Errorf("parameters = %+v", extraction.Parameters)
	}
}

func TestGeminiBackendFencedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(geminiBody("```json\n" + modelJSON + "\n```")))
	}))
	defer server.Close()

	oldURL := geminiAPIURL
	geminiAPIURL = server.URL
	defer func() { geminiAPIURL = oldURL }()

	backend := &GeminiBackend{Config: types.AIConfig{}}
	extraction, err := backend.Extract(context.Background(), "snippet", "")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(extraction.Parameters) != 1 {
		t.Errorf("parameters = %+v", extraction.Parameters)
	}
}

func TestGeminiBackendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer server.Close()

	oldURL := geminiAPIURL
	geminiAPIURL = server.URL
	defer func() { geminiAPIURL = oldURL }()

	backend := &GeminiBackend{Config: types.AIConfig{}}
	if _, err := backend.Extract(context.Background(), "snippet", ""); err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestOllamaBackendExtract(t *testing.T) {
	var gotModel string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}

		var req ollamaRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		gotModel = req.Model
		if req.Stream {
			t.Error("streaming should be disabled")
		}

		resp := ollamaResponse{Message: ollamaMessage{Role: "assistant", Content: modelJSON}}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	backend := &OllamaBackend{Config: types.AIConfig{Model: "llama3.1", BaseURL: server.URL}}
	extraction, err := backend.Extract(context.Background(), "snippet", "examples block")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if gotModel != "llama3.1" {
		t.Errorf("request model = %q", gotModel)
	}
	if extraction.Model != "llama3.1" {
		t.Errorf("Model = %q", extraction.Model)
	}
	if len(extraction.Parameters) != 1 || extraction.Parameters[0].Name != "VLEN" {
		t.Fatalf("parameters = %+v", extraction.Parameters)
	}
}

func TestBackendDefaults(t *testing.T) {
	g := &GeminiBackend{}
	if g.Model() != "gemini-2.5-flash" {
		t.Errorf("Gemini default model = %q", g.Model())
	}

	o := &OllamaBackend{}
	if o.Model() != "llama3.1" {
		t.Errorf("Ollama default model = %q", o.Model())
	}
	if o.baseURL() != "http://localhost:11434" {
		t.Errorf("Ollama default base URL = %q", o.baseURL())
	}
}

func TestRenderPromptIncludesExamples(t *testing.T) {
	prompt, err := renderPrompt("the snippet body", "Example 1:\n  Name: VLEN")
	if err != nil {
		t.Fatalf("renderPrompt: %v", err)
	}
	for _, want := range []string{"the snippet body", "Name: VLEN", "parameters"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
