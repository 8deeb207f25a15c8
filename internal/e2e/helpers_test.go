package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"textgend/internal/httpapi"
	"textgend/internal/pipeline"
)

// fakeLlamaServer mimics the llama.cpp server endpoints the pipeline uses.
// Tokens are whitespace-separated words; completions append " word" per token.
type fakeLlamaServer struct {
	*httptest.Server
	completions atomic.Int32
	lastMax     atomic.Int32
}

func newFakeLlamaServer(t *testing.T) *fakeLlamaServer {
	t.Helper()
	f := &fakeLlamaServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/tokenize", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string `json:"content"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		toks := make([]int, len(strings.Fields(req.Content)))
		_ = json.NewEncoder(w).Encode(map[string]any{"tokens": toks})
	})
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Prompt    string `json:"prompt"`
			MaxTokens int    `json:"max_tokens"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.completions.Add(1)
		f.lastMax.Store(int32(req.MaxTokens))
		text := strings.Repeat(" word", req.MaxTokens)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"text": text, "finish_reason": "length"}},
		})
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// newAPI loads a pipeline from cfg and serves it. A failed load serves the
// API with no generator, like the daemon does.
func newAPI(t *testing.T, cfg pipeline.Config) *httptest.Server {
	t.Helper()
	var gen httpapi.Generator
	p, err := pipeline.Load(context.Background(), cfg)
	if err == nil {
		gen = p
		t.Cleanup(func() { _ = p.Close() })
	}
	srv := httptest.NewServer(httpapi.NewMux(gen))
	t.Cleanup(srv.Close)
	return srv
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(payload))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return v
}
