package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fakeAdapter is a lightweight in-memory adapter used for tests.
type fakeAdapter struct {
	conts     []string
	err       error
	got       InferParams
	gotPrompt string
	calls     int
	closed    bool
}

func (f *fakeAdapter) Complete(ctx context.Context, prompt string, params InferParams) ([]string, error) {
	f.calls++
	f.got = params
	f.gotPrompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.conts, nil
}

func (f *fakeAdapter) Close() error { f.closed = true; return nil }

// countingAdapter adds a TokenCounter that counts whitespace-separated words.
type countingAdapter struct {
	fakeAdapter
	countErr error
}

func (c *countingAdapter) CountTokens(ctx context.Context, text string) (int, error) {
	if c.countErr != nil {
		return 0, c.countErr
	}
	return len(strings.Fields(text)), nil
}

// fakeLlamaServer emulates the llama.cpp server endpoints the adapter uses.
type fakeLlamaServer struct {
	*httptest.Server
	completions atomic.Int32
	tokenizes   atomic.Int32
	lastReq     atomic.Value // completionRequest
	failStatus  atomic.Int32
	authHeader  atomic.Value // string
}

func newFakeLlamaServer(t *testing.T, text string) *fakeLlamaServer {
	t.Helper()
	f := &fakeLlamaServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.HandleFunc("/tokenize", func(w http.ResponseWriter, r *http.Request) {
		f.tokenizes.Add(1)
		var req tokenizeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		toks := make([]int, len(strings.Fields(req.Content)))
		for i := range toks {
			toks[i] = i + 1
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"tokens": toks})
	})
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		f.completions.Add(1)
		f.authHeader.Store(r.Header.Get("Authorization"))
		var req completionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		f.lastReq.Store(req)
		if code := f.failStatus.Load(); code != 0 {
			w.WriteHeader(int(code))
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object":  "text_completion",
			"choices": []map[string]any{{"index": 0, "text": text, "finish_reason": "length"}},
		})
	})
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// testCtx returns a context with a short timeout, canceled on test cleanup.
func testCtx(t *testing.T) context.Context {
	t.Helper()
	c, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return c
}
