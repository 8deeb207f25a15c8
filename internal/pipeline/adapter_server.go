package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

const (
	tokenCountTTL      = 10 * time.Minute
	tokenCountCapacity = 1024
)

// serverAdapter implements Adapter by talking to a running llama.cpp server over
// HTTP. Completions use the OpenAI-compatible endpoint; prompt token counts use
// the native /tokenize endpoint and are cached per prompt.
type serverAdapter struct {
	baseURL        string
	apiKey         string
	model          string
	reqTimeout     time.Duration
	connectTimeout time.Duration
	httpClient     *http.Client
	tokens         *ttlcache.Cache[string, int]
}

func newServerAdapter(cfg Config) (*serverAdapter, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.ServerURL), "/")
	if base == "" {
		return nil, errors.New("llama-server url is empty")
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	// Timeout=0: every call carries a context deadline instead.
	cli := &http.Client{Transport: tr, Timeout: 0}
	cache := ttlcache.New[string, int](
		ttlcache.WithTTL[string, int](tokenCountTTL),
		ttlcache.WithCapacity[string, int](tokenCountCapacity),
	)
	go cache.Start()
	return &serverAdapter{
		baseURL:        base,
		apiKey:         cfg.ServerAPIKey,
		model:          cfg.Model,
		reqTimeout:     cfg.RequestTimeout,
		connectTimeout: cfg.ConnectTimeout,
		httpClient:     cli,
		tokens:         cache,
	}, nil
}

// completionRequest is the payload for /v1/completions.
type completionRequest struct {
	Model     string `json:"model,omitempty"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
	Stream    bool   `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type tokenizeRequest struct {
	Content string `json:"content"`
}

type tokenizeResponse struct {
	Tokens []json.RawMessage `json:"tokens"`
}

func (a *serverAdapter) Complete(ctx context.Context, prompt string, params InferParams) ([]string, error) {
	if a.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.reqTimeout)
		defer cancel()
	}
	var out []string
	// One request per sequence; llama-server support for n>1 varies by build.
	for i := 0; i < params.N; i++ {
		var resp completionResponse
		err := a.postJSON(ctx, "/v1/completions", completionRequest{
			Model:     a.model,
			Prompt:    prompt,
			MaxTokens: params.MaxTokens,
			Stream:    false,
		}, &resp)
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New("llama server returned no choices")
		}
		out = append(out, resp.Choices[0].Text)
	}
	return out, nil
}

// CountTokens returns the number of tokens in text per the server's tokenizer.
func (a *serverAdapter) CountTokens(ctx context.Context, text string) (int, error) {
	if item := a.tokens.Get(text); item != nil {
		return item.Value(), nil
	}
	var resp tokenizeResponse
	if err := a.postJSON(ctx, "/tokenize", tokenizeRequest{Content: text}, &resp); err != nil {
		return 0, err
	}
	n := len(resp.Tokens)
	a.tokens.Set(text, n, ttlcache.DefaultTTL)
	return n, nil
}

// health performs one GET /health probe bounded by the connect timeout.
func (a *serverAdapter) health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.connectTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("health status %d", resp.StatusCode)
	}
	return nil
}

func (a *serverAdapter) Close() error {
	a.tokens.Stop()
	a.httpClient.CloseIdleConnections()
	return nil
}

func (a *serverAdapter) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("llama server http error: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
