//go:build llama

package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaAdapter owns a model loaded in-process through go-llama.cpp.
// The binding keeps one context per model, so calls are serialized.
type llamaAdapter struct {
	mu      sync.Mutex
	model   *llama.LLama
	threads int
}

func newLlamaAdapter(modelPath string, cfg Config) (Adapter, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	mo := []llama.ModelOption{
		llama.SetContext(cfg.CtxSize),
	}
	if cfg.GPULayers > 0 {
		mo = append(mo, llama.SetGPULayers(cfg.GPULayers))
	}
	m, err := llama.New(modelPath, mo...)
	if err != nil {
		return nil, err
	}
	return &llamaAdapter{model: m, threads: cfg.Threads}, nil
}

func (a *llamaAdapter) Complete(ctx context.Context, prompt string, params InferParams) ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	// Returning false from the callback stops prediction.
	a.model.SetTokenCallback(func(string) bool { return ctx.Err() == nil })
	po := predictOptions(params, a.threads)
	var out []string
	for i := 0; i < params.N; i++ {
		text, err := a.model.Predict(prompt, po...)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

func (a *llamaAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.model != nil {
		a.model.Free()
		a.model = nil
	}
	return nil
}

// predictOptions maps adapter params onto go-llama.cpp options. Sampling uses
// the binding's defaults.
func predictOptions(params InferParams, threads int) []llama.PredictOption {
	if threads < 1 {
		threads = llama.DefaultOptions.Threads
	}
	return []llama.PredictOption{
		llama.SetTokens(max(1, params.MaxTokens)),
		llama.SetThreads(threads),
		llama.SetTopP(llama.DefaultOptions.TopP),
		llama.SetTopK(llama.DefaultOptions.TopK),
		llama.SetTemperature(llama.DefaultOptions.Temperature),
		llama.SetPenalty(llama.DefaultOptions.Penalty),
	}
}
