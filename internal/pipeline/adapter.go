package pipeline

import "context"

// Adapter abstracts the model runtime used by the Pipeline.
// Concrete implementations (go-llama.cpp, llama-server) satisfy this interface.
type Adapter interface {
	// Complete returns params.N continuations of prompt, each at most
	// params.MaxTokens tokens long. The prompt itself is not included.
	// Implementations must return when ctx is canceled.
	Complete(ctx context.Context, prompt string, params InferParams) ([]string, error)
	// Close releases any resources held by the runtime.
	Close() error
}

// TokenCounter is implemented by adapters able to count prompt tokens with the
// model's own tokenizer.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}

// InferParams captures generation parameters passed to the adapter.
type InferParams struct {
	MaxTokens int
	N         int
}
