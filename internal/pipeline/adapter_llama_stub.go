//go:build !llama

package pipeline

// Without the 'llama' build tag there is no in-process runtime. Load fails fast
// with a dependency error instead of pretending to generate.

func newLlamaAdapter(modelPath string, cfg Config) (Adapter, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}
