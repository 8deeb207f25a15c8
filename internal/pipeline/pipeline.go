package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"textgend/pkg/types"
)

// logger is used for load and generation diagnostics. Nop until SetLogger.
var logger = zerolog.Nop()

// SetLogger installs the structured logger used by the pipeline.
func SetLogger(l zerolog.Logger) { logger = l }

// Options are the per-call generation parameters.
type Options struct {
	// MaxLength bounds the total length in tokens, prompt included.
	MaxLength int
	// NumReturnSequences is how many sequences to generate.
	NumReturnSequences int
}

// DefaultOptions returns the parameters used when a request omits them.
func DefaultOptions() Options {
	return Options{MaxLength: defaultMaxLength, NumReturnSequences: defaultNumSequences}
}

func (o Options) validate() error {
	if o.MaxLength <= 0 {
		return invalidOptionsError{msg: fmt.Sprintf("max_length must be a positive integer, got %d", o.MaxLength)}
	}
	if o.NumReturnSequences <= 0 {
		return invalidOptionsError{msg: fmt.Sprintf("num_return_sequences must be a positive integer, got %d", o.NumReturnSequences)}
	}
	if o.NumReturnSequences > MaxNumReturnSequences {
		return invalidOptionsError{msg: fmt.Sprintf("num_return_sequences must be at most %d, got %d", MaxNumReturnSequences, o.NumReturnSequences)}
	}
	return nil
}

// Sequence is one generated result.
type Sequence struct {
	// GeneratedText is the prompt followed by the generated continuation.
	GeneratedText string
}

// Pipeline binds an Adapter to a fixed model/tokenizer pair.
type Pipeline struct {
	adapter Adapter
	info    types.InfoResponse
}

// New wraps an already constructed adapter. Most callers use Load.
func New(a Adapter, info types.InfoResponse) *Pipeline {
	if info.LoadedAtUnix == 0 {
		info.LoadedAtUnix = time.Now().Unix()
	}
	modelLoaded.WithLabelValues(info.Backend, info.Model).Set(1)
	return &Pipeline{adapter: a, info: info}
}

// Info describes the loaded model.
func (p *Pipeline) Info() types.InfoResponse { return p.info }

// Close releases the adapter.
func (p *Pipeline) Close() error {
	modelLoaded.WithLabelValues(p.info.Backend, p.info.Model).Set(0)
	return p.adapter.Close()
}

// Generate runs the model on prompt and returns opts.NumReturnSequences
// sequences. Errors from the runtime are returned unchanged.
func (p *Pipeline) Generate(ctx context.Context, prompt string, opts Options) ([]Sequence, error) {
	start := time.Now()
	seqs, err := p.generate(ctx, prompt, opts)
	generationsTotal.WithLabelValues(p.info.Backend, outcomeLabel(err)).Inc()
	generationDuration.WithLabelValues(p.info.Backend).Observe(time.Since(start).Seconds())
	return seqs, err
}

func (p *Pipeline) generate(ctx context.Context, prompt string, opts Options) ([]Sequence, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	budget := p.tokenBudget(ctx, prompt, opts.MaxLength)
	if budget <= 0 {
		// Prompt already fills max_length: nothing left to generate.
		return repeatPrompt(prompt, opts.NumReturnSequences), nil
	}
	conts, err := p.adapter.Complete(ctx, prompt, InferParams{MaxTokens: budget, N: opts.NumReturnSequences})
	if err != nil {
		return nil, err
	}
	if len(conts) == 0 {
		return nil, fmt.Errorf("%s returned no sequences", p.info.Backend)
	}
	seqs := make([]Sequence, len(conts))
	for i, c := range conts {
		seqs[i] = Sequence{GeneratedText: prompt + c}
	}
	return seqs, nil
}

// tokenBudget converts a total max length into a continuation budget. Adapters
// that cannot count tokens get the full max length.
func (p *Pipeline) tokenBudget(ctx context.Context, prompt string, maxLength int) int {
	tc, ok := p.adapter.(TokenCounter)
	if !ok {
		return maxLength
	}
	n, err := tc.CountTokens(ctx, prompt)
	if err != nil {
		logger.Warn().Err(err).Msg("prompt token count failed; using max_length as continuation budget")
		return maxLength
	}
	return maxLength - n
}

func repeatPrompt(prompt string, n int) []Sequence {
	seqs := make([]Sequence, n)
	for i := range seqs {
		seqs[i] = Sequence{GeneratedText: prompt}
	}
	return seqs
}

// Load constructs the generation pipeline described by cfg. It makes a single
// attempt; callers decide what to do on failure.
func Load(ctx context.Context, cfg Config) (*Pipeline, error) {
	cfg = cfg.withDefaults()
	info := types.InfoResponse{
		Model:      cfg.Model,
		Tokenizer:  cfg.Tokenizer,
		Backend:    cfg.Backend,
		PadTokenID: cfg.PadTokenID,
	}
	start := time.Now()
	var a Adapter
	switch cfg.Backend {
	case BackendLlama:
		path, size, err := resolveModelPath(cfg)
		if err != nil {
			return nil, err
		}
		logger.Info().Str("model", cfg.Model).Str("path", path).Str("size", humanize.Bytes(uint64(size))).Msg("loading model")
		a, err = newLlamaAdapter(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
		info.Path = path
	case BackendServer:
		s, err := newServerAdapter(cfg)
		if err != nil {
			return nil, err
		}
		if err := s.health(ctx); err != nil {
			_ = s.Close()
			return nil, ErrDependencyUnavailable(fmt.Sprintf("llama-server at %s unavailable: %v", cfg.ServerURL, err))
		}
		a = s
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s or %s)", cfg.Backend, BackendLlama, BackendServer)
	}
	p := New(a, info)
	logger.Info().Str("model", cfg.Model).Str("tokenizer", cfg.Tokenizer).Str("backend", cfg.Backend).
		Int("pad_token_id", cfg.PadTokenID).Dur("took", time.Since(start)).Msg("model loaded")
	return p, nil
}
