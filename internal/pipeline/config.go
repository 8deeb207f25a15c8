package pipeline

import "time"

// Backend names accepted by Config.Backend.
const (
	BackendLlama  = "llama"
	BackendServer = "llama-server"
)

const (
	defaultPadTokenID     = 50256
	defaultCtxSize        = 1024
	defaultConnectTimeout = 5 * time.Second
	defaultMaxLength      = 100
	defaultNumSequences   = 1
)

// MaxNumReturnSequences caps Options.NumReturnSequences per call.
const MaxNumReturnSequences = 64

// Config selects and parameterizes the runtime loaded by Load.
type Config struct {
	Backend   string
	Model     string
	Tokenizer string
	// PadTokenID is the padding token id bound to the tokenizer.
	PadTokenID int

	// Model file resolution, tried in order: ModelPath, ModelsDir+Model, Hub.
	ModelPath  string
	ModelsDir  string
	ModelFile  string
	HFCacheDir string
	HFToken    string

	// llama (in-process)
	CtxSize   int
	Threads   int
	GPULayers int

	// llama-server
	ServerURL      string
	ServerAPIKey   string
	RequestTimeout time.Duration
	ConnectTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Backend == "" {
		c.Backend = BackendServer
	}
	if c.Tokenizer == "" {
		c.Tokenizer = c.Model
	}
	if c.PadTokenID <= 0 {
		c.PadTokenID = defaultPadTokenID
	}
	if c.CtxSize <= 0 {
		c.CtxSize = defaultCtxSize
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	return c
}
