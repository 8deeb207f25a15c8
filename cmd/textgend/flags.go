package main

import (
	"os"

	"github.com/spf13/pflag"

	"textgend/internal/config"
)

// bindFlags registers every config key as a flag writing into c. Only flags
// set on the command line take part in resolveConfig.
func bindFlags(fs *pflag.FlagSet, c *config.Config, cfgPath *string) {
	fs.StringVar(cfgPath, "config", "", "Path to a YAML, JSON or TOML config file")
	fs.StringVar(&c.Addr, "addr", config.DefaultAddr, "HTTP listen address")
	fs.StringVar(&c.Backend, "backend", config.DefaultBackend, "Inference backend: llama-server|llama")
	fs.StringVar(&c.Model, "model", config.DefaultModel, "Model id (file name in --models-dir or Hugging Face repo)")
	fs.StringVar(&c.Tokenizer, "tokenizer", "", "Tokenizer paired with the model (default: model)")
	fs.StringVar(&c.ModelFile, "model-file", "", "GGUF file to download from the model repo")
	fs.StringVar(&c.ModelPath, "model-path", "", "Explicit path to a local GGUF file")
	fs.StringVar(&c.ModelsDir, "models-dir", "", "Directory to scan for *.gguf model files")
	fs.StringVar(&c.HFCacheDir, "hf-cache-dir", "", "Hugging Face download cache directory")
	fs.StringVar(&c.HFToken, "hf-token", "", "Hugging Face access token")
	fs.IntVar(&c.PadTokenID, "pad-token-id", config.DefaultPadTokenID, "Padding token id")
	fs.StringVar(&c.ServerURL, "server-url", config.DefaultServerURL, "llama.cpp server base URL")
	fs.StringVar(&c.ServerAPIKey, "server-api-key", "", "Bearer token for the llama.cpp server")
	fs.IntVar(&c.CtxSize, "ctx-size", 0, "Context size for the in-process backend")
	fs.IntVar(&c.Threads, "threads", 0, "Inference threads for the in-process backend (0=auto)")
	fs.IntVar(&c.GPULayers, "gpu-layers", 0, "Layers offloaded to the GPU for the in-process backend")
	fs.Int64Var(&c.MaxBodyBytes, "max-body-bytes", 1<<20, "Maximum /generate request body size")
	fs.IntVar(&c.GenerateTimeoutSeconds, "generate-timeout", 0, "Per-request generation timeout in seconds (0=none)")
	fs.IntVar(&c.RequestTimeoutSeconds, "request-timeout", 0, "llama.cpp server request timeout in seconds (0=none)")
	fs.StringVar(&c.LogLevel, "log-level", config.DefaultLogLevel, "Log level: debug|info|warn|error|off")
	fs.StringVar(&c.LogFormat, "log-format", config.DefaultLogFormat, "Log format: json|console")
	fs.BoolVar(&c.CORSEnabled, "cors", false, "Enable CORS")
	fs.StringSliceVar(&c.CORSOrigins, "cors-origins", nil, "Allowed CORS origins")
	fs.StringSliceVar(&c.CORSMethods, "cors-methods", nil, "Allowed CORS methods")
	fs.StringSliceVar(&c.CORSHeaders, "cors-headers", nil, "Allowed CORS headers")
}

// resolveConfig merges, lowest to highest precedence: defaults, the config
// file, TEXTGEND_* environment variables and explicitly set flags.
func resolveConfig(fs *pflag.FlagSet, flags config.Config, cfgPath string, lookup func(string) (string, bool)) (config.Config, error) {
	var c config.Config
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return config.Config{}, err
		}
		c = loaded
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := config.ApplyEnv(&c, lookup); err != nil {
		return config.Config{}, err
	}
	set := map[string]func(){
		"addr":             func() { c.Addr = flags.Addr },
		"backend":          func() { c.Backend = flags.Backend },
		"model":            func() { c.Model = flags.Model },
		"tokenizer":        func() { c.Tokenizer = flags.Tokenizer },
		"model-file":       func() { c.ModelFile = flags.ModelFile },
		"model-path":       func() { c.ModelPath = flags.ModelPath },
		"models-dir":       func() { c.ModelsDir = flags.ModelsDir },
		"hf-cache-dir":     func() { c.HFCacheDir = flags.HFCacheDir },
		"hf-token":         func() { c.HFToken = flags.HFToken },
		"pad-token-id":     func() { c.PadTokenID = flags.PadTokenID },
		"server-url":       func() { c.ServerURL = flags.ServerURL },
		"server-api-key":   func() { c.ServerAPIKey = flags.ServerAPIKey },
		"ctx-size":         func() { c.CtxSize = flags.CtxSize },
		"threads":          func() { c.Threads = flags.Threads },
		"gpu-layers":       func() { c.GPULayers = flags.GPULayers },
		"max-body-bytes":   func() { c.MaxBodyBytes = flags.MaxBodyBytes },
		"generate-timeout": func() { c.GenerateTimeoutSeconds = flags.GenerateTimeoutSeconds },
		"request-timeout":  func() { c.RequestTimeoutSeconds = flags.RequestTimeoutSeconds },
		"log-level":        func() { c.LogLevel = flags.LogLevel },
		"log-format":       func() { c.LogFormat = flags.LogFormat },
		"cors":             func() { c.CORSEnabled = flags.CORSEnabled },
		"cors-origins":     func() { c.CORSOrigins = flags.CORSOrigins },
		"cors-methods":     func() { c.CORSMethods = flags.CORSMethods },
		"cors-headers":     func() { c.CORSHeaders = flags.CORSHeaders },
	}
	fs.Visit(func(f *pflag.Flag) {
		if apply, ok := set[f.Name]; ok {
			apply()
		}
	})
	return c.WithDefaults(), nil
}
