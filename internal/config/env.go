package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override, e.g. TEXTGEND_ADDR.
const EnvPrefix = "TEXTGEND_"

// ApplyEnv overrides fields of c from environment variables named
// EnvPrefix + upper-cased config key. lookup is usually os.LookupEnv.
func ApplyEnv(c *Config, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"ADDR":           &c.Addr,
		"BACKEND":        &c.Backend,
		"MODEL":          &c.Model,
		"TOKENIZER":      &c.Tokenizer,
		"MODEL_FILE":     &c.ModelFile,
		"MODEL_PATH":     &c.ModelPath,
		"MODELS_DIR":     &c.ModelsDir,
		"HF_CACHE_DIR":   &c.HFCacheDir,
		"HF_TOKEN":       &c.HFToken,
		"SERVER_URL":     &c.ServerURL,
		"SERVER_API_KEY": &c.ServerAPIKey,
		"LOG_LEVEL":      &c.LogLevel,
		"LOG_FORMAT":     &c.LogFormat,
	}
	for k, p := range str {
		if v, ok := lookup(EnvPrefix + k); ok && v != "" {
			*p = v
		}
	}
	ints := map[string]*int{
		"PAD_TOKEN_ID":             &c.PadTokenID,
		"CTX_SIZE":                 &c.CtxSize,
		"THREADS":                  &c.Threads,
		"GPU_LAYERS":               &c.GPULayers,
		"GENERATE_TIMEOUT_SECONDS": &c.GenerateTimeoutSeconds,
		"REQUEST_TIMEOUT_SECONDS":  &c.RequestTimeoutSeconds,
	}
	for k, p := range ints {
		v, ok := lookup(EnvPrefix + k)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, k, err)
		}
		*p = n
	}
	if v, ok := lookup(EnvPrefix + "MAX_BODY_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_BODY_BYTES: %w", EnvPrefix, err)
		}
		c.MaxBodyBytes = n
	}
	if v, ok := lookup(EnvPrefix + "CORS_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sCORS_ENABLED: %w", EnvPrefix, err)
		}
		c.CORSEnabled = b
	}
	lists := map[string]*[]string{
		"CORS_ORIGINS": &c.CORSOrigins,
		"CORS_METHODS": &c.CORSMethods,
		"CORS_HEADERS": &c.CORSHeaders,
	}
	for k, p := range lists {
		if v, ok := lookup(EnvPrefix + k); ok && v != "" {
			*p = SplitCSV(v)
		}
	}
	return nil
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empties.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
