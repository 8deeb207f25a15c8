package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

var wantLoaded = Config{
	Addr:        ":9999",
	Backend:     "llama",
	Model:       "gpt2",
	ModelPath:   "/models/gpt2.gguf",
	PadTokenID:  50256,
	CtxSize:     1024,
	CORSEnabled: true,
	CORSOrigins: []string{"*"},
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "addr: :9999\nbackend: llama\nmodel: gpt2\nmodel_path: /models/gpt2.gguf\npad_token_id: 50256\nctx_size: 1024\ncors_enabled: true\ncors_origins: ['*']\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(wantLoaded, cfg); diff != "" {
		t.Fatalf("unexpected cfg (-want +got):\n%s", diff)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"addr":":9999","backend":"llama","model":"gpt2","model_path":"/models/gpt2.gguf","pad_token_id":50256,"ctx_size":1024,"cors_enabled":true,"cors_origins":["*"]}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(wantLoaded, cfg); diff != "" {
		t.Fatalf("unexpected cfg (-want +got):\n%s", diff)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "addr=\":9999\"\nbackend=\"llama\"\nmodel=\"gpt2\"\nmodel_path=\"/models/gpt2.gguf\"\npad_token_id=50256\nctx_size=1024\ncors_enabled=true\ncors_origins=[\"*\"]\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(wantLoaded, cfg); diff != "" {
		t.Fatalf("unexpected cfg (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	if _, err := Load("/definitely/not/a/real/file-12345.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent file")
	}
	d := t.TempDir()
	bad := map[string]string{
		"cfg.txt":  "not supported",
		"bad.yaml": "addr: :8080\n: broken\n",
		"bad.json": `{ "addr": ":8080", "model": }`,
		"bad.toml": "addr=:8080\nmodel\n",
	}
	for name, content := range bad {
		if _, err := Load(writeTempFile(t, d, name, content)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestWithDefaults(t *testing.T) {
	got := Config{}.WithDefaults()
	want := Config{
		Addr:       DefaultAddr,
		Backend:    DefaultBackend,
		Model:      "gpt2",
		Tokenizer:  "gpt2",
		PadTokenID: 50256,
		ServerURL:  DefaultServerURL,
		LogLevel:   "info",
		LogFormat:  "json",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("defaults (-want +got):\n%s", diff)
	}
	// Tokenizer follows an explicit model.
	if c := (Config{Model: "distilgpt2"}).WithDefaults(); c.Tokenizer != "distilgpt2" {
		t.Fatalf("tokenizer=%q", c.Tokenizer)
	}
	if c := (Config{Model: "distilgpt2", Tokenizer: "gpt2"}).WithDefaults(); c.Tokenizer != "gpt2" {
		t.Fatalf("tokenizer=%q", c.Tokenizer)
	}
}
