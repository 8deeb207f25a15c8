//go:build !llama

package pipeline

import "testing"

func TestLoad_LlamaWithoutBuildTag(t *testing.T) {
	p := writeModel(t, t.TempDir(), "gpt2.gguf")
	_, err := Load(testCtx(t), Config{Backend: BackendLlama, Model: "gpt2", ModelPath: p})
	if !IsDependencyUnavailable(err) {
		t.Fatalf("expected dependency unavailable, got %v", err)
	}
}
