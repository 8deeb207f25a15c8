// Package pipeline loads a text-generation model once at startup and runs
// generations against it. It is structured into small files by concern:
//
//   - pipeline.go: Pipeline type, Options/Sequence, Generate and Load.
//   - config.go: Config and package defaults.
//   - adapter.go: Adapter interface implemented by runtimes.
//   - resolve.go: model file resolution (explicit path, models dir, Hugging Face Hub).
//   - errors.go: error types and helpers (IsDependencyUnavailable, IsModelNotFound, IsInvalidOptions).
//   - metrics.go: Prometheus collectors for generations.
//
// Runtimes:
//
//   - In-process llama (tag `llama`): go-llama.cpp binding.
//     Files: adapter_llama.go, llama_cgo.go. Without the tag adapter_llama_stub.go
//     makes Load fail with a dependency-unavailable error.
//
//   - llama-server: a running llama.cpp server reached over its
//     OpenAI-compatible HTTP API. File: adapter_server.go.
//
// The inference engine itself (tokenizer, sampling, weights) stays in llama.cpp;
// this package only prepares parameters and shapes results.
package pipeline
