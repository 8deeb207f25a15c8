package types

// GenerateRequest is the payload accepted by POST /generate.
//
// Fields are pointers so the handler can tell an absent field from a zero value.
type GenerateRequest struct {
	// Required prompt text. Leading and trailing whitespace is trimmed.
	// example: Once upon a time
	Input *string `json:"input" example:"Once upon a time"`
	// Maximum total length in tokens, prompt included.
	// example: 100
	MaxLength *int `json:"max_length,omitempty" example:"100"`
	// Number of sequences to generate. Only the first is returned.
	// example: 1
	NumReturnSequences *int `json:"num_return_sequences,omitempty" example:"1"`
}

// GenerateResponse is returned by POST /generate on success.
type GenerateResponse struct {
	// Generated text of the first sequence, prompt included.
	// example: Once upon a time there was a small village by the sea.
	Response string `json:"response" example:"Once upon a time there was a small village by the sea."`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: Prompt cannot be empty.
	Error string `json:"error" example:"Prompt cannot be empty."`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// InfoResponse describes the loaded generation pipeline, returned by GET /info.
type InfoResponse struct {
	// Model identifier (repo id, file name or server model name).
	// example: gpt2
	Model string `json:"model" example:"gpt2"`
	// Tokenizer paired with the model.
	// example: gpt2
	Tokenizer string `json:"tokenizer" example:"gpt2"`
	// Backend serving the model (llama or llama-server).
	// example: llama-server
	Backend string `json:"backend" example:"llama-server"`
	// Token id used for padding; the end-of-sequence id for GPT-2.
	// example: 50256
	PadTokenID int `json:"pad_token_id" example:"50256"`
	// Resolved local model file, empty for remote backends.
	Path string `json:"path,omitempty"`
	// Time the model finished loading (unix seconds).
	// example: 1700000000
	LoadedAtUnix int64 `json:"loaded_at_unix" example:"1700000000"`
}

// Model represents a GGUF model file discovered on disk.
type Model struct {
	// Stable identifier for the model (the file name).
	// example: gpt2.Q8_0.gguf
	ID string `json:"id" example:"gpt2.Q8_0.gguf"`
	// Human-friendly name.
	Name string `json:"name"`
	// Absolute path to the model file on disk.
	Path string `json:"path"`
}
