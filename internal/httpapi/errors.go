package httpapi

import (
	"encoding/json"
	"net/http"

	"textgend/pkg/types"
)

// Client-facing error messages for /generate.
const (
	msgModelNotLoaded = "Model not loaded. Please check the server logs."
	msgInvalidInput   = "Invalid input. 'input' field is required."
	msgEmptyPrompt    = "Prompt cannot be empty."
)

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}
