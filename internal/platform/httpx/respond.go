package httpx

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON envelope for every rejected request.
type ErrorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Error sends an error envelope.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Error: message, Code: code})
}

// FieldErrors sends a 400 validation envelope carrying per-field messages.
func FieldErrors(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusBadRequest, ErrorBody{Error: "invalid request", Code: CodeValidation, Fields: fields})
}

// DecodeJSON decodes JSON request body into the target struct, rejecting
// bodies larger than limit bytes when limit is positive.
func DecodeJSON(w http.ResponseWriter, r *http.Request, limit int64, target any) error {
	body := r.Body
	if limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	return json.NewDecoder(body).Decode(target)
}
