package httpapi

import (
	"encoding/json"
	"net/http"
)

// Machine-readable error codes carried in every error body. Clients branch
// on these, not on the message text.
const (
	CodeInvalidJSON       = "invalid_json"
	CodeInvalidRequest    = "invalid_request"
	CodeUpstreamTimeout   = "upstream_timeout"
	CodeUpstreamError     = "upstream_error"
	CodeSaveFailed        = "save_failed"
	CodeReloadFailed      = "reload_failed"
	CodeKeyringFailed     = "keyring_failed"
	CodeStreamUnsupported = "stream_unsupported"
	CodeInternal          = "internal_error"
)

type APIError struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"request_id,omitempty"`
	} `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	var e APIError
	e.Error.Code = code
	e.Error.Message = message
	e.Error.RequestID = RequestIDFrom(r.Context())
	WriteJSON(w, status, e)
}
