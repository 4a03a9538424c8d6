package common

import (
	"encoding/json"
	"net/http"
)

// DebugErrors adds the underlying error text to 500 responses. Set from config at startup.
var DebugErrors bool

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{Error: message})
}

// RespondWithServiceError writes err with the status HTTPStatusFromError picks.
// Infrastructure failures are logged in full and sanitized for the client.
func RespondWithServiceError(w http.ResponseWriter, err error) {
	code := HTTPStatusFromError(err)
	if code < http.StatusInternalServerError {
		RespondWithError(w, code, ClientMessage(err))
		return
	}
	Logger().Error("request failed", "status", code, "error", err)
	resp := ErrorResponse{Error: "Internal server error"}
	if code == http.StatusServiceUnavailable {
		resp.Error = "Service unavailable"
	}
	if DebugErrors {
		resp.Detail = err.Error()
	}
	RespondWithJSON(w, code, resp)
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
