package http

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeData wraps a payload in the success envelope.
func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, map[string]interface{}{"success": true, "data": data})
}

// writeError wraps a failure in the error envelope shared by every handler.
func writeError(w http.ResponseWriter, status int, message, code string, details interface{}) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   errorBody{Message: message, Code: code, Details: details},
	})
}
