// Package shared centralizes JSON response writing so every handler emits
// the same envelopes.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "pickup-gateway/pkg/domain-errors"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// WriteError translates a domain error into the HTTP envelope. Messages
// for internal failures are not echoed to clients.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	message := ""
	if status < http.StatusInternalServerError {
		var gw dErrors.GatewayError
		if errors.As(err, &gw) {
			message = gw.Message
		}
	}
	WriteJSON(w, status, ErrorResponse{Error: string(code), Message: message})
}
