package response

import (
	"encoding/json"
	"net/http"
)

// errorBody is the uniform error envelope
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
}

// JSON writes a JSON body with the given status
func JSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// OK writes a 200 with the given body
func OK(w http.ResponseWriter, body any) {
	JSON(w, http.StatusOK, body)
}

// Error writes an error envelope
func Error(w http.ResponseWriter, status int, message string, detail string) {
	JSON(w, status, errorBody{Success: false, Error: message, Detail: detail})
}

// BadRequest writes a 400 error envelope
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message, "")
}

// InternalError writes a 500 error envelope
func InternalError(w http.ResponseWriter, message string, detail string) {
	Error(w, http.StatusInternalServerError, message, detail)
}

// BadGateway writes a 502 error envelope for upstream failures
func BadGateway(w http.ResponseWriter, message string, detail string) {
	Error(w, http.StatusBadGateway, message, detail)
}
