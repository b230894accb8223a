package utils

import (
	"encoding/json"
	"errors"
	"net/http"
)

type M map[string]interface{}

// ErrorLogger is the slice of the logger the response helpers need.
type ErrorLogger interface {
	Error(category, message string)
}

// Sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func RespondWithError(w http.ResponseWriter, code int, msg string) {
	RespondWithJSON(w, code, M{"success": false, "error": msg})
}

// RespondOK writes {success: true, data, message?}.
func RespondOK(w http.ResponseWriter, code int, data interface{}, message string) {
	body := M{"success": true}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}
	RespondWithJSON(w, code, body)
}

// HandleError maps err onto the envelope. Unexpected errors are logged and
// answered with fallback so driver messages never reach the client.
func HandleError(w http.ResponseWriter, log ErrorLogger, category string, err error, fallback string) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		RespondWithError(w, http.StatusBadRequest, verr.Msg)
	case errors.Is(err, ErrValidation):
		RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrUnauthorized):
		RespondWithError(w, http.StatusUnauthorized, err.Error())
	default:
		if log != nil {
			log.Error(category, fallback+": "+err.Error())
		}
		RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// DecodeJSON reads the request body into v and reports a 400 on failure.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return false
	}
	return true
}
