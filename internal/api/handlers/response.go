package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/bist-swing/internal/contracts"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps engine errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, contracts.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrInsufficientHistory), errors.Is(err, contracts.ErrIndicatorComputation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, contracts.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondEngineError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := map[string]string{"error": err.Error()}
	if status != http.StatusNotFound && status != http.StatusInternalServerError {
		body["kind"] = string(contracts.KindOf(err))
	}
	respondJSON(w, status, body)
}
