// ==============================================================================
// HTTP HANDLER HELPERS - internal/handler/helpers.go
// ==============================================================================
package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"onboard/pkg/validator"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// parseAndValidateRequest parses and validates a JSON request body.
func parseAndValidateRequest(w http.ResponseWriter, r *http.Request, val *validator.Validator, req interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(req); err != nil {
		if err == io.EOF {
			respondError(w, http.StatusBadRequest, "Request body is required")
			return false
		}
		respondError(w, http.StatusBadRequest, "Invalid request body format")
		return false
	}

	if err := val.Validate(req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}

	return true
}

// clientIDFromPath extracts and parses the {id} path variable.
func clientIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid client ID")
		return uuid.Nil, false
	}
	return id, true
}
