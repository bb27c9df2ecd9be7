package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
)

type errorEnvelope struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, statusForError(err), errorEnvelope{Error: err.Error()})
}

func statusForError(err error) int {
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeInvalidArgument:
		return http.StatusBadRequest
	case errbuilder.CodeNotFound:
		return http.StatusNotFound
	case errbuilder.CodePermissionDenied:
		return http.StatusForbidden
	case errbuilder.CodeFailedPrecondition:
		return http.StatusConflict
	case errbuilder.CodeInternal:
		// Upstream failures from the Pulp client carry this code.
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
