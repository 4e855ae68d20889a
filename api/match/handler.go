// Package match exposes match requests and the match log over HTTP.
package match

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kilianp07/ridematch/core/logger"
	"github.com/kilianp07/ridematch/core/matching"
)

// Matcher runs a match request.
type Matcher interface {
	Match(ctx context.Context, rideRef string) (*matching.Report, error)
}

// Handler serves GET /api/v1/rides/{id}/matches.
type Handler struct {
	matcher Matcher
	log     logger.Logger
}

// NewHandler returns a handler backed by m.
func NewHandler(m Matcher, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop{}
	}
	return &Handler{matcher: m, log: log}
}

// Handle GET /api/v1/rides/{id}/matches
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rep, err := h.matcher.Match(r.Context(), id)
	if err != nil {
		kind := matching.FailureKind(err)
		if kind == "internal" || kind == "unknown" {
			h.log.Errorf("GET /rides/%s/matches: %v", id, err)
		} else {
			h.log.Warnf("GET /rides/%s/matches: %v", id, err)
		}
		writeJSON(w, StatusFor(err), matching.Failure(err))
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// StatusFor maps a match error to an HTTP status code.
func StatusFor(err error) int {
	switch matching.FailureKind(err) {
	case "":
		return http.StatusOK
	case "not_found":
		return http.StatusNotFound
	case "timeframe":
		return http.StatusUnprocessableEntity
	case "timeout":
		return http.StatusGatewayTimeout
	case "repository":
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
