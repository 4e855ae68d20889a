package matching

import (
	"context"
	"errors"

	"github.com/kilianp07/ridematch/core/timeframe"
)

var (
	// ErrRideNotFound is returned when neither the id nor the uid resolve a ride.
	ErrRideNotFound = errors.New("ride not found")
	// ErrRepository wraps failures of the backing store.
	ErrRepository = errors.New("repository error")
	// ErrInternal wraps panics recovered while matching.
	ErrInternal = errors.New("internal error")
)

// FailureResponse is the structured failure returned to API and CLI callers.
type FailureResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Failure renders err as a FailureResponse.
func Failure(err error) FailureResponse {
	resp := FailureResponse{Message: "Failed to match drivers"}
	if err == nil {
		return resp
	}
	resp.Error = err.Error()
	switch FailureKind(err) {
	case "not_found":
		resp.Message = "Ride not found"
	case "timeframe":
		resp.Message = "Could not calculate ride timeframe"
	case "timeout":
		resp.Message = "Match request timed out"
	case "repository":
		resp.Message = "Failed to load matching data"
	case "internal":
		resp.Message = "Internal matching error"
	}
	return resp
}

// FailureKind classifies an error returned by Engine.Match.
func FailureKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrRideNotFound):
		return "not_found"
	case errors.Is(err, timeframe.ErrTimeframe):
		return "timeframe"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	case errors.Is(err, ErrRepository):
		return "repository"
	case errors.Is(err, ErrInternal):
		return "internal"
	default:
		return "unknown"
	}
}
