// Package repository defines the read port the matching engine consumes.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/ridematch/core/model"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Repository exposes the records needed to match a ride. Implementations
// return canonical model values and wrap ErrNotFound for missing records.
type Repository interface {
	GetRideByID(ctx context.Context, id string) (model.Ride, error)
	GetRideByUID(ctx context.Context, uid string) (model.Ride, error)
	GetAllVolunteers(ctx context.Context) ([]model.Volunteer, error)
	GetClientByReference(ctx context.Context, ref string) (model.Client, error)
	GetDestinationByID(ctx context.Context, id string) (model.Destination, error)
	// FetchRidesInRange returns rides whose start lies in [start, end].
	FetchRidesInRange(ctx context.Context, start, end time.Time) ([]model.Ride, error)
	Close() error
}

