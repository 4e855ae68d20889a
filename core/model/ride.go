package model

import (
	"strings"
	"time"
)

// TripType determines how the total duration and end time of a ride are derived.
type TripType int

const (
	TripUnknown TripType = iota
	TripRoundTrip
	TripOneWayTo
	TripOneWayFrom
)

// String returns a human-readable representation of the trip type.
func (t TripType) String() string {
	switch t {
	case TripRoundTrip:
		return "RoundTrip"
	case TripOneWayTo:
		return "OneWayTo"
	case TripOneWayFrom:
		return "OneWayFrom"
	default:
		return "unknown"
	}
}

// ParseTripType accepts the spellings found in ride records ("Round Trip",
// "round_trip", "One Way To", "oneWayFrom", ...).
func ParseTripType(s string) TripType {
	k := strings.ToLower(s)
	k = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(k)
	switch k {
	case "roundtrip", "round":
		return TripRoundTrip
	case "onewayto", "to":
		return TripOneWayTo
	case "onewayfrom", "from":
		return TripOneWayFrom
	default:
		return TripUnknown
	}
}

// RideTimes carries the raw time fields of a ride. Two shapes exist: date and
// time-of-day strings that still need parsing, or already resolved instants.
type RideTimes struct {
	Date            string
	PickupTime      string
	AppointmentTime string
	PickupAt        *time.Time
	AppointmentAt   *time.Time
	// DurationMinutes is the estimated appointment duration; nil when unknown.
	DurationMinutes *int
	TripType        TripType
	// RawTripType keeps the inbound value for error messages.
	RawTripType string
}

// Ride is the canonical ride record consumed by the matching core.
type Ride struct {
	ID                string
	UID               string
	Times             RideTimes
	ClientRef         string
	DestinationRef    string
	DestinationTown   string
	PickupTown        string
	AssignedDriverIDs []string
	Status            string
}

// IDs returns the non-empty identifiers of the ride.
func (r Ride) IDs() []string {
	var ids []string
	for _, id := range []string{r.ID, r.UID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// HasID reports whether id is one of the ride's aliases.
func (r Ride) HasID(id string) bool {
	if id == "" {
		return false
	}
	return r.ID == id || r.UID == id
}

// RideTimeframe is the computed pickup-to-end interval of a ride.
type RideTimeframe struct {
	Start                    time.Time `json:"start_time"`
	End                      time.Time `json:"end_time"`
	Appointment              time.Time `json:"appointment_time"`
	EstimatedDurationMinutes int       `json:"estimated_duration_minutes"`
	TripType                 TripType  `json:"-"`
	TotalDurationMinutes     int       `json:"total_duration_minutes"`
}

// Duration returns End - Start.
func (t RideTimeframe) Duration() time.Duration { return t.End.Sub(t.Start) }

// Destination is the canonical destination record.
type Destination struct {
	ID   string
	Name string
	Town string
}
