package model

import "time"

// RawUnavailability is the canonical carrier for the inbound unavailability
// shapes: explicit instants, range strings, compact slot strings and the two
// legacy recurring layouts (minutes or decimal hours).
type RawUnavailability struct {
	Start *time.Time
	End   *time.Time
	// Range uses the D,M,Y,HH:MM;D,M,Y,HH:MM encoding.
	Range string
	// Slots is a compact weekly slot string such as "M09:00;M12:00".
	Slots         string
	Repeated      bool
	EffectiveFrom *time.Time
	EffectiveTo   *time.Time

	// Legacy recurring fields. Day is a weekday name, code or number.
	Day          string
	StartMinutes *int
	EndMinutes   *int
	StartHour    *float64
	EndHour      *float64

	Source string
}

// Volunteer is the canonical driver profile.
type Volunteer struct {
	IDs       []string
	FirstName string
	LastName  string
	Roles     []string
	Status    string
	// Availability is the compact weekly slot string.
	Availability   string
	Unavailability []RawUnavailability
	// SkippedUnavailability counts stored records that could not be decoded
	// into Unavailability.
	SkippedUnavailability int
	MaxRidesPerWeek       int

	CarHeight              string
	Oxygen                 bool
	ServiceAnimal          bool
	AllowedAllergens       []string
	MobilityAccommodations []string

	// DestinationLimitations is a comma separated list of towns the driver
	// will not drive to.
	DestinationLimitations string
	TownPreferences        string
	ClientPreferences      string
}

// PrimaryID returns the first known identifier.
func (v Volunteer) PrimaryID() string {
	if len(v.IDs) == 0 {
		return ""
	}
	return v.IDs[0]
}

// Name returns "First Last" with missing parts omitted.
func (v Volunteer) Name() string {
	return joinName(v.FirstName, v.LastName)
}

// Client is the canonical client profile.
type Client struct {
	IDs           []string
	FirstName     string
	LastName      string
	PreferredName string

	// CarHeight lists the acceptable vehicle heights, comma or semicolon separated.
	CarHeight     string
	Oxygen        bool
	ServiceAnimal bool
	Allergies     []string
	MobilityNeeds []string

	City     string
	HomeTown string
}

// FullName returns "First Last" with missing parts omitted.
func (c Client) FullName() string {
	return joinName(c.FirstName, c.LastName)
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}
