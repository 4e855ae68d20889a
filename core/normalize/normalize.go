package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/ridematch/core/model"
	"github.com/kilianp07/ridematch/core/timeframe"
)

var rideAliases = aliases{
	"date":            {"date", "rideDate", "appointmentDate"},
	"pickup":          {"pickupTime", "startTime", "pickup_time"},
	"appointment":     {"appointmentTime", "appointment_time", "apptTime"},
	"duration":        {"estimatedDuration", "estimatedDurationMinutes", "appointmentDuration", "duration"},
	"tripType":        {"tripType", "trip_type", "tripTypeName"},
	"clientRef":       {"clientId", "clientUID", "clientRef", "client"},
	"destinationRef":  {"destinationId", "destinationRef", "destination"},
	"destinationTown": {"destinationTown", "destinationCity"},
	"pickupTown":      {"pickupTown", "pickupCity", "startLocation", "startTown"},
	"status":          {"status", "rideStatus"},
}

// driverAliasFields are every field a ride has used to store its driver.
var driverAliasFields = []string{
	"driverId", "driverUID", "driverUid", "driver", "assignedDriver",
	"assignedDriverId", "assignedDriverUID", "volunteerId", "volunteerUID", "assignedTo",
}

type rideFields struct {
	Date            any    `doc:"date"`
	Pickup          any    `doc:"pickup"`
	Appointment     any    `doc:"appointment"`
	Duration        *int   `doc:"duration"`
	TripType        string `doc:"tripType"`
	ClientRef       string `doc:"clientRef"`
	DestinationRef  string `doc:"destinationRef"`
	DestinationTown string `doc:"destinationTown"`
	PickupTown      string `doc:"pickupTown"`
	Status          string `doc:"status"`
}

// Ride decodes a ride document.
func Ride(doc Document) (model.Ride, error) {
	var f rideFields
	if err := decode(fold(doc, rideAliases), &f); err != nil {
		return model.Ride{}, fmt.Errorf("ride: %w", err)
	}
	r := model.Ride{
		ID:                toString(first(doc, "id", "_id", "rideId")),
		UID:               toString(first(doc, "uid", "UID", "rideUID")),
		ClientRef:         f.ClientRef,
		DestinationRef:    f.DestinationRef,
		DestinationTown:   f.DestinationTown,
		PickupTown:        f.PickupTown,
		AssignedDriverIDs: foldAll(doc, driverAliasFields...),
		Status:            f.Status,
	}
	if r.ID == "" && r.UID == "" {
		return model.Ride{}, fmt.Errorf("ride: %w: no identifier", ErrDocument)
	}
	r.Times = model.RideTimes{
		DurationMinutes: f.Duration,
		TripType:        model.ParseTripType(f.TripType),
		RawTripType:     f.TripType,
	}
	r.Times.Date = dateString(f.Date)
	r.Times.PickupTime, r.Times.PickupAt = clockOrInstant(f.Pickup)
	r.Times.AppointmentTime, r.Times.AppointmentAt = clockOrInstant(f.Appointment)
	return r, nil
}

// dateString keeps date strings verbatim and renders timestamps as dates.
func dateString(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	if t, ok := toTime(v); ok {
		return t.Format("2006-01-02")
	}
	return ""
}

// clockOrInstant splits a time field into a time of day or a full timestamp.
func clockOrInstant(v any) (string, *time.Time) {
	if v == nil {
		return "", nil
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if _, err := timeframe.ParseClock(s); err == nil {
			return s, nil
		}
		if t, ok := toTime(s); ok {
			return "", &t
		}
		return s, nil
	}
	if t, ok := toTime(v); ok {
		return "", &t
	}
	return "", nil
}

var volunteerAliases = aliases{
	"firstName":              {"firstName", "first_name", "fname"},
	"lastName":               {"lastName", "last_name", "lname"},
	"roles":                  {"roles", "role", "volunteerRoles", "volunteerRole"},
	"status":                 {"volunteeringStatus", "status", "volunteerStatus"},
	"availability":           {"availability", "weeklyAvailability", "availableTimes"},
	"maxRidesPerWeek":        {"maxRidesPerWeek", "maxRides"},
	"carHeight":              {"carHeight", "vehicleHeight"},
	"oxygen":                 {"oxygen", "canHandleOxygen", "oxygenOk"},
	"serviceAnimal":          {"serviceAnimal", "acceptsServiceAnimals", "serviceAnimalOk"},
	"allowedAllergens":       {"allowedAllergens", "allergensInCar", "allergensAllowed"},
	"mobilityAccommodations": {"mobilityAccommodations", "mobilityAssistance", "canAccommodateMobility"},
}

var volunteerIDFields = []string{"id", "_id", "uid", "volunteerId", "userId", "driverId"}

type volunteerFields struct {
	FirstName              string   `doc:"firstName"`
	LastName               string   `doc:"lastName"`
	Roles                  []string `doc:"roles"`
	Status                 string   `doc:"status"`
	Availability           string   `doc:"availability"`
	MaxRidesPerWeek        int      `doc:"maxRidesPerWeek"`
	CarHeight              string   `doc:"carHeight"`
	Oxygen                 bool     `doc:"oxygen"`
	ServiceAnimal          bool     `doc:"serviceAnimal"`
	AllowedAllergens       []string `doc:"allowedAllergens"`
	MobilityAccommodations []string `doc:"mobilityAccommodations"`
}

// unavailabilityFields lists the current and legacy array fields.
var unavailabilityFields = []string{"unavailability", "unavailableTimes", "unavailabilityEntries", "recurringUnavailability", "blockedTimes"}

// Volunteer decodes a volunteer document. Unavailability records that cannot
// be read are skipped; the returned count reports how many.
func Volunteer(doc Document) (model.Volunteer, int, error) {
	var f volunteerFields
	if err := decode(fold(doc, volunteerAliases), &f); err != nil {
		return model.Volunteer{}, 0, fmt.Errorf("volunteer: %w", err)
	}
	ids := foldAll(doc, volunteerIDFields...)
	if len(ids) == 0 {
		return model.Volunteer{}, 0, fmt.Errorf("volunteer: %w: no identifier", ErrDocument)
	}
	v := model.Volunteer{
		IDs:                    ids,
		FirstName:              f.FirstName,
		LastName:               f.LastName,
		Roles:                  f.Roles,
		Status:                 f.Status,
		Availability:           f.Availability,
		MaxRidesPerWeek:        f.MaxRidesPerWeek,
		CarHeight:              f.CarHeight,
		Oxygen:                 f.Oxygen,
		ServiceAnimal:          f.ServiceAnimal,
		AllowedAllergens:       f.AllowedAllergens,
		MobilityAccommodations: f.MobilityAccommodations,
		DestinationLimitations: listString(doc, "destinationLimitations", "townLimitations", "limitedTowns"),
		TownPreferences:        listString(doc, "townPreferences", "townPreference", "preferredTowns"),
		ClientPreferences:      clientPrefString(doc),
	}
	skipped := 0
	for _, field := range unavailabilityFields {
		items, ok := doc[field].([]any)
		if !ok {
			continue
		}
		for _, it := range items {
			m, ok := it.(map[string]any)
			if !ok {
				skipped++
				continue
			}
			u, err := Unavailability(m)
			if err != nil {
				skipped++
				continue
			}
			if u.Source == "" {
				u.Source = field
			}
			v.Unavailability = append(v.Unavailability, u)
		}
	}
	v.SkippedUnavailability = skipped
	return v, skipped, nil
}

// listString accepts either a delimited string or an array and returns a
// comma joined string.
func listString(doc Document, names ...string) string {
	for _, n := range names {
		switch x := doc[n].(type) {
		case string:
			if strings.TrimSpace(x) != "" {
				return x
			}
		case []any, []string:
			return strings.Join(toStrings(x), ",")
		}
	}
	return ""
}

// clientPrefString joins array entries with semicolons so "Last, First"
// entries survive.
func clientPrefString(doc Document) string {
	for _, n := range []string{"clientPreferences", "clientPreference", "preferredClients"} {
		switch x := doc[n].(type) {
		case string:
			if strings.TrimSpace(x) != "" {
				return x
			}
		case []any:
			parts := make([]string, 0, len(x))
			for _, it := range x {
				if s := toString(it); s != "" {
					parts = append(parts, s)
				}
			}
			return strings.Join(parts, ";")
		}
	}
	return ""
}

var unavailabilityAliases = aliases{
	"start":         {"start", "startDateTime", "startAt"},
	"end":           {"end", "endDateTime", "endAt"},
	"range":         {"range", "unavailabilityRange", "dateRange"},
	"slots":         {"slots", "time", "times", "timeSlots"},
	"repeated":      {"repeated", "repeat", "recurring", "isRecurring"},
	"effectiveFrom": {"effectiveFrom", "fromDate", "startDate"},
	"effectiveTo":   {"effectiveTo", "toDate", "endDate", "untilDate"},
	"day":           {"day", "dayOfWeek", "weekday"},
	"startMinutes":  {"startMinutes", "startMin"},
	"endMinutes":    {"endMinutes", "endMin"},
	"startHour":     {"startHour", "fromHour"},
	"endHour":       {"endHour", "toHour"},
	"source":        {"source", "reason", "note"},
}

type unavailabilityFieldSet struct {
	Start         *time.Time `doc:"start"`
	End           *time.Time `doc:"end"`
	Range         string     `doc:"range"`
	Slots         string     `doc:"slots"`
	Repeated      bool       `doc:"repeated"`
	EffectiveFrom *time.Time `doc:"effectiveFrom"`
	EffectiveTo   *time.Time `doc:"effectiveTo"`
	Day           string     `doc:"day"`
	StartMinutes  *int       `doc:"startMinutes"`
	EndMinutes    *int       `doc:"endMinutes"`
	StartHour     *float64   `doc:"startHour"`
	EndHour       *float64   `doc:"endHour"`
	Source        string     `doc:"source"`
}

// Unavailability decodes one unavailability record of any known shape.
func Unavailability(doc Document) (model.RawUnavailability, error) {
	var f unavailabilityFieldSet
	if err := decode(fold(doc, unavailabilityAliases), &f); err != nil {
		return model.RawUnavailability{}, fmt.Errorf("unavailability: %w", err)
	}
	return model.RawUnavailability{
		Start:         f.Start,
		End:           f.End,
		Range:         f.Range,
		Slots:         f.Slots,
		Repeated:      f.Repeated,
		EffectiveFrom: f.EffectiveFrom,
		EffectiveTo:   f.EffectiveTo,
		Day:           f.Day,
		StartMinutes:  f.StartMinutes,
		EndMinutes:    f.EndMinutes,
		StartHour:     f.StartHour,
		EndHour:       f.EndHour,
		Source:        f.Source,
	}, nil
}

var clientAliases = aliases{
	"firstName":     {"firstName", "first_name", "fname"},
	"lastName":      {"lastName", "last_name", "lname"},
	"preferredName": {"preferredName", "nickname", "goesBy"},
	"carHeight":     {"carHeight", "carHeightNeeded", "vehicleHeight"},
	"oxygen":        {"oxygen", "usesOxygen", "oxygenRequired"},
	"serviceAnimal": {"serviceAnimal", "hasServiceAnimal"},
	"allergies":     {"allergies", "allergyList"},
	"mobilityNeeds": {"mobilityNeeds", "mobilityAssistance", "mobility"},
	"city":          {"city", "town", "clientCity"},
	"homeTown":      {"homeTown", "hometown"},
}

var clientIDFields = []string{"id", "_id", "uid", "clientId", "clientUID"}

type clientFields struct {
	FirstName     string   `doc:"firstName"`
	LastName      string   `doc:"lastName"`
	PreferredName string   `doc:"preferredName"`
	CarHeight     any      `doc:"carHeight"`
	Oxygen        bool     `doc:"oxygen"`
	ServiceAnimal bool     `doc:"serviceAnimal"`
	Allergies     []string `doc:"allergies"`
	MobilityNeeds []string `doc:"mobilityNeeds"`
	City          string   `doc:"city"`
	HomeTown      string   `doc:"homeTown"`
}

// Client decodes a client document.
func Client(doc Document) (model.Client, error) {
	var f clientFields
	if err := decode(fold(doc, clientAliases), &f); err != nil {
		return model.Client{}, fmt.Errorf("client: %w", err)
	}
	ids := foldAll(doc, clientIDFields...)
	if len(ids) == 0 {
		return model.Client{}, fmt.Errorf("client: %w: no identifier", ErrDocument)
	}
	return model.Client{
		IDs:           ids,
		FirstName:     f.FirstName,
		LastName:      f.LastName,
		PreferredName: f.PreferredName,
		CarHeight:     strings.Join(toStrings(f.CarHeight), ","),
		Oxygen:        f.Oxygen,
		ServiceAnimal: f.ServiceAnimal,
		Allergies:     f.Allergies,
		MobilityNeeds: f.MobilityNeeds,
		City:          f.City,
		HomeTown:      f.HomeTown,
	}, nil
}

// Destination decodes a destination document.
func Destination(doc Document) (model.Destination, error) {
	d := model.Destination{
		ID:   toString(first(doc, "id", "_id", "uid", "destinationId")),
		Name: toString(first(doc, "name", "destinationName")),
		Town: toString(first(doc, "town", "city", "destinationTown")),
	}
	if d.ID == "" {
		return model.Destination{}, fmt.Errorf("destination: %w: no identifier", ErrDocument)
	}
	return d, nil
}

func first(doc Document, names ...string) any {
	for _, n := range names {
		if v, ok := doc[n]; ok && !isBlank(v) {
			return v
		}
	}
	return nil
}
