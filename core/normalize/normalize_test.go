package normalize

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridematch/core/model"
)

func TestRide_Aliases(t *testing.T) {
	doc := Document{
		"_id":               "r1",
		"UID":               "u1",
		"rideDate":          "2024-06-03",
		"startTime":         "9:00 AM",
		"appointment_time":  "09:30",
		"estimatedDuration": "60",
		"tripType":          "Round Trip",
		"clientId":          "c1",
		"destination":       "d1",
		"destinationCity":   "Springfield",
		"driverId":          "v1",
		"driverUID":         "v1-uid",
		"assignedTo":        []any{"v1", "v2"},
		"status":            "Assigned",
	}
	r, err := Ride(doc)
	require.NoError(t, err)
	assert.Equal(t, "r1", r.ID)
	assert.Equal(t, "u1", r.UID)
	assert.Equal(t, "2024-06-03", r.Times.Date)
	assert.Equal(t, "9:00 AM", r.Times.PickupTime)
	assert.Equal(t, "09:30", r.Times.AppointmentTime)
	require.NotNil(t, r.Times.DurationMinutes)
	assert.Equal(t, 60, *r.Times.DurationMinutes)
	assert.Equal(t, model.TripRoundTrip, r.Times.TripType)
	assert.Equal(t, "c1", r.ClientRef)
	assert.Equal(t, "d1", r.DestinationRef)
	assert.Equal(t, "Springfield", r.DestinationTown)
	assert.Equal(t, []string{"v1", "v1-uid", "v2"}, r.AssignedDriverIDs)
}

func TestRide_Timestamps(t *testing.T) {
	doc := Document{
		"id":              "r2",
		"date":            map[string]any{"_seconds": int64(1717405200)},
		"pickupTime":      "2024-06-03T09:00:00Z",
		"appointmentTime": float64(time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC).UnixMilli()),
		"tripType":        "oneWayTo",
	}
	r, err := Ride(doc)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", r.Times.Date[:10])
	require.NotNil(t, r.Times.PickupAt)
	assert.True(t, r.Times.PickupAt.Equal(time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)))
	require.NotNil(t, r.Times.AppointmentAt)
	assert.True(t, r.Times.AppointmentAt.Equal(time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)))
	assert.Equal(t, model.TripOneWayTo, r.Times.TripType)
}

func TestRide_NoIdentifier(t *testing.T) {
	_, err := Ride(Document{"date": "2024-06-03"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDocument))
}

func TestVolunteer_Shapes(t *testing.T) {
	doc := Document{
		"id":                    "v1",
		"uid":                   "v1-uid",
		"first_name":            "Ned",
		"lastName":              "Flanders",
		"role":                  "Driver, Dispatcher",
		"volunteeringStatus":    "Active",
		"weeklyAvailability":    "M09:00;M17:00",
		"maxRides":              "3",
		"vehicleHeight":         "Medium",
		"canHandleOxygen":       "Yes",
		"acceptsServiceAnimals": true,
		"allergensInCar":        "dogs; cats",
		"mobilityAssistance":    []any{"walker", "cane"},
		"townLimitations":       []any{"Shelbyville", "Capital City"},
		"townPreference":        "Springfield",
		"clientPreferences":     []any{"Simpson, Homer", "Marge Simpson"},
		"unavailability": []any{
			map[string]any{"start": "2024-06-03T08:00:00Z", "end": "2024-06-03T09:00:00Z"},
			map[string]any{"slots": "M09:00;M10:30", "repeated": true, "effectiveFrom": "2024-06-03"},
			"not a record",
			map[string]any{"start": "soon"},
		},
		"recurringUnavailability": []any{
			map[string]any{"day": "Friday", "startHour": 9.5, "endHour": 11},
			map[string]any{"dayOfWeek": 2, "startMinutes": 600, "endMinutes": 660},
		},
	}
	v, skipped, err := Volunteer(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v1-uid"}, v.IDs)
	assert.Equal(t, "Ned Flanders", v.Name())
	assert.Equal(t, []string{"Driver", "Dispatcher"}, v.Roles)
	assert.Equal(t, "Active", v.Status)
	assert.Equal(t, "M09:00;M17:00", v.Availability)
	assert.Equal(t, 3, v.MaxRidesPerWeek)
	assert.Equal(t, "Medium", v.CarHeight)
	assert.True(t, v.Oxygen)
	assert.True(t, v.ServiceAnimal)
	assert.Equal(t, []string{"dogs", "cats"}, v.AllowedAllergens)
	assert.Equal(t, []string{"walker", "cane"}, v.MobilityAccommodations)
	assert.Equal(t, "Shelbyville,Capital City", v.DestinationLimitations)
	assert.Equal(t, "Springfield", v.TownPreferences)
	assert.Equal(t, "Simpson, Homer;Marge Simpson", v.ClientPreferences)

	assert.Equal(t, 2, skipped)
	assert.Equal(t, 2, v.SkippedUnavailability)
	require.Len(t, v.Unavailability, 4)
	require.NotNil(t, v.Unavailability[0].Start)
	assert.Equal(t, "unavailability", v.Unavailability[0].Source)
	assert.True(t, v.Unavailability[1].Repeated)
	require.NotNil(t, v.Unavailability[1].EffectiveFrom)
	assert.Equal(t, "Friday", v.Unavailability[2].Day)
	require.NotNil(t, v.Unavailability[2].StartHour)
	assert.Equal(t, 9.5, *v.Unavailability[2].StartHour)
	assert.Equal(t, "2", v.Unavailability[3].Day)
	require.NotNil(t, v.Unavailability[3].EndMinutes)
	assert.Equal(t, 660, *v.Unavailability[3].EndMinutes)
}

func TestClient(t *testing.T) {
	c, err := Client(Document{
		"clientId":         "c1",
		"firstName":        "Homer",
		"lastName":         "Simpson",
		"nickname":         "Homie",
		"carHeightNeeded":  []any{"Low", "Medium"},
		"usesOxygen":       "no",
		"hasServiceAnimal": "TRUE",
		"allergies":        "peanut",
		"mobility":         "walker;wheelchair",
		"town":             "Springfield",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, c.IDs)
	assert.Equal(t, "Homie", c.PreferredName)
	assert.Equal(t, "Low,Medium", c.CarHeight)
	assert.False(t, c.Oxygen)
	assert.True(t, c.ServiceAnimal)
	assert.Equal(t, []string{"peanut"}, c.Allergies)
	assert.Equal(t, []string{"walker", "wheelchair"}, c.MobilityNeeds)
	assert.Equal(t, "Springfield", c.City)
}

func TestDestination(t *testing.T) {
	d, err := Destination(Document{"_id": 42, "name": "General Hospital", "city": "Springfield"})
	require.NoError(t, err)
	assert.Equal(t, model.Destination{ID: "42", Name: "General Hospital", Town: "Springfield"}, d)

	_, err = Destination(Document{"name": "nowhere"})
	assert.True(t, errors.Is(err, ErrDocument))
}
