package capacity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridematch/core/model"
)

func ride(id, date, status string, drivers ...string) model.Ride {
	return model.Ride{
		ID:                id,
		Status:            status,
		AssignedDriverIDs: drivers,
		Times: model.RideTimes{
			Date:            date,
			PickupTime:      "09:00",
			AppointmentTime: "09:30",
			TripType:        model.TripRoundTrip,
		},
	}
}

func TestWeekBounds(t *testing.T) {
	// Wednesday
	b := WeekBounds(time.Date(2024, 6, 5, 15, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC), b.Start)
	assert.Equal(t, time.Date(2024, 6, 8, 23, 59, 59, 999000000, time.UTC), b.End)
	assert.Equal(t, time.Sunday, b.Start.Weekday())

	// Sunday is its own week start; month rollover
	b = WeekBounds(time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), b.Start)
	assert.Equal(t, time.Date(2024, 7, 6, 23, 59, 59, 999000000, time.UTC), b.End)
}

func TestCount_WeeklyLimit(t *testing.T) {
	current := ride("r-current", "2024-06-05", "pending")
	current.UID = "uid-current"
	rides := []model.Ride{
		ride("r1", "2024-06-03", "assigned", "d1"),
		ride("r2", "2024-06-04", "Completed", "d1"),
		ride("r3", "2024-06-04", "Cancelled", "d1"),
		ride("r4", "2024-06-04", "declined", "d1"),
		ride("r5", "2024-06-10", "assigned", "d1"),
		{ID: "other", UID: "uid-current", AssignedDriverIDs: []string{"d1"}, Times: current.Times},
		ride("r-current", "2024-06-05", "assigned", "d1"),
	}
	b := WeekBounds(time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC), time.UTC)
	counts := Count(rides, current, b, time.UTC)
	got := counts.For([]string{"d1"})
	assert.Equal(t, 2, got)
	assert.True(t, Exceeded(2, got))
	assert.False(t, Exceeded(3, got))
	assert.False(t, Exceeded(0, got))
}

func TestCount_NoDoubleCount(t *testing.T) {
	rides := []model.Ride{
		ride("r1", "2024-06-03", "assigned", "d1", "d1", " d1 ", "alias-d1"),
		ride("r2", "2024-06-04", "assigned", "alias-d1"),
	}
	b := WeekBounds(time.Date(2024, 6, 5, 9, 0, 0, 0, time.UTC), time.UTC)
	counts := Count(rides, model.Ride{ID: "x"}, b, time.UTC)
	assert.Equal(t, 1, counts["d1"])
	assert.Equal(t, 2, counts["alias-d1"])
	// max across aliases, never the sum
	assert.Equal(t, 2, counts.For([]string{"d1", "alias-d1"}))
}

func TestRideStart_Fallbacks(t *testing.T) {
	r := model.Ride{Times: model.RideTimes{Date: "2024-06-03", PickupTime: "08:15"}}
	got, ok := RideStart(r, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 3, 8, 15, 0, 0, time.UTC), got)

	r = model.Ride{Times: model.RideTimes{Date: "2024-06-03"}}
	got, ok = RideStart(r, time.UTC)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), got)

	_, ok = RideStart(model.Ride{}, time.UTC)
	assert.False(t, ok)
}
