package timeframe

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridematch/core/model"
)

func intPtr(v int) *int { return &v }

func TestCompute_RoundTrip(t *testing.T) {
	rt := model.RideTimes{
		Date:            "2024-06-03",
		PickupTime:      "09:00",
		AppointmentTime: "09:30",
		DurationMinutes: intPtr(60),
		TripType:        model.TripRoundTrip,
	}
	tf, err := Compute(rt, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 90, tf.TotalDurationMinutes)
	assert.Equal(t, time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), tf.Start)
	assert.Equal(t, time.Date(2024, 6, 3, 10, 30, 0, 0, time.UTC), tf.End)
}

func TestCompute_TripTypes(t *testing.T) {
	cases := []struct {
		name  string
		trip  model.TripType
		total int
		end   time.Time
	}{
		{"one way to", model.TripOneWayTo, 90, time.Date(2024, 6, 3, 10, 30, 0, 0, time.UTC)},
		{"one way from", model.TripOneWayFrom, 60, time.Date(2024, 6, 3, 10, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rt := model.RideTimes{
				Date:            "06/03/2024",
				PickupTime:      "9:00 AM",
				AppointmentTime: "9:30 AM",
				DurationMinutes: intPtr(60),
				TripType:        tc.trip,
			}
			tf, err := Compute(rt, time.UTC)
			require.NoError(t, err)
			assert.Equal(t, tc.total, tf.TotalDurationMinutes)
			assert.Equal(t, tc.end, tf.End)
			assert.True(t, tf.Start.Before(tf.End))
		})
	}
}

func TestCompute_DefaultPickup(t *testing.T) {
	appt := time.Date(2024, 6, 3, 14, 0, 0, 0, time.UTC)
	rt := model.RideTimes{AppointmentAt: &appt, DurationMinutes: intPtr(30), TripType: model.TripOneWayTo}
	tf, err := Compute(rt, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, appt.Add(-25*time.Minute), tf.Start)
	assert.Equal(t, 55, tf.TotalDurationMinutes)
}

func TestCompute_InvalidPickupFallsBack(t *testing.T) {
	rt := model.RideTimes{
		Date:            "2024-06-03",
		PickupTime:      "not a time",
		AppointmentTime: "10:00",
		TripType:        model.TripRoundTrip,
		DurationMinutes: intPtr(15),
	}
	tf, err := Compute(rt, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 9, 35, 0, 0, time.UTC), tf.Start)
}

func TestCompute_Errors(t *testing.T) {
	cases := []struct {
		name string
		rt   model.RideTimes
		want error
	}{
		{"unknown trip", model.RideTimes{Date: "2024-06-03", AppointmentTime: "10:00", RawTripType: "hover"}, ErrUnknownTripType},
		{"missing date", model.RideTimes{AppointmentTime: "10:00", TripType: model.TripRoundTrip}, ErrMissingField},
		{"missing appointment", model.RideTimes{Date: "2024-06-03", TripType: model.TripRoundTrip}, ErrMissingField},
		{"bad date", model.RideTimes{Date: "June third", AppointmentTime: "10:00", TripType: model.TripRoundTrip}, ErrMissingField},
		{"negative duration", model.RideTimes{Date: "2024-06-03", AppointmentTime: "10:00", TripType: model.TripRoundTrip, DurationMinutes: intPtr(-5)}, ErrInvalidWindow},
		{"pickup after end", model.RideTimes{Date: "2024-06-03", PickupTime: "12:00", AppointmentTime: "10:00", TripType: model.TripOneWayFrom}, ErrInvalidWindow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compute(tc.rt, time.UTC)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.True(t, errors.Is(err, ErrTimeframe))
		})
	}
}

func TestCompute_StartBeforeEnd(t *testing.T) {
	for _, trip := range []model.TripType{model.TripRoundTrip, model.TripOneWayTo, model.TripOneWayFrom} {
		for _, dur := range []int{1, 30, 240} {
			for _, pickup := range []string{"07:00", "08:59", ""} {
				rt := model.RideTimes{Date: "2024-01-15", PickupTime: pickup, AppointmentTime: "09:00", DurationMinutes: intPtr(dur), TripType: trip}
				tf, err := Compute(rt, time.UTC)
				require.NoError(t, err)
				if !tf.Start.Before(tf.End) {
					t.Fatalf("%s dur=%d pickup=%q: start %v not before end %v", trip, dur, pickup, tf.Start, tf.End)
				}
			}
		}
	}
}

func TestParseDate_Layouts(t *testing.T) {
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-03-09", "03/09/2024", "3/9/2024", "2024-03-09T15:00:00Z"} {
		got, err := ParseDate(s, time.UTC)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}
}

func TestParseClock(t *testing.T) {
	cases := map[string]int{"09:30": 570, "9:30": 570, "14:05:59": 845, "2:05 PM": 845, "12:00AM": 0, "11:15 pm": 1395}
	for in, want := range cases {
		got, err := ParseClock(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseClock("25:00")
	assert.Error(t, err)
}
