package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridematch/core/model"
)

func TestParseAvailability_DayCodes(t *testing.T) {
	cases := []struct {
		in   string
		want time.Weekday
	}{
		{"Sun08:00;Sun10:00", time.Sunday},
		{"Su08:00;Su10:00", time.Sunday},
		{"S08:00;S10:00", time.Sunday},
		{"Sat08:00;Sat10:00", time.Saturday},
		{"Sa08:00;Sa10:00", time.Saturday},
		{"M08:00;M10:00", time.Monday},
		{"T08:00;T10:00", time.Tuesday},
		{"W08:00;W10:00", time.Wednesday},
		{"Th08:00;Th10:00", time.Thursday},
		{"F08:00;F10:00", time.Friday},
	}
	for _, tc := range cases {
		slots, stats := ParseAvailability(tc.in)
		require.Len(t, slots, 1, tc.in)
		assert.Equal(t, tc.want, slots[0].Weekday, tc.in)
		assert.Equal(t, 480, slots[0].StartMinutes)
		assert.Equal(t, 600, slots[0].EndMinutes)
		assert.Zero(t, stats.Skipped)
	}
}

func TestParseAvailability_DropsBadPairs(t *testing.T) {
	in := "M09:00;M17:00;T09:00;W10:00;Th25:00;Th26:00;F12:00;F11:00;Sa09:00;Sa09:30;Su10:00"
	slots, stats := ParseAvailability(in)
	require.Len(t, slots, 2)
	assert.Equal(t, model.AvailabilitySlot{Weekday: time.Monday, StartMinutes: 540, EndMinutes: 1020}, slots[0])
	assert.Equal(t, model.AvailabilitySlot{Weekday: time.Saturday, StartMinutes: 540, EndMinutes: 570}, slots[1])
	// mismatched day, invalid hours, inverted pair, trailing token
	assert.Equal(t, 4, stats.Skipped)
	assert.Equal(t, 2, stats.Accepted)
}

func TestParseAvailability_Empty(t *testing.T) {
	slots, stats := ParseAvailability("")
	assert.Empty(t, slots)
	assert.Zero(t, stats.Skipped)
}

func TestParseUnavailabilityRange(t *testing.T) {
	start, end, err := ParseUnavailabilityRange("3,6,2024,09:00;5,6,2024,17:30", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 6, 5, 17, 30, 0, 0, time.UTC), end)

	for _, bad := range []string{
		"",
		"3,6,2024,09:00",
		"3,6,2024,09:00;3,6,2024",
		"3,6,2024,09:00;3,6,2024,08:00",
		"3,6,2024,09:00;3,6,2024,09:00",
		"31,2,2024,09:00;1,3,2024,09:00",
		"3,13,2024,09:00;4,13,2024,09:00",
		"a,6,2024,09:00;4,6,2024,09:00",
		"3,6,2024,09:00;4,6,2024,09:00;5,6,2024,09:00",
	} {
		_, _, err := ParseUnavailabilityRange(bad, time.UTC)
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, ErrMalformed), bad)
	}
}

func TestParseWeekday(t *testing.T) {
	cases := map[string]time.Weekday{
		"Monday": time.Monday, "mon": time.Monday, "M": time.Monday,
		"Th": time.Thursday, "thursday": time.Thursday, "0": time.Sunday, "6": time.Saturday,
	}
	for in, want := range cases {
		got, ok := ParseWeekday(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "7", "Funday", "x"} {
		_, ok := ParseWeekday(bad)
		assert.False(t, ok, bad)
	}
}
