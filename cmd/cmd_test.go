package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridematch/core/matching"
	"github.com/kilianp07/ridematch/core/model"
)

const cmdFixture = `
volunteers:
  - id: v1
    firstName: Ned
    role: Driver
    weeklyAvailability: "M09:00;M17:00"
rides:
  - id: r1
    date: "2024-06-10"
    pickupTime: "09:00"
    appointmentTime: "09:30"
    tripType: One Way To
    estimatedDuration: 30
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestSeedDriversMatch(t *testing.T) {
	dir := t.TempDir()
	fx := filepath.Join(dir, "fixture.yaml")
	require.NoError(t, os.WriteFile(fx, []byte(cmdFixture), 0o644))
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte(`store:
  type: sqlite
  conf:
    path: "`+filepath.Join(dir, "rides.db")+`"
    timezone: UTC
matching:
  timezone: UTC
match_log:
  backend: jsonl
  path: "`+filepath.Join(dir, "matches.log")+`"
`), 0o644))

	out, err := execute(t, "seed", "-c", cfg, "-f", fx)
	require.NoError(t, err)
	assert.Contains(t, out, "seeded 2 documents into sqlite store")

	out, err = execute(t, "drivers", "-c", cfg, "--json")
	require.NoError(t, err)
	var rows []driverRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "v1", rows[0].ID)
	require.Len(t, rows[0].Slots, 1)
	assert.Equal(t, 9*60, rows[0].Slots[0].StartMinutes)

	out, err = execute(t, "match", "-c", cfg, "r1")
	require.NoError(t, err)
	var rep matching.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.NotEmpty(t, rep.MatchID)
	require.Len(t, rep.Available, 1)
	assert.Equal(t, "v1", rep.Available[0].DriverID)

	out, err = execute(t, "match", "-c", cfg, "missing")
	require.Error(t, err)
	assert.Contains(t, out, "Ride not found")

	out, err = execute(t, "logs", "-c", cfg, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "timestamp,match_id,ride_id,driver_id,available,reason_code")
	assert.Contains(t, out, rep.MatchID+",r1,v1,true,")
}

func TestFormatSlots(t *testing.T) {
	assert.Equal(t, "-", formatSlots(nil))
	assert.Equal(t, "Mon 09:00-17:30 Fri 08:15-09:00", formatSlots([]model.AvailabilitySlot{
		{Weekday: time.Monday, StartMinutes: 540, EndMinutes: 1050},
		{Weekday: time.Friday, StartMinutes: 495, EndMinutes: 540},
	}))
}
