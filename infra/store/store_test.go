package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridematch/core/factory"
	"github.com/kilianp07/ridematch/core/matching"
	"github.com/kilianp07/ridematch/core/repository"
	"github.com/kilianp07/ridematch/infra/store"
	"github.com/kilianp07/ridematch/infra/store/storetest"
)

func TestMemory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) repository.Store {
		return store.NewMemory(time.UTC)
	})
}

const fixtureYAML = `
destinations:
  - _id: d1
    name: Clinic
    town: Shelbyville
clients:
  - clientId: c1
    firstName: Homer
    lastName: Simpson
volunteers:
  - id: v1
    firstName: Ned
    role: Driver
    unavailableTimes:
      - range: "10,6,2024,09:00;10,6,2024,11:00"
rides:
  - id: r1
    date: 2024-06-10
    pickupTime: "09:00"
    appointmentTime: "09:30"
    tripType: Round Trip
    estimatedDuration: 45
`

func writeFixture(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFixtureAndSeed(t *testing.T) {
	fx, err := store.LoadFixture(writeFixture(t, fixtureYAML))
	require.NoError(t, err)
	m := store.NewMemory(time.UTC)
	n, err := fx.Seed(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	r, err := m.GetRideByID(context.Background(), "r1")
	require.NoError(t, err)
	require.NotNil(t, r.Times.DurationMinutes)
	assert.Equal(t, 45, *r.Times.DurationMinutes)
	assert.Equal(t, "2024-06-10", r.Times.Date)

	vs, err := m.GetAllVolunteers(context.Background())
	require.NoError(t, err)
	require.Len(t, vs, 1)
	require.Len(t, vs[0].Unavailability, 1)
	assert.Equal(t, "10,6,2024,09:00;10,6,2024,11:00", vs[0].Unavailability[0].Range)
}

func TestLoadFixture_UnknownCollection(t *testing.T) {
	_, err := store.LoadFixture(writeFixture(t, "drivers:\n  - id: v1\n"))
	assert.Error(t, err)
}

func TestMemoryFactory(t *testing.T) {
	s, err := repository.NewStore(factory.ModuleConfig{
		Type: "memory",
		Conf: map[string]any{"fixture": writeFixture(t, fixtureYAML), "timezone": "UTC"},
	})
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	d, err := s.GetDestinationByID(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "Shelbyville", d.Town)

	_, err = repository.NewStore(factory.ModuleConfig{Type: "memory", Conf: map[string]any{"timezone": "Nowhere/Land"}})
	assert.Error(t, err)
}

func TestMatch_CountsUndecodableUnavailability(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemory(time.UTC)
	require.NoError(t, m.Put(ctx, repository.KindVolunteer, map[string]any{
		"id":   "d1",
		"role": "Driver",
		"unavailability": []any{
			map[string]any{"start": "garbage", "end": "also garbage"},
			"not-a-map",
			map[string]any{"slots": "Q1:00;Z2:00", "repeated": true},
		},
	}))
	require.NoError(t, m.Put(ctx, repository.KindRide, map[string]any{
		"id":                "r1",
		"date":              "2024-06-10",
		"pickupTime":        "09:00",
		"appointmentTime":   "09:30",
		"tripType":          "Round Trip",
		"estimatedDuration": 45,
	}))

	e, err := matching.NewEngine(m, matching.Config{Workers: 1, Timezone: "UTC"})
	require.NoError(t, err)
	rep, err := e.Match(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, rep.Available, 1)
	assert.Equal(t, 4, rep.SkippedEntries)
}
