// Package storetest holds the behavior every repository.Store backend must
// share. Backend tests call Run with a constructor for a fresh, empty store
// whose ride dates resolve in UTC.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridematch/core/repository"
)

// Fixture returns the documents loaded by Run, keyed by collection.
func Fixture() map[repository.Kind][]map[string]any {
	return map[repository.Kind][]map[string]any{
		repository.KindDestination: {
			{"_id": "d1", "name": "General Hospital", "city": "Capital City"},
		},
		repository.KindClient: {
			{"clientId": "c1", "uid": "c1-uid", "firstName": "Homer", "lastName": "Simpson", "city": "Springfield"},
		},
		repository.KindVolunteer: {
			{"id": "v2", "firstName": "Maude", "role": "Driver", "status": "Active"},
			{
				"id": "v1", "firstName": "Ned", "role": "Driver", "status": "Active",
				"unavailability": []any{map[string]any{"slots": "M09:00;M10:30", "repeated": true}},
			},
		},
		repository.KindRide: {
			{"id": "r2", "date": "2024-06-12", "pickupTime": "08:00", "appointmentTime": "08:30", "tripType": "RoundTrip", "driverId": "v1"},
			{"id": "r1", "uid": "r1-uid", "date": "2024-06-10", "pickupTime": "09:00", "appointmentTime": "09:30", "tripType": "OneWayTo", "clientId": "c1", "destination": "d1"},
			{"id": "r3", "date": "2024-06-20", "appointmentTime": "10:00", "tripType": "OneWayFrom"},
		},
	}
}

func seed(t *testing.T, s repository.Store) {
	t.Helper()
	fx := Fixture()
	for _, kind := range repository.Kinds {
		for _, doc := range fx[kind] {
			require.NoError(t, s.Put(context.Background(), kind, doc), "put %s", kind)
		}
	}
}

// Run exercises a store created by newStore.
func Run(t *testing.T, newStore func(t *testing.T) repository.Store) {
	ctx := context.Background()

	t.Run("rides by id and uid", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)
		r, err := s.GetRideByID(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "r1-uid", r.UID)
		assert.Equal(t, "c1", r.ClientRef)

		r, err = s.GetRideByUID(ctx, "r1-uid")
		require.NoError(t, err)
		assert.Equal(t, "r1", r.ID)

		_, err = s.GetRideByID(ctx, "r1-uid")
		assert.True(t, errors.Is(err, repository.ErrNotFound), "uid must not resolve by id: %v", err)
		_, err = s.GetRideByUID(ctx, "missing")
		assert.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("parties", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)
		c, err := s.GetClientByReference(ctx, "c1-uid")
		require.NoError(t, err)
		assert.Equal(t, "Homer Simpson", c.FullName())

		d, err := s.GetDestinationByID(ctx, "d1")
		require.NoError(t, err)
		assert.Equal(t, "Capital City", d.Town)

		_, err = s.GetClientByReference(ctx, "c9")
		assert.True(t, errors.Is(err, repository.ErrNotFound))
		_, err = s.GetDestinationByID(ctx, "d9")
		assert.True(t, errors.Is(err, repository.ErrNotFound))
	})

	t.Run("volunteers", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)
		vs, err := s.GetAllVolunteers(ctx)
		require.NoError(t, err)
		require.Len(t, vs, 2)
		ids := []string{vs[0].PrimaryID(), vs[1].PrimaryID()}
		assert.ElementsMatch(t, []string{"v1", "v2"}, ids)
		for _, v := range vs {
			if v.PrimaryID() == "v1" {
				require.Len(t, v.Unavailability, 1)
				assert.True(t, v.Unavailability[0].Repeated)
			}
		}
	})

	t.Run("rides in range", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)
		start := time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC)
		rides, err := s.FetchRidesInRange(ctx, start, end)
		require.NoError(t, err)
		require.Len(t, rides, 2)
		assert.Equal(t, "r1", rides[0].ID)
		assert.Equal(t, "r2", rides[1].ID)
		assert.Equal(t, []string{"v1"}, rides[1].AssignedDriverIDs)
	})

	t.Run("upsert", func(t *testing.T) {
		s := newStore(t)
		seed(t, s)
		require.NoError(t, s.Put(ctx, repository.KindRide, map[string]any{
			"id": "r2", "date": "2024-06-13", "pickupTime": "08:00", "appointmentTime": "08:30",
			"tripType": "RoundTrip", "status": "Cancelled",
		}))
		r, err := s.GetRideByID(ctx, "r2")
		require.NoError(t, err)
		assert.Equal(t, "Cancelled", r.Status)
		assert.Equal(t, "2024-06-13", r.Times.Date)

		rides, err := s.FetchRidesInRange(ctx,
			time.Date(2024, 6, 9, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC))
		require.NoError(t, err)
		assert.Len(t, rides, 2)
	})

	t.Run("rejects documents without id", func(t *testing.T) {
		s := newStore(t)
		err := s.Put(ctx, repository.KindVolunteer, map[string]any{"firstName": "Nobody"})
		assert.Error(t, err)
	})
}
