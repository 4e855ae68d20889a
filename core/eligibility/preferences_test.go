package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/ridematch/core/model"
)

func TestPreferences_Towns(t *testing.T) {
	v := model.Volunteer{TownPreferences: "springfield|Ogdenville; North Haverbrook"}
	ride := model.Ride{DestinationTown: "Springfield", PickupTown: "Ogdenville"}
	client := &model.Client{City: "springfield", HomeTown: "Shelbyville"}

	got := Preferences(v, ride, client, nil)
	assert.Equal(t, []string{"prefers town: Springfield", "prefers town: Ogdenville"}, got)
}

func TestPreferences_DestinationRecordFirst(t *testing.T) {
	v := model.Volunteer{TownPreferences: "Capital City"}
	got := Preferences(v, model.Ride{}, nil, &model.Destination{Town: "Capital City"})
	assert.Equal(t, []string{"prefers town: Capital City"}, got)
}

func TestPreferences_ClientNames(t *testing.T) {
	client := &model.Client{FirstName: "Margaret", LastName: "Simpson", PreferredName: "Maggie"}
	cases := []struct {
		prefs string
		want  []string
	}{
		{"Margaret Simpson", []string{"prefers client: Margaret Simpson"}},
		{"Simpson, Margaret; Bart", []string{"prefers client: Simpson, Margaret"}},
		{"maggie simpson|Lisa", []string{"prefers client: Maggie Simpson"}},
		{"Simpson, Maggie", []string{"prefers client: Simpson, Maggie"}},
		{"Maggie", []string{"prefers client: Maggie"}},
		{"Lisa, Bart", []string{}},
	}
	for _, tc := range cases {
		got := Preferences(model.Volunteer{ClientPreferences: tc.prefs}, model.Ride{}, client, nil)
		if len(tc.want) == 0 {
			assert.Empty(t, got, tc.prefs)
			continue
		}
		assert.Equal(t, tc.want, got, tc.prefs)
	}
}

func TestPreferences_NoneIsEmptySlice(t *testing.T) {
	got := Preferences(model.Volunteer{}, model.Ride{}, nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestNameVariants(t *testing.T) {
	got := NameVariants(model.Client{FirstName: "Ned", LastName: "Flanders", PreferredName: "Neddy"})
	assert.Equal(t, []string{"Ned Flanders", "Flanders Ned", "Flanders, Ned", "Neddy Flanders", "Flanders, Neddy", "Neddy"}, got)
}
