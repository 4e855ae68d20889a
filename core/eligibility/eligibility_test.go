package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/ridematch/core/model"
)

func TestCheck_Allergies(t *testing.T) {
	client := model.Client{Allergies: []string{"peanut"}}
	cases := []struct {
		name    string
		allowed []string
		match   bool
	}{
		{"empty allowed list means no restriction", nil, true},
		{"all allergies allowed", []string{"Peanut", "dairy"}, true},
		{"missing allergy", []string{"dairy"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := model.Volunteer{AllowedAllergens: tc.allowed}
			got := Check(v, client)
			assert.Equal(t, tc.match, got.Match)
			if !tc.match {
				assert.Equal(t, "allergies not compatible", got.Reason)
				assert.Equal(t, CodeAllergies, got.Code)
			}
		})
	}
}

func TestCheck_Order(t *testing.T) {
	client := model.Client{
		CarHeight:     "Low; Medium",
		Oxygen:        true,
		ServiceAnimal: true,
		Allergies:     []string{"cats"},
		MobilityNeeds: []string{"walker"},
	}
	v := model.Volunteer{}
	assert.Equal(t, "car height not compatible", Check(v, client).Reason)

	v.CarHeight = "medium"
	assert.Equal(t, "oxygen not supported", Check(v, client).Reason)

	v.Oxygen = true
	assert.Equal(t, "service animal not accepted", Check(v, client).Reason)

	v.ServiceAnimal = true
	v.AllowedAllergens = []string{"dogs"}
	assert.Equal(t, "allergies not compatible", Check(v, client).Reason)

	v.AllowedAllergens = []string{"CATS"}
	got := Check(v, client)
	assert.Equal(t, "mobility needs not accommodated", got.Reason)
	assert.Equal(t, CodeMobility, got.Code)

	v.MobilityAccommodations = []string{"Walker", "wheelchair"}
	got = Check(v, client)
	assert.True(t, got.Match)
	assert.Empty(t, got.Reason)
}

func TestCheck_EmptyRequirementsPass(t *testing.T) {
	assert.True(t, Check(model.Volunteer{}, model.Client{}).Match)
	assert.True(t, Check(model.Volunteer{CarHeight: "high"}, model.Client{CarHeight: " ; "}).Match)
}

func TestCheckLimitations(t *testing.T) {
	v := model.Volunteer{DestinationLimitations: "Springfield, Shelbyville"}

	got := CheckLimitations(v, "springfield", "Shelbyville")
	assert.False(t, got.Match)
	assert.Equal(t, "destination town limited: springfield", got.Reason)
	assert.Equal(t, CodeDestinationLimited, got.Code)

	got = CheckLimitations(v, "Capital City", "SHELBYVILLE")
	assert.Equal(t, "client town limited: SHELBYVILLE", got.Reason)
	assert.Equal(t, CodeClientTownLimited, got.Code)

	assert.True(t, CheckLimitations(v, "Capital City", "").Match)
	assert.True(t, CheckLimitations(model.Volunteer{}, "Springfield", "Springfield").Match)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitList(" a ;b|, c,,", ",;|"))
	assert.Empty(t, SplitList("", ","))
}
