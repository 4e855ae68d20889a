// Package eligibility holds the hard compatibility rules between a client and
// a volunteer driver, and the informational preference matcher.
package eligibility

import (
	"strings"

	"github.com/kilianp07/ridematch/core/model"
)

// Reason codes are machine stable identifiers of a failed rule.
const (
	CodeCarHeight          = "car_height"
	CodeOxygen             = "oxygen"
	CodeServiceAnimal      = "service_animal"
	CodeAllergies          = "allergies"
	CodeMobility           = "mobility"
	CodeDestinationLimited = "destination_limited"
	CodeClientTownLimited  = "client_town_limited"
)

// Verdict is the outcome of a rule chain. Reason and Code are empty on a match.
type Verdict struct {
	Match  bool
	Reason string
	Code   string
}

var pass = Verdict{Match: true}

func fail(code, reason string) Verdict {
	return Verdict{Code: code, Reason: reason}
}

type rule func(v model.Volunteer, c model.Client) Verdict

// rules run in order; the first failure wins.
var rules = []rule{
	carHeight,
	oxygen,
	serviceAnimal,
	allergies,
	mobility,
}

// Check evaluates the client requirements against the volunteer.
func Check(v model.Volunteer, c model.Client) Verdict {
	for _, r := range rules {
		if res := r(v, c); !res.Match {
			return res
		}
	}
	return pass
}

func carHeight(v model.Volunteer, c model.Client) Verdict {
	required := SplitList(c.CarHeight, ",;")
	if len(required) == 0 {
		return pass
	}
	have := normalize(v.CarHeight)
	for _, h := range required {
		if normalize(h) == have && have != "" {
			return pass
		}
	}
	return fail(CodeCarHeight, "car height not compatible")
}

func oxygen(v model.Volunteer, c model.Client) Verdict {
	if c.Oxygen && !v.Oxygen {
		return fail(CodeOxygen, "oxygen not supported")
	}
	return pass
}

func serviceAnimal(v model.Volunteer, c model.Client) Verdict {
	if c.ServiceAnimal && !v.ServiceAnimal {
		return fail(CodeServiceAnimal, "service animal not accepted")
	}
	return pass
}

func allergies(v model.Volunteer, c model.Client) Verdict {
	if len(nonEmpty(c.Allergies)) == 0 || len(nonEmpty(v.AllowedAllergens)) == 0 {
		return pass
	}
	if !containsAll(v.AllowedAllergens, c.Allergies) {
		return fail(CodeAllergies, "allergies not compatible")
	}
	return pass
}

func mobility(v model.Volunteer, c model.Client) Verdict {
	if len(nonEmpty(c.MobilityNeeds)) == 0 {
		return pass
	}
	if !containsAll(v.MobilityAccommodations, c.MobilityNeeds) {
		return fail(CodeMobility, "mobility needs not accommodated")
	}
	return pass
}

// CheckLimitations rejects the volunteer when the destination town, then the
// client city, is in the volunteer's limited towns.
func CheckLimitations(v model.Volunteer, destinationTown, clientCity string) Verdict {
	limited := SplitList(v.DestinationLimitations, ",")
	if len(limited) == 0 {
		return pass
	}
	if t := strings.TrimSpace(destinationTown); t != "" && containsFold(limited, t) {
		return fail(CodeDestinationLimited, "destination town limited: "+t)
	}
	if t := strings.TrimSpace(clientCity); t != "" && containsFold(limited, t) {
		return fail(CodeClientTownLimited, "client town limited: "+t)
	}
	return pass
}

// SplitList splits s on any of seps, trimming and dropping empty items.
func SplitList(s string, seps string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(seps, r) })
	out := fields[:0]
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func nonEmpty(items []string) []string {
	var out []string
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsFold(items []string, want string) bool {
	w := normalize(want)
	for _, it := range items {
		if normalize(it) == w {
			return true
		}
	}
	return false
}

func containsAll(have, want []string) bool {
	for _, w := range nonEmpty(want) {
		if !containsFold(have, w) {
			return false
		}
	}
	return true
}
