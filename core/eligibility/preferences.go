package eligibility

import (
	"strings"

	"github.com/kilianp07/ridematch/core/model"
)

const prefSeparators = ",;|"

// Preferences returns informational messages for every distinct town or client
// name the volunteer listed as a preference. It never excludes a driver.
// client and dest may be nil.
func Preferences(v model.Volunteer, ride model.Ride, client *model.Client, dest *model.Destination) []string {
	msgs := []string{}

	towns := SplitList(v.TownPreferences, prefSeparators)
	if len(towns) > 0 {
		var candidates []string
		if dest != nil {
			candidates = append(candidates, dest.Town)
		}
		candidates = append(candidates, ride.DestinationTown)
		if client != nil {
			candidates = append(candidates, client.City, client.HomeTown)
		}
		candidates = append(candidates, ride.PickupTown)
		msgs = append(msgs, matchDistinct(towns, candidates, "prefers town: ")...)
	}

	names := splitClientPrefs(v.ClientPreferences)
	if len(names) > 0 && client != nil {
		msgs = append(msgs, matchDistinct(names, NameVariants(*client), "prefers client: ")...)
	}
	return msgs
}

// splitClientPrefs keeps "Last, First" entries intact when the list uses
// semicolons or pipes.
func splitClientPrefs(s string) []string {
	if strings.ContainsAny(s, ";|") {
		return SplitList(s, ";|")
	}
	return SplitList(s, ",")
}

func matchDistinct(prefs, candidates []string, prefix string) []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range candidates {
		key := normalize(c)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		if containsFold(prefs, c) {
			out = append(out, prefix+strings.TrimSpace(c))
		}
	}
	return out
}

// NameVariants lists the ways a client name may be written in a preference list.
func NameVariants(c model.Client) []string {
	first := strings.TrimSpace(c.FirstName)
	last := strings.TrimSpace(c.LastName)
	pref := strings.TrimSpace(c.PreferredName)
	var out []string
	add := func(parts ...string) {
		for _, p := range parts {
			if p == "" {
				return
			}
		}
		out = append(out, strings.Join(parts, " "))
	}
	add(first, last)
	add(last, first)
	if first != "" && last != "" {
		out = append(out, last+", "+first)
	}
	if pref != "" {
		add(pref, last)
		if last != "" {
			out = append(out, last+", "+pref)
		}
		out = append(out, pref)
	}
	return out
}
