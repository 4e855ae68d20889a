package matching

import (
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/ridematch/core/capacity"
	"github.com/kilianp07/ridematch/core/eligibility"
	"github.com/kilianp07/ridematch/core/model"
	"github.com/kilianp07/ridematch/core/schedule"
	"github.com/kilianp07/ridematch/core/timeframe"
)

// rideContext is the read-only state shared by every driver evaluation.
type rideContext struct {
	ride            model.Ride
	tf              model.RideTimeframe
	client          *model.Client
	dest            *model.Destination
	destinationTown string
	counts          capacity.Counts
	loc             *time.Location
	zone            *time.Location
	enforceSlots    bool
}

// evaluation is the outcome for one driver.
type evaluation struct {
	result   model.MatchResult
	skipped  int
	isDriver bool
}

// check returns a reason code and message when the driver fails.
type check func(rc *rideContext, v model.Volunteer, ev *evaluation) (code, reason string)

// checks run in order; the first failure classifies the driver.
var checks = []check{
	checkRole,
	checkStatus,
	checkWeeklyLimit,
	checkLimitations,
	checkEligibility,
	checkUnavailability,
	checkWeeklyAvailability,
}

func evaluate(rc *rideContext, v model.Volunteer) evaluation {
	ev := evaluation{result: model.MatchResult{
		DriverID:    v.PrimaryID(),
		Name:        v.Name(),
		WeeklyRides: rc.counts.For(v.IDs),
	}}
	ev.result.Available = true
	for _, c := range checks {
		if code, reason := c(rc, v, &ev); code != "" {
			ev.result.Available = false
			ev.result.ReasonCode = code
			ev.result.Reason = reason
			break
		}
	}
	ev.result.PreferenceMessages = eligibility.Preferences(v, rc.ride, rc.client, rc.dest)
	return ev
}

func checkRole(_ *rideContext, v model.Volunteer, ev *evaluation) (string, string) {
	for _, r := range v.Roles {
		if strings.Contains(strings.ToLower(r), "driver") {
			ev.isDriver = true
			return "", ""
		}
	}
	return CodeNotDriver, "not a driver"
}

const leavePrefix = "on leave"

func checkStatus(rc *rideContext, v model.Volunteer, _ *evaluation) (string, string) {
	status := strings.ToLower(strings.TrimSpace(v.Status))
	switch {
	case status == "" || strings.HasPrefix(status, "active"):
		return "", ""
	case strings.HasPrefix(status, leavePrefix):
		_, rest, found := strings.Cut(status, "until")
		if !found {
			return CodeOnLeave, "on leave"
		}
		until, err := timeframe.ParseDate(strings.TrimSpace(rest), rc.loc)
		if err != nil {
			return CodeOnLeave, "on leave"
		}
		y, m, d := rc.tf.Start.In(rc.loc).Date()
		rideDay := time.Date(y, m, d, 0, 0, 0, 0, rc.loc)
		if rideDay.After(until) {
			return "", ""
		}
		return CodeOnLeave, "on leave until " + until.Format("2006-01-02")
	default:
		return CodeInactive, "status: " + strings.TrimSpace(v.Status)
	}
}

func checkWeeklyLimit(_ *rideContext, v model.Volunteer, ev *evaluation) (string, string) {
	if capacity.Exceeded(v.MaxRidesPerWeek, ev.result.WeeklyRides) {
		return CodeWeeklyLimit, fmt.Sprintf("weekly ride limit reached (%d/%d)", ev.result.WeeklyRides, v.MaxRidesPerWeek)
	}
	return "", ""
}

func checkLimitations(rc *rideContext, v model.Volunteer, _ *evaluation) (string, string) {
	city := ""
	if rc.client != nil {
		city = rc.client.City
	}
	res := eligibility.CheckLimitations(v, rc.destinationTown, city)
	return res.Code, res.Reason
}

func checkEligibility(rc *rideContext, v model.Volunteer, _ *evaluation) (string, string) {
	if rc.client == nil {
		return "", ""
	}
	res := eligibility.Check(v, *rc.client)
	return res.Code, res.Reason
}

func checkUnavailability(rc *rideContext, v model.Volunteer, ev *evaluation) (string, string) {
	ix, stats := schedule.BuildIndex(v.Unavailability, rc.zone)
	ev.skipped += v.SkippedUnavailability + stats.Skipped
	if c := ix.Conflict(rc.tf.Start, rc.tf.End); c.Found() {
		return CodeUnavailable, c.Describe()
	}
	return "", ""
}

func checkWeeklyAvailability(rc *rideContext, v model.Volunteer, ev *evaluation) (string, string) {
	if !rc.enforceSlots || strings.TrimSpace(v.Availability) == "" {
		return "", ""
	}
	slots, stats := schedule.ParseAvailability(v.Availability)
	ev.skipped += stats.Skipped
	if len(slots) == 0 {
		return "", ""
	}
	if !schedule.WithinSlots(slots, rc.tf.Start, rc.tf.End, rc.zone) {
		return CodeOutsideAvailability, "outside weekly availability"
	}
	return "", ""
}
