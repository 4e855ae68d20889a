package model

// MatchResult is the per-driver outcome of a match request.
type MatchResult struct {
	DriverID           string   `json:"driver_id"`
	Name               string   `json:"name,omitempty"`
	Available          bool     `json:"available"`
	Reason             string   `json:"reason,omitempty"`
	ReasonCode         string   `json:"reason_code,omitempty"`
	PreferenceMessages []string `json:"preference_messages"`
	WeeklyRides        int      `json:"weekly_rides"`
}
