// Package export writes match log records for spreadsheets and scripts.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"time"

	"github.com/kilianp07/ridematch/core/matchlog"
)

// WriteJSON writes the records to w as a JSON array.
func WriteJSON(w io.Writer, recs []matchlog.Record) error {
	if recs == nil {
		recs = []matchlog.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(recs)
}

// WriteCSV writes one row per evaluated driver. Available drivers come first
// in report order, unavailable ones follow sorted by driver id.
func WriteCSV(w io.Writer, recs []matchlog.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "match_id", "ride_id", "driver_id", "available", "reason_code"}); err != nil {
		return err
	}
	for _, r := range recs {
		ts := r.Timestamp.Format(time.RFC3339)
		for _, id := range r.Available {
			if err := cw.Write([]string{ts, r.MatchID, r.RideID, id, "true", ""}); err != nil {
				return err
			}
		}
		ids := make([]string, 0, len(r.Unavailable))
		for id := range r.Unavailable {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			if err := cw.Write([]string{ts, r.MatchID, r.RideID, id, "false", r.Unavailable[id]}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
