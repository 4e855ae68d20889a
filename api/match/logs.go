package match

import (
	"net/http"
	"time"

	"github.com/kilianp07/ridematch/core/matchlog"
)

// NewLogHandler returns an HTTP handler exposing the match log via GET /api/v1/matches.
// Requests must include an Authorization header with "Bearer <token>" when token is non-empty.
func NewLogHandler(store matchlog.Store, token string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token != "" {
			auth := r.Header.Get("Authorization")
			if auth != "Bearer "+token {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		q := matchlog.Query{
			RideID:   r.URL.Query().Get("ride_id"),
			DriverID: r.URL.Query().Get("driver_id"),
		}
		if s := r.URL.Query().Get("start"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, "invalid start", http.StatusBadRequest)
				return
			}
			q.Start = t
		}
		if s := r.URL.Query().Get("end"); s != "" {
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				http.Error(w, "invalid end", http.StatusBadRequest)
				return
			}
			q.End = t
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []matchlog.Record{}
		}
		writeJSON(w, http.StatusOK, records)
	})
}
