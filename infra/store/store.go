// Package store holds the document plumbing shared by the repository
// backends and the in-memory backend used for fixtures and tests.
package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kilianp07/ridematch/core/capacity"
	"github.com/kilianp07/ridematch/core/model"
	"github.com/kilianp07/ridematch/core/normalize"
	"github.com/kilianp07/ridematch/core/repository"
	"github.com/kilianp07/ridematch/infra/logger"
)

// Config holds the settings every backend accepts.
type Config struct {
	// Timezone resolves ride dates when indexing ride start times. Empty
	// means the server local zone.
	Timezone string `json:"timezone"`
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("store: timezone: %w", err)
	}
	return loc, nil
}

// Entry is a document prepared for storage.
type Entry struct {
	Kind repository.Kind
	ID   string
	// UID is a secondary identifier; empty when the document has one id.
	UID string
	// Start is the resolved ride start; nil for other kinds or unplaceable rides.
	Start *time.Time
	Body  []byte
}

// Prepare validates doc and extracts its identifiers.
func Prepare(kind repository.Kind, doc map[string]any, loc *time.Location) (Entry, error) {
	e := Entry{Kind: kind}
	var ids []string
	switch kind {
	case repository.KindRide:
		r, err := normalize.Ride(doc)
		if err != nil {
			return e, err
		}
		ids = []string{r.ID, r.UID}
		if start, ok := capacity.RideStart(r, loc); ok {
			e.Start = &start
		}
	case repository.KindVolunteer:
		v, _, err := normalize.Volunteer(doc)
		if err != nil {
			return e, err
		}
		ids = v.IDs
	case repository.KindClient:
		c, err := normalize.Client(doc)
		if err != nil {
			return e, err
		}
		ids = c.IDs
	case repository.KindDestination:
		d, err := normalize.Destination(doc)
		if err != nil {
			return e, err
		}
		ids = []string{d.ID}
	default:
		return e, fmt.Errorf("unknown collection %q", kind)
	}
	for _, id := range ids {
		switch {
		case id == "":
		case e.ID == "":
			e.ID = id
		case e.UID == "" && id != e.ID:
			e.UID = id
		}
	}
	if e.ID == "" {
		return e, fmt.Errorf("%s document: %w: no identifier", kind, normalize.ErrDocument)
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return e, fmt.Errorf("%s %s: encode: %w", kind, e.ID, err)
	}
	e.Body = body
	return e, nil
}

func unmarshal(body []byte) (normalize.Document, error) {
	var doc normalize.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", normalize.ErrDocument, err)
	}
	return doc, nil
}

// DecodeRide turns a stored body into a ride.
func DecodeRide(body []byte) (model.Ride, error) {
	doc, err := unmarshal(body)
	if err != nil {
		return model.Ride{}, err
	}
	return normalize.Ride(doc)
}

// DecodeClient turns a stored body into a client.
func DecodeClient(body []byte) (model.Client, error) {
	doc, err := unmarshal(body)
	if err != nil {
		return model.Client{}, err
	}
	return normalize.Client(doc)
}

// DecodeDestination turns a stored body into a destination.
func DecodeDestination(body []byte) (model.Destination, error) {
	doc, err := unmarshal(body)
	if err != nil {
		return model.Destination{}, err
	}
	return normalize.Destination(doc)
}

// DecodeVolunteers decodes every body, skipping and logging malformed
// documents so one bad profile never blocks a match.
func DecodeVolunteers(bodies [][]byte, log logger.Logger) []model.Volunteer {
	out := make([]model.Volunteer, 0, len(bodies))
	for _, b := range bodies {
		doc, err := unmarshal(b)
		if err != nil {
			log.Warnf("skipping volunteer: %v", err)
			continue
		}
		v, skipped, err := normalize.Volunteer(doc)
		if err != nil {
			log.Warnf("skipping volunteer: %v", err)
			continue
		}
		if skipped > 0 {
			log.Debugf("volunteer %s: %d malformed unavailability entries", v.PrimaryID(), skipped)
		}
		out = append(out, v)
	}
	return out
}

// DecodeRides decodes ride bodies, skipping malformed documents.
func DecodeRides(bodies [][]byte, log logger.Logger) []model.Ride {
	out := make([]model.Ride, 0, len(bodies))
	for _, b := range bodies {
		r, err := DecodeRide(b)
		if err != nil {
			log.Warnf("skipping ride: %v", err)
			continue
		}
		out = append(out, r)
	}
	return out
}

// NotFound formats a wrapped repository.ErrNotFound.
func NotFound(kind repository.Kind, ref string) error {
	return fmt.Errorf("%s %s: %w", kind, ref, repository.ErrNotFound)
}
