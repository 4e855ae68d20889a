package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kilianp07/ridematch/core/factory"
	"github.com/kilianp07/ridematch/core/model"
	"github.com/kilianp07/ridematch/core/repository"
	"github.com/kilianp07/ridematch/infra/logger"
)

// MemoryConfig configures the in-memory store.
type MemoryConfig struct {
	Config `json:",squash"`
	// Fixture is an optional YAML or JSON file loaded at startup.
	Fixture string `json:"fixture"`
}

// Memory keeps documents in process. It backs fixtures, the CLI and tests.
type Memory struct {
	mu      sync.RWMutex
	loc     *time.Location
	entries map[repository.Kind]map[string]Entry
	order   map[repository.Kind][]string
	log     logger.Logger
}

// NewMemory returns an empty store resolving ride dates in loc.
func NewMemory(loc *time.Location) *Memory {
	if loc == nil {
		loc = time.Local
	}
	return &Memory{
		loc:     loc,
		entries: map[repository.Kind]map[string]Entry{},
		order:   map[repository.Kind][]string{},
		log:     logger.New("memory-store"),
	}
}

// Put upserts a document.
func (m *Memory) Put(_ context.Context, kind repository.Kind, doc map[string]any) error {
	e, err := Prepare(kind, doc, m.loc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries[kind] == nil {
		m.entries[kind] = map[string]Entry{}
	}
	if _, ok := m.entries[kind][e.ID]; !ok {
		m.order[kind] = append(m.order[kind], e.ID)
	}
	m.entries[kind][e.ID] = e
	return nil
}

// lookup finds an entry by id, then by secondary id.
func (m *Memory) lookup(kind repository.Kind, ref string) (Entry, bool) {
	if ref == "" {
		return Entry{}, false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.entries[kind][ref]; ok {
		return e, true
	}
	for _, id := range m.order[kind] {
		if e := m.entries[kind][id]; e.UID == ref {
			return e, true
		}
	}
	return Entry{}, false
}

func (m *Memory) bodies(kind repository.Kind, keep func(Entry) bool) [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([][]byte, 0, len(m.order[kind]))
	for _, id := range m.order[kind] {
		e := m.entries[kind][id]
		if keep == nil || keep(e) {
			out = append(out, e.Body)
		}
	}
	return out
}

// GetRideByID returns the ride whose primary id is id.
func (m *Memory) GetRideByID(_ context.Context, id string) (model.Ride, error) {
	m.mu.RLock()
	e, ok := m.entries[repository.KindRide][id]
	m.mu.RUnlock()
	if !ok {
		return model.Ride{}, NotFound(repository.KindRide, id)
	}
	return DecodeRide(e.Body)
}

// GetRideByUID returns the ride whose secondary id is uid.
func (m *Memory) GetRideByUID(_ context.Context, uid string) (model.Ride, error) {
	if uid == "" {
		return model.Ride{}, NotFound(repository.KindRide, uid)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order[repository.KindRide] {
		if e := m.entries[repository.KindRide][id]; e.UID == uid {
			return DecodeRide(e.Body)
		}
	}
	return model.Ride{}, NotFound(repository.KindRide, uid)
}

// GetAllVolunteers returns every decodable volunteer in insertion order.
func (m *Memory) GetAllVolunteers(context.Context) ([]model.Volunteer, error) {
	return DecodeVolunteers(m.bodies(repository.KindVolunteer, nil), m.log), nil
}

// GetClientByReference matches any client identifier.
func (m *Memory) GetClientByReference(_ context.Context, ref string) (model.Client, error) {
	e, ok := m.lookup(repository.KindClient, ref)
	if !ok {
		return model.Client{}, NotFound(repository.KindClient, ref)
	}
	return DecodeClient(e.Body)
}

// GetDestinationByID returns the destination with the given id.
func (m *Memory) GetDestinationByID(_ context.Context, id string) (model.Destination, error) {
	e, ok := m.lookup(repository.KindDestination, id)
	if !ok {
		return model.Destination{}, NotFound(repository.KindDestination, id)
	}
	return DecodeDestination(e.Body)
}

// FetchRidesInRange returns rides starting in [start, end], ordered by start.
func (m *Memory) FetchRidesInRange(_ context.Context, start, end time.Time) ([]model.Ride, error) {
	type placed struct {
		at   time.Time
		body []byte
	}
	var hits []placed
	m.mu.RLock()
	for _, id := range m.order[repository.KindRide] {
		e := m.entries[repository.KindRide][id]
		if e.Start == nil || e.Start.Before(start) || e.Start.After(end) {
			continue
		}
		hits = append(hits, placed{at: *e.Start, body: e.Body})
	}
	m.mu.RUnlock()
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].at.Before(hits[j].at) })
	bodies := make([][]byte, len(hits))
	for i, h := range hits {
		bodies[i] = h.body
	}
	return DecodeRides(bodies, m.log), nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

func init() {
	_ = repository.RegisterStore("memory", func(conf map[string]any) (repository.Store, error) {
		var c MemoryConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		loc, err := c.Location()
		if err != nil {
			return nil, err
		}
		m := NewMemory(loc)
		if c.Fixture != "" {
			fx, err := LoadFixture(c.Fixture)
			if err != nil {
				return nil, err
			}
			if _, err := fx.Seed(context.Background(), m); err != nil {
				return nil, err
			}
		}
		return m, nil
	})
}
