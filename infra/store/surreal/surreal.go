// Package surreal stores matching documents in SurrealDB.
package surreal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/surrealdb/surrealdb.go"

	"github.com/kilianp07/ridematch/core/factory"
	"github.com/kilianp07/ridematch/core/model"
	"github.com/kilianp07/ridematch/core/repository"
	"github.com/kilianp07/ridematch/infra/logger"
	"github.com/kilianp07/ridematch/infra/store"
)

const table = "ridematch_document"

// ErrQuery wraps statement failures reported by the server.
var ErrQuery = errors.New("surreal: query failed")

// Config holds the connection settings.
type Config struct {
	store.Config `json:",squash"`
	// URL is the websocket endpoint, e.g. ws://localhost:8000.
	URL       string `json:"url"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	Namespace string `json:"namespace"`
	Database  string `json:"database"`
}

func (c *Config) setDefaults() {
	if c.Namespace == "" {
		c.Namespace = "ridematch"
	}
	if c.Database == "" {
		c.Database = "ridematch"
	}
}

type row struct {
	Ref  string `json:"ref"`
	Body string `json:"body"`
}

// Store implements repository.Store on SurrealDB.
type Store struct {
	db  *surrealdb.DB
	loc *time.Location
	log logger.Logger
}

// Open connects, signs in and selects the namespace and database.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("surreal: url is required")
	}
	cfg.setDefaults()
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	db, err := surrealdb.FromEndpointURLString(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("surreal: connect: %w", err)
	}
	if cfg.Username != "" {
		if _, err := db.SignIn(ctx, &surrealdb.Auth{Username: cfg.Username, Password: cfg.Password}); err != nil {
			_ = db.Close(ctx)
			return nil, fmt.Errorf("surreal: signin: %w", err)
		}
	}
	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		_ = db.Close(ctx)
		return nil, fmt.Errorf("surreal: use: %w", err)
	}
	return &Store{db: db, loc: loc, log: logger.New("surreal-store")}, nil
}

func (s *Store) query(ctx context.Context, q string, vars map[string]any) ([]row, error) {
	res, err := surrealdb.Query[[]row](ctx, s.db, q, vars)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuery, err)
	}
	if res == nil || len(*res) == 0 {
		return nil, nil
	}
	r := (*res)[0]
	if r.Status != "OK" {
		if r.Error != nil {
			return nil, fmt.Errorf("%w: %s", ErrQuery, r.Error.Message)
		}
		return nil, ErrQuery
	}
	return r.Result, nil
}

// Put upserts a document under a record id derived from its kind and id.
func (s *Store) Put(ctx context.Context, kind repository.Kind, doc map[string]any) error {
	e, err := store.Prepare(kind, doc, s.loc)
	if err != nil {
		return err
	}
	content := map[string]any{
		"kind": string(kind),
		"ref":  e.ID,
		"uid":  e.UID,
		"body": string(e.Body),
	}
	if e.Start != nil {
		content["start_ts"] = e.Start.UnixMilli()
	}
	_, err = s.query(ctx,
		"UPSERT type::thing($tb, $key) CONTENT $content RETURN NONE",
		map[string]any{"tb": table, "key": string(kind) + "/" + e.ID, "content": content})
	return err
}

func (s *Store) one(ctx context.Context, kind repository.Kind, where, ref string) ([]byte, error) {
	if ref == "" {
		return nil, store.NotFound(kind, ref)
	}
	rows, err := s.query(ctx,
		"SELECT ref, body FROM type::table($tb) WHERE kind = $kind AND ("+where+") ORDER BY ref LIMIT 1",
		map[string]any{"tb": table, "kind": string(kind), "ref": ref})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.NotFound(kind, ref)
	}
	return []byte(rows[0].Body), nil
}

func bodies(rows []row) [][]byte {
	out := make([][]byte, 0, len(rows))
	for _, r := range rows {
		out = append(out, []byte(r.Body))
	}
	return out
}

// GetRideByID returns the ride whose primary id is id.
func (s *Store) GetRideByID(ctx context.Context, id string) (model.Ride, error) {
	body, err := s.one(ctx, repository.KindRide, "ref = $ref", id)
	if err != nil {
		return model.Ride{}, err
	}
	return store.DecodeRide(body)
}

// GetRideByUID returns the ride whose secondary id is uid.
func (s *Store) GetRideByUID(ctx context.Context, uid string) (model.Ride, error) {
	body, err := s.one(ctx, repository.KindRide, "uid = $ref", uid)
	if err != nil {
		return model.Ride{}, err
	}
	return store.DecodeRide(body)
}

// GetAllVolunteers returns every decodable volunteer ordered by id.
func (s *Store) GetAllVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	rows, err := s.query(ctx,
		"SELECT ref, body FROM type::table($tb) WHERE kind = $kind ORDER BY ref",
		map[string]any{"tb": table, "kind": string(repository.KindVolunteer)})
	if err != nil {
		return nil, err
	}
	return store.DecodeVolunteers(bodies(rows), s.log), nil
}

// GetClientByReference matches either client identifier.
func (s *Store) GetClientByReference(ctx context.Context, ref string) (model.Client, error) {
	body, err := s.one(ctx, repository.KindClient, "ref = $ref OR uid = $ref", ref)
	if err != nil {
		return model.Client{}, err
	}
	return store.DecodeClient(body)
}

// GetDestinationByID returns the destination with the given id.
func (s *Store) GetDestinationByID(ctx context.Context, id string) (model.Destination, error) {
	body, err := s.one(ctx, repository.KindDestination, "ref = $ref", id)
	if err != nil {
		return model.Destination{}, err
	}
	return store.DecodeDestination(body)
}

// FetchRidesInRange returns rides starting in [start, end], ordered by start.
func (s *Store) FetchRidesInRange(ctx context.Context, start, end time.Time) ([]model.Ride, error) {
	rows, err := s.query(ctx,
		"SELECT ref, body, start_ts FROM type::table($tb) WHERE kind = $kind AND start_ts >= $start AND start_ts <= $end ORDER BY start_ts, ref",
		map[string]any{
			"tb":    table,
			"kind":  string(repository.KindRide),
			"start": start.UnixMilli(),
			"end":   end.UnixMilli(),
		})
	if err != nil {
		return nil, err
	}
	return store.DecodeRides(bodies(rows), s.log), nil
}

// Close closes the connection.
func (s *Store) Close() error { return s.db.Close(context.Background()) }

func init() {
	_ = repository.RegisterStore("surreal", func(conf map[string]any) (repository.Store, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return Open(ctx, c)
	})
}
