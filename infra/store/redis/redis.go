// Package redis stores matching documents in Redis hashes with a sorted set
// indexing ride start times.
package redis

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kilianp07/ridematch/core/factory"
	"github.com/kilianp07/ridematch/core/model"
	"github.com/kilianp07/ridematch/core/repository"
	"github.com/kilianp07/ridematch/infra/logger"
	"github.com/kilianp07/ridematch/infra/store"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "ridematch"

// Config holds the connection settings.
type Config struct {
	store.Config `json:",squash"`
	Addr         string `json:"addr"`
	Password     string `json:"password"`
	DB           int    `json:"db"`
	Prefix       string `json:"prefix"`
}

// Store implements repository.Store on Redis.
//
// Layout:
//
//	<prefix>:<kind>         hash id -> document
//	<prefix>:<kind>:uid     hash uid -> id
//	<prefix>:ride_start     sorted set of ride ids scored by start (unix ms)
type Store struct {
	rdb    goredis.UniversalClient
	prefix string
	loc    *time.Location
	log    logger.Logger
}

// New wraps an existing client.
func New(rdb goredis.UniversalClient, prefix string, loc *time.Location) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if loc == nil {
		loc = time.Local
	}
	return &Store{rdb: rdb, prefix: prefix, loc: loc, log: logger.New("redis-store")}
}

// Open connects using cfg and pings the server.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis: addr is required")
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return New(rdb, cfg.Prefix, loc), nil
}

func (s *Store) docsKey(kind repository.Kind) string { return s.prefix + ":" + string(kind) }
func (s *Store) uidKey(kind repository.Kind) string  { return s.prefix + ":" + string(kind) + ":uid" }
func (s *Store) startKey() string                    { return s.prefix + ":ride_start" }

// Put upserts a document and its indexes in one transaction.
func (s *Store) Put(ctx context.Context, kind repository.Kind, doc map[string]any) error {
	e, err := store.Prepare(kind, doc, s.loc)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.HSet(ctx, s.docsKey(kind), e.ID, e.Body)
		if e.UID != "" {
			pipe.HSet(ctx, s.uidKey(kind), e.UID, e.ID)
		}
		if kind == repository.KindRide {
			if e.Start != nil {
				pipe.ZAdd(ctx, s.startKey(), goredis.Z{Score: float64(e.Start.UnixMilli()), Member: e.ID})
			} else {
				pipe.ZRem(ctx, s.startKey(), e.ID)
			}
		}
		return nil
	})
	return err
}

func (s *Store) get(ctx context.Context, kind repository.Kind, id string) ([]byte, error) {
	if id == "" {
		return nil, store.NotFound(kind, id)
	}
	body, err := s.rdb.HGet(ctx, s.docsKey(kind), id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, store.NotFound(kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("redis: %s %s: %w", kind, id, err)
	}
	return body, nil
}

func (s *Store) getByUID(ctx context.Context, kind repository.Kind, uid string) ([]byte, error) {
	if uid == "" {
		return nil, store.NotFound(kind, uid)
	}
	id, err := s.rdb.HGet(ctx, s.uidKey(kind), uid).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, store.NotFound(kind, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("redis: %s uid %s: %w", kind, uid, err)
	}
	return s.get(ctx, kind, id)
}

// GetRideByID returns the ride whose primary id is id.
func (s *Store) GetRideByID(ctx context.Context, id string) (model.Ride, error) {
	body, err := s.get(ctx, repository.KindRide, id)
	if err != nil {
		return model.Ride{}, err
	}
	return store.DecodeRide(body)
}

// GetRideByUID returns the ride whose secondary id is uid.
func (s *Store) GetRideByUID(ctx context.Context, uid string) (model.Ride, error) {
	body, err := s.getByUID(ctx, repository.KindRide, uid)
	if err != nil {
		return model.Ride{}, err
	}
	return store.DecodeRide(body)
}

// GetAllVolunteers returns every decodable volunteer ordered by id.
func (s *Store) GetAllVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	all, err := s.rdb.HGetAll(ctx, s.docsKey(repository.KindVolunteer)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: volunteers: %w", err)
	}
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	bodies := make([][]byte, 0, len(ids))
	for _, id := range ids {
		bodies = append(bodies, []byte(all[id]))
	}
	return store.DecodeVolunteers(bodies, s.log), nil
}

// GetClientByReference matches the primary id first, then the secondary one.
func (s *Store) GetClientByReference(ctx context.Context, ref string) (model.Client, error) {
	body, err := s.get(ctx, repository.KindClient, ref)
	if errors.Is(err, repository.ErrNotFound) {
		body, err = s.getByUID(ctx, repository.KindClient, ref)
	}
	if err != nil {
		return model.Client{}, err
	}
	return store.DecodeClient(body)
}

// GetDestinationByID returns the destination with the given id.
func (s *Store) GetDestinationByID(ctx context.Context, id string) (model.Destination, error) {
	body, err := s.get(ctx, repository.KindDestination, id)
	if err != nil {
		return model.Destination{}, err
	}
	return store.DecodeDestination(body)
}

// FetchRidesInRange returns rides starting in [start, end], ordered by start.
func (s *Store) FetchRidesInRange(ctx context.Context, start, end time.Time) ([]model.Ride, error) {
	ids, err := s.rdb.ZRangeByScore(ctx, s.startKey(), &goredis.ZRangeBy{
		Min: strconv.FormatInt(start.UnixMilli(), 10),
		Max: strconv.FormatInt(end.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: ride range: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	vals, err := s.rdb.HMGet(ctx, s.docsKey(repository.KindRide), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: ride range: %w", err)
	}
	bodies := make([][]byte, 0, len(vals))
	for _, v := range vals {
		if str, ok := v.(string); ok {
			bodies = append(bodies, []byte(str))
		}
	}
	return store.DecodeRides(bodies, s.log), nil
}

// Close closes the client.
func (s *Store) Close() error { return s.rdb.Close() }

func init() {
	_ = repository.RegisterStore("redis", func(conf map[string]any) (repository.Store, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return Open(ctx, c)
	})
}
