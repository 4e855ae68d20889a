// Package postgres stores matching documents in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kilianp07/ridematch/core/factory"
	"github.com/kilianp07/ridematch/core/model"
	"github.com/kilianp07/ridematch/core/repository"
	"github.com/kilianp07/ridematch/infra/logger"
	"github.com/kilianp07/ridematch/infra/store"
)

const table = "ridematch_documents"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Config holds the connection string.
type Config struct {
	store.Config `json:",squash"`
	DSN          string        `json:"dsn"`
	Timeout      time.Duration `json:"timeout"`
}

// Store implements repository.Store on a pgx pool.
type Store struct {
	db  *pgxpool.Pool
	loc *time.Location
	log logger.Logger
}

// Open connects to dsn, pings the server and ensures schema.
func Open(ctx context.Context, dsn string, loc *time.Location) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: dsn is required")
	}
	if loc == nil {
		loc = time.Local
	}
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	schema := []string{
		`CREATE TABLE IF NOT EXISTS ridematch_documents (
            kind TEXT NOT NULL,
            id TEXT NOT NULL,
            uid TEXT NOT NULL DEFAULT '',
            start_ts BIGINT,
            body JSONB NOT NULL,
            PRIMARY KEY (kind, id)
        )`,
		`CREATE INDEX IF NOT EXISTS ridematch_documents_uid ON ridematch_documents (kind, uid)`,
		`CREATE INDEX IF NOT EXISTS ridematch_documents_start ON ridematch_documents (kind, start_ts)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("postgres: schema: %w", err)
		}
	}
	return &Store{db: db, loc: loc, log: logger.New("postgres-store")}, nil
}

// Put upserts a document.
func (s *Store) Put(ctx context.Context, kind repository.Kind, doc map[string]any) error {
	e, err := store.Prepare(kind, doc, s.loc)
	if err != nil {
		return err
	}
	var start *int64
	if e.Start != nil {
		ns := e.Start.UnixNano()
		start = &ns
	}
	query, args, err := psql.Insert(table).
		Columns("kind", "id", "uid", "start_ts", "body").
		Values(string(kind), e.ID, e.UID, start, string(e.Body)).
		Suffix("ON CONFLICT (kind, id) DO UPDATE SET uid = EXCLUDED.uid, start_ts = EXCLUDED.start_ts, body = EXCLUDED.body").
		ToSql()
	if err != nil {
		return fmt.Errorf("postgres: build insert: %w", err)
	}
	_, err = s.db.Exec(ctx, query, args...)
	return err
}

func (s *Store) one(ctx context.Context, kind repository.Kind, where sq.Sqlizer, ref string) ([]byte, error) {
	if ref == "" {
		return nil, store.NotFound(kind, ref)
	}
	query, args, err := psql.Select("body::text").From(table).
		Where(sq.Eq{"kind": string(kind)}).
		Where(where).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build select: %w", err)
	}
	var body string
	err = s.db.QueryRow(ctx, query, args...).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.NotFound(kind, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: %s %s: %w", kind, ref, err)
	}
	return []byte(body), nil
}

func (s *Store) many(ctx context.Context, b sq.SelectBuilder) ([][]byte, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("postgres: build select: %w", err)
	}
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out [][]byte
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, []byte(body))
	}
	return out, rows.Err()
}

// GetRideByID returns the ride whose primary id is id.
func (s *Store) GetRideByID(ctx context.Context, id string) (model.Ride, error) {
	body, err := s.one(ctx, repository.KindRide, sq.Eq{"id": id}, id)
	if err != nil {
		return model.Ride{}, err
	}
	return store.DecodeRide(body)
}

// GetRideByUID returns the ride whose secondary id is uid.
func (s *Store) GetRideByUID(ctx context.Context, uid string) (model.Ride, error) {
	body, err := s.one(ctx, repository.KindRide, sq.Eq{"uid": uid}, uid)
	if err != nil {
		return model.Ride{}, err
	}
	return store.DecodeRide(body)
}

// GetAllVolunteers returns every decodable volunteer ordered by id.
func (s *Store) GetAllVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	bodies, err := s.many(ctx, psql.Select("body::text").From(table).
		Where(sq.Eq{"kind": string(repository.KindVolunteer)}).
		OrderBy("id"))
	if err != nil {
		return nil, err
	}
	return store.DecodeVolunteers(bodies, s.log), nil
}

// GetClientByReference matches either client identifier.
func (s *Store) GetClientByReference(ctx context.Context, ref string) (model.Client, error) {
	body, err := s.one(ctx, repository.KindClient, sq.Or{sq.Eq{"id": ref}, sq.Eq{"uid": ref}}, ref)
	if err != nil {
		return model.Client{}, err
	}
	return store.DecodeClient(body)
}

// GetDestinationByID returns the destination with the given id.
func (s *Store) GetDestinationByID(ctx context.Context, id string) (model.Destination, error) {
	body, err := s.one(ctx, repository.KindDestination, sq.Eq{"id": id}, id)
	if err != nil {
		return model.Destination{}, err
	}
	return store.DecodeDestination(body)
}

// FetchRidesInRange returns rides starting in [start, end], ordered by start.
func (s *Store) FetchRidesInRange(ctx context.Context, start, end time.Time) ([]model.Ride, error) {
	bodies, err := s.many(ctx, psql.Select("body::text").From(table).
		Where(sq.Eq{"kind": string(repository.KindRide)}).
		Where(sq.GtOrEq{"start_ts": start.UnixNano()}).
		Where(sq.LtOrEq{"start_ts": end.UnixNano()}).
		OrderBy("start_ts", "id"))
	if err != nil {
		return nil, err
	}
	return store.DecodeRides(bodies, s.log), nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.db.Close()
	return nil
}

func init() {
	_ = repository.RegisterStore("postgres", func(conf map[string]any) (repository.Store, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		loc, err := c.Location()
		if err != nil {
			return nil, err
		}
		if c.Timeout <= 0 {
			c.Timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
		defer cancel()
		return Open(ctx, c.DSN, loc)
	})
}
