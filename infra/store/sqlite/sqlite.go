// Package sqlite stores matching documents in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/ridematch/core/factory"
	"github.com/kilianp07/ridematch/core/model"
	"github.com/kilianp07/ridematch/core/repository"
	"github.com/kilianp07/ridematch/infra/logger"
	"github.com/kilianp07/ridematch/infra/store"
)

const table = "documents"

// Config locates the database file.
type Config struct {
	store.Config `json:",squash"`
	Path         string `json:"path"`
}

// Store implements repository.Store on SQLite.
type Store struct {
	db  *sql.DB
	loc *time.Location
	log logger.Logger
}

// Open opens or creates the database at path and ensures schema.
func Open(path string, loc *time.Location) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if loc == nil {
		loc = time.Local
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := []string{
		`CREATE TABLE IF NOT EXISTS documents (
        kind TEXT NOT NULL,
        id TEXT NOT NULL,
        uid TEXT NOT NULL DEFAULT '',
        start_ts INTEGER,
        body TEXT NOT NULL,
        PRIMARY KEY (kind, id)
    );`,
		`CREATE INDEX IF NOT EXISTS documents_uid ON documents (kind, uid);`,
		`CREATE INDEX IF NOT EXISTS documents_start ON documents (kind, start_ts);`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			if cerr := db.Close(); cerr != nil {
				return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
			}
			return nil, err
		}
	}
	return &Store{db: db, loc: loc, log: logger.New("sqlite-store")}, nil
}

// Put upserts a document.
func (s *Store) Put(ctx context.Context, kind repository.Kind, doc map[string]any) error {
	e, err := store.Prepare(kind, doc, s.loc)
	if err != nil {
		return err
	}
	var start any
	if e.Start != nil {
		start = e.Start.UnixNano()
	}
	query, args, err := sq.Insert(table).
		Columns("kind", "id", "uid", "start_ts", "body").
		Values(string(kind), e.ID, e.UID, start, string(e.Body)).
		Suffix("ON CONFLICT (kind, id) DO UPDATE SET uid = excluded.uid, start_ts = excluded.start_ts, body = excluded.body").
		ToSql()
	if err != nil {
		return fmt.Errorf("sqlite: build insert: %w", err)
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *Store) one(ctx context.Context, kind repository.Kind, where sq.Sqlizer, ref string) ([]byte, error) {
	if ref == "" {
		return nil, store.NotFound(kind, ref)
	}
	query, args, err := sq.Select("body").From(table).
		Where(sq.Eq{"kind": string(kind)}).
		Where(where).
		OrderBy("id").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build select: %w", err)
	}
	var body string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound(kind, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: %s %s: %w", kind, ref, err)
	}
	return []byte(body), nil
}

func (s *Store) many(ctx context.Context, b sq.SelectBuilder) ([][]byte, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("sqlite: build select: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
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
	bodies, err := s.many(ctx, sq.Select("body").From(table).
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
	body, err := s.one(ctx, repository.KindDestination, sq.Or{sq.Eq{"id": id}, sq.Eq{"uid": id}}, id)
	if err != nil {
		return model.Destination{}, err
	}
	return store.DecodeDestination(body)
}

// FetchRidesInRange returns rides starting in [start, end], ordered by start.
func (s *Store) FetchRidesInRange(ctx context.Context, start, end time.Time) ([]model.Ride, error) {
	bodies, err := s.many(ctx, sq.Select("body").From(table).
		Where(sq.Eq{"kind": string(repository.KindRide)}).
		Where(sq.GtOrEq{"start_ts": start.UnixNano()}).
		Where(sq.LtOrEq{"start_ts": end.UnixNano()}).
		OrderBy("start_ts", "id"))
	if err != nil {
		return nil, err
	}
	return store.DecodeRides(bodies, s.log), nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func init() {
	_ = repository.RegisterStore("sqlite", func(conf map[string]any) (repository.Store, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		loc, err := c.Location()
		if err != nil {
			return nil, err
		}
		return Open(c.Path, loc)
	})
}
