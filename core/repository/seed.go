package repository

import (
	"context"
	"fmt"
)

// Kind names a document collection.
type Kind string

const (
	KindRide        Kind = "rides"
	KindVolunteer   Kind = "volunteers"
	KindClient      Kind = "clients"
	KindDestination Kind = "destinations"
)

// Kinds lists every collection in load order.
var Kinds = []Kind{KindDestination, KindClient, KindVolunteer, KindRide}

// ParseKind accepts a collection name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown collection %q", s)
}

// Seeder stores raw documents. Documents are upserted by their identifier.
type Seeder interface {
	Put(ctx context.Context, kind Kind, doc map[string]any) error
}

// Store is a Repository that can also be seeded.
type Store interface {
	Repository
	Seeder
}
