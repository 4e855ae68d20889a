package store

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/ridematch/core/repository"
)

// Fixture is a set of raw documents per collection, as read from a YAML or
// JSON file with top level keys rides, volunteers, clients and destinations.
type Fixture map[repository.Kind][]map[string]any

// LoadFixture reads a fixture file. JSON files are valid YAML.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string][]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("fixture %s: %w", path, err)
	}
	fx := Fixture{}
	for name, docs := range raw {
		kind, err := repository.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("fixture %s: %w", path, err)
		}
		fx[kind] = docs
	}
	return fx, nil
}

// Seed writes every document to s in collection order and returns the
// number of documents written.
func (f Fixture) Seed(ctx context.Context, s repository.Seeder) (int, error) {
	n := 0
	for _, kind := range repository.Kinds {
		for _, doc := range f[kind] {
			if err := s.Put(ctx, kind, doc); err != nil {
				return n, fmt.Errorf("seed %s: %w", kind, err)
			}
			n++
		}
	}
	return n, nil
}
