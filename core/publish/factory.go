package publish

import "github.com/kilianp07/ridematch/core/factory"

var registry = factory.NewRegistry[Publisher]()

func init() {
	_ = Register("nop", func(map[string]any) (Publisher, error) { return NopPublisher{}, nil })
}

// Register adds a publisher factory identified by name.
func Register(name string, f factory.Factory[Publisher]) error {
	return registry.Register(name, f)
}

// Config lists the publishers to start.
type Config struct {
	Publishers []factory.ModuleConfig `json:"publishers"`
}

// New creates the publishers described by cfgs. Each one is returned on its
// own so callers can report outcomes per backend.
func New(cfgs []factory.ModuleConfig) ([]Publisher, error) {
	out := make([]Publisher, 0, len(cfgs))
	for _, c := range cfgs {
		p, err := registry.Create(c)
		if err != nil {
			for _, created := range out {
				_ = created.Close()
			}
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}
