// Package factory provides a small generic registry used to instantiate
// backends from configuration. A backend is selected by a type string and
// receives a map of raw settings that it decodes into a typed struct.
//
// Example usage:
//
//	reg := factory.NewRegistry[repository.Repository]()
//	reg.Register("sqlite", func(conf map[string]any) (repository.Repository, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return sqlite.Open(c.Path)
//	})
//	repo, err := reg.Create(factory.ModuleConfig{Type: "sqlite", Conf: map[string]any{"path": "rides.db"}})
package factory
