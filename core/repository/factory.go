package repository

import "github.com/kilianp07/ridematch/core/factory"

var storeRegistry = factory.NewRegistry[Store]()

// RegisterStore adds a store factory identified by name.
func RegisterStore(name string, f factory.Factory[Store]) error {
	return storeRegistry.Register(name, f)
}

// NewStore creates the store selected by cfg.Type.
func NewStore(cfg factory.ModuleConfig) (Store, error) {
	return storeRegistry.Create(cfg)
}

// StoreTypes lists the registered store names.
func StoreTypes() []string {
	return storeRegistry.Names()
}
