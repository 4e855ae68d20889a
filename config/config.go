// Package config loads the service configuration from a YAML or JSON file
// with K_ prefixed environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/ridematch/core/factory"
	"github.com/kilianp07/ridematch/core/matching"
	"github.com/kilianp07/ridematch/core/metrics"
	"github.com/kilianp07/ridematch/core/publish"
)

type Config struct {
	Store     factory.ModuleConfig `json:"store"`
	Matching  matching.Config      `json:"matching"`
	Metrics   metrics.Config       `json:"metrics"`
	MatchLog  MatchLogConfig       `json:"match_log"`
	Publisher publish.Config       `json:"publisher"`
	HTTP      HTTPConfig           `json:"http"`
	Sentry    SentryConfig         `json:"sentry"`
}

// SetDefaults fills every section's zero values.
func (c *Config) SetDefaults() {
	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}
	c.Matching.SetDefaults()
	c.MatchLog.SetDefaults()
	c.HTTP.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Matching.Validate(); err != nil {
		return err
	}
	if err := c.MatchLog.Validate(); err != nil {
		return err
	}
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	for i, s := range c.Metrics.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics: sink %d has no type", i)
		}
	}
	for i, p := range c.Publisher.Publishers {
		if p.Type == "" {
			return fmt.Errorf("publisher: entry %d has no type", i)
		}
	}
	return nil
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
