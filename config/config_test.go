package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

//nolint:gocyclo
func TestLoad(t *testing.T) {
	path := writeFile(t, "config.yaml", `store:
  type: "sqlite"
  conf:
    path: "rides.db"
    timezone: "America/Chicago"
matching:
  workers: 3
  request_timeout_seconds: 4
  enforce_weekly_availability: true
  timezone: "UTC"
  schedule_offset_hours: -6
metrics:
  sinks:
    - type: "nop"
match_log:
  backend: "sqlite"
  path: "matches.db"
publisher:
  publishers:
    - type: "mqtt"
      conf:
        broker: "tcp://localhost:1883"
http:
  addr: ":9000"
sentry:
  dsn: ""
  environment: "test"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"store.type", cfg.Store.Type, "sqlite"},
		{"store.conf.path", cfg.Store.Conf["path"], "rides.db"},
		{"matching.workers", cfg.Matching.Workers, 3},
		{"matching.request_timeout_seconds", cfg.Matching.RequestTimeoutSeconds, 4},
		{"matching.enforce", cfg.Matching.EnforceWeeklyAvailability, true},
		{"matching.timezone", cfg.Matching.Timezone, "UTC"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"match_log.backend", cfg.MatchLog.Backend, "sqlite"},
		{"match_log.path", cfg.MatchLog.Path, "matches.db"},
		{"publisher", cfg.Publisher.Publishers[0].Type, "mqtt"},
		{"http.addr", cfg.HTTP.Addr, ":9000"},
		{"http.read_timeout_seconds", cfg.HTTP.ReadTimeoutSeconds, 5},
		{"sentry.environment", cfg.Sentry.Environment, "test"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
	require.NotNil(t, cfg.Matching.ScheduleOffsetHours)
	assert.Equal(t, -6.0, *cfg.Matching.ScheduleOffsetHours)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "config.json", `{}`))
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, "jsonl", cfg.MatchLog.Backend)
	assert.Equal(t, "matches.log", cfg.MatchLog.Path)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Positive(t, cfg.Matching.Workers)
	assert.Equal(t, 10, cfg.Matching.RequestTimeoutSeconds)
	require.NotNil(t, cfg.Matching.ScheduleOffsetHours)
	assert.Equal(t, -5.0, *cfg.Matching.ScheduleOffsetHours)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("K_HTTP__ADDR", ":7070")
	t.Setenv("K_MATCH_LOG__BACKEND", "none")
	cfg, err := Load(writeFile(t, "config.yaml", "http:\n  addr: \":9000\"\n"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, "none", cfg.MatchLog.Backend)
	assert.Empty(t, cfg.MatchLog.Path)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeFile(t, "config.toml", ""))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "config.yaml", "match_log:\n  backend: \"csv\"\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "config.yaml", "matching:\n  timezone: \"Mars/Olympus\"\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "config.yaml", "metrics:\n  sinks:\n    - conf: {}\n"))
	assert.Error(t, err)
}
