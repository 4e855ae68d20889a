//go:build !no_containers

package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/ridematch/core/factory"
	"github.com/kilianp07/ridematch/core/repository"
	"github.com/kilianp07/ridematch/infra/store/storetest"
)

func TestFactoryRequiresDSN(t *testing.T) {
	_, err := repository.NewStore(factory.ModuleConfig{Type: "postgres"})
	require.Error(t, err)
}

// TestStore runs the repository contract against a disposable PostgreSQL.
func TestStore(t *testing.T) {
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "ridematch",
			"POSTGRES_PASSWORD": "ridematch",
			"POSTGRES_DB":       "ridematch",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://ridematch:ridematch@%s:%s/ridematch?sslmode=disable", host, port.Port())

	storetest.Run(t, func(t *testing.T) repository.Store {
		s, err := Open(ctx, dsn, time.UTC)
		require.NoError(t, err)
		_, err = s.db.Exec(ctx, "TRUNCATE "+table)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
