// Package pgtest starts a throwaway Postgres for repository tests.
package pgtest

import (
	"context"
	"testing"
	"time"

	"github.com/freshbasket/storefront/internal/config"
	"github.com/freshbasket/storefront/internal/infrastructure/database/postgres"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

const image = "postgres:16-alpine"

// Open starts a Postgres container, migrates the schema and returns a
// connection to it. The test is skipped in short mode or when no Docker
// provider is reachable.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres repository tests skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "storefront",
				"POSTGRES_PASSWORD": "storefront",
				"POSTGRES_DB":       "storefront_test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Host:         host,
			Port:         port.Port(),
			Name:         "storefront_test",
			User:         "storefront",
			Password:     "storefront",
			SSLMode:      "disable",
			MaxOpenConns: 32,
			MaxIdleConns: 8,
			MaxLifetime:  time.Minute,
		},
	}

	db, err := postgres.NewConnection(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migration := postgres.NewMigration(db.GetDB(), nil)
	require.NoError(t, migration.RunAutoMigrations())
	require.NoError(t, migration.CreateIndexes())

	return db.GetDB()
}
