package mysql_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/store/drivers/mysql"
	"github.com/aussiebroadwan/blogadmin/internal/admin/store/storetest"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	mysqlImage    = "mysql:8.4"
	mysqlDatabase = "blog"
	mysqlPassword = "blog-test-password"
)

// setupMySQLContainer starts a throwaway MySQL server and returns a DSN for it.
func setupMySQLContainer(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping MySQL container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        mysqlImage,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": mysqlPassword,
			"MYSQL_DATABASE":      mysqlDatabase,
		},
		// The entrypoint starts a temporary server first, so wait for the
		// second "ready" line.
		WaitingFor: wait.ForAll(
			wait.ForLog("ready for connections").WithOccurrence(2),
			wait.ForListeningPort("3306/tcp"),
		).WithDeadline(2 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "3306")
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("root:%s@tcp(%s:%s)/%s", mysqlPassword, host, mappedPort.Port(), mysqlDatabase)
}

func TestStore(t *testing.T) {
	dsn := setupMySQLContainer(t)

	s, err := mysql.NewStore(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.ApplyMigrations())
	storetest.Run(t, s)
}
