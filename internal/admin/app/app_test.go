package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, addr string) *Application {
	t.Helper()
	dir := isolate(t)
	t.Setenv("DATABASE_FILE", filepath.Join(dir, "blogadmin.db"))
	t.Setenv("HTTP_ADDR", addr)
	t.Setenv("ADMIN_PASSWORD", "Admin123!")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	app, err := New(cfg)
	require.NoError(t, err)
	return app
}

func TestRun_ListenFailureReleasesResources(t *testing.T) {
	app := newTestApp(t, "127.0.0.1:not-a-port")
	require.NoError(t, app.db.Ping(context.Background()))

	err := app.Run()
	require.ErrorContains(t, err, "server failed")

	require.Error(t, app.db.Ping(context.Background()), "database should be closed")

	// A later Shutdown finds nothing left to release.
	require.NoError(t, app.Shutdown())
}

func TestShutdown_WithoutRun(t *testing.T) {
	app := newTestApp(t, "127.0.0.1:0")

	require.NoError(t, app.Shutdown())
	require.Error(t, app.db.Ping(context.Background()))
}
