package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/domain"
	"github.com/aussiebroadwan/blogadmin/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	env := newTestEnv(t)
	adminID := env.bootstrap(t)
	ctx := context.Background()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hk := NewHousekeepingService(env.Store, logger, time.Hour, 30*24*time.Hour)
	hk.Now = func() time.Time { return env.clock }

	for _, age := range []time.Duration{time.Hour, 10 * 24 * time.Hour, 40 * 24 * time.Hour, 400 * 24 * time.Hour} {
		require.NoError(t, env.Store.LoginLogs().CreateLoginLog(ctx, domain.LoginLog{
			ID:        idx.New().String(),
			UserID:    adminID,
			IP:        "127.0.0.1",
			CreatedAt: env.clock.Add(-age),
		}))
	}

	require.EqualValues(t, 2, hk.Cleanup(ctx))
	require.EqualValues(t, 0, hk.Cleanup(ctx))

	logs, err := env.Store.LoginLogs().ListByUserID(ctx, adminID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
}

func TestHousekeepingStartStop(t *testing.T) {
	env := newTestEnv(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hk := NewHousekeepingService(env.Store, logger, 0, 0)
	require.Equal(t, time.Hour, hk.Interval)
	require.Equal(t, DefaultLoginLogRetention, hk.Retention)

	hk.Start()
	hk.Stop()
	hk.Stop()

	idle := NewHousekeepingService(env.Store, logger, 0, 0)
	idle.Stop()
}
