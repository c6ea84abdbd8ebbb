package integration

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/service/common"
	"github.com/oshokin/alarm-clock/internal/service/server"
)

var errStopWatching = errors.New("stop watching")

// freeAddress reserves a free loopback port for a test server.
func freeAddress(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// daemon describes a running test daemon.
type daemon struct {
	grpcAddress string
	httpAddress string
	stop        func()
}

// startDaemon starts alarm-clockd with a temporary config on the given storage.
func startDaemon(t *testing.T, driver, storagePath string) *daemon {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := filepath.Join(t.TempDir(), "settings.yaml")

	d := &daemon{
		grpcAddress: freeAddress(t),
		httpAddress: freeAddress(t),
	}

	require.NoError(
		t,
		config.Save(cfgPath, &config.Config{
			GRPCAddress: d.grpcAddress,
			HTTPAddress: d.httpAddress,
			Storage: config.Storage{
				Driver: driver,
				Path:   storagePath,
			},
			Sound:   config.Sound{Command: "true"},
			Timeout: 5 * time.Second,
		}),
	)

	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{
			ConfigPath:       cfgPath,
			SkipProcessGuard: true,
		})
	}()

	d.stop = func() {
		cancel()
		require.NoError(t, <-done)
	}

	// Wait until the gRPC side answers.
	require.Eventually(t, func() bool {
		c, err := common.Dial(ctx, d.grpcAddress, common.WithCallTimeout(time.Second))
		if err != nil {
			return false
		}

		defer func() {
			_ = c.Close()
		}()

		_, err = c.ListAlarms(ctx)

		return err == nil
	}, 5*time.Second, 50*time.Millisecond)

	return d
}

// TestDaemon_Roundtrip starts the real daemon and drives it through the gRPC
// client and the HTTP API, then restarts it to check persistence.
func TestDaemon_Roundtrip(t *testing.T) {
	t.Parallel()

	for _, driver := range []string{"file", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			t.Parallel()

			storagePath := filepath.Join(t.TempDir(), "alarms-storage")
			d := startDaemon(t, driver, storagePath)

			ctx := context.Background()

			actor, err := common.DetectActor()
			require.NoError(t, err)

			c, err := common.Dial(ctx, d.grpcAddress, common.WithCallTimeout(3*time.Second), common.WithActor(actor))
			require.NoError(t, err)

			defer func() {
				_ = c.Close()
			}()

			created, err := c.AddAlarm(ctx, "6:30 am", "Wake up", 15)
			require.NoError(t, err)
			require.Equal(t, "06:30", created.Time)
			require.True(t, created.HasDuration)

			_, err = c.AddAlarm(ctx, "not a time", "", 0)
			require.Error(t, err)

			require.NoError(t, c.SetEnabled(ctx, created.ID, false))
			require.NoError(t, c.DeleteAlarm(ctx, "missing"))

			alert, err := c.GetAlert(ctx)
			require.NoError(t, err)
			require.Nil(t, alert)

			snoozed, err := c.SnoozeAlarm(ctx)
			require.NoError(t, err)
			require.Nil(t, snoozed)

			// The watch stream starts with a snapshot of the list.
			err = c.Watch(ctx, func(event *api.Event) error {
				require.Equal(t, api.EventSnapshot, event.Type)
				require.Len(t, event.Alarms, 1)

				return errStopWatching
			})
			require.ErrorIs(t, err, errStopWatching)

			// The HTTP API serves the same store.
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+d.httpAddress+"/api/alarms", nil)
			require.NoError(t, err)

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)

			var listed []map[string]any

			require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
			require.NoError(t, resp.Body.Close())
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.Len(t, listed, 1)
			require.Equal(t, created.ID, listed[0]["id"])
			require.Equal(t, false, listed[0]["enabled"])

			d.stop()

			// A restarted daemon restores the list from storage.
			d = startDaemon(t, driver, storagePath)
			defer d.stop()

			restarted, err := common.Dial(ctx, d.grpcAddress, common.WithCallTimeout(3*time.Second))
			require.NoError(t, err)

			defer func() {
				_ = restarted.Close()
			}()

			alarms, err := restarted.ListAlarms(ctx)
			require.NoError(t, err)
			require.Len(t, alarms, 1)
			require.Equal(t, created.ID, alarms[0].ID)
			require.False(t, alarms[0].Enabled)
			require.Equal(t, "Wake up", alarms[0].Label)
			require.Equal(t, 15, alarms[0].DurationMinutes)
		})
	}
}
