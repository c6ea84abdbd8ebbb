package alarms

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/repository/kv"
)

func sampleAlarms() []*domain.Alarm {
	created := time.Date(2024, 2, 29, 21, 15, 3, 123456789, time.UTC)

	return []*domain.Alarm{
		{ID: "k1", Time: "07:00", Enabled: true, Label: "Wake up", Created: created},
		{ID: "k2", Time: "13:30", Enabled: false, Label: "", HasDuration: true, DurationMinutes: 45, Created: created.Add(time.Hour)},
		{ID: "snooze-k3", Time: "23:59", Enabled: true, Label: "Late (Snoozed)", Created: created.Add(2 * time.Hour)},
	}
}

// TestKVRepository_Roundtrip saves and restores through both drivers.
func TestKVRepository_Roundtrip(t *testing.T) {
	t.Parallel()

	for _, driver := range []string{kv.DriverFile, kv.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			t.Parallel()

			store, err := kv.Open(driver, filepath.Join(t.TempDir(), "alarms"))
			require.NoError(t, err)

			defer func() {
				require.NoError(t, store.Close())
			}()

			repo := NewKVRepository(store)
			ctx := context.Background()

			_, err = repo.Load(ctx)
			require.ErrorIs(t, err, ErrNotFound)

			want := sampleAlarms()
			require.NoError(t, repo.Save(ctx, want))

			got, err := repo.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, want, got)

			require.NoError(t, repo.Save(ctx, nil))

			got, err = repo.Load(ctx)
			require.NoError(t, err)
			require.Empty(t, got)
		})
	}
}

// TestKVRepository_LocalCreated restores alarms created from the wall clock.
func TestKVRepository_LocalCreated(t *testing.T) {
	t.Parallel()

	store, err := kv.Open(kv.DriverFile, filepath.Join(t.TempDir(), "alarms.json"))
	require.NoError(t, err)

	defer func() {
		require.NoError(t, store.Close())
	}()

	repo := NewKVRepository(store)
	ctx := context.Background()

	created := domain.New("06:45", "Bus", true, 20)
	require.Equal(t, time.Local, created.Created.Location())

	require.NoError(t, repo.Save(ctx, []*domain.Alarm{created}))

	got, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// The monotonic reading and the location pointer do not survive
	// encoding, the instant does.
	require.True(t, created.Created.Equal(got[0].Created))

	restored := *got[0]
	restored.Created = created.Created
	require.Equal(t, *created, restored)
}

// TestEncode_Layout pins the persisted field names and the ISO-8601 creation time.
func TestEncode_Layout(t *testing.T) {
	t.Parallel()

	data, err := encode(sampleAlarms()[:1])
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)

	require.Equal(t, map[string]any{
		"id":              "k1",
		"time":            "07:00",
		"enabled":         true,
		"label":           "Wake up",
		"hasDuration":     false,
		"durationMinutes": float64(0),
		"created":         "2024-02-29T21:15:03.123456789Z",
	}, raw[0])
}

// TestDecode_Malformed covers the inputs that must be rejected as a whole.
func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	inputs := map[string]string{
		"not json":          `{"alarms":`,
		"not an array":      `{"id":"a"}`,
		"bad time":          `[{"id":"a","time":"7:00","created":"2024-01-01T00:00:00Z"}]`,
		"missing id":        `[{"time":"07:00","created":"2024-01-01T00:00:00Z"}]`,
		"bad created":       `[{"id":"a","time":"07:00","created":"yesterday"}]`,
		"duplicate id":      `[{"id":"a","time":"07:00"},{"id":"a","time":"08:00"}]`,
		"zero duration":     `[{"id":"a","time":"07:00","hasDuration":true,"durationMinutes":0}]`,
		"negative duration": `[{"id":"a","time":"07:00","hasDuration":true,"durationMinutes":-5}]`,
		"long label":        `[{"id":"a","time":"07:00","label":"` + strings.Repeat("x", domain.MaxLabelLength+1) + `"}]`,
	}
	for name, input := range inputs {
		_, err := decode([]byte(input))
		require.ErrorIs(t, err, ErrMalformed, name)
	}

	alarms, err := decode([]byte("null"))
	require.NoError(t, err)
	require.Empty(t, alarms)
}
