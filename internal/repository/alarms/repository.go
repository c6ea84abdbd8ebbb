package alarms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/repository/kv"
)

// Key is the fixed key the alarm list is stored under.
const Key = "alarms"

// Repository defines persistence operations for the alarm list.
type Repository interface {
	Load(ctx context.Context) ([]*domain.Alarm, error)
	Save(ctx context.Context, alarms []*domain.Alarm) error
}

var (
	// ErrNotFound is returned when nothing has been saved yet.
	ErrNotFound = errors.New("alarms not found")
	// ErrMalformed is returned when the stored value cannot be turned back into alarms.
	ErrMalformed = errors.New("malformed alarm list")
)

// KVRepository stores the alarm list as JSON under Key.
type KVRepository struct {
	// store is the key-value backend.
	store kv.Store
}

var _ Repository = (*KVRepository)(nil)

// NewKVRepository creates a repository on top of the provided store.
func NewKVRepository(store kv.Store) *KVRepository {
	return &KVRepository{
		store: store,
	}
}

// Load restores the alarm list.
func (r *KVRepository) Load(ctx context.Context) ([]*domain.Alarm, error) {
	data, err := r.store.Get(ctx, Key)
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read alarms: %w", err)
	}

	return decode(data)
}

// Save replaces the stored alarm list.
func (r *KVRepository) Save(ctx context.Context, alarms []*domain.Alarm) error {
	data, err := encode(alarms)
	if err != nil {
		return err
	}

	if err = r.store.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("write alarms: %w", err)
	}

	return nil
}

// record is the persisted shape of an alarm.
type record struct {
	ID              string    `json:"id"`
	Time            string    `json:"time"`
	Enabled         bool      `json:"enabled"`
	Label           string    `json:"label"`
	HasDuration     bool      `json:"hasDuration"`
	DurationMinutes int       `json:"durationMinutes"`
	Created         time.Time `json:"created"`
}

func encode(alarms []*domain.Alarm) ([]byte, error) {
	records := make([]record, 0, len(alarms))
	for _, a := range alarms {
		records = append(records, record{
			ID:              a.ID,
			Time:            a.Time,
			Enabled:         a.Enabled,
			Label:           a.Label,
			HasDuration:     a.HasDuration,
			DurationMinutes: a.DurationMinutes,
			Created:         a.Created,
		})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode alarms: %w", err)
	}

	return data, nil
}

func decode(data []byte) ([]*domain.Alarm, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	alarms := make([]*domain.Alarm, 0, len(records))
	seen := make(map[string]struct{}, len(records))

	for i, rec := range records {
		if rec.ID == "" {
			return nil, fmt.Errorf("%w: entry %d has no id", ErrMalformed, i)
		}

		// A zero-length alert would expire and fire again within its due minute.
		if err := domain.Validate(rec.Time, rec.Label, rec.HasDuration, rec.DurationMinutes); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrMalformed, i, err)
		}

		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrMalformed, rec.ID)
		}

		seen[rec.ID] = struct{}{}

		alarms = append(alarms, &domain.Alarm{
			ID:              rec.ID,
			Time:            rec.Time,
			Enabled:         rec.Enabled,
			Label:           rec.Label,
			HasDuration:     rec.HasDuration,
			DurationMinutes: rec.DurationMinutes,
			Created:         rec.Created,
		})
	}

	return alarms, nil
}
