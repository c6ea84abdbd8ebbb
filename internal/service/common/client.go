//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/version"
)

// Client wraps the AlarmClock gRPC client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the daemon.
	conn *grpc.ClientConn
	// api is the AlarmClock service client.
	api *api.AlarmClockClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
	// actor is attached to every call for the daemon's audit log.
	actor *Actor
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

// WithActor attaches the caller's identity to every call.
func WithActor(actor *Actor) Option {
	return func(c *Client) {
		c.actor = actor
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errIDRequired is returned when an alarm id is not provided.
	errIDRequired = errors.New("alarm id must be provided")
)

// Dial creates a gRPC client for the daemon.
// The daemon listens on loopback, so the transport is not encrypted.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(
		address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUserAgent(version.UserAgent("alarm-clock")),
	)
	if err != nil {
		return nil, fmt.Errorf("dial alarm daemon: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewAlarmClockClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// ListAlarms returns the alarms in display order.
func (c *Client) ListAlarms(ctx context.Context) ([]*domain.Alarm, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	list, err := c.api.ListAlarms(callCtx)
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	return api.AlarmsFromList(list)
}

// AddAlarm creates an alarm. A positive durationMinutes makes it self-stopping.
func (c *Client) AddAlarm(ctx context.Context, timeInput, label string, durationMinutes int) (*domain.Alarm, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		api.FieldTime:            structpb.NewStringValue(timeInput),
		api.FieldLabel:           structpb.NewStringValue(label),
		api.FieldHasDuration:     structpb.NewBoolValue(durationMinutes > 0),
		api.FieldDurationMinutes: structpb.NewNumberValue(float64(durationMinutes)),
	}}

	created, err := c.api.AddAlarm(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("add alarm: %w", err)
	}

	return api.AlarmFromStruct(created)
}

// SetEnabled enables or disables an alarm.
func (c *Client) SetEnabled(ctx context.Context, id string, enabled bool) error {
	if id == "" {
		return errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	req := &structpb.Struct{Fields: map[string]*structpb.Value{
		api.FieldID:      structpb.NewStringValue(id),
		api.FieldEnabled: structpb.NewBoolValue(enabled),
	}}

	if err := c.api.ToggleAlarm(callCtx, req); err != nil {
		return fmt.Errorf("toggle alarm: %w", err)
	}

	return nil
}

// DeleteAlarm removes an alarm.
func (c *Client) DeleteAlarm(ctx context.Context, id string) error {
	if id == "" {
		return errIDRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.api.DeleteAlarm(callCtx, id); err != nil {
		return fmt.Errorf("delete alarm: %w", err)
	}

	return nil
}

// GetAlert returns the active alert, or nil.
func (c *Client) GetAlert(ctx context.Context) (*domain.Alert, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	alert, err := c.api.GetAlert(callCtx)
	if err != nil {
		return nil, fmt.Errorf("get alert: %w", err)
	}

	return api.AlertFromStruct(alert)
}

// SnoozeAlarm snoozes the active alert and returns the new alarm,
// or nil when nothing was ringing.
func (c *Client) SnoozeAlarm(ctx context.Context) (*domain.Alarm, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	snoozed, err := c.api.SnoozeAlarm(callCtx)
	if err != nil {
		return nil, fmt.Errorf("snooze alarm: %w", err)
	}

	if len(snoozed.GetFields()) == 0 {
		return nil, nil //nolint:nilnil // Nothing to snooze is not an error.
	}

	return api.AlarmFromStruct(snoozed)
}

// DismissAlarm dismisses the active alert.
func (c *Client) DismissAlarm(ctx context.Context) error {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if err := c.api.DismissAlarm(callCtx); err != nil {
		return fmt.Errorf("dismiss alarm: %w", err)
	}

	return nil
}

// Watch calls fn with a snapshot and then every daemon event until ctx is
// canceled, the daemon closes the stream or fn returns an error.
// The call timeout does not apply.
func (c *Client) Watch(ctx context.Context, fn func(*api.Event) error) error {
	// Canceling ends the stream on the daemon side when fn stops early.
	streamCtx, cancel := context.WithCancel(c.withActor(ctx))
	defer cancel()

	stream, err := c.api.Watch(streamCtx)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	for {
		msg, err := stream.Recv()

		switch {
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}

			return fmt.Errorf("watch: %w", err)
		}

		event, err := api.EventFromStruct(msg)
		if err != nil {
			return fmt.Errorf("decode event: %w", err)
		}

		if err := fn(event); err != nil {
			return err
		}
	}
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = c.withActor(ctx)

	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}

func (c *Client) withActor(ctx context.Context) context.Context {
	if c.actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx, api.ActorMetadataKey, c.actor.String())
}
