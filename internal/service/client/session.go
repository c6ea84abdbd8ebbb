package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/common"
)

// Options configures how the CLI reaches the daemon.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// ServerAddress overrides the daemon gRPC address from config when specified.
	ServerAddress string

	// Output receives command output. Defaults to stdout.
	Output io.Writer
}

// API is the part of the daemon client the commands use.
type API interface {
	ListAlarms(ctx context.Context) ([]*domain.Alarm, error)
	AddAlarm(ctx context.Context, timeInput, label string, durationMinutes int) (*domain.Alarm, error)
	SetEnabled(ctx context.Context, id string, enabled bool) error
	DeleteAlarm(ctx context.Context, id string) error
	GetAlert(ctx context.Context) (*domain.Alert, error)
	SnoozeAlarm(ctx context.Context) (*domain.Alarm, error)
	DismissAlarm(ctx context.Context) error
	Watch(ctx context.Context, fn func(*api.Event) error) error
}

// Console runs commands against the daemon and prints their results.
type Console struct {
	api API
	out io.Writer
	now func() time.Time
}

// NewConsole creates a console writing to out.
func NewConsole(client API, out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}

	return &Console{
		api: client,
		out: out,
		now: time.Now,
	}
}

// Run connects to the daemon and calls fn with a ready console.
func Run(ctx context.Context, opts *Options, fn func(context.Context, *Console) error) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clock")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}

	if err := logger.Configure(cfg.LogLevel); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	serverAddress := cfg.GRPCAddress
	if opts.ServerAddress != "" {
		serverAddress = opts.ServerAddress
	}

	// Identify current user and hostname for the daemon's audit log.
	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	client, err := common.Dial(
		ctx,
		serverAddress,
		common.WithCallTimeout(cfg.Timeout),
		common.WithActor(actor),
	)
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Connected to alarm daemon", "server_address", serverAddress, "actor", actor.String())

	return fn(ctx, NewConsole(client, opts.Output))
}
