package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	grpcapi "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	httpapi "github.com/oshokin/alarm-clock/internal/api/http/alarm"
	"github.com/oshokin/alarm-clock/internal/config"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/repository/alarms"
	"github.com/oshokin/alarm-clock/internal/repository/kv"
	"github.com/oshokin/alarm-clock/internal/service/clock"
	"github.com/oshokin/alarm-clock/internal/service/sound"
)

const (
	// shutdownTimeout bounds graceful shutdown of both servers.
	shutdownTimeout = 5 * time.Second
	// readHeaderTimeout bounds reading HTTP request headers.
	readHeaderTimeout = 5 * time.Second
)

// Options controls the alarm-clockd process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress overrides the gRPC listen address from the config.
	ListenAddress string
	// HTTPAddress overrides the HTTP listen address from the config.
	HTTPAddress string
	// StoragePath overrides the storage location from the config.
	StoragePath string
	// SkipProcessGuard allows several daemons on one host, for tests.
	SkipProcessGuard bool
}

// ErrNoListenAddress indicates missing listen configuration.
var ErrNoListenAddress = errors.New("no listen address configured")

// Run starts the polling loop and both transports, and blocks until ctx is
// canceled or one of them fails.
//
//nolint:funlen // Linear wiring of the daemon.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clockd")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if err := logger.Configure(settings.LogLevel); err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	if !opts.SkipProcessGuard {
		if err := ensureSingleInstance(); err != nil {
			return err
		}
	}

	grpcAddress, err := resolveListenAddress(settings.GRPCAddress, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve gRPC address: %w", err)
	}

	httpAddress, err := resolveListenAddress(settings.HTTPAddress, opts.HTTPAddress)
	if err != nil {
		return fmt.Errorf("resolve HTTP address: %w", err)
	}

	storagePath := settings.Storage.Path
	if opts.StoragePath != "" {
		storagePath = opts.StoragePath
	}

	storage, err := kv.Open(settings.Storage.Driver, storagePath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	defer func() {
		if err := storage.Close(); err != nil {
			logger.ErrorKV(ctx, "Failed to close storage", "error", err)
		}
	}()

	store := clock.New(
		ctx,
		alarms.NewKVRepository(storage),
		clock.WithPlayer(newPlayer(ctx, settings.Sound)),
		clock.WithPollInterval(settings.PollInterval),
		clock.WithSnoozeInterval(settings.Snooze),
	)

	lc := net.ListenConfig{}

	grpcListener, err := lc.Listen(ctx, "tcp", grpcAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", grpcAddress, err)
	}

	httpListener, err := lc.Listen(ctx, "tcp", httpAddress)
	if err != nil {
		_ = grpcListener.Close()

		return fmt.Errorf("listen on %s: %w", httpAddress, err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(grpcapi.UnaryLoggingInterceptor),
		grpc.ChainStreamInterceptor(grpcapi.StreamLoggingInterceptor),
	)
	grpcapi.RegisterAlarmClockServer(grpcServer, grpcapi.NewServer(store))

	//nolint:exhaustruct // Remaining fields keep their defaults.
	httpServer := &http.Server{
		Handler:           httpapi.NewHandler(store, settings.CORSOrigins),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	logger.InfoKV(
		ctx,
		"Alarm daemon listening",
		"grpc_address", grpcListener.Addr().String(),
		"http_address", httpListener.Addr().String(),
		"storage_driver", settings.Storage.Driver,
		"storage_path", storagePath,
	)

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return store.Run(groupCtx)
	})

	group.Go(func() error {
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve gRPC: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve HTTP: %w", err)
		}

		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()

		logger.Info(ctx, "Shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		stopGRPC(shutdownCtx, grpcServer)

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.ErrorKV(ctx, "HTTP shutdown failed", "error", err)
		}

		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info(ctx, "Alarm daemon stopped")

	return nil
}

// stopGRPC stops gracefully, then forcefully once ctx expires.
// Open Watch streams only end when their clients leave.
func stopGRPC(ctx context.Context, server *grpc.Server) {
	done := make(chan struct{})

	go func() {
		server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		server.Stop()
		<-done
	}
}

// newPlayer builds the sound player from settings.
// Without a usable command alerts stay silent.
func newPlayer(ctx context.Context, settings config.Sound) clock.Player {
	command := settings.CommandLine()
	if command == nil {
		var err error

		command, err = sound.DefaultCommand(settings.File)
		if err != nil {
			logger.WarnKV(ctx, "No sound command available, alerts will be silent", "error", err)

			return nil
		}
	}

	player, err := sound.New(command)
	if err != nil {
		logger.WarnKV(ctx, "Invalid sound command, alerts will be silent", "error", err)

		return nil
	}

	return player
}

// resolveListenAddress returns override when provided, otherwise the configured address.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		if _, _, err := net.SplitHostPort(override); err != nil {
			return "", fmt.Errorf("invalid listen address format %q: %w", override, err)
		}

		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoListenAddress
	}

	return configAddr, nil
}
