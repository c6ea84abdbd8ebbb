package alarm

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// ActorMetadataKey carries "user@host" of the caller for audit logging.
const ActorMetadataKey = "x-alarm-clock-actor"

// UnaryLoggingInterceptor names the request logger after the method and
// records who called it, how long it took and the resulting status code.
func UnaryLoggingInterceptor(
	ctx context.Context,
	req any,
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler,
) (any, error) {
	ctx = logger.WithKV(logger.WithName(ctx, "grpc"), "method", info.FullMethod, "actor", actorFromContext(ctx))

	started := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	if err != nil {
		logger.WarnKV(ctx, "Request failed", "code", code.String(), "elapsed", time.Since(started).String(), "error", err)
	} else {
		logger.DebugKV(ctx, "Request served", "code", code.String(), "elapsed", time.Since(started).String())
	}

	return resp, err
}

// StreamLoggingInterceptor records the lifetime of server streams.
func StreamLoggingInterceptor(srv any, stream grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx := logger.WithKV(logger.WithName(stream.Context(), "grpc"), "method", info.FullMethod, "actor", actorFromContext(stream.Context()))

	logger.DebugKV(ctx, "Stream opened")

	err := handler(srv, stream)

	logger.DebugKV(ctx, "Stream closed", "code", status.Code(err).String())

	return err
}

// actorFromContext reads the caller's actor from incoming metadata.
func actorFromContext(ctx context.Context) string {
	if values := metadata.ValueFromIncomingContext(ctx, ActorMetadataKey); len(values) > 0 {
		return values[0]
	}

	return "unknown"
}
