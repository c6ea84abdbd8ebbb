package alarm

import (
	"context"
	"errors"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/clock"
)

// Service abstracts the alarm store operations the transport layer depends on.
type Service interface {
	Alarms() []*domain.Alarm
	CurrentAlert() *domain.Alert
	Snapshot() clock.Event
	Now() time.Time
	AddAlarm(ctx context.Context, a *domain.Alarm) error
	ToggleAlarm(ctx context.Context, id string, enabled bool) error
	DeleteAlarm(ctx context.Context, id string) error
	SnoozeAlarm(ctx context.Context) (*domain.Alarm, error)
	DismissAlarm(ctx context.Context) error
	Subscribe(ctx context.Context) *clock.Subscription
}

// Server implements the AlarmClock gRPC API.
type Server struct {
	// service provides the alarm store operations.
	service Service
}

var _ AlarmClockServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// ListAlarms returns the alarm list in display order.
func (s *Server) ListAlarms(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return AlarmsToList(domain.SortForDisplay(s.service.Alarms()), s.service.Now()), nil
}

// AddAlarm validates the request and appends a new enabled alarm.
func (s *Server) AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	a, err := domain.FromInput(
		stringField(req, FieldTime),
		stringField(req, FieldLabel),
		boolField(req, FieldHasDuration),
		int(numberField(req, FieldDurationMinutes)),
	)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if err := s.service.AddAlarm(ctx, a); err != nil {
		return nil, toStatus(err)
	}

	return AlarmToStruct(a, s.service.Now()), nil
}

// ToggleAlarm sets the enabled flag of an alarm. Unknown ids are ignored.
func (s *Server) ToggleAlarm(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	id := stringField(req, FieldID)
	if id == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	enabled, ok := req.GetFields()[FieldEnabled].GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "enabled is required")
	}

	if err := s.service.ToggleAlarm(ctx, id, enabled.BoolValue); err != nil {
		return nil, toStatus(err)
	}

	return new(emptypb.Empty), nil
}

// DeleteAlarm removes an alarm. Unknown ids are ignored.
func (s *Server) DeleteAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	if err := s.service.DeleteAlarm(ctx, req.GetValue()); err != nil {
		return nil, toStatus(err)
	}

	return new(emptypb.Empty), nil
}

// GetAlert returns the active alert.
func (s *Server) GetAlert(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return AlertToStruct(s.service.CurrentAlert(), s.service.Now()), nil
}

// SnoozeAlarm snoozes the active alert. With no active alert it returns an empty struct.
func (s *Server) SnoozeAlarm(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	snoozed, err := s.service.SnoozeAlarm(ctx)

	switch {
	case err != nil:
		return nil, toStatus(err)
	case snoozed == nil:
		return new(structpb.Struct), nil
	default:
		return AlarmToStruct(snoozed, s.service.Now()), nil
	}
}

// DismissAlarm dismisses the active alert.
func (s *Server) DismissAlarm(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	if err := s.service.DismissAlarm(ctx); err != nil {
		return nil, toStatus(err)
	}

	return new(emptypb.Empty), nil
}

// Watch streams a snapshot followed by every store event until the client
// goes away. A client that falls behind gets Aborted and should reconnect.
func (s *Server) Watch(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := logger.WithName(stream.Context(), "watch")

	// Subscribe before the snapshot so no change slips in between.
	sub := s.service.Subscribe(ctx)
	defer sub.Close()

	if err := stream.Send(storeEventToStruct(s.service.Snapshot())); err != nil {
		return err
	}

	logger.Debug(ctx, "Watcher connected")

	for event := range sub.C() {
		if err := stream.Send(storeEventToStruct(event)); err != nil {
			return err
		}
	}

	if ctx.Err() != nil {
		logger.Debug(ctx, "Watcher disconnected")

		return nil
	}

	logger.WarnKV(ctx, "Watcher fell behind, closing stream")

	return status.Error(codes.Aborted, "watcher fell behind")
}

// toStatus maps store errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, clock.ErrDuplicateID):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, clock.ErrNilAlarm):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "unable to persist alarms")
	}
}
