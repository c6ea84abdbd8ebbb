package alarm

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "alarmclock.v1.AlarmClock"

// Method names of the AlarmClock service.
const (
	MethodListAlarms   = "ListAlarms"
	MethodAddAlarm     = "AddAlarm"
	MethodToggleAlarm  = "ToggleAlarm"
	MethodDeleteAlarm  = "DeleteAlarm"
	MethodGetAlert     = "GetAlert"
	MethodSnoozeAlarm  = "SnoozeAlarm"
	MethodDismissAlarm = "DismissAlarm"
	MethodWatch        = "Watch"
)

// FullMethod returns the "/service/method" path of a method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AlarmClockServer is the server API of the AlarmClock service.
// Messages are protobuf well-known types; their fields are described in codec.go.
type AlarmClockServer interface {
	ListAlarms(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	ToggleAlarm(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error)
	DeleteAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error)
	GetAlert(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	SnoozeAlarm(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	DismissAlarm(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	Watch(req *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error
}

// AlarmClockServiceDesc describes the AlarmClock service for grpc.Server.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var AlarmClockServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmClockServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodListAlarms, func(s AlarmClockServer, ctx context.Context, req *emptypb.Empty) (any, error) {
			return s.ListAlarms(ctx, req)
		}),
		unary(MethodAddAlarm, func(s AlarmClockServer, ctx context.Context, req *structpb.Struct) (any, error) {
			return s.AddAlarm(ctx, req)
		}),
		unary(MethodToggleAlarm, func(s AlarmClockServer, ctx context.Context, req *structpb.Struct) (any, error) {
			return s.ToggleAlarm(ctx, req)
		}),
		unary(MethodDeleteAlarm, func(s AlarmClockServer, ctx context.Context, req *wrapperspb.StringValue) (any, error) {
			return s.DeleteAlarm(ctx, req)
		}),
		unary(MethodGetAlert, func(s AlarmClockServer, ctx context.Context, req *emptypb.Empty) (any, error) {
			return s.GetAlert(ctx, req)
		}),
		unary(MethodSnoozeAlarm, func(s AlarmClockServer, ctx context.Context, req *emptypb.Empty) (any, error) {
			return s.SnoozeAlarm(ctx, req)
		}),
		unary(MethodDismissAlarm, func(s AlarmClockServer, ctx context.Context, req *emptypb.Empty) (any, error) {
			return s.DismissAlarm(ctx, req)
		}),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    MethodWatch,
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
	Metadata: "alarmclock/v1/alarm_clock.proto",
}

// RegisterAlarmClockServer registers srv on the given registrar.
func RegisterAlarmClockServer(registrar grpc.ServiceRegistrar, srv AlarmClockServer) {
	registrar.RegisterService(&AlarmClockServiceDesc, srv)
}

// unary builds a method descriptor that decodes Req and dispatches to call,
// honoring a configured interceptor.
func unary[Req any](method string, call func(AlarmClockServer, context.Context, *Req) (any, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}

			server, _ := srv.(AlarmClockServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(method),
			}

			handler := func(ctx context.Context, req any) (any, error) {
				typed, _ := req.(*Req)

				return call(server, ctx, typed)
			}

			return interceptor(ctx, in, info, handler)
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	server, _ := srv.(AlarmClockServer)

	return server.Watch(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

// AlarmClockClient is the client API of the AlarmClock service.
type AlarmClockClient struct {
	cc grpc.ClientConnInterface
}

// NewAlarmClockClient creates a client on top of an established connection.
func NewAlarmClockClient(cc grpc.ClientConnInterface) *AlarmClockClient {
	return &AlarmClockClient{cc: cc}
}

// ListAlarms returns the alarms in display order.
func (c *AlarmClockClient) ListAlarms(ctx context.Context, opts ...grpc.CallOption) (*structpb.ListValue, error) {
	out := new(structpb.ListValue)
	if err := c.cc.Invoke(ctx, FullMethod(MethodListAlarms), new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// AddAlarm creates an alarm from the request fields and returns it.
func (c *AlarmClockClient) AddAlarm(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(MethodAddAlarm), req, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// ToggleAlarm sets the enabled flag of an alarm.
func (c *AlarmClockClient) ToggleAlarm(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, FullMethod(MethodToggleAlarm), req, new(emptypb.Empty), opts...)
}

// DeleteAlarm removes an alarm by id.
func (c *AlarmClockClient) DeleteAlarm(ctx context.Context, id string, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, FullMethod(MethodDeleteAlarm), wrapperspb.String(id), new(emptypb.Empty), opts...)
}

// GetAlert returns the active alert.
func (c *AlarmClockClient) GetAlert(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(MethodGetAlert), new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// SnoozeAlarm snoozes the active alert and returns the new alarm.
func (c *AlarmClockClient) SnoozeAlarm(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, FullMethod(MethodSnoozeAlarm), new(emptypb.Empty), out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// DismissAlarm dismisses the active alert.
func (c *AlarmClockClient) DismissAlarm(ctx context.Context, opts ...grpc.CallOption) error {
	return c.cc.Invoke(ctx, FullMethod(MethodDismissAlarm), new(emptypb.Empty), new(emptypb.Empty), opts...)
}

// Watch opens a stream of store events, starting with a snapshot.
func (c *AlarmClockClient) Watch(
	ctx context.Context,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &AlarmClockServiceDesc.Streams[0], FullMethod(MethodWatch), opts...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.SendMsg(new(emptypb.Empty)); err != nil {
		return nil, err
	}

	if err := x.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}
