// Package alarm implements the gRPC transport for the alarm clock.
//
// The AlarmClock service is described by hand with grpc.ServiceDesc and
// exchanges protobuf well-known types (Struct, ListValue, StringValue,
// Empty), so no generated code is needed. The package also holds the
// matching client and the conversions between domain types and messages.
package alarm
