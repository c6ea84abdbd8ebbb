// Package client implements the alarm-clock CLI commands.
//
// Every command connects to the local alarm daemon over gRPC, performs one
// store operation and prints the result. The watch command keeps a live
// view of the clock, the alarm list and the ringing alert.
package client
