// Package common holds helpers shared by the CLI commands.
//
// It provides a gRPC client wrapper for the AlarmClock service with per-call
// timeouts, and detection of the current system actor (user@host) that every
// call carries for the daemon's audit log.
//
//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common
