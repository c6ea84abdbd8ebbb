// Package version exposes build metadata for the alarm clock binaries.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags. UserAgent tags gRPC and HTTP calls with the caller's binary.
package version
