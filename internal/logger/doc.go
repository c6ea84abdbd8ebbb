// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing for the settings file,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// Services receive a context and extract the logger from it, so the poller,
// the transports and the CLI all log under their own component names.
package logger
