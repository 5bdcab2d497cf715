// Package logger provides structured logging functionality for the
// application using Go's standard library log/slog package. Loggers are
// carried on the context so that request-scoped attributes (trace IDs,
// user IDs) follow the work they describe.
package logger
