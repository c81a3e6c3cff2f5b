// Package log builds the application's slog loggers. All handlers mask
// credential-bearing attributes, since a crawler routinely logs request
// and response headers that may carry cookies or tokens.
package log
