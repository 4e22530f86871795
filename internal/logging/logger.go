// Package logging is the structured logger every OrionTask package writes
// through. The only implementation wraps log/slog.
package logging

import "context"

// Logger takes a message plus alternating key/value pairs:
//
//	log.Warn(ctx, "failed to fetch dharmas", "user_id", id, "error", err)
//
// Soft failures of read paths go to Warn, failed mutations to Error, and
// per-request HTTP traces to Debug.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record, e.g. the
	// component name.
	With(args ...any) Logger
}
