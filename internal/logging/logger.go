// Package logging is what the GameShelf server logs through. Handlers, the
// session sweeper and startup code depend on Logger only, so tests can hand
// them a logger that writes into a buffer.
package logging

import "context"

// Logger takes a message plus alternating attribute keys and values:
//
//	logger.Warn(ctx, "game update failed", "game_id", id, "error", err)
//
// Credentials never go into attributes. That covers passwords, password
// hashes and bearer tokens.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With binds attributes, typically "module", to every later line.
	With(args ...any) Logger
}
