// Package cli implements the deckforge command-line interface.
//
// This package provides commands for inspecting and editing PowerPoint
// template archives: theme colors and fonts, slide layout topology,
// color audits, and structural validation. The CLI is built using cobra
// and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main command groups are:
//   - info, validate, audit, dump-tree, graph: inspect an archive
//   - new, set-colors, set-fonts, set-theme-names, apply-palette: theme editing
//   - normalize, sanitize, set-master, set-layout, set-slide: part editing
//   - make-layout, auto-layout, prune-layouts, reindex-layouts: topology
//   - serve: run the JSON tool server
//
// # Storage
//
// Every path argument accepts a storage URI (file, mem, redis, mongodb,
// s3) in addition to plain filesystem paths, so archives can live in a
// shared backend.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
//
// # Example
//
//	import "github.com/deckforge/deckforge/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// ctxKey is the type for context keys used in this package.
// Using a distinct type prevents collisions with other packages.
type ctxKey int

const (
	loggerKey ctxKey = iota
	configKey
)

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
