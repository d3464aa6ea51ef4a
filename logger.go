package fx

import (
	"log/slog"

	"github.com/gogpu/fx/internal/logger"
)

// SetLogger configures the logger for fx and all its sub-packages.
// By default, fx produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by fx:
//   - [slog.LevelDebug]: internal diagnostics (stage targets, pipeline cache, dropped attributes)
//   - [slog.LevelInfo]: lifecycle events (device opened, particle group initialized)
//   - [slog.LevelWarn]: non-fatal degradations (byte-packed state fallback)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	fx.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	fx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logger.Set(l)
}

// Logger returns the current logger used by fx.
// Sub-packages read the same logger through internal/logger, so they never
// import this package for logging.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logger.Get()
}
