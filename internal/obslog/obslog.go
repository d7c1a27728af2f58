// Package obslog centralizes structured logging for the SBM inference core
// behind zerolog, the same library thebtf-engram wires for its services.
// Nothing outside this package imports zerolog directly, mirroring how
// lvlath/matrix hides its validateNaNInf policy behind options.go.
package obslog

import (
	"os"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var (
	once   sync.Once
	logger zerolog.Logger
	debug  atomic.Bool
)

func init() {
	once.Do(func() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
			With().Timestamp().Str("component", "sbm").Logger()
		logger = logger.Level(zerolog.InfoLevel)
	})
}

// Logger returns the package-wide logger. Safe for concurrent use; zerolog's
// Logger is immutable value-type, so callers may freely derive sub-loggers
// with .With().Str(...).Logger() without affecting this one.
func Logger() zerolog.Logger { return logger }

// SetDebug toggles debug-mode verbosity. In debug mode, InvariantFailure
// conditions (check_edge_counts / check_node_counts) abort via Assert instead
// of returning a bool, trading graceful degradation for a loud failure
// during development.
func SetDebug(on bool) {
	debug.Store(on)
	if on {
		logger = logger.Level(zerolog.DebugLevel)
	} else {
		logger = logger.Level(zerolog.InfoLevel)
	}
}

// DebugMode reports whether debug-mode assertions are active.
func DebugMode() bool { return debug.Load() }

// Assert aborts the process when debug mode is on and ok is false; in
// release mode it only logs a warning and lets the caller's bool result
// carry the failure, per InvariantFailure policy.
func Assert(ok bool, msg string, fields map[string]interface{}) {
	if ok {
		return
	}
	ev := logger.Warn()
	for k, v := range fields {
		ev = ev.Interface(k, v)
	}
	if debug.Load() {
		ev.Msg(msg)
		panic("sbm: invariant failure: " + msg)
	}
	ev.Msg(msg)
}
