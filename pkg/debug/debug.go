// Package debug provides conditional debug logging for treeselect.
//
// Debug logging is enabled by setting the TREESELECT_DEBUG environment variable:
//
//	TREESELECT_DEBUG=1 treeselect options.yaml 2>debug.log
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops.
package debug

import (
	"io"
	"log"
	"os"
	"time"
)

var (
	// enabled is true when TREESELECT_DEBUG env var is set
	enabled bool
	// logger writes to stderr with [TREESELECT_DEBUG] prefix
	logger *log.Logger
)

const prefix = "[TREESELECT_DEBUG] "

func init() {
	if os.Getenv("TREESELECT_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, prefix, log.Ltime|log.Lmicroseconds)
	}
}

// SetOutput redirects debug output. A bubbletea program owns stderr's
// terminal, so the CLI points this at a file instead.
func SetOutput(w io.Writer) {
	if logger == nil {
		logger = log.New(w, prefix, log.Ltime|log.Lmicroseconds)
		return
	}
	logger.SetOutput(w)
}

// Log writes a debug message if debug logging is enabled.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Printf(format, args...)
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if !enabled {
		return
	}
	logger.Printf("%s took %v", name, d)
}

// Dump logs a value with its type for debugging complex structures.
func Dump(name string, v any) {
	if !enabled {
		return
	}
	logger.Printf("%s: %T = %+v", name, v, v)
}
