// Package obs carries the ambient observability concerns used across
// stabkit: env-gated debug logging, step timing, and global operation
// counters. Debug logging is off unless STABKIT_DEBUG=1; Track and Count
// record on every call.
package obs

import (
	"fmt"
	"io"
	"os"
)

var debugOn = os.Getenv("STABKIT_DEBUG") == "1"

// Debugf writes a formatted diagnostic line to w iff STABKIT_DEBUG=1.
func Debugf(w io.Writer, f string, a ...any) {
	if debugOn {
		fmt.Fprintf(w, f, a...)
	}
}

// DebugEnabled reports whether STABKIT_DEBUG=1 was set at process start.
func DebugEnabled() bool {
	return debugOn
}
