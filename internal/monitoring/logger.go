// Package monitoring holds the process-wide diagnostic logger.
package monitoring

import (
	"fmt"
	"log"
	"sync"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Warnf logs through Logf with a WARNING prefix and returns the formatted
// message, so callers can also surface it to their own caller.
func Warnf(format string, v ...interface{}) string {
	msg := fmt.Sprintf(format, v...)
	Logf("WARNING %s", msg)
	return msg
}

// Recorder collects log lines in memory. Install it with
// SetLogger(rec.Logf) to assert on diagnostics.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

// Logf formats and stores one line.
func (r *Recorder) Logf(format string, v ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, v...))
}

// Lines returns a copy of the recorded lines.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}
