// Package monitoring holds the controller's diagnostic logger: state
// transitions, command errors and watchdog timeouts all go through Logf
// rather than calling log.Printf directly, so a caller embedding the
// controller can redirect or silence it.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf
// but may be replaced by SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op
// logger, useful for quieting controller diagnostics in tests.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
