// Package ui provides colored console output.
//
// Messages go to Output, which is stderr by default so that manifests
// written to stdout can be piped.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// Output receives every message.
var Output io.Writer = color.Error

var (
	// Colors
	Red    = color.New(color.FgRed)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Blue   = color.New(color.FgBlue)
	Cyan   = color.New(color.FgCyan)
	Bold   = color.New(color.Bold)
	Faint  = color.New(color.Faint)
)

// Success prints a green success message with checkmark.
func Success(format string, args ...any) {
	Green.Fprintf(Output, "✓ "+format+"\n", args...)
}

// Error prints a red error message with X.
func Error(format string, args ...any) {
	Red.Fprintf(Output, "✗ "+format+"\n", args...)
}

// Warning prints a yellow warning message.
func Warning(format string, args ...any) {
	Yellow.Fprintf(Output, "⚠ "+format+"\n", args...)
}

// Info prints a blue info message.
func Info(format string, args ...any) {
	Blue.Fprintf(Output, format+"\n", args...)
}

// Step prints a numbered step in cyan.
func Step(n int, format string, args ...any) {
	Cyan.Fprintf(Output, "[%d] ", n)
	fmt.Fprintf(Output, format+"\n", args...)
}

// Header prints a bold header.
func Header(format string, args ...any) {
	Bold.Fprintf(Output, format+"\n", args...)
}

// Item prints an indented list entry.
func Item(format string, args ...any) {
	fmt.Fprintf(Output, "  • "+format+"\n", args...)
}

// LogLine writes one structured log line. Its signature matches the funcr
// sink so it can back a logr.Logger.
func LogLine(prefix, args string) {
	if prefix != "" {
		Faint.Fprintf(Output, "%s: %s\n", prefix, args)
		return
	}
	Faint.Fprintln(Output, args)
}

// Fatal prints an error and exits.
func Fatal(format string, args ...any) {
	Error(format, args...)
	os.Exit(1)
}
