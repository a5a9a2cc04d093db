// Package ui provides colored console output for human-facing messages.
// Messages go to stderr so stdout stays reserved for command output such as
// patched manifests.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	// Colors
	Red    = color.New(color.FgRed)
	Green  = color.New(color.FgGreen)
	Yellow = color.New(color.FgYellow)
	Blue   = color.New(color.FgBlue)
	Bold   = color.New(color.Bold)
)

var output io.Writer = os.Stderr

// SetOutput redirects messages to w and returns a func restoring the
// previous writer.
func SetOutput(w io.Writer) func() {
	prev := output
	output = w
	return func() { output = prev }
}

// Configure enables or disables colour. Colour is off when disabled is set,
// when NO_COLOR is present or when stderr is not a terminal.
func Configure(disabled bool) {
	_, noColorEnv := os.LookupEnv("NO_COLOR")
	color.NoColor = disabled || noColorEnv || !term.IsTerminal(int(os.Stderr.Fd()))
}

// Success prints a green success message with checkmark.
func Success(format string, args ...any) {
	Green.Fprintf(output, "✓ "+format+"\n", args...)
}

// Error prints a red error message with X.
func Error(format string, args ...any) {
	Red.Fprintf(output, "✗ "+format+"\n", args...)
}

// Warning prints a yellow warning message.
func Warning(format string, args ...any) {
	Yellow.Fprintf(output, "⚠ "+format+"\n", args...)
}

// Info prints a blue info message.
func Info(format string, args ...any) {
	Blue.Fprintf(output, format+"\n", args...)
}

// Header prints a bold header.
func Header(format string, args ...any) {
	Bold.Fprintf(output, format+"\n", args...)
}

// Plain prints an uncoloured line.
func Plain(format string, args ...any) {
	fmt.Fprintf(output, format+"\n", args...)
}
