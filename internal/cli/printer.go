package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// success prints a green confirmation line.
func success(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ "+format+"\n", a...)
}

// warn prints a yellow caution line.
func warn(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "! "+format+"\n", a...)
}

// fail prints a bold red failure line.
func fail(w io.Writer, format string, a ...any) {
	red.Fprintf(w, "✗ "+format+"\n", a...)
}

// banner prints the cyan "Current contexts" header shared by list and
// resolve.
func banner(w io.Writer, contexts string, scope string) {
	cyan.Fprintf(w, "Current contexts: %s %s\n", contexts, scope)
}

// plain prints an uncolored line.
func plain(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, format+"\n", a...)
}
