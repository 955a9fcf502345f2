package main

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

// stderrIsTerminal reports whether status lines should be printed. Status
// goes to stderr so JSON written to stdout stays machine readable.
func stderrIsTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func successText(msg string) string {
	return green("✓ ") + msg
}

func errorText(msg string) string {
	return red("✗ " + msg)
}
