package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	InfoColor    = color.New(color.FgCyan)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
)

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

// --- Result output ---

// Lines splits text into lines. A trailing newline does not start a new
// line and a "\r" before "\n" is dropped.
func Lines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// PrintResult writes every line of the edited text prefixed with "> ".
func PrintResult(w io.Writer, text string) {
	for _, line := range Lines(text) {
		fmt.Fprintf(w, "> %s\n", line)
	}
}

// PrintBadEdit reports a failed edit.
func PrintBadEdit(w io.Writer, err error) {
	fmt.Fprintf(w, "** bad edit: %v\n", err)
}

// PrintNotEnoughArguments reports a missing initial text.
func PrintNotEnoughArguments(w io.Writer) {
	fmt.Fprintln(w, "** not enough arguments")
}
