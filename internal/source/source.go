package source

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrNotEnoughArguments reports that no initial text was given.
var ErrNotEnoughArguments = errors.New("not enough arguments")

// readClipboard is swapped out in tests.
var readClipboard = clipboard.ReadAll

// Provider determines and retrieves the initial text of an edit.
type Provider struct {
	// Positional command-line arguments; the first one is the initial text.
	Args []string
	// Read the initial text from the clipboard instead.
	Clipboard bool
}

// GetContent retrieves the initial text from the clipboard or the first argument.
func (p *Provider) GetContent() (string, error) {
	if p.Clipboard {
		content, err := readClipboard()
		if err != nil {
			return "", fmt.Errorf("failed to read from clipboard: %w", err)
		}
		return content, nil
	}

	if len(p.Args) < 1 {
		return "", ErrNotEnoughArguments
	}
	return p.Args[0], nil
}

// CopyResult puts edited text on the clipboard.
func CopyResult(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write to clipboard: %w", err)
	}
	return nil
}
