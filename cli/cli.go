package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"
)

// Config holds all the command-line flag values.
type Config struct {
	ValidateUnchanged bool
	KeepTemp          bool
	Editor            string
	Strict            bool
	TempDir           string
	FromClipboard     bool
	ToClipboard       bool
	Review            bool
	Nvim              bool
	Verbose           bool
	// Positional arguments; the first is the initial text.
	Args []string
}

// ParseFlags defines and parses command-line flags using pflag.
func ParseFlags(args []string, output io.Writer) (*Config, error) {
	cfg := &Config{}
	flags := pflag.NewFlagSet("hotedit", pflag.ContinueOnError)
	flags.SetOutput(output)

	// Define flags
	flags.BoolVarP(&cfg.ValidateUnchanged, "validate-unchanged", "u", false, "Fail when the text is saved without changes.")
	flags.BoolVarP(&cfg.KeepTemp, "keep-temp", "k", false, "Keep the scratch file on disk instead of deleting it.")
	flags.StringVarP(&cfg.Editor, "editor", "e", "", "Editor command to run (default: git core.editor, $EDITOR, $VISUAL, vi).")
	flags.BoolVar(&cfg.Strict, "strict", false, "Treat a non-zero editor exit status as a failed edit.")
	flags.StringVar(&cfg.TempDir, "temp-dir", "", "Directory for the scratch file (default: system temp dir).")
	flags.BoolVarP(&cfg.FromClipboard, "from-clipboard", "c", false, "Read the initial text from the clipboard.")
	flags.BoolVarP(&cfg.ToClipboard, "to-clipboard", "C", false, "Copy the edited text to the clipboard.")
	flags.BoolVarP(&cfg.Review, "review", "r", false, "Review the result and optionally edit again before accepting it. With -u, every pass is compared to the original text.")
	flags.BoolVar(&cfg.Nvim, "nvim", false, "Edit in the Neovim instance that owns this terminal ($NVIM).")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Log editor and scratch file details to stderr.")

	flags.Usage = func() {
		fmt.Fprintln(output, "Usage: hotedit [flags] <initial text>")
		fmt.Fprintln(output, "\nOpen an editor on the initial text and print the edited result.")
		fmt.Fprintln(output, "\nExample: hotedit -u \"fix: \"")
		fmt.Fprintln(output, "\nFlags:")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	// Validate mutually exclusive flags
	if cfg.Review && cfg.Nvim {
		return nil, errors.New("error: --review and --nvim are mutually exclusive")
	}

	cfg.Args = flags.Args()
	return cfg, nil
}
