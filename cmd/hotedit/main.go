package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/sokinpui/hotedit/cli"
	"github.com/sokinpui/hotedit/hotedit"
	"github.com/sokinpui/hotedit/internal/nvim"
	"github.com/sokinpui/hotedit/internal/source"
	"github.com/sokinpui/hotedit/internal/tui"
	"github.com/sokinpui/hotedit/internal/ui"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := cli.ParseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	sp := &source.Provider{Args: cfg.Args, Clipboard: cfg.FromClipboard}
	initial, err := sp.GetContent()
	if err != nil {
		if errors.Is(err, source.ErrNotEnoughArguments) {
			ui.PrintNotEnoughArguments(stdout)
		} else {
			ui.PrintBadEdit(stdout, err)
		}
		return 1
	}

	sessionCfg := newSessionConfig(cfg, stderr)

	var text string
	if cfg.Review {
		text, err = tui.Run(sessionCfg, initial)
	} else {
		var res hotedit.Result
		res, err = hotedit.New(sessionCfg).InvokeResult(initial)
		text = res.Text
		if err == nil && res.Kept {
			ui.Info("Scratch file kept at %s", res.Path)
		}
	}
	if err != nil {
		ui.PrintBadEdit(stdout, err)
		return 1
	}

	ui.PrintResult(stdout, text)

	if cfg.ToClipboard {
		if err := source.CopyResult(text); err != nil {
			ui.Warning("%v", err)
		}
	}
	return 0
}

func newSessionConfig(cfg *cli.Config, stderr io.Writer) hotedit.Config {
	sessionCfg := hotedit.Config{
		ValidateUnchanged: cfg.ValidateUnchanged,
		KeepTemp:          cfg.KeepTemp,
		StrictExit:        cfg.Strict,
		TempDir:           cfg.TempDir,
	}

	if cfg.Verbose {
		logger := logrus.New()
		logger.SetOutput(stderr)
		logger.SetLevel(logrus.DebugLevel)
		sessionCfg.Logger = logger
	}

	if cfg.Editor != "" {
		editorCmd := cfg.Editor
		sessionCfg.FindEditor = func() (string, error) { return editorCmd, nil }
	}

	if cfg.Nvim {
		if addr := nvim.Addr(); addr != "" {
			sessionCfg.Launcher = nvim.Remote{Addr: addr}
		} else {
			ui.Warning("--nvim: $NVIM is not set, launching the editor directly")
		}
	}

	return sessionCfg
}
