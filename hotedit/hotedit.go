package hotedit

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sokinpui/hotedit/internal/buffer"
	"github.com/sokinpui/hotedit/internal/editor"
	"github.com/sokinpui/hotedit/internal/launcher"
	"github.com/sokinpui/hotedit/model"
)

// Result describes a finished edit.
type Result = model.Result

// EditorFinder returns the editor command line to run.
type EditorFinder func() (string, error)

// Launcher runs an editor on path and blocks until the user is done.
// command is the tokenised editor command; path must be passed to it as the
// last argument. The returned exit code is informational.
type Launcher interface {
	Launch(command []string, path string) (int, error)
}

// LauncherFunc adapts a function to the Launcher interface.
type LauncherFunc func(command []string, path string) (int, error)

// Launch calls f(command, path).
func (f LauncherFunc) Launch(command []string, path string) (int, error) {
	return f(command, path)
}

// Config for an edit session. The zero value validates nothing, deletes the
// scratch file afterwards and discovers the editor with DetermineEditor.
type Config struct {
	// Fail with UnchangedError when the edited text equals the initial text.
	ValidateUnchanged bool
	// Keep the scratch file on disk instead of deleting it.
	KeepTemp bool
	// Custom editor discovery. Its failure aborts the edit.
	FindEditor EditorFinder
	// Custom launcher, e.g. a remote Neovim. Defaults to a child process.
	Launcher Launcher
	// Treat a non-zero editor exit status as LaunchFailed.
	StrictExit bool
	// Directory for the scratch file. Defaults to the platform temp dir.
	TempDir string

	// Streams for the default launcher. Nil means inherit.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Logger logrus.FieldLogger
}

// Session is a configured hot edit. It holds no mutable state, so one
// Session may be invoked repeatedly and concurrently.
type Session struct {
	cfg Config
	log logrus.FieldLogger
}

// New creates a new Session.
func New(cfg Config) *Session {
	log := cfg.Logger
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Session{cfg: cfg, log: log}
}

// DetermineEditor inspects git's core.editor, $EDITOR and $VISUAL, in that
// order, and falls back to vi. It never returns an error.
func DetermineEditor() (string, error) {
	return editor.NewResolver().Resolve(), nil
}

// Invoke launches the editor on initial and returns the edited text.
func (s *Session) Invoke(initial string) (string, error) {
	res, err := s.InvokeResult(initial)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// InvokeResult is Invoke with metadata about the scratch file and the
// editor's exit status.
func (s *Session) InvokeResult(initial string) (res Result, err error) {
	raw, err := s.findEditor()
	if err != nil {
		return res, wrap(EditorResolutionFailed, err)
	}

	cmd, err := launcher.Parse(raw)
	if err != nil {
		return res, wrap(InvalidEditorCommand, err)
	}
	log := s.log.WithField("editor", cmd.String())

	buf, err := buffer.Seed(s.cfg.TempDir, initial)
	if err != nil {
		return res, wrap(BufferCreationFailed, err)
	}
	persist := s.cfg.KeepTemp
	defer func() {
		// No-op after a successful harvest; covers every early return.
		if rerr := buf.Release(persist); rerr != nil && err == nil {
			err = wrap(HarvestFailed, rerr)
		}
	}()
	res.Path = buf.Path()
	log = log.WithField("path", res.Path)
	log.Debug("launching editor")

	res.ExitCode, err = s.launch(cmd, res.Path)
	if err != nil {
		return res, wrap(LaunchFailed, err)
	}
	log = log.WithField("exit_code", res.ExitCode)
	if res.ExitCode != 0 {
		log.Debug("editor exited with non-zero status")
	}

	res.Text, err = buf.Harvest(persist)
	if err != nil {
		return Result{Path: res.Path, ExitCode: res.ExitCode}, wrap(HarvestFailed, err)
	}
	res.Kept = persist
	log.WithField("kept", persist).Debug("harvested scratch buffer")

	if s.cfg.ValidateUnchanged && res.Text == initial {
		return res, wrap(UnchangedError, errNotChanged)
	}
	return res, nil
}

func (s *Session) findEditor() (raw string, err error) {
	find := s.cfg.FindEditor
	if find == nil {
		find = DetermineEditor
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("editor finder panicked: %v", r)
		}
	}()
	return find()
}

func (s *Session) launch(cmd launcher.Command, path string) (code int, err error) {
	if s.cfg.Launcher == nil {
		e := launcher.Exec{
			Stdin:  s.cfg.Stdin,
			Stdout: s.cfg.Stdout,
			Stderr: s.cfg.Stderr,
			Strict: s.cfg.StrictExit,
		}
		return e.Run(cmd, path)
	}

	defer func() {
		if r := recover(); r != nil {
			code, err = -1, fmt.Errorf("launcher panicked: %v", r)
		}
	}()
	code, err = s.cfg.Launcher.Launch(cmd, path)
	if err == nil && code != 0 && s.cfg.StrictExit {
		err = fmt.Errorf("%w: %d", launcher.ErrExitStatus, code)
	}
	return code, err
}

// IsUnchanged reports whether err is an UnchangedError.
func IsUnchanged(err error) bool {
	return errors.Is(err, ErrUnchanged)
}
