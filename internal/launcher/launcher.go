package launcher

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/kballard/go-shellquote"
)

var (
	// ErrParse reports a command string that cannot be tokenised.
	ErrParse = errors.New("couldn't split editor args")
	// ErrEmptyCommand reports a command string without any token.
	ErrEmptyCommand = errors.New("empty command")
	// ErrSpawn reports an editor process that could not be started.
	ErrSpawn = errors.New("failed to start editor")
	// ErrExitStatus reports a non-zero exit in strict mode.
	ErrExitStatus = errors.New("editor exited with non-zero status")
)

// Command is a tokenised editor command line. The first token is the executable.
type Command []string

// Parse splits raw using POSIX shell quoting rules.
func Parse(raw string) (Command, error) {
	words, err := shellquote.Split(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(words) == 0 {
		return nil, ErrEmptyCommand
	}
	return Command(words), nil
}

// Name returns the executable.
func (c Command) Name() string {
	return c[0]
}

// Args returns the arguments following the executable.
func (c Command) Args() []string {
	return c[1:]
}

// With returns a copy of the command with extra appended as the last argument.
func (c Command) With(extra string) Command {
	argv := make(Command, 0, len(c)+1)
	argv = append(argv, c...)
	return append(argv, extra)
}

func (c Command) String() string {
	return shellquote.Join(c...)
}

// Exec runs editors as child processes. Nil streams are inherited from the
// current process so the editor can be fully interactive.
type Exec struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Strict turns a non-zero exit status into ErrExitStatus.
	Strict bool
}

// Run starts cmd with path appended and blocks until the editor exits. The
// exit code is returned; a non-zero code is not an error unless Strict is set.
func (e Exec) Run(cmd Command, path string) (int, error) {
	if len(cmd) == 0 {
		return -1, ErrEmptyCommand
	}
	argv := cmd.With(path)

	c := exec.Command(argv.Name(), argv.Args()...)
	c.Stdin = e.Stdin
	if c.Stdin == nil {
		c.Stdin = os.Stdin
	}
	c.Stdout = e.Stdout
	if c.Stdout == nil {
		c.Stdout = os.Stdout
	}
	c.Stderr = e.Stderr
	if c.Stderr == nil {
		c.Stderr = os.Stderr
	}

	if err := c.Start(); err != nil {
		return -1, fmt.Errorf("%w '%s': %v", ErrSpawn, argv.Name(), err)
	}

	err := c.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return 0, nil
	case errors.As(err, &exitErr):
		code := exitErr.ExitCode()
		if e.Strict {
			return code, fmt.Errorf("%w: %d", ErrExitStatus, code)
		}
		return code, nil
	default:
		return -1, fmt.Errorf("failed waiting for editor '%s': %w", argv.Name(), err)
	}
}
