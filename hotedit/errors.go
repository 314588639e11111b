package hotedit

import (
	"errors"
	"fmt"
)

// Kind classifies a failed edit. Every kind is terminal.
type Kind int

const (
	// EditorResolutionFailed means a custom EditorFinder reported failure.
	EditorResolutionFailed Kind = iota + 1
	// InvalidEditorCommand means the editor string did not tokenise or was empty.
	InvalidEditorCommand
	// BufferCreationFailed means the scratch file could not be created or seeded.
	BufferCreationFailed
	// LaunchFailed means the editor could not be started (or, in strict mode, exited non-zero).
	LaunchFailed
	// HarvestFailed means the scratch file could not be reread, decoded or released.
	HarvestFailed
	// UnchangedError means validation was requested and the text came back identical.
	UnchangedError
)

func (k Kind) String() string {
	switch k {
	case EditorResolutionFailed:
		return "editor resolution failed"
	case InvalidEditorCommand:
		return "invalid editor command"
	case BufferCreationFailed:
		return "buffer creation failed"
	case LaunchFailed:
		return "launch failed"
	case HarvestFailed:
		return "harvest failed"
	case UnchangedError:
		return "unchanged"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by every failed Invoke.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	if e.Kind == UnchangedError {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrEditorResolution = &Error{Kind: EditorResolutionFailed}
	ErrInvalidCommand   = &Error{Kind: InvalidEditorCommand}
	ErrBufferCreation   = &Error{Kind: BufferCreationFailed}
	ErrLaunch           = &Error{Kind: LaunchFailed}
	ErrHarvest          = &Error{Kind: HarvestFailed}
	ErrUnchanged        = &Error{Kind: UnchangedError, Err: errNotChanged}
)

// errNotChanged is the cause carried by UnchangedError.
var errNotChanged = errors.New("editing operation did not change the contents")

// KindOf extracts the kind of a hotedit error.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

func wrap(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}
