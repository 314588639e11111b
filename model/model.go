package model

// Result describes a finished edit.
type Result struct {
	// Text is the harvested content of the scratch buffer.
	Text string
	// Path is where the scratch buffer lived. It only exists on disk when Kept is set.
	Path string
	Kept bool
	// ExitCode of the editor. Non-zero codes are informational unless strict mode is on.
	ExitCode int
}
