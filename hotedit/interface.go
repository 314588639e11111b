package hotedit

// Edit opens the configured editor on initial and returns the edited text.
// It is the single entry point wrapped by the CLI and other front ends.
func Edit(initial string, config Config) (string, error) {
	return New(config).Invoke(initial)
}
