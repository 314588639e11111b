package editor

import "testing"

// SetSystemConfigPaths replaces the system git config location for one test.
func SetSystemConfigPaths(t *testing.T, paths ...string) {
	t.Helper()
	orig := systemConfigPaths
	systemConfigPaths = func() ([]string, error) { return paths, nil }
	t.Cleanup(func() { systemConfigPaths = orig })
}
