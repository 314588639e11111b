package hotedit_test

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/hotedit/hotedit"
	"github.com/sokinpui/hotedit/internal/buffer"
)

const (
	noopEditor    = `sh -c : hotedit`
	appendEditor  = `sh -c 'printf "!" >> "$1"' hotedit`
	replaceEditor = `sh -c 'printf "replaced" > "$1.new" && mv "$1.new" "$1"' hotedit`
	binaryEditor  = `sh -c 'printf "\377\376" > "$1"' hotedit`
	deleteEditor  = `sh -c 'rm "$1"' hotedit`
	failingEditor = `sh -c 'printf "saved" > "$1"; exit 1' hotedit`
)

var samples = []string{
	"",
	"hello",
	"multi\nline\ntext\n",
	"windows\r\nline endings\r\n",
	`quotes "double" 'single' and $VARS; | & *`,
	"unicode: héllo wörld ✓ 日本語",
	strings.Repeat("long line ", 10000),
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func editorCmd(cmd string) hotedit.EditorFinder {
	return func() (string, error) { return cmd, nil }
}

// recordingLauncher leaves the file untouched and remembers its path.
type recordingLauncher struct {
	command []string
	path    string
	code    int
}

func (r *recordingLauncher) Launch(command []string, path string) (int, error) {
	r.command = command
	r.path = path
	return r.code, nil
}

func TestInvoke_RoundTrip(t *testing.T) {
	requireShell(t)

	for _, text := range samples {
		s := hotedit.New(hotedit.Config{FindEditor: editorCmd(noopEditor), TempDir: t.TempDir()})
		got, err := s.Invoke(text)
		require.NoError(t, err)
		assert.Equal(t, text, got)
	}
}

func TestInvoke_MutationVisible(t *testing.T) {
	requireShell(t)

	for _, text := range samples {
		s := hotedit.New(hotedit.Config{FindEditor: editorCmd(appendEditor), TempDir: t.TempDir()})
		got, err := s.Invoke(text)
		require.NoError(t, err)
		assert.Equal(t, text+"!", got)
	}
}

func TestInvoke_AtomicReplace(t *testing.T) {
	requireShell(t)

	s := hotedit.New(hotedit.Config{FindEditor: editorCmd(replaceEditor), TempDir: t.TempDir()})
	got, err := s.Invoke("original")
	require.NoError(t, err)
	assert.Equal(t, "replaced", got)
}

func TestInvoke_ValidateUnchanged(t *testing.T) {
	requireShell(t)

	t.Run("no-op edit fails when validating", func(t *testing.T) {
		s := hotedit.New(hotedit.Config{
			FindEditor:        editorCmd(noopEditor),
			ValidateUnchanged: true,
			TempDir:           t.TempDir(),
		})
		_, err := s.Invoke("same")
		require.Error(t, err)
		assert.ErrorIs(t, err, hotedit.ErrUnchanged)
		assert.True(t, hotedit.IsUnchanged(err))
		assert.Equal(t, "editing operation did not change the contents", err.Error())
	})

	t.Run("no-op edit succeeds without validation", func(t *testing.T) {
		s := hotedit.New(hotedit.Config{FindEditor: editorCmd(noopEditor), TempDir: t.TempDir()})
		got, err := s.Invoke("same")
		require.NoError(t, err)
		assert.Equal(t, "same", got)
	})

	t.Run("real edit passes validation", func(t *testing.T) {
		s := hotedit.New(hotedit.Config{
			FindEditor:        editorCmd(appendEditor),
			ValidateUnchanged: true,
			TempDir:           t.TempDir(),
		})
		got, err := s.Invoke("same")
		require.NoError(t, err)
		assert.Equal(t, "same!", got)
	})
}

func TestInvoke_BufferDisposal(t *testing.T) {
	t.Run("deleted after success", func(t *testing.T) {
		l := &recordingLauncher{}
		s := hotedit.New(hotedit.Config{FindEditor: editorCmd("ed"), Launcher: l, TempDir: t.TempDir()})

		res, err := s.InvokeResult("text")
		require.NoError(t, err)
		assert.Equal(t, l.path, res.Path)
		assert.False(t, res.Kept)
		assert.NoFileExists(t, l.path)
	})

	t.Run("deleted after UnchangedError", func(t *testing.T) {
		l := &recordingLauncher{}
		s := hotedit.New(hotedit.Config{
			FindEditor:        editorCmd("ed"),
			Launcher:          l,
			ValidateUnchanged: true,
			TempDir:           t.TempDir(),
		})

		_, err := s.Invoke("text")
		require.ErrorIs(t, err, hotedit.ErrUnchanged)
		require.NotEmpty(t, l.path)
		assert.NoFileExists(t, l.path)
	})

	t.Run("deleted after launch failure", func(t *testing.T) {
		var path string
		failing := hotedit.LauncherFunc(func(_ []string, p string) (int, error) {
			path = p
			return -1, errors.New("boom")
		})
		s := hotedit.New(hotedit.Config{FindEditor: editorCmd("ed"), Launcher: failing, TempDir: t.TempDir()})

		_, err := s.Invoke("text")
		require.ErrorIs(t, err, hotedit.ErrLaunch)
		assert.NoFileExists(t, path)
	})

	t.Run("kept with KeepTemp", func(t *testing.T) {
		requireShell(t)
		s := hotedit.New(hotedit.Config{FindEditor: editorCmd(appendEditor), KeepTemp: true, TempDir: t.TempDir()})

		res, err := s.InvokeResult("text")
		require.NoError(t, err)
		assert.True(t, res.Kept)
		assert.True(t, strings.HasSuffix(res.Path, buffer.Suffix))

		content, err := os.ReadFile(res.Path)
		require.NoError(t, err)
		assert.Equal(t, "text!", string(content))
	})
}

func TestInvoke_Errors(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name     string
		cfg      hotedit.Config
		kind     hotedit.Kind
		contains string
	}{
		{
			name:     "custom finder failure",
			cfg:      hotedit.Config{FindEditor: func() (string, error) { return "", errors.New("no editor for you") }},
			kind:     hotedit.EditorResolutionFailed,
			contains: "no editor for you",
		},
		{
			name:     "custom finder panic",
			cfg:      hotedit.Config{FindEditor: func() (string, error) { panic("kaboom") }},
			kind:     hotedit.EditorResolutionFailed,
			contains: "kaboom",
		},
		{
			name:     "unbalanced quote",
			cfg:      hotedit.Config{FindEditor: editorCmd(`"unbalanced`)},
			kind:     hotedit.InvalidEditorCommand,
			contains: "couldn't split editor args",
		},
		{
			name:     "empty command",
			cfg:      hotedit.Config{FindEditor: editorCmd("")},
			kind:     hotedit.InvalidEditorCommand,
			contains: "empty command",
		},
		{
			name:     "missing temp dir",
			cfg:      hotedit.Config{FindEditor: editorCmd(noopEditor), TempDir: "/nonexistent/hotedit/dir"},
			kind:     hotedit.BufferCreationFailed,
			contains: "failed to create scratch file",
		},
		{
			name:     "missing executable",
			cfg:      hotedit.Config{FindEditor: editorCmd("/nonexistent/bin/editor --wait")},
			kind:     hotedit.LaunchFailed,
			contains: "failed to start editor",
		},
		{
			name:     "launcher panic",
			cfg:      hotedit.Config{FindEditor: editorCmd("ed"), Launcher: hotedit.LauncherFunc(func([]string, string) (int, error) { panic("oops") })},
			kind:     hotedit.LaunchFailed,
			contains: "oops",
		},
		{
			name:     "strict exit status",
			cfg:      hotedit.Config{FindEditor: editorCmd(failingEditor), StrictExit: true},
			kind:     hotedit.LaunchFailed,
			contains: "non-zero status",
		},
		{
			name:     "invalid UTF-8",
			cfg:      hotedit.Config{FindEditor: editorCmd(binaryEditor)},
			kind:     hotedit.HarvestFailed,
			contains: "not valid UTF-8",
		},
		{
			name:     "editor removed the file",
			cfg:      hotedit.Config{FindEditor: editorCmd(deleteEditor)},
			kind:     hotedit.HarvestFailed,
			contains: "failed to read",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.TempDir == "" {
				tt.cfg.TempDir = t.TempDir()
			}
			_, err := hotedit.New(tt.cfg).Invoke("text")
			require.Error(t, err)

			kind, ok := hotedit.KindOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, kind)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestInvoke_NonZeroExitTolerated(t *testing.T) {
	requireShell(t)

	s := hotedit.New(hotedit.Config{FindEditor: editorCmd(failingEditor), TempDir: t.TempDir()})
	res, err := s.InvokeResult("text")
	require.NoError(t, err)
	assert.Equal(t, "saved", res.Text)
	assert.Equal(t, 1, res.ExitCode)
}

func TestInvoke_CustomLauncher(t *testing.T) {
	t.Run("receives tokenised command and path", func(t *testing.T) {
		l := &recordingLauncher{}
		s := hotedit.New(hotedit.Config{FindEditor: editorCmd(`vim -c "set ft=txt"`), Launcher: l, TempDir: t.TempDir()})

		_, err := s.Invoke("text")
		require.NoError(t, err)
		assert.Equal(t, []string{"vim", "-c", "set ft=txt"}, l.command)
		assert.True(t, filepath.IsAbs(l.path))
	})

	t.Run("strict mode applies to custom launchers", func(t *testing.T) {
		l := &recordingLauncher{code: 2}
		s := hotedit.New(hotedit.Config{FindEditor: editorCmd("ed"), Launcher: l, StrictExit: true, TempDir: t.TempDir()})

		_, err := s.Invoke("text")
		assert.ErrorIs(t, err, hotedit.ErrLaunch)
	})
}

func TestInvoke_ConcurrentSessions(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	s := hotedit.New(hotedit.Config{FindEditor: editorCmd(appendEditor), TempDir: dir})

	const n = 8
	var wg sync.WaitGroup
	results := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = s.Invoke(strings.Repeat("x", i))
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, strings.Repeat("x", i)+"!", results[i])
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEdit(t *testing.T) {
	requireShell(t)

	got, err := hotedit.Edit("abc", hotedit.Config{FindEditor: editorCmd(appendEditor), TempDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, "abc!", got)
}

func TestDetermineEditor(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	chdir(t, t.TempDir())

	t.Setenv("EDITOR", "nano")
	t.Setenv("VISUAL", "emacs")
	got, err := hotedit.DetermineEditor()
	require.NoError(t, err)
	assert.Equal(t, "nano", got)

	os.Unsetenv("EDITOR")
	os.Unsetenv("VISUAL")
	got, err = hotedit.DetermineEditor()
	require.NoError(t, err)
	assert.Equal(t, "vi", got)
}

func TestError_Is(t *testing.T) {
	err := error(&hotedit.Error{Kind: hotedit.HarvestFailed, Err: buffer.ErrEncoding})

	assert.ErrorIs(t, err, hotedit.ErrHarvest)
	assert.NotErrorIs(t, err, hotedit.ErrLaunch)
	assert.ErrorIs(t, err, buffer.ErrEncoding)
	assert.Equal(t, "harvest failed: scratch buffer is not valid UTF-8", err.Error())
}

func TestErrUnchanged_Message(t *testing.T) {
	assert.Equal(t, "editing operation did not change the contents", hotedit.ErrUnchanged.Error())
	kind, ok := hotedit.KindOf(hotedit.ErrUnchanged)
	require.True(t, ok)
	assert.Equal(t, hotedit.UnchangedError, kind)
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
