package editor

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

// Fallback is used when no git config value or environment variable names an editor.
const Fallback = "vi"

// Source provides an optional editor command.
type Source func() (string, bool)

// Resolver picks the editor command with this precedence:
// 1. core.editor from git config (non-empty values only)
// 2. $EDITOR (presence is enough, even when empty)
// 3. $VISUAL (same rule)
// 4. Fallback.
type Resolver struct {
	GitConfig Source
	LookupEnv func(key string) (string, bool)
}

// NewResolver creates a resolver backed by the git config of the current
// working directory and the process environment.
func NewResolver() *Resolver {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	return &Resolver{
		GitConfig: GitCoreEditor(wd),
		LookupEnv: os.LookupEnv,
	}
}

// Resolve never fails; without any signal it returns Fallback.
func (r *Resolver) Resolve() string {
	if r.GitConfig != nil {
		if editor, ok := r.GitConfig(); ok && editor != "" {
			return editor
		}
	}

	if r.LookupEnv != nil {
		if editor, ok := r.LookupEnv("EDITOR"); ok {
			return editor
		}
		if editor, ok := r.LookupEnv("VISUAL"); ok {
			return editor
		}
	}

	return Fallback
}

// GitCoreEditor reads core.editor the way git layers it: repository config
// of dir, then ~/.gitconfig, then $XDG_CONFIG_HOME/git/config, then the
// system config. Any failure means "no value".
func GitCoreEditor(dir string) Source {
	return func() (string, bool) {
		for _, cfg := range gitConfigs(dir) {
			if editor, ok := coreEditor(cfg); ok {
				return editor, true
			}
		}
		return "", false
	}
}

// systemConfigPaths is swapped out in tests.
var systemConfigPaths = func() ([]string, error) {
	return config.Paths(config.SystemScope)
}

// gitConfigs returns the configs to consult, highest precedence first.
func gitConfigs(dir string) []*config.Config {
	var cfgs []*config.Config
	if dir != "" {
		repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
		if err == nil {
			if cfg, err := repo.Config(); err == nil {
				cfgs = append(cfgs, cfg)
			}
		}
	}

	paths := globalConfigPaths()
	if system, err := systemConfigPaths(); err == nil {
		paths = append(paths, system...)
	}
	for _, path := range paths {
		if cfg, ok := readConfigFile(path); ok {
			cfgs = append(cfgs, cfg)
		}
	}
	return cfgs
}

// globalConfigPaths lists the global config files, highest precedence first.
// Unlike config.LoadConfig, every existing file is consulted.
func globalConfigPaths() []string {
	var paths []string
	home, err := os.UserHomeDir()
	if err == nil {
		paths = append(paths, filepath.Join(home, ".gitconfig"))
	}

	xdg := os.Getenv("XDG_CONFIG_HOME")
	if xdg == "" && home != "" {
		xdg = filepath.Join(home, ".config")
	}
	if xdg != "" {
		paths = append(paths, filepath.Join(xdg, "git", "config"))
	}
	return paths
}

func readConfigFile(path string) (*config.Config, bool) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer f.Close()

	cfg, err := config.ReadConfig(f)
	if err != nil {
		return nil, false
	}
	return cfg, true
}

func coreEditor(cfg *config.Config) (string, bool) {
	if cfg == nil || cfg.Raw == nil || !cfg.Raw.HasSection("core") {
		return "", false
	}
	core := cfg.Raw.Section("core")
	if !core.HasOption("editor") {
		return "", false
	}
	return core.Option("editor"), true
}
