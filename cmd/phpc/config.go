package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

const configFileName = "phpc.toml"

type projectConfig struct {
	Analysis analysisConfig `toml:"analysis"`
	Output   outputConfig   `toml:"output"`
	Trace    traceConfig    `toml:"trace"`
}

type analysisConfig struct {
	Jobs           int  `toml:"jobs"`
	MaxDiagnostics int  `toml:"max_diagnostics"`
	Reanalyze      bool `toml:"reanalyze"`
	Strict         bool `toml:"strict"`
}

type outputConfig struct {
	Format string `toml:"format"`
	Color  string `toml:"color"`
}

type traceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

// loadedConfig is a parsed phpc.toml together with the keys it sets.
type loadedConfig struct {
	Path   string
	Config projectConfig
	meta   toml.MetaData
}

func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// loadConfig reads the nearest phpc.toml above startDir. A missing file is
// not an error; the result is nil then.
func loadConfig(startDir string) (*loadedConfig, error) {
	path, ok, err := findConfig(startDir)
	if err != nil || !ok {
		return nil, err
	}
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	return &loadedConfig{Path: path, Config: cfg, meta: meta}, nil
}

// apply copies every key set in the file onto the matching flag unless the
// flag was given on the command line.
func (c *loadedConfig) apply(flags *pflag.FlagSet) error {
	if c == nil {
		return nil
	}
	bindings := []struct {
		key  []string
		flag string
		val  string
	}{
		{[]string{"analysis", "jobs"}, "jobs", strconv.Itoa(c.Config.Analysis.Jobs)},
		{[]string{"analysis", "max_diagnostics"}, "max-diagnostics", strconv.Itoa(c.Config.Analysis.MaxDiagnostics)},
		{[]string{"analysis", "reanalyze"}, "reanalyze", strconv.FormatBool(c.Config.Analysis.Reanalyze)},
		{[]string{"analysis", "strict"}, "strict", strconv.FormatBool(c.Config.Analysis.Strict)},
		{[]string{"output", "format"}, "format", c.Config.Output.Format},
		{[]string{"output", "color"}, "color", c.Config.Output.Color},
		{[]string{"trace", "level"}, "trace-level", c.Config.Trace.Level},
		{[]string{"trace", "output"}, "trace", c.Config.Trace.Output},
	}
	for _, b := range bindings {
		if !c.meta.IsDefined(b.key...) {
			continue
		}
		f := flags.Lookup(b.flag)
		if f == nil || f.Changed {
			continue
		}
		if err := f.Value.Set(b.val); err != nil {
			return fmt.Errorf("%s: invalid %s: %w", c.Path, b.key[len(b.key)-1], err)
		}
	}
	return nil
}
