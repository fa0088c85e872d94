package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func testCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("jobs", 0, "")
	cmd.Flags().String("format", "pretty", "")
	cmd.Flags().Bool("strict", false, "")
	cmd.Flags().String("trace-level", "off", "")
	return cmd
}

func TestFindConfigSearchesUpward(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, configFileName), "[analysis]\njobs = 3\n")
	script := filepath.Join(root, "src", "app", "index.php")
	writeFile(t, script, "<?php\n")

	path, ok, err := findConfig(script)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, configFileName), path)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := loadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, cfg)
	assert.NoError(t, cfg.apply(testCommand().Flags()))
}

func TestConfigAppliesOnlyUnchangedFlags(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, configFileName), `
[analysis]
jobs = 3
strict = true

[output]
format = "json"

[trace]
level = "phase"
`)
	cfg, err := loadConfig(root)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	cmd := testCommand()
	require.NoError(t, cmd.Flags().Parse([]string{"--format=pretty"}))
	require.NoError(t, cfg.apply(cmd.Flags()))

	jobs, _ := cmd.Flags().GetInt("jobs")
	assert.Equal(t, 3, jobs)
	strict, _ := cmd.Flags().GetBool("strict")
	assert.True(t, strict)
	format, _ := cmd.Flags().GetString("format")
	assert.Equal(t, "pretty", format, "command line wins over phpc.toml")
	level, _ := cmd.Flags().GetString("trace-level")
	assert.Equal(t, "phase", level)
}

func TestConfigRejectsUnknownKeys(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, configFileName), "[analysis]\nworkers = 2\n")
	_, err := loadConfig(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analysis.workers")
}

func TestReadUIMode(t *testing.T) {
	mode, err := readUIMode(" ON ")
	require.NoError(t, err)
	assert.Equal(t, uiModeOn, mode)
	assert.True(t, shouldUseTUI(mode, "json"))
	assert.False(t, shouldUseTUI(uiModeOff, "pretty"))

	_, err = readUIMode("sometimes")
	assert.Error(t, err)
}

func TestAnalyzePathsWritesJSONAndSnapshot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "main.php"), "<?php\nfunction f() { return 1; }\n$x = f();\n")
	snap := filepath.Join(root, "out.mp")

	noColor := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = noColor })

	var out, errOut bytes.Buffer
	hasErrors, err := analyzePaths(t.Context(), []string{root}, analyzeOptions{
		format:   "json",
		ui:       uiModeOff,
		snapshot: snap,
	}, &out, &errOut)
	require.NoError(t, err)
	assert.False(t, hasErrors)
	assert.Contains(t, out.String(), `"extra"`)
	assert.FileExists(t, snap)
}
