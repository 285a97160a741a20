package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/beatviz/internal/domain"
)

func TestParseArgsDefaults(t *testing.T) {
	opts, err := parseArgs(nil, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, commandRun, opts.Command)
	assert.Empty(t, opts.Location)
	assert.False(t, opts.MockAudio)
	assert.Equal(t, "bars", opts.Mode)
}

func TestParseArgsFlags(t *testing.T) {
	opts, err := parseArgs([]string{
		"https://example.com/a.mp3",
		"--mode", "rings", "--fft-size", "1024", "--smoothing", "0.3",
		"--log-level", "debug", "--mock-audio",
	}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.mp3", opts.Location)
	assert.True(t, opts.MockAudio)

	cfg, err := opts.settings()
	require.NoError(t, err)
	assert.Equal(t, domain.ModeRings, cfg.Mode())
	assert.Equal(t, 1024, cfg.Visualizer.FFTSize)
	assert.Equal(t, 0.3, cfg.Visualizer.Smoothing)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viz.yaml")
	require.NoError(t, os.WriteFile(path, []byte("visualizer:\n  fft_size: 4096\n  default_mode: dna\n"), 0o600))

	opts, err := parseArgs([]string{"--config", path, "--mode", "blob"}, &bytes.Buffer{})
	require.NoError(t, err)
	cfg, err := opts.settings()
	require.NoError(t, err)

	assert.Equal(t, domain.ModeBlob, cfg.Mode())
	// unset flags leave the file's value alone
	assert.Equal(t, 4096, cfg.Visualizer.FFTSize)
}

func TestInvalidFlagValues(t *testing.T) {
	opts, err := parseArgs([]string{"--fft-size", "1000"}, &bytes.Buffer{})
	require.NoError(t, err)
	_, err = opts.settings()
	assert.ErrorIs(t, err, domain.ErrInvalidFFTSize)

	opts, err = parseArgs([]string{"--mode", "disco"}, &bytes.Buffer{})
	require.NoError(t, err)
	_, err = opts.settings()
	assert.ErrorIs(t, err, domain.ErrUnknownMode)
}

func TestParseArgsErrors(t *testing.T) {
	_, err := parseArgs([]string{"a.mp3", "b.mp3"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = parseArgs([]string{"--pick", "a.mp3"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "--pick")

	_, err = parseArgs([]string{"--no-such-flag"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestModesCommand(t *testing.T) {
	var out bytes.Buffer
	opts, err := parseArgs([]string{"modes"}, &out)
	require.NoError(t, err)
	assert.Equal(t, commandModes, opts.Command)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, len(domain.Modes()))
	assert.Equal(t, "bars       Bars", lines[0])
	assert.Equal(t, "blob       Blob", lines[9])
}

func TestVersionFlag(t *testing.T) {
	var out bytes.Buffer
	opts, err := parseArgs([]string{"--version"}, &out)
	require.NoError(t, err)
	assert.Empty(t, opts.Command)
	assert.Contains(t, out.String(), "dev")
}
