package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"

	"github.com/tejashwikalptaru/beatviz/internal/app"
	"github.com/tejashwikalptaru/beatviz/internal/config"
	"github.com/tejashwikalptaru/beatviz/internal/domain"
	"github.com/tejashwikalptaru/beatviz/internal/service"
)

// Commands parseArgs can select.
const (
	commandRun   = "run"
	commandModes = "modes"
)

// options collected from the command line.
type options struct {
	Command string // empty when cobra only printed help or version

	ConfigPath string
	Mode       string
	FFTSize    int
	Smoothing  float64
	LogLevel   string
	MockAudio  bool
	Pick       bool
	Location   string

	changed func(name string) bool
}

// parseArgs runs the command line. Subcommand output goes to out.
func parseArgs(args []string, out io.Writer) (*options, error) {
	opts := &options{changed: func(string) bool { return false }}
	defaults := config.Default()

	rootCmd := &cobra.Command{
		Use:           "beatviz [file-or-url]",
		Short:         "Real-time audio visualizer",
		Long:          "Plays a local file or http(s) URL and renders it live in one of ten visual modes.",
		Version:       app.GetVersionInfo().Short(),
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = commandRun
			opts.changed = cmd.Flags().Changed
			if len(args) == 1 {
				opts.Location = args[0]
			}
			if opts.Pick && opts.Location != "" {
				return errors.New("--pick cannot be combined with a file or URL argument")
			}
			return nil
		},
	}
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	modesCmd := &cobra.Command{
		Use:   "modes",
		Short: "List render modes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Command = commandModes
			for _, m := range domain.Modes() {
				if _, err := fmt.Fprintf(out, "%-10s %s\n", m.Mode, m.Name); err != nil {
					return err
				}
			}
			return nil
		},
	}
	rootCmd.AddCommand(modesCmd)

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.ConfigPath, "config", "c", "",
		"Path to a YAML config file (default "+config.DefaultFile+" when present)")
	flags.StringVarP(&opts.Mode, "mode", "m", defaults.Visualizer.DefaultMode,
		"Start-up render mode. Use 'modes' to list them.")
	flags.IntVar(&opts.FFTSize, "fft-size", defaults.Visualizer.FFTSize,
		"Analyser FFT size, a power of two between 32 and 32768")
	flags.Float64Var(&opts.Smoothing, "smoothing", defaults.Visualizer.Smoothing,
		"Analyser smoothing time constant (0-1)")
	flags.StringVar(&opts.LogLevel, "log-level", defaults.LogLevel,
		"Log level: debug, info, warn or error")
	flags.BoolVar(&opts.MockAudio, "mock-audio", false,
		"Use the silent in-memory audio backend")
	flags.BoolVarP(&opts.Pick, "pick", "p", false,
		"Choose a file with the native file dialog")

	rootCmd.SetOut(out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return opts, nil
}

// settings loads the config file and environment, then applies the flags
// that were set explicitly.
func (o *options) settings() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}
	if o.changed("mode") {
		cfg.Visualizer.DefaultMode = o.Mode
	}
	if o.changed("fft-size") {
		cfg.Visualizer.FFTSize = o.FFTSize
	}
	if o.changed("smoothing") {
		cfg.Visualizer.Smoothing = o.Smoothing
	}
	if o.changed("log-level") {
		cfg.LogLevel = o.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// pickFile asks for an audio file. A cancelled dialog returns "".
func pickFile() (string, error) {
	patterns := make([]string, 0, len(service.SupportedExtensions()))
	for _, ext := range service.SupportedExtensions() {
		patterns = append(patterns, "*"+ext)
	}
	filename, err := zenity.SelectFile(
		zenity.Title("Open Audio File"),
		zenity.FileFilters{{
			Name:     "Audio (" + strings.Join(patterns, ", ") + ")",
			Patterns: patterns,
			CaseFold: true,
		}},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", nil
	}
	return filename, err
}
