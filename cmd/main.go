// Package main is the production entry point for the beatviz visualizer.
//
// beatviz plays a local file or http(s) URL and renders it live:
// - Analysis through an FFT analyser tapped off the playback chain
// - One render loop drawing ten modes plus an idle animation
// - MVP pattern for UI decoupling
//
// Build:
//
//	go build -o build/beatviz ./cmd
//
// Run:
//
//	./build/beatviz song.mp3 --mode galaxy
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tejashwikalptaru/beatviz/internal/app"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "beatviz: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseArgs(args, os.Stdout)
	if err != nil {
		return err
	}
	if opts.Command != commandRun {
		return nil
	}

	settings, err := opts.settings()
	if err != nil {
		return err
	}

	location := opts.Location
	if opts.Pick {
		if location, err = pickFile(); err != nil {
			return fmt.Errorf("file dialog: %w", err)
		}
	}

	config := app.DefaultConfig()
	config.Settings = settings
	config.UseMockAudio = opts.MockAudio

	application, err := app.NewApplication(config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	// Ensure a graceful shutdown
	defer func() {
		if err := application.Shutdown(); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
		}
	}()

	if location != "" {
		// the window still opens; the idle screen invites another pick
		if err := application.Load(context.Background(), location); err != nil {
			fmt.Fprintf(os.Stderr, "beatviz: failed to load %s: %v\n", location, err)
		}
	}

	// Run application (blocks until the window closed)
	application.Run()
	return nil
}
