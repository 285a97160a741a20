// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/tejashwikalptaru/beatviz/internal/adapter/audio/beepaudio"
	"github.com/tejashwikalptaru/beatviz/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/beatviz/internal/adapter/broadcast"
	"github.com/tejashwikalptaru/beatviz/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/beatviz/internal/adapter/scheduler"
	"github.com/tejashwikalptaru/beatviz/internal/adapter/surface/raster"
	fyneui "github.com/tejashwikalptaru/beatviz/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/beatviz/internal/config"
	"github.com/tejashwikalptaru/beatviz/internal/logger"
	"github.com/tejashwikalptaru/beatviz/internal/ports"
	"github.com/tejashwikalptaru/beatviz/internal/render"
	"github.com/tejashwikalptaru/beatviz/internal/service"
	"github.com/tejashwikalptaru/beatviz/internal/store"
)

// mockTrackLength is the duration of every source the mock backend opens.
const mockTrackLength = 3 * time.Minute

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
type Application struct {
	logger   *slog.Logger
	fyneApp  fyne.App
	settings *config.Config

	// Infrastructure
	eventBus *eventbus.SyncEventBus
	output   *beepaudio.Output // nil with the mock backend
	ticker   *scheduler.Ticker
	surface  *raster.Surface

	// Core
	store     *store.Store
	spectral  *service.SpectralAdapter
	engine    *service.Engine
	transport *service.TransportBridge
	sources   *service.SourceService

	broadcaster *broadcast.Broadcaster // nil unless enabled

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
	shutdownErr  error
}

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// Settings are the loaded user settings; config.Default() when nil
	Settings *config.Config

	// UseMockAudio selects the in-memory audio backend (for testing)
	UseMockAudio bool

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	return Config{
		AppID:    "com.beatviz.app",
		AppName:  "beatviz",
		Settings: config.Default(),
	}
}

// NewApplication creates a new application with all dependencies wired and
// the render loop running.
func NewApplication(cfg Config) (*Application, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &Application{settings: settings}

	if cfg.TestFyneApp != nil {
		a.fyneApp = cfg.TestFyneApp
	} else {
		a.fyneApp = fyneapp.NewWithID(cfg.AppID)
	}

	level, _ := logger.ParseLevel(settings.LogLevel)
	a.logger = logger.NewLogger(logger.Config{Level: level, Format: settings.LogFormat})
	a.logger.Info("initializing application",
		slog.String("app_id", cfg.AppID),
		slog.String("version", GetVersionInfo().Version),
		slog.Bool("mock_audio", cfg.UseMockAudio))

	a.eventBus = eventbus.NewSyncEventBus(a.logger)
	a.store = store.New(a.logger, a.eventBus, settings.Mode())

	factory, loader := a.audioBackend(cfg.UseMockAudio)

	vis := settings.Visualizer
	spectral, err := service.NewSpectralAdapter(a.logger, a.store, a.eventBus, factory,
		service.SpectralConfig{FFTSize: vis.FFTSize, Smoothing: vis.Smoothing})
	if err != nil {
		return nil, fmt.Errorf("failed to create spectral adapter: %w", err)
	}
	a.spectral = spectral

	a.ticker = scheduler.NewTicker(vis.FrameRate, a.logger)
	viewport := service.NewViewportManager(a.logger, a.store, scheduler.RealTimer{},
		service.ViewportConfig{Debounce: vis.ResizeDebounce, MaxPixelRatio: vis.MaxPixelRatio})
	registry := render.NewRegistry(render.Config{
		ParticlePoolSize: vis.ParticlePoolSize,
		BassBand:         settings.BassBand(),
		Seed:             vis.Seed,
	})
	a.engine = service.NewEngine(a.logger, a.store, a.eventBus, a.spectral, viewport, registry, a.ticker,
		service.EngineConfig{EnergyThreshold: uint8(vis.EnergyThreshold)})
	a.transport = service.NewTransportBridge(a.logger, a.store, a.spectral)
	a.sources = service.NewSourceService(a.logger, a.store, loader, a.transport, a.spectral)

	if settings.Broadcast.Enabled {
		a.broadcaster = broadcast.New(a.logger, a.eventBus, broadcast.Config{
			Address: settings.Broadcast.Address,
			MaxRate: settings.Broadcast.MaxRate,
		})
		if err := a.broadcaster.Start(); err != nil {
			a.ticker.Stop()
			return nil, fmt.Errorf("failed to start broadcaster: %w", err)
		}
	}

	a.surface = raster.New()
	a.mainWindow = fyneui.NewMainWindow(a.fyneApp, a.surface, a.logger)
	a.presenter = fyneui.NewPresenter(a.logger, a.store, a.transport, a.sources, a.mainWindow)
	a.mainWindow.SetPresenter(a.presenter)

	// no frames after the window starts closing
	a.mainWindow.SetOnBeforeClose(a.engine.Unmount)

	if err := a.engine.Mount(a.surface, a.mainWindow.Visualizer()); err != nil {
		_ = a.Shutdown()
		return nil, fmt.Errorf("failed to start render loop: %w", err)
	}
	return a, nil
}

// audioBackend picks the audio context factory and media loader.
func (a *Application) audioBackend(useMock bool) (ports.AudioContextFactory, ports.MediaLoader) {
	if useMock {
		factory := mock.NewFactory(mock.NewContext(a.logger))
		return factory.New, mock.NewLoader(mockTrackLength)
	}

	audio := a.settings.Audio
	a.output = beepaudio.NewOutput(beepaudio.DefaultSampleRate, audio.BufferSize, a.logger)
	loader := beepaudio.NewLoader(a.output, beepaudio.LoaderConfig{
		ProgressInterval: audio.ProgressInterval,
		MaxDownload:      int64(audio.MaxDownloadMB) << 20,
	}, a.logger)
	return beepaudio.NewContextFactory(a.output, a.logger), loader
}

// Load opens a local file or http(s) URL.
func (a *Application) Load(ctx context.Context, location string) error {
	return a.sources.Load(ctx, location)
}

// Run shows the window and blocks until it is closed.
func (a *Application) Run() {
	a.logger.Info("beatviz started", slog.String("mode", string(a.store.Mode())))
	a.mainWindow.ShowAndRun()
}

// Shutdown stops the render loop and releases audio, network and bus
// resources. It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")
		var errs []error

		if a.presenter != nil {
			a.presenter.Shutdown()
		}
		a.engine.Unmount()
		a.ticker.Stop()
		a.sources.Close()

		if a.broadcaster != nil {
			if err := a.broadcaster.Close(); err != nil {
				errs = append(errs, fmt.Errorf("broadcaster: %w", err))
			}
		}
		if ctx, _ := a.store.AudioGraph(); ctx != nil {
			if err := ctx.Close(); err != nil {
				errs = append(errs, fmt.Errorf("audio context: %w", err))
			}
		}
		if a.output != nil {
			a.output.Close()
		}
		if err := a.eventBus.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event bus: %w", err))
		}

		a.shutdownErr = errors.Join(errs...)
		a.logger.Info("application shutdown complete")
	})
	return a.shutdownErr
}

// Store returns the render state store.
func (a *Application) Store() *store.Store {
	return a.store
}

// Engine returns the render loop.
func (a *Application) Engine() *service.Engine {
	return a.engine
}

// Transport returns the playback transport bridge.
func (a *Application) Transport() *service.TransportBridge {
	return a.transport
}

// EventBus returns the event bus.
func (a *Application) EventBus() ports.EventBus {
	return a.eventBus
}

// Broadcaster returns the spectrum broadcaster, or nil when disabled.
func (a *Application) Broadcaster() *broadcast.Broadcaster {
	return a.broadcaster
}

// FyneApp returns the Fyne application.
func (a *Application) FyneApp() fyne.App {
	return a.fyneApp
}
