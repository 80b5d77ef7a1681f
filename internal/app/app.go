package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/pixelgridgo/internal/config"
	"github.com/vk/pixelgridgo/internal/ctxlog"
	"github.com/vk/pixelgridgo/internal/display"
	"github.com/vk/pixelgridgo/internal/manager"
	"github.com/vk/pixelgridgo/internal/registry"
	"github.com/vk/pixelgridgo/internal/settings"
	"github.com/vk/pixelgridgo/internal/uid"
	"github.com/vk/pixelgridgo/internal/webapi"
)

// Version is the software version reported by the status endpoint.
const Version = "0.1.0"

// App encapsulates the device's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	cfg      *config.Model
	registry *registry.Registry
	display  *display.Manager
	settings *settings.Store
	routes   *webapi.RouteTable
	manager  *manager.Manager
	server   *webapi.Server
	httpAddr string
}

// NewApp is the constructor for the main application. It returns a fully
// wired App instance with its own isolated logger, registry, display and
// plugin manager.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	cfgModel, err := loader.Load(ctx, appConfig.ConfigPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Device configuration loaded.", "slots", cfgModel.Slots)

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All plugin modules registered.", "types", reg.Len())

	settingsPath := cfgModel.SettingsPath
	if appConfig.SettingsPath != "" {
		settingsPath = appConfig.SettingsPath
	}
	httpAddr := fmt.Sprintf(":%d", cfgModel.HTTPPort)
	if appConfig.HTTPAddr != "" {
		httpAddr = appConfig.HTTPAddr
	}

	disp := display.New(cfgModel.Slots)
	store := settings.NewStore(settingsPath)
	routes := webapi.NewRouteTable()
	mgr := manager.New(reg, disp, routes, store, uid.New())
	server := webapi.NewServer(logger, mgr, disp, routes, Version)

	return &App{
		outW:     outW,
		logger:   logger,
		cfg:      cfgModel,
		registry: reg,
		display:  disp,
		settings: store,
		routes:   routes,
		manager:  mgr,
		server:   server,
		httpAddr: httpAddr,
	}
}

// Registry returns the application's plugin type registry. This is
// primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Manager returns the application's plugin manager. This is primarily
// for testing.
func (a *App) Manager() *manager.Manager {
	return a.manager
}
