package app

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vk/pixelgridgo/internal/boot"
	"github.com/vk/pixelgridgo/internal/ctxlog"
	"github.com/vk/pixelgridgo/internal/plugin"
)

// rotationPeriod is how long each active slot stays in the foreground.
const rotationPeriod = 10 * time.Second

// Run drives the device through its boot sequence and then serves until
// ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	seq := boot.Sequence{
		{Name: "restore", Run: a.restore},
		{Name: "serve", Run: a.serve},
	}
	return seq.Run(ctx)
}

// restore brings back the persisted installation, or provisions the
// instances declared in the device configuration on a cold start.
func (a *App) restore(ctx context.Context) error {
	a.manager.Load(ctx)

	if a.manager.InstalledCount() == 0 && len(a.cfg.Provision) > 0 {
		a.provision(ctx)
	}
	return nil
}

func (a *App) provision(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("No persisted installation, provisioning from device configuration.",
		"declared", len(a.cfg.Provision))

	for _, prov := range a.cfg.Provision {
		p := a.manager.Install(ctx, prov.Type, prov.Slot)
		if p == nil {
			logger.Warn("Provisioning failed for declared instance.",
				"type", prov.Type, "label", prov.Label, "slot", prov.Slot)
			continue
		}
		if cfg, ok := p.(plugin.Configurable); ok && len(prov.Params) > 0 {
			if err := cfg.Configure(prov.Params); err != nil {
				logger.Warn("Declared parameters rejected, removing instance.",
					"type", prov.Type, "label", prov.Label, "error", err)
				a.manager.Uninstall(ctx, p)
				continue
			}
		}
		p.Enable()
		logger.Info("Provisioned plugin instance.",
			"type", prov.Type, "label", prov.Label, "uid", p.UID())
	}

	a.manager.Save(ctx)
}

// serve runs the REST API and the slot rotation loop until ctx is
// cancelled.
func (a *App) serve(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.server.Run(ctx, a.httpAddr) })
	g.Go(func() error { return a.rotate(ctx) })
	return g.Wait()
}

// rotate periodically brings the next active slot to the foreground.
// Without a physical matrix attached the foreground content goes to the
// log.
func (a *App) rotate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	ticker := time.NewTicker(rotationPeriod)
	defer ticker.Stop()

	slot := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			slot = a.showNext(logger, slot)
		}
	}
}

// showNext finds the first active slot after the given one, logs its
// content and returns it. It returns the starting slot unchanged when
// nothing is active.
func (a *App) showNext(logger *slog.Logger, start int) int {
	maxSlots := a.display.MaxSlots()
	for i := 1; i <= maxSlots; i++ {
		slot := (start + i) % maxSlots
		p := a.display.OccupantOf(slot)
		if p == nil || !p.Active() {
			continue
		}
		logger.Info("Foreground slot.",
			"slot", slot, "plugin", p.Name(), "uid", p.UID(), "content", p.Content())
		return slot
	}
	return start
}
