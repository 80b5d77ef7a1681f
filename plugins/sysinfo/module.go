// Package sysinfo provides a content plugin reporting process health:
// uptime, goroutine count and heap usage.
package sysinfo

import (
	"fmt"
	"runtime"
	"time"

	"github.com/vk/pixelgridgo/internal/plugin"
	"github.com/vk/pixelgridgo/internal/registry"
)

// TypeName is the registered plugin type name.
const TypeName = "SysInfoPlugin"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the plugin type with the catalog.
func (m *Module) Register(r *registry.Registry) {
	r.Register(TypeName, New)
}

// Plugin is one installed system-info instance.
type Plugin struct {
	plugin.Base

	startedAt time.Time
	now       func() time.Time
}

// New constructs an instance. Uptime counts from construction.
func New(name string, uid uint16) plugin.Plugin {
	return newWithClock(name, uid, time.Now)
}

func newWithClock(name string, uid uint16, now func() time.Time) *Plugin {
	p := &Plugin{startedAt: now(), now: now}
	p.Init(name, uid)
	return p
}

// Content returns a one-line health summary.
func (p *Plugin) Content() string {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	uptime := p.now().Sub(p.startedAt).Round(time.Second)
	return fmt.Sprintf("up %s | %d goroutines | heap %dKiB",
		uptime, runtime.NumGoroutine(), stats.HeapAlloc/1024)
}
