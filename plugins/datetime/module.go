// Package datetime provides a content plugin that renders the current
// date and time.
package datetime

import (
	"sync"
	"time"

	"github.com/vk/pixelgridgo/internal/plugin"
	"github.com/vk/pixelgridgo/internal/registry"
)

// TypeName is the registered plugin type name.
const TypeName = "DateTimePlugin"

// DefaultLayout is the render layout used until one is configured.
const DefaultLayout = "Mon 02.01.2006 15:04"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the plugin type with the catalog.
func (m *Module) Register(r *registry.Registry) {
	r.Register(TypeName, New)
}

// Plugin is one installed date/time instance.
type Plugin struct {
	plugin.Base

	mu     sync.Mutex
	now    func() time.Time
	layout string
}

// New constructs an instance backed by the wall clock.
func New(name string, uid uint16) plugin.Plugin {
	return newWithClock(name, uid, time.Now)
}

func newWithClock(name string, uid uint16, now func() time.Time) *Plugin {
	p := &Plugin{now: now, layout: DefaultLayout}
	p.Init(name, uid)
	return p
}

// Content renders the current time in the configured layout.
func (p *Plugin) Content() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.now().Format(p.layout)
}

// Configure accepts the "layout" parameter in Go reference-time notation.
func (p *Plugin) Configure(params map[string]string) error {
	if layout, ok := params["layout"]; ok && layout != "" {
		p.mu.Lock()
		p.layout = layout
		p.mu.Unlock()
	}
	return nil
}
