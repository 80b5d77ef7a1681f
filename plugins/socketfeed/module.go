// Package socketfeed provides a content plugin fed by a socket.io
// server: the last payload received on a configured event becomes the
// displayed content.
package socketfeed

import (
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"

	"github.com/vk/pixelgridgo/internal/plugin"
	"github.com/vk/pixelgridgo/internal/registry"
)

// TypeName is the registered plugin type name.
const TypeName = "SocketFeedPlugin"

// DefaultEvent is the subscribed event unless an "event" parameter
// overrides it.
const DefaultEvent = "message"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the plugin type with the catalog.
func (m *Module) Register(r *registry.Registry) {
	r.Register(TypeName, New)
}

// Plugin is one installed socket-feed instance.
type Plugin struct {
	plugin.Base

	mu        sync.Mutex
	serverURL string
	namespace string
	event     string
	content   string

	io *socket.Socket
}

// New constructs an instance. It stays idle until a server URL is
// configured and the instance is enabled.
func New(name string, uid uint16) plugin.Plugin {
	p := &Plugin{event: DefaultEvent, content: "waiting for feed"}
	p.Init(name, uid)
	return p
}

// Content returns the last received payload.
func (p *Plugin) Content() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.content
}

// Configure accepts "url", "namespace" and "event".
func (p *Plugin) Configure(params map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v, ok := params["url"]; ok {
		parsed, err := url.Parse(v)
		if err != nil {
			return fmt.Errorf("invalid url %q: %w", v, err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("url %q needs a scheme and host", v)
		}
		p.serverURL = v
	}
	if v, ok := params["namespace"]; ok {
		p.namespace = v
	}
	if v, ok := params["event"]; ok && v != "" {
		p.event = v
	}
	return nil
}

// Enable activates the instance and connects to the feed. Connection
// setup is asynchronous so a slow server never stalls installation.
func (p *Plugin) Enable() {
	p.Base.Enable()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.io != nil || p.serverURL == "" {
		return
	}
	p.io = p.connectLocked()
}

// Disable deactivates the instance and drops the connection.
func (p *Plugin) Disable() {
	p.Base.Disable()

	p.mu.Lock()
	io := p.io
	p.io = nil
	p.mu.Unlock()

	if io != nil {
		io.Disconnect()
	}
}

func (p *Plugin) connectLocked() *socket.Socket {
	logger := slog.Default().With("plugin", TypeName, "uid", p.UID(), "url", p.serverURL)

	parsed, err := url.Parse(p.serverURL)
	if err != nil {
		logger.Warn("Feed URL no longer parses.", "error", err)
		return nil
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsed.Path)
	opts.SetTransports(types.NewSet(transports.WebSocket))

	baseURL := fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(p.namespace, opts)

	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Feed connected.", "sid", io.Id())
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		logger.Warn("Feed connection failed.", "error", errs[0])
	})
	io.On(types.EventName(p.event), func(args ...any) {
		p.consume(args...)
	})

	io.Connect()
	return io
}

// consume records the first argument of a feed event as the content.
func (p *Plugin) consume(args ...any) {
	if len(args) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.content = fmt.Sprint(args[0])
}
