// Package plugin defines the contract between the device core and the
// installable content providers that occupy display slots.
package plugin

import "net/http"

// CreateFunc constructs a new plugin instance of a registered type. The
// name is the registered type name and uid is the instance identifier the
// manager assigned to it.
type CreateFunc func(name string, uid uint16) Plugin

// Plugin is a single installed content provider instance. An instance is
// exclusively owned by the plugin manager from construction until
// uninstallation; no collaborator may retain a reference past that point.
type Plugin interface {
	// UID returns the instance identifier. It is unique among all
	// installed instances at any point in time.
	UID() uint16

	// Name returns the registered type name this instance was created from.
	Name() string

	// Enable marks the instance as active so the display scheduler may
	// show its slot.
	Enable()

	// Disable marks the instance as inactive.
	Disable()

	// Active reports whether the instance is currently enabled.
	Active() bool

	// Content returns the text content the instance currently wants shown
	// in its slot. Pixel composition is the display pipeline's business,
	// not ours.
	Content() string

	// RegisterWebInterface mounts the instance's HTTP surface under
	// baseURI on the given router.
	RegisterWebInterface(r Router, baseURI string)

	// UnregisterWebInterface removes the instance's HTTP surface.
	UnregisterWebInterface(r Router)
}

// Router is the narrow web-registration collaborator consumed by plugin
// instances and the manager. Handlers are keyed by instance UID so they
// can be torn down without touching unrelated routes.
type Router interface {
	// Register mounts handler for all requests below baseURI. The handler
	// receives paths relative to baseURI.
	Register(uid uint16, baseURI string, handler http.Handler)

	// Unregister removes the handler previously mounted for uid. Unknown
	// UIDs are ignored.
	Unregister(uid uint16)
}

// Configurable is implemented by plugin types that accept key/value
// parameters, e.g. from the provisioning blocks of the device config or
// from their web interface.
type Configurable interface {
	Configure(params map[string]string) error
}
