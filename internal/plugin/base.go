package plugin

import "sync"

// Base carries the state every plugin instance needs: identity and the
// enabled flag. Plugin types embed it and override what they must.
type Base struct {
	name string
	uid  uint16

	mu     sync.Mutex
	active bool
}

// Init sets the instance identity. Plugin factories call it once before
// the instance is shared.
func (b *Base) Init(name string, uid uint16) {
	b.name = name
	b.uid = uid
}

// UID returns the instance identifier.
func (b *Base) UID() uint16 { return b.uid }

// Name returns the registered type name.
func (b *Base) Name() string { return b.name }

// Enable marks the instance as active.
func (b *Base) Enable() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = true
}

// Disable marks the instance as inactive.
func (b *Base) Disable() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.active = false
}

// Active reports whether the instance is enabled.
func (b *Base) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// RegisterWebInterface is a no-op for plugin types without a web surface.
func (b *Base) RegisterWebInterface(_ Router, _ string) {}

// UnregisterWebInterface is a no-op counterpart of RegisterWebInterface.
func (b *Base) UnregisterWebInterface(_ Router) {}
