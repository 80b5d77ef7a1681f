// Package manager is the composition root of the plugin lifecycle: it
// owns the instance table, coordinates the registry, the display slot
// allocator and the web router, and round-trips the installation through
// the settings store.
package manager

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/vk/pixelgridgo/internal/ctxlog"
	"github.com/vk/pixelgridgo/internal/plugin"
	"github.com/vk/pixelgridgo/internal/registry"
	"github.com/vk/pixelgridgo/internal/uid"
)

// SlotAuto asks Install to let the display pick the first free slot
// instead of binding an explicit index.
const SlotAuto = -1

// Display is the slot-allocation collaborator. Bind and BindAuto return
// the assigned slot index, or a negative value when no slot could be
// assigned. The display, not the instance table, is the source of truth
// for slot occupancy.
type Display interface {
	BindAuto(p plugin.Plugin) int
	Bind(p plugin.Plugin, slotID int) int
	Unbind(p plugin.Plugin) bool
	OccupantOf(slotID int) plugin.Plugin
	MaxSlots() int
}

// Settings is the durable store collaborator for the installation record.
type Settings interface {
	Open(readOnly bool) bool
	Close()
	PluginInstallationRecord() string
	SetPluginInstallationRecord(record string)
}

// InstalledEntry ties an installed instance to the slot it occupies.
type InstalledEntry struct {
	Plugin plugin.Plugin
	SlotID int
}

// Manager owns the instance table. All operations are serialized behind
// one mutex because the HTTP layer calls in from request goroutines;
// none of the operations carries any internal atomicity guarantee beyond
// that sequencing.
type Manager struct {
	registry *registry.Registry
	display  Display
	web      plugin.Router
	settings Settings
	uids     *uid.Generator

	mu        sync.Mutex
	installed []InstalledEntry
}

// New wires a Manager to its collaborators. Nothing is looked up
// globally; every handle is injected here.
func New(reg *registry.Registry, disp Display, web plugin.Router, st Settings, uids *uid.Generator) *Manager {
	return &Manager{
		registry: reg,
		display:  disp,
		web:      web,
		settings: st,
		uids:     uids,
	}
}

// BaseURI returns the deterministic per-instance web path for uid.
func BaseURI(uid uint16) string {
	return fmt.Sprintf("/rest/api/v1/display/uid/%d", uid)
}

// Install creates an instance of the named plugin type and binds it to
// slotID, or to the first free slot when slotID is SlotAuto. It returns
// nil when the type is unknown or no slot could be bound; in both cases
// the instance table is left untouched and no web interface remains
// registered.
func (m *Manager) Install(ctx context.Context, name string, slotID int) plugin.Plugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.install(ctx, name, m.generateUID(), slotID)
}

// install is the shared path for fresh installs and restores from the
// persisted record. Caller must hold m.mu.
func (m *Manager) install(ctx context.Context, name string, instanceUID uint16, slotID int) plugin.Plugin {
	logger := ctxlog.FromContext(ctx)

	create, ok := m.registry.Lookup(name)
	if !ok {
		logger.Warn("Plugin type not registered.", "name", name)
		return nil
	}

	p := create(name, instanceUID)

	var slot int
	if slotID == SlotAuto {
		slot = m.display.BindAuto(p)
	} else {
		slot = m.display.Bind(p, slotID)
	}
	if slot < 0 {
		// The freshly constructed instance is discarded; nothing was
		// appended and nothing was registered.
		logger.Error("Couldn't bind plugin to a slot.", "name", name, "uid", instanceUID, "requested_slot", slotID)
		return nil
	}

	m.installed = append(m.installed, InstalledEntry{Plugin: p, SlotID: slot})
	p.RegisterWebInterface(m.web, BaseURI(instanceUID))

	logger.Info("Plugin installed.", "name", name, "uid", instanceUID, "slot", slot)
	return p
}

// Uninstall reverses Install. It returns false when p is not in the
// instance table or the display refuses to unbind it; in both cases the
// table is unchanged. The unbind is the authority: only after it
// succeeds are the web interface and the table entry removed and the
// instance released.
func (m *Manager) Uninstall(ctx context.Context, p plugin.Plugin) bool {
	logger := ctxlog.FromContext(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	idx := slices.IndexFunc(m.installed, func(e InstalledEntry) bool { return e.Plugin == p })
	if idx < 0 {
		logger.Warn("Plugin not found in instance table.")
		return false
	}

	if !m.display.Unbind(p) {
		logger.Error("Display refused to unbind plugin.", "name", p.Name(), "uid", p.UID())
		return false
	}

	p.UnregisterWebInterface(m.web)
	p.Disable()
	m.installed = slices.Delete(m.installed, idx, idx+1)

	logger.Info("Plugin uninstalled.", "name", p.Name(), "uid", p.UID())
	return true
}

// Types returns an independent iterator over the registered plugin type
// names, in registration order.
func (m *Manager) Types() iter.Seq[string] {
	return m.registry.Types()
}

// FindByUID returns the installed instance with the given identifier, or
// nil when none matches.
func (m *Manager) FindByUID(instanceUID uint16) plugin.Plugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.installed {
		if e.Plugin.UID() == instanceUID {
			return e.Plugin
		}
	}
	return nil
}

// Instances returns an independent iterator over the installed entries.
// The iteration works on a snapshot, so install/uninstall during
// iteration cannot disturb it.
func (m *Manager) Instances() iter.Seq[InstalledEntry] {
	m.mu.Lock()
	snapshot := slices.Clone(m.installed)
	m.mu.Unlock()

	return func(yield func(InstalledEntry) bool) {
		for _, e := range snapshot {
			if !yield(e) {
				return
			}
		}
	}
}

// InstalledCount returns the current size of the instance table.
func (m *Manager) InstalledCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.installed)
}

// generateUID draws an identifier that no installed instance holds.
// Caller must hold m.mu.
func (m *Manager) generateUID() uint16 {
	return m.uids.Generate(func(candidate uint16) bool {
		for _, e := range m.installed {
			if e.Plugin.UID() == candidate {
				return true
			}
		}
		return false
	})
}
