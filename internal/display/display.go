// Package display owns the fixed array of rendering slots and decides
// which plugin instance occupies which slot. It is the source of truth
// for slot occupancy; the plugin manager's instance table follows it.
//
// Pixel composition, animation timing and brightness belong to the render
// pipeline and are out of scope here.
package display

import (
	"log/slog"
	"sync"

	"github.com/vk/pixelgridgo/internal/plugin"
)

// SlotInvalid is the sentinel returned by Bind and BindAuto when no slot
// could be assigned.
const SlotInvalid = -1

// DefaultMaxSlots matches the slot count of the reference hardware.
const DefaultMaxSlots = 8

// Manager tracks slot occupancy for a single display.
type Manager struct {
	mu    sync.Mutex
	slots []plugin.Plugin
}

// New creates a display manager with maxSlots empty slots. Non-positive
// values fall back to DefaultMaxSlots.
func New(maxSlots int) *Manager {
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlots
	}
	return &Manager{slots: make([]plugin.Plugin, maxSlots)}
}

// MaxSlots returns the fixed number of slots.
func (m *Manager) MaxSlots() int {
	return len(m.slots)
}

// BindAuto assigns p to the first free slot and returns its index, or
// SlotInvalid when every slot is occupied.
func (m *Manager) BindAuto(p plugin.Plugin) int {
	if p == nil {
		return SlotInvalid
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, occupant := range m.slots {
		if occupant == nil {
			m.slots[i] = p
			return i
		}
	}
	slog.Debug("No free slot available.", "plugin", p.Name(), "uid", p.UID())
	return SlotInvalid
}

// Bind assigns p to the explicit slot slotID and returns slotID, or
// SlotInvalid when the index is out of range or the slot is occupied.
func (m *Manager) Bind(p plugin.Plugin, slotID int) int {
	if p == nil || slotID < 0 || slotID >= len(m.slots) {
		return SlotInvalid
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.slots[slotID] != nil {
		slog.Debug("Slot already occupied.", "slot", slotID, "occupant", m.slots[slotID].Name())
		return SlotInvalid
	}
	m.slots[slotID] = p
	return slotID
}

// Unbind releases the slot occupied by p. It returns false when p does
// not occupy any slot.
func (m *Manager) Unbind(p plugin.Plugin) bool {
	if p == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, occupant := range m.slots {
		if occupant == p {
			m.slots[i] = nil
			return true
		}
	}
	return false
}

// OccupantOf returns the instance bound to slotID, or nil when the slot
// is empty or the index is out of range.
func (m *Manager) OccupantOf(slotID int) plugin.Plugin {
	if slotID < 0 || slotID >= len(m.slots) {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slots[slotID]
}

// SlotOf returns the slot index bound to p, or SlotInvalid.
func (m *Manager) SlotOf(p plugin.Plugin) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, occupant := range m.slots {
		if occupant == p {
			return i
		}
	}
	return SlotInvalid
}
