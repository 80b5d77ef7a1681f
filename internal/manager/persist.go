package manager

import (
	"context"
	"encoding/json"

	"github.com/vk/pixelgridgo/internal/ctxlog"
)

// recordCapacity bounds the serialized installation record, mirroring the
// fixed document buffer of the device settings partition. An oversized
// record is truncated best-effort, never rejected.
const recordCapacity = 512

// persistedSlot is the wire form of one slot. An empty name denotes an
// unoccupied slot, in which case uid is 0.
type persistedSlot struct {
	Name string `json:"name"`
	UID  uint16 `json:"uid"`
}

// installationRecord is the wire contract with the settings store: the
// slots array always holds exactly MaxSlots entries, in slot order.
type installationRecord struct {
	Slots []persistedSlot `json:"slots"`
}

// Save serializes the current slot-to-plugin assignment into the settings
// store. Occupancy is read from the display, which stays authoritative
// even if it diverged from the instance table under a partial failure.
// Save never fails; degraded outcomes are logged.
func (m *Manager) Save(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	m.mu.Lock()
	record := installationRecord{Slots: make([]persistedSlot, m.display.MaxSlots())}
	for slotID := range record.Slots {
		if p := m.display.OccupantOf(slotID); p != nil {
			record.Slots[slotID] = persistedSlot{Name: p.Name(), UID: p.UID()}
		}
	}
	m.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		logger.Error("Couldn't serialize installation record.", "error", err)
		return
	}
	if len(data) > recordCapacity {
		logger.Warn("Installation record exceeds capacity, writing truncated.", "size", len(data), "capacity", recordCapacity)
		data = data[:recordCapacity]
	}

	if !m.settings.Open(false) {
		logger.Warn("Couldn't open settings store for writing.")
		return
	}
	m.settings.SetPluginInstallationRecord(string(data))
	m.settings.Close()

	logger.Debug("Installation record saved.", "size", len(data))
}

// Load restores the slot-to-plugin assignment from the settings store.
// An unreadable or unparseable record leaves the instance table empty:
// the device cold-starts with no plugins rather than failing. Restored
// identifiers are trusted verbatim. Every persisted slot is restored, up
// to the display's slot count.
func (m *Manager) Load(ctx context.Context) {
	logger := ctxlog.FromContext(ctx)

	if !m.settings.Open(true) {
		logger.Warn("Couldn't open settings store for reading.")
		return
	}
	raw := m.settings.PluginInstallationRecord()
	m.settings.Close()

	var record installationRecord
	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		logger.Warn("Installation record unreadable, starting with no plugins.", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for slotID, slot := range record.Slots {
		if slotID >= m.display.MaxSlots() {
			logger.Warn("Installation record has more slots than the display.", "record_slots", len(record.Slots), "max_slots", m.display.MaxSlots())
			break
		}
		if slot.Name == "" {
			continue
		}
		p := m.install(ctx, slot.Name, slot.UID, slotID)
		if p == nil {
			logger.Warn("Couldn't restore plugin.", "name", slot.Name, "uid", slot.UID, "slot", slotID)
			continue
		}
		p.Enable()
	}
}
