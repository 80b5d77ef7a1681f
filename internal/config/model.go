// Package config defines the format-agnostic device configuration model.
// Format-specific loaders (see internal/hcl) translate their syntax into
// this model, so the rest of the firmware never touches parser types.
package config

import "context"

// SlotUnassigned marks a provisioned plugin without an explicit slot;
// the slot allocator picks the first free one.
const SlotUnassigned = -1

// Model is the unified representation of the device configuration.
type Model struct {
	// Slots is the fixed number of display slots.
	Slots int

	// SettingsPath is the file backing the durable settings store.
	SettingsPath string

	// HTTPPort is the REST API listen port.
	HTTPPort int

	// Provision lists the plugins installed on first boot, when no
	// persisted installation record exists yet. After first boot the
	// persisted record wins.
	Provision []*Provision
}

// Provision is one `plugin` block of the device configuration.
type Provision struct {
	// Type is the registered plugin type name.
	Type string

	// Label is the operator-chosen block label, used in logs only.
	Label string

	// Slot is the explicit slot index, or SlotUnassigned.
	Slot int

	// Params are key/value parameters applied to the instance after
	// installation.
	Params map[string]string
}

// Default returns the configuration used when no config file is given.
func Default() *Model {
	return &Model{
		Slots:        8,
		SettingsPath: "pixelgrid-settings.yaml",
		HTTPPort:     8080,
	}
}

// Loader translates an on-disk configuration into the model.
type Loader interface {
	// Load reads path, which may be a single file or a directory whose
	// files are merged in lexical order.
	Load(ctx context.Context, path string) (*Model, error)
}
