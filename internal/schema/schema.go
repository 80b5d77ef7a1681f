// Package schema holds the HCL-tagged structures the configuration files
// decode into. They are translated into the format-agnostic model of
// internal/config by the loader and never leave internal/hcl.
package schema

import "github.com/hashicorp/hcl/v2"

// Device represents the `device` block with the hardware-facing knobs.
type Device struct {
	Slots        int    `hcl:"slots,optional"`
	SettingsPath string `hcl:"settings_path,optional"`
}

// HTTP represents the `http` block configuring the REST API.
type HTTP struct {
	Port int `hcl:"port,optional"`
}

// Plugin represents a `plugin` block provisioning one instance on first
// boot. Params stays an expression so the loader can evaluate and
// convert it in one place.
type Plugin struct {
	Type   string         `hcl:"plugin_type,label"`
	Label  string         `hcl:"instance_name,label"`
	Slot   *int           `hcl:"slot,optional"`
	Params hcl.Expression `hcl:"params,optional"`
}

// DeviceConfig is the top-level structure of one configuration file.
type DeviceConfig struct {
	Device  *Device   `hcl:"device,block"`
	HTTP    *HTTP     `hcl:"http,block"`
	Plugins []*Plugin `hcl:"plugin,block"`
	Body    hcl.Body  `hcl:",remain"`
}
