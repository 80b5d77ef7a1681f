// Package hcl loads device configuration files and translates them into
// the format-agnostic model of internal/config.
package hcl

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/pixelgridgo/internal/config"
	"github.com/vk/pixelgridgo/internal/ctxlog"
	"github.com/vk/pixelgridgo/internal/fsutil"
	"github.com/vk/pixelgridgo/internal/schema"
)

// Loader is the HCL implementation of config.Loader.
type Loader struct{}

// NewLoader creates a new HCL loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads path (a .hcl file or a directory of them, merged in lexical
// order) and translates the blocks into the device model. Settings from
// later files override earlier ones; plugin blocks accumulate.
func (l *Loader) Load(ctx context.Context, path string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	model := config.Default()

	filePaths, err := l.resolveFiles(path)
	if err != nil {
		return nil, err
	}
	if len(filePaths) == 0 {
		logger.Warn("No .hcl config files found, using defaults.", "path", path)
		return model, nil
	}

	parser := hclparse.NewParser()
	for _, filePath := range filePaths {
		hclFile, diags := parser.ParseHCLFile(filePath)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse config file %s: %w", filePath, diags)
		}

		var fileConfig schema.DeviceConfig
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &fileConfig); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode config file %s: %w", filePath, diags)
		}

		if err := l.merge(model, &fileConfig); err != nil {
			return nil, fmt.Errorf("invalid config in %s: %w", filePath, err)
		}
		logger.Debug("Loaded config file.", "file", filePath)
	}

	logger.Info("Device configuration loaded.", "slots", model.Slots, "provisioned_plugins", len(model.Provision))
	return model, nil
}

// resolveFiles expands path into the list of config files to read.
func (l *Loader) resolveFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("config path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	filePaths, err := fsutil.FindFilesByExtension(path, ".hcl")
	if err != nil {
		return nil, err
	}
	sort.Strings(filePaths)
	return filePaths, nil
}

// merge folds one decoded file into the model.
func (l *Loader) merge(model *config.Model, fileConfig *schema.DeviceConfig) error {
	if fileConfig.Device != nil {
		if fileConfig.Device.Slots < 0 {
			return fmt.Errorf("device.slots must not be negative, got %d", fileConfig.Device.Slots)
		}
		if fileConfig.Device.Slots > 0 {
			model.Slots = fileConfig.Device.Slots
		}
		if fileConfig.Device.SettingsPath != "" {
			model.SettingsPath = fileConfig.Device.SettingsPath
		}
	}
	if fileConfig.HTTP != nil && fileConfig.HTTP.Port > 0 {
		model.HTTPPort = fileConfig.HTTP.Port
	}

	for _, p := range fileConfig.Plugins {
		provision := &config.Provision{
			Type:  p.Type,
			Label: p.Label,
			Slot:  config.SlotUnassigned,
		}
		if p.Slot != nil {
			provision.Slot = *p.Slot
		}

		params, err := evalParams(p.Params)
		if err != nil {
			return fmt.Errorf("plugin %q %q: %w", p.Type, p.Label, err)
		}
		provision.Params = params

		model.Provision = append(model.Provision, provision)
	}
	return nil
}

// evalParams evaluates the params expression into a string map. Absent
// params yield nil.
func evalParams(expr hcl.Expression) (map[string]string, error) {
	if expr == nil {
		return nil, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate params: %w", diags)
	}
	if val.IsNull() {
		return nil, nil
	}

	converted, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, fmt.Errorf("params must be a map of strings: %w", err)
	}

	params := make(map[string]string)
	for key, elem := range converted.AsValueMap() {
		params[key] = elem.AsString()
	}
	return params, nil
}
