package hcl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/vk/pixelgridgo/internal/config"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_SingleFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "device.hcl", `
device {
  slots         = 4
  settings_path = "/tmp/settings.yaml"
}

http {
  port = 9090
}

plugin "JustTextPlugin" "greeting" {
  slot = 0
  params = {
    text = "hello"
  }
}

plugin "DateTimePlugin" "clock" {}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	want := &config.Model{
		Slots:        4,
		SettingsPath: "/tmp/settings.yaml",
		HTTPPort:     9090,
		Provision: []*config.Provision{
			{
				Type:   "JustTextPlugin",
				Label:  "greeting",
				Slot:   0,
				Params: map[string]string{"text": "hello"},
			},
			{
				Type:  "DateTimePlugin",
				Label: "clock",
				Slot:  config.SlotUnassigned,
			},
		},
	}
	require.Empty(t, cmp.Diff(want, model))
}

func TestLoad_DirectoryMergesInLexicalOrder(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "10-device.hcl", `
device {
  slots = 2
}
plugin "DateTimePlugin" "clock" {}
`)
	writeConfig(t, dir, "20-override.hcl", `
device {
  slots = 6
}
plugin "SysInfoPlugin" "info" {}
`)

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	require.Equal(t, 6, model.Slots, "later file overrides earlier")
	require.Len(t, model.Provision, 2, "plugin blocks accumulate")
	require.Equal(t, "DateTimePlugin", model.Provision[0].Type)
	require.Equal(t, "SysInfoPlugin", model.Provision[1].Type)
}

func TestLoad_MissingPathFails(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "absent.hcl"))
	require.Error(t, err)
}

func TestLoad_EmptyDirectoryYieldsDefaults(t *testing.T) {
	t.Parallel()

	model, err := NewLoader().Load(context.Background(), t.TempDir())
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(config.Default(), model))
}

func TestLoad_InvalidSyntaxFails(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "bad.hcl", `device {`)
	_, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
}

func TestLoad_NonStringParamsConverted(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "device.hcl", `
plugin "OpenWeatherPlugin" "weather" {
  params = {
    latitude  = 52.52
    longitude = 13.40
  }
}
`)

	model, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, model.Provision, 1)
	require.Equal(t, "52.52", model.Provision[0].Params["latitude"])
}

func TestLoad_NegativeSlotsRejected(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, t.TempDir(), "device.hcl", `
device {
  slots = -1
}
`)
	_, err := NewLoader().Load(context.Background(), path)
	require.Error(t, err)
}
