package app

import (
	"github.com/vk/pixelgridgo/internal/registry"
	"github.com/vk/pixelgridgo/plugins/datetime"
	"github.com/vk/pixelgridgo/plugins/justtext"
	"github.com/vk/pixelgridgo/plugins/openweather"
	"github.com/vk/pixelgridgo/plugins/socketfeed"
	"github.com/vk/pixelgridgo/plugins/sysinfo"
)

// coreModules is the definitive list of all plugin modules that are
// compiled into the pixelgrid binary.
var coreModules = []registry.Module{
	&justtext.Module{},
	&datetime.Module{},
	&sysinfo.Module{},
	&openweather.Module{},
	&socketfeed.Module{},
}
