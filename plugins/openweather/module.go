// Package openweather provides a content plugin showing current weather
// for a configured location. It polls the OpenWeather REST API in the
// background while the instance is enabled.
package openweather

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"resty.dev/v3"

	"github.com/vk/pixelgridgo/internal/ctxlog"
	"github.com/vk/pixelgridgo/internal/plugin"
	"github.com/vk/pixelgridgo/internal/registry"
)

// TypeName is the registered plugin type name.
const TypeName = "OpenWeatherPlugin"

// DefaultEndpoint is the weather API queried unless an "endpoint"
// parameter overrides it.
const DefaultEndpoint = "https://api.openweathermap.org/data/2.5/weather"

// DefaultRefresh is the poll interval unless a "refresh" parameter
// overrides it.
const DefaultRefresh = 10 * time.Minute

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the plugin type with the catalog.
func (m *Module) Register(r *registry.Registry) {
	r.Register(TypeName, New)
}

// Plugin is one installed weather instance.
type Plugin struct {
	plugin.Base

	mu       sync.Mutex
	endpoint string
	apiKey   string
	lat      string
	lon      string
	refresh  time.Duration
	content  string

	cancel context.CancelFunc
	done   chan struct{}
}

// New constructs an instance. It shows a placeholder until the first
// successful fetch.
func New(name string, uid uint16) plugin.Plugin {
	p := &Plugin{
		endpoint: DefaultEndpoint,
		refresh:  DefaultRefresh,
		content:  "weather pending",
	}
	p.Init(name, uid)
	return p
}

// Content returns the last fetched weather summary.
func (p *Plugin) Content() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.content
}

// Configure accepts "apiKey", "latitude", "longitude", "endpoint" and
// "refresh" (a Go duration string).
func (p *Plugin) Configure(params map[string]string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v, ok := params["apiKey"]; ok {
		p.apiKey = v
	}
	if v, ok := params["latitude"]; ok {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("invalid latitude %q: %w", v, err)
		}
		p.lat = v
	}
	if v, ok := params["longitude"]; ok {
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return fmt.Errorf("invalid longitude %q: %w", v, err)
		}
		p.lon = v
	}
	if v, ok := params["endpoint"]; ok && v != "" {
		p.endpoint = v
	}
	if v, ok := params["refresh"]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid refresh %q: %w", v, err)
		}
		if d <= 0 {
			return fmt.Errorf("refresh must be positive, got %s", d)
		}
		p.refresh = d
	}
	return nil
}

// Enable activates the instance and starts the poll loop.
func (p *Plugin) Enable() {
	p.Base.Enable()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.poll(ctx, p.done)
}

// Disable deactivates the instance and stops the poll loop.
func (p *Plugin) Disable() {
	p.Base.Disable()

	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (p *Plugin) poll(ctx context.Context, done chan struct{}) {
	defer close(done)

	client := resty.New()
	defer client.Close()

	p.fetch(ctx, client)

	p.mu.Lock()
	interval := p.refresh
	p.mu.Unlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetch(ctx, client)
		}
	}
}

type weatherResponse struct {
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
}

func (p *Plugin) fetch(ctx context.Context, client *resty.Client) {
	logger := ctxlog.FromContext(ctx).With("plugin", TypeName, "uid", p.UID())

	p.mu.Lock()
	endpoint, apiKey, lat, lon := p.endpoint, p.apiKey, p.lat, p.lon
	p.mu.Unlock()

	var payload weatherResponse
	res, err := client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":   lat,
			"lon":   lon,
			"appid": apiKey,
			"units": "metric",
		}).
		SetResult(&payload).
		Get(endpoint)
	if err != nil {
		logger.Warn("Weather fetch failed.", "error", err)
		return
	}
	if !res.IsSuccess() {
		logger.Warn("Weather API returned an error.", "status", res.StatusCode())
		return
	}

	condition := "n/a"
	if len(payload.Weather) > 0 {
		condition = payload.Weather[0].Main
	}

	p.mu.Lock()
	p.content = fmt.Sprintf("%.1f°C %d%% %s",
		payload.Main.Temp, payload.Main.Humidity, condition)
	p.mu.Unlock()
}
