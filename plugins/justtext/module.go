// Package justtext provides the simplest content plugin: it shows a
// fixed text that operators can change through the instance's web
// interface or the provisioning parameters.
package justtext

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/vk/pixelgridgo/internal/plugin"
	"github.com/vk/pixelgridgo/internal/registry"
)

// TypeName is the registered plugin type name.
const TypeName = "JustTextPlugin"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the plugin type with the catalog.
func (m *Module) Register(r *registry.Registry) {
	r.Register(TypeName, New)
}

// Plugin is one installed just-text instance.
type Plugin struct {
	plugin.Base

	mu   sync.Mutex
	text string
}

// New constructs an instance. It is the factory the registry invokes at
// install time.
func New(name string, uid uint16) plugin.Plugin {
	p := &Plugin{}
	p.Init(name, uid)
	return p
}

// Content returns the configured text.
func (p *Plugin) Content() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.text
}

// Configure accepts the "text" parameter.
func (p *Plugin) Configure(params map[string]string) error {
	if text, ok := params["text"]; ok {
		p.setText(text)
	}
	return nil
}

func (p *Plugin) setText(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.text = text
}

// RegisterWebInterface mounts GET/POST /text below the instance base URI.
func (p *Plugin) RegisterWebInterface(r plugin.Router, baseURI string) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /text", p.handleGetText)
	mux.HandleFunc("POST /text", p.handleSetText)
	r.Register(p.UID(), baseURI, mux)
}

// UnregisterWebInterface removes the instance's web interface.
func (p *Plugin) UnregisterWebInterface(r plugin.Router) {
	r.Unregister(p.UID())
}

func (p *Plugin) handleGetText(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"text": p.Content()})
}

func (p *Plugin) handleSetText(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	p.setText(body.Text)
	w.WriteHeader(http.StatusOK)
}
