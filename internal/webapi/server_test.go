package webapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/pixelgridgo/internal/display"
	"github.com/vk/pixelgridgo/internal/manager"
	"github.com/vk/pixelgridgo/internal/plugin"
	"github.com/vk/pixelgridgo/internal/registry"
	"github.com/vk/pixelgridgo/internal/uid"
)

// echoPlugin mounts a web interface that reports its own UID.
type echoPlugin struct {
	plugin.Base
}

func (p *echoPlugin) Content() string { return "echo" }

func (p *echoPlugin) RegisterWebInterface(r plugin.Router, baseURI string) {
	r.Register(p.UID(), baseURI, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprintf(w, "uid=%d path=%s", p.UID(), req.URL.Path)
	}))
}

func (p *echoPlugin) UnregisterWebInterface(r plugin.Router) {
	r.Unregister(p.UID())
}

type nullSettings struct{}

func (nullSettings) Open(bool) bool                     { return true }
func (nullSettings) Close()                             {}
func (nullSettings) PluginInstallationRecord() string   { return "" }
func (nullSettings) SetPluginInstallationRecord(string) {}

func newTestServer(t *testing.T, maxSlots int) (*Server, *manager.Manager, *display.Manager) {
	t.Helper()

	reg := registry.New()
	reg.Register("EchoPlugin", func(name string, instanceUID uint16) plugin.Plugin {
		p := &echoPlugin{}
		p.Init(name, instanceUID)
		return p
	})

	disp := display.New(maxSlots)
	routes := NewRouteTable()
	next := uint16(0)
	m := manager.New(reg, disp, routes, nullSettings{}, uid.NewWithSource(func() uint16 {
		next++
		return next
	}))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewServer(logger, m, disp, routes, "test"), m, disp
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var parsed map[string]any
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed))
	}
	return w, parsed
}

func TestStatusEndpoint(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t, 4)
	w, body := doJSON(t, srv.Handler(), http.MethodGet, "/rest/api/v1/status", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", body["status"])
	data := body["data"].(map[string]any)
	require.Equal(t, float64(4), data["display"].(map[string]any)["maxSlots"])
}

func TestInstallAndSlotsEndpoints(t *testing.T) {
	t.Parallel()

	srv, m, _ := newTestServer(t, 2)

	w, body := doJSON(t, srv.Handler(), http.MethodPost, "/rest/api/v1/display/slot", `{"name":"EchoPlugin"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, m.InstalledCount())

	data := body["data"].(map[string]any)
	require.Equal(t, float64(1), data["uid"])
	require.Equal(t, "/rest/api/v1/display/uid/1", data["baseUri"])

	w, body = doJSON(t, srv.Handler(), http.MethodGet, "/rest/api/v1/display/slots", "")
	require.Equal(t, http.StatusOK, w.Code)
	slots := body["data"].(map[string]any)["slots"].([]any)
	require.Len(t, slots, 2)
	first := slots[0].(map[string]any)
	require.Equal(t, "EchoPlugin", first["name"])
	require.Equal(t, true, first["active"])
}

func TestInstallEndpoint_ExplicitSlotAndConflicts(t *testing.T) {
	t.Parallel()

	srv, _, disp := newTestServer(t, 2)

	w, _ := doJSON(t, srv.Handler(), http.MethodPost, "/rest/api/v1/display/slot", `{"name":"EchoPlugin","slot":1}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, disp.OccupantOf(1))

	// Occupied slot and unknown type both surface as conflicts.
	w, _ = doJSON(t, srv.Handler(), http.MethodPost, "/rest/api/v1/display/slot", `{"name":"EchoPlugin","slot":1}`)
	require.Equal(t, http.StatusConflict, w.Code)
	w, _ = doJSON(t, srv.Handler(), http.MethodPost, "/rest/api/v1/display/slot", `{"name":"Unknown"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, srv.Handler(), http.MethodPost, "/rest/api/v1/display/slot", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUninstallEndpoint(t *testing.T) {
	t.Parallel()

	srv, m, _ := newTestServer(t, 2)
	doJSON(t, srv.Handler(), http.MethodPost, "/rest/api/v1/display/slot", `{"name":"EchoPlugin"}`)
	require.Equal(t, 1, m.InstalledCount())

	w, _ := doJSON(t, srv.Handler(), http.MethodDelete, "/rest/api/v1/display/uid/1", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 0, m.InstalledCount())

	w, _ = doJSON(t, srv.Handler(), http.MethodDelete, "/rest/api/v1/display/uid/1", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, srv.Handler(), http.MethodDelete, "/rest/api/v1/display/uid/notanumber", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPluginTypesEndpoint(t *testing.T) {
	t.Parallel()

	srv, _, _ := newTestServer(t, 2)
	w, body := doJSON(t, srv.Handler(), http.MethodGet, "/rest/api/v1/plugins", "")

	require.Equal(t, http.StatusOK, w.Code)
	plugins := body["data"].(map[string]any)["plugins"].([]any)
	require.Equal(t, []any{"EchoPlugin"}, plugins)
}

func TestPluginInterfaceDispatch(t *testing.T) {
	t.Parallel()

	srv, m, _ := newTestServer(t, 2)
	doJSON(t, srv.Handler(), http.MethodPost, "/rest/api/v1/display/slot", `{"name":"EchoPlugin"}`)

	w, _ := doJSON(t, srv.Handler(), http.MethodGet, "/rest/api/v1/display/uid/1/text", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "uid=1 path=/text", w.Body.String())

	// Unknown UID below the interface prefix is a 404.
	w, _ = doJSON(t, srv.Handler(), http.MethodGet, "/rest/api/v1/display/uid/99/text", "")
	require.Equal(t, http.StatusNotFound, w.Code)

	// After uninstall the mount is gone.
	p := m.FindByUID(1)
	require.NotNil(t, p)
	doJSON(t, srv.Handler(), http.MethodDelete, "/rest/api/v1/display/uid/1", "")
	w, _ = doJSON(t, srv.Handler(), http.MethodGet, "/rest/api/v1/display/uid/1/text", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}
