package webapi

import (
	"net/http"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
)

// routeEntry is one mounted per-instance web interface.
type routeEntry struct {
	baseURI string
	handler http.Handler
}

// RouteTable is the web-registration collaborator handed to the plugin
// manager. Plugin instances mount and unmount their handlers keyed by
// UID, concurrently with request dispatch, so the table lives in an
// xsync map rather than behind the server's router, which cannot remove
// routes once added.
type RouteTable struct {
	entries *xsync.Map[uint16, routeEntry]
}

// NewRouteTable creates an empty table.
func NewRouteTable() *RouteTable {
	return &RouteTable{entries: xsync.NewMap[uint16, routeEntry]()}
}

// Register mounts handler for all requests below baseURI, replacing any
// previous mount for the same UID.
func (t *RouteTable) Register(uid uint16, baseURI string, handler http.Handler) {
	t.entries.Store(uid, routeEntry{baseURI: baseURI, handler: handler})
}

// Unregister removes the mount for uid. Unknown UIDs are ignored.
func (t *RouteTable) Unregister(uid uint16) {
	t.entries.Delete(uid)
}

// serve dispatches a request to the handler mounted for uid. It reports
// false when no interface is mounted for that UID. The handler sees the
// path relative to its base URI.
func (t *RouteTable) serve(uid uint16, w http.ResponseWriter, r *http.Request) bool {
	entry, ok := t.entries.Load(uid)
	if !ok {
		return false
	}

	relative := strings.TrimPrefix(r.URL.Path, entry.baseURI)
	if relative == "" {
		relative = "/"
	}
	r2 := r.Clone(r.Context())
	r2.URL.Path = relative
	entry.handler.ServeHTTP(w, r2)
	return true
}

// mountCount returns the number of mounted interfaces.
func (t *RouteTable) mountCount() int {
	return t.entries.Size()
}
