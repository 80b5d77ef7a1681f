// Package registry holds the catalog of installable plugin types for a
// single device instance.
package registry

import (
	"iter"
	"log/slog"
	"slices"
	"sync"

	"github.com/vk/pixelgridgo/internal/plugin"
)

// Module is the interface that all compiled-in plugin packages implement
// to be registered.
type Module interface {
	Register(r *Registry)
}

// Entry pairs a plugin type name with its construction function.
type Entry struct {
	Name   string
	Create plugin.CreateFunc
}

// Registry is an append-only catalog of plugin types, populated once at
// startup and read for the rest of the process lifetime.
//
// Duplicate names are deliberately legal: Lookup always returns the first
// match in registration order, so a later entry with the same name is
// unreachable but harmless. Nothing downstream depends on rejection, and
// rejecting would change the observable contract.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
}

// New creates an empty Registry instance.
func New() *Registry {
	return &Registry{}
}

// Register appends a plugin type to the catalog. There is no removal
// operation; the catalog only grows.
func (r *Registry) Register(name string, create plugin.CreateFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slog.Debug("Registering plugin type.", "name", name)
	r.entries = append(r.entries, Entry{Name: name, Create: create})
}

// Lookup returns the construction function for the first entry matching
// name in registration order, or false when no entry matches.
func (r *Registry) Lookup(name string) (plugin.CreateFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.Name == name {
			return e.Create, true
		}
	}
	return nil, false
}

// Types returns an independent, restartable iterator over the registered
// type names in registration order. Every caller gets its own cursor, so
// interleaved enumerations cannot disturb each other.
func (r *Registry) Types() iter.Seq[string] {
	r.mu.RLock()
	snapshot := slices.Clone(r.entries)
	r.mu.RUnlock()

	return func(yield func(string) bool) {
		for _, e := range snapshot {
			if !yield(e.Name) {
				return
			}
		}
	}
}

// Len returns the number of registered entries, counting duplicates.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
