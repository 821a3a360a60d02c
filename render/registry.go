// Package render hosts the renderer registry. Renderer implementations
// register a factory from an init function; the application picks one
// by name or takes the best one available. The built-in null renderer
// keeps the registry non-empty so headless runs and tests always have
// a backend.
package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lumen3d/lumen/core"
)

// ErrNoRenderer is returned when the registry has nothing to offer.
var ErrNoRenderer = errors.New("render: no renderer available")

// Factory builds a renderer presenting into the given window.
type Factory func(win core.Window, cfg core.RendererConfiguration) (core.Renderer, error)

type entry struct {
	factory  Factory
	priority int
}

var (
	registryMu sync.RWMutex
	renderers  = make(map[string]entry)
)

// Register makes a renderer available under name. Default selection
// picks the highest priority. Typically called from init functions of
// renderer packages; re-registering a name replaces the factory.
func Register(name string, priority int, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	renderers[name] = entry{factory: factory, priority: priority}
}

// Unregister removes a renderer from the registry.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(renderers, name)
}

// IsRegistered reports whether name has a registered factory.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := renderers[name]
	return ok
}

// Available returns registered names, best first.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return availableLocked()
}

func availableLocked() []string {
	names := make([]string, 0, len(renderers))
	for name := range renderers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := renderers[names[i]].priority, renderers[names[j]].priority
		if pi != pj {
			return pi > pj
		}
		return names[i] < names[j]
	})
	return names
}

// New builds the named renderer. An empty name selects the registered
// renderer with the highest priority.
func New(name string, win core.Window, cfg core.RendererConfiguration) (core.Renderer, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if name != "" {
		e, ok := renderers[name]
		if !ok {
			return nil, fmt.Errorf("render: unknown renderer %q", name)
		}
		return e.factory(win, cfg)
	}

	names := availableLocked()
	if len(names) == 0 {
		return nil, ErrNoRenderer
	}
	return renderers[names[0]].factory(win, cfg)
}
