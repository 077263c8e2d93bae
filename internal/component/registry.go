// internal/component/registry.go
//
// Component registry (cycle-free).
//
// Each concrete component lives under components/<name> and calls
// component.Register() in an init() function.  cmd/web mounts every
// component's Routes() at “/” after calling Init(env) once.

package component

import (
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"
)

// Initializer is called once at boot, before Routes.
type Initializer interface {
	Init(Env) error
}

// Component contract.
//
// Migrations() may return nil if the component has no schema.  Statements
// must be idempotent (CREATE TABLE IF NOT EXISTS); they run only when an
// audit database is configured.
// Routes() mounts the component's pages and endpoints, e.g:
//
//	r := chi.NewRouter()
//	r.Get("/login", c.getLogin)
//	r.Post("/login", c.postLogin)
//	return r
type Component interface {
	Name() string
	Routes() chi.Router
	Migrations() []string
	Initializer // embed so Components may omit Init
}

var (
	mu       sync.RWMutex
	registry = map[string]Component{}
)

// Register is invoked from component init() functions.
func Register(c Component) {
	mu.Lock()
	registry[c.Name()] = c
	mu.Unlock()
}

// All returns every registered component ordered by name, so boot logs
// and route mounting are deterministic.
func All() []Component {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Component, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
