// internal/widget/registry.go
//
// Widget registry and lookup helpers.
//
// A **Widget** is a reusable view fragment rendered inside a page.  Every
// form definition registers one automatically (see form.RegisterFS); other
// widgets call `widget.Register(&MyWidget{})` from an init() func.
//
// The key is `<component>/<widget>`, e.g. "register/account" or
// "home/visit", and must be what the widget's `ID` method returns.
//
// Templates embed a widget with:
//
//	{{ widget .Ctx "register/account" (dict "errors" .Data.Errors) }}
//
// The view engine binds that func to HTML below.
package widget

import (
	"errors"
	"fmt"
	"html/template"
	"sort"
	"sync"
)

// Widget renders one fragment.  rctx is the page's *core.Context (typed
// any to keep this package free of imports); params may be nil.
//
// The returned policy mirrors view.CachePolicy.  A widget that embeds a
// CSRF token returns CacheSkip.  Errors are returned, never written, so
// the caller decides how to surface them.
//
// Render MUST be safe for concurrent use.
type Widget interface {
	ID() string
	Render(rctx any, params map[string]any) (html string, policy int, err error)
}

// ErrUnknown is returned by HTML for keys nobody registered.
var ErrUnknown = errors.New("widget not registered")

var (
	mu       sync.RWMutex
	registry = map[string]Widget{}
)

// Register adds w.  A later registration under the same key replaces the
// earlier one, which is how a reloaded form definition takes effect.
func Register(w Widget) {
	mu.Lock()
	registry[w.ID()] = w
	mu.Unlock()
}

// Lookup returns the widget or nil.
func Lookup(key string) Widget {
	mu.RLock()
	defer mu.RUnlock()
	return registry[key]
}

// IDs lists every registered key in order, for boot logs.
func IDs() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// HTML renders the widget under key as trusted markup.
func HTML(key string, rctx any, params map[string]any) (template.HTML, error) {
	w := Lookup(key)
	if w == nil {
		return "", fmt.Errorf("%w: %q", ErrUnknown, key)
	}
	out, _, err := w.Render(rctx, params)
	if err != nil {
		return "", fmt.Errorf("widget %s: %w", key, err)
	}
	return template.HTML(out), nil
}
