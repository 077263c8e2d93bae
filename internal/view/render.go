// internal/view/render.go
//
// Central view engine: template lookup, theme override, func-map injection,
// and an LRU of parsed *template.Template* sets.
//
// Public helpers
// --------------
//   - RegisterTemplates – components hand over their embedded templates.
//   - SetTheme          – installs the active theme at boot.
//   - Render            – executes layout + page into the ResponseWriter.
//
// Lookup precedence (first hit wins):
//  1. <theme>/components/<comp>/templates/<page>.html
//  2. the component's embedded <page>.html
//
// Every page is parsed together with the theme layout, the theme partials,
// and the component's own partials (files named `_*.html`).  A page file
// defines "content"; Render executes "layout".
//
// Notes
// -----
// • Output is buffered, so a template error yields a clean 500 instead of
//   half a page.
// • Template funcs are bound at parse time and never capture a request.
//   Request data reaches templates only through Page.

package view

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/baraliresort/reserve/internal/cache"
	"github.com/baraliresort/reserve/internal/core"
	"github.com/baraliresort/reserve/internal/head"
	"github.com/baraliresort/reserve/internal/logger"
	"github.com/baraliresort/reserve/internal/theme"
	"github.com/baraliresort/reserve/internal/widget"
)

// CachePolicy hints how the caller wants this template cached.
type CachePolicy int

const (
	CacheDefault CachePolicy = iota // keep the parsed set in the LRU
	CacheSkip                       // reparse on every call (theme work)
)

// ErrNoTheme is returned when Render runs before SetTheme.
var ErrNoTheme = errors.New("view: no theme installed")

// Page is the root value every template receives.
type Page struct {
	Ctx  *core.Context
	Head *head.Builder
	Data any
}

var (
	tmplLRU = cache.New[string, *template.Template](256)
	active  atomic.Pointer[theme.Theme]

	fsMu   sync.RWMutex
	compFS = map[string]fs.FS{}
)

// RegisterTemplates records the template filesystem of comp.  Call from the
// component's init().
func RegisterTemplates(comp string, fsys fs.FS) {
	fsMu.Lock()
	compFS[comp] = fsys
	fsMu.Unlock()
}

// SetTheme installs th and drops every cached set.
func SetTheme(th *theme.Theme) {
	active.Store(th)
	tmplLRU.Purge()
}

// Render executes page name of comp inside the theme layout and writes it
// to w with status.
func Render(ctx *core.Context, w http.ResponseWriter, status int, comp, name string, data any, policy CachePolicy) error {
	t, err := load(comp, name, policy)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", Page{Ctx: ctx, Head: ctx.Head, Data: data}); err != nil {
		return fmt.Errorf("render %s/%s: %w", comp, name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}

//
// internal: load
//

func load(comp, name string, policy CachePolicy) (*template.Template, error) {
	th := active.Load()
	if th == nil {
		return nil, ErrNoTheme
	}
	key := strings.Join([]string{th.Name, comp, name}, "::")

	if policy != CacheSkip {
		if t, ok := tmplLRU.Get(key); ok {
			return t, nil
		}
	}

	t, err := th.Base()
	if err != nil {
		return nil, err
	}
	t.Funcs(funcMap())

	fsMu.RLock()
	fsys := compFS[comp]
	fsMu.RUnlock()

	// Component partials first so a page can use them.
	if fsys != nil {
		partials, _ := fs.Glob(fsys, "_*.html")
		if len(partials) > 0 {
			if t, err = t.ParseFS(fsys, partials...); err != nil {
				return nil, fmt.Errorf("parse %s partials: %w", comp, err)
			}
		}
	}

	if src, ok := th.Override(comp, name); ok {
		if _, err := t.New(name + ".html").Parse(string(src)); err != nil {
			return nil, fmt.Errorf("parse theme override %s/%s: %w", comp, name, err)
		}
	} else {
		if fsys == nil {
			return nil, fmt.Errorf("view: component %q has no templates", comp)
		}
		if t, err = t.ParseFS(fsys, path.Clean(name+".html")); err != nil {
			return nil, fmt.Errorf("parse %s/%s: %w", comp, name, err)
		}
	}
	if t.Lookup("content") == nil {
		return nil, fmt.Errorf("view: %s/%s does not define \"content\"", comp, name)
	}

	if policy != CacheSkip {
		tmplLRU.Add(key, t)
	}
	return t, nil
}

//
// func-map
//

func funcMap() template.FuncMap {
	return template.FuncMap{
		"dict":   dict,
		"widget": widgetFunc,
	}
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}

// widgetFunc renders a registered widget and returns safe HTML.  Failures
// are logged and hidden behind <!-- comments --> so visitors never see
// internals.
//
//	{{ widget .Ctx "register/account" (dict "prefill" .Data.Values) }}
func widgetFunc(ctx *core.Context, key string, params map[string]any) template.HTML {
	out, err := widget.HTML(key, ctx, params)
	if err != nil {
		log := zap.S()
		if ctx != nil && ctx.Request != nil {
			log = logger.FromContext(ctx.Request.Context())
		}
		log.Warnw("widget render failed", "widget", key, "err", err)
		if errors.Is(err, widget.ErrUnknown) {
			return template.HTML("<!-- widget not found -->")
		}
		return template.HTML("<!-- widget error -->")
	}
	return out
}
