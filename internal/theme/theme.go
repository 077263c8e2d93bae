// Package theme holds the visual shell shared by every page.
//
// A Theme combines:
//
//   - Name       – the theme directory name ("default" ships embedded).
//   - FS         – templates/ (layout and partials), assets/, and optional
//     components/<comp>/templates/<page>.html overrides.
//   - AssetFunc  – resolves `{{ asset "site.css" }}` to a URL under
//     /assets/.
//
// The layout defines "layout" and expects each page to define "content".
package theme

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
)

// AssetPrefix is where Assets() is mounted.
const AssetPrefix = "/assets/"

//go:embed default
var embedded embed.FS

// Theme is returned by the Manager once its templates are parsed.
type Theme struct {
	Name      string
	FS        fs.FS
	AssetFunc func(string) string

	base *template.Template
}

// New constructs a Theme over fsys with an AssetFunc under AssetPrefix.
func New(name string, fsys fs.FS, base *template.Template) *Theme {
	return &Theme{
		Name: name,
		FS:   fsys,
		AssetFunc: func(p string) string {
			return AssetPrefix + path.Clean("/" + p)[1:]
		},
		base: base,
	}
}

// Base returns a private copy of the parsed layout set.  Callers add page
// templates to the copy.
func (t *Theme) Base() (*template.Template, error) { return t.base.Clone() }

// Override returns the theme's replacement for a component template, if
// the theme ships one.
func (t *Theme) Override(comp, name string) ([]byte, bool) {
	b, err := fs.ReadFile(t.FS, path.Join("components", comp, "templates", name+".html"))
	return b, err == nil
}

// Assets serves the theme's assets/ directory.  Mount at AssetPrefix.
func (t *Theme) Assets() http.Handler {
	sub, err := fs.Sub(t.FS, "assets")
	if err != nil {
		return http.NotFoundHandler()
	}
	return http.StripPrefix(AssetPrefix, http.FileServerFS(sub))
}
