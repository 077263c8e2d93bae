package theme

import (
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
)

// Manager discovers and loads themes.
type Manager struct {
	BaseDir string // e.g. "themes" under the config root
}

// Load parses the layout and partials of theme name.  A directory
// <BaseDir>/<name> on disk wins; "default" falls back to the embedded copy.
//
// Template precedence for pages (high → low), applied by internal/view:
//  1. <theme>/components/<comp>/templates/<page>.html
//  2. the component's embedded templates
func (m *Manager) Load(name string) (*Theme, error) {
	fsys, err := m.open(name)
	if err != nil {
		return nil, err
	}

	files, err := CollectHTML(fsys, "templates")
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("theme %s: no templates", name)
	}

	th := New(name, fsys, nil)
	tpl, err := template.New("").Funcs(FuncMap(th.AssetFunc)).ParseFS(fsys, files...)
	if err != nil {
		return nil, fmt.Errorf("parse theme %s: %w", name, err)
	}
	if tpl.Lookup("layout") == nil {
		return nil, fmt.Errorf("theme %s: no \"layout\" template", name)
	}
	th.base = tpl
	return th, nil
}

func (m *Manager) open(name string) (fs.FS, error) {
	if m.BaseDir != "" {
		root := filepath.Join(m.BaseDir, name)
		if info, err := os.Stat(root); err == nil && info.IsDir() {
			return os.DirFS(root), nil
		}
	}
	if name == "default" {
		return fs.Sub(embedded, "default")
	}
	return nil, fmt.Errorf("theme %s not found under %q", name, m.BaseDir)
}
