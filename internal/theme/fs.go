// fs.go holds a helper for walking a theme filesystem, since template glob
// patterns such as "**/*.html" are not available in the standard library.
package theme

import (
	"io/fs"
	"strings"
)

// CollectHTML walks root inside fsys and returns every *.html path, ready
// for template.ParseFS.  A missing root yields no files and no error.
func CollectHTML(fsys fs.FS, root string) ([]string, error) {
	var files []string

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".html") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		if _, statErr := fs.Stat(fsys, root); statErr != nil {
			return nil, nil
		}
		return nil, err
	}
	return files, nil
}
