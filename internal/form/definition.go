// internal/form/definition.go
//
// Barali – Forms subsystem: YAML definition loader.
//
// Context
//   Each HTML form is declared in a YAML file that ships inside the component
//   that owns it (components/<comp>/forms/*.yaml, embedded at build time).
//   The file defines the form's identifier, title, submit label, and fields.
//   At start-up each component hands its embedded filesystem to RegisterFS,
//   which parses every definition and stores it in an in-memory registry.
//   The renderer, the field Store, and the widgets fetch definitions from the
//   registry by ID, so the YAML is the single source of truth for field names
//   and labels.
//
// Workflow
//   •  Structs mirror the YAML schema: FormDef → StepDef → FieldDef.
//   •  ParseFormDef decodes and validates one document.
//   •  RegisterFS walks an fs.FS, loads every “*.yaml”, and registers it.
//   •  GetFormDef offers read-only access by ID.
//
// Style
//   Full sentences, two spaces after periods, Oxford commas.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// -----------------------------------------------------------------------------
// Data structures
// -----------------------------------------------------------------------------

// FormDef represents one form definition loaded from YAML.
//
// The ID is namespaced by component, e.g. “register/account”.  A form is
// defined EITHER by a flat Field list OR by a Steps list.
type FormDef struct {
	ID     string     `yaml:"id"`     // Component-scoped identifier.
	Title  string     `yaml:"title"`  // Display heading, optional.
	Action string     `yaml:"action"` // POST target.  Required.
	Submit string     `yaml:"submit"` // Submit button label, defaults to “Submit”.
	Fields []FieldDef `yaml:"fields"` // Flat list of fields (single-step).
	Steps  []StepDef  `yaml:"steps"`  // Multi-step definition.  Mutually exclusive with Fields.
}

// FieldDef describes a single input control on the form.  The HTML hints
// (required, minlength) are advisory; the authoritative checks live in the
// owning component's validator.
type FieldDef struct {
	Name        string   `yaml:"name"`          // Submission key.  Required.
	Label       string   `yaml:"label"`         // Human-readable label.  Required.
	Type        string   `yaml:"type"`          // text, email, password, number, date, select.
	Placeholder string   `yaml:"placeholder"`   // Optional placeholder text.
	Required    bool     `yaml:"required"`      // Adds the HTML required attribute.
	MinLength   int      `yaml:"minlength"`     // ≥ 0, 0 means unset.
	MaxLength   int      `yaml:"maxlength"`     // ≥ 0, 0 means unset.
	Pattern     string   `yaml:"pattern"`       // Regex pattern hint.
	Options     []string `yaml:"options"`       // For select.  Optional.
	ClearOnEdit bool     `yaml:"clear_on_edit"` // Drop this field's error when it is edited.
	// Autocomplete is the browser hint, e.g. "email" or "new-password".
	Autocomplete string `yaml:"autocomplete"`
}

// StepDef groups fields into a wizard step.
type StepDef struct {
	ID     string     `yaml:"id"`
	Title  string     `yaml:"title"`
	Fields []FieldDef `yaml:"fields"`
}

// FieldNames returns every field name in declaration order.
func (fd *FormDef) FieldNames() []string {
	fields := flattenFields(fd)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Name)
	}
	return out
}

// -----------------------------------------------------------------------------
// Registry
// -----------------------------------------------------------------------------

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*FormDef)
)

// GetFormDef returns a parsed FormDef by ID.  The boolean is false when the
// ID is unknown.
func GetFormDef(id string) (*FormDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	fd, ok := registry[id]
	return fd, ok
}

// MustFormDef is GetFormDef for wiring code that cannot continue without the
// definition.
func MustFormDef(id string) *FormDef {
	fd, ok := GetFormDef(id)
	if !ok {
		panic(fmt.Sprintf("form: definition %q not registered", id))
	}
	return fd
}

// -----------------------------------------------------------------------------
// Loader API
// -----------------------------------------------------------------------------

// ParseFormDef decodes one YAML document and validates its structure.  It
// NEVER mutates the registry.  name is used only in error messages.
func ParseFormDef(name string, raw []byte) (*FormDef, error) {
	var fd FormDef
	if err := yaml.Unmarshal(raw, &fd); err != nil {
		return nil, fmt.Errorf("parse YAML %s: %w", name, err)
	}
	if err := validateFormDef(&fd, name); err != nil {
		return nil, err
	}
	return &fd, nil
}

// RegisterFS loads every “*.yaml” under root in fsys and registers it.  Later
// registrations of the same ID override earlier ones, so callers pass site
// overrides last.
func RegisterFS(fsys fs.FS, root string) error {
	if fsys == nil {
		return errors.New("RegisterFS: nil filesystem")
	}
	return fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || path.Ext(d.Name()) != ".yaml" {
			return nil
		}
		raw, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read form file %s: %w", p, err)
		}
		fd, err := ParseFormDef(p, raw)
		if err != nil {
			return err // fail fast so issues surface loudly.
		}
		register(fd)
		return nil
	})
}

// register inserts or overrides the form and its widget.
func register(fd *FormDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[fd.ID] = fd
	injectWidgetRegistration(fd)
}

// -----------------------------------------------------------------------------
// Validation helpers
// -----------------------------------------------------------------------------

var knownTypes = map[string]bool{
	"text": true, "email": true, "password": true,
	"number": true, "date": true, "select": true,
}

// validateFormDef enforces structural rules that cannot be expressed via YAML
// tags alone.
func validateFormDef(fd *FormDef, name string) error {
	if fd.ID == "" {
		return fmt.Errorf("form definition %s: missing required 'id'", name)
	}
	if fd.Action == "" {
		return fmt.Errorf("form definition %s: missing required 'action'", name)
	}
	if fd.Submit == "" {
		fd.Submit = "Submit"
	}

	if len(fd.Fields) > 0 && len(fd.Steps) > 0 {
		return fmt.Errorf("form definition %s: cannot have both 'fields' and 'steps'", name)
	}
	if len(fd.Fields) == 0 && len(fd.Steps) == 0 {
		return fmt.Errorf("form definition %s: must have 'fields' or 'steps'", name)
	}

	seen := make(map[string]struct{})
	check := func(f *FieldDef) error {
		if err := validateField(f, name); err != nil {
			return err
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("form %s: duplicate field name '%s'", name, f.Name)
		}
		seen[f.Name] = struct{}{}
		return nil
	}

	for i := range fd.Fields {
		if err := check(&fd.Fields[i]); err != nil {
			return err
		}
	}
	for si := range fd.Steps {
		s := &fd.Steps[si]
		if s.ID == "" {
			s.ID = fmt.Sprintf("step%d", si+1)
		}
		for fi := range s.Fields {
			if err := check(&s.Fields[fi]); err != nil {
				return err
			}
		}
	}
	return nil
}

// validateField confirms that essential attributes are present and sane.
func validateField(f *FieldDef, name string) error {
	if f.Name == "" {
		return fmt.Errorf("form %s: field missing 'name'", name)
	}
	if f.Label == "" {
		return fmt.Errorf("form %s: field '%s' missing 'label'", name, f.Name)
	}
	if !knownTypes[strings.ToLower(f.Type)] {
		return fmt.Errorf("form %s: field '%s' has unsupported type %q", name, f.Name, f.Type)
	}
	if f.Pattern != "" {
		if _, err := regexp.Compile(f.Pattern); err != nil {
			return fmt.Errorf("form %s: field '%s' invalid regex pattern: %v", name, f.Name, err)
		}
	}
	if f.MinLength < 0 || f.MaxLength < 0 {
		return fmt.Errorf("form %s: field '%s' minlength/maxlength cannot be negative", name, f.Name)
	}
	if f.MaxLength > 0 && f.MinLength > f.MaxLength {
		return fmt.Errorf("form %s: field '%s' minlength greater than maxlength", name, f.Name)
	}
	return nil
}

// flattenFields returns all FieldDefs regardless of step structure.
func flattenFields(fd *FormDef) []FieldDef {
	if len(fd.Steps) == 0 {
		return fd.Fields
	}
	var out []FieldDef
	for _, s := range fd.Steps {
		out = append(out, s.Fields...)
	}
	return out
}
