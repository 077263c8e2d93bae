// internal/form/renderer.go
//
// Barali – Forms subsystem: HTML renderer.
//
// Context
//   Given a registered FormDef this file converts the definition into plain,
//   accessible HTML.  It applies HTML5 hint attributes, injects a CSRF token,
//   honours prefill values, and writes the current FieldErrors next to each
//   field so a re-rendered page shows exactly what failed.
//
// Workflow
//   •  RenderForm looks up the FormDef by ID, selects the requested step (if
//      multi-step), and writes each field via writeField.
//   •  A CSRF token from csrf.go is embedded as a hidden <input>.
//   •  The caller receives template.HTML so the surrounding template does not
//      double-escape the markup.
//
// Style
//   Output HTML is deliberately plain so the theme styles it via class hooks.
//   Each input gets id="fld-{name}" and sits in <div class="form-field">.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strconv"
	"time"
)

// RenderOptions bundles optional parameters influencing HTML output.
type RenderOptions struct {
	// Prefill provides field values keyed by field name.  Password fields
	// are never prefilled.
	Prefill Values
	// Errors are written beneath the matching field.
	Errors FieldErrors
	// StepID selects a step of a multi-step form.  Empty means first step.
	StepID string
	// Disabled renders the submit button disabled, e.g. while a submission
	// for this instance is still pending.
	Disabled bool
}

// RenderForm returns the HTML markup for the specified form ID.
func RenderForm(formID string, opts RenderOptions) (template.HTML, error) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return "", fmt.Errorf("RenderForm: unknown form %q", formID)
	}

	fields, stepIndex, err := selectFields(fd, opts.StepID)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString(`<form class="barali-form" method="post" action="` + html.EscapeString(fd.Action) + `" novalidate>` + "\n")
	if fd.Title != "" {
		buf.WriteString(`<h2>` + html.EscapeString(fd.Title) + `</h2>` + "\n")
	}

	for i := range fields {
		if err := writeField(&buf, &fields[i], opts); err != nil {
			return "", err
		}
	}

	buf.WriteString(fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`+"\n", csrfField, Token()))
	if stepIndex >= 0 {
		buf.WriteString(fmt.Sprintf(`<input type="hidden" name="current_step" value="%s">`+"\n", html.EscapeString(fd.Steps[stepIndex].ID)))
	}

	buf.WriteString(`<input type="submit" class="form-submit" value="` + html.EscapeString(fd.Submit) + `"`)
	if opts.Disabled {
		buf.WriteString(` disabled`)
	}
	buf.WriteString(`>` + "\n")
	buf.WriteString(`</form>`)
	return template.HTML(buf.String()), nil
}

// selectFields returns the FieldDefs to render for the requested step.
func selectFields(fd *FormDef, stepID string) ([]FieldDef, int, error) {
	if len(fd.Steps) == 0 {
		return fd.Fields, -1, nil
	}
	if stepID == "" {
		return fd.Steps[0].Fields, 0, nil
	}
	for i, s := range fd.Steps {
		if s.ID == stepID {
			return s.Fields, i, nil
		}
	}
	return nil, -1, fmt.Errorf("RenderForm: step %q not found in form %q", stepID, fd.ID)
}

// writeField emits HTML for an individual field into buf.
func writeField(buf *bytes.Buffer, f *FieldDef, opts RenderOptions) error {
	val := opts.Prefill[f.Name]
	msg, hasErr := opts.Errors[f.Name]
	name := html.EscapeString(f.Name)

	buf.WriteString(`<div class="form-field">` + "\n")

	idAttr := `id="fld-` + name + `"`
	nameAttr := `name="` + name + `"`

	buf.WriteString(`<label for="fld-` + name + `">` + html.EscapeString(f.Label) + `</label>` + "\n")

	switch f.Type {
	case "text", "email", "password", "number", "date":
		buf.WriteString(`<input ` + idAttr + ` ` + nameAttr + ` type="` + f.Type + `" class="form-input"`)
		if f.Placeholder != "" {
			buf.WriteString(` placeholder="` + html.EscapeString(f.Placeholder) + `"`)
		}
		if f.Required {
			buf.WriteString(` required`)
		}
		if f.MinLength > 0 {
			buf.WriteString(` minlength="` + strconv.Itoa(f.MinLength) + `"`)
		}
		if f.MaxLength > 0 {
			buf.WriteString(` maxlength="` + strconv.Itoa(f.MaxLength) + `"`)
		}
		if f.Pattern != "" {
			buf.WriteString(` pattern="` + html.EscapeString(f.Pattern) + `"`)
		}
		if f.Autocomplete != "" {
			buf.WriteString(` autocomplete="` + html.EscapeString(f.Autocomplete) + `"`)
		}
		if val != "" && f.Type != "password" {
			buf.WriteString(` value="` + html.EscapeString(val) + `"`)
		}
		buf.WriteString(invalidAttrs(name, hasErr))
		buf.WriteString(`>` + "\n")

	case "select":
		buf.WriteString(`<select ` + idAttr + ` ` + nameAttr)
		if f.Required {
			buf.WriteString(` required`)
		}
		buf.WriteString(invalidAttrs(name, hasErr))
		buf.WriteString(`>` + "\n")
		for _, opt := range f.Options {
			sel := ""
			if val == opt {
				sel = ` selected`
			}
			buf.WriteString(`<option value="` + html.EscapeString(opt) + `"` + sel + `>` + html.EscapeString(opt) + `</option>` + "\n")
		}
		buf.WriteString(`</select>` + "\n")

	default:
		return fmt.Errorf("writeField: unsupported field type %q in form field %s", f.Type, f.Name)
	}

	if hasErr {
		buf.WriteString(`<p class="error-message" id="err-` + name + `" aria-live="polite">` + html.EscapeString(msg) + `</p>` + "\n")
	}

	buf.WriteString(`</div>` + "\n")
	return nil
}

// invalidAttrs ties an input to its error message for screen readers.
func invalidAttrs(name string, hasErr bool) string {
	if !hasErr {
		return ""
	}
	return ` aria-invalid="true" aria-describedby="err-` + name + `"`
}

// Token returns a fresh CSRF token for hand-written forms (logout button,
// the field-edit endpoint).  It never fails; a broken RNG yields a token
// that VerifyToken rejects.
func Token() string {
	token, err := GenerateToken()
	if err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return token
}
