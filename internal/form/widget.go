// internal/form/widget.go
//
// Barali – Forms subsystem: widget integration.
//
// Context
//   Page templates embed form markup through the widget system:
//
//       {{ widget .Ctx "register/account" (dict "prefill" .Data.Values "errors" .Data.Errors) }}
//
//   This adapter wraps RenderForm and always returns view.CacheSkip so pages
//   never cache CSRF tokens.
//
//------------------------------------------------------------------------------

package form

import (
	"github.com/baraliresort/reserve/internal/widget"
)

// cacheSkip mirrors view.CacheSkip without importing view (view imports the
// widget registry, and widgets render through view).
const cacheSkip = 1

var _ widget.Widget = (*formWidget)(nil)

type formWidget struct{ id string }

// ID implements widget.Widget.
func (w *formWidget) ID() string { return w.id }

// Render converts the FormDef into HTML.  params may include:
//
//   - "prefill"  form.Values      – values to pre-populate inputs
//   - "errors"   form.FieldErrors – per-field messages
//   - "step"     string           – step ID in a multi-step form
//   - "disabled" bool             – disable the submit button
func (w *formWidget) Render(_ any, params map[string]any) (string, int, error) {
	var opts RenderOptions
	if params != nil {
		if p, ok := params["prefill"].(Values); ok {
			opts.Prefill = p
		}
		if e, ok := params["errors"].(FieldErrors); ok {
			opts.Errors = e
		}
		if s, ok := params["step"].(string); ok {
			opts.StepID = s
		}
		if d, ok := params["disabled"].(bool); ok {
			opts.Disabled = d
		}
	}

	htmlOut, err := RenderForm(w.id, opts)
	if err != nil {
		return "", cacheSkip, err
	}
	return string(htmlOut), cacheSkip, nil
}

// injectWidgetRegistration is called by definition.go after each FormDef loads.
func injectWidgetRegistration(fd *FormDef) { widget.Register(&formWidget{id: fd.ID}) }
