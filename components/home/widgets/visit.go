// components/home/widgets/visit.go
//
// Visit widget – a one-line greeting built from the request's UA and geo
// details, e.g. "Welcome, visitor from TH on Chrome 120 (Desktop)."
package widgets

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/baraliresort/reserve/internal/core"
	"github.com/baraliresort/reserve/internal/widget"
)

// compile-time assertion
var _ widget.Widget = (*Visit)(nil)

const cacheSkip = 1 // view.CacheSkip

var tpl = template.Must(template.New("visit").Parse(
	`<p class="visit">Welcome{{ with .Country }}, visitor from {{ . }}{{ end }}{{ with .Browser }} on {{ . }}{{ end }}{{ with .Device }} ({{ . }}){{ end }}.</p>`))

// Visit implements widget.Widget.
type Visit struct{}

func (w *Visit) ID() string { return "home/visit" }

// Render converts ctx to *core.Context and prints what Enrich saw.  Bots
// and requests without RequestInfo get nothing.
func (w *Visit) Render(ctx any, _ map[string]any) (string, int, error) {
	rctx, ok := ctx.(*core.Context)
	if !ok || rctx.Info == nil || rctx.Info.UA.IsBot {
		return "", cacheSkip, nil
	}

	data := map[string]string{
		"Country": rctx.Info.Geo.CountryISO,
		"Browser": strings.TrimSpace(rctx.Info.UA.Browser + " " + rctx.Info.UA.Version),
		"Device":  rctx.Info.UA.Device,
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", cacheSkip, err
	}
	return buf.String(), cacheSkip, nil
}

func init() { widget.Register(&Visit{}) }
