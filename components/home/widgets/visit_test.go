package widgets

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/baraliresort/reserve/internal/core"
	"github.com/baraliresort/reserve/internal/requestinfo"
	"github.com/baraliresort/reserve/internal/ua"
)

func TestVisit(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := core.NewContext(httptest.NewRecorder(), r)

	tests := []struct {
		name string
		info *requestinfo.RequestInfo
		want string
	}{
		{"no info", nil, ""},
		{"bot", &requestinfo.RequestInfo{UA: ua.Info{IsBot: true, Browser: "Googlebot"}}, ""},
		{"full", &requestinfo.RequestInfo{
			UA:  ua.Info{Browser: "Chrome", Version: "120", Device: "Desktop"},
			Geo: requestinfo.Geo{CountryISO: "TH"},
		}, `<p class="visit">Welcome, visitor from TH on Chrome 120 (Desktop).</p>`},
		{"bare", &requestinfo.RequestInfo{}, `<p class="visit">Welcome.</p>`},
	}
	for _, tt := range tests {
		ctx.Info = tt.info
		got, _, err := (&Visit{}).Render(ctx, nil)
		if err != nil || got != tt.want {
			t.Errorf("%s: got %q, %v; want %q", tt.name, got, err, tt.want)
		}
	}

	if got, _, _ := (&Visit{}).Render("not a context", nil); got != "" {
		t.Errorf("foreign ctx rendered %q", got)
	}
}
