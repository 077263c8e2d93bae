package home

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/baraliresort/reserve/internal/component"
	"github.com/baraliresort/reserve/internal/requestinfo"
	"github.com/baraliresort/reserve/internal/theme"
	"github.com/baraliresort/reserve/internal/view"
)

func TestHomePage(t *testing.T) {
	th, err := (&theme.Manager{}).Load("default")
	if err != nil {
		t.Fatal(err)
	}
	view.SetTheme(th)

	c := &Comp{}
	if err := c.Init(component.StaticEnv{}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	rec := httptest.NewRecorder()
	requestinfo.Enrich(c.Routes()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`"@type":"Hotel"`,
		`href="/register"`,
		`class="visit"`,
		"© 2018 www.baraliresort.com",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("home page lacks %q", want)
		}
	}
}
