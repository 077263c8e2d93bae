package view

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/baraliresort/reserve/internal/core"
	"github.com/baraliresort/reserve/internal/theme"
	"github.com/baraliresort/reserve/internal/widget"
)

type echoWidget struct{}

func (echoWidget) ID() string { return "test/echo" }
func (echoWidget) Render(_ any, p map[string]any) (string, int, error) {
	return "<b>" + p["msg"].(string) + "</b>", 0, nil
}

func setup(t *testing.T) {
	t.Helper()
	th, err := (&theme.Manager{}).Load("default")
	if err != nil {
		t.Fatal(err)
	}
	SetTheme(th)
	widget.Register(echoWidget{})
	RegisterTemplates("test", fstest.MapFS{
		"_row.html":  {Data: []byte(`{{ define "row" }}<li>{{ . }}</li>{{ end }}`)},
		"page.html":  {Data: []byte(`{{ define "content" }}<ul>{{ range .Data }}{{ template "row" . }}{{ end }}</ul>{{ widget .Ctx "test/echo" (dict "msg" "hi") }}{{ end }}`)},
		"plain.html": {Data: []byte(`<p>no content block</p>`)},
	})
}

func TestRender(t *testing.T) {
	setup(t)
	rec := httptest.NewRecorder()
	ctx := core.NewContext(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if err := Render(ctx, rec, http.StatusCreated, "test", "page", []string{"a", "b"}, CacheDefault); err != nil {
		t.Fatalf("Render: %v", err)
	}
	body := rec.Body.String()
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d", rec.Code)
	}
	for _, want := range []string{"<li>a</li><li>b</li>", "<b>hi</b>", "<title>Barali Beach Resort</title>"} {
		if !strings.Contains(body, want) {
			t.Errorf("body lacks %q", want)
		}
	}
	if tmplLRU.Len() == 0 {
		t.Error("template set not cached")
	}
}

func TestRenderErrors(t *testing.T) {
	setup(t)
	ctx := core.NewContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if err := Render(ctx, httptest.NewRecorder(), http.StatusOK, "test", "plain", nil, CacheSkip); err == nil {
		t.Error("page without content block rendered")
	}
	if err := Render(ctx, httptest.NewRecorder(), http.StatusOK, "nope", "page", nil, CacheSkip); err == nil {
		t.Error("unknown component rendered")
	}
}

func TestDict(t *testing.T) {
	m := dict("a", 1, "b", "two", "dangling")
	if len(m) != 2 || m["a"] != 1 || m["b"] != "two" {
		t.Errorf("dict = %v", m)
	}
}
