package theme

import (
	"bytes"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/baraliresort/reserve/internal/core"
	"github.com/baraliresort/reserve/internal/notify"
)

func TestLoadEmbeddedDefault(t *testing.T) {
	th, err := (&Manager{}).Load("default")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tpl, err := th.Base()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tpl.New("content").Parse(`<h3>Booking</h3>`); err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := core.NewContext(httptest.NewRecorder(), r)
	ctx.Flash = []notify.Notification{notify.Error("Error!", "Something went wrong.")}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", map[string]any{"Ctx": ctx, "Head": ctx.Head}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<h3>Booking</h3>", "Something went wrong.", `href="/assets/site.css"`, `href="/login"`} {
		if !strings.Contains(out, want) {
			t.Errorf("layout output lacks %q", want)
		}
	}
}

func TestLoadFromDirWithoutLayout(t *testing.T) {
	if _, err := (&Manager{BaseDir: t.TempDir()}).Load("ocean"); err == nil {
		t.Error("missing theme loaded")
	}
}

func TestOverrideAndAssets(t *testing.T) {
	fsys := fstest.MapFS{
		"components/register/templates/register.html": {Data: []byte(`{{ define "content" }}custom{{ end }}`)},
		"assets/site.css": {Data: []byte("body{}")},
	}
	th := New("test", fsys, nil)

	if b, ok := th.Override("register", "register"); !ok || !bytes.Contains(b, []byte("custom")) {
		t.Errorf("Override = %q, %v", b, ok)
	}
	if _, ok := th.Override("register", "missing"); ok {
		t.Error("unexpected override")
	}

	rec := httptest.NewRecorder()
	th.Assets().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assets/site.css", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "body{}" {
		t.Errorf("asset response %d %q", rec.Code, rec.Body.String())
	}
}

func TestAvatarSrc(t *testing.T) {
	fm := FuncMap(func(p string) string { return "/assets/" + p })
	src := fm["avatarSrc"].(func(string) template.URL)

	if got := src(""); got != "/assets/avatar.svg" {
		t.Errorf("empty image = %q", got)
	}
	if got := src("not base64!"); got != "/assets/avatar.svg" {
		t.Errorf("bad image = %q", got)
	}
	if got := src("/9j/4AAQ"); got != "data:image/jpeg;base64,/9j/4AAQ" {
		t.Errorf("jpeg = %q", got)
	}
}
