package form

import (
	"strings"
	"testing"
)

func mustRegister(t *testing.T) {
	t.Helper()
	fd, err := ParseFormDef("signup.yaml", []byte(signupYAML))
	if err != nil {
		t.Fatal(err)
	}
	register(fd)
}

func TestRenderForm(t *testing.T) {
	mustRegister(t)

	out, err := RenderForm("test/signup", RenderOptions{
		Prefill:  Values{"email": `a@b.co"><script>`, "password": "secret"},
		Errors:   FieldErrors{"email": "Email is already registered."},
		Disabled: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)

	for _, want := range []string{
		`action="/signup"`,
		`value="a@b.co&#34;&gt;&lt;script&gt;"`,
		`<p class="error-message" id="err-email" aria-live="polite">Email is already registered.</p>`,
		`aria-invalid="true" aria-describedby="err-email"`,
		`autocomplete="email"`,
		`minlength="8"`,
		`name="csrf_token"`,
		` disabled>`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("form lacks %q", want)
		}
	}
	if strings.Count(html, "aria-invalid") != 1 {
		t.Error("aria-invalid on a field without error")
	}
	if strings.Contains(html, "secret") {
		t.Error("password prefilled")
	}
}

func TestRenderFormUnknown(t *testing.T) {
	if _, err := RenderForm("nope/nope", RenderOptions{}); err == nil {
		t.Error("unknown form rendered")
	}
}

func TestFormWidget(t *testing.T) {
	mustRegister(t)
	w := &formWidget{id: "test/signup"}
	html, policy, err := w.Render(nil, map[string]any{"errors": FieldErrors{"password": "weak"}})
	if err != nil || policy != cacheSkip {
		t.Fatalf("Render = %v, %d", err, policy)
	}
	if !strings.Contains(html, ">weak</p>") {
		t.Error("widget dropped the errors param")
	}
}
