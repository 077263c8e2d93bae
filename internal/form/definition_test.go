package form

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/baraliresort/reserve/internal/widget"
)

const signupYAML = `
id: test/signup
action: /signup
fields:
  - {name: email, label: Email, type: email, clear_on_edit: true, autocomplete: email}
  - {name: password, label: Password, type: password, minlength: 8}
`

func TestParseFormDef(t *testing.T) {
	fd, err := ParseFormDef("signup.yaml", []byte(signupYAML))
	if err != nil {
		t.Fatal(err)
	}
	if fd.Submit != "Submit" {
		t.Errorf("default submit label = %q", fd.Submit)
	}
	if got := strings.Join(fd.FieldNames(), ","); got != "email,password" {
		t.Errorf("FieldNames = %s", got)
	}
}

func TestParseFormDefRejects(t *testing.T) {
	bad := map[string]string{
		"no id":       "action: /x\nfields: [{name: a, label: A, type: text}]",
		"no action":   "id: x\nfields: [{name: a, label: A, type: text}]",
		"no fields":   "id: x\naction: /x",
		"bad type":    "id: x\naction: /x\nfields: [{name: a, label: A, type: color}]",
		"duplicate":   "id: x\naction: /x\nfields: [{name: a, label: A, type: text}, {name: a, label: B, type: text}]",
		"bad pattern": "id: x\naction: /x\nfields: [{name: a, label: A, type: text, pattern: '['}]",
		"min > max":   "id: x\naction: /x\nfields: [{name: a, label: A, type: text, minlength: 5, maxlength: 2}]",
	}
	for name, doc := range bad {
		if _, err := ParseFormDef(name, []byte(doc)); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}

func TestRegisterFS(t *testing.T) {
	fsys := fstest.MapFS{
		"forms/signup.yaml": {Data: []byte(signupYAML)},
		"forms/README.md":   {Data: []byte("ignored")},
	}
	if err := RegisterFS(fsys, "forms"); err != nil {
		t.Fatal(err)
	}
	fd, ok := GetFormDef("test/signup")
	if !ok || fd.Action != "/signup" {
		t.Fatalf("GetFormDef = %+v, %v", fd, ok)
	}
	if widget.Lookup("test/signup") == nil {
		t.Error("form widget not registered")
	}

	st := NewStoreFor(fd)
	st.SetErrors(FieldErrors{"email": "taken"})
	_ = st.SetField("email", "x")
	if st.Errors().Has("email") {
		t.Error("clear_on_edit not honoured by NewStoreFor")
	}
}
