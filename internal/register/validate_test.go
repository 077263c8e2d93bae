// internal/register/validate_test.go
//
// Table tests for the registration validator.
//
// Run: go test ./internal/register -v

package register

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/baraliresort/reserve/internal/form"
)

func fields(email, password string) form.Values {
	return form.Values{
		FieldFirstName: "Jo",
		FieldLastName:  "Lee",
		FieldEmail:     email,
		FieldPassword:  password,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		in   form.Values
		want form.FieldErrors
	}{
		{
			name: "both empty",
			in:   fields("", ""),
			want: form.FieldErrors{
				FieldEmail:    MsgEmailRequired,
				FieldPassword: MsgPasswordRequired,
			},
		},
		{
			name: "valid",
			in:   fields("jo@x.com", "Abcdef12"),
			want: form.FieldErrors{},
		},
		{
			name: "bad email shape",
			in:   fields("not-an-email", "Abcdef12"),
			want: form.FieldErrors{FieldEmail: MsgEmailInvalid},
		},
		{
			name: "space in local part",
			in:   fields("jo lee@x.com", "Abcdef12"),
			want: form.FieldErrors{FieldEmail: MsgEmailInvalid},
		},
		{
			name: "no tld",
			in:   fields("jo@x", "Abcdef12"),
			want: form.FieldErrors{FieldEmail: MsgEmailInvalid},
		},
		{
			name: "short and lowercase",
			in:   fields("jo@x.com", "abc1"),
			want: form.FieldErrors{
				FieldPassword: "Password must include at least one uppercase letter, at least 8 characters long.",
			},
		},
		{
			name: "every criterion",
			in:   fields("jo@x.com", "!!"),
			want: form.FieldErrors{
				FieldPassword: "Password must include at least one uppercase letter, at least one lowercase letter, " +
					"at least one number, at least three special characters, at least 8 characters long.",
			},
		},
		{
			name: "one special character passes",
			in:   fields("jo@x.com", "Abcdef1!"),
			want: form.FieldErrors{},
		},
		{
			name: "two special characters",
			in:   fields("jo@x.com", "Abcde1!?"),
			want: form.FieldErrors{
				FieldPassword: "Password must include at least three special characters.",
			},
		},
		{
			name: "both fields fail independently",
			in:   fields("a@b", "ABCDEFGH"),
			want: form.FieldErrors{
				FieldEmail:    MsgEmailInvalid,
				FieldPassword: "Password must include at least one lowercase letter, at least one number.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Validate mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestValidateShortWithoutUppercaseListsBoth(t *testing.T) {
	for _, pw := range []string{"a", "abc1", "ab!1234", "xyz"} {
		msg := Validate(fields("jo@x.com", pw))[FieldPassword]
		if !strings.HasPrefix(msg, "Password must include ") {
			t.Fatalf("%q: unexpected message %q", pw, msg)
		}
		if !strings.Contains(msg, "at least one uppercase letter") ||
			!strings.Contains(msg, "at least 8 characters long") {
			t.Errorf("%q: missing phrase in %q", pw, msg)
		}
	}
}

func TestValidateAcceptsWellFormedEmails(t *testing.T) {
	for _, e := range []string{"name@domain.tld", "a.b@c.d.e", "x+y@mail.example.org"} {
		if errs := Validate(fields(e, "")); errs.Has(FieldEmail) {
			t.Errorf("%q flagged: %s", e, errs[FieldEmail])
		}
	}
}

func TestValidateRejectsUnicodeWhitespaceInEmail(t *testing.T) {
	for _, e := range []string{"jo\vlee@x.com", "jo\u00a0lee@x.com", "jo@x\u2028y.com", "jo@x.\u3000com", "\ufeffjo@x.com"} {
		if got := Validate(fields(e, "Abcdef12"))[FieldEmail]; got != MsgEmailInvalid {
			t.Errorf("%q: got %q, want %q", e, got, MsgEmailInvalid)
		}
	}
}

func TestValidateIsPure(t *testing.T) {
	in := fields("bad", "short")
	before := in.Clone()

	first := Validate(in)
	second := Validate(in)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second run differs (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(before, in); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestPasswordLengthCountsRunes(t *testing.T) {
	// fewer than eight runes, more than eight bytes
	for _, pw := range []string{"Ab1éééé", "Ab1😀😀😀"} {
		if msg := Validate(fields("jo@x.com", pw))[FieldPassword]; !strings.Contains(msg, "at least 8 characters long") {
			t.Errorf("%q: expected length failure, got %q", pw, msg)
		}
	}
}
