// internal/register/validate.go
//
// Registration form: field names and validation rules.
//
// Context
// -------
// Validate is a pure function from the current field values to the set of
// failing fields.  The email and password rules are independent; both are
// always evaluated.  Rules are data (Rule values grouped per field) so the
// password message can list every failing criterion in declaration order.
//
// Notes
// -----
//   - Messages are user-facing and compared verbatim by tests and templates.
//   - The special-character criterion keeps its historical wording.  It fires
//     when the password holds MORE than one special character, and its message
//     says "at least three".  See DESIGN.md before changing either half.
package register

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/baraliresort/reserve/internal/form"
)

// Field names as posted by the registration form and sent to the API.
const (
	FieldFirstName = "fname"
	FieldLastName  = "lname"
	FieldEmail     = "email"
	FieldPassword  = "password"
)

// FormID is the registration form definition ID.
const FormID = "register/account"

// Fields lists every registration field in form order.
var Fields = []string{FieldFirstName, FieldLastName, FieldEmail, FieldPassword}

// User-facing messages.
const (
	MsgEmailRequired    = "Email is required."
	MsgEmailInvalid     = "Invalid email format."
	MsgEmailTaken       = "Email is already registered."
	MsgPasswordRequired = "Password is required."
	passwordPrefix      = "Password must include "
)

// NewStore returns an empty registration Store.  Editing the email field
// clears a pending email error.
func NewStore() *form.Store {
	return form.NewStore(Fields, form.WithClearOnEdit(FieldEmail))
}

// Rule is one validation criterion: a predicate that reports success and
// the phrase describing what is missing when it fails.
type Rule struct {
	Passes  func(string) bool
	Missing string
}

var (
	// Whitespace here is the browser's: ASCII, \v, every Unicode separator
	// and the BOM.
	emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)
	upperPattern = regexp.MustCompile(`[A-Z]`)
	lowerPattern = regexp.MustCompile(`[a-z]`)
	digitPattern = regexp.MustCompile(`[0-9]`)
)

// specialChars is the ASCII punctuation set counted by the password rules.
const specialChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// PasswordRules are evaluated in order; every failing rule contributes its
// phrase to the password message.
var PasswordRules = []Rule{
	{Passes: upperPattern.MatchString, Missing: "at least one uppercase letter"},
	{Passes: lowerPattern.MatchString, Missing: "at least one lowercase letter"},
	{Passes: digitPattern.MatchString, Missing: "at least one number"},
	{Passes: func(s string) bool { return countSpecial(s) <= 1 }, Missing: "at least three special characters"},
	{Passes: func(s string) bool { return utf8.RuneCountInString(s) >= 8 }, Missing: "at least 8 characters long"},
}

// Validate maps the current values to their errors.  An empty result means
// the form is valid.  Validate never mutates v.
func Validate(v form.Values) form.FieldErrors {
	errs := form.FieldErrors{}

	if msg := validateEmail(v[FieldEmail]); msg != "" {
		errs[FieldEmail] = msg
	}
	if msg := validatePassword(v[FieldPassword]); msg != "" {
		errs[FieldPassword] = msg
	}
	return errs
}

func validateEmail(email string) string {
	switch {
	case email == "":
		return MsgEmailRequired
	case !emailPattern.MatchString(email):
		return MsgEmailInvalid
	default:
		return ""
	}
}

func validatePassword(pw string) string {
	if pw == "" {
		return MsgPasswordRequired
	}
	var missing []string
	for _, r := range PasswordRules {
		if !r.Passes(pw) {
			missing = append(missing, r.Missing)
		}
	}
	if len(missing) == 0 {
		return ""
	}
	return passwordPrefix + strings.Join(missing, ", ") + "."
}

func countSpecial(s string) int {
	n := 0
	for _, r := range s {
		if strings.ContainsRune(specialChars, r) {
			n++
		}
	}
	return n
}
