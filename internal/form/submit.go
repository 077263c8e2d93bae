// internal/form/submit.go
//
// Barali – Forms subsystem: POST decoding helper.
//
// Context
//   Handlers want one call that parses the POST body, checks the CSRF token,
//   and returns exactly the declared fields.  Business validation is NOT done
//   here; each component owns its own rules.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"net/http"
)

// ErrBadToken means the CSRF token was missing, forged, or expired.  It is a
// user error: re-render the form, do not answer 500.
var ErrBadToken = errors.New("security token invalid")

// BadTokenMessage is the user-facing text for ErrBadToken.
const BadTokenMessage = "Security token invalid.  Please refresh and try again."

// Decode parses r, verifies the CSRF token, and returns one value per field
// of formID.  Fields absent from the POST come back as "".
func Decode(formID string, r *http.Request) (Values, error) {
	fd, ok := GetFormDef(formID)
	if !ok {
		return nil, errors.New("Decode: unknown form " + formID)
	}
	if err := CheckToken(r); err != nil {
		return nil, err
	}

	out := make(Values)
	for _, name := range fd.FieldNames() {
		out[name] = r.PostForm.Get(name)
	}
	return out, nil
}

// CheckToken parses r and verifies its CSRF token, taken from the
// csrf_token form value or the X-CSRF-Token header.
func CheckToken(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	tok := r.PostForm.Get(csrfField)
	if tok == "" {
		tok = r.Header.Get("X-CSRF-Token")
	}
	if tok == "" || !VerifyToken(tok) {
		return ErrBadToken
	}
	return nil
}
