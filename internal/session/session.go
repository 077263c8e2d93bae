// internal/session/session.go
//
// Barali – Browser session: sign-in token, form instance ID, flash popups.
//
// Context
//   The site keeps no server-side user sessions.  The reservation API hands
//   out an access token at sign-in; we keep it in an HttpOnly cookie and
//   treat its presence as the "signed in" flag.  The flag is set only by the
//   sign-in handler, cleared only by sign-out, and read once per request.
//
//   Two more cookies ride alongside:
//     •  barali_form   – random ID of the browser's mounted form instances.
//     •  barali_flash  – notifications queued before a redirect, shown and
//                        cleared by the next rendered page.
//
// Notes
//   •  Tokens that parse as JWT with an `exp` in the past count as absent.
//      Opaque tokens are trusted until the API says "forbidden".
//   •  Signature checks belong to the API.  We never hold its key.
//
//------------------------------------------------------------------------------

package session

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/baraliresort/reserve/internal/notify"
)

// Options tunes cookie attributes.  Zero values fall back to defaults.
type Options struct {
	CookieName string
	Secure     bool
	TTL        time.Duration
}

const (
	defaultCookie = "barali_session"
	instanceName  = "barali_form"
	flashName     = "barali_flash"
	defaultTTL    = 14 * 24 * time.Hour
	maxFlash      = 8
)

var opts atomic.Pointer[Options]

// Configure installs cookie options.  Call once at start-up.
func Configure(o Options) {
	if o.CookieName == "" {
		o.CookieName = defaultCookie
	}
	if o.TTL <= 0 {
		o.TTL = defaultTTL
	}
	opts.Store(&o)
}

func current() *Options {
	if o := opts.Load(); o != nil {
		return o
	}
	return &Options{CookieName: defaultCookie, TTL: defaultTTL}
}

func secure(r *http.Request) bool { return current().Secure || r.TLS != nil }

/*──────────────────────────── sign-in flag ─────────────────────────────────*/

// SignIn stores the access token returned by the API.
func SignIn(w http.ResponseWriter, r *http.Request, token string) {
	o := current()
	http.SetCookie(w, &http.Cookie{
		Name:     o.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  expiry(token, time.Now().Add(o.TTL)),
	})
}

// SignOut clears the token cookie.
func SignOut(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     current().CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Token returns the stored access token.  ok == false when the cookie is
// missing, empty, or carries an expired JWT.
func Token(r *http.Request) (token string, ok bool) {
	c, err := r.Cookie(current().CookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	if Expired(c.Value, time.Now()) {
		return "", false
	}
	return c.Value, true
}

// SignedIn is Token without the value.
func SignedIn(r *http.Request) bool {
	_, ok := Token(r)
	return ok
}

// Expired reports whether token is a JWT whose exp lies before now.
// Non-JWT tokens never expire here.
func Expired(token string, now time.Time) bool {
	exp, ok := jwtExpiry(token)
	return ok && !exp.After(now)
}

func expiry(token string, fallback time.Time) time.Time {
	if exp, ok := jwtExpiry(token); ok && exp.Before(fallback) {
		return exp
	}
	return fallback
}

func jwtExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

/*──────────────────────────── form instance ────────────────────────────────*/

// InstanceID returns the browser's form-instance ID, issuing a new one (and
// setting its cookie) when absent.
func InstanceID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(instanceName); err == nil && validID(c.Value) {
		return c.Value
	}
	var b [16]byte
	_, _ = rand.Read(b[:])
	id := hex.EncodeToString(b[:])
	http.SetCookie(w, &http.Cookie{
		Name:     instanceName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure(r),
		SameSite: http.SameSiteStrictMode,
	})
	return id
}

func validID(s string) bool {
	if len(s) != 32 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

/*──────────────────────────── flash popups ─────────────────────────────────*/

// Flash is a notify.Notifier that appends to the response's flash cookie.
// Construct per request with NewFlash.
type Flash struct {
	w     http.ResponseWriter
	r     *http.Request
	queue []notify.Notification
}

// NewFlash starts from whatever the request already carries so several
// notifications across redirects accumulate.
func NewFlash(w http.ResponseWriter, r *http.Request) *Flash {
	return &Flash{w: w, r: r, queue: readFlash(r)}
}

// Notify implements notify.Notifier.
func (f *Flash) Notify(n notify.Notification) {
	f.queue = append(f.queue, n)
	if len(f.queue) > maxFlash {
		f.queue = f.queue[len(f.queue)-maxFlash:]
	}
	b, err := json.Marshal(f.queue)
	if err != nil {
		return
	}
	http.SetCookie(f.w, &http.Cookie{
		Name:     flashName,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure(f.r),
		SameSite: http.SameSiteLaxMode,
	})
}

// TakeFlash returns the pending notifications and clears the cookie.
func TakeFlash(w http.ResponseWriter, r *http.Request) []notify.Notification {
	out := readFlash(r)
	if len(out) > 0 {
		http.SetCookie(w, &http.Cookie{Name: flashName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	}
	return out
}

func readFlash(r *http.Request) []notify.Notification {
	c, err := r.Cookie(flashName)
	if err != nil || c.Value == "" {
		return nil
	}
	b, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var out []notify.Notification
	if json.Unmarshal(b, &out) != nil {
		return nil
	}
	return out
}
