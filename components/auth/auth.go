// components/auth/auth.go
//
// Auth component – sign-in and sign-out.
//
// Context
//   The reservation API owns credentials.  POST /login forwards them and, on
//   status "ok", stores the returned access token with session.SignIn.  That
//   cookie is the site's only notion of being signed in.  POST /logout clears
//   it and navigates to the sign-in page.
//
//   The form posts to /login.  routes.sign_in may name another path for the
//   page; it is served as well.
//
//------------------------------------------------------------------------------

package auth

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/baraliresort/reserve/internal/api"
	"github.com/baraliresort/reserve/internal/component"
	"github.com/baraliresort/reserve/internal/core"
	"github.com/baraliresort/reserve/internal/form"
	"github.com/baraliresort/reserve/internal/logger"
	"github.com/baraliresort/reserve/internal/notify"
	"github.com/baraliresort/reserve/internal/register"
	"github.com/baraliresort/reserve/internal/session"
	"github.com/baraliresort/reserve/internal/view"
)

// FormID is the sign-in form definition.
const FormID = "auth/login"

var (
	//go:embed forms/*.yaml
	forms embed.FS

	//go:embed templates/*.html
	templates embed.FS
)

// Signer is the remote side of sign-in.  *api.Client satisfies it.
type Signer interface {
	Login(ctx context.Context, cred api.Credentials) (api.LoginResult, error)
}

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component encapsulates login functionality.
type Component struct {
	signer   Signer
	home     string
	signIn   string
	validate *validator.Validate
}

// credentials mirrors the login form.  Messages come from loginMessages.
type credentials struct {
	Email    string `form:"email"    validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

var loginMessages = map[string]string{
	"email.required":    register.MsgEmailRequired,
	"email.email":       register.MsgEmailInvalid,
	"password.required": register.MsgPasswordRequired,
}

/*────────────────── component.Component methods ───────────────────────────*/

// Name returns the canonical component key.
func (c *Component) Name() string { return "auth" }

// Migrations returns nil – auth has no DB schema.
func (c *Component) Migrations() []string { return nil }

// Init picks up the API client and the configured paths.
func (c *Component) Init(env component.Env) error {
	if c.signer == nil {
		c.signer = env.API()
	}
	c.home = env.Config().Routes.Home
	c.signIn = env.Config().Routes.SignIn
	c.validate = validator.New(validator.WithRequiredStructEnabled())
	c.validate.RegisterTagNameFunc(func(f reflect.StructField) string { return f.Tag.Get("form") })
	return nil
}

// Routes builds and returns the router mounted at “/”.
func (c *Component) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/login", c.handleLoginGET)
	r.Post("/login", c.handleLoginPOST)
	if c.signIn != "/login" {
		r.Get(c.signIn, c.handleLoginGET)
	}
	r.Post("/logout", c.handleLogoutPOST)
	return r
}

// Register component at program start.
func init() {
	if err := form.RegisterFS(forms, "forms"); err != nil {
		panic(err)
	}
	sub, _ := fs.Sub(templates, "templates")
	view.RegisterTemplates("auth", sub)
	component.Register(&Component{})
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

type pageData struct {
	Values form.Values
	Errors form.FieldErrors
}

func (c *Component) handleLoginGET(w http.ResponseWriter, r *http.Request) {
	if session.SignedIn(r) {
		http.Redirect(w, r, c.home, http.StatusSeeOther)
		return
	}
	c.render(w, r, core.NewContext(w, r), http.StatusOK, pageData{})
}

func (c *Component) handleLoginPOST(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	vals, err := form.Decode(FormID, r)
	if errors.Is(err, form.ErrBadToken) {
		ctx := core.NewContext(w, r)
		ctx.Flash = append(ctx.Flash, notify.Error("", form.BadTokenMessage))
		c.render(w, r, ctx, http.StatusForbidden, pageData{})
		return
	}
	if err != nil {
		c.fail(w, r, err)
		return
	}

	cred := credentials{Email: strings.TrimSpace(vals["email"]), Password: vals["password"]}
	if errs := c.check(cred); len(errs) > 0 {
		c.render(w, r, core.NewContext(w, r), http.StatusUnprocessableEntity, pageData{Values: vals, Errors: errs})
		return
	}

	res, err := c.signer.Login(r.Context(), api.Credentials{Email: cred.Email, Password: cred.Password})
	if err != nil {
		log.Errorw("login request failed", "email", cred.Email, "err", err)
		ctx := core.NewContext(w, r)
		ctx.Flash = append(ctx.Flash, notify.Error(register.TitleFailure, register.MsgFailure))
		c.render(w, r, ctx, http.StatusBadGateway, pageData{Values: vals})
		return
	}
	if !res.OK() || res.AccessToken == "" {
		log.Infow("login declined", "email", cred.Email, "status", res.Status)
		ctx := core.NewContext(w, r)
		ctx.Flash = append(ctx.Flash, notify.Error("", res.Message))
		c.render(w, r, ctx, http.StatusUnauthorized, pageData{Values: vals})
		return
	}

	session.SignIn(w, r, res.AccessToken)
	if res.Message != "" {
		session.NewFlash(w, r).Notify(notify.Success(res.Message, ""))
	}
	log.Infow("signed in", "email", cred.Email)
	http.Redirect(w, r, c.home, http.StatusSeeOther)
}

func (c *Component) handleLogoutPOST(w http.ResponseWriter, r *http.Request) {
	if err := form.CheckToken(r); err != nil {
		http.Error(w, form.BadTokenMessage, http.StatusForbidden)
		return
	}
	session.SignOut(w, r)
	http.Redirect(w, r, c.signIn, http.StatusSeeOther)
}

/*──────────────────────────── Helpers ──────────────────────────────────────*/

// check runs the struct rules and maps failures to field messages.
func (c *Component) check(cred credentials) form.FieldErrors {
	errs := form.FieldErrors{}
	var ves validator.ValidationErrors
	if !errors.As(c.validate.Struct(cred), &ves) {
		return errs
	}
	for _, fe := range ves {
		if _, dup := errs[fe.Field()]; dup {
			continue
		}
		errs[fe.Field()] = loginMessages[fe.Field()+"."+fe.Tag()]
	}
	return errs
}

func (c *Component) render(w http.ResponseWriter, r *http.Request, ctx *core.Context, status int, data pageData) {
	ctx.Title("Login")
	if err := view.Render(ctx, w, status, "auth", "login", data, view.CacheDefault); err != nil {
		c.fail(w, r, err)
	}
}

func (c *Component) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Errorw("auth page failed", "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
