// components/account/account.go
//
// Account component – the registration page.
//
// Context
//   Every browser gets its own mounted registration form, keyed by the
//   barali_form cookie and held in an instance.Cache.  The mounted form owns
//   a register.Controller; handlers only translate HTTP into SetField and
//   Submit calls and the Controller's popups and navigation back into HTTP.
//
// Routes
//   GET  /register                 render the form from the instance state
//   POST /register                 apply every posted field, then Submit
//   POST /register/fields/{name}   one edit, answers {errors, pending} JSON
//   POST /register/cancel          unmount, discarding any in-flight result
//
// Notes
//   •  Popups raised while a Submit runs are queued on the instance and moved
//      into the flash cookie (redirect) or straight onto the page (re-render).
//   •  A completed form is unmounted before redirecting, so the next visit
//      starts empty.
//
//------------------------------------------------------------------------------

package account

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/baraliresort/reserve/internal/audit"
	"github.com/baraliresort/reserve/internal/component"
	"github.com/baraliresort/reserve/internal/core"
	"github.com/baraliresort/reserve/internal/form"
	"github.com/baraliresort/reserve/internal/instance"
	"github.com/baraliresort/reserve/internal/logger"
	"github.com/baraliresort/reserve/internal/notify"
	"github.com/baraliresort/reserve/internal/register"
	"github.com/baraliresort/reserve/internal/server"
	"github.com/baraliresort/reserve/internal/session"
	"github.com/baraliresort/reserve/internal/view"
)

var (
	//go:embed forms/*.yaml
	forms embed.FS

	//go:embed templates/*.html
	templates embed.FS
)

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// Comp implements component.Component.
type Comp struct {
	registrar register.Registrar
	signIn    string
	home      string
	observers []register.Observer
	log       *zap.SugaredLogger

	mounted *instance.Cache[*mounted]
}

// mounted is one browser's registration form.
type mounted struct {
	*register.Controller
	popups notify.Queue
	next   atomic.Pointer[string]
}

// pageData feeds templates/register.html.
type pageData struct {
	Values  form.Values
	Errors  form.FieldErrors
	Pending bool
	SignIn  string
}

func (c *Comp) Name() string { return "account" }

// Migrations creates the attempt log used by the audit observer.
func (c *Comp) Migrations() []string { return []string{audit.Schema} }

// Init wires the remote API, observers, and the instance cache.
func (c *Comp) Init(env component.Env) error {
	cfg := env.Config()
	c.log = env.Logger().With("component", "register")
	if c.registrar == nil {
		c.registrar = env.API()
	}
	c.signIn = cfg.Routes.SignIn
	c.home = cfg.Routes.Home
	c.observers = []register.Observer{register.MetricsObserver{}}
	if st := env.Audit(); st != nil {
		c.observers = append(c.observers, st)
	}

	c.mounted = instance.New(register.FormID, c.mount, instance.Config{
		IdleTTL:       cfg.Forms.IdleTTL,
		MaxEntries:    cfg.Forms.MaxInstances,
		EvictInterval: cfg.Forms.EvictInterval,
		Logger:        c.log,
	})
	return nil
}

// Close unmounts every form.  cmd/web calls it during shutdown.
func (c *Comp) Close() {
	if c.mounted != nil {
		c.mounted.Close()
	}
}

func (c *Comp) mount(id string) (*mounted, error) {
	m := &mounted{}
	opts := []register.Option{
		register.WithSignInPath(c.signIn),
		register.WithLogger(c.log.With("instance", id)),
	}
	for _, o := range c.observers {
		opts = append(opts, register.WithObserver(o))
	}
	nav := register.NavigatorFunc(func(p string) { m.next.Store(&p) })
	m.Controller = register.New(register.NewStore(), c.registrar, &m.popups, nav, opts...)
	return m, nil
}

func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/register", c.getForm)
	r.Post("/register", c.postForm)
	r.Post("/register/fields/{name}", c.postField)
	r.Post("/register/cancel", c.postCancel)
	return r
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Comp) getForm(w http.ResponseWriter, r *http.Request) {
	m, err := c.mounted.Get(session.InstanceID(w, r))
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.render(w, r, core.NewContext(w, r), http.StatusOK, m)
}

func (c *Comp) postForm(w http.ResponseWriter, r *http.Request) {
	id := session.InstanceID(w, r)
	m, err := c.mounted.Get(id)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	if err := form.CheckToken(r); err != nil {
		logger.FromContext(r.Context()).Infow("register post rejected", "err", err)
		ctx := core.NewContext(w, r)
		ctx.Flash = append(ctx.Flash, notify.Error("", form.BadTokenMessage))
		c.render(w, r, ctx, http.StatusForbidden, m)
		return
	}

	// Cancelled from another tab; start over with a fresh form.
	if m.Closed() {
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}
	for _, name := range m.Store().Names() {
		if _, ok := r.PostForm[name]; !ok {
			continue
		}
		if err := m.SetField(name, r.PostForm.Get(name)); err != nil {
			break // ErrClosed; Submit reports it below.
		}
	}

	out, err := m.Submit(r.Context())
	switch {
	case errors.Is(err, register.ErrSubmitPending):
		c.render(w, r, core.NewContext(w, r), http.StatusConflict, m)
		return
	case errors.Is(err, register.ErrClosed):
		http.Redirect(w, r, "/register", http.StatusSeeOther)
		return
	}

	popups := m.popups.Drain()
	if next := m.next.Swap(nil); next != nil {
		c.mounted.Unmount(id)
		flash := session.NewFlash(w, r)
		for _, n := range popups {
			flash.Notify(n)
		}
		http.Redirect(w, r, *next, http.StatusSeeOther)
		return
	}

	ctx := core.NewContext(w, r)
	ctx.Flash = append(ctx.Flash, popups...)
	c.render(w, r, ctx, statusFor(out), m)
}

// fieldReply is the body of POST /register/fields/{name}.
type fieldReply struct {
	Errors  form.FieldErrors `json:"errors"`
	Pending bool             `json:"pending"`
}

func (c *Comp) postField(w http.ResponseWriter, r *http.Request) {
	if err := form.CheckToken(r); err != nil {
		server.RespondError(w, r, http.StatusForbidden, form.BadTokenMessage)
		return
	}
	m, err := c.mounted.Lookup(session.InstanceID(w, r))
	if err != nil {
		server.RespondError(w, r, http.StatusNotFound, "form not mounted")
		return
	}

	err = m.SetField(chi.URLParam(r, "name"), r.PostForm.Get("value"))
	switch {
	case errors.Is(err, form.ErrUnknownField):
		server.RespondError(w, r, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, register.ErrClosed):
		server.RespondError(w, r, http.StatusNotFound, "form not mounted")
		return
	}
	server.RespondJSON(w, r, http.StatusOK, fieldReply{Errors: m.Store().Errors(), Pending: m.Pending()})
}

func (c *Comp) postCancel(w http.ResponseWriter, r *http.Request) {
	if err := form.CheckToken(r); err != nil {
		http.Error(w, form.BadTokenMessage, http.StatusForbidden)
		return
	}
	c.mounted.Unmount(session.InstanceID(w, r))
	http.Redirect(w, r, c.home, http.StatusSeeOther)
}

/*──────────────────────────── Helpers ──────────────────────────────────────*/

func (c *Comp) render(w http.ResponseWriter, r *http.Request, ctx *core.Context, status int, m *mounted) {
	ctx.Title("Register")
	ctx.Head.NoIndex()
	st := m.Store()
	data := pageData{
		Values:  st.Values(),
		Errors:  st.Errors(),
		Pending: m.Pending(),
		SignIn:  c.signIn,
	}
	if err := view.Render(ctx, w, status, "account", "register", data, view.CacheDefault); err != nil {
		c.fail(w, r, err)
	}
}

func (c *Comp) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Errorw("register page failed", "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// statusFor maps a rejected outcome to the status of the re-rendered page.
func statusFor(o register.Outcome) int {
	switch o.Reason {
	case register.ReasonTransport:
		return http.StatusBadGateway
	case register.ReasonValidation, register.ReasonDuplicate, register.ReasonRemote:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusOK
	}
}

func init() {
	if err := form.RegisterFS(forms, "forms"); err != nil {
		panic(err)
	}
	sub, _ := fs.Sub(templates, "templates")
	view.RegisterTemplates("account", sub)
	component.Register(&Comp{})
}
