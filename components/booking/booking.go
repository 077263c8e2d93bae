// components/booking/booking.go
//
// Booking component – the signed-in booking page.
//
// Context
//   The page is gated on the access token.  Without one the visitor is sent
//   to the sign-in page before anything else happens.  With one, the profile
//   is fetched from the API:
//
//     •  status "ok"         the user's avatar and name appear in the page.
//     •  status "forbidden"  error popup with the server's message, then
//                            navigate home.
//     •  network failure     logged; the page renders without a profile.
//
//   The details form (room, names, email, dates) is validated on POST with
//   go-playground/validator.  Nothing is sent to the API yet; a valid form
//   is acknowledged with a popup and echoed back.
//
//------------------------------------------------------------------------------

package booking

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"reflect"
	"time"

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

// FormID is the booking details form definition.
const FormID = "booking/details"

// DateLayout is the wire format of <input type="date">.
const DateLayout = "2006-01-02"

// Messages shown by the details form.
const (
	MsgSaved        = "Booking details saved."
	MsgCheckOutDate = "CheckOut must be after CheckIn."
)

var (
	//go:embed forms/*.yaml
	forms embed.FS

	//go:embed templates/*.html
	templates embed.FS
)

// Profiler fetches the signed-in user.  *api.Client satisfies it.
type Profiler interface {
	Profile(ctx context.Context, token string) (api.ProfileResult, error)
}

// compile-time assertions
var (
	_ component.Component   = (*Comp)(nil)
	_ component.Initializer = (*Comp)(nil)
)

// Comp implements component.Component.
type Comp struct {
	profiles Profiler
	signIn   string
	home     string
	validate *validator.Validate
}

// details mirrors the form.  The form tags carry the field names.
type details struct {
	RoomID    string `form:"roomId"    validate:"required,number"`
	FirstName string `form:"firstname" validate:"required"`
	LastName  string `form:"lastname"  validate:"required"`
	Email     string `form:"email"     validate:"required,email"`
	CheckIn   string `form:"checkIn"   validate:"required,datetime=2006-01-02"`
	CheckOut  string `form:"checkOut"  validate:"required,datetime=2006-01-02"`
}

type pageData struct {
	Values form.Values
	Errors form.FieldErrors
}

func (c *Comp) Name() string         { return "booking" }
func (c *Comp) Migrations() []string { return nil }

func (c *Comp) Init(env component.Env) error {
	if c.profiles == nil {
		c.profiles = env.API()
	}
	c.signIn = env.Config().Routes.SignIn
	c.home = env.Config().Routes.Home
	c.validate = validator.New(validator.WithRequiredStructEnabled())
	c.validate.RegisterTagNameFunc(func(f reflect.StructField) string { return f.Tag.Get("form") })
	return nil
}

func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/booking", c.getBooking)
	r.Post("/booking", c.postBooking)
	return r
}

func init() {
	if err := form.RegisterFS(forms, "forms"); err != nil {
		panic(err)
	}
	sub, _ := fs.Sub(templates, "templates")
	view.RegisterTemplates("booking", sub)
	component.Register(&Comp{})
}

/*──────────────────────────── Handlers ─────────────────────────────────────*/

func (c *Comp) getBooking(w http.ResponseWriter, r *http.Request) {
	ctx, ok := c.page(w, r)
	if !ok {
		return
	}
	vals := form.Values{}
	if ctx.User != nil {
		vals["firstname"] = ctx.User.FirstName
		vals["lastname"] = ctx.User.LastName
		vals["email"] = ctx.User.Email
	}
	c.render(w, r, ctx, http.StatusOK, pageData{Values: vals})
}

func (c *Comp) postBooking(w http.ResponseWriter, r *http.Request) {
	ctx, ok := c.page(w, r)
	if !ok {
		return
	}

	vals, err := form.Decode(FormID, r)
	if errors.Is(err, form.ErrBadToken) {
		ctx.Flash = append(ctx.Flash, notify.Error("", form.BadTokenMessage))
		c.render(w, r, ctx, http.StatusForbidden, pageData{})
		return
	}
	if err != nil {
		c.fail(w, r, err)
		return
	}

	st := form.NewStoreFor(form.MustFormDef(FormID))
	for name, v := range vals {
		if err := st.SetField(name, v); err != nil {
			c.fail(w, r, err)
			return
		}
	}
	st.SetErrors(c.check(st.Values()))

	data := pageData{Values: st.Values(), Errors: st.Errors()}
	if len(data.Errors) > 0 {
		c.render(w, r, ctx, http.StatusUnprocessableEntity, data)
		return
	}
	logger.FromContext(r.Context()).Infow("booking details accepted",
		"room", data.Values["roomId"], "check_in", data.Values["checkIn"], "check_out", data.Values["checkOut"])
	ctx.Flash = append(ctx.Flash, notify.Success(MsgSaved, ""))
	c.render(w, r, ctx, http.StatusOK, data)
}

/*──────────────────────────── Helpers ──────────────────────────────────────*/

// page runs the token gate and the profile fetch.  ok == false means a
// response (redirect) was already written.
func (c *Comp) page(w http.ResponseWriter, r *http.Request) (*core.Context, bool) {
	log := logger.FromContext(r.Context())

	token, ok := session.Token(r)
	if !ok {
		http.Redirect(w, r, c.signIn, http.StatusSeeOther)
		return nil, false
	}

	res, err := c.profiles.Profile(r.Context(), token)
	switch {
	case err != nil:
		log.Errorw("profile fetch failed", "err", err)
	case res.Forbidden():
		session.NewFlash(w, r).Notify(notify.Error("", res.Message))
		http.Redirect(w, r, c.home, http.StatusSeeOther)
		return nil, false
	case !res.OK():
		log.Warnw("profile fetch declined", "status", res.Status, "message", res.Message)
	}

	ctx := core.NewContext(w, r)
	ctx.Title("Booking")
	ctx.Head.NoIndex()
	if err == nil && res.OK() {
		u := res.User
		ctx.User = &u
	}
	return ctx, true
}

// check validates the details and maps failures to field messages.
func (c *Comp) check(v form.Values) form.FieldErrors {
	d := details{
		RoomID:    v["roomId"],
		FirstName: v["firstname"],
		LastName:  v["lastname"],
		Email:     v["email"],
		CheckIn:   v["checkIn"],
		CheckOut:  v["checkOut"],
	}
	errs := form.FieldErrors{}

	var ves validator.ValidationErrors
	if errors.As(c.validate.Struct(d), &ves) {
		fd := form.MustFormDef(FormID)
		for _, fe := range ves {
			if _, dup := errs[fe.Field()]; !dup {
				errs[fe.Field()] = message(fd, fe)
			}
		}
	}

	if !errs.Has("checkIn") && !errs.Has("checkOut") {
		in, _ := time.Parse(DateLayout, d.CheckIn)
		out, _ := time.Parse(DateLayout, d.CheckOut)
		if !out.After(in) {
			errs["checkOut"] = MsgCheckOutDate
		}
	}
	return errs
}

func message(fd *form.FormDef, fe validator.FieldError) string {
	label := fe.Field()
	for _, f := range fd.Fields {
		if f.Name == fe.Field() {
			label = f.Label
		}
	}
	switch fe.Tag() {
	case "required":
		return label + " is required."
	case "email":
		return register.MsgEmailInvalid
	case "number":
		return label + " must be a number."
	case "datetime":
		return label + " must be a date."
	default:
		return label + " is invalid."
	}
}

func (c *Comp) render(w http.ResponseWriter, r *http.Request, ctx *core.Context, status int, data pageData) {
	if err := view.Render(ctx, w, status, "booking", "booking", data, view.CacheDefault); err != nil {
		c.fail(w, r, err)
	}
}

func (c *Comp) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger.FromContext(r.Context()).Errorw("booking page failed", "err", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
