// internal/register/controller.go
//
// Registration submission flow.
//
// Context
// -------
// A Controller owns one mounted registration form: its Store, the remote
// registrar, and the notification and navigation capabilities of whatever
// front end mounted it.  Submit runs one attempt through a fixed sequence:
//
//	Validate → CheckEmail → Submit → Outcome
//
// Each step starts only after the previous one resolved, so the API never
// sees a create-account request for input known to be invalid or taken, and
// never more than one per user-initiated submit.
//
// Terminal states
// ---------------
//
//	Completed                      success popup, one navigation to sign-in
//	Rejected(validation)           field errors published
//	Rejected(duplicate)            {email: "Email is already registered."}
//	Rejected(remote)               error popup with the server's message
//	Rejected(transport)            generic error popup, fields untouched
//
// Concurrency
// -----------
//   - At most one attempt is in flight; a second Submit returns
//     ErrSubmitPending without side effects.
//   - Close unmounts the form.  It cancels the in-flight round trip and any
//     result that still arrives is discarded: no store writes, no popups,
//     no navigation.  Publication and Close share a mutex, so once Close
//     returns nothing more reaches the notifier or the navigator.
package register

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/baraliresort/reserve/internal/api"
	"github.com/baraliresort/reserve/internal/form"
	"github.com/baraliresort/reserve/internal/logger"
	"github.com/baraliresort/reserve/internal/metrics"
	"github.com/baraliresort/reserve/internal/notify"
)

var (
	// ErrSubmitPending is returned when Submit is called while another
	// attempt for the same form is still running.
	ErrSubmitPending = errors.New("register: submission already in progress")

	// ErrClosed is returned when the form was unmounted before or during
	// the attempt.  Nothing was written.
	ErrClosed = errors.New("register: form unmounted")
)

// Notification texts.
const (
	TitleSuccess   = "Register Success!"
	ConfirmSuccess = "Login Now!"
	TitleFailure   = "Error!"
	MsgFailure     = "Something went wrong."
)

// DefaultSignInPath is where a completed registration navigates.
const DefaultSignInPath = "/login"

// Registrar is the remote side of the flow.  *api.Client satisfies it.
type Registrar interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, acct api.Account) (api.Result, error)
}

// Navigator hands control to another page.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(path string) { f(path) }

// Observer receives every finished attempt (metrics, audit trail).
type Observer interface {
	Observe(ctx context.Context, a Attempt)
}

// Attempt is what observers see.  It never carries the password.
type Attempt struct {
	Email   string
	Outcome Outcome
}

// Option configures a Controller.
type Option func(*Controller)

// WithSignInPath overrides DefaultSignInPath.
func WithSignInPath(p string) Option { return func(c *Controller) { c.signIn = p } }

// WithObserver adds an observer.  Observers run synchronously after the
// outcome is published.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observers = append(c.observers, o) }
}

// WithLogger sets the controller's base logger.
func WithLogger(l *zap.SugaredLogger) Option { return func(c *Controller) { c.log = l } }

// Controller drives submissions for one mounted form.  Construct with New.
type Controller struct {
	store     *form.Store
	remote    Registrar
	notifier  notify.Notifier
	nav       Navigator
	signIn    string
	observers []Observer
	log       *zap.SugaredLogger

	life    context.Context
	unmount context.CancelFunc
	mu      sync.Mutex // held by Close and while an outcome is published
	closed  atomic.Bool
	pending atomic.Bool
}

// New mounts a Controller over store.  store is normally NewStore().
func New(store *form.Store, remote Registrar, n notify.Notifier, nav Navigator, opts ...Option) *Controller {
	c := &Controller{
		store:    store,
		remote:   remote,
		notifier: n,
		nav:      nav,
		signIn:   DefaultSignInPath,
		log:      zap.S(),
	}
	for _, o := range opts {
		o(c)
	}
	c.life, c.unmount = context.WithCancel(context.Background())
	return c
}

// Store exposes the form state for rendering.
func (c *Controller) Store() *form.Store { return c.store }

// SetField forwards one edit to the store.  Edits after Close are ignored.
func (c *Controller) SetField(name, value string) error {
	if c.closed.Load() {
		return ErrClosed
	}
	return c.store.SetField(name, value)
}

// Pending reports whether an attempt is in flight.  Front ends use it to
// disable the submit control.
func (c *Controller) Pending() bool { return c.pending.Load() }

// Closed reports whether the form was unmounted.
func (c *Controller) Closed() bool { return c.closed.Load() }

// Close unmounts the form.  Safe to call more than once.  It waits for an
// outcome that is being published to finish.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.CompareAndSwap(false, true) {
		c.unmount()
	}
}

// Submit runs one attempt using the current field values.  The returned
// error is nil for every terminal state; it is ErrSubmitPending or ErrClosed
// when no attempt ran or its result was discarded.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	if c.closed.Load() {
		return Outcome{}, ErrClosed
	}
	if !c.pending.CompareAndSwap(false, true) {
		metrics.SubmissionsRejectedPending.WithLabelValues(FormID).Inc()
		return Outcome{}, ErrSubmitPending
	}
	defer c.pending.Store(false)

	// Either the caller or an unmount aborts the round trips.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(c.life, cancel)
	defer stop()

	log := c.log
	if l, ok := logger.Lookup(ctx); ok {
		log = l
	}

	fields := c.store.Values()
	log = log.With("email", fields[FieldEmail])

	// 1. Validate
	if errs := Validate(fields); len(errs) > 0 {
		if !c.publish(func() { c.store.SetErrors(errs) }) {
			return c.discard(log)
		}
		log.Debugw("registration rejected locally", "fields", errs.Fields())
		return c.finish(ctx, fields, Outcome{State: StateRejected, Reason: ReasonValidation, Errors: errs})
	}
	c.store.SetErrors(nil)

	// 2. CheckEmail
	taken, err := c.remote.EmailExists(ctx, fields[FieldEmail])
	if c.closed.Load() {
		return c.discard(log)
	}
	if err != nil {
		log.Warnw("email existence check failed", "err", err)
		return c.transportFailure(ctx, log, fields, err)
	}
	if taken {
		var errs form.FieldErrors
		if !c.publish(func() {
			c.store.SetFieldError(FieldEmail, MsgEmailTaken)
			errs = c.store.Errors()
		}) {
			return c.discard(log)
		}
		return c.finish(ctx, fields, Outcome{State: StateRejected, Reason: ReasonDuplicate, Errors: errs})
	}

	// 3. Submit
	res, err := c.remote.Register(ctx, api.Account{
		FirstName: fields[FieldFirstName],
		LastName:  fields[FieldLastName],
		Email:     fields[FieldEmail],
		Password:  fields[FieldPassword],
	})
	if c.closed.Load() {
		return c.discard(log)
	}
	if err != nil {
		log.Errorw("registration request failed", "err", err)
		return c.transportFailure(ctx, log, fields, err)
	}

	// 4. Outcome
	if !res.OK() {
		if !c.publish(func() { c.notifier.Notify(notify.Error("", res.Message)) }) {
			return c.discard(log)
		}
		log.Infow("registration declined by server", "status", res.Status)
		return c.finish(ctx, fields, Outcome{State: StateRejected, Reason: ReasonRemote, Message: res.Message})
	}

	if !c.publish(func() {
		c.notifier.Notify(notify.Success(TitleSuccess, "").WithConfirm(ConfirmSuccess))
		c.nav.Navigate(c.signIn)
	}) {
		return c.discard(log)
	}
	log.Infow("registration completed")
	return c.finish(ctx, fields, Outcome{State: StateCompleted, NavigatedTo: c.signIn})
}

func (c *Controller) transportFailure(ctx context.Context, log *zap.SugaredLogger, fields form.Values, err error) (Outcome, error) {
	if !c.publish(func() { c.notifier.Notify(notify.Error(TitleFailure, MsgFailure)) }) {
		return c.discard(log)
	}
	return c.finish(ctx, fields, Outcome{State: StateRejected, Reason: ReasonTransport, Message: MsgFailure, Err: err})
}

// publish runs fn unless the form is closed.  Close blocks until fn returns.
func (c *Controller) publish(fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return false
	}
	fn()
	return true
}

func (c *Controller) discard(log *zap.SugaredLogger) (Outcome, error) {
	log.Debugw("attempt result discarded after unmount")
	return Outcome{}, ErrClosed
}

func (c *Controller) finish(ctx context.Context, fields form.Values, out Outcome) (Outcome, error) {
	a := Attempt{Email: fields[FieldEmail], Outcome: out}
	for _, o := range c.observers {
		o.Observe(context.WithoutCancel(ctx), a)
	}
	return out, nil
}
