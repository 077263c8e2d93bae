// cmd/register/main.go
//
// Barali Resort – terminal registration.
//
// Drives the same register.Controller the web form uses: each prompt is a
// SetField, Enter on the last one is a Submit, popups are printed as they
// are raised, and the final navigation is reported instead of followed.
//
// Usage
// -----
//
//	register                       # API from conf/global.yaml
//	register -api http://localhost:3333
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/baraliresort/reserve/internal/api"
	"github.com/baraliresort/reserve/internal/config"
	"github.com/baraliresort/reserve/internal/logger"
	"github.com/baraliresort/reserve/internal/notify"
	"github.com/baraliresort/reserve/internal/register"
)

func main() {
	apiURL := flag.String("api", "", "reservation API base URL (overrides config)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, *apiURL); err != nil && !errors.Is(err, ErrAborted) {
		fmt.Fprintln(os.Stderr, "register:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, apiURL string) error {
	signIn := register.DefaultSignInPath
	if apiURL == "" {
		cfg, err := config.Load(ctx)
		if err != nil {
			return err
		}
		apiURL, signIn = cfg.API.BaseURL, cfg.Routes.SignIn

		log, err := logger.New(cfg.Log.Dir, false, cfg.Log.Level)
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()
		ctx = logger.WithContext(ctx, log)
	}

	cli, err := api.New(apiURL)
	if err != nil {
		return err
	}
	_, err = (&session{
		out:    os.Stdout,
		prompt: surveyPrompter{},
		remote: cli,
		signIn: signIn,
	}).run(ctx)
	return err
}

// session is one terminal registration.
type session struct {
	out    io.Writer
	prompt Prompter
	remote register.Registrar
	signIn string
}

var labels = map[string]string{
	register.FieldFirstName: "First name:",
	register.FieldLastName:  "Last name:",
	register.FieldEmail:     "Email:",
	register.FieldPassword:  "Password:",
}

// run prompts until the account is created or the user gives up.  It
// returns the last outcome.
func (s *session) run(ctx context.Context) (register.Outcome, error) {
	var navigated string
	c := register.New(register.NewStore(), s.remote, notify.NotifierFunc(s.print),
		register.NavigatorFunc(func(p string) { navigated = p }),
		register.WithSignInPath(s.signIn),
		register.WithObserver(register.MetricsObserver{}),
	)
	defer c.Close()

	for {
		if err := s.fill(ctx, c); err != nil {
			return register.Outcome{}, err
		}

		out, err := c.Submit(ctx)
		if err != nil {
			return out, err
		}
		if out.Completed() {
			fmt.Fprintf(s.out, "Continue at %s to sign in.\n", navigated)
			return out, nil
		}
		for _, f := range out.Errors.Fields() {
			fmt.Fprintf(s.out, "  %s %s\n", labels[f], out.Errors[f])
		}

		again, err := s.prompt.Confirm(ctx, "Try again?", true)
		if err != nil || !again {
			return out, err
		}
	}
}

// fill asks for every field, offering current values as defaults.  Fields
// with no error keep their value when the user just presses Enter.
func (s *session) fill(ctx context.Context, c *register.Controller) error {
	st := c.Store()
	for _, name := range register.Fields {
		var (
			v   string
			err error
		)
		if name == register.FieldPassword {
			v, err = s.prompt.Password(ctx, labels[name])
		} else {
			v, err = s.prompt.Input(ctx, labels[name], st.Value(name))
		}
		if err != nil {
			return err
		}
		if err := c.SetField(name, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) print(n notify.Notification) {
	mark := "✔"
	if n.Kind == notify.KindError {
		mark = "✘"
	}
	line := mark
	for _, part := range []string{n.Title, n.Message} {
		if part != "" {
			line += " " + part
		}
	}
	fmt.Fprintln(s.out, line)
}
