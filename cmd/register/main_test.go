package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/baraliresort/reserve/internal/api"
	"github.com/baraliresort/reserve/internal/register"
)

// scripted answers prompts in order.
type scripted struct {
	answers  []string
	confirms []bool
}

func (s *scripted) next() string {
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a
}

func (s *scripted) Input(_ context.Context, _, def string) (string, error) {
	if a := s.next(); a != "" {
		return a, nil
	}
	return def, nil
}

func (s *scripted) Password(context.Context, string) (string, error) { return s.next(), nil }

func (s *scripted) Confirm(context.Context, string, bool) (bool, error) {
	c := s.confirms[0]
	s.confirms = s.confirms[1:]
	return c, nil
}

type stubRegistrar struct {
	taken    map[string]bool
	accounts []api.Account
}

func (r *stubRegistrar) EmailExists(_ context.Context, email string) (bool, error) {
	return r.taken[email], nil
}

func (r *stubRegistrar) Register(_ context.Context, a api.Account) (api.Result, error) {
	r.accounts = append(r.accounts, a)
	return api.Result{Status: api.StatusOK}, nil
}

func TestSessionRetriesUntilCompleted(t *testing.T) {
	reg := &stubRegistrar{taken: map[string]bool{"taken@b.co": true}}
	p := &scripted{
		answers: []string{
			"Ann", "Lee", "taken@b.co", "Abcdef12", // duplicate
			"", "", "free@b.co", "Abcdef12", // Enter keeps the names
		},
		confirms: []bool{true},
	}
	var out bytes.Buffer
	s := &session{out: &out, prompt: p, remote: reg, signIn: "/login"}

	res, err := s.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !res.Completed() {
		t.Fatalf("outcome = %+v", res)
	}
	if len(reg.accounts) != 1 || reg.accounts[0].FirstName != "Ann" || reg.accounts[0].Email != "free@b.co" {
		t.Errorf("accounts = %+v", reg.accounts)
	}

	text := out.String()
	for _, want := range []string{register.MsgEmailTaken, register.TitleSuccess, "Continue at /login"} {
		if !strings.Contains(text, want) {
			t.Errorf("output lacks %q:\n%s", want, text)
		}
	}
}

func TestSessionGivesUp(t *testing.T) {
	reg := &stubRegistrar{}
	p := &scripted{answers: []string{"", "", "bad", "short"}, confirms: []bool{false}}
	var out bytes.Buffer
	s := &session{out: &out, prompt: p, remote: reg, signIn: "/login"}

	res, err := s.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Reason != register.ReasonValidation {
		t.Errorf("reason = %v", res.Reason)
	}
	if len(reg.accounts) != 0 {
		t.Error("account created from invalid input")
	}
	if !strings.Contains(out.String(), register.MsgEmailInvalid) {
		t.Errorf("output lacks the email error:\n%s", out.String())
	}
}
